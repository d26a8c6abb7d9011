package domain

import "strings"

// SplitRevision splits a Homebrew keg directory name such as "1.1.1_2" into
// its version and revision parts. The revision is "" when absent.
func SplitRevision(dir string) (version, revision string) {
	i := strings.LastIndexByte(dir, '_')
	if i < 0 || i == len(dir)-1 {
		return dir, ""
	}
	for _, r := range dir[i+1:] {
		if r < '0' || r > '9' {
			return dir, ""
		}
	}
	return dir[:i], dir[i+1:]
}

// Describe returns the strategy name of d, or "unknown".
func Describe(d Detector) string {
	if ds, ok := d.(Describer); ok {
		return ds.Describe()
	}
	return "unknown"
}
