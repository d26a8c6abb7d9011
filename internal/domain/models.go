package domain

import (
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/Masterminds/semver/v3"
)

// Package is a package name paired with a strict semantic version.
// The zero value is not usable; build one with NewPackage or ParsePackage.
type Package struct {
	name    string
	version semver.Version
}

func NewPackage(name string, version *semver.Version) Package {
	return Package{name: name, version: *version}
}

// ParsePackage parses version as MAJOR.MINOR.PATCH[-prerelease][+build].
// Shorthand forms such as "1.2" or "v1.2.3" are rejected.
func ParsePackage(name, version string) (Package, error) {
	if err := ValidateName(name); err != nil {
		return Package{}, err
	}

	v, err := semver.StrictNewVersion(version)
	if err != nil {
		return Package{}, &VersionParseError{Input: version, Err: err}
	}

	return NewPackage(name, v), nil
}

// ValidateName rejects names that are empty or would leave their install root
// once joined to it.
func ValidateName(name string) error {
	switch {
	case name == "":
		return errors.New("package name is empty")
	case strings.ContainsAny(name, `/\`), name == ".", name == "..":
		return fmt.Errorf("invalid package name %q", name)
	}
	return nil
}

func (p Package) Name() string {
	return p.name
}

func (p Package) Version() *semver.Version {
	v := p.version
	return &v
}

func (p Package) String() string {
	return p.name + "@" + p.version.String()
}

// InstallDir is the package path relative to an install root: name/MAJOR.MINOR.PATCH.
func (p Package) InstallDir() string {
	return fmt.Sprintf("%s/%d.%d.%d", p.name, p.version.Major(), p.version.Minor(), p.version.Patch())
}

// Equal reports whether both packages share a name and an equal version.
// Build metadata is ignored, pre-release identifiers are not.
func (p Package) Equal(other Package) bool {
	return p.name == other.name && p.version.Equal(&other.version)
}

// Compare orders two packages of the same name by version precedence.
// ok is false when the names differ, in which case the packages are unordered.
func (p Package) Compare(other Package) (c int, ok bool) {
	if p.name != other.name {
		return 0, false
	}
	return p.version.Compare(&other.version), true
}

type packageJSON struct {
	Name    string `json:"name"`
	Version string `json:"version"`
}

func (p Package) MarshalJSON() ([]byte, error) {
	return json.Marshal(packageJSON{Name: p.name, Version: p.version.String()})
}

func (p *Package) UnmarshalJSON(data []byte) error {
	var raw packageJSON
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}

	parsed, err := ParsePackage(raw.Name, raw.Version)
	if err != nil {
		return err
	}

	*p = parsed
	return nil
}

// Detection is the recorded outcome of one detect call.
type Detection struct {
	Package   Package   `json:"package"`
	Strategy  string    `json:"strategy"`
	Installed bool      `json:"installed"`
	Error     string    `json:"error,omitempty"`
	CheckedAt time.Time `json:"checked_at"`
}

func (d Detection) Failed() bool {
	return d.Error != ""
}
