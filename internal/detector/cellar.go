package detector

import (
	"context"
	"errors"
	"io/fs"
	"path/filepath"
	"slices"
	"syscall"

	"github.com/Masterminds/semver/v3"
	"github.com/spf13/afero"

	"github.com/teamcutter/patches/internal/domain"
	"github.com/teamcutter/patches/internal/log"
)

// DefaultBaseDir is where Homebrew installs kegs on Intel macOS.
const DefaultBaseDir = "/usr/local/Cellar/"

// Cellar detects packages by looking for a keg directory laid out the way
// Homebrew installs them: base/name/major.minor.patch. Pre-release and build
// metadata never appear in the directory name.
//
// A Cellar is read-only after construction and safe for concurrent use.
type Cellar struct {
	fs      afero.Fs
	baseDir string
}

type Option func(*Cellar)

// WithBaseDir points the detector at a non-default install root.
func WithBaseDir(dir string) Option {
	return func(c *Cellar) {
		if dir != "" {
			c.baseDir = dir
		}
	}
}

func WithFs(fs afero.Fs) Option {
	return func(c *Cellar) {
		c.fs = fs
	}
}

func New(opts ...Option) *Cellar {
	c := &Cellar{
		fs:      afero.NewOsFs(),
		baseDir: DefaultBaseDir,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

func (c *Cellar) BaseDir() string {
	return c.baseDir
}

func (c *Cellar) Describe() string {
	return "cellar:" + c.baseDir
}

// Path returns the keg directory Detect checks for pkg.
func (c *Cellar) Path(pkg domain.Package) string {
	return filepath.Join(c.baseDir, filepath.FromSlash(pkg.InstallDir()))
}

// Detect reports whether a filesystem entry exists at Path(pkg).
//
// A missing entry, a dangling symlink and a non-directory path component all
// mean "not installed". Any other stat failure, such as a permission error,
// is returned as a *domain.DetectionError.
func (c *Cellar) Detect(ctx context.Context, pkg domain.Package) (bool, error) {
	if err := ctx.Err(); err != nil {
		return false, err
	}

	path := c.Path(pkg)
	_, err := c.fs.Stat(path)
	switch {
	case err == nil:
		log.Debug("keg found", "package", pkg, "path", path)
		return true, nil
	case errors.Is(err, fs.ErrNotExist), errors.Is(err, syscall.ENOTDIR):
		log.Debug("keg not found", "package", pkg, "path", path)
		return false, nil
	default:
		return false, &domain.DetectionError{Strategy: c.Describe(), Path: path, Err: err}
	}
}

// Versions lists the installed versions of name, newest first. Keg
// directories whose name is not a strict semantic version once the Homebrew
// revision suffix is removed are skipped.
func (c *Cellar) Versions(name string) ([]*semver.Version, error) {
	if err := domain.ValidateName(name); err != nil {
		return nil, err
	}

	dir := filepath.Join(c.baseDir, name)
	entries, err := afero.ReadDir(c.fs, dir)
	if errors.Is(err, fs.ErrNotExist) {
		return nil, nil
	}
	if err != nil {
		return nil, &domain.DetectionError{Strategy: c.Describe(), Path: dir, Err: err}
	}

	seen := make(map[string]bool)
	var versions []*semver.Version
	for _, e := range entries {
		if !e.IsDir() {
			continue
		}

		raw, _ := domain.SplitRevision(e.Name())
		v, err := semver.StrictNewVersion(raw)
		if err != nil {
			log.Debug("skipping keg", "dir", filepath.Join(dir, e.Name()), "err", err)
			continue
		}
		if seen[v.String()] {
			continue
		}
		seen[v.String()] = true
		versions = append(versions, v)
	}

	slices.SortFunc(versions, func(a, b *semver.Version) int {
		return b.Compare(a)
	})

	return versions, nil
}
