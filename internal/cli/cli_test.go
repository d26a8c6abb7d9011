package cli

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"
	"testing"

	"github.com/fatih/color"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/teamcutter/patches/internal/domain"
	"github.com/teamcutter/patches/internal/report"
)

func TestMain(m *testing.M) {
	color.NoColor = true
	os.Exit(m.Run())
}

type fixture struct {
	configPath string
	cellar     string
	stateDir   string
}

func newFixture(t *testing.T, backend string) fixture {
	t.Helper()
	dir := t.TempDir()
	f := fixture{
		configPath: filepath.Join(dir, "config.toml"),
		cellar:     filepath.Join(dir, "Cellar"),
		stateDir:   filepath.Join(dir, "state"),
	}

	cfg := fmt.Sprintf("cellar_dir = %q\nstate_dir = %q\nhistory_backend = %q\n", f.cellar, f.stateDir, backend)
	require.NoError(t, os.WriteFile(f.configPath, []byte(cfg), 0644))
	require.NoError(t, os.MkdirAll(filepath.Join(f.cellar, "packagename", "1.2.3"), 0755))
	return f
}

func (f fixture) run(t *testing.T, args ...string) (string, error) {
	t.Helper()
	cmd := newRootCmd()
	var out bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetErr(&bytes.Buffer{})
	cmd.SetArgs(append([]string{"--config", f.configPath}, args...))
	err := cmd.Execute()
	return out.String(), err
}

func TestCheck(t *testing.T) {
	f := newFixture(t, "sqlite")

	tests := []struct {
		name     string
		args     []string
		expected string
	}{
		{name: "installed in configured cellar", args: []string{"-p", "packagename", "-v", "1.2.3"}, expected: "Installed\n"},
		{name: "prerelease maps to the same keg", args: []string{"--package", "packagename", "--version", "1.2.3-rc.1"}, expected: "Installed\n"},
		{name: "other version", args: []string{"-p", "packagename", "-v", "3.2.1"}, expected: "Not installed\n"},
		{name: "explicit directory", args: []string{"-p", "packagename", "-v", "1.2.3", "-d", t.TempDir()}, expected: "Not installed\n"},
	}

	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			out, err := f.run(t, test.args...)
			require.NoError(t, err)
			assert.Equal(t, test.expected, out)
		})
	}
}

func TestCheck_InvalidVersion(t *testing.T) {
	f := newFixture(t, "sqlite")

	out, err := f.run(t, "-p", "packagename", "-v", "1.2")
	require.Error(t, err)
	assert.Empty(t, out)

	var parseErr *domain.VersionParseError
	assert.ErrorAs(t, err, &parseErr)
}

func TestCheck_NameCannotEscapeDirectory(t *testing.T) {
	f := newFixture(t, "sqlite")
	sub := filepath.Join(f.cellar, "sub")
	require.NoError(t, os.MkdirAll(sub, 0755))

	out, err := f.run(t, "-p", "../packagename", "-v", "1.2.3", "-d", sub)
	require.Error(t, err)
	assert.Empty(t, out)
}

func TestCheck_MissingFlags(t *testing.T) {
	f := newFixture(t, "sqlite")

	_, err := f.run(t, "-p", "packagename")
	assert.Error(t, err)
}

func TestCheck_RecordsHistory(t *testing.T) {
	for _, backend := range []string{"sqlite", "json"} {
		t.Run(backend, func(t *testing.T) {
			f := newFixture(t, backend)

			_, err := f.run(t, "-p", "packagename", "-v", "1.2.3")
			require.NoError(t, err)
			_, err = f.run(t, "-p", "packagename", "-v", "3.2.1")
			require.NoError(t, err)

			out, err := f.run(t, "history", "packagename")
			require.NoError(t, err)
			assert.Contains(t, out, "packagename-3.2.1 not installed")
			assert.Contains(t, out, "packagename-1.2.3 installed")

			out, err = f.run(t, "history", "--clear")
			require.NoError(t, err)
			assert.Contains(t, out, "History cleared")

			out, err = f.run(t, "history")
			require.NoError(t, err)
			assert.Contains(t, out, "No detections recorded")
		})
	}
}

func TestScanAndReport(t *testing.T) {
	f := newFixture(t, "sqlite")

	watchlist := filepath.Join(t.TempDir(), "watchlist.toml")
	require.NoError(t, os.WriteFile(watchlist, []byte(`
[[package]]
name = "packagename"
version = "1.2.3"

[[package]]
name = "packagename"
version = "3.2.1"
`), 0644))
	reportPath := filepath.Join(t.TempDir(), "report.json.gz")

	out, err := f.run(t, "scan", "-f", watchlist, "-o", reportPath)
	require.NoError(t, err)
	assert.Contains(t, out, "✓ packagename-1.2.3 installed")
	assert.Contains(t, out, "○ packagename-3.2.1 not installed")
	assert.Contains(t, out, "1 of 2 package(s) installed")

	r, err := report.Read(reportPath)
	require.NoError(t, err)
	require.Len(t, r.Detections, 2)

	out, err = f.run(t, "report", reportPath)
	require.NoError(t, err)
	assert.Contains(t, out, "1 of 2 package(s) installed")
}

func TestScan_InvalidWatchlist(t *testing.T) {
	f := newFixture(t, "sqlite")

	watchlist := filepath.Join(t.TempDir(), "watchlist.toml")
	require.NoError(t, os.WriteFile(watchlist, []byte("[[package]]\nname = \"x\"\nversion = \"a.b.c\"\n"), 0644))

	_, err := f.run(t, "scan", "-f", watchlist)
	var parseErr *domain.VersionParseError
	assert.ErrorAs(t, err, &parseErr)
}

func TestList(t *testing.T) {
	f := newFixture(t, "sqlite")
	require.NoError(t, os.MkdirAll(filepath.Join(f.cellar, "packagename", "1.10.0_1"), 0755))

	out, err := f.run(t, "list", "packagename")
	require.NoError(t, err)
	assert.Contains(t, out, "packagename-1.10.0  latest")
	assert.Contains(t, out, "packagename-1.2.3")

	out, err = f.run(t, "list", "missing")
	require.NoError(t, err)
	assert.Contains(t, out, "missing is not installed")
}

func TestConfigInitAndShow(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.toml")
	f := fixture{configPath: path}

	out, err := f.run(t, "config", "init")
	require.NoError(t, err)
	assert.Contains(t, out, path)

	_, err = f.run(t, "config", "init")
	assert.Error(t, err)

	_, err = f.run(t, "config", "init", "--force")
	require.NoError(t, err)

	out, err = f.run(t, "config", "show")
	require.NoError(t, err)
	assert.Contains(t, out, `cellar_dir = "/usr/local/Cellar/"`)
}
