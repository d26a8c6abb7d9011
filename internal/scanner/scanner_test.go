package scanner

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/spf13/afero"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/teamcutter/patches/internal/detector"
	"github.com/teamcutter/patches/internal/domain"
	"github.com/teamcutter/patches/internal/state"
)

type stubDetector struct {
	installed map[string]bool
	failing   map[string]error
	calls     atomic.Int32
	inFlight  atomic.Int32
	peak      atomic.Int32
}

func (s *stubDetector) Detect(_ context.Context, pkg domain.Package) (bool, error) {
	s.calls.Add(1)
	n := s.inFlight.Add(1)
	defer s.inFlight.Add(-1)
	for {
		p := s.peak.Load()
		if n <= p || s.peak.CompareAndSwap(p, n) {
			break
		}
	}
	time.Sleep(5 * time.Millisecond)

	if err, ok := s.failing[pkg.Name()]; ok {
		return false, err
	}
	return s.installed[pkg.String()], nil
}

func (s *stubDetector) Describe() string {
	return "stub"
}

type memHistory struct {
	mu         sync.Mutex
	detections []domain.Detection
	err        error
}

func (m *memHistory) Record(d domain.Detection) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.err != nil {
		return m.err
	}
	m.detections = append(m.detections, d)
	return nil
}

func (m *memHistory) List(string, int) ([]domain.Detection, error) { return m.detections, nil }
func (m *memHistory) Clear() error                                 { return nil }
func (m *memHistory) Close() error                                 { return nil }

func mustParse(t *testing.T, name, version string) domain.Package {
	t.Helper()
	p, err := domain.ParsePackage(name, version)
	require.NoError(t, err)
	return p
}

func TestScanner_Check(t *testing.T) {
	det := &stubDetector{installed: map[string]bool{"mig@3.14.15": true}}
	hist := &memHistory{}
	s := New(det, hist, 4)

	d, err := s.Check(context.Background(), mustParse(t, "mig", "3.14.15"))
	require.NoError(t, err)
	assert.True(t, d.Installed)
	assert.Equal(t, "stub", d.Strategy)
	assert.False(t, d.CheckedAt.IsZero())

	d, err = s.Check(context.Background(), mustParse(t, "mig", "2.1.8"))
	require.NoError(t, err)
	assert.False(t, d.Installed)

	require.Len(t, hist.detections, 2)
}

func TestScanner_CheckPropagatesDetectorError(t *testing.T) {
	boom := &domain.DetectionError{Strategy: "stub", Path: "/x", Err: os.ErrPermission}
	det := &stubDetector{failing: map[string]error{"mig": boom}}
	hist := &memHistory{}
	s := New(det, hist, 1)

	d, err := s.Check(context.Background(), mustParse(t, "mig", "3.14.15"))
	assert.Same(t, boom, err)
	assert.False(t, d.Installed)
	assert.True(t, d.Failed())

	require.Len(t, hist.detections, 1)
	assert.Equal(t, boom.Error(), hist.detections[0].Error)
}

func TestScanner_CheckIgnoresHistoryFailure(t *testing.T) {
	det := &stubDetector{installed: map[string]bool{"mig@3.14.15": true}}
	s := New(det, &memHistory{err: errors.New("disk full")}, 1)

	d, err := s.Check(context.Background(), mustParse(t, "mig", "3.14.15"))
	require.NoError(t, err)
	assert.True(t, d.Installed)
}

func TestScanner_CheckWithoutHistory(t *testing.T) {
	s := New(&stubDetector{}, nil, 0)

	d, err := s.Check(context.Background(), mustParse(t, "mig", "3.14.15"))
	require.NoError(t, err)
	assert.False(t, d.Installed)
}

func TestScanner_Scan(t *testing.T) {
	det := &stubDetector{
		installed: map[string]bool{"mig@3.14.15": true, "openssl@3.3.1": true},
		failing:   map[string]error{"mozdef": os.ErrPermission},
	}
	hist := &memHistory{}
	s := New(det, hist, 2)

	pkgs := []domain.Package{
		mustParse(t, "mig", "3.14.15"),
		mustParse(t, "mozdef", "10.42.1"),
		mustParse(t, "openssl", "3.3.1"),
		mustParse(t, "curl", "8.7.1"),
		mustParse(t, "git", "2.45.0"),
	}

	results, err := s.Scan(context.Background(), pkgs)
	require.Error(t, err)
	assert.ErrorIs(t, err, os.ErrPermission)
	assert.Contains(t, err.Error(), "mozdef@10.42.1")

	require.Len(t, results, len(pkgs))
	for i, pkg := range pkgs {
		assert.True(t, pkg.Equal(results[i].Package))
	}
	assert.True(t, results[0].Installed)
	assert.True(t, results[1].Failed())
	assert.True(t, results[2].Installed)
	assert.False(t, results[3].Installed)
	assert.False(t, results[4].Installed)

	assert.Equal(t, int32(len(pkgs)), det.calls.Load())
	assert.LessOrEqual(t, det.peak.Load(), int32(2))
	assert.Len(t, hist.detections, len(pkgs))
}

func TestScanner_ScanEmpty(t *testing.T) {
	results, err := New(&stubDetector{}, nil, 4).Scan(context.Background(), nil)
	require.NoError(t, err)
	assert.Empty(t, results)
}

func TestScanner_WithCellarAndSQLiteHistory(t *testing.T) {
	fs := afero.NewMemMapFs()
	require.NoError(t, fs.MkdirAll("/cellar/packagename/1.2.3", 0755))

	hist, err := state.NewSQLite(filepath.Join(t.TempDir(), "history.db"), "")
	require.NoError(t, err)
	defer hist.Close()

	s := New(detector.New(detector.WithFs(fs), detector.WithBaseDir("/cellar")), hist, 4)

	results, err := s.Scan(context.Background(), []domain.Package{
		mustParse(t, "packagename", "1.2.3"),
		mustParse(t, "packagename", "3.2.1"),
	})
	require.NoError(t, err)
	assert.True(t, results[0].Installed)
	assert.False(t, results[1].Installed)
	assert.Equal(t, "cellar:/cellar", results[0].Strategy)

	recorded, err := hist.List("packagename", 0)
	require.NoError(t, err)
	assert.Len(t, recorded, 2)
}
