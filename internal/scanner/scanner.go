package scanner

import (
	"context"
	"errors"
	"fmt"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/teamcutter/patches/internal/domain"
	"github.com/teamcutter/patches/internal/log"
)

// Scanner runs a detector over one or more packages and records each outcome
// in an optional history.
type Scanner struct {
	detector    domain.Detector
	history     domain.History
	maxParallel int
	now         func() time.Time
}

func New(
	detector domain.Detector,
	history domain.History,
	maxParallel int,
) *Scanner {
	if maxParallel < 1 {
		maxParallel = 1
	}

	return &Scanner{
		detector:    detector,
		history:     history,
		maxParallel: maxParallel,
		now:         time.Now,
	}
}

// Check runs a single detection. The detector's error is returned unchanged;
// a failure to record history is only logged.
func (s *Scanner) Check(ctx context.Context, pkg domain.Package) (domain.Detection, error) {
	installed, err := s.detector.Detect(ctx, pkg)

	d := domain.Detection{
		Package:   pkg,
		Strategy:  domain.Describe(s.detector),
		Installed: installed,
		CheckedAt: s.now(),
	}
	if err != nil {
		d.Installed = false
		d.Error = err.Error()
	}

	s.record(d)

	return d, err
}

func (s *Scanner) record(d domain.Detection) {
	if s.history == nil {
		return
	}
	if err := s.history.Record(d); err != nil {
		log.Warn("failed to record detection", "package", d.Package, "err", err)
		return
	}
	log.Debug("recorded detection", "package", d.Package, "installed", d.Installed)
}

// Scan checks every package, at most maxParallel at a time. One failure does
// not stop the others: results keep the input order and the returned error
// joins every per-package failure.
func (s *Scanner) Scan(ctx context.Context, pkgs []domain.Package) ([]domain.Detection, error) {
	results := make([]domain.Detection, len(pkgs))
	errs := make([]error, len(pkgs))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(min(max(len(pkgs), 1), s.maxParallel))

	log.Debug("scanning", "packages", len(pkgs), "parallel", s.maxParallel)

	for i, pkg := range pkgs {
		g.Go(func() error {
			d, err := s.Check(gctx, pkg)
			results[i] = d
			if err != nil {
				errs[i] = fmt.Errorf("%s: %w", pkg, err)
			}
			return nil
		})
	}
	_ = g.Wait()

	return results, errors.Join(errs...)
}
