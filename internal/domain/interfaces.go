package domain

import (
	"context"
)

// Detector decides whether a package is installed on this host.
type Detector interface {
	Detect(ctx context.Context, pkg Package) (bool, error)
}

// Describer is implemented by detectors that can name the strategy and
// location they probe.
type Describer interface {
	Describe() string
}

type History interface {
	Record(d Detection) error
	List(name string, limit int) ([]Detection, error)
	Clear() error
	Close() error
}
