package domain

import "fmt"

// VersionParseError reports a version string that is not a strict semantic version.
type VersionParseError struct {
	Input string
	Err   error
}

func (e *VersionParseError) Error() string {
	return fmt.Sprintf("invalid semantic version %q: %v", e.Input, e.Err)
}

func (e *VersionParseError) Unwrap() error {
	return e.Err
}

// DetectionError is a strategy failure that left the install state unknown.
type DetectionError struct {
	Strategy string
	Path     string
	Err      error
}

func (e *DetectionError) Error() string {
	return fmt.Sprintf("%s: checking %s: %v", e.Strategy, e.Path, e.Err)
}

func (e *DetectionError) Unwrap() error {
	return e.Err
}
