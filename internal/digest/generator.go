// Package digest produces the text digest of a mirrored repository.
// Generation is delegated to an external tool or service; this package
// only adapts it to a single success-or-failure call per source.
package digest

import (
	"context"
	"errors"
	"fmt"
)

// ErrGeneration is matched by every error a Generator returns.
var ErrGeneration = errors.New("digest generation failed")

// Request describes one digest to produce.
type Request struct {
	Repo    string // source reference as listed in the job file
	Owner   string
	Name    string
	CodeDir string // local working copy
	Output  string // where the digest file must end up
}

// Generator produces a digest file at Request.Output. Implementations must
// be safe to call repeatedly, one call at a time, within a run.
type Generator interface {
	Generate(ctx context.Context, req Request) error
	// Close releases any session held across calls.
	Close() error
}

// Error represents a failed generation attempt for one source.
type Error struct {
	Source string
	Err    error
	Hint   string
}

func (e *Error) Error() string {
	msg := fmt.Sprintf("%s: %s: %s", e.Source, ErrGeneration, e.Err)
	if e.Hint != "" {
		msg += " — " + e.Hint
	}
	return msg
}

func (e *Error) Unwrap() []error {
	return []error{ErrGeneration, e.Err}
}

// Noop never generates anything and always succeeds. It backs mirror-only runs.
type Noop struct{}

func (Noop) Generate(context.Context, Request) error { return nil }
func (Noop) Close() error                            { return nil }
