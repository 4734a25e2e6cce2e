package engine

import (
	"time"

	"github.com/bianoble/gist-crawler/internal/mirror"
	"github.com/bianoble/gist-crawler/internal/source"
	"github.com/bianoble/gist-crawler/internal/state"
)

// SourceError represents an error associated with a specific source.
type SourceError struct {
	Source string
	Err    error
}

func (e SourceError) Error() string {
	return e.Source + ": " + e.Err.Error()
}

func (e SourceError) Unwrap() error {
	return e.Err
}

// Summary counts the sources of one run.
type Summary struct {
	Total     int
	Succeeded int
	Failed    int
}

// Outcome records what happened to one source during a run.
type Outcome struct {
	Source    string
	Identity  source.Identity
	Sync      mirror.Result
	Generated bool // digest generation was attempted and succeeded
	Skipped   bool // mirror unchanged and digest already valid
	GistPath  string
	GistBytes int64
	Err       error
	Duration  time.Duration
}

// OK reports whether the source counts as succeeded.
func (o Outcome) OK() bool {
	return o.Err == nil
}

// CrawlResult holds the outcome of a crawl run.
type CrawlResult struct {
	Summary
	Sources    []Outcome
	Errors     []SourceError
	StatePath  string
	MirrorRoot string
}

// SourceStatus describes the persisted state of one source.
type SourceStatus struct {
	Source   string
	LocalKey string
	Record   state.Record
	Tracked  bool // has a persisted record
	Listed   bool // appears in the job list
	State    string
}

// Status values.
const (
	StatusComplete      = "complete"
	StatusDigestPending = "digest-pending"
	StatusFailed        = "failed"
	StatusPending       = "pending"
	StatusOrphaned      = "orphaned"
)

// VerifyResult holds the outcome of an offline mirror check.
type VerifyResult struct {
	Intact []string
	Broken []SourceError
}

// PruneResult holds the outcome of a prune operation.
type PruneResult struct {
	Removed []PrunedSource
	Errors  []SourceError
}

// PrunedSource is a source dropped from state, with the mirror directory
// removed alongside it (empty when the directory was shared or absent).
type PrunedSource struct {
	Source string
	Path   string
}
