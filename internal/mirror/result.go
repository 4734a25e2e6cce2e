package mirror

import (
	"errors"
	"fmt"
)

// ErrSync wraps every reason carried by a Failed result.
var ErrSync = errors.New("mirror sync failed")

// Kind classifies the outcome of a sync.
type Kind int

const (
	Failed Kind = iota
	FreshClone
	Updated
	UpToDate
)

func (k Kind) String() string {
	switch k {
	case FreshClone:
		return "fresh-clone"
	case Updated:
		return "updated"
	case UpToDate:
		return "up-to-date"
	default:
		return "failed"
	}
}

// Result is the outcome of Synchronizer.SyncTo.
type Result struct {
	Kind        Kind
	OldRevision string // Updated only
	NewRevision string // HEAD after a successful sync
	Reason      error  // Failed only, wraps ErrSync
}

// OK reports whether the working copy is now valid.
func (r Result) OK() bool {
	return r.Kind != Failed
}

// Changed reports whether the working copy content differs from the
// previous successful sync, or no previous copy existed.
func (r Result) Changed() bool {
	return r.Kind == FreshClone || r.Kind == Updated
}

func (r Result) String() string {
	switch r.Kind {
	case Updated:
		return fmt.Sprintf("updated %s -> %s", shortRev(r.OldRevision), shortRev(r.NewRevision))
	case Failed:
		return fmt.Sprintf("failed: %v", r.Reason)
	default:
		return r.Kind.String()
	}
}

func freshClone(rev string) Result {
	return Result{Kind: FreshClone, NewRevision: rev}
}

func updated(oldRev, newRev string) Result {
	return Result{Kind: Updated, OldRevision: oldRev, NewRevision: newRev}
}

func upToDate(rev string) Result {
	return Result{Kind: UpToDate, NewRevision: rev}
}

func failed(format string, args ...any) Result {
	return Result{Kind: Failed, Reason: fmt.Errorf("%w: "+format, append([]any{ErrSync}, args...)...)}
}

func shortRev(rev string) string {
	if len(rev) > 7 {
		return rev[:7]
	}
	return rev
}
