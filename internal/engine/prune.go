package engine

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"sort"

	"github.com/bianoble/gist-crawler/internal/sandbox"
	"github.com/bianoble/gist-crawler/internal/source"
	"github.com/bianoble/gist-crawler/internal/state"
)

// PruneEngine drops state and mirrors for sources no longer in the job list.
// Nothing is ever pruned during a crawl; this only runs when asked.
type PruneEngine struct {
	Store      state.Store
	MirrorRoot string
}

// PruneOptions configures a prune operation.
type PruneOptions struct {
	DryRun bool
}

// Prune removes every record whose source is not in refs, and its mirror
// directory unless a listed source maps to the same directory.
func (e *PruneEngine) Prune(records map[string]state.Record, refs []string, opts PruneOptions) (*PruneResult, error) {
	result := &PruneResult{}

	listed := make(map[string]bool, len(refs))
	keepKeys := make(map[string]bool)
	for _, ref := range refs {
		listed[ref] = true
		if id, err := source.Parse(ref); err == nil {
			keepKeys[id.LocalKey] = true
		}
	}

	var stale []string
	for ref := range records {
		if !listed[ref] {
			stale = append(stale, ref)
		}
	}
	sort.Strings(stale)

	for _, ref := range stale {
		pruned := PrunedSource{Source: ref}

		if id, err := source.Parse(ref); err == nil && !keepKeys[id.LocalKey] {
			if paths, err := LayoutFor(e.MirrorRoot, id); err == nil {
				if _, statErr := os.Stat(paths.Dir); statErr == nil {
					pruned.Path = paths.Dir
				} else if !errors.Is(statErr, fs.ErrNotExist) {
					result.Errors = append(result.Errors, SourceError{Source: ref, Err: statErr})
					continue
				}
			}
			if pruned.Path != "" && !opts.DryRun {
				if err := sandbox.SafeRemoveAll(e.MirrorRoot, id.LocalKey); err != nil {
					result.Errors = append(result.Errors, SourceError{Source: ref, Err: fmt.Errorf("removing mirror: %w", err)})
					continue
				}
			}
		}

		if !opts.DryRun {
			delete(records, ref)
		}
		result.Removed = append(result.Removed, pruned)
	}

	if opts.DryRun || len(result.Removed) == 0 {
		return result, nil
	}
	if err := e.Store.Save(records); err != nil {
		return result, fmt.Errorf("saving pruned state: %w", err)
	}
	return result, nil
}
