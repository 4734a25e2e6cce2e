package engine

import (
	"sort"

	"github.com/bianoble/gist-crawler/internal/source"
	"github.com/bianoble/gist-crawler/internal/state"
)

// Status describes every listed source plus any persisted record whose
// source is no longer listed. Listed sources keep job-list order; orphaned
// records follow, sorted.
func Status(records map[string]state.Record, refs []string) []SourceStatus {
	var statuses []SourceStatus
	listed := make(map[string]bool, len(refs))

	for _, ref := range refs {
		if listed[ref] {
			continue
		}
		listed[ref] = true
		rec, tracked := records[ref]
		statuses = append(statuses, newSourceStatus(ref, rec, tracked, true))
	}

	var orphans []string
	for ref := range records {
		if !listed[ref] {
			orphans = append(orphans, ref)
		}
	}
	sort.Strings(orphans)
	for _, ref := range orphans {
		statuses = append(statuses, newSourceStatus(ref, records[ref], true, false))
	}

	return statuses
}

func newSourceStatus(ref string, rec state.Record, tracked, listed bool) SourceStatus {
	s := SourceStatus{
		Source:  ref,
		Record:  rec,
		Tracked: tracked,
		Listed:  listed,
	}
	if id, err := source.Parse(ref); err == nil {
		s.LocalKey = id.LocalKey
	}

	switch {
	case !listed:
		s.State = StatusOrphaned
	case !tracked:
		s.State = StatusPending
	case rec.Complete():
		s.State = StatusComplete
	case rec.CloneSuccess:
		s.State = StatusDigestPending
	default:
		s.State = StatusFailed
	}
	return s
}
