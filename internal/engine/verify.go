package engine

import (
	"context"
	"fmt"
	"os"
	"sort"

	"github.com/bianoble/gist-crawler/internal/mirror"
	"github.com/bianoble/gist-crawler/internal/source"
	"github.com/bianoble/gist-crawler/internal/state"
)

// VerifyEngine checks, without touching the network, that every source
// recorded as mirrored still has a usable working copy and digest.
type VerifyEngine struct {
	Git        mirror.Git
	MirrorRoot string
}

// Verify inspects the named sources, or every recorded one when refs is empty.
// Sources whose last attempt failed are not checked.
func (e *VerifyEngine) Verify(ctx context.Context, records map[string]state.Record, refs []string) *VerifyResult {
	result := &VerifyResult{}

	if len(refs) == 0 {
		for ref := range records {
			refs = append(refs, ref)
		}
		sort.Strings(refs)
	}

	for _, ref := range refs {
		rec, ok := records[ref]
		if !ok || !rec.CloneSuccess {
			continue
		}
		if err := e.verifyOne(ctx, ref, rec); err != nil {
			result.Broken = append(result.Broken, SourceError{Source: ref, Err: err})
			continue
		}
		result.Intact = append(result.Intact, ref)
	}

	return result
}

func (e *VerifyEngine) verifyOne(ctx context.Context, ref string, rec state.Record) error {
	id, err := source.Parse(ref)
	if err != nil {
		return err
	}
	paths, err := LayoutFor(e.MirrorRoot, id)
	if err != nil {
		return err
	}

	if !mirror.HasMetadata(paths.Code) {
		return fmt.Errorf("working copy %s has no git metadata", paths.Code)
	}
	head, err := e.Git.RevParse(ctx, paths.Code, "HEAD")
	if err != nil {
		return fmt.Errorf("working copy %s is unreadable: %w", paths.Code, err)
	}
	if rec.Revision != "" && head != rec.Revision {
		return fmt.Errorf("working copy at %s, state records %s", head, rec.Revision)
	}

	if rec.GistSuccess {
		info, err := os.Stat(paths.Gist)
		if err != nil {
			return fmt.Errorf("digest missing: %w", err)
		}
		if info.Size() == 0 {
			return fmt.Errorf("digest %s is empty", paths.Gist)
		}
	}
	return nil
}
