package engine

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"github.com/bianoble/gist-crawler/internal/digest"
	"github.com/bianoble/gist-crawler/internal/mirror"
	"github.com/bianoble/gist-crawler/internal/sandbox"
	"github.com/bianoble/gist-crawler/internal/source"
	"github.com/bianoble/gist-crawler/internal/state"
)

// ErrInterrupted marks sources left unprocessed because the run was cancelled.
var ErrInterrupted = errors.New("run interrupted")

// CrawlEngine mirrors each listed source and regenerates its digest when
// the mirror changed or no valid digest exists. Sources are processed one
// at a time and state is saved after each.
type CrawlEngine struct {
	Store      state.Store
	Syncer     mirror.Syncer
	Generator  digest.Generator
	MirrorRoot string
	Logger     *slog.Logger
	Now        func() time.Time // defaults to time.Now
}

// Paths is the on-disk layout for one source under the mirror root.
type Paths struct {
	Dir  string // <root>/<local key>
	Code string // git working copy
	Gist string // digest file
}

// LayoutFor returns the mirror paths for id, refusing keys that would land
// outside root.
func LayoutFor(root string, id source.Identity) (Paths, error) {
	dir, err := sandbox.ValidatePath(root, id.LocalKey)
	if err != nil {
		return Paths{}, err
	}
	return Paths{
		Dir:  dir,
		Code: filepath.Join(dir, "code"),
		Gist: filepath.Join(dir, "gist", id.Name+"_gist.txt"),
	}, nil
}

// RunAll processes refs in order. A failing source never stops the run.
func (e *CrawlEngine) RunAll(ctx context.Context, refs []string) *CrawlResult {
	result := &CrawlResult{
		Summary:    Summary{Total: len(refs)},
		StatePath:  e.Store.Path(),
		MirrorRoot: e.MirrorRoot,
	}

	records := e.Store.Load()

	for i, ref := range refs {
		var out Outcome
		if ctx.Err() != nil {
			out = Outcome{Source: ref, Err: ErrInterrupted}
		} else {
			e.logger().Info("processing source", "index", i+1, "total", len(refs), "source", ref)
			start := time.Now()
			out = e.processSource(ctx, ref, records)
			out.Duration = time.Since(start)
		}

		result.Sources = append(result.Sources, out)
		if out.OK() {
			result.Succeeded++
		} else {
			result.Failed++
			result.Errors = append(result.Errors, SourceError{Source: ref, Err: out.Err})
		}
	}

	return result
}

func (e *CrawlEngine) processSource(ctx context.Context, ref string, records map[string]state.Record) Outcome {
	log := e.logger().With("source", ref)

	id, err := source.Parse(ref)
	var paths Paths
	if err == nil {
		paths, err = LayoutFor(e.MirrorRoot, id)
		if err != nil {
			err = fmt.Errorf("%w: %w", source.ErrMalformedReference, err)
		}
	}
	if err != nil {
		log.Error("invalid source reference", "error", err)
		e.record(ref, records, state.Record{Error: err.Error(), LastCrawled: e.now()})
		return Outcome{Source: ref, Identity: id, Err: err}
	}

	return e.syncAndGenerate(ctx, ref, id, paths, records, log)
}

func (e *CrawlEngine) syncAndGenerate(ctx context.Context, ref string, id source.Identity, paths Paths, records map[string]state.Record, log *slog.Logger) Outcome {
	out := Outcome{Source: ref, Identity: id, GistPath: paths.Gist}
	prev := records[ref]

	out.Sync = e.Syncer.SyncTo(ctx, ref, paths.Code)
	if !out.Sync.OK() {
		out.Err = out.Sync.Reason
		if ctx.Err() != nil {
			// The mirror may still be fine; keep the last known state.
			log.Warn("sync interrupted", "error", out.Err)
			return out
		}
		log.Error("sync failed", "error", out.Err)
		e.record(ref, records, state.Record{
			RepoIdentifier: id.LocalKey,
			Error:          out.Sync.Reason.Error(),
			LastCrawled:    e.now(),
		})
		return out
	}
	log.Info("mirror synced", "result", out.Sync.String())

	reason := generationReason(out.Sync, prev, paths.Gist)
	if reason == "" {
		log.Info("skipping digest generation, mirror unchanged")
		out.Skipped = true
		return out
	}

	log.Info("generating digest", "reason", reason, "output", paths.Gist)
	genErr := e.Generator.Generate(ctx, digest.Request{
		Repo:    ref,
		Owner:   id.Owner,
		Name:    id.Name,
		CodeDir: paths.Code,
		Output:  paths.Gist,
	})

	rec := state.Record{
		CloneSuccess:   true,
		GistSuccess:    genErr == nil,
		RepoIdentifier: id.LocalKey,
		Revision:       out.Sync.NewRevision,
		GistPath:       paths.Gist,
		LastCrawled:    e.now(),
	}
	if genErr != nil {
		log.Error("digest generation failed", "error", genErr)
		out.Err = genErr
		rec.Error = genErr.Error()
	} else {
		out.Generated = true
		if info, err := os.Stat(paths.Gist); err == nil {
			out.GistBytes = info.Size()
			rec.GistBytes = info.Size()
		}
		log.Info("digest saved", "bytes", out.GistBytes)
	}
	e.record(ref, records, rec)
	return out
}

// generationReason returns why a digest must be (re)generated, or "" when
// the existing one is still valid.
func generationReason(res mirror.Result, prev state.Record, gistPath string) string {
	switch {
	case res.Kind == mirror.FreshClone:
		return "fresh clone"
	case res.Kind == mirror.Updated:
		return "mirror updated"
	case !prev.GistSuccess:
		return "no valid digest recorded"
	case prev.Revision != "" && prev.Revision != res.NewRevision:
		// HEAD moved without the record catching up, e.g. a crash after pull.
		return "digest recorded for another revision"
	}
	if _, err := os.Stat(gistPath); err != nil {
		return "digest file missing"
	}
	return ""
}

// record stores rec for ref and persists the whole state immediately.
// A failed save is logged; the in-memory state stays authoritative.
func (e *CrawlEngine) record(ref string, records map[string]state.Record, rec state.Record) {
	records[ref] = rec.Normalize()
	if err := e.Store.Save(records); err != nil {
		e.logger().Error("could not save state", "path", e.Store.Path(), "error", err)
	}
}

func (e *CrawlEngine) logger() *slog.Logger {
	if e.Logger == nil {
		e.Logger = slog.New(slog.DiscardHandler)
	}
	return e.Logger
}

func (e *CrawlEngine) now() time.Time {
	if e.Now != nil {
		return e.Now()
	}
	return time.Now().UTC().Truncate(time.Second)
}
