package mirror

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
)

// errForeignOrigin marks a working copy cloned from a remote other than the
// one being synced.
var errForeignOrigin = errors.New("working copy tracks a different remote")

// Syncer keeps a local working copy in step with its remote.
type Syncer interface {
	SyncTo(ctx context.Context, ref, localPath string) Result
}

// Synchronizer owns the working copy under localPath. It clones when no
// valid copy exists, fast-forwards when one does, and deletes and reclones
// any copy it cannot update.
type Synchronizer struct {
	git    Git
	logger *slog.Logger
}

// NewSynchronizer returns a Synchronizer driving the given git binary.
func NewSynchronizer(git Git, logger *slog.Logger) *Synchronizer {
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	return &Synchronizer{git: git, logger: logger}
}

// SyncTo makes localPath a current working copy of ref.
func (s *Synchronizer) SyncTo(ctx context.Context, ref, localPath string) Result {
	log := s.logger.With("source", ref, "path", localPath)

	if HasMetadata(localPath) {
		res, err := s.update(ctx, ref, localPath)
		if err == nil {
			log.Debug("mirror updated in place", "result", res.String())
			return res
		}
		if ctx.Err() != nil {
			// Interrupted, not corrupt: leave the copy for the next run.
			return failed("update interrupted: %w", err)
		}

		precondition := "update command failed on existing .git"
		if errors.Is(err, errForeignOrigin) {
			precondition = "origin of existing .git does not match source"
		}
		log.Warn("update failed, deleting working copy to reclone",
			"precondition", precondition, "error", err)
		if rmErr := os.RemoveAll(localPath); rmErr != nil {
			return failed("removing unusable working copy: %w", rmErr)
		}
	}

	return s.clone(ctx, ref, localPath, log)
}

func (s *Synchronizer) update(ctx context.Context, ref, localPath string) (Result, error) {
	origin, err := s.git.RemoteURL(ctx, localPath)
	if err != nil {
		return Result{}, err
	}
	if !sameRemote(origin, ref) {
		return Result{}, fmt.Errorf("%w: origin is %s", errForeignOrigin, origin)
	}

	before, err := s.git.RevParse(ctx, localPath, "HEAD")
	if err != nil {
		return Result{}, err
	}
	if err := s.git.PullFastForward(ctx, localPath); err != nil {
		return Result{}, err
	}
	after, err := s.git.RevParse(ctx, localPath, "HEAD")
	if err != nil {
		return Result{}, err
	}

	if before != after {
		return updated(before, after), nil
	}
	return upToDate(after), nil
}

func (s *Synchronizer) clone(ctx context.Context, ref, localPath string, log *slog.Logger) Result {
	if _, err := os.Lstat(localPath); err == nil {
		log.Warn("deleting directory without usable git metadata before clone",
			"precondition", "path exists but .git is missing")
		if err := os.RemoveAll(localPath); err != nil {
			return failed("removing partial directory: %w", err)
		}
	} else if !errors.Is(err, fs.ErrNotExist) {
		return failed("inspecting %s: %w", localPath, err)
	}

	if err := os.MkdirAll(filepath.Dir(localPath), 0755); err != nil {
		return failed("creating parent directory: %w", err)
	}

	if err := s.git.Clone(ctx, ref, localPath); err != nil {
		if rmErr := os.RemoveAll(localPath); rmErr != nil {
			log.Warn("could not remove partial clone", "error", rmErr)
		}
		return failed("%w", err)
	}

	// An empty remote clones fine but has no HEAD yet.
	rev, err := s.git.RevParse(ctx, localPath, "HEAD")
	if err != nil {
		log.Debug("cloned repository has no HEAD", "error", err)
		rev = ""
	}
	log.Debug("mirror cloned", "revision", rev)
	return freshClone(rev)
}

// HasMetadata reports whether dir holds git metadata. It does not check
// that the metadata is intact; the update path finds that out.
func HasMetadata(dir string) bool {
	_, err := os.Stat(filepath.Join(dir, ".git"))
	return err == nil
}

// sameRemote compares a configured origin URL with a source reference.
// Local paths and file:// URLs are compared by resolved location.
func sameRemote(origin, ref string) bool {
	return normalizeRemote(origin) == normalizeRemote(ref)
}

func normalizeRemote(s string) string {
	s = strings.TrimRight(strings.TrimSpace(s), "/")
	if p, ok := strings.CutPrefix(s, "file://"); ok {
		s = p
	} else if strings.Contains(s, "://") || isSCPLike(s) {
		return s
	}

	if abs, err := filepath.Abs(s); err == nil {
		s = abs
	}
	if real, err := filepath.EvalSymlinks(s); err == nil {
		s = real
	}
	return s
}

// isSCPLike reports user@host:path style remotes, where a colon comes
// before any slash.
func isSCPLike(s string) bool {
	colon := strings.Index(s, ":")
	slash := strings.Index(s, "/")
	return colon > 0 && (slash < 0 || colon < slash)
}
