package mirror

import (
	"context"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"strconv"
	"strings"
	"time"
)

// Git runs git subprocesses with a per-command timeout.
type Git struct {
	Binary  string        // defaults to "git"
	Timeout time.Duration // 0 = bounded only by the caller's context
	Depth   int           // clone depth, 0 = full history
}

// CommandError reports a failed git invocation with its captured output.
type CommandError struct {
	Args   []string
	Output string
	Err    error
}

func (e *CommandError) Error() string {
	msg := fmt.Sprintf("git %s failed: %s", strings.Join(e.Args, " "), e.Err)
	if e.Output != "" {
		msg += ": " + e.Output
	}
	return msg
}

func (e *CommandError) Unwrap() error {
	return e.Err
}

func (g Git) binary() string {
	if g.Binary == "" {
		return "git"
	}
	return g.Binary
}

func (g Git) run(ctx context.Context, dir string, args ...string) (string, error) {
	if g.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, g.Timeout)
		defer cancel()
	}

	env := append(os.Environ(), "GIT_TERMINAL_PROMPT=0")
	full := args
	if dir != "" {
		full = append([]string{"-C", dir}, args...)
		// Never let a broken .git fall back to an enclosing repository.
		if abs, err := filepath.Abs(dir); err == nil {
			env = append(env, "GIT_CEILING_DIRECTORIES="+filepath.Dir(abs))
		}
	}

	cmd := exec.CommandContext(ctx, g.binary(), full...)
	cmd.Env = env
	cmd.WaitDelay = time.Second
	output, err := cmd.CombinedOutput()
	if err != nil {
		if ctx.Err() != nil {
			err = fmt.Errorf("%w (%w)", ctx.Err(), err)
		}
		return "", &CommandError{Args: args, Output: strings.TrimSpace(string(output)), Err: err}
	}
	return strings.TrimSpace(string(output)), nil
}

// Clone clones repo into dest.
func (g Git) Clone(ctx context.Context, repo, dest string) error {
	args := []string{"clone", "--quiet"}
	if g.Depth > 0 {
		args = append(args, "--depth", strconv.Itoa(g.Depth))
	}
	args = append(args, "--", repo, dest)
	_, err := g.run(ctx, "", args...)
	return err
}

// PullFastForward advances the checked-out branch only if it can be
// fast-forwarded to its upstream.
func (g Git) PullFastForward(ctx context.Context, repoDir string) error {
	_, err := g.run(ctx, repoDir, "pull", "--ff-only", "--quiet")
	return err
}

// RevParse resolves rev to an object name.
func (g Git) RevParse(ctx context.Context, repoDir, rev string) (string, error) {
	return g.run(ctx, repoDir, "rev-parse", "--verify", rev)
}

// RemoteURL returns the configured URL of the origin remote.
func (g Git) RemoteURL(ctx context.Context, repoDir string) (string, error) {
	return g.run(ctx, repoDir, "config", "--get", "remote.origin.url")
}
