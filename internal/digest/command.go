package digest

import (
	"bytes"
	"context"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"strings"
	"text/template"
	"time"
)

// CommandGenerator runs an external program for each digest. Every
// argument is a text/template rendered against the Request, so
// {{.Repo}}, {{.CodeDir}}, {{.Output}}, {{.Owner}} and {{.Name}} are
// available. The program writes to a temporary path that is renamed to
// the real output only after it exits successfully.
type CommandGenerator struct {
	Args    []string
	Timeout time.Duration
	Dir     string // working directory, empty = current
}

// NewCommandGenerator parses args up front so template mistakes surface
// before the run starts.
func NewCommandGenerator(args []string, timeout time.Duration) (*CommandGenerator, error) {
	if len(args) == 0 {
		return nil, fmt.Errorf("command generator needs at least a program name")
	}
	for i, a := range args {
		if _, err := parseArg(a); err != nil {
			return nil, fmt.Errorf("argument %d %q: %w", i, a, err)
		}
	}
	return &CommandGenerator{Args: args, Timeout: timeout}, nil
}

func parseArg(arg string) (*template.Template, error) {
	return template.New("").Option("missingkey=error").Parse(arg)
}

// renderArgs expands every argument template against req.
func renderArgs(args []string, req Request) ([]string, error) {
	out := make([]string, len(args))
	for i, a := range args {
		tmpl, err := parseArg(a)
		if err != nil {
			return nil, fmt.Errorf("parsing argument %d: %w", i, err)
		}
		var buf bytes.Buffer
		if err := tmpl.Execute(&buf, req); err != nil {
			return nil, fmt.Errorf("rendering argument %d: %w", i, err)
		}
		out[i] = buf.String()
	}
	return out, nil
}

func (g *CommandGenerator) Generate(ctx context.Context, req Request) error {
	if g.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, g.Timeout)
		defer cancel()
	}

	if err := os.MkdirAll(filepath.Dir(req.Output), 0755); err != nil {
		return &Error{Source: req.Repo, Err: fmt.Errorf("creating output directory: %w", err)}
	}

	partial := req.Output + ".partial"
	_ = os.Remove(partial)
	defer func() { _ = os.Remove(partial) }()

	tmpReq := req
	tmpReq.Output = partial
	args, err := renderArgs(g.Args, tmpReq)
	if err != nil {
		return &Error{Source: req.Repo, Err: err}
	}

	cmd := exec.CommandContext(ctx, args[0], args[1:]...)
	cmd.Dir = g.Dir
	cmd.WaitDelay = time.Second
	output, err := cmd.CombinedOutput()
	if err != nil {
		if ctx.Err() != nil {
			err = fmt.Errorf("%w after %s", ctx.Err(), g.Timeout)
		}
		return &Error{
			Source: req.Repo,
			Err:    fmt.Errorf("%s: %w: %s", args[0], err, strings.TrimSpace(string(output))),
			Hint:   "check that the digest command is installed and works on this repository",
		}
	}

	info, err := os.Stat(partial)
	if err != nil {
		return &Error{Source: req.Repo, Err: fmt.Errorf("command did not write its output: %w", err), Hint: "the command must write to {{.Output}}"}
	}
	if info.Size() == 0 {
		return &Error{Source: req.Repo, Err: fmt.Errorf("command wrote an empty digest")}
	}

	if err := os.Rename(partial, req.Output); err != nil {
		return &Error{Source: req.Repo, Err: fmt.Errorf("moving digest into place: %w", err)}
	}
	return nil
}

func (g *CommandGenerator) Close() error { return nil }
