package cmd

import (
	"fmt"
	"io"
	"os"

	"github.com/dustin/go-humanize"
	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/bianoble/gist-crawler/internal/config"
	"github.com/bianoble/gist-crawler/internal/digest"
	"github.com/bianoble/gist-crawler/internal/logging"
	"github.com/bianoble/gist-crawler/pkg/gistcrawler"
)

// flagKeys maps config keys to the persistent flags that override them.
var flagKeys = map[string]string{
	"jobs":           "jobs",
	"data_dir":       "data-dir",
	"logging.level":  "log-level",
	"logging.format": "log-format",
}

// loadConfig resolves layered configuration with this command's flags on top.
func loadConfig(cmd *cobra.Command) (*config.Config, error) {
	cfg, layers, err := config.Load(config.Options{
		Discover: config.DiscoverOptions{
			ProjectPath: configPath,
			NoInherit:   noInherit || config.EnvNoInherit(),
		},
		Flags:    cmd.Flags(),
		FlagKeys: flagKeys,
	})
	if err != nil {
		return nil, err
	}

	for _, l := range layers {
		if l.Loaded {
			detail("config: %s (%s)", l.Path, l.Level)
		}
	}

	switch {
	case verbose:
		cfg.Logging.Level = "debug"
	case quiet:
		cfg.Logging.Level = "error"
	}
	return cfg, nil
}

// newClient wires configuration, logging and the digest generator into a
// library client. Logs go to stderr; human output goes to stdout.
func newClient(cmd *cobra.Command) (*gistcrawler.Client, error) {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return nil, err
	}

	logger, err := logging.New(cfg.Logging, cmd.ErrOrStderr())
	if err != nil {
		return nil, err
	}

	gen, err := digest.FromConfig(cfg.Generator)
	if err != nil {
		return nil, fmt.Errorf("configuring digest generator: %w", err)
	}

	client, err := gistcrawler.New(gistcrawler.Options{
		JobsPath:   cfg.Jobs,
		DataDir:    cfg.DataDir,
		StatePath:  cfg.StatePath(),
		GitBinary:  cfg.Git.Binary,
		GitTimeout: cfg.Git.Timeout,
		GitDepth:   cfg.Git.Depth,
		Generator:  gen,
		Logger:     logger,
	})
	if err != nil {
		_ = gen.Close()
		return nil, err
	}
	return client, nil
}

// info prints a line unless quiet mode is active.
func info(format string, args ...any) {
	if !quiet {
		fmt.Printf(format+"\n", args...)
	}
}

// detail prints a line only in verbose mode.
func detail(format string, args ...any) {
	if verbose {
		fmt.Printf("  "+format+"\n", args...)
	}
}

// errorf prints an error message to stderr.
func errorf(format string, args ...any) {
	fmt.Fprintf(os.Stderr, color.RedString("error: ")+format+"\n", args...)
}

// printSummary writes the end-of-run report.
func printSummary(w io.Writer, result *gistcrawler.CrawlResult) {
	var generated, skipped int
	var bytes int64
	for _, s := range result.Sources {
		if s.Generated {
			generated++
			bytes += s.GistBytes
		}
		if s.Skipped {
			skipped++
		}
	}

	failed := fmt.Sprintf("%d", result.Failed)
	if result.Failed > 0 {
		failed = color.RedString(failed)
	}

	fmt.Fprintln(w, color.New(color.Bold).Sprint("Crawl summary"))
	fmt.Fprintf(w, "  total:      %d\n", result.Total)
	fmt.Fprintf(w, "  succeeded:  %s\n", color.GreenString("%d", result.Succeeded))
	fmt.Fprintf(w, "  failed:     %s\n", failed)
	fmt.Fprintf(w, "  digests:    %d generated (%s), %d unchanged\n", generated, humanize.Bytes(uint64(bytes)), skipped)
	fmt.Fprintf(w, "  state:      %s\n", result.StatePath)
	fmt.Fprintf(w, "  mirrors:    %s\n", result.MirrorRoot)

	for _, e := range result.Errors {
		fmt.Fprintf(w, "  %s %s\n", color.RedString("✗"), e.Error())
	}
}
