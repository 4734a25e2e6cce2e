// Package gistcrawler provides the public Go library API for gist-crawler.
//
// gist-crawler keeps a local mirror of every repository named in a job
// list and maintains a text digest of each mirror, regenerating it only
// when the mirror changed or the previous digest is missing.
//
// # Basic Usage
//
//	client, err := gistcrawler.New(gistcrawler.Options{
//	    JobsPath: "crawl-jobs.txt",
//	    DataDir:  "data",
//	})
//	if err != nil {
//	    log.Fatal(err)
//	}
//	defer client.Close()
//
//	// Mirror every listed repository and refresh stale digests
//	result, err := client.Crawl(ctx)
//
//	// Report per-source progress without touching the network
//	statuses, err := client.Status()
package gistcrawler

import (
	"context"
	"fmt"
	"log/slog"
	"path/filepath"
	"time"

	"github.com/bianoble/gist-crawler/internal/digest"
	"github.com/bianoble/gist-crawler/internal/engine"
	"github.com/bianoble/gist-crawler/internal/jobs"
	"github.com/bianoble/gist-crawler/internal/mirror"
	"github.com/bianoble/gist-crawler/internal/state"
)

// Defaults applied by New.
const (
	DefaultJobsPath   = "crawl-jobs.txt"
	DefaultDataDir    = "data"
	DefaultStateFile  = "crawl-state.yaml"
	DefaultGitTimeout = 10 * time.Minute
)

// Options configures a gist-crawler client.
type Options struct {
	// JobsPath is the job list, one repository reference per line.
	JobsPath string

	// DataDir is the mirror root. Each source gets <DataDir>/<owner>_<name>.
	DataDir string

	// StatePath is the state file. Default: <DataDir>/crawl-state.yaml.
	StatePath string

	// GitBinary, GitTimeout and GitDepth control the git subprocesses.
	GitBinary  string
	GitTimeout time.Duration
	GitDepth   int

	// Generator produces digests. Default: the gitingest command.
	Generator Generator

	// Logger receives progress and diagnostics. Default: discard.
	Logger *slog.Logger
}

// PruneOptions configures a prune operation.
type PruneOptions struct {
	DryRun bool
}

// Client is the main entry point for the gist-crawler library.
type Client struct {
	generator  Generator
	logger     *slog.Logger
	store      *state.FileStore
	git        mirror.Git
	jobsPath   string
	mirrorRoot string
}

// New creates a Client. Nothing is read from disk until an operation runs.
func New(opts Options) (*Client, error) {
	if opts.JobsPath == "" {
		opts.JobsPath = DefaultJobsPath
	}
	if opts.DataDir == "" {
		opts.DataDir = DefaultDataDir
	}
	if opts.StatePath == "" {
		opts.StatePath = filepath.Join(opts.DataDir, DefaultStateFile)
	}
	if opts.GitTimeout == 0 {
		opts.GitTimeout = DefaultGitTimeout
	}
	if opts.GitDepth < 0 {
		return nil, fmt.Errorf("git depth must not be negative, got %d", opts.GitDepth)
	}
	if opts.Logger == nil {
		opts.Logger = slog.New(slog.DiscardHandler)
	}
	if opts.Generator == nil {
		gen, err := digest.NewCommandGenerator(digest.DefaultCommand, 0)
		if err != nil {
			return nil, fmt.Errorf("building default generator: %w", err)
		}
		opts.Generator = gen
	}

	root, err := filepath.Abs(opts.DataDir)
	if err != nil {
		return nil, fmt.Errorf("resolving data directory: %w", err)
	}

	return &Client{
		generator:  opts.Generator,
		logger:     opts.Logger,
		store:      state.NewFileStore(opts.StatePath, opts.Logger),
		git:        mirror.Git{Binary: opts.GitBinary, Timeout: opts.GitTimeout, Depth: opts.GitDepth},
		jobsPath:   opts.JobsPath,
		mirrorRoot: root,
	}, nil
}

// StatePath returns the state file location.
func (c *Client) StatePath() string { return c.store.Path() }

// MirrorRoot returns the absolute mirror root.
func (c *Client) MirrorRoot() string { return c.mirrorRoot }

// Jobs reads the job list.
func (c *Client) Jobs() ([]string, error) {
	return jobs.Load(c.jobsPath)
}

// Crawl processes every source in the job list. An unreadable job list is
// the only error; per-source failures are reported in the result.
func (c *Client) Crawl(ctx context.Context) (*CrawlResult, error) {
	refs, err := c.Jobs()
	if err != nil {
		return nil, err
	}
	return c.CrawlSources(ctx, refs), nil
}

// CrawlSources processes refs in order, ignoring the job list.
func (c *Client) CrawlSources(ctx context.Context, refs []string) *CrawlResult {
	eng := &engine.CrawlEngine{
		Store:      c.store,
		Syncer:     mirror.NewSynchronizer(c.git, c.logger),
		Generator:  c.generator,
		MirrorRoot: c.mirrorRoot,
		Logger:     c.logger,
	}
	return eng.RunAll(ctx, refs)
}

// Status reports the recorded progress of every listed and tracked source.
func (c *Client) Status() ([]SourceStatus, error) {
	refs, err := c.Jobs()
	if err != nil {
		return nil, err
	}
	return engine.Status(c.store.Load(), refs), nil
}

// Verify checks that what the state file claims is actually on disk.
// With no names, every tracked source is checked.
func (c *Client) Verify(ctx context.Context, sourceNames []string) *VerifyResult {
	eng := &engine.VerifyEngine{Git: c.git, MirrorRoot: c.mirrorRoot}
	return eng.Verify(ctx, c.store.Load(), sourceNames)
}

// Prune forgets sources no longer in the job list and deletes their mirrors.
func (c *Client) Prune(opts PruneOptions) (*PruneResult, error) {
	refs, err := c.Jobs()
	if err != nil {
		return nil, err
	}
	eng := &engine.PruneEngine{Store: c.store, MirrorRoot: c.mirrorRoot}
	return eng.Prune(c.store.Load(), refs, engine.PruneOptions{DryRun: opts.DryRun})
}

// Close releases the generator.
func (c *Client) Close() error {
	return c.generator.Close()
}
