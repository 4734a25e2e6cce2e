package cmd

import (
	"bytes"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/fatih/color"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/bianoble/gist-crawler/internal/engine"
	"github.com/bianoble/gist-crawler/internal/state"
	"github.com/bianoble/gist-crawler/pkg/gistcrawler"
)

func init() {
	color.NoColor = true
}

func TestPrintSummary(t *testing.T) {
	result := &gistcrawler.CrawlResult{
		Summary: gistcrawler.Summary{Total: 3, Succeeded: 2, Failed: 1},
		Sources: []gistcrawler.Outcome{
			{Source: "https://example.com/acme/a", Generated: true, GistBytes: 2048},
			{Source: "https://example.com/acme/b", Skipped: true},
			{Source: "https://example.com/acme/c", Err: errors.New("clone failed")},
		},
		Errors:     []gistcrawler.SourceError{{Source: "https://example.com/acme/c", Err: errors.New("clone failed")}},
		StatePath:  "data/crawl-state.yaml",
		MirrorRoot: "/srv/data",
	}

	var buf bytes.Buffer
	printSummary(&buf, result)
	out := buf.String()

	assert.Contains(t, out, "total:      3")
	assert.Contains(t, out, "succeeded:  2")
	assert.Contains(t, out, "failed:     1")
	assert.Contains(t, out, "1 generated (2.0 kB), 1 unchanged")
	assert.Contains(t, out, "state:      data/crawl-state.yaml")
	assert.Contains(t, out, "mirrors:    /srv/data")
	assert.Contains(t, out, "https://example.com/acme/c: clone failed")
}

func TestRenderStatus(t *testing.T) {
	statuses := []gistcrawler.SourceStatus{
		{
			Source: "https://example.com/acme/a",
			State:  engine.StatusComplete,
			Record: state.Record{
				CloneSuccess: true,
				GistSuccess:  true,
				Revision:     "0123456789abcdef0123",
				GistBytes:    1500,
				LastCrawled:  time.Now().Add(-2 * time.Hour),
			},
		},
		{Source: "https://example.com/acme/b", State: engine.StatusPending},
	}

	var buf bytes.Buffer
	renderStatus(&buf, statuses)
	out := buf.String()

	assert.Contains(t, out, "SOURCE")
	assert.Contains(t, out, "0123456789ab")
	assert.NotContains(t, out, "0123456789abc")
	assert.Contains(t, out, "1.5 kB")
	assert.Contains(t, out, "2 hours ago")
	assert.Contains(t, out, engine.StatusPending)
	assert.Contains(t, strings.ToLower(out), "2 source(s)")
}

func TestColorStateKeepsText(t *testing.T) {
	for _, s := range []string{
		gistcrawler.StatusComplete,
		gistcrawler.StatusFailed,
		gistcrawler.StatusPending,
		gistcrawler.StatusDigestPending,
		gistcrawler.StatusOrphaned,
	} {
		assert.Equal(t, s, colorState(s))
	}
}

func TestVersionCommand(t *testing.T) {
	var buf bytes.Buffer
	rootCmd.SetOut(&buf)
	rootCmd.SetArgs([]string{"version"})
	t.Cleanup(func() {
		rootCmd.SetOut(nil)
		rootCmd.SetArgs(nil)
	})

	require.NoError(t, rootCmd.Execute())
	assert.Contains(t, buf.String(), "gist-crawler dev")
}

func TestCrawlFailsWithoutJobList(t *testing.T) {
	dir := t.TempDir()
	cfg := filepath.Join(dir, "gist-crawler.yaml")
	require.NoError(t, os.WriteFile(cfg, []byte("generator:\n  type: none\n"), 0644))

	rootCmd.SetArgs([]string{
		"crawl",
		"--config", cfg,
		"--no-inherit",
		"--quiet",
		"--jobs", filepath.Join(dir, "missing.txt"),
		"--data-dir", filepath.Join(dir, "data"),
	})
	rootCmd.SetErr(&bytes.Buffer{})
	t.Cleanup(func() {
		rootCmd.SetArgs(nil)
		rootCmd.SetErr(nil)
		quiet, noInherit = false, false
	})

	err := rootCmd.Execute()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "missing.txt")
}

func TestLoadConfigAppliesVerbosity(t *testing.T) {
	dir := t.TempDir()
	configPath = filepath.Join(dir, "absent.yaml")
	noInherit = true
	quiet = true
	t.Cleanup(func() {
		configPath = "gist-crawler.yaml"
		noInherit, quiet = false, false
	})

	cfg, err := loadConfig(crawlCmd)
	require.NoError(t, err)
	assert.Equal(t, "error", cfg.Logging.Level)
}
