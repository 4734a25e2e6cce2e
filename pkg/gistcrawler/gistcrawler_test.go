package gistcrawler

import (
	"context"
	"os"
	"os/exec"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// newRemote creates a bare repository at <tmp>/acme/tools.git with one
// commit and returns a file:// reference to it.
func newRemote(t *testing.T) string {
	t.Helper()
	if _, err := exec.LookPath("git"); err != nil {
		t.Skip("git not available")
	}

	run := func(dir string, args ...string) {
		t.Helper()
		cmd := exec.Command("git", args...)
		cmd.Dir = dir
		cmd.Env = append(os.Environ(), "GIT_AUTHOR_NAME=test", "GIT_AUTHOR_EMAIL=test@test.com", "GIT_COMMITTER_NAME=test", "GIT_COMMITTER_EMAIL=test@test.com")
		if out, err := cmd.CombinedOutput(); err != nil {
			t.Fatalf("git %v: %s: %v", args, out, err)
		}
	}

	work := t.TempDir()
	bare := filepath.Join(t.TempDir(), "acme", "tools.git")
	run(work, "init", "-b", "main")
	require.NoError(t, os.WriteFile(filepath.Join(work, "README"), []byte("tools\n"), 0644))
	run(work, "add", ".")
	run(work, "commit", "-m", "initial")
	run(work, "clone", "--bare", work, bare)

	return "file://" + filepath.ToSlash(bare)
}

func writeJobs(t *testing.T, dir string, lines ...string) string {
	t.Helper()
	path := filepath.Join(dir, "crawl-jobs.txt")
	content := "# repositories to mirror\n"
	for _, l := range lines {
		content += l + "\n"
	}
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))
	return path
}

func TestNewDefaults(t *testing.T) {
	client, err := New(Options{})
	require.NoError(t, err)
	defer client.Close()

	assert.Equal(t, filepath.Join(DefaultDataDir, DefaultStateFile), client.StatePath())
	assert.True(t, filepath.IsAbs(client.MirrorRoot()))
	assert.Equal(t, DefaultJobsPath, client.jobsPath)
	assert.IsType(t, &CommandGenerator{}, client.generator)
}

func TestNewRejectsNegativeDepth(t *testing.T) {
	_, err := New(Options{GitDepth: -1})
	assert.Error(t, err)
}

func TestCrawlMissingJobList(t *testing.T) {
	dir := t.TempDir()
	client, err := New(Options{JobsPath: filepath.Join(dir, "absent.txt"), DataDir: dir, Generator: NoopGenerator{}})
	require.NoError(t, err)

	_, err = client.Crawl(context.Background())
	assert.Error(t, err)
	_, err = client.Status()
	assert.Error(t, err)
	_, err = client.Prune(PruneOptions{})
	assert.Error(t, err)
}

func TestClientLifecycle(t *testing.T) {
	ref := newRemote(t)
	dir := t.TempDir()
	dataDir := filepath.Join(dir, "data")
	jobsPath := writeJobs(t, dir, ref, "not-a-reference")

	client, err := New(Options{JobsPath: jobsPath, DataDir: dataDir, Generator: NoopGenerator{}})
	require.NoError(t, err)
	defer client.Close()

	result, err := client.Crawl(context.Background())
	require.NoError(t, err)
	assert.Equal(t, Summary{Total: 2, Succeeded: 1, Failed: 1}, result.Summary)
	assert.DirExists(t, filepath.Join(dataDir, "acme_tools", "code", ".git"))
	assert.FileExists(t, client.StatePath())

	statuses, err := client.Status()
	require.NoError(t, err)
	require.Len(t, statuses, 2)
	assert.Equal(t, StatusComplete, statuses[0].State)
	assert.Equal(t, StatusFailed, statuses[1].State)

	// The no-op generator writes nothing, so the digest check fails.
	vr := client.Verify(context.Background(), []string{ref})
	require.Len(t, vr.Broken, 1)

	// Dropping the source from the job list lets prune reclaim it.
	writeJobs(t, dir)
	pruned, err := client.Prune(PruneOptions{})
	require.NoError(t, err)
	assert.Len(t, pruned.Removed, 2)
	assert.NoDirExists(t, filepath.Join(dataDir, "acme_tools"))

	statuses, err = client.Status()
	require.NoError(t, err)
	assert.Empty(t, statuses)
}
