package engine

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/bianoble/gist-crawler/internal/state"
)

func TestStatus(t *testing.T) {
	records := map[string]state.Record{
		"https://example.com/acme/done":     {CloneSuccess: true, GistSuccess: true},
		"https://example.com/acme/half":     {CloneSuccess: true},
		"https://example.com/acme/broken":   {},
		"https://example.com/acme/zremoved": {CloneSuccess: true, GistSuccess: true},
		"https://example.com/acme/aremoved": {},
	}
	refs := []string{
		"https://example.com/acme/half",
		"https://example.com/acme/done",
		"https://example.com/acme/broken",
		"https://example.com/acme/new",
		"https://example.com/acme/done",
	}

	statuses := Status(records, refs)
	require.Len(t, statuses, 6)

	got := make([]string, len(statuses))
	for i, s := range statuses {
		got[i] = s.Source + "=" + s.State
	}
	assert.Equal(t, []string{
		"https://example.com/acme/half=" + StatusDigestPending,
		"https://example.com/acme/done=" + StatusComplete,
		"https://example.com/acme/broken=" + StatusFailed,
		"https://example.com/acme/new=" + StatusPending,
		"https://example.com/acme/aremoved=" + StatusOrphaned,
		"https://example.com/acme/zremoved=" + StatusOrphaned,
	}, got)

	assert.Equal(t, "acme_half", statuses[0].LocalKey)
	assert.True(t, statuses[0].Tracked)
	assert.False(t, statuses[3].Tracked)
	assert.False(t, statuses[4].Listed)
}

func TestStatusMalformedReferenceHasNoKey(t *testing.T) {
	statuses := Status(map[string]state.Record{"nope": {}}, []string{"nope"})
	require.Len(t, statuses, 1)
	assert.Empty(t, statuses[0].LocalKey)
	assert.Equal(t, StatusFailed, statuses[0].State)
}
