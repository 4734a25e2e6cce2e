package gistcrawler

import (
	"github.com/bianoble/gist-crawler/internal/digest"
	"github.com/bianoble/gist-crawler/internal/engine"
	"github.com/bianoble/gist-crawler/internal/mirror"
	"github.com/bianoble/gist-crawler/internal/state"
)

// Type aliases re-export engine and component types as the public API.

type CrawlResult = engine.CrawlResult
type Outcome = engine.Outcome
type Summary = engine.Summary
type SourceError = engine.SourceError
type SourceStatus = engine.SourceStatus
type VerifyResult = engine.VerifyResult
type PruneResult = engine.PruneResult
type PrunedSource = engine.PrunedSource
type Record = state.Record
type SyncResult = mirror.Result

// Generator produces one digest per call. See CommandGenerator,
// HTTPGenerator and NoopGenerator.
type Generator = digest.Generator
type DigestRequest = digest.Request
type CommandGenerator = digest.CommandGenerator
type HTTPGenerator = digest.HTTPGenerator
type NoopGenerator = digest.Noop

// Status values reported by Client.Status.
const (
	StatusComplete      = engine.StatusComplete
	StatusDigestPending = engine.StatusDigestPending
	StatusFailed        = engine.StatusFailed
	StatusPending       = engine.StatusPending
	StatusOrphaned      = engine.StatusOrphaned
)

// NewCommandGenerator validates the argument templates of an external
// digest command.
var NewCommandGenerator = digest.NewCommandGenerator
