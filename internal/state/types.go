package state

import "time"

// CurrentVersion is the state file format version written by Save.
const CurrentVersion = 1

// File represents the persisted crawl-state.yaml document.
type File struct {
	Sources map[string]Record `yaml:"sources"`
	Version int               `yaml:"version"`
}

// Record is the synchronization state of one source reference.
// Only CloneSuccess and GistSuccess drive decisions; the remaining fields
// are informational.
type Record struct {
	CloneSuccess bool `yaml:"clone_success"`
	GistSuccess  bool `yaml:"gist_success"`

	RepoIdentifier string    `yaml:"repo_identifier,omitempty"`
	Revision       string    `yaml:"revision,omitempty"`
	GistPath       string    `yaml:"gist_path,omitempty"`
	GistBytes      int64     `yaml:"gist_bytes,omitempty"`
	LastCrawled    time.Time `yaml:"last_crawled,omitempty"`
	Error          string    `yaml:"error,omitempty"`
}

// Valid reports whether the record satisfies the invariant that a digest
// cannot be valid without a valid mirror behind it.
func (r Record) Valid() bool {
	return !r.GistSuccess || r.CloneSuccess
}

// Normalize returns the record with the invariant enforced.
func (r Record) Normalize() Record {
	if !r.Valid() {
		r.GistSuccess = false
	}
	return r
}

// Complete reports whether both the mirror and its digest are known good.
func (r Record) Complete() bool {
	return r.CloneSuccess && r.GistSuccess
}
