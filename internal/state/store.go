package state

import (
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/bianoble/gist-crawler/internal/sandbox"
)

// ErrPersistence wraps every failure to read or write the state file.
var ErrPersistence = errors.New("state persistence failed")

// Store loads and saves the per-source synchronization state.
type Store interface {
	// Load returns the persisted state. It never fails: unreadable or
	// corrupt state yields an empty map.
	Load() map[string]Record

	// Save atomically replaces the persisted state.
	Save(records map[string]Record) error

	// Path identifies where the state lives, for reporting.
	Path() string
}

// FileStore keeps state in a YAML file on local disk.
type FileStore struct {
	path   string
	logger *slog.Logger
}

// NewFileStore creates a FileStore for the file at path.
func NewFileStore(path string, logger *slog.Logger) *FileStore {
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	return &FileStore{path: path, logger: logger}
}

// Path returns the state file path.
func (s *FileStore) Path() string {
	return s.path
}

// Load reads the state file. A missing file is a normal first run; any
// other failure is logged and treated as empty state.
func (s *FileStore) Load() map[string]Record {
	records, err := s.read()
	if errors.Is(err, fs.ErrNotExist) {
		return make(map[string]Record)
	}
	if err != nil {
		s.logger.Warn("could not load state file, starting fresh", "path", s.path, "error", err)
		return make(map[string]Record)
	}
	return records
}

func (s *FileStore) read() (map[string]Record, error) {
	data, err := os.ReadFile(s.path)
	if err != nil {
		return nil, fmt.Errorf("%w: reading %s: %w", ErrPersistence, s.path, err)
	}

	var f File
	if err := yaml.Unmarshal(data, &f); err != nil {
		return nil, fmt.Errorf("%w: parsing %s: %w", ErrPersistence, s.path, err)
	}
	if f.Version != 0 && f.Version != CurrentVersion {
		return nil, fmt.Errorf("%w: unsupported version %d in %s", ErrPersistence, f.Version, s.path)
	}

	records := make(map[string]Record, len(f.Sources))
	for ref, rec := range f.Sources {
		if !rec.Valid() {
			s.logger.Warn("state record claims a digest without a mirror, clearing digest flag", "source", ref)
		}
		records[ref] = rec.Normalize()
	}
	return records, nil
}

// Save writes all records to the state file via temp file and rename.
func (s *FileStore) Save(records map[string]Record) error {
	f := File{Version: CurrentVersion, Sources: make(map[string]Record, len(records))}
	for ref, rec := range records {
		f.Sources[ref] = rec.Normalize()
	}

	data, err := yaml.Marshal(&f)
	if err != nil {
		return fmt.Errorf("%w: marshaling state: %w", ErrPersistence, err)
	}

	if err := sandbox.WriteFile(s.path, data, 0644); err != nil {
		return fmt.Errorf("%w: %w", ErrPersistence, err)
	}
	return nil
}
