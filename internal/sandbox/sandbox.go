package sandbox

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
)

// ErrTooLarge is returned by WriteFrom when the reader yields more than the
// allowed number of bytes.
var ErrTooLarge = errors.New("content exceeds size limit")

// ValidatePath checks that relPath, joined onto root, stays within root.
// It resolves symlinks, normalizes paths, and verifies containment.
// Returns the resolved absolute path or an error.
func ValidatePath(root, relPath string) (string, error) {
	absRoot, err := filepath.Abs(root)
	if err != nil {
		return "", fmt.Errorf("resolving root: %w", err)
	}
	realRoot, err := resolveExistingPath(absRoot)
	if err != nil {
		return "", fmt.Errorf("resolving root symlinks: %w", err)
	}

	candidate := filepath.Clean(filepath.Join(realRoot, relPath))

	// The path may not exist yet, so resolve as much as we can.
	resolved, err := resolveExistingPath(candidate)
	if err != nil {
		return "", fmt.Errorf("resolving path: %w", err)
	}

	// Trailing separator avoids prefix matching "root2" for "root".
	rootPrefix := realRoot + string(filepath.Separator)
	if resolved == realRoot || !strings.HasPrefix(resolved, rootPrefix) {
		return "", fmt.Errorf("path '%s' resolves to '%s' which is outside '%s'", relPath, resolved, realRoot)
	}

	return resolved, nil
}

// resolveExistingPath resolves symlinks for the longest existing prefix of the path,
// then appends the non-existing suffix.
func resolveExistingPath(path string) (string, error) {
	resolved, err := filepath.EvalSymlinks(path)
	if err == nil {
		return resolved, nil
	}

	dir := filepath.Dir(path)
	base := filepath.Base(path)
	if dir == path {
		return path, nil
	}

	resolvedDir, err := resolveExistingPath(dir)
	if err != nil {
		return "", err
	}

	return filepath.Join(resolvedDir, base), nil
}

// WriteFile atomically writes data to path: a reader sees either the old
// file or the complete new one, never a partial write.
func WriteFile(path string, data []byte, perm os.FileMode) error {
	_, err := writeAtomic(path, perm, func(w io.Writer) (int64, error) {
		n, err := w.Write(data)
		return int64(n), err
	})
	return err
}

// WriteFrom atomically copies r into path. A limit greater than zero caps
// the number of bytes accepted; exceeding it fails with ErrTooLarge and
// leaves any existing file untouched.
func WriteFrom(path string, r io.Reader, limit int64, perm os.FileMode) (int64, error) {
	return writeAtomic(path, perm, func(w io.Writer) (int64, error) {
		if limit <= 0 {
			return io.Copy(w, r)
		}
		n, err := io.Copy(w, io.LimitReader(r, limit+1))
		if err != nil {
			return n, err
		}
		if n > limit {
			return n, fmt.Errorf("%w: more than %d bytes", ErrTooLarge, limit)
		}
		return n, nil
	})
}

func writeAtomic(path string, perm os.FileMode, fill func(io.Writer) (int64, error)) (int64, error) {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return 0, fmt.Errorf("creating directory %s: %w", dir, err)
	}

	// Same directory keeps the rename on one filesystem.
	tmp, err := os.CreateTemp(dir, ".gist-crawler-*.tmp")
	if err != nil {
		return 0, fmt.Errorf("creating temp file: %w", err)
	}
	tmpPath := tmp.Name()

	success := false
	defer func() {
		if !success {
			_ = tmp.Close()
			_ = os.Remove(tmpPath)
		}
	}()

	n, err := fill(tmp)
	if err != nil {
		return n, fmt.Errorf("writing temp file: %w", err)
	}
	if err := tmp.Sync(); err != nil {
		return n, fmt.Errorf("syncing temp file: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return n, fmt.Errorf("closing temp file: %w", err)
	}
	if err := os.Chmod(tmpPath, perm); err != nil {
		return n, fmt.Errorf("setting permissions: %w", err)
	}

	if err := os.Rename(tmpPath, path); err != nil {
		return n, fmt.Errorf("renaming temp file to %s: %w", path, err)
	}

	success = true
	return n, nil
}

// SafeRemoveAll removes relPath and everything below it, refusing to touch
// anything outside root.
func SafeRemoveAll(root, relPath string) error {
	resolved, err := ValidatePath(root, relPath)
	if err != nil {
		return err
	}
	return os.RemoveAll(resolved)
}
