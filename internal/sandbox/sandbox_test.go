package sandbox

import (
	"bytes"
	"errors"
	"os"
	"path/filepath"
	"runtime"
	"strings"
	"testing"
)

func TestValidatePathWithinRoot(t *testing.T) {
	root := t.TempDir()

	resolved, err := ValidatePath(root, "acme_widgets/code")
	if err != nil {
		t.Fatalf("ValidatePath: %v", err)
	}

	realRoot, _ := filepath.EvalSymlinks(root)
	expected := filepath.Join(realRoot, "acme_widgets", "code")
	if resolved != expected {
		t.Errorf("got %q, want %q", resolved, expected)
	}
}

func TestValidatePathRejectsRootItself(t *testing.T) {
	root := t.TempDir()

	for _, rel := range []string{"", ".", "acme/.."} {
		if _, err := ValidatePath(root, rel); err == nil {
			t.Errorf("ValidatePath(%q) should reject the root itself", rel)
		}
	}
}

func TestValidatePathRejectsDotDot(t *testing.T) {
	root := t.TempDir()

	for _, rel := range []string{"../escape", "sub/../../escape"} {
		_, err := ValidatePath(root, rel)
		if err == nil {
			t.Fatalf("expected error for %q", rel)
		}
		if !strings.Contains(err.Error(), "outside") {
			t.Errorf("unexpected error: %v", err)
		}
	}
}

func TestValidatePathRejectsSymlinkEscape(t *testing.T) {
	if runtime.GOOS == "windows" {
		t.Skip("symlink test not reliable on Windows")
	}

	root := t.TempDir()
	outsideDir := t.TempDir()

	if err := os.Symlink(outsideDir, filepath.Join(root, "escape-link")); err != nil {
		t.Fatalf("creating symlink: %v", err)
	}

	if _, err := ValidatePath(root, "escape-link/code"); err == nil {
		t.Fatal("expected error for symlink escape")
	}
}

func TestWriteFileCreatesAndOverwrites(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "nested", "state.yaml")

	if err := WriteFile(path, []byte("original"), 0644); err != nil {
		t.Fatalf("WriteFile: %v", err)
	}
	if err := WriteFile(path, []byte("updated"), 0644); err != nil {
		t.Fatalf("WriteFile: %v", err)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatal(err)
	}
	if string(data) != "updated" {
		t.Errorf("content = %q, want %q", data, "updated")
	}

	entries, _ := os.ReadDir(filepath.Dir(path))
	if len(entries) != 1 {
		t.Errorf("expected only the target file, found %d entries", len(entries))
	}
}

func TestWriteFilePermissions(t *testing.T) {
	if runtime.GOOS == "windows" {
		t.Skip("permission bits not reliable on Windows")
	}

	path := filepath.Join(t.TempDir(), "f.txt")
	if err := WriteFile(path, []byte("x"), 0600); err != nil {
		t.Fatal(err)
	}
	info, err := os.Stat(path)
	if err != nil {
		t.Fatal(err)
	}
	if info.Mode().Perm() != 0600 {
		t.Errorf("perm = %o, want 600", info.Mode().Perm())
	}
}

func TestWriteFromLimit(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "digest.txt")

	if err := os.WriteFile(path, []byte("previous"), 0644); err != nil {
		t.Fatal(err)
	}

	_, err := WriteFrom(path, bytes.NewReader(make([]byte, 11)), 10, 0644)
	if !errors.Is(err, ErrTooLarge) {
		t.Fatalf("expected ErrTooLarge, got %v", err)
	}

	data, _ := os.ReadFile(path)
	if string(data) != "previous" {
		t.Errorf("existing file must be untouched, got %q", data)
	}

	n, err := WriteFrom(path, strings.NewReader("0123456789"), 10, 0644)
	if err != nil {
		t.Fatalf("WriteFrom at limit: %v", err)
	}
	if n != 10 {
		t.Errorf("n = %d, want 10", n)
	}
}

func TestWriteFromUnlimited(t *testing.T) {
	path := filepath.Join(t.TempDir(), "digest.txt")
	n, err := WriteFrom(path, strings.NewReader("hello"), 0, 0644)
	if err != nil {
		t.Fatal(err)
	}
	if n != 5 {
		t.Errorf("n = %d, want 5", n)
	}
}

func TestSafeRemoveAll(t *testing.T) {
	root := t.TempDir()
	target := filepath.Join(root, "acme_widgets", "code", ".git")
	if err := os.MkdirAll(target, 0755); err != nil {
		t.Fatal(err)
	}

	if err := SafeRemoveAll(root, "acme_widgets"); err != nil {
		t.Fatalf("SafeRemoveAll: %v", err)
	}
	if _, err := os.Stat(filepath.Join(root, "acme_widgets")); !os.IsNotExist(err) {
		t.Error("directory should be removed")
	}
	if _, err := os.Stat(root); err != nil {
		t.Error("root must survive")
	}
}

func TestSafeRemoveAllRejectsEscape(t *testing.T) {
	root := t.TempDir()
	if err := SafeRemoveAll(root, "../elsewhere"); err == nil {
		t.Fatal("expected error for escape attempt")
	}
	if err := SafeRemoveAll(root, "."); err == nil {
		t.Fatal("expected error for removing root")
	}
}

func TestResolveExistingPathPartiallyExists(t *testing.T) {
	root := t.TempDir()
	realRoot, _ := filepath.EvalSymlinks(root)

	got, err := resolveExistingPath(filepath.Join(root, "missing", "deeper"))
	if err != nil {
		t.Fatal(err)
	}
	want := filepath.Join(realRoot, "missing", "deeper")
	if got != want {
		t.Errorf("got %q, want %q", got, want)
	}
}
