package source

import (
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"strings"
)

// ErrMalformedReference is returned when a source reference cannot be split
// into an owner and a name.
var ErrMalformedReference = errors.New("malformed source reference")

// Identity is the canonical identity derived from a source reference.
type Identity struct {
	Owner    string
	Name     string
	LocalKey string // directory name under the mirror root
}

// ReferenceError reports a reference that could not be parsed.
type ReferenceError struct {
	Ref    string
	Reason string
}

func (e *ReferenceError) Error() string {
	return fmt.Sprintf("%s %q: %s", ErrMalformedReference, e.Ref, e.Reason)
}

func (e *ReferenceError) Unwrap() error {
	return ErrMalformedReference
}

// Parse derives the owner, name and local key from a source reference such
// as https://github.com/owner/name, github.com/owner/name.git or
// git@github.com:owner/name. For file:// URLs and filesystem paths the
// last two path segments are the owner and name.
func Parse(ref string) (Identity, error) {
	s := strings.TrimSpace(ref)
	s = strings.TrimRight(s, "/")
	if s == "" {
		return Identity{}, &ReferenceError{Ref: ref, Reason: "empty reference"}
	}

	bare, local := false, false
	if i := strings.Index(s, "://"); i >= 0 {
		local = strings.EqualFold(s[:i], "file")
		// Drop scheme and host; file:///path has an empty host.
		s = s[i+3:]
		if j := strings.Index(s, "/"); j >= 0 {
			s = s[j+1:]
		} else {
			s = ""
		}
	} else if at := strings.Index(s, "@"); at >= 0 && strings.Contains(s[at:], ":") {
		// scp-like syntax: user@host:owner/name
		rest := s[at+1:]
		s = rest[strings.Index(rest, ":")+1:]
	} else if isLocalPath(s) {
		local = true
	} else {
		bare = true
	}

	parts := splitSegments(s)
	switch {
	case local:
		// Paths on disk end in owner/name; everything before is location.
		if len(parts) > 2 {
			parts = parts[len(parts)-2:]
		}
	case bare && len(parts) > 0 && looksLikeHost(parts[0]):
		parts = parts[1:]
	}
	if len(parts) < 2 {
		return Identity{}, &ReferenceError{Ref: ref, Reason: "expected at least owner and name segments"}
	}

	owner := parts[0]
	name := strings.TrimSuffix(parts[1], ".git")
	for _, seg := range []string{owner, name} {
		if seg == "" || seg == "." || seg == ".." {
			return Identity{}, &ReferenceError{Ref: ref, Reason: fmt.Sprintf("invalid segment %q", seg)}
		}
	}

	return Identity{Owner: owner, Name: name, LocalKey: localKey(owner, name)}, nil
}

// localKey joins owner and name with an underscore. When either part already
// contains an underscore the join is ambiguous, so a short digest of the pair
// is appended.
func localKey(owner, name string) string {
	key := owner + "_" + name
	if strings.Contains(owner, "_") || strings.Contains(name, "_") {
		sum := sha256.Sum256([]byte(owner + "/" + name))
		key += "-" + hex.EncodeToString(sum[:4])
	}
	return key
}

func splitSegments(s string) []string {
	var parts []string
	for _, p := range strings.Split(s, "/") {
		if p != "" {
			parts = append(parts, p)
		}
	}
	return parts
}

func isLocalPath(s string) bool {
	for _, prefix := range []string{"/", "./", "../", "~/"} {
		if strings.HasPrefix(s, prefix) {
			return true
		}
	}
	return false
}

func looksLikeHost(seg string) bool {
	return strings.Contains(seg, ".") || strings.Contains(seg, ":") || seg == "localhost"
}
