package path

import (
	"fmt"
	"strings"
)

// InvalidPathError reports a path segment containing a character the
// JSON-pointer translation cannot round-trip without escaping ('/' or
// '~'). Entangld does not implement pointer escaping (see package tree),
// so such segments are rejected outright rather than silently mangled.
type InvalidPathError struct {
	Path    string
	Segment string
}

func (e *InvalidPathError) Error() string {
	return fmt.Sprintf("path: segment %q of %q contains a reserved character ('/' or '~')", e.Segment, e.Path)
}

// Split breaks a dotted path into its segments. The empty path has zero
// segments and denotes the root.
func Split(p string) []string {
	if p == "" {
		return nil
	}
	return strings.Split(p, ".")
}

// Validate rejects any path with a segment containing '/' or '~'.
func Validate(p string) error {
	for _, seg := range Split(p) {
		if strings.ContainsAny(seg, "/~") {
			return &InvalidPathError{Path: p, Segment: seg}
		}
	}
	return nil
}

// ToPointer converts a dotted path into its JSON-pointer form: the empty
// path becomes the empty (root) pointer, otherwise every '.' becomes '/'
// and the result is prefixed with '/'.
func ToPointer(p string) string {
	if p == "" {
		return ""
	}
	return "/" + strings.ReplaceAll(p, ".", "/")
}

// ParseNamespace returns the name of the remote, among names, whose
// namespace prefixes p (i.e. p begins with name + "."), or "" if p is
// local. names need not be sorted or deduplicated; callers must simply
// not register overlapping remote names.
func ParseNamespace(p string, names []string) string {
	if p == "" {
		return ""
	}
	for _, name := range names {
		if strings.HasPrefix(p, name+".") {
			return name
		}
	}
	return ""
}

// StripNamespace removes the "ns." prefix from p. The caller is expected
// to have already established, via ParseNamespace, that ns is p's
// namespace.
func StripNamespace(p, ns string) string {
	return strings.TrimPrefix(p, ns+".")
}
