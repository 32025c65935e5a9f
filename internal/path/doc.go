// Package path implements the small set of string operations a Datastore
// needs to turn a dotted path into either a local JSON pointer or a
// (namespace, remainder) pair: Split, Validate, ToPointer, ParseNamespace,
// and StripNamespace.
//
// None of this package is stateful. It takes the set of currently
// attached remote names as a plain argument rather than holding a
// registry reference.
//
// # Namespace detection
//
// ParseNamespace reports the remote namespace of a path by testing it
// against every attached name. Because namespaces are required to be
// non-overlapping (no remote's name may be a prefix of another's), the
// traversal order of the supplied name set never changes the result.
// Callers are free to pass names in any order.
package path
