// Package tree implements the structured value a Datastore keeps locally:
// a recursive tree of objects, arrays, and scalars addressed by JSON
// pointer.
//
// # Value
//
// A Value is one of:
//
//   - Null{}              - explicit absence/JSON null
//   - bool, float64, string - scalars
//   - Array  ([]Value)    - ordered, JSON-pointer-indexable by position
//   - Object (map[string]Value) - keyed, JSON-pointer-indexable by key
//
// Null is a distinct, comparable type rather than a bare Go nil so that
// "the tree holds an explicit null here" and "the tree holds nothing
// addressable at this pointer" are the same observable value. Read never
// needs a second (ok bool) return to distinguish them.
//
// FromAny/ToAny convert between Value and the plain interface{} shapes
// produced by encoding/json (map[string]interface{}, []interface{}, and
// friends), so callers of the public Datastore API never see this
// package's types directly.
//
// # Pointers
//
// A pointer is the standard "/a/b/c" form with no segment escaping. The
// path layer above this package rejects any segment containing '/' or '~'
// before it ever reaches these functions, so no unescaping is needed here.
//
// # Mutation
//
// Assign autovivifies missing intermediate objects: assigning at a.b.c on
// an empty store creates the intermediate objects along the way. Append
// requires the addressed value to be absent (in which case an empty array
// is created first) or already an Array; anything else is a *TreeError,
// never a panic and never silent corruption of the existing value.
package tree
