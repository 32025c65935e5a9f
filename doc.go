// Package entangld implements a mesh of synchronized, hierarchical
// key-value stores that communicate over an opaque message channel.
//
// Each Datastore owns a local tree of structured values (nested objects,
// arrays, scalars, and nulls) and may attach any number of named remote
// stores. Once attached, a Datastore transparently forwards reads,
// writes, and subscription events addressed to a remote's namespace: a
// dotted path whose leading segment names an attached remote is resolved
// there instead of locally.
//
// # What this package is
//
// The engine: a path resolver, a JSON-pointer tree, a request/response
// correlation table, a subscription registry, and a message dispatcher
// implementing a seven-message protocol (get, set, push, value, subscribe,
// unsubscribe, event). The invariants live here: at-most-once request
// completion, prefix-matched event fan-out, correct unsubscribe routing,
// and namespace peeling on every hop.
//
// # What this package is not
//
// Entangld does not open sockets, frame bytes, or pick a wire format. Two
// things are injected by the embedder instead:
//
//   - a Handler per remote: an opaque callback responsible for serializing
//     a Message and delivering it to that remote by whatever transport the
//     embedder chooses;
//   - a UUIDGenerator producing process-unique correlation strings.
//
// See cmd/entangld-peer for a reference transport: a newline-framed JSON
// TCP peer.
//
// # Concurrency
//
// A Datastore is single-threaded and cooperative: every public method
// runs to completion on the calling goroutine, including any callbacks it
// fans out to, before returning. There is no internal scheduling and the
// engine never blocks on I/O. Concurrent callers must serialize
// externally. Reentrancy is supported: a callback may legally call back
// into the same Datastore.
package entangld
