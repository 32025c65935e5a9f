// Package registry holds the three tables a Datastore's dispatcher
// consults on every call: attached remotes, in-flight requests, and
// standing subscriptions. Each follows the same "stable assignment, copy
// out, never leak a pointer into the map" discipline, guarded by its own
// mutex.
//
// # Stable remote identifiers
//
// Handing a subscription or pending request a raw pointer or map key
// into the remote table would leave it dangling the moment that remote
// is detached or replaced. RemoteRegistry avoids this: Attach returns a
// monotonically increasing RemoteID, and every subscription or request
// stores that ID, never a pointer. Detach simply removes the ID's entry;
// any stale ID a caller still holds fails to resolve on next use instead
// of dereferencing freed memory.
//
// # Concurrency
//
// The dispatcher above this package documents itself as single-threaded
// and cooperative. Callers must serialize externally. Each table here
// still guards its map with a mutex regardless: it costs nothing on the
// single-threaded path and removes one more way a caller violating that
// contract could corrupt memory instead of merely racing logically.
package registry
