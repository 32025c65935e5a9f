package registry

import (
	"sync"

	"github.com/dreamware/entangld/internal/proto"
)

// RemoteID stably identifies an attached remote across its lifetime. IDs
// are never reused within a RemoteRegistry's lifetime, even across a
// detach/attach cycle for the same name.
type RemoteID uint64

// Remote is a single attached remote store: a name, unique within the
// registry, and the handler the dispatcher calls to transmit a Message to
// it.
type Remote struct {
	ID      RemoteID
	Name    string
	Handler proto.Callback
}

// RemoteRegistry maps remote names to Remote records, handing out stable
// RemoteIDs so subscription and request records never need to hold a
// pointer into the registry's internal map (see package doc).
type RemoteRegistry struct {
	mu      sync.RWMutex
	byName  map[string]RemoteID
	remotes map[RemoteID]*Remote
	nextID  RemoteID
}

// NewRemoteRegistry returns an empty registry.
func NewRemoteRegistry() *RemoteRegistry {
	return &RemoteRegistry{
		byName:  make(map[string]RemoteID),
		remotes: make(map[RemoteID]*Remote),
	}
}

// Attach registers handler under name, replacing any existing remote of
// that name, and returns the new remote's stable ID.
func (r *RemoteRegistry) Attach(name string, handler proto.Callback) RemoteID {
	r.mu.Lock()
	defer r.mu.Unlock()

	if oldID, ok := r.byName[name]; ok {
		delete(r.remotes, oldID)
	}

	r.nextID++
	id := r.nextID
	r.byName[name] = id
	r.remotes[id] = &Remote{ID: id, Name: name, Handler: handler}
	return id
}

// Detach removes the remote registered under name, if any. Any RemoteID
// still held by a subscription or pending request simply fails to resolve
// on next lookup.
func (r *RemoteRegistry) Detach(name string) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if id, ok := r.byName[name]; ok {
		delete(r.byName, name)
		delete(r.remotes, id)
	}
}

// ByName returns a copy of the remote registered under name, if attached.
func (r *RemoteRegistry) ByName(name string) (Remote, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	id, ok := r.byName[name]
	if !ok {
		return Remote{}, false
	}
	return *r.remotes[id], true
}

// ByID returns a copy of the remote with the given ID, if still attached.
func (r *RemoteRegistry) ByID(id RemoteID) (Remote, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	rem, ok := r.remotes[id]
	if !ok {
		return Remote{}, false
	}
	return *rem, true
}

// Names returns a snapshot of every currently attached remote's name, in
// no particular order. Used by the path layer to classify a path as local
// or remote.
func (r *RemoteRegistry) Names() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()

	names := make([]string, 0, len(r.byName))
	for name := range r.byName {
		names = append(names, name)
	}
	return names
}

// Len reports how many remotes are currently attached.
func (r *RemoteRegistry) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.remotes)
}
