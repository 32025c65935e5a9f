package registry

import (
	"sync"

	"github.com/dreamware/entangld/internal/proto"
)

// PendingRequest is a one-shot outstanding remote Get, keyed by UUID in a
// RequestTable, awaiting exactly one matching TypeValue reply. RemoteID
// names the remote the outbound get was sent to, so a reply can be
// checked against it before firing: a value message arriving from
// anything other than the remote the request was sent to is dropped
// rather than delivered.
type PendingRequest struct {
	UUID     string
	RemoteID RemoteID
	Callback proto.Callback
}

// RequestTable tracks pending remote Get requests by UUID. Take is the
// only way to consume an entry, guaranteeing at-most-once delivery: a
// second reply bearing the same UUID finds nothing and is dropped by the
// caller.
type RequestTable struct {
	mu      sync.Mutex
	pending map[string]PendingRequest
}

// NewRequestTable returns an empty request table.
func NewRequestTable() *RequestTable {
	return &RequestTable{pending: make(map[string]PendingRequest)}
}

// Add records a new pending request. A second Add under the same UUID
// overwrites the first. Callers are expected to generate UUIDs that don't
// collide within a process lifetime.
func (t *RequestTable) Add(p PendingRequest) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.pending[p.UUID] = p
}

// Take removes and returns the pending request for uuid, if any. Called
// exactly once per reply; a second call for the same uuid returns
// (PendingRequest{}, false).
func (t *RequestTable) Take(uuid string) (PendingRequest, bool) {
	t.mu.Lock()
	defer t.mu.Unlock()

	p, ok := t.pending[uuid]
	if ok {
		delete(t.pending, uuid)
	}
	return p, ok
}

// Cancel removes a pending request without invoking its callback,
// equivalent to a caller timing out a Get and discarding the eventual
// late reply.
func (t *RequestTable) Cancel(uuid string) {
	t.mu.Lock()
	defer t.mu.Unlock()
	delete(t.pending, uuid)
}

// Len reports how many requests are currently pending.
func (t *RequestTable) Len() int {
	t.mu.Lock()
	defer t.mu.Unlock()
	return len(t.pending)
}
