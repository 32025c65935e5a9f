package registry

import (
	"sync"

	"golang.org/x/exp/slices"

	"github.com/dreamware/entangld/internal/proto"
)

// SubKind distinguishes a subscription that watches this store's own tree
// from one that proxies events from an attached remote back to a local
// callback.
type SubKind int

const (
	// SubLocal watches a prefix of the local tree.
	SubLocal SubKind = iota
	// SubRemote proxies TypeEvent messages from an attached remote.
	SubRemote
)

// Subscription is a single standing registration, local or remote. Path
// is always expressed relative to whichever side owns the data: the local
// dotted path for a SubLocal record, or the namespace-stripped remote path
// for a SubRemote record. Pointer is only meaningful for SubLocal records;
// RemoteID only for SubRemote ones.
type Subscription struct {
	Kind     SubKind
	Path     string
	UUID     string
	Pointer  string
	RemoteID RemoteID
	Callback proto.Callback
}

// SubscriptionRegistry holds subscriptions in insertion order, the order
// local fan-out invokes them in. It is safe for a Callback to reenter and
// call back into whatever owns this registry. Every read exposed here
// hands out a copy, so mutation never races with a caller's own iteration
// over a previously taken Snapshot.
type SubscriptionRegistry struct {
	mu   sync.Mutex
	subs []Subscription
}

// NewSubscriptionRegistry returns an empty registry.
func NewSubscriptionRegistry() *SubscriptionRegistry {
	return &SubscriptionRegistry{}
}

// Add appends a new subscription.
func (r *SubscriptionRegistry) Add(s Subscription) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.subs = append(r.subs, s)
}

// Snapshot returns a copy of the current subscription list, in insertion
// order. Fan-out walks a Snapshot rather than the live slice so that a
// reentrant Set or Unsubscribe triggered by a callback mid-walk can never
// observe a half-mutated registry or invalidate the walk's indices.
func (r *SubscriptionRegistry) Snapshot() []Subscription {
	r.mu.Lock()
	defer r.mu.Unlock()
	return slices.Clone(r.subs)
}

// RemoveMatching removes every subscription for which match returns true
// and returns the removed records, in their original order. Relative
// order among surviving subscriptions is preserved.
func (r *SubscriptionRegistry) RemoveMatching(match func(Subscription) bool) []Subscription {
	r.mu.Lock()
	defer r.mu.Unlock()

	var removed []Subscription
	for _, s := range r.subs {
		if match(s) {
			removed = append(removed, s)
		}
	}
	r.subs = slices.DeleteFunc(r.subs, match)
	return removed
}

// Len reports how many subscriptions are currently registered.
func (r *SubscriptionRegistry) Len() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.subs)
}
