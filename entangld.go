package entangld

import (
	"strings"
	"sync/atomic"

	"go.uber.org/zap"

	"github.com/dreamware/entangld/internal/idgen"
	"github.com/dreamware/entangld/internal/path"
	"github.com/dreamware/entangld/internal/proto"
	"github.com/dreamware/entangld/internal/registry"
	"github.com/dreamware/entangld/internal/tree"
)

// UUIDGenerator produces a string unique within the process lifetime,
// used to correlate a Get with its reply and to name a Subscribe for
// later targeted Unsubscribe.
type UUIDGenerator = idgen.Generator

// OperationStats reports, for lightweight embedder-side observability,
// how many gets, sets, and pushes a Datastore has dispatched (local and
// remote combined) and how many subscriptions and remotes it currently
// holds.
type OperationStats struct {
	Gets          uint64
	Sets          uint64
	Pushes        uint64
	Subscriptions int
	Remotes       int
}

// Datastore is a single node in an Entangld mesh: a local structured tree
// plus the registries and dispatcher needed to attach remote stores and
// keep reads, writes, and subscriptions synchronized across them.
//
// A Datastore is not safe for concurrent use; see the package doc's
// concurrency section.
type Datastore struct {
	root tree.Value

	remotes  *registry.RemoteRegistry
	requests *registry.RequestTable
	subs     *registry.SubscriptionRegistry

	uuidGen UUIDGenerator
	log     *zap.Logger

	gets   uint64
	sets   uint64
	pushes uint64
}

// Option configures a Datastore at construction time.
type Option func(*Datastore)

// WithInitialData seeds the store's local tree with v (a plain Go value
// of the shape encoding/json would decode into an interface{}) instead of
// an empty object.
func WithInitialData(v interface{}) Option {
	return func(d *Datastore) {
		d.root = tree.FromAny(v)
	}
}

// WithUUIDGenerator overrides the default google/uuid-backed generator.
func WithUUIDGenerator(g UUIDGenerator) Option {
	return func(d *Datastore) {
		d.uuidGen = g
	}
}

// WithLogger attaches a *zap.Logger the Datastore uses for the
// non-fatal conditions the protocol defines: an unknown reply uuid, a
// message addressed to a detached remote, a tree-type error on an inbound
// set/push. The default is a no-op logger.
func WithLogger(l *zap.Logger) Option {
	return func(d *Datastore) {
		d.log = l
	}
}

// New constructs a Datastore with an empty root object, unless overridden
// by WithInitialData.
func New(opts ...Option) *Datastore {
	d := &Datastore{
		root:     tree.NewRoot(),
		remotes:  registry.NewRemoteRegistry(),
		requests: registry.NewRequestTable(),
		subs:     registry.NewSubscriptionRegistry(),
		uuidGen:  idgen.Default(),
		log:      zap.NewNop(),
	}
	for _, opt := range opts {
		opt(d)
	}
	return d
}

// Stats returns a snapshot of this Datastore's operation counters.
func (d *Datastore) Stats() OperationStats {
	return OperationStats{
		Gets:          atomic.LoadUint64(&d.gets),
		Sets:          atomic.LoadUint64(&d.sets),
		Pushes:        atomic.LoadUint64(&d.pushes),
		Subscriptions: d.subs.Len(),
		Remotes:       d.remotes.Len(),
	}
}

func (d *Datastore) newUUID(uuid string) string {
	if uuid != "" {
		return uuid
	}
	return d.uuidGen.NewUUID()
}

// Get asynchronously delivers exactly one Message of type TypeValue to
// cb. If path is local, cb fires synchronously before Get returns. If
// path names an attached remote's namespace, a get Message is transmitted
// to that remote and cb fires later, when a matching Receive(value, ...)
// call arrives. uuid may be empty to let the Datastore generate one; a
// caller wanting to Cancel a remote Get later must supply its own uuid
// here instead.
func (d *Datastore) Get(p string, cb Callback, uuid string) error {
	if cb == nil {
		return errNilCallback("get")
	}
	if err := path.Validate(p); err != nil {
		return &ValidationError{Op: "get", Err: err}
	}

	atomic.AddUint64(&d.gets, 1)

	ns := path.ParseNamespace(p, d.remotes.Names())
	if ns == "" {
		ptr := path.ToPointer(p)
		val := tree.ToAny(tree.Read(d.root, ptr))
		msg := Message{Type: proto.TypeValue, Path: p, UUID: d.newUUID(uuid), Value: val}
		cb(msg)
		return nil
	}

	remote, ok := d.remotes.ByName(ns)
	if !ok {
		d.log.Warn("get: remote not attached", zap.String("namespace", ns))
		return nil
	}

	reqUUID := d.newUUID(uuid)
	outbound := Message{Type: proto.TypeGet, Path: path.StripNamespace(p, ns), UUID: reqUUID}

	d.requests.Add(registry.PendingRequest{UUID: reqUUID, RemoteID: remote.ID, Callback: cb})
	d.log.Debug("get: transmit", zap.String("namespace", ns), zap.String("path", outbound.Path), zap.String("uuid", reqUUID))
	remote.Handler(outbound)
	return nil
}

// Cancel removes a pending remote Get identified by uuid without invoking
// its callback, equivalent to the caller timing out and discarding the
// eventual late reply. Cancel is a no-op if uuid names no pending request
// (already answered, already cancelled, or never issued). A caller
// intending to cancel a Get must supply its own uuid to Get rather than
// leave it empty.
func (d *Datastore) Cancel(uuid string) {
	d.requests.Cancel(uuid)
}

// Set assigns value at path; Push appends value to the array at path
// instead. If path is local, the assignment/append happens
// synchronously and any matching local subscriptions fire before Set
// returns. If path names a remote, a fire-and-forget set or push Message
// is transmitted; no reply is expected.
func (d *Datastore) Set(p string, value interface{}) error {
	return d.set(p, value, false)
}

// Push appends value to the array at path. See Set.
func (d *Datastore) Push(p string, value interface{}) error {
	return d.set(p, value, true)
}

func (d *Datastore) set(p string, value interface{}, push bool) error {
	if err := path.Validate(p); err != nil {
		return &ValidationError{Op: "set", Err: err}
	}

	if push {
		atomic.AddUint64(&d.pushes, 1)
	} else {
		atomic.AddUint64(&d.sets, 1)
	}

	ns := path.ParseNamespace(p, d.remotes.Names())
	if ns == "" {
		ptr := path.ToPointer(p)
		v := tree.FromAny(value)

		var err error
		if push {
			err = tree.Append(&d.root, ptr, v)
		} else {
			err = tree.Assign(&d.root, ptr, v)
		}
		if err != nil {
			return err
		}

		d.fanOut(p)
		return nil
	}

	remote, ok := d.remotes.ByName(ns)
	if !ok {
		d.log.Warn("set: remote not attached", zap.String("namespace", ns))
		return nil
	}

	msgType := proto.TypeSet
	if push {
		msgType = proto.TypePush
	}
	remote.Handler(Message{Type: msgType, Path: path.StripNamespace(p, ns), Value: value})
	return nil
}

// fanOut delivers an event to every local subscription whose watched path
// is a (string) prefix of writtenPath, carrying the subscription's own
// current value rather than the value just written at writtenPath. It
// walks a snapshot of the subscription registry so a subscriber callback
// that reenters Set or Unsubscribe can never observe a half-mutated walk.
func (d *Datastore) fanOut(writtenPath string) {
	for _, sub := range d.subs.Snapshot() {
		if sub.Kind != registry.SubLocal {
			continue
		}
		if !strings.HasPrefix(writtenPath, sub.Path) {
			continue
		}
		event := Message{
			Type:  proto.TypeEvent,
			Path:  sub.Path,
			UUID:  sub.UUID,
			Value: tree.ToAny(tree.Read(d.root, sub.Pointer)),
		}
		sub.Callback(event)
	}
}

// Subscribe registers standing interest in path: every subsequent Set
// whose own path begins with path (a plain string prefix test, not a
// path-segment one, see the package's design notes) invokes cb with the
// subscribed path's current value. If path names a remote, a subscribe
// Message is transmitted and the remote is expected to later deliver
// event Messages bearing this subscription's uuid. Subscribe returns the
// uuid in effect, generated if the caller didn't supply one.
func (d *Datastore) Subscribe(p string, cb Callback, uuid string) (string, error) {
	if cb == nil {
		return "", errNilCallback("subscribe")
	}
	if err := path.Validate(p); err != nil {
		return "", &ValidationError{Op: "subscribe", Err: err}
	}

	id := d.newUUID(uuid)
	ns := path.ParseNamespace(p, d.remotes.Names())

	if ns == "" {
		d.subs.Add(registry.Subscription{
			Kind:     registry.SubLocal,
			Path:     p,
			UUID:     id,
			Pointer:  path.ToPointer(p),
			Callback: cb,
		})
		return id, nil
	}

	remote, ok := d.remotes.ByName(ns)
	if !ok {
		d.log.Warn("subscribe: remote not attached", zap.String("namespace", ns))
		return id, nil
	}

	remotePath := path.StripNamespace(p, ns)
	d.subs.Add(registry.Subscription{
		Kind:     registry.SubRemote,
		Path:     remotePath,
		UUID:     id,
		RemoteID: remote.ID,
		Callback: cb,
	})
	remote.Handler(Message{Type: proto.TypeSubscribe, Path: remotePath, UUID: id})
	return id, nil
}

// Unsubscribe removes subscriptions matching path (and uuid, if
// non-empty) and returns how many were removed. A subscription is removed
// when path begins with its own registered path: unsubscribing at a
// deeper-or-equal path removes a subscription registered at a
// shallower-or-equal one (see the package's design notes for why this
// direction, not the reverse, is preserved). For each removed remote
// subscription, an unsubscribe Message is transmitted to its remote
// before Unsubscribe returns.
func (d *Datastore) Unsubscribe(p string, uuid string) int {
	ns := path.ParseNamespace(p, d.remotes.Names())

	removed := d.subs.RemoveMatching(func(s registry.Subscription) bool {
		if uuid != "" && uuid != s.UUID {
			return false
		}
		if ns == "" {
			return s.Kind == registry.SubLocal && strings.HasPrefix(p, s.Path)
		}
		if s.Kind != registry.SubRemote {
			return false
		}
		remote, ok := d.remotes.ByID(s.RemoteID)
		return ok && remote.Name == ns && strings.HasPrefix(p, ns+"."+s.Path)
	})

	for _, s := range removed {
		if s.Kind != registry.SubRemote {
			continue
		}
		remote, ok := d.remotes.ByID(s.RemoteID)
		if !ok {
			continue
		}
		remote.Handler(Message{Type: proto.TypeUnsubscribe, Path: s.Path, UUID: s.UUID})
	}

	return len(removed)
}

// Attach registers handler as the transport for messages addressed to
// the namespace name. A second Attach under the same name replaces the
// prior remote; any subscription or request still referencing the old
// remote's stable ID simply stops resolving (see internal/registry).
func (d *Datastore) Attach(name string, handler Handler) error {
	if handler == nil {
		return errNilHandler("attach")
	}
	d.remotes.Attach(name, handler)
	return nil
}

// Detach removes the remote registered under name. It does not prune
// subscriptions or pending requests that reference it. Callers should
// Unsubscribe first, or accept that dangling references simply stop
// resolving the next time they're used.
func (d *Datastore) Detach(name string) {
	d.remotes.Detach(name)
}

// Receive interprets an inbound Message as having arrived from the remote
// named fromNamespace and re-enters the appropriate public operation on
// this Datastore's behalf. It is the only entry point a transport needs
// to drive this side of the protocol.
func (d *Datastore) Receive(msg Message, fromNamespace string) error {
	switch msg.Type {

	case proto.TypeSet:
		if err := d.set(msg.Path, msg.Value, false); err != nil {
			d.log.Warn("receive set: tree error", zap.Error(err), zap.String("path", msg.Path))
		}
		return nil

	case proto.TypePush:
		if err := d.set(msg.Path, msg.Value, true); err != nil {
			d.log.Warn("receive push: tree error", zap.Error(err), zap.String("path", msg.Path))
		}
		return nil

	case proto.TypeGet:
		remote, ok := d.remotes.ByName(fromNamespace)
		if !ok {
			d.log.Warn("receive get: unknown namespace", zap.String("namespace", fromNamespace))
			return nil
		}
		return d.Get(msg.Path, func(reply Message) {
			remote.Handler(Message{Type: proto.TypeValue, Path: reply.Path, UUID: msg.UUID, Value: reply.Value})
		}, msg.UUID)

	case proto.TypeValue:
		pending, ok := d.requests.Take(msg.UUID)
		if !ok {
			d.log.Warn("receive value: unknown uuid", zap.String("uuid", msg.UUID))
			return nil
		}
		remote, ok := d.remotes.ByID(pending.RemoteID)
		if !ok || remote.Name != fromNamespace {
			d.log.Warn("receive value: reply from unexpected remote", zap.String("uuid", msg.UUID), zap.String("from", fromNamespace))
			return nil
		}
		pending.Callback(msg)
		return nil

	case proto.TypeSubscribe:
		remote, ok := d.remotes.ByName(fromNamespace)
		if !ok {
			d.log.Warn("receive subscribe: unknown namespace", zap.String("namespace", fromNamespace))
			return nil
		}
		_, err := d.Subscribe(msg.Path, func(event Message) {
			remote.Handler(event)
		}, msg.UUID)
		return err

	case proto.TypeEvent:
		for _, sub := range d.subs.Snapshot() {
			if sub.Kind != registry.SubRemote {
				continue
			}
			remote, ok := d.remotes.ByID(sub.RemoteID)
			if !ok || remote.Name != fromNamespace {
				continue
			}
			if !strings.HasPrefix(msg.Path, sub.Path) {
				continue
			}
			sub.Callback(msg)
		}
		return nil

	case proto.TypeUnsubscribe:
		d.Unsubscribe(msg.Path, msg.UUID)
		return nil

	default:
		d.log.Warn("receive: unknown message type", zap.String("type", string(msg.Type)))
		return nil
	}
}
