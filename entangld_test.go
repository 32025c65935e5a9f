package entangld_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dreamware/entangld"
)

// S1: local get/set.
func TestLocalGetSet(t *testing.T) {
	d := entangld.New()

	require.NoError(t, d.Set("key", "value"))

	var got entangld.Message
	require.NoError(t, d.Get("key", func(msg entangld.Message) { got = msg }, ""))
	assert.Equal(t, "value", got.Value)
}

// S2: nested autovivify.
func TestNestedAutovivify(t *testing.T) {
	d := entangld.New()

	require.NoError(t, d.Set("root.key", "value"))

	var got entangld.Message
	require.NoError(t, d.Get("root", func(msg entangld.Message) { got = msg }, ""))
	assert.Equal(t, map[string]interface{}{"key": "value"}, got.Value)
}

// S3: absent path.
func TestAbsentPathYieldsNull(t *testing.T) {
	d := entangld.New(entangld.WithInitialData(map[string]interface{}{"key": "value"}))

	var got entangld.Message
	require.NoError(t, d.Get("badkey", func(msg entangld.Message) { got = msg }, ""))
	assert.Nil(t, got.Value)
}

// S6: local subscription.
func TestLocalSubscription(t *testing.T) {
	d := entangld.New()

	var got entangld.Message
	calls := 0
	_, err := d.Subscribe("number.int", func(msg entangld.Message) {
		calls++
		got = msg
	}, "")
	require.NoError(t, err)

	require.NoError(t, d.Set("number.int", 3.0))

	assert.Equal(t, 1, calls)
	assert.Equal(t, 3.0, got.Value)
}

// S8: root subscription.
func TestRootSubscription(t *testing.T) {
	d := entangld.New()

	var got entangld.Message
	_, err := d.Subscribe("", func(msg entangld.Message) { got = msg }, "")
	require.NoError(t, err)

	require.NoError(t, d.Set("key", "value"))
	assert.Equal(t, map[string]interface{}{"key": "value"}, got.Value)
}

// attachPair wires two Datastores together synchronously: each Handler
// calls straight into the other's Receive, the way two processes joined
// by a loopback transport would, minus the wire encoding.
func attachPair(t *testing.T, a, b *entangld.Datastore, aName, bName string) {
	t.Helper()
	require.NoError(t, a.Attach(bName, func(msg entangld.Message) {
		require.NoError(t, b.Receive(msg, aName))
	}))
	require.NoError(t, b.Attach(aName, func(msg entangld.Message) {
		require.NoError(t, a.Receive(msg, bName))
	}))
}

// S4: remote get.
func TestRemoteGet(t *testing.T) {
	a := entangld.New(entangld.WithInitialData(map[string]interface{}{"name": "Alfred"}))
	b := entangld.New(entangld.WithInitialData(map[string]interface{}{"name": "Bruce"}))
	attachPair(t, a, b, "store_a", "store_b")

	var got entangld.Message
	require.NoError(t, a.Get("store_b.name", func(msg entangld.Message) { got = msg }, ""))
	assert.Equal(t, "Bruce", got.Value)
}

// S5: remote set.
func TestRemoteSet(t *testing.T) {
	a := entangld.New(entangld.WithInitialData(map[string]interface{}{"name": "Alfred"}))
	b := entangld.New(entangld.WithInitialData(map[string]interface{}{"name": "Bruce"}))
	attachPair(t, a, b, "store_a", "store_b")

	require.NoError(t, a.Set("store_b.name", map[string]interface{}{
		"first": "Bruce", "middle": nil, "last": "Wayne",
	}))

	var got entangld.Message
	require.NoError(t, b.Get("name.first", func(msg entangld.Message) { got = msg }, ""))
	assert.Equal(t, "Bruce", got.Value)
}

// S7: remote subscription.
func TestRemoteSubscription(t *testing.T) {
	a := entangld.New()
	b := entangld.New(entangld.WithInitialData(map[string]interface{}{"name": "Alfred"}))
	attachPair(t, a, b, "store_a", "store_b")

	var got entangld.Message
	_, err := a.Subscribe("store_b.name", func(msg entangld.Message) { got = msg }, "")
	require.NoError(t, err)

	require.NoError(t, b.Set("name", map[string]interface{}{"first": "Bruce", "last": "Wayne"}))

	first, _ := got.Value.(map[string]interface{})["first"]
	assert.Equal(t, "Bruce", first)
}

// Invariant 4: at-most-once request completion.
func TestRemoteGetRequestConsumedExactlyOnce(t *testing.T) {
	a := entangld.New()

	var sentUUID string
	require.NoError(t, a.Attach("store_b", func(msg entangld.Message) {
		sentUUID = msg.UUID // a stand-in transport that never replies on its own
	}))

	calls := 0
	require.NoError(t, a.Get("store_b.name", func(entangld.Message) { calls++ }, ""))
	require.NotEmpty(t, sentUUID)
	assert.Equal(t, 0, calls, "the callback must not fire until a matching value reply arrives")

	reply := entangld.Message{Type: entangld.TypeValue, UUID: sentUUID, Value: "Bruce"}
	require.NoError(t, a.Receive(reply, "store_b"))
	assert.Equal(t, 1, calls)

	// A second delivery of the same reply must be dropped, not re-fired.
	require.NoError(t, a.Receive(reply, "store_b"))
	assert.Equal(t, 1, calls)

	// An unrelated unknown uuid is likewise logged and dropped, never panics.
	require.NoError(t, a.Receive(entangld.Message{Type: entangld.TypeValue, UUID: "does-not-exist", Value: "x"}, "store_b"))
	assert.Equal(t, 1, calls)
}

// Cancelling a pending remote Get by its uuid must drop a later reply
// instead of firing the callback.
func TestCancelDropsLateReply(t *testing.T) {
	a := entangld.New()

	require.NoError(t, a.Attach("store_b", func(entangld.Message) {}))

	calls := 0
	require.NoError(t, a.Get("store_b.name", func(entangld.Message) { calls++ }, "req-1"))

	a.Cancel("req-1")

	require.NoError(t, a.Receive(entangld.Message{Type: entangld.TypeValue, UUID: "req-1", Value: "Bruce"}, "store_b"))
	assert.Equal(t, 0, calls, "a reply to a cancelled request must not fire its callback")

	// Cancelling an already-cancelled or unknown uuid is a harmless no-op.
	a.Cancel("req-1")
	a.Cancel("does-not-exist")
}

// Invariant 6: unsubscribe returns the exact count and stops delivery.
func TestUnsubscribeStopsDelivery(t *testing.T) {
	d := entangld.New()

	calls := 0
	_, err := d.Subscribe("a.b.c", func(entangld.Message) { calls++ }, "")
	require.NoError(t, err)

	n := d.Unsubscribe("a.b.c", "")
	assert.Equal(t, 1, n)

	require.NoError(t, d.Set("a.b.c", "value"))
	assert.Equal(t, 0, calls)
}

// Invariant 6 (direction): unsubscribing a narrower path removes a
// subscription registered at a broader one.
func TestUnsubscribeNarrowerPathRemovesBroaderSubscription(t *testing.T) {
	d := entangld.New()

	calls := 0
	_, err := d.Subscribe("a", func(entangld.Message) { calls++ }, "")
	require.NoError(t, err)

	n := d.Unsubscribe("a.b.c", "")
	assert.Equal(t, 1, n, "unsubscribing at a deeper-or-equal path removes the shallower subscription")

	require.NoError(t, d.Set("a.b.c", "value"))
	assert.Equal(t, 0, calls)
}

// Invariant 8: set is idempotent.
func TestSetIsIdempotent(t *testing.T) {
	d1 := entangld.New()
	d2 := entangld.New()

	require.NoError(t, d1.Set("a.b", "value"))
	require.NoError(t, d2.Set("a.b", "value"))
	require.NoError(t, d2.Set("a.b", "value"))

	var v1, v2 entangld.Message
	require.NoError(t, d1.Get("a", func(m entangld.Message) { v1 = m }, ""))
	require.NoError(t, d2.Get("a", func(m entangld.Message) { v2 = m }, ""))
	assert.Equal(t, v1.Value, v2.Value)
}

func TestGetRejectsNilCallback(t *testing.T) {
	d := entangld.New()
	err := d.Get("key", nil, "")
	assert.Error(t, err)
}

func TestSubscribeRejectsNilCallback(t *testing.T) {
	d := entangld.New()
	_, err := d.Subscribe("key", nil, "")
	assert.Error(t, err)
}

func TestAttachRejectsNilHandler(t *testing.T) {
	d := entangld.New()
	err := d.Attach("store_b", nil)
	assert.Error(t, err)
}

func TestPathWithReservedCharacterRejected(t *testing.T) {
	d := entangld.New()
	err := d.Set("a/b", "value")
	assert.Error(t, err)
}

func TestPushOntoNonArrayReturnsTreeError(t *testing.T) {
	d := entangld.New()
	require.NoError(t, d.Set("x", "scalar"))

	err := d.Push("x", "oops")
	require.Error(t, err)

	var treeErr *entangld.TreeError
	assert.ErrorAs(t, err, &treeErr)
}

func TestPushAppendsToArray(t *testing.T) {
	d := entangld.New()
	require.NoError(t, d.Push("list", 1.0))
	require.NoError(t, d.Push("list", 2.0))

	var got entangld.Message
	require.NoError(t, d.Get("list", func(m entangld.Message) { got = m }, ""))
	assert.Equal(t, []interface{}{1.0, 2.0}, got.Value)
}

func TestReentrantSetFromSubscriptionCallback(t *testing.T) {
	d := entangld.New()

	var secondFired bool
	_, err := d.Subscribe("trigger", func(entangld.Message) {
		require.NoError(t, d.Set("derived", "computed"))
	}, "")
	require.NoError(t, err)

	_, err = d.Subscribe("derived", func(entangld.Message) { secondFired = true }, "")
	require.NoError(t, err)

	require.NoError(t, d.Set("trigger", "go"))
	assert.True(t, secondFired)
}

func TestStatsTracksOperations(t *testing.T) {
	d := entangld.New()

	stats := d.Stats()
	assert.Zero(t, stats.Gets)
	assert.Zero(t, stats.Sets)
	assert.Zero(t, stats.Pushes)
	assert.Zero(t, stats.Subscriptions)
	assert.Zero(t, stats.Remotes)

	require.NoError(t, d.Set("key", "value"))
	require.NoError(t, d.Set("key", "value2"))
	require.NoError(t, d.Push("list", 1.0))
	require.NoError(t, d.Get("key", func(entangld.Message) {}, ""))
	_, err := d.Subscribe("key", func(entangld.Message) {}, "")
	require.NoError(t, err)
	require.NoError(t, d.Attach("remote", func(entangld.Message) {}))

	stats = d.Stats()
	assert.Equal(t, uint64(1), stats.Gets)
	assert.Equal(t, uint64(2), stats.Sets)
	assert.Equal(t, uint64(1), stats.Pushes)
	assert.Equal(t, 1, stats.Subscriptions)
	assert.Equal(t, 1, stats.Remotes)
}
