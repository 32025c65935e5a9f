package entangld

import "github.com/dreamware/entangld/internal/proto"

// MessageType names one of the operations the dispatcher protocol
// understands.
type MessageType = proto.MessageType

// The seven message types the protocol exchanges between attached stores.
const (
	TypeGet         = proto.TypeGet
	TypeSet         = proto.TypeSet
	TypePush        = proto.TypePush
	TypeValue       = proto.TypeValue
	TypeSubscribe   = proto.TypeSubscribe
	TypeUnsubscribe = proto.TypeUnsubscribe
	TypeEvent       = proto.TypeEvent
)

// Message is the full contents of one protocol exchange, as produced by
// Get/Set/Push/Subscribe/Unsubscribe and consumed by Receive. Path is
// always expressed from the recipient's point of view. Any namespace
// prefix has already been peeled off by the sender. Value round-trips
// losslessly through JSON: it holds whatever plain Go value
// encoding/json.Unmarshal would have produced (nil, bool, float64,
// string, []interface{}, or map[string]interface{}).
type Message = proto.Message

// Callback receives a single Message: the result of a Get, an Event for a
// Subscribe, or (as Handler) a Message a remote should transmit.
// Callbacks fire synchronously on whatever goroutine drove the triggering
// call. See the concurrency notes in the package doc.
type Callback = proto.Callback

// Handler is invoked by a Datastore whenever it needs to send a Message
// to the remote it was attached with. The handler owns serialization,
// framing, and transport; it must not call back into the Datastore that
// invoked it during the call itself, though it may enqueue the message
// for later delivery.
type Handler = proto.Callback
