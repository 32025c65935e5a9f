package proto

// MessageType names one of the small set of operations the dispatcher
// protocol understands.
type MessageType string

const (
	// TypeGet requests the value at Path; expects a matching TypeValue reply.
	TypeGet MessageType = "get"
	// TypeSet assigns Value at Path. Fire-and-forget, no reply.
	TypeSet MessageType = "set"
	// TypePush appends Value to the array at Path. Fire-and-forget, no reply.
	TypePush MessageType = "push"
	// TypeValue is the reply to a TypeGet, correlated by UUID.
	TypeValue MessageType = "value"
	// TypeSubscribe registers standing interest in Path; UUID names the
	// subscription for later targeted unsubscribe.
	TypeSubscribe MessageType = "subscribe"
	// TypeUnsubscribe removes a subscription previously created by
	// TypeSubscribe.
	TypeUnsubscribe MessageType = "unsubscribe"
	// TypeEvent delivers a changed value to a standing subscription.
	TypeEvent MessageType = "event"
)

// Message is the full contents of one protocol exchange. Path is always
// expressed from the recipient's point of view: a namespace prefix is
// peeled off by the sender before the Message leaves its origin, so nothing
// downstream of a hop needs to know the name by which it was reached.
//
// UUID correlates a TypeGet with its TypeValue reply and a TypeSubscribe
// with the TypeEvent/TypeUnsubscribe messages that reference it. It may be
// empty for TypeSet/TypePush, which expect no reply.
type Message struct {
	Type  MessageType `json:"type"`
	Path  string      `json:"path"`
	UUID  string      `json:"uuid,omitempty"`
	Value interface{} `json:"value,omitempty"`
}

// Callback is invoked by the dispatcher whenever it has a Message to hand
// back to a caller: the result of a Get, an Event for a Subscribe, or a
// Message a remote's Handler should transmit. Callbacks fire synchronously
// on whatever goroutine drove the triggering operation. See the
// concurrency notes on Datastore.
type Callback func(msg Message)
