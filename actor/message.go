package actor

import "github.com/coreactor/actorkit/identity"

// Message is the unit of delivery between services. Instances are
// immutable once constructed; a Service's onMessage hook receives a
// pointer but must not mutate it.
type Message struct {
	sender     identity.ServiceID
	receiver   identity.ServiceID
	mtype      MessageType
	header     string
	responseID int32
	payload    []byte
	broadcast  bool
}

// NewMessage builds a point-to-point message from sender to receiver.
func NewMessage(sender, receiver identity.ServiceID, mtype MessageType, header string, responseID int32, payload []byte) *Message {
	return &Message{
		sender:     sender,
		receiver:   receiver,
		mtype:      mtype,
		header:     header,
		responseID: responseID,
		payload:    payload,
	}
}

// NewBroadcast builds a broadcast message originating from sender.
// Its receiver field is meaningless; each worker it is sent to fans it
// out to every live service there except the sender. Router.Broadcast
// sends it to the originating worker only, Router.BroadcastAll to
// every worker.
func NewBroadcast(sender identity.ServiceID, mtype MessageType, header string, payload []byte) *Message {
	return &Message{
		sender:    sender,
		mtype:     mtype,
		header:    header,
		payload:   payload,
		broadcast: true,
	}
}

// Sender returns the originating service id.
func (m *Message) Sender() identity.ServiceID { return m.sender }

// Receiver returns the destination service id. Meaningless for a
// broadcast message.
func (m *Message) Receiver() identity.ServiceID { return m.receiver }

// Type returns the message's payload classification.
func (m *Message) Type() MessageType { return m.mtype }

// Header returns the message's routing/command header string.
func (m *Message) Header() string { return m.header }

// ResponseID returns the correlation id a reply should echo back, or
// 0 if this message is not itself a reply target.
func (m *Message) ResponseID() int32 { return m.responseID }

// Payload returns the message body. Callers must not mutate it.
func (m *Message) Payload() []byte { return m.payload }

// IsBroadcast reports whether this message is a worker-local
// broadcast rather than a point-to-point delivery.
func (m *Message) IsBroadcast() bool { return m.broadcast }
