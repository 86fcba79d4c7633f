package actor

// MessageType identifies how a message's payload should be interpreted
// by the receiving service.
type MessageType uint8

const (
	// PTypeText carries an application-defined text/binary payload.
	PTypeText MessageType = iota
	// PTypeSystem carries a runtime-originated notification (broadcast
	// bodies, lifecycle events).
	PTypeSystem
	// PTypeError carries a failure reply: a dead/missing service, an
	// unknown command, or a recovered panic.
	PTypeError
)

func (t MessageType) String() string {
	switch t {
	case PTypeText:
		return "text"
	case PTypeSystem:
		return "system"
	case PTypeError:
		return "error"
	default:
		return "unknown"
	}
}

const (
	// MaxServiceNum bounds the per-worker local id counter. It must be
	// at least 1<<16 so a busy worker does not wrap into still-live ids.
	MaxServiceNum uint32 = 1 << 20

	// QueueWarnDepth is the inbound batch size above which a worker
	// logs the batch depth at debug level before delivering it.
	QueueWarnDepth = 1000

	// maxServiceIDProbe bounds the linear probe AddService performs
	// when auto-allocating an id that collides with a live service.
	maxServiceIDProbe = 16

	// defaultTaskQueueDepth sizes a worker's posted-task channel.
	defaultTaskQueueDepth = 4096
)

// WorkerState is the monotonic lifecycle stage of a Worker.
type WorkerState int32

const (
	StateInit WorkerState = iota
	StateReady
	StateStopping
	StateExited
)

func (s WorkerState) String() string {
	switch s {
	case StateInit:
		return "init"
	case StateReady:
		return "ready"
	case StateStopping:
		return "stopping"
	case StateExited:
		return "exited"
	default:
		return "unknown"
	}
}
