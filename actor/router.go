package actor

import (
	"sync"

	"github.com/coreactor/actorkit/identity"
	log "github.com/sirupsen/logrus"
)

// Router owns the full set of workers in a runtime and is the only
// component that ever addresses a message by worker id rather than
// handing it directly to a Worker. It also holds the name-to-id
// directory services register into.
type Router struct {
	mu      sync.RWMutex
	workers [256]*Worker
	names   map[string]identity.ServiceID
	logger  *log.Entry
}

// NewRouter builds an empty router. Workers are added with AddWorker.
func NewRouter() *Router {
	return &Router{
		names:  make(map[string]identity.ServiceID),
		logger: log.WithField("component", "router"),
	}
}

// Logger returns the router's structured logger, shared by every
// worker it owns.
func (r *Router) Logger() *log.Entry { return r.logger }

// AddWorker registers w under its own id. It panics if that id is
// already taken, or out of the valid worker id range.
func (r *Router) AddWorker(w *Worker) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if w.ID() < identity.MinWorkerID {
		r.logger.WithField("worker", w.ID()).Panic("worker id 0 is reserved")
	}
	if r.workers[w.ID()] != nil {
		r.logger.WithField("worker", w.ID()).Panic("worker id already registered")
	}
	r.workers[w.ID()] = w
}

// Worker looks up a worker by id.
func (r *Router) Worker(id uint8) (*Worker, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	w := r.workers[id]
	return w, w != nil
}

// Workers returns every registered worker, in id order.
func (r *Router) Workers() []*Worker {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]*Worker, 0, len(r.workers))
	for _, w := range r.workers {
		if w != nil {
			out = append(out, w)
		}
	}
	return out
}

// Send routes msg to the worker named by its receiver's upper byte.
// If that worker doesn't exist, the sender is told its destination is
// dead rather than the message being silently dropped.
func (r *Router) Send(msg *Message) {
	wid := identity.WorkerID(msg.Receiver())
	w, ok := r.Worker(wid)
	if !ok {
		// Same reply-loop guard as Worker.handleOne: don't bounce a
		// dead-service notification off of an already-synthetic error.
		if msg.Type() == PTypeError {
			return
		}
		if replyWid := identity.WorkerID(msg.Sender()); replyWid != 0 {
			if replyWorker, ok := r.Worker(replyWid); ok {
				replyWorker.Send(NewMessage(msg.Receiver(), msg.Sender(), PTypeError, "deadservice",
					msg.ResponseID(), []byte("call dead service.")))
			}
		}
		return
	}
	w.Send(msg)
}

// Broadcast fans msg out only to services on the worker that owns
// fromID. This is worker-local scope, distinct from BroadcastAll.
func (r *Router) Broadcast(fromID identity.ServiceID, msg *Message) {
	w, ok := r.Worker(identity.WorkerID(fromID))
	if !ok {
		return
	}
	w.Send(msg)
}

// BroadcastAll fans msg out to every worker in the runtime, each of
// which in turn fans it out to its own live services. This is
// whole-runtime scope, distinct from Broadcast.
func (r *Router) BroadcastAll(msg *Message) {
	for _, w := range r.Workers() {
		w.Send(msg)
	}
}

// MakeResponse builds a reply message addressed back to "to",
// defaulting to PTypeText unless an override is given.
func (r *Router) MakeResponse(to identity.ServiceID, header string, body []byte, responseID int32, mtype ...MessageType) *Message {
	t := PTypeText
	if len(mtype) > 0 {
		t = mtype[0]
	}
	return NewMessage(0, to, t, header, responseID, body)
}

// OnServiceRemove forgets any name binding pointing at id. It is
// called for a graceful removal, never for a crash, so a crashed
// service's name can still be inspected by the name it last held.
func (r *Router) OnServiceRemove(id identity.ServiceID) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for name, bound := range r.names {
		if bound == id {
			delete(r.names, name)
		}
	}
}

// Register binds name to id in the router's directory, overwriting
// any previous binding for that name.
func (r *Router) Register(name string, id identity.ServiceID) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.names[name] = id
}

// Lookup resolves a registered name to its current ServiceID.
func (r *Router) Lookup(name string) (identity.ServiceID, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	id, ok := r.names[name]
	return id, ok
}

// Spawn places s on the worker chosen by the router's placement
// policy and returns its assigned id. It returns ErrNoWorkerAvailable
// if the router owns no workers at all.
func (r *Router) Spawn(s *Service) (identity.ServiceID, error) {
	w := r.placeWorker()
	if w == nil {
		return 0, ErrNoWorkerAvailable
	}
	return w.AddService(s), nil
}

// placeWorker picks the worker a new service should land on: the
// shared worker with the fewest services, preferring to keep load
// balanced across workers that have opted into receiving router
// placements. If no worker is marked shared, it falls back to the
// overall least-loaded worker and clears that worker's shared flag,
// so a deliberately pinned (non-shared) worker isn't handed more
// router-placed load than the one time its hand is forced.
func (r *Router) placeWorker() *Worker {
	workers := r.Workers()
	if len(workers) == 0 {
		return nil
	}

	var bestShared *Worker
	for _, w := range workers {
		if !w.Shared() {
			continue
		}
		if bestShared == nil || w.ServiceNum() < bestShared.ServiceNum() {
			bestShared = w
		}
	}
	if bestShared != nil {
		return bestShared
	}

	best := workers[0]
	for _, w := range workers[1:] {
		if w.ServiceNum() < best.ServiceNum() {
			best = w
		}
	}
	best.shared.Store(false)
	return best
}
