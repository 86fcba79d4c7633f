package actor

import (
	"encoding/json"
	"fmt"
	"runtime"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/coreactor/actorkit/identity"
	"github.com/coreactor/actorkit/metrics"
	log "github.com/sirupsen/logrus"
	"go.uber.org/atomic"
	"golang.org/x/time/rate"
)

// WorkerCommandFunc answers a "worker.<id>.<name>" runcmd.
type WorkerCommandFunc func(w *Worker, args string) (interface{}, error)

// inboundQueue is a single-producer-many, single-consumer-one mailbox.
// push returns the queue depth immediately after the push; a caller
// that observes 1 is the one responsible for scheduling a drain, which
// coalesces any pushes that land while a drain is already scheduled or
// running.
type inboundQueue struct {
	mu  sync.Mutex
	buf []*Message
}

func (q *inboundQueue) push(m *Message) int {
	q.mu.Lock()
	defer q.mu.Unlock()
	q.buf = append(q.buf, m)
	return len(q.buf)
}

func (q *inboundQueue) swap() []*Message {
	q.mu.Lock()
	defer q.mu.Unlock()
	batch := q.buf
	q.buf = nil
	return batch
}

// Worker is a single-goroutine reactor owning a set of services. All
// service lifecycle hooks, message delivery, and command dispatch for
// services on this worker execute on its one reactor goroutine; the
// worker's public methods are safe to call from any goroutine and
// work by posting closures onto that goroutine.
type Worker struct {
	id     uint8
	state  atomic.Int32
	router *Router
	logger *log.Entry

	services map[identity.ServiceID]*Service
	commands map[string]WorkerCommandFunc

	inbound *inboundQueue
	tasks   chan func()
	wg      sync.WaitGroup

	shared     atomic.Bool
	serviceNum atomic.Uint32
	serviceUID atomic.Uint32
	workTimeMs atomic.Int64

	limiter   *rate.Limiter
	crashHook func(id identity.ServiceID, name, reason string)
}

// WorkerOption configures a Worker at construction time.
type WorkerOption func(*Worker)

// WithCrashHook registers fn to run whenever a service on this worker
// is removed because its message handler panicked. It runs on the
// worker's reactor goroutine, after the crashed service has been
// removed (its onExit hook run and its exit broadcast sent) and after
// the PTYPE_ERROR reply to the failing call, so it must not block.
func WithCrashHook(fn func(id identity.ServiceID, name, reason string)) WorkerOption {
	return func(w *Worker) { w.crashHook = fn }
}

// NewWorker builds a worker with the given id, owned by router. The
// worker does not start running until Run is called.
func NewWorker(id uint8, router *Router, opts ...WorkerOption) *Worker {
	w := &Worker{
		id:       id,
		router:   router,
		logger:   router.Logger().WithField("worker", id),
		services: make(map[identity.ServiceID]*Service),
		commands: make(map[string]WorkerCommandFunc),
		inbound:  &inboundQueue{},
		tasks:    make(chan func(), defaultTaskQueueDepth),
		limiter:  newCommandLimiter(),
	}
	w.shared.Store(true)
	w.state.Store(int32(StateInit))
	w.registerBuiltinCommands()
	for _, opt := range opts {
		opt(w)
	}
	return w
}

// reportCrash invokes the worker's crash hook, if one was configured
// with WithCrashHook.
func (w *Worker) reportCrash(id identity.ServiceID, name, reason string) {
	if w.crashHook != nil {
		w.crashHook(id, name, reason)
	}
}

// post schedules fn to run on the worker's reactor goroutine.
func (w *Worker) post(fn func()) {
	w.tasks <- fn
}

// Run starts the worker's reactor goroutine and blocks until it has
// transitioned to StateReady.
func (w *Worker) Run() {
	w.wg.Add(1)
	go func() {
		defer w.wg.Done()
		w.state.Store(int32(StateReady))
		for fn := range w.tasks {
			fn()
		}
	}()
	for w.State() != StateReady {
		runtime.Gosched()
	}
}

// Stop posts a request to tear the worker down: every live service is
// driven through the same removal pipeline removeServiceSync uses for
// any other teardown (broadcast, router notification, reply to
// sender), so a forced stop is observably identical to each service
// asking to be removed on its own. The worker transitions to
// StateExited once the last service has been removed. It is a no-op
// if the worker is already stopping or exited.
func (w *Worker) Stop() {
	w.post(func() {
		switch WorkerState(w.state.Load()) {
		case StateStopping, StateExited:
			return
		}
		if len(w.services) == 0 {
			w.state.Store(int32(StateExited))
			return
		}
		w.state.Store(int32(StateStopping))
		ids := make([]identity.ServiceID, 0, len(w.services))
		for id := range w.services {
			ids = append(ids, id)
		}
		for _, id := range ids {
			w.removeServiceSync(id, id, 0, false)
		}
	})
}

// Wait blocks until Stop has driven the worker to StateExited, then
// closes the worker's task queue and blocks until its reactor
// goroutine has drained and exited. Call Stop first; Wait does not
// return otherwise. Posting to a worker after Wait returns will panic
// on a closed channel.
func (w *Worker) Wait() {
	for w.State() != StateExited {
		runtime.Gosched()
	}
	close(w.tasks)
	w.wg.Wait()
}

// NextServiceID allocates the next local id for this worker and
// encodes it into a full ServiceID. It is a pure atomic operation,
// safe to call from any goroutine, and performs no collision check
// against the worker's live service set; AddService's internal
// allocator uses it together with a bounded probe.
func (w *Worker) NextServiceID() identity.ServiceID {
	uid := w.serviceUID.Add(1)
	local := uid%MaxServiceNum + 1
	return identity.Encode(w.id, local)
}

// allocateID probes for a ServiceID not currently in use on this
// worker. It must only run on the worker's own reactor goroutine,
// since it reads w.services directly.
func (w *Worker) allocateID() identity.ServiceID {
	for i := 0; i < maxServiceIDProbe; i++ {
		id := w.NextServiceID()
		if _, exists := w.services[id]; !exists {
			return id
		}
	}
	w.logger.Panic("exhausted service id probe, worker is saturated")
	panic("unreachable")
}

// AddService places s on this worker, assigning it an id if it
// doesn't already have one, and runs its start hook. It blocks until
// placement completes and returns the assigned id.
//
// AddService must never be called from a hook or command handler
// running on w's own reactor goroutine: it posts a closure and waits
// on the reply, and the posting goroutine would then be waiting on
// itself.
func (w *Worker) AddService(s *Service) identity.ServiceID {
	reply := make(chan identity.ServiceID, 1)
	w.post(func() {
		var id identity.ServiceID
		if s.id == 0 {
			id = w.allocateID()
		} else {
			id = s.id
			if _, exists := w.services[id]; exists {
				w.logger.WithField("serviceid", fmt.Sprintf("0x%08x", uint32(id))).
					Panic("duplicate service id")
			}
		}
		s.id = id
		s.owner = w
		w.services[id] = s
		w.serviceNum.Store(uint32(len(w.services)))
		metrics.ServiceCount.WithLabelValues(strconv.Itoa(int(w.id))).Set(float64(len(w.services)))
		s.start()
		reply <- id
	})
	return <-reply
}

// ServiceInfo is a point-in-time snapshot of one service, safe to
// read from any goroutine since it's a plain copy.
type ServiceInfo struct {
	ID   identity.ServiceID `json:"id"`
	Name string             `json:"name"`
}

// ListServices returns a snapshot of every live service on this
// worker. Safe to call from any goroutine; blocks until the worker's
// reactor goroutine processes the request, so it must never be called
// from within a hook or command handler already running on w.
func (w *Worker) ListServices() []ServiceInfo {
	reply := make(chan []ServiceInfo, 1)
	w.post(func() {
		list := make([]ServiceInfo, 0, len(w.services))
		for id, s := range w.services {
			list = append(list, ServiceInfo{ID: id, Name: s.Name()})
		}
		reply <- list
	})
	return <-reply
}

// RemoveService tears down the service named by id. sender and
// responseID identify who asked (for symmetry with message-driven
// removal requests); crashed distinguishes a panic-triggered teardown
// from a graceful exit in the broadcast it emits and in whether the
// router is told to forget the service's name binding.
func (w *Worker) RemoveService(id, sender identity.ServiceID, responseID int32, crashed bool) {
	w.post(func() {
		w.removeServiceSync(id, sender, responseID, crashed)
	})
}

// removeServiceSync performs the actual teardown described by
// RemoveService. It touches w.services directly and so must only ever
// run on w's own reactor goroutine — either from inside the posted
// closure RemoveService builds, or from a hook/handler (such as
// Service.handleMessage's panic recovery) that is already running
// there and needs the removal to take effect before it does anything
// else, such as sending a reply that might otherwise be redelivered
// to the service being torn down.
//
// Every call replies to sender/responseID exactly once: a
// PTYPE_ERROR if id isn't a live service, otherwise the normal
// {"name":...,"serviceid":...} body once teardown completes.
func (w *Worker) removeServiceSync(id, sender identity.ServiceID, responseID int32, crashed bool) {
	svc, ok := w.services[id]
	if !ok {
		w.router.Send(w.router.MakeResponse(sender, "error", []byte("remove_service:service not found"), responseID, PTypeError))
		return
	}
	svc.exit()
	delete(w.services, id)
	w.serviceNum.Store(uint32(len(w.services)))
	if len(w.services) == 0 {
		w.shared.Store(true)
	}

	body := "service exit"
	if crashed {
		body = "service crashed"
		metrics.ServicesCrashed.WithLabelValues(strconv.Itoa(int(w.id))).Inc()
	}
	w.router.Broadcast(id, NewBroadcast(id, PTypeSystem, "exit", []byte(body)))

	if !crashed {
		w.router.OnServiceRemove(id)
	}
	metrics.ServiceCount.WithLabelValues(strconv.Itoa(int(w.id))).Set(float64(len(w.services)))

	resp, err := json.Marshal(struct {
		Name      string `json:"name"`
		ServiceID uint32 `json:"serviceid"`
	}{Name: svc.Name(), ServiceID: uint32(id)})
	if err != nil {
		resp = []byte(fmt.Sprintf(`{"name":%q,"serviceid":%d}`, svc.Name(), uint32(id)))
	}
	w.router.Send(w.router.MakeResponse(sender, "remove", resp, responseID))

	if len(w.services) == 0 && w.State() == StateStopping {
		w.state.Store(int32(StateExited))
	}
}

// Send enqueues msg for delivery on this worker. The first push to an
// empty queue schedules a drain; concurrent pushes while a drain is
// pending or running are coalesced into that same drain.
func (w *Worker) Send(msg *Message) {
	if w.inbound.push(msg) == 1 {
		w.post(w.drain)
	}
}

// drain empties the inbound queue and delivers every message in the
// batch in order, carrying a hint pointer forward so consecutive
// messages to the same service skip the map lookup.
func (w *Worker) drain() {
	batch := w.inbound.swap()
	workerLabel := strconv.Itoa(int(w.id))
	metrics.QueueDepth.WithLabelValues(workerLabel).Set(float64(len(batch)))
	if len(batch) > QueueWarnDepth {
		w.logger.WithField("depth", len(batch)).Debug("inbound queue depth crossed warn threshold")
	}
	start := time.Now()
	var hint *Service
	for _, msg := range batch {
		hint = w.handleOne(hint, msg)
	}
	elapsed := time.Since(start)
	w.workTimeMs.Add(elapsed.Milliseconds())
	metrics.DrainSeconds.WithLabelValues(workerLabel).Observe(elapsed.Seconds())
}

// handleOne delivers a single message and returns the service that
// should be offered as the next hint, or the unchanged hint for a
// broadcast or a failed delivery.
func (w *Worker) handleOne(hint *Service, msg *Message) *Service {
	if msg.IsBroadcast() {
		for id, svc := range w.services {
			if id == msg.Sender() || !svc.Ok() {
				continue
			}
			svc.handleMessage(msg)
		}
		return hint
	}

	if hint != nil && hint.ID() == msg.Receiver() && hint.Ok() {
		hint.handleMessage(msg)
		return hint
	}

	svc, ok := w.services[msg.Receiver()]
	if !ok || !svc.Ok() {
		// Never auto-reply to an already-synthetic error message: the
		// sender of a deadservice/runcmd-failure reply is often not a
		// live service itself (e.g. the admin HTTP surface), and
		// replying to a reply would bounce forever.
		if msg.Type() != PTypeError {
			w.router.Send(NewMessage(msg.Receiver(), msg.Sender(), PTypeError, "deadservice", msg.ResponseID(),
				[]byte("call dead service.")))
		}
		return hint
	}
	svc.handleMessage(msg)
	return svc
}

// RunCmd posts a runcmd dispatch. cmd is either "worker.<id>.<name>
// [args]" or "service.<id>.<name> [args]"; the reply, including any
// error, is sent back to sender tagged with responseID.
func (w *Worker) RunCmd(sender identity.ServiceID, cmd string, responseID int32) {
	w.post(func() {
		w.dispatchCmd(sender, cmd, responseID)
	})
}

func (w *Worker) dispatchCmd(sender identity.ServiceID, cmd string, responseID int32) {
	parts := strings.SplitN(cmd, ".", 3)
	if len(parts) < 2 {
		w.replyError(sender, responseID, fmt.Sprintf("runcmd: malformed command %q", cmd))
		return
	}

	name, args := "", ""
	if len(parts) == 3 {
		nameArgs := strings.SplitN(parts[2], " ", 2)
		name = nameArgs[0]
		if len(nameArgs) == 2 {
			args = nameArgs[1]
		}
	}

	switch parts[0] {
	case "worker":
		h, ok := w.commands[name]
		if !ok {
			w.replyError(sender, responseID, fmt.Sprintf("runcmd: unknown command worker.%s", name))
			return
		}
		result, err := h(w, args)
		if err != nil {
			w.replyError(sender, responseID, err.Error())
			return
		}
		w.replyResult(sender, responseID, result)

	case "service":
		idNum, err := strconv.ParseUint(parts[1], 10, 32)
		if err != nil {
			w.replyError(sender, responseID, fmt.Sprintf("runcmd: bad service id in %q", cmd))
			return
		}
		svcID := identity.ServiceID(idNum)
		svc, ok := w.services[svcID]
		if !ok {
			w.replyError(sender, responseID, fmt.Sprintf("runcmd:can not found service.%d", idNum))
			return
		}
		result, err := svc.runCommand(name, args)
		if err != nil {
			w.replyError(sender, responseID, err.Error())
			return
		}
		w.replyResult(sender, responseID, result)

	default:
		w.replyError(sender, responseID, fmt.Sprintf("runcmd: malformed command %q", cmd))
	}
}

func (w *Worker) replyError(to identity.ServiceID, responseID int32, msg string) {
	metrics.RunCmdTotal.WithLabelValues(strconv.Itoa(int(w.id)), "error").Inc()
	w.router.Send(NewMessage(identity.Encode(w.id, 0), to, PTypeError, "runcmd", responseID, []byte(msg)))
}

func (w *Worker) replyResult(to identity.ServiceID, responseID int32, result interface{}) {
	metrics.RunCmdTotal.WithLabelValues(strconv.Itoa(int(w.id)), "ok").Inc()
	body, err := json.Marshal(result)
	if err != nil {
		w.replyError(to, responseID, err.Error())
		return
	}
	w.router.Send(NewMessage(identity.Encode(w.id, 0), to, PTypeText, "runcmd", responseID, body))
}

// registerBuiltinCommands installs the worker-level commands every
// worker answers regardless of which services it hosts.
func (w *Worker) registerBuiltinCommands() {
	w.commands["worktime"] = func(wk *Worker, _ string) (interface{}, error) {
		return map[string]int64{"work_time": wk.workTimeMs.Swap(0)}, nil
	}
	w.commands["services"] = func(wk *Worker, _ string) (interface{}, error) {
		type svcInfo struct {
			Name      string `json:"name"`
			ServiceID uint32 `json:"serviceid"`
		}
		list := make([]svcInfo, 0, len(wk.services))
		for id, s := range wk.services {
			list = append(list, svcInfo{Name: s.Name(), ServiceID: uint32(id)})
		}
		return list, nil
	}
}

// Update posts a tick to every live service's update hook.
func (w *Worker) Update() {
	w.post(func() {
		for _, svc := range w.services {
			if svc.Ok() {
				svc.update()
			}
		}
	})
}

// ID returns the worker's id.
func (w *Worker) ID() uint8 { return w.id }

// State returns the worker's current lifecycle state.
func (w *Worker) State() WorkerState { return WorkerState(w.state.Load()) }

// Shared reports whether the router's placement policy may assign
// new services to this worker.
func (w *Worker) Shared() bool { return w.shared.Load() }

// ServiceNum returns the number of services currently on this worker.
func (w *Worker) ServiceNum() uint32 { return w.serviceNum.Load() }

// WorkTimeMs returns accumulated drain time in milliseconds since the
// last "worktime" command reset it.
func (w *Worker) WorkTimeMs() int64 { return w.workTimeMs.Load() }

// FindService looks up a live service by id. Like w.services itself,
// it is only safe to call from this worker's own reactor goroutine —
// from inside a hook or command handler running on it.
func (w *Worker) FindService(id identity.ServiceID) (*Service, bool) {
	svc, ok := w.services[id]
	return svc, ok
}
