package actor

import (
	"fmt"
	"sync"

	"github.com/coreactor/actorkit/identity"
	"go.uber.org/atomic"
)

// OnMessageFunc handles an inbound message. It runs on the owning
// worker's single reactor goroutine; it must never block.
type OnMessageFunc func(s *Service, msg *Message)

// OnStartFunc runs once, after a service has been placed on its
// owning worker and assigned an id.
type OnStartFunc func(s *Service)

// OnUpdateFunc runs on every worker Update tick.
type OnUpdateFunc func(s *Service)

// OnExitFunc runs once, before a service is removed from its worker
// (both graceful removal and crash teardown).
type OnExitFunc func(s *Service)

// OnDestroyFunc runs after OnExitFunc, immediately before the service
// is dropped from its worker's service table.
type OnDestroyFunc func(s *Service)

// CommandHandler answers a "service.<id>.<name>" runcmd. args is
// whatever text followed the command name. A non-nil error becomes a
// PTYPE_ERROR reply.
type CommandHandler func(s *Service, args string) (interface{}, error)

// ServiceOption configures a Service at construction time.
type ServiceOption func(*Service)

// WithOnMessage sets the service's message handler.
func WithOnMessage(f OnMessageFunc) ServiceOption { return func(s *Service) { s.onMessage = f } }

// WithOnStart sets the service's start hook.
func WithOnStart(f OnStartFunc) ServiceOption { return func(s *Service) { s.onStart = f } }

// WithOnUpdate sets the service's per-tick update hook.
func WithOnUpdate(f OnUpdateFunc) ServiceOption { return func(s *Service) { s.onUpdate = f } }

// WithOnExit sets the service's pre-removal hook.
func WithOnExit(f OnExitFunc) ServiceOption { return func(s *Service) { s.onExit = f } }

// WithOnDestroy sets the service's post-exit hook.
func WithOnDestroy(f OnDestroyFunc) ServiceOption { return func(s *Service) { s.onDestroy = f } }

// Service is a single addressable actor living on exactly one Worker.
// Its lifecycle hooks and command handlers all execute on that
// worker's reactor goroutine, so they need no internal locking of
// their own against message delivery.
type Service struct {
	id    identity.ServiceID
	name  string
	owner *Worker
	ok    atomic.Bool

	onMessage OnMessageFunc
	onStart   OnStartFunc
	onUpdate  OnUpdateFunc
	onExit    OnExitFunc
	onDestroy OnDestroyFunc

	cmdMu    sync.RWMutex
	commands map[string]CommandHandler
}

// NewService constructs a service. It has no id or owner until a
// Worker places it via AddService or a Router places it via Spawn.
func NewService(name string, opts ...ServiceOption) *Service {
	s := &Service{
		name:     name,
		commands: make(map[string]CommandHandler),
	}
	s.ok.Store(true)
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// ID returns the service's address. Zero until placed on a worker.
func (s *Service) ID() identity.ServiceID { return s.id }

// Name returns the service's human-readable name.
func (s *Service) Name() string { return s.name }

// Owner returns the worker this service runs on, or nil if unplaced.
func (s *Service) Owner() *Worker { return s.owner }

// Ok reports whether the service is still live. It goes false the
// instant teardown begins and never flips back.
func (s *Service) Ok() bool { return s.ok.Load() }

// RegisterCommand adds a "service.<id>.<name>" runcmd handler. Safe to
// call at any time, including from within a running handler.
func (s *Service) RegisterCommand(name string, h CommandHandler) {
	s.cmdMu.Lock()
	defer s.cmdMu.Unlock()
	s.commands[name] = h
}

func (s *Service) command(name string) (CommandHandler, bool) {
	s.cmdMu.RLock()
	defer s.cmdMu.RUnlock()
	h, ok := s.commands[name]
	return h, ok
}

// Send posts a point-to-point message from this service through its
// owning router. It is safe to call from any goroutine.
func (s *Service) Send(receiver identity.ServiceID, mtype MessageType, header string, responseID int32, payload []byte) {
	s.owner.router.Send(NewMessage(s.id, receiver, mtype, header, responseID, payload))
}

// Reply sends a response to the sender of msg, echoing its
// ResponseID so the caller can correlate it.
func (s *Service) Reply(msg *Message, mtype MessageType, header string, payload []byte) {
	s.Send(msg.Sender(), mtype, header, msg.ResponseID(), payload)
}

// Broadcast fans a message out to every live service on this
// service's own worker, excluding itself.
func (s *Service) Broadcast(mtype MessageType, header string, payload []byte) {
	s.owner.router.Broadcast(s.id, NewBroadcast(s.id, mtype, header, payload))
}

// Exit requests this service's own graceful removal from its owning
// worker. It is the service-initiated counterpart to a crash: the
// same removal pipeline runs (broadcast, router notification, reply),
// just with this service as its own sender and no caller awaiting a
// responseID. Safe to call from any goroutine, including from within
// this service's own message handler.
func (s *Service) Exit() {
	s.owner.RemoveService(s.id, s.id, 0, false)
}

// start runs the service's start hook, if any. Called once by the
// owning worker immediately after placement.
func (s *Service) start() {
	if s.onStart != nil {
		s.onStart(s)
	}
}

// update runs the service's update hook, if any.
func (s *Service) update() {
	if s.onUpdate != nil {
		s.onUpdate(s)
	}
}

// exit marks the service dead and runs its exit/destroy hooks. Called
// by the owning worker's reactor goroutine during removal.
func (s *Service) exit() {
	s.ok.Store(false)
	if s.onExit != nil {
		s.onExit(s)
	}
	if s.onDestroy != nil {
		s.onDestroy(s)
	}
}

// handleMessage dispatches msg to the service's onMessage hook,
// converting any recovered panic into a PTYPE_ERROR reply to the
// sender and removing the service as crashed. It runs on the owning
// worker's reactor goroutine.
func (s *Service) handleMessage(msg *Message) {
	defer func() {
		if r := recover(); r != nil {
			reason := fmt.Sprintf("%v", r)
			// Remove before replying: handleMessage already runs on
			// the owning worker's own reactor goroutine, so this can
			// and must happen synchronously. Otherwise the error
			// reply below could be redelivered to this same service
			// before its posted removal ran, panicking it a second
			// time and double-reporting the crash.
			s.owner.removeServiceSync(s.id, msg.Sender(), msg.ResponseID(), true)
			s.owner.router.Send(NewMessage(s.id, msg.Sender(), PTypeError, "panic", msg.ResponseID(), []byte(reason)))
			s.owner.reportCrash(s.id, s.name, reason)
		}
	}()
	if s.onMessage != nil {
		s.onMessage(s, msg)
	}
}

// runCommand dispatches a "service.<id>.<name>" runcmd, returning the
// PTYPE_ERROR body for an unknown command.
func (s *Service) runCommand(name, args string) (interface{}, error) {
	h, ok := s.command(name)
	if !ok {
		return nil, NewUnknownCommandError(name, ErrUnknownServiceCmd)
	}
	return h(s, args)
}
