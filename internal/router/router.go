// Package router dispatches decoded Socket.IO events to registered handlers.
package router

import (
	"context"
	"fmt"
	"log/slog"
	"sync"

	"github.com/avelis/rugsbot/internal/protocol"
)

// Handler processes one event frame. A handler error is logged and absorbed:
// it never stops later handlers or the connection loop.
type Handler func(ctx context.Context, frame protocol.Frame) error

// Router holds an ordered registration table of event name to handlers.
// Dispatch is synchronous with respect to the frame that triggered it, so
// handlers observe events in arrival order.
type Router struct {
	logger *slog.Logger

	mu       sync.RWMutex
	handlers map[string][]Handler

	statsMu    sync.Mutex
	received   int64
	dispatched int64
	errors     int64
	unhandled  int64
}

// Stats contains dispatch counters.
type Stats struct {
	FramesReceived  int64 `json:"frames_received"`
	HandlersRun     int64 `json:"handlers_run"`
	HandlerErrors   int64 `json:"handler_errors"`
	UnhandledEvents int64 `json:"unhandled_events"`
}

// New creates an event router.
func New(logger *slog.Logger) *Router {
	if logger == nil {
		logger = slog.Default()
	}
	return &Router{
		logger:   logger,
		handlers: make(map[string][]Handler),
	}
}

// Register appends a handler for the named event. Handlers run in
// registration order.
func (r *Router) Register(event string, h Handler) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.handlers[event] = append(r.handlers[event], h)
}

// Dispatch calls every handler registered for the frame's event, in
// registration order. Unregistered events are ignored. A handler error or
// panic is caught and logged; later handlers still run.
func (r *Router) Dispatch(ctx context.Context, frame protocol.Frame) {
	r.statsMu.Lock()
	r.received++
	r.statsMu.Unlock()

	if !frame.IsEvent() || frame.SocketEvent == "" {
		return
	}

	r.mu.RLock()
	handlers := r.handlers[frame.SocketEvent]
	r.mu.RUnlock()

	if len(handlers) == 0 {
		r.statsMu.Lock()
		r.unhandled++
		r.statsMu.Unlock()
		r.logger.Debug("no handler for event", "event", frame.SocketEvent)
		return
	}

	for i, h := range handlers {
		if err := r.call(ctx, h, frame); err != nil {
			r.statsMu.Lock()
			r.errors++
			r.statsMu.Unlock()
			r.logger.Error("event handler failed",
				"event", frame.SocketEvent,
				"handler", i,
				"error", err,
			)
			continue
		}
		r.statsMu.Lock()
		r.dispatched++
		r.statsMu.Unlock()
	}
}

// call runs one handler, converting a panic into an error.
func (r *Router) call(ctx context.Context, h Handler, frame protocol.Frame) (err error) {
	defer func() {
		if rec := recover(); rec != nil {
			err = fmt.Errorf("handler panic: %v", rec)
		}
	}()
	return h(ctx, frame)
}

// Stats returns current dispatch counters.
func (r *Router) Stats() Stats {
	r.statsMu.Lock()
	defer r.statsMu.Unlock()
	return Stats{
		FramesReceived:  r.received,
		HandlersRun:     r.dispatched,
		HandlerErrors:   r.errors,
		UnhandledEvents: r.unhandled,
	}
}
