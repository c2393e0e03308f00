package connection

import (
	"context"
	"fmt"
	"log/slog"
	"math/rand/v2"
	"sync"
	"time"

	"github.com/avelis/rugsbot/internal/protocol"
)

// Engine.IO keepalive frames.
const (
	pingFrame = "2"
	pongFrame = "3"
)

// Dispatcher receives decoded event frames in strict arrival order.
type Dispatcher interface {
	Dispatch(ctx context.Context, frame protocol.Frame)
}

// Supervisor owns the connection lifecycle: connect, listen, detect drops,
// back off with jitter, reconnect indefinitely. All decoding and dispatch
// for a connection happens on the Run goroutine, so handlers observe events
// in arrival order.
type Supervisor struct {
	cfg      SupervisorConfig
	dispatch Dispatcher
	logger   *slog.Logger

	// dial is swapped in tests.
	dial func(cfg ClientConfig, logger *slog.Logger) Client

	// notify, when set, observes every status transition. Test hook.
	notify func(Status)

	mu     sync.RWMutex
	status Status
	client Client // live connection, nil unless Connected
}

// NewSupervisor creates a connection supervisor. The dispatcher receives
// every decoded Socket.IO event frame.
func NewSupervisor(cfg SupervisorConfig, dispatch Dispatcher, logger *slog.Logger) *Supervisor {
	if logger == nil {
		logger = slog.Default()
	}
	return &Supervisor{
		cfg:      cfg,
		dispatch: dispatch,
		logger:   logger,
		dial:     NewClient,
		status:   Status{State: StateDisconnected},
	}
}

// Status returns a snapshot of the connection state.
func (s *Supervisor) Status() Status {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.status
}

// Emit encodes an outbound event frame and sends it on the live connection.
// Returns ErrNotConnected when there is none.
func (s *Supervisor) Emit(event string, payload any) error {
	s.mu.RLock()
	client := s.client
	s.mu.RUnlock()

	if client == nil || !client.IsConnected() {
		return ErrNotConnected
	}

	raw, err := protocol.EncodeEvent(event, payload)
	if err != nil {
		return fmt.Errorf("encode %s: %w", event, err)
	}

	s.logger.Debug("emitting event", "event", event)
	return client.Send(raw)
}

// Run drives the connection state machine until the context is cancelled.
// It never gives up: every drop leads back to Connecting after a backoff
// delay. Cancellation is observed at the frame wait and the backoff wait,
// and Run returns the context's error.
func (s *Supervisor) Run(ctx context.Context) error {
	attempt := 0

	for {
		s.setStatus(Status{State: StateConnecting, Attempt: attempt})

		client := s.dial(s.clientConfig(), s.logger)
		err := client.Connect(ctx)

		var connectedAt time.Time
		if err != nil {
			s.logger.Warn("connect failed", "url", s.cfg.URL, "error", err)
		} else {
			connectedAt = time.Now()
			s.setClient(client)
			s.setStatus(Status{State: StateConnected})
			s.logger.Info("connected", "url", s.cfg.URL)

			err = s.serve(ctx, client)

			s.setClient(nil)
			client.Close()
		}

		if ctx.Err() != nil {
			s.setStatus(Status{State: StateDisconnected})
			return ctx.Err()
		}

		if err != nil {
			s.logger.Warn("connection dropped", "error", err)
		}

		// A stable connected period means the endpoint recovered; start
		// the backoff schedule over.
		if !connectedAt.IsZero() && time.Since(connectedAt) >= s.cfg.ReconnectResetAfter {
			attempt = 0
		}

		delay := backoffDelay(s.cfg.ReconnectBaseDelay, s.cfg.ReconnectMaxDelay, attempt, rand.Int64N)
		s.setStatus(Status{State: StateReconnecting, Attempt: attempt, NextDelay: delay})
		s.logger.Info("reconnecting", "attempt", attempt, "delay", delay)

		select {
		case <-ctx.Done():
			s.setStatus(Status{State: StateDisconnected})
			return ctx.Err()
		case <-time.After(delay):
		}

		attempt++
	}
}

// serve processes one connection until it drops or the context is cancelled.
// Returns nil only on cancellation.
func (s *Supervisor) serve(ctx context.Context, client Client) error {
	interval := s.cfg.PingInterval
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	// Zero when no ping is outstanding.
	var pingSentAt time.Time

	for {
		select {
		case <-ctx.Done():
			return nil

		case err := <-client.Errors():
			return err

		case <-ticker.C:
			if !pingSentAt.IsZero() {
				if time.Since(pingSentAt) >= s.cfg.PongTimeout {
					return ErrStaleConnection
				}
				continue
			}
			if err := client.Send(pingFrame); err != nil {
				return err
			}
			pingSentAt = time.Now()

		case msg, ok := <-client.Messages():
			if !ok {
				return ErrSessionClosed
			}

			frame, err := protocol.Decode(msg.Data)
			if err != nil {
				// Malformed frames are local noise, never a reason
				// to drop the connection.
				s.logger.Warn("skipping malformed frame", "error", err, "raw", truncate(msg.Data, 80))
				continue
			}

			switch frame.EngineType {
			case protocol.EnginePing:
				if err := client.Send(pongFrame); err != nil {
					return err
				}

			case protocol.EnginePong:
				pingSentAt = time.Time{}

			case protocol.EngineOpen:
				hs, err := protocol.ParseHandshake(frame)
				if err != nil {
					s.logger.Warn("unreadable handshake", "error", err)
					continue
				}
				s.logger.Info("session opened",
					"sid", hs.SID,
					"ping_interval_ms", hs.PingInterval,
					"ping_timeout_ms", hs.PingTimeout,
				)
				// The server dictates the keepalive schedule.
				if hs.PingInterval > 0 {
					interval = time.Duration(hs.PingInterval) * time.Millisecond
					ticker.Reset(interval)
				}

			case protocol.EngineClose:
				return ErrSessionClosed

			case protocol.FrameConnect:
				s.logger.Debug("namespace connected")

			case protocol.FrameEvent, protocol.FrameBinaryEvent:
				if frame.Attachments > 0 {
					// Binary attachments are never reassembled.
					s.logger.Warn("skipping frame with binary attachments",
						"event", frame.SocketEvent,
						"attachments", frame.Attachments,
					)
					continue
				}
				s.dispatch.Dispatch(ctx, frame)

			default:
				s.logger.Debug("ignoring frame", "type", frame.EngineType)
			}
		}
	}
}

func (s *Supervisor) clientConfig() ClientConfig {
	return ClientConfig{
		URL:              s.cfg.URL,
		Origin:           s.cfg.Origin,
		UserAgent:        s.cfg.UserAgent,
		Headers:          s.cfg.Headers,
		HandshakeTimeout: s.cfg.HandshakeTimeout,
		WriteTimeout:     s.cfg.WriteTimeout,
		BufferSize:       s.cfg.BufferSize,
	}
}

func (s *Supervisor) setStatus(status Status) {
	s.mu.Lock()
	s.status = status
	notify := s.notify
	s.mu.Unlock()

	if notify != nil {
		notify(status)
	}
}

func (s *Supervisor) setClient(client Client) {
	s.mu.Lock()
	s.client = client
	s.mu.Unlock()
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n] + "..."
}
