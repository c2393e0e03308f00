package connection

import (
	"errors"
	"time"
)

// Errors
var (
	ErrNotConnected    = errors.New("not connected")
	ErrStaleConnection = errors.New("connection stale (no pong)")
	ErrSessionClosed   = errors.New("server closed session")
	ErrAlreadyClosed   = errors.New("already closed")
)

// TimestampedMessage wraps a raw text frame with its receive timestamp.
type TimestampedMessage struct {
	Data       string    // Raw text frame from the WebSocket
	ReceivedAt time.Time // Local timestamp when ReadMessage() returned
}

// State is the supervisor's connection lifecycle state.
type State int

const (
	StateDisconnected State = iota
	StateConnecting
	StateConnected
	StateReconnecting
)

// String returns the state name.
func (s State) String() string {
	switch s {
	case StateDisconnected:
		return "disconnected"
	case StateConnecting:
		return "connecting"
	case StateConnected:
		return "connected"
	case StateReconnecting:
		return "reconnecting"
	default:
		return "unknown"
	}
}

// Status is a snapshot of the supervisor's state. Attempt and NextDelay are
// meaningful only while reconnecting.
type Status struct {
	State     State         `json:"state"`
	Attempt   int           `json:"attempt,omitempty"`
	NextDelay time.Duration `json:"next_delay,omitempty"`
}

// MarshalJSON renders the state as its name.
func (s State) MarshalJSON() ([]byte, error) {
	return []byte(`"` + s.String() + `"`), nil
}

// ClientConfig configures a single WebSocket connection.
type ClientConfig struct {
	URL              string            // Socket.IO WebSocket URL
	Origin           string            // Origin header (the game's web domain)
	UserAgent        string            // User-Agent header
	Headers          map[string]string // Extra headers (cookies, auth)
	HandshakeTimeout time.Duration     // WebSocket dial timeout
	WriteTimeout     time.Duration     // Write deadline for sends
	BufferSize       int               // Message channel buffer size
}

// DefaultClientConfig returns sensible defaults.
func DefaultClientConfig() ClientConfig {
	return ClientConfig{
		HandshakeTimeout: 10 * time.Second,
		WriteTimeout:     5 * time.Second,
		BufferSize:       1000,
	}
}

// SupervisorConfig configures the connection supervisor.
type SupervisorConfig struct {
	URL       string
	Origin    string
	UserAgent string
	Headers   map[string]string

	// Keepalive: an Engine.IO ping is sent every PingInterval; a ping
	// unanswered for PongTimeout marks the connection dropped. The server
	// handshake's pingInterval, when present, overrides PingInterval for
	// that connection.
	PingInterval time.Duration
	PongTimeout  time.Duration

	HandshakeTimeout time.Duration
	WriteTimeout     time.Duration
	BufferSize       int

	// Backoff: delay = min(ReconnectMaxDelay, ReconnectBaseDelay*2^attempt)
	// plus bounded jitter. The attempt counter resets after a connected
	// period lasting at least ReconnectResetAfter.
	ReconnectBaseDelay  time.Duration
	ReconnectMaxDelay   time.Duration
	ReconnectResetAfter time.Duration
}

// DefaultSupervisorConfig returns sensible defaults.
func DefaultSupervisorConfig() SupervisorConfig {
	return SupervisorConfig{
		PingInterval:        25 * time.Second,
		PongTimeout:         20 * time.Second,
		HandshakeTimeout:    10 * time.Second,
		WriteTimeout:        5 * time.Second,
		BufferSize:          1000,
		ReconnectBaseDelay:  1 * time.Second,
		ReconnectMaxDelay:   60 * time.Second,
		ReconnectResetAfter: 30 * time.Second,
	}
}
