package protocol

import (
	"encoding/json"
	"errors"
	"fmt"
)

// Errors
var (
	ErrMalformedFrame = errors.New("malformed frame")
)

// Engine.IO packet types (single leading digit).
const (
	EngineOpen    = 0
	EngineClose   = 1
	EnginePing    = 2
	EnginePong    = 3
	EngineMessage = 4
	EngineUpgrade = 5
	EngineNoop    = 6
)

// Socket.IO packet types, encoded as the second digit of a message packet.
// An event frame on the wire is EngineMessage*10 + SocketEvent = 42.
const (
	SocketConnect      = 0
	SocketDisconnect   = 1
	SocketEvent        = 2
	SocketAck          = 3
	SocketConnectError = 4
	SocketBinaryEvent  = 5
	SocketBinaryAck    = 6
)

// Combined frame type codes as they appear on the wire.
const (
	FrameConnect      = EngineMessage*10 + SocketConnect      // 40
	FrameDisconnect   = EngineMessage*10 + SocketDisconnect   // 41
	FrameEvent        = EngineMessage*10 + SocketEvent        // 42
	FrameAck          = EngineMessage*10 + SocketAck          // 43
	FrameConnectError = EngineMessage*10 + SocketConnectError // 44
	FrameBinaryEvent  = EngineMessage*10 + SocketBinaryEvent  // 45
	FrameBinaryAck    = EngineMessage*10 + SocketBinaryAck    // 46
)

// Frame is one decoded unit of the wire protocol, prior to application-level
// interpretation.
type Frame struct {
	// EngineType is the numeric type code as it appears on the wire:
	// 0, 1, 2, 3, 5, 6 for bare Engine.IO packets, 40-46 for Socket.IO
	// packets carried inside a message packet.
	EngineType int

	// SocketEvent is the event name. Set only for event frames (42, 45).
	SocketEvent string

	// Payload is the decoded JSON value carried by the frame: the handshake
	// object for open frames, the event argument for event frames ([]any
	// when the event carried more than one argument), nil when absent.
	Payload any

	// Attachments is the declared binary attachment placeholder count.
	// Attachments are tracked but never buffered or reassembled.
	Attachments int
}

// IsEvent reports whether the frame is a Socket.IO event frame.
func (f Frame) IsEvent() bool {
	return f.EngineType == FrameEvent || f.EngineType == FrameBinaryEvent
}

// Handshake is the session configuration carried by the Engine.IO open frame.
type Handshake struct {
	SID          string `json:"sid"`
	PingInterval int    `json:"pingInterval"` // milliseconds
	PingTimeout  int    `json:"pingTimeout"`  // milliseconds
}

// ParseHandshake extracts the session configuration from an open frame.
func ParseHandshake(f Frame) (Handshake, error) {
	if f.EngineType != EngineOpen {
		return Handshake{}, fmt.Errorf("frame type %d is not an open frame", f.EngineType)
	}
	var hs Handshake
	if err := UnmarshalPayload(f, &hs); err != nil {
		return Handshake{}, fmt.Errorf("parse handshake: %w", err)
	}
	return hs, nil
}

// UnmarshalPayload re-marshals the frame payload into a typed value.
func UnmarshalPayload(f Frame, v any) error {
	if f.Payload == nil {
		return fmt.Errorf("frame %d has no payload", f.EngineType)
	}
	data, err := json.Marshal(f.Payload)
	if err != nil {
		return fmt.Errorf("marshal payload: %w", err)
	}
	if err := json.Unmarshal(data, v); err != nil {
		return fmt.Errorf("unmarshal payload: %w", err)
	}
	return nil
}
