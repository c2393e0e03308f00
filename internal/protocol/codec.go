package protocol

import (
	"encoding/json"
	"fmt"
	"strconv"
	"strings"
)

// Decode parses a raw Engine.IO/Socket.IO text frame.
//
// The longest valid type prefix wins: a leading '4' is always a message
// packet and must be followed by a Socket.IO type digit, so "40" and "42"
// are two-digit codes rather than a bare message with a numeric body.
// Any input whose leading sequence does not match a known type code fails
// with an error wrapping ErrMalformedFrame.
func Decode(raw string) (Frame, error) {
	if raw == "" {
		return Frame{}, fmt.Errorf("empty input: %w", ErrMalformedFrame)
	}

	c := raw[0]
	if c < '0' || c > '6' {
		return Frame{}, fmt.Errorf("unknown engine.io type %q: %w", c, ErrMalformedFrame)
	}
	engine := int(c - '0')
	rest := raw[1:]

	if engine != EngineMessage {
		return decodeEngine(engine, rest)
	}

	if rest == "" {
		return Frame{}, fmt.Errorf("message packet without socket.io type: %w", ErrMalformedFrame)
	}
	s := rest[0]
	if s < '0' || s > '6' {
		return Frame{}, fmt.Errorf("unknown socket.io type %q: %w", s, ErrMalformedFrame)
	}
	frameType := EngineMessage*10 + int(s-'0')
	body := rest[1:]

	if frameType == FrameEvent || frameType == FrameBinaryEvent {
		return decodeEvent(frameType, body)
	}

	f := Frame{EngineType: frameType}
	if body == "" {
		return f, nil
	}
	if err := json.Unmarshal([]byte(body), &f.Payload); err != nil {
		return Frame{}, fmt.Errorf("frame %d body: %v: %w", frameType, err, ErrMalformedFrame)
	}
	return f, nil
}

// decodeEngine parses the body of a bare Engine.IO packet.
func decodeEngine(engine int, body string) (Frame, error) {
	f := Frame{EngineType: engine}

	switch engine {
	case EngineOpen:
		if body == "" {
			return Frame{}, fmt.Errorf("open frame without handshake: %w", ErrMalformedFrame)
		}
		if err := json.Unmarshal([]byte(body), &f.Payload); err != nil {
			return Frame{}, fmt.Errorf("open frame body: %v: %w", err, ErrMalformedFrame)
		}
	default:
		// Ping/pong may carry a probe string during transport upgrade.
		if body != "" {
			f.Payload = body
		}
	}

	return f, nil
}

// decodeEvent parses the body of an event frame: an optional "N-" binary
// attachment count followed by a JSON array of [eventName, args...].
func decodeEvent(frameType int, body string) (Frame, error) {
	f := Frame{EngineType: frameType}

	i := 0
	for i < len(body) && body[i] >= '0' && body[i] <= '9' {
		i++
	}
	if i > 0 && i < len(body) && body[i] == '-' {
		n, err := strconv.Atoi(body[:i])
		if err != nil {
			return Frame{}, fmt.Errorf("attachment count %q: %w", body[:i], ErrMalformedFrame)
		}
		f.Attachments = n
		body = body[i+1:]
	}

	var args []json.RawMessage
	if err := json.Unmarshal([]byte(body), &args); err != nil {
		return Frame{}, fmt.Errorf("event body: %v: %w", err, ErrMalformedFrame)
	}
	if len(args) == 0 {
		return Frame{}, fmt.Errorf("event array is empty: %w", ErrMalformedFrame)
	}
	if err := json.Unmarshal(args[0], &f.SocketEvent); err != nil {
		return Frame{}, fmt.Errorf("event name is not a string: %w", ErrMalformedFrame)
	}

	switch len(args) {
	case 1:
		// No arguments.
	case 2:
		if err := json.Unmarshal(args[1], &f.Payload); err != nil {
			return Frame{}, fmt.Errorf("event argument: %v: %w", err, ErrMalformedFrame)
		}
	default:
		vals := make([]any, 0, len(args)-1)
		for _, arg := range args[1:] {
			var v any
			if err := json.Unmarshal(arg, &v); err != nil {
				return Frame{}, fmt.Errorf("event argument: %v: %w", err, ErrMalformedFrame)
			}
			vals = append(vals, v)
		}
		f.Payload = vals
	}

	return f, nil
}

// Encode renders a frame back to its wire form. It is the inverse of Decode:
// Decode(Encode(f)) == f for any well-formed frame without binary
// attachments. A []any payload on an event frame encodes as multiple
// event arguments.
func Encode(f Frame) (string, error) {
	var b strings.Builder

	switch {
	case f.EngineType >= EngineOpen && f.EngineType <= EngineNoop && f.EngineType != EngineMessage:
		b.WriteByte(byte('0' + f.EngineType))
		switch p := f.Payload.(type) {
		case nil:
			if f.EngineType == EngineOpen {
				return "", fmt.Errorf("open frame requires a handshake payload")
			}
		case string:
			if f.EngineType == EngineOpen {
				return "", fmt.Errorf("open frame payload must be a JSON value")
			}
			b.WriteString(p)
		default:
			data, err := json.Marshal(p)
			if err != nil {
				return "", fmt.Errorf("marshal frame %d payload: %w", f.EngineType, err)
			}
			b.Write(data)
		}

	case f.EngineType >= FrameConnect && f.EngineType <= FrameBinaryAck:
		b.WriteString(strconv.Itoa(f.EngineType))
		if f.IsEvent() {
			if f.SocketEvent == "" {
				return "", fmt.Errorf("event frame requires an event name")
			}
			if f.Attachments > 0 {
				b.WriteString(strconv.Itoa(f.Attachments))
				b.WriteByte('-')
			}
			args := []any{f.SocketEvent}
			switch p := f.Payload.(type) {
			case nil:
			case []any:
				args = append(args, p...)
			default:
				args = append(args, p)
			}
			data, err := json.Marshal(args)
			if err != nil {
				return "", fmt.Errorf("marshal event %q: %w", f.SocketEvent, err)
			}
			b.Write(data)
		} else if f.Payload != nil {
			data, err := json.Marshal(f.Payload)
			if err != nil {
				return "", fmt.Errorf("marshal frame %d payload: %w", f.EngineType, err)
			}
			b.Write(data)
		}

	default:
		return "", fmt.Errorf("unknown frame type %d", f.EngineType)
	}

	return b.String(), nil
}

// EncodeEvent renders an outbound event frame ("42[name,payload]").
func EncodeEvent(event string, payload any) (string, error) {
	return Encode(Frame{
		EngineType:  FrameEvent,
		SocketEvent: event,
		Payload:     payload,
	})
}
