package protocol

import (
	"errors"
	"reflect"
	"testing"
)

func TestDecode_EnginePackets(t *testing.T) {
	tests := []struct {
		name string
		raw  string
		want Frame
	}{
		{"ping", "2", Frame{EngineType: EnginePing}},
		{"pong", "3", Frame{EngineType: EnginePong}},
		{"ping_probe", "2probe", Frame{EngineType: EnginePing, Payload: "probe"}},
		{"close", "1", Frame{EngineType: EngineClose}},
		{"noop", "6", Frame{EngineType: EngineNoop}},
		{
			"open",
			`0{"sid":"abc123","pingInterval":25000}`,
			Frame{EngineType: EngineOpen, Payload: map[string]any{
				"sid":          "abc123",
				"pingInterval": float64(25000),
			}},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := Decode(tt.raw)
			if err != nil {
				t.Fatalf("Decode(%q) failed: %v", tt.raw, err)
			}
			if !reflect.DeepEqual(got, tt.want) {
				t.Errorf("Decode(%q) = %+v, want %+v", tt.raw, got, tt.want)
			}
		})
	}
}

func TestDecode_SocketPackets(t *testing.T) {
	tests := []struct {
		name string
		raw  string
		want Frame
	}{
		{"namespace_connect", "40", Frame{EngineType: FrameConnect}},
		{
			"namespace_connect_sid",
			`40{"sid":"xyz"}`,
			Frame{EngineType: FrameConnect, Payload: map[string]any{"sid": "xyz"}},
		},
		{"disconnect", "41", Frame{EngineType: FrameDisconnect}},
		{
			"event_single_arg",
			`42["gameStateUpdate",{"price":1.05}]`,
			Frame{
				EngineType:  FrameEvent,
				SocketEvent: "gameStateUpdate",
				Payload:     map[string]any{"price": 1.05},
			},
		},
		{
			"event_no_args",
			`42["roundEnded"]`,
			Frame{EngineType: FrameEvent, SocketEvent: "roundEnded"},
		},
		{
			"event_multiple_args",
			`42["betPlaced",{"amount":0.01},"ack"]`,
			Frame{
				EngineType:  FrameEvent,
				SocketEvent: "betPlaced",
				Payload:     []any{map[string]any{"amount": 0.01}, "ack"},
			},
		},
		{
			"binary_event_with_attachments",
			`452-["snapshot",{"_placeholder":true,"num":0}]`,
			Frame{
				EngineType:  FrameBinaryEvent,
				SocketEvent: "snapshot",
				Payload:     map[string]any{"_placeholder": true, "num": float64(0)},
				Attachments: 2,
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := Decode(tt.raw)
			if err != nil {
				t.Fatalf("Decode(%q) failed: %v", tt.raw, err)
			}
			if !reflect.DeepEqual(got, tt.want) {
				t.Errorf("Decode(%q) = %+v, want %+v", tt.raw, got, tt.want)
			}
		})
	}
}

func TestDecode_Malformed(t *testing.T) {
	tests := []struct {
		name string
		raw  string
	}{
		{"empty", ""},
		{"unknown_type", "9hello"},
		{"not_a_digit", "hello"},
		{"bare_message", "4"},
		{"message_without_socket_type", "4hello"},
		{"event_not_json", "42notjson"},
		{"event_not_array", `42{"foo":"bar"}`},
		{"event_empty_array", "42[]"},
		{"event_name_not_string", "42[42]"},
		{"open_without_handshake", "0"},
		{"open_invalid_json", "0{broken"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Decode(tt.raw)
			if err == nil {
				t.Fatalf("Decode(%q) succeeded, want error", tt.raw)
			}
			if !errors.Is(err, ErrMalformedFrame) {
				t.Errorf("Decode(%q) error = %v, want ErrMalformedFrame", tt.raw, err)
			}
		})
	}
}

func TestCodec_RoundTrip(t *testing.T) {
	frames := []Frame{
		{EngineType: EnginePing},
		{EngineType: EnginePong},
		{EngineType: EnginePing, Payload: "probe"},
		{EngineType: EngineOpen, Payload: map[string]any{
			"sid":          "s1",
			"pingInterval": float64(25000),
			"pingTimeout":  float64(20000),
		}},
		{EngineType: FrameConnect},
		{EngineType: FrameEvent, SocketEvent: "gameStateUpdate", Payload: map[string]any{
			"price":  1.05,
			"active": true,
		}},
		{EngineType: FrameEvent, SocketEvent: "roundEnded"},
		{EngineType: FrameEvent, SocketEvent: "betPlaced", Payload: []any{
			map[string]any{"amount": 0.01},
			"ack",
		}},
	}

	for _, f := range frames {
		raw, err := Encode(f)
		if err != nil {
			t.Fatalf("Encode(%+v) failed: %v", f, err)
		}
		got, err := Decode(raw)
		if err != nil {
			t.Fatalf("Decode(%q) failed: %v", raw, err)
		}
		if !reflect.DeepEqual(got, f) {
			t.Errorf("round trip %+v -> %q -> %+v", f, raw, got)
		}
	}
}

func TestEncode_Rejects(t *testing.T) {
	tests := []struct {
		name  string
		frame Frame
	}{
		{"unknown_type", Frame{EngineType: 99}},
		{"bare_message", Frame{EngineType: EngineMessage}},
		{"event_without_name", Frame{EngineType: FrameEvent}},
		{"open_without_handshake", Frame{EngineType: EngineOpen}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := Encode(tt.frame); err == nil {
				t.Errorf("Encode(%+v) succeeded, want error", tt.frame)
			}
		})
	}
}

func TestEncodeEvent(t *testing.T) {
	raw, err := EncodeEvent("placeBet", map[string]any{"amount": 0.01})
	if err != nil {
		t.Fatalf("EncodeEvent failed: %v", err)
	}
	if raw != `42["placeBet",{"amount":0.01}]` {
		t.Errorf("EncodeEvent = %q", raw)
	}
}

func TestParseHandshake(t *testing.T) {
	f, err := Decode(`0{"sid":"abc123","pingInterval":25000,"pingTimeout":20000}`)
	if err != nil {
		t.Fatalf("Decode failed: %v", err)
	}

	hs, err := ParseHandshake(f)
	if err != nil {
		t.Fatalf("ParseHandshake failed: %v", err)
	}
	if hs.SID != "abc123" {
		t.Errorf("SID = %q, want abc123", hs.SID)
	}
	if hs.PingInterval != 25000 {
		t.Errorf("PingInterval = %d, want 25000", hs.PingInterval)
	}
	if hs.PingTimeout != 20000 {
		t.Errorf("PingTimeout = %d, want 20000", hs.PingTimeout)
	}

	if _, err := ParseHandshake(Frame{EngineType: EnginePing}); err == nil {
		t.Error("ParseHandshake accepted a ping frame")
	}
}
