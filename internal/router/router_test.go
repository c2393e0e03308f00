package router

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"testing"

	"github.com/avelis/rugsbot/internal/protocol"
)

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func eventFrame(name string) protocol.Frame {
	return protocol.Frame{
		EngineType:  protocol.FrameEvent,
		SocketEvent: name,
		Payload:     map[string]any{"price": 1.05},
	}
}

func TestRouter_DispatchInRegistrationOrder(t *testing.T) {
	r := New(testLogger())

	var calls []string
	for _, name := range []string{"first", "second", "third"} {
		name := name
		r.Register("gameStateUpdate", func(ctx context.Context, f protocol.Frame) error {
			calls = append(calls, name)
			return nil
		})
	}

	r.Dispatch(context.Background(), eventFrame("gameStateUpdate"))

	want := []string{"first", "second", "third"}
	if len(calls) != len(want) {
		t.Fatalf("calls = %v, want %v", calls, want)
	}
	for i := range want {
		if calls[i] != want[i] {
			t.Errorf("calls[%d] = %q, want %q", i, calls[i], want[i])
		}
	}
}

func TestRouter_HandlerFailureDoesNotStopDispatch(t *testing.T) {
	r := New(testLogger())

	var calls []string
	r.Register("gameStateUpdate", func(ctx context.Context, f protocol.Frame) error {
		calls = append(calls, "failing")
		return errors.New("handler exploded")
	})
	r.Register("gameStateUpdate", func(ctx context.Context, f protocol.Frame) error {
		calls = append(calls, "after")
		return nil
	})

	r.Dispatch(context.Background(), eventFrame("gameStateUpdate"))
	// The next frame still reaches handlers.
	r.Dispatch(context.Background(), eventFrame("gameStateUpdate"))

	if len(calls) != 4 {
		t.Fatalf("calls = %v, want 4 entries", calls)
	}

	stats := r.Stats()
	if stats.HandlerErrors != 2 {
		t.Errorf("HandlerErrors = %d, want 2", stats.HandlerErrors)
	}
	if stats.HandlersRun != 2 {
		t.Errorf("HandlersRun = %d, want 2", stats.HandlersRun)
	}
}

func TestRouter_HandlerPanicIsAbsorbed(t *testing.T) {
	r := New(testLogger())

	called := false
	r.Register("gameStateUpdate", func(ctx context.Context, f protocol.Frame) error {
		panic("boom")
	})
	r.Register("gameStateUpdate", func(ctx context.Context, f protocol.Frame) error {
		called = true
		return nil
	})

	r.Dispatch(context.Background(), eventFrame("gameStateUpdate"))

	if !called {
		t.Error("handler after a panicking handler did not run")
	}
	if got := r.Stats().HandlerErrors; got != 1 {
		t.Errorf("HandlerErrors = %d, want 1", got)
	}
}

func TestRouter_UnregisteredEventIgnored(t *testing.T) {
	r := New(testLogger())
	r.Register("betPlaced", func(ctx context.Context, f protocol.Frame) error {
		t.Error("handler for a different event was called")
		return nil
	})

	r.Dispatch(context.Background(), eventFrame("somethingElse"))

	stats := r.Stats()
	if stats.UnhandledEvents != 1 {
		t.Errorf("UnhandledEvents = %d, want 1", stats.UnhandledEvents)
	}
}

func TestRouter_NonEventFramesIgnored(t *testing.T) {
	r := New(testLogger())
	r.Register("gameStateUpdate", func(ctx context.Context, f protocol.Frame) error {
		t.Error("handler called for a non-event frame")
		return nil
	})

	r.Dispatch(context.Background(), protocol.Frame{EngineType: protocol.EnginePing})
	r.Dispatch(context.Background(), protocol.Frame{EngineType: protocol.FrameConnect})
}
