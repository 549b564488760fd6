package audit

import (
	"context"
	"sync/atomic"
	"testing"
	"time"
)

type recordingSink struct {
	events chan Event
}

func (s *recordingSink) Emit(_ context.Context, event Event) {
	s.events <- event
}

type blockingSink struct {
	gate chan struct{}
}

func (s *blockingSink) Emit(context.Context, Event) {
	<-s.gate
}

type panicSink struct {
	calls atomic.Int64
}

func (s *panicSink) Emit(context.Context, Event) {
	s.calls.Add(1)
	panic("sink failure")
}

func TestNewDispatcherDisabledReturnsNil(t *testing.T) {
	d := NewDispatcher(Config{Enabled: false}, NoOpSink{})
	if d != nil {
		t.Fatal("expected nil dispatcher when disabled")
	}
	d.Emit(context.Background(), Event{EventType: "x"})
	d.Close()
	if d.Dropped() != 0 || d.Delivered() != 0 {
		t.Fatal("nil dispatcher must report zero counters")
	}
}

func TestDispatcherPreservesOrder(t *testing.T) {
	sink := &recordingSink{events: make(chan Event, 16)}
	d := NewDispatcher(Config{Enabled: true, BufferSize: 16}, sink)

	for _, typ := range []string{"a", "b", "c"} {
		d.Emit(context.Background(), Event{EventType: typ})
	}
	d.Close()

	for _, want := range []string{"a", "b", "c"} {
		select {
		case got := <-sink.events:
			if got.EventType != want {
				t.Fatalf("expected %q, got %q", want, got.EventType)
			}
		case <-time.After(time.Second):
			t.Fatalf("timed out waiting for %q", want)
		}
	}
	if d.Delivered() != 3 {
		t.Fatalf("expected 3 delivered, got %d", d.Delivered())
	}
}

func TestDispatcherDropIfFullCountsDrops(t *testing.T) {
	sink := &blockingSink{gate: make(chan struct{})}
	d := NewDispatcher(Config{Enabled: true, BufferSize: 1, DropIfFull: true}, sink)

	// First event occupies the worker, second fills the buffer; the rest drop.
	for i := 0; i < 10; i++ {
		d.Emit(context.Background(), Event{EventType: "e"})
		if i == 0 {
			time.Sleep(20 * time.Millisecond)
		}
	}
	if d.Dropped() == 0 {
		t.Fatal("expected dropped events under backpressure")
	}
	close(sink.gate)
	d.Close()
}

func TestDispatcherBlockingModeHonoursContext(t *testing.T) {
	sink := &blockingSink{gate: make(chan struct{})}
	d := NewDispatcher(Config{Enabled: true, BufferSize: 1}, sink)

	d.Emit(context.Background(), Event{EventType: "in-flight"})
	time.Sleep(20 * time.Millisecond)
	d.Emit(context.Background(), Event{EventType: "buffered"})

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()
	d.Emit(ctx, Event{EventType: "blocked"})
	if d.Dropped() != 1 {
		t.Fatalf("expected context-cancelled emit to count as dropped, got %d", d.Dropped())
	}

	close(sink.gate)
	d.Close()
}

func TestDispatcherSurvivesPanickingSink(t *testing.T) {
	sink := &panicSink{}
	d := NewDispatcher(Config{Enabled: true, BufferSize: 4}, sink)
	d.Emit(context.Background(), Event{EventType: "a"})
	d.Emit(context.Background(), Event{EventType: "b"})
	d.Close()

	if got := sink.calls.Load(); got != 2 {
		t.Fatalf("expected worker to keep delivering after panic, calls=%d", got)
	}
	if d.SinkPanics() != 2 {
		t.Fatalf("expected 2 recorded panics, got %d", d.SinkPanics())
	}
}

func TestDispatcherEmitAfterCloseIsNoop(t *testing.T) {
	sink := &recordingSink{events: make(chan Event, 1)}
	d := NewDispatcher(Config{Enabled: true, BufferSize: 1}, sink)
	d.Close()
	d.Close()
	d.Emit(context.Background(), Event{EventType: "late"})

	select {
	case ev := <-sink.events:
		t.Fatalf("unexpected event after close: %+v", ev)
	default:
	}
}
