package events

import (
	"sync"
	"testing"
	"time"
)

// collector gathers events delivered on subscriber goroutines.
type collector struct {
	mu     sync.Mutex
	events []Event
	done   chan struct{}
	want   int
}

func newCollector(want int) *collector {
	return &collector{done: make(chan struct{}), want: want}
}

func (c *collector) handle(e Event) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.events = append(c.events, e)
	if len(c.events) == c.want {
		close(c.done)
	}
}

func (c *collector) wait(t *testing.T) []Event {
	t.Helper()
	select {
	case <-c.done:
	case <-time.After(2 * time.Second):
		t.Fatal("timed out waiting for events")
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	return append([]Event(nil), c.events...)
}

func TestSubscribeByType(t *testing.T) {
	bus := NewEventBus()
	collected := newCollector(1)
	bus.Subscribe(EventSignalGenerated, collected.handle)

	bus.Publish(Event{Type: EventSignalExecuted, Data: nil})
	bus.PublishSignalGenerated("BTCUSDT", "BUY", 0.8, 50000)

	events := collected.wait(t)
	if len(events) != 1 {
		t.Fatalf("got %d events, want 1", len(events))
	}

	event := events[0]
	if event.Type != EventSignalGenerated {
		t.Errorf("type = %s, want SIGNAL_GENERATED", event.Type)
	}
	if event.Data["symbol"] != "BTCUSDT" || event.Data["signal_type"] != "BUY" {
		t.Errorf("data = %v", event.Data)
	}
	if event.Timestamp.IsZero() {
		t.Error("publish should stamp the event time")
	}
}

func TestSubscribeAll(t *testing.T) {
	bus := NewEventBus()
	collected := newCollector(3)
	bus.SubscribeAll(collected.handle)

	bus.PublishSignalGenerated("ETHUSDT", "SELL", 0.7, 3900)
	bus.PublishSignalRejected("ETHUSDT", "SELL", "portfolio heat 0.25 exceeds limit 0.20")
	bus.PublishError("scanner", "fetch failed", nil)

	events := collected.wait(t)

	types := make(map[EventType]bool, len(events))
	for _, e := range events {
		types[e.Type] = true
	}
	for _, want := range []EventType{EventSignalGenerated, EventSignalRejected, EventError} {
		if !types[want] {
			t.Errorf("missing event type %s", want)
		}
	}
}

func TestPublishSignalExecutedData(t *testing.T) {
	bus := NewEventBus()
	collected := newCollector(1)
	bus.Subscribe(EventSignalExecuted, collected.handle)

	bus.PublishSignalExecuted(42, "BNBUSDT", 710.5, 0.25)

	event := collected.wait(t)[0]
	if event.Data["signal_id"] != int64(42) {
		t.Errorf("signal_id = %v, want 42", event.Data["signal_id"])
	}
	if event.Data["price"] != 710.5 || event.Data["quantity"] != 0.25 {
		t.Errorf("data = %v", event.Data)
	}
}

func TestPublishErrorIncludesMessage(t *testing.T) {
	bus := NewEventBus()
	collected := newCollector(1)
	bus.Subscribe(EventError, collected.handle)

	bus.PublishError("signal_bot", "analysis failed for BTCUSDT", errTest)

	event := collected.wait(t)[0]
	if event.Data["source"] != "signal_bot" {
		t.Errorf("source = %v", event.Data["source"])
	}
	if event.Data["error"] != "boom" {
		t.Errorf("error = %v, want boom", event.Data["error"])
	}
}

type testError string

func (e testError) Error() string { return string(e) }

var errTest = testError("boom")
