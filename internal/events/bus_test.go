package events

import (
	"sync"
	"testing"
	"time"
)

func TestBusPublishSubscribe(t *testing.T) {
	bus := NewBus()
	defer bus.Close()

	received := make(chan Event, 1)
	bus.Subscribe(func(e Event) { received <- e })

	bus.Publish(NewSessionCreatedEvent("s1"))

	select {
	case e := <-received:
		if e.Type() != EventSessionCreated {
			t.Errorf("Type() = %v, want EventSessionCreated", e.Type())
		}
		if e.SessionID() != "s1" {
			t.Errorf("SessionID() = %q, want s1", e.SessionID())
		}
	case <-time.After(time.Second):
		t.Fatal("timed out waiting for event")
	}
}

func TestBusUnsubscribeStopsDelivery(t *testing.T) {
	bus := NewBus()
	defer bus.Close()

	var mu sync.Mutex
	count := 0
	unsubscribe := bus.Subscribe(func(Event) {
		mu.Lock()
		count++
		mu.Unlock()
	})

	bus.Publish(NewSessionCreatedEvent("s1"))
	time.Sleep(20 * time.Millisecond)
	unsubscribe()
	bus.Publish(NewSessionCreatedEvent("s2"))
	time.Sleep(20 * time.Millisecond)

	mu.Lock()
	defer mu.Unlock()
	if count != 1 {
		t.Errorf("count = %d, want 1", count)
	}
}

func TestNopSinkDiscardsEvents(t *testing.T) {
	var sink Sink = NopSink{}
	sink.Publish(NewErrorEvent("", "protocol", nil, "ignored"))
}
