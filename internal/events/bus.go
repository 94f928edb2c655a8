package events

import (
	"sync"
)

// Handler observes a single published event. Subscribe registers one;
// the bus never blocks publishers on a slow handler, so a handler that
// needs to do real work should queue it and return quickly.
type Handler func(Event)

// Bus fans every published event out to the server's observers: the
// monitor dashboard's log view, structured request logging, and
// anything else wired through Sink. There is exactly one Bus per
// Server, created in New and never shared across servers.
type Bus struct {
	mu       sync.RWMutex
	handlers map[uint64]Handler
	nextID   uint64

	ch       chan Event
	done     chan struct{}
	closeOne sync.Once
}

// NewBus starts a bus with its dispatch loop running in the background.
func NewBus() *Bus {
	b := &Bus{
		handlers: make(map[uint64]Handler),
		ch:       make(chan Event, 256),
		done:     make(chan struct{}),
	}
	go b.run()
	return b
}

func (b *Bus) run() {
	for {
		select {
		case event := <-b.ch:
			b.dispatch(event)
		case <-b.done:
			return
		}
	}
}

func (b *Bus) dispatch(event Event) {
	b.mu.RLock()
	handlers := make([]Handler, 0, len(b.handlers))
	for _, h := range b.handlers {
		handlers = append(handlers, h)
	}
	b.mu.RUnlock()

	for _, h := range handlers {
		h(event)
	}
}

// Subscribe registers h and returns a function that removes it. Calling
// the returned function more than once is a no-op.
func (b *Bus) Subscribe(h Handler) func() {
	b.mu.Lock()
	id := b.nextID
	b.nextID++
	b.handlers[id] = h
	b.mu.Unlock()

	var once sync.Once
	return func() {
		once.Do(func() {
			b.mu.Lock()
			delete(b.handlers, id)
			b.mu.Unlock()
		})
	}
}

// Publish hands event to the dispatch loop without blocking the caller.
// A subscriber slow enough to fill the buffer loses the event rather
// than stalling request handling; the session store, engine, and
// transport all publish from request-serving goroutines and must never
// wait on an observer.
func (b *Bus) Publish(event Event) {
	select {
	case b.ch <- event:
	default:
	}
}

// Close stops the dispatch loop. Safe to call more than once.
func (b *Bus) Close() {
	b.closeOne.Do(func() { close(b.done) })
}
