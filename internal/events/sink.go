package events

// Sink is the narrow interface session, engine, registry, and outbound
// code depend on, so tests can supply a stub without constructing a full
// Bus. *Bus satisfies it.
type Sink interface {
	Publish(Event)
}

// NopSink discards every event. Useful as a default when a caller doesn't
// care to observe the server's internals.
type NopSink struct{}

// Publish implements Sink.
func (NopSink) Publish(Event) {}
