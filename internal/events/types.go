// Package events is the server-wide event bus. Sessions, the protocol
// engine, and the outbound-request tracker publish structured events here
// instead of writing through a global logger singleton; cmd/mcpcored's
// monitor subcommand is the only built-in consumer.
package events

import "time"

// EventType identifies the kind of event.
type EventType int

const (
	EventSessionCreated EventType = iota
	EventSessionDestroyed
	EventLogMessage
	EventListChanged
	EventResourceUpdated
	EventOutboundTimeout
	EventOutboundResolved
	EventConfigReloaded
	EventError
)

func (e EventType) String() string {
	switch e {
	case EventSessionCreated:
		return "session_created"
	case EventSessionDestroyed:
		return "session_destroyed"
	case EventLogMessage:
		return "log_message"
	case EventListChanged:
		return "list_changed"
	case EventResourceUpdated:
		return "resource_updated"
	case EventOutboundTimeout:
		return "outbound_timeout"
	case EventOutboundResolved:
		return "outbound_resolved"
	case EventConfigReloaded:
		return "config_reloaded"
	case EventError:
		return "error"
	default:
		return "unknown"
	}
}

// Event is the base interface for everything the bus carries.
type Event interface {
	Type() EventType
	SessionID() string
	Timestamp() time.Time
}

type baseEvent struct {
	sessionID string
	timestamp time.Time
}

func (e baseEvent) SessionID() string    { return e.sessionID }
func (e baseEvent) Timestamp() time.Time { return e.timestamp }

// SessionCreatedEvent fires when the session store creates a new session.
type SessionCreatedEvent struct{ baseEvent }

func (e SessionCreatedEvent) Type() EventType { return EventSessionCreated }

// NewSessionCreatedEvent returns a SessionCreatedEvent for sessionID.
func NewSessionCreatedEvent(sessionID string) SessionCreatedEvent {
	return SessionCreatedEvent{baseEvent{sessionID, time.Now()}}
}

// SessionDestroyedEvent fires on idle expiry, transport termination, or an
// explicit Store.Destroy.
type SessionDestroyedEvent struct {
	baseEvent
	Reason string
}

func (e SessionDestroyedEvent) Type() EventType { return EventSessionDestroyed }

// NewSessionDestroyedEvent returns a SessionDestroyedEvent for sessionID.
func NewSessionDestroyedEvent(sessionID, reason string) SessionDestroyedEvent {
	return SessionDestroyedEvent{baseEvent{sessionID, time.Now()}, reason}
}

// LogMessageEvent mirrors an outbound notifications/log/message payload
// and also serves as this module's internal diagnostic log line.
type LogMessageEvent struct {
	baseEvent
	Level   string
	Message string
	Data    any
}

func (e LogMessageEvent) Type() EventType { return EventLogMessage }

// NewLogMessageEvent returns a LogMessageEvent.
func NewLogMessageEvent(sessionID, level, message string, data any) LogMessageEvent {
	return LogMessageEvent{baseEvent{sessionID, time.Now()}, level, message, data}
}

// ListChangedEvent fires when the registry's tool/prompt/resource table
// changes after a dynamic Frame.RegisterTool-style addition, corresponding
// to the notifications/*/list_changed family.
type ListChangedEvent struct {
	baseEvent
	Kind string // "tools" | "prompts" | "resources"
}

func (e ListChangedEvent) Type() EventType { return EventListChanged }

// NewListChangedEvent returns a ListChangedEvent.
func NewListChangedEvent(sessionID, kind string) ListChangedEvent {
	return ListChangedEvent{baseEvent{sessionID, time.Now()}, kind}
}

// ResourceUpdatedEvent corresponds to notifications/resources/updated.
type ResourceUpdatedEvent struct {
	baseEvent
	URI string
}

func (e ResourceUpdatedEvent) Type() EventType { return EventResourceUpdated }

// NewResourceUpdatedEvent returns a ResourceUpdatedEvent.
func NewResourceUpdatedEvent(sessionID, uri string) ResourceUpdatedEvent {
	return ResourceUpdatedEvent{baseEvent{sessionID, time.Now()}, uri}
}

// OutboundTimeoutEvent fires when the outbound-request tracker's timer
// fires before a matching response arrived.
type OutboundTimeoutEvent struct {
	baseEvent
	RequestID string
	Method    string
}

func (e OutboundTimeoutEvent) Type() EventType { return EventOutboundTimeout }

// NewOutboundTimeoutEvent returns an OutboundTimeoutEvent.
func NewOutboundTimeoutEvent(sessionID, requestID, method string) OutboundTimeoutEvent {
	return OutboundTimeoutEvent{baseEvent{sessionID, time.Now()}, requestID, method}
}

// OutboundResolvedEvent fires when a server-initiated request's response
// or error arrives before the timer fires.
type OutboundResolvedEvent struct {
	baseEvent
	RequestID string
	Method    string
	IsError   bool
}

func (e OutboundResolvedEvent) Type() EventType { return EventOutboundResolved }

// NewOutboundResolvedEvent returns an OutboundResolvedEvent.
func NewOutboundResolvedEvent(sessionID, requestID, method string, isError bool) OutboundResolvedEvent {
	return OutboundResolvedEvent{baseEvent{sessionID, time.Now()}, requestID, method, isError}
}

// ConfigReloadedEvent fires when Engine.Reconfigure applies a new
// configuration, such as one internal/config.Watch parsed from a changed
// file.
type ConfigReloadedEvent struct{ baseEvent }

func (e ConfigReloadedEvent) Type() EventType { return EventConfigReloaded }

// NewConfigReloadedEvent returns a ConfigReloadedEvent.
func NewConfigReloadedEvent() ConfigReloadedEvent {
	return ConfigReloadedEvent{baseEvent{"", time.Now()}}
}

// ErrorEvent carries an error kind tag for diagnostics.
type ErrorEvent struct {
	baseEvent
	Kind    string
	Err     error
	Message string
}

func (e ErrorEvent) Type() EventType { return EventError }

// NewErrorEvent returns an ErrorEvent.
func NewErrorEvent(sessionID, kind string, err error, message string) ErrorEvent {
	return ErrorEvent{baseEvent{sessionID, time.Now()}, kind, err, message}
}
