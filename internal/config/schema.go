// Package config loads and hot-reloads the server's configuration surface:
// protocol versions, server identity, advertised capabilities, idle and
// outbound timeouts, and the list-pagination limit.
package config

import "time"

// SchemaVersion is the current config schema version.
const SchemaVersion = 1

// Default values.
const (
	DefaultSessionIdleTimeoutMS           = 1_800_000
	DefaultOutboundRequestTimeoutMS       = 30_000
	DefaultProtocolVersion                = "2025-03-26"
	LegacyProtocolVersion                 = "2024-11-05"
	BatchingMinProtocolVersion            = "2025-03-26"
)

// Capability is the shape every advertised server capability sub-map takes:
// "listChanged" for tools/prompts/resources, plus "subscribe" for resources.
type Capability struct {
	ListChanged bool `json:"listChanged,omitempty"`
	Subscribe   bool `json:"subscribe,omitempty"`
}

// ServerCapabilities mirrors the optional sub-maps a server may advertise
// during initialize. A nil field means the capability is not advertised.
// Only Logging and Completion gate methods at dispatch time (a nil field
// makes logging/setLevel or completion/complete answer method_not_found);
// tools/*, prompts/* and resources/* are served whether or not their
// capability is advertised.
type ServerCapabilities struct {
	Tools      *Capability `json:"tools,omitempty"`
	Prompts    *Capability `json:"prompts,omitempty"`
	Resources  *Capability `json:"resources,omitempty"`
	Logging    *Capability `json:"logging,omitempty"`
	Completion *Capability `json:"completion,omitempty"`
}

// HasTools reports whether the tools capability is advertised.
func (c ServerCapabilities) HasTools() bool { return c.Tools != nil }

// HasPrompts reports whether the prompts capability is advertised.
func (c ServerCapabilities) HasPrompts() bool { return c.Prompts != nil }

// HasResources reports whether the resources capability is advertised.
func (c ServerCapabilities) HasResources() bool { return c.Resources != nil }

// HasLogging reports whether logging/setLevel is allowed.
func (c ServerCapabilities) HasLogging() bool { return c.Logging != nil }

// HasCompletion reports whether completion/complete is allowed.
func (c ServerCapabilities) HasCompletion() bool { return c.Completion != nil }

// ServerInfo identifies this server implementation in the initialize reply.
type ServerInfo struct {
	Name    string `json:"name"`
	Version string `json:"version"`
}

// Config is the root configuration structure.
type Config struct {
	SchemaVersion int `json:"schemaVersion"`

	ServerInfo                ServerInfo         `json:"serverInfo"`
	SupportedProtocolVersions []string           `json:"supportedProtocolVersions"`
	Capabilities              ServerCapabilities `json:"capabilities"`

	SessionIdleTimeoutMS            int64 `json:"sessionIdleTimeoutMs"`
	OutboundRequestDefaultTimeoutMS int64 `json:"outboundRequestDefaultTimeoutMs"`

	// ListPaginationLimit is nil for unbounded.
	ListPaginationLimit *int `json:"listPaginationLimit,omitempty"`

	LastModified time.Time `json:"lastModified"`
}

// NewConfig returns a configuration with this package's documented defaults.
func NewConfig() *Config {
	return &Config{
		SchemaVersion: SchemaVersion,
		ServerInfo: ServerInfo{
			Name:    "mcpcore",
			Version: "0.1.0",
		},
		SupportedProtocolVersions:       []string{DefaultProtocolVersion, LegacyProtocolVersion},
		Capabilities:                    ServerCapabilities{Tools: &Capability{}},
		SessionIdleTimeoutMS:            DefaultSessionIdleTimeoutMS,
		OutboundRequestDefaultTimeoutMS: DefaultOutboundRequestTimeoutMS,
		LastModified:                    time.Now(),
	}
}

// SessionIdleTimeout returns the idle timeout as a time.Duration.
func (c *Config) SessionIdleTimeout() time.Duration {
	return time.Duration(c.SessionIdleTimeoutMS) * time.Millisecond
}

// OutboundRequestDefaultTimeout returns the outbound default timeout as a time.Duration.
func (c *Config) OutboundRequestDefaultTimeout() time.Duration {
	return time.Duration(c.OutboundRequestDefaultTimeoutMS) * time.Millisecond
}

// SupportsBatching reports whether the given negotiated protocol version is
// new enough to allow batch requests.
func SupportsBatching(version string) bool {
	return version >= BatchingMinProtocolVersion
}
