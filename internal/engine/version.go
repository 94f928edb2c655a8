package engine

import "github.com/forgemcp/mcpcore/internal/config"

// negotiateVersion picks the client's protocolVersion if the server
// supports it; otherwise the server's newest.
func negotiateVersion(supported []string, clientVersion string) string {
	for _, v := range supported {
		if v == clientVersion {
			return clientVersion
		}
	}
	if len(supported) == 0 {
		return clientVersion
	}
	return supported[0]
}

func capabilitiesWire(caps config.ServerCapabilities) map[string]any {
	out := map[string]any{}
	if caps.Tools != nil {
		out["tools"] = capabilityWire(*caps.Tools)
	}
	if caps.Prompts != nil {
		out["prompts"] = capabilityWire(*caps.Prompts)
	}
	if caps.Resources != nil {
		out["resources"] = capabilityWire(*caps.Resources)
	}
	if caps.Logging != nil {
		out["logging"] = capabilityWire(*caps.Logging)
	}
	if caps.Completion != nil {
		out["completion"] = capabilityWire(*caps.Completion)
	}
	return out
}

func capabilityWire(c config.Capability) map[string]any {
	out := map[string]any{}
	if c.ListChanged {
		out["listChanged"] = true
	}
	if c.Subscribe {
		out["subscribe"] = true
	}
	return out
}
