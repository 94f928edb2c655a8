package registry

import (
	"encoding/base64"
	"encoding/json"
)

// Annotations is the optional hint block attached to a content item (spec
// §4.4.3): who it's meant for, how important it is, and when it was
// produced.
type Annotations struct {
	Audience     []string `json:"audience,omitempty"`
	Priority     *float64 `json:"priority,omitempty"`
	LastModified string   `json:"lastModified,omitempty"`
}

// EmbeddedResource is the payload of a {type: "resource"} content item.
type EmbeddedResource struct {
	URI         string
	Name        string
	Title       string
	Description string
	MimeType    string
	Text        string
	Blob        []byte
	Annotations *Annotations
}

func (r EmbeddedResource) MarshalJSON() ([]byte, error) {
	m := map[string]any{"uri": r.URI}
	if r.Name != "" {
		m["name"] = r.Name
	}
	if r.Title != "" {
		m["title"] = r.Title
	}
	if r.Description != "" {
		m["description"] = r.Description
	}
	if r.MimeType != "" {
		m["mimeType"] = r.MimeType
	}
	if r.Blob != nil {
		m["blob"] = base64.StdEncoding.EncodeToString(r.Blob)
	} else {
		m["text"] = r.Text
	}
	if r.Annotations != nil {
		m["annotations"] = r.Annotations
	}
	return json.Marshal(m)
}

// ContentItem is one element of a tool or prompt response's content list.
// Only the fields relevant to Type are marshaled.
type ContentItem struct {
	Type string

	// type == "text"
	Text string

	// type == "image" | "audio"
	Data          string
	MimeType      string
	Transcription string

	// type == "resource"
	Resource *EmbeddedResource

	// type == "resource_link"
	URI         string
	Name        string
	Title       string
	Description string
	Size        *int64

	Annotations *Annotations
}

func (c ContentItem) MarshalJSON() ([]byte, error) {
	m := map[string]any{"type": c.Type}
	switch c.Type {
	case "text":
		m["text"] = c.Text
	case "image", "audio":
		m["data"] = c.Data
		m["mimeType"] = c.MimeType
		if c.Type == "audio" && c.Transcription != "" {
			m["transcription"] = c.Transcription
		}
	case "resource":
		m["resource"] = c.Resource
	case "resource_link":
		m["uri"] = c.URI
		m["name"] = c.Name
		if c.Title != "" {
			m["title"] = c.Title
		}
		if c.Description != "" {
			m["description"] = c.Description
		}
		if c.MimeType != "" {
			m["mimeType"] = c.MimeType
		}
		if c.Size != nil {
			m["size"] = *c.Size
		}
	}
	if c.Annotations != nil {
		m["annotations"] = c.Annotations
	}
	return json.Marshal(m)
}

// TextContent builds a {type: "text"} content item.
func TextContent(text string) ContentItem { return ContentItem{Type: "text", Text: text} }

// ImageContent builds a {type: "image"} content item. data is base64-encoded.
func ImageContent(data, mimeType string) ContentItem {
	return ContentItem{Type: "image", Data: data, MimeType: mimeType}
}

// AudioContent builds a {type: "audio"} content item. data is base64-encoded.
func AudioContent(data, mimeType string) ContentItem {
	return ContentItem{Type: "audio", Data: data, MimeType: mimeType}
}

// ResourceContentItem embeds a resource inline as a content item.
func ResourceContentItem(r EmbeddedResource) ContentItem {
	return ContentItem{Type: "resource", Resource: &r}
}

// ResourceLink builds a {type: "resource_link"} content item pointing at a
// resource by reference instead of embedding it.
func ResourceLink(uri, name string) ContentItem {
	return ContentItem{Type: "resource_link", URI: uri, Name: name}
}
