package registry

import (
	"encoding/json"
	"sort"
)

// derivePromptArguments reads an "object" JSON-Schema's top-level
// properties into the {name, description, required} list clients see in
// prompts/list, derived straight from the schema rather than hand-kept
// separately.
func derivePromptArguments(schema json.RawMessage) ([]PromptArgument, error) {
	var doc struct {
		Properties map[string]struct {
			Description string `json:"description"`
		} `json:"properties"`
		Required []string `json:"required"`
	}
	if err := json.Unmarshal(schema, &doc); err != nil {
		return nil, err
	}

	required := make(map[string]bool, len(doc.Required))
	for _, name := range doc.Required {
		required[name] = true
	}

	names := make([]string, 0, len(doc.Properties))
	for name := range doc.Properties {
		names = append(names, name)
	}
	sort.Strings(names)

	args := make([]PromptArgument, 0, len(names))
	for _, name := range names {
		args = append(args, PromptArgument{
			Name:        name,
			Description: doc.Properties[name].Description,
			Required:    required[name],
		})
	}
	return args, nil
}
