package registry

import (
	"encoding/json"
	"strings"

	"github.com/santhosh-tekuri/jsonschema/v5"
)

// ValidationError is one leaf failure from a Validator, shaped to sit
// directly inside an invalid_params error's data.errors list.
type ValidationError struct {
	Path    string `json:"path"`
	Message string `json:"message"`
}

// Validator checks arguments against a schema, returning every failure
// found (nil or empty means valid). Hosts may supply their own in place of
// the jsonschema/v5-backed default CompileValidator produces.
type Validator func(data json.RawMessage) []ValidationError

// CompileValidator builds a Validator from a JSON-Schema document using
// github.com/santhosh-tekuri/jsonschema/v5. RegisterTool and RegisterPrompt
// call this automatically when the caller does not supply a custom
// ValidateInput.
func CompileValidator(schema json.RawMessage) (Validator, error) {
	sch, err := jsonschema.CompileString("", string(schema))
	if err != nil {
		return nil, err
	}
	return func(data json.RawMessage) []ValidationError {
		var v any
		if len(data) == 0 {
			data = []byte("{}")
		}
		if err := json.Unmarshal(data, &v); err != nil {
			return []ValidationError{{Path: "", Message: "invalid JSON: " + err.Error()}}
		}
		if err := sch.Validate(v); err != nil {
			if ve, ok := err.(*jsonschema.ValidationError); ok {
				return flattenValidationError(ve, nil)
			}
			return []ValidationError{{Path: "", Message: err.Error()}}
		}
		return nil
	}, nil
}

func flattenValidationError(ve *jsonschema.ValidationError, acc []ValidationError) []ValidationError {
	if len(ve.Causes) == 0 {
		acc = append(acc, ValidationError{
			Path:    strings.TrimPrefix(ve.InstanceLocation, "/"),
			Message: ve.Message,
		})
		return acc
	}
	for _, cause := range ve.Causes {
		acc = flattenValidationError(cause, acc)
	}
	return acc
}
