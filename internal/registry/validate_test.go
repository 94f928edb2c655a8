package registry

import (
	"encoding/json"
	"testing"
)

func TestCompileValidatorRejectsWrongType(t *testing.T) {
	v, err := CompileValidator(json.RawMessage(`{
		"type": "object",
		"properties": {"a": {"type": "integer"}, "b": {"type": "integer"}},
		"required": ["a", "b"]
	}`))
	if err != nil {
		t.Fatalf("CompileValidator: %v", err)
	}

	errs := v(json.RawMessage(`{"a":"x","b":3}`))
	if len(errs) == 0 {
		t.Fatal("expected validation errors for wrong type")
	}
}

func TestCompileValidatorAcceptsValidInput(t *testing.T) {
	v, err := CompileValidator(json.RawMessage(`{
		"type": "object",
		"properties": {"a": {"type": "integer"}},
		"required": ["a"]
	}`))
	if err != nil {
		t.Fatalf("CompileValidator: %v", err)
	}
	if errs := v(json.RawMessage(`{"a":1}`)); len(errs) != 0 {
		t.Errorf("expected no errors, got %+v", errs)
	}
}

func TestCompileValidatorRejectsMalformedJSON(t *testing.T) {
	v, err := CompileValidator(json.RawMessage(`{"type":"object"}`))
	if err != nil {
		t.Fatalf("CompileValidator: %v", err)
	}
	if errs := v(json.RawMessage(`not json`)); len(errs) == 0 {
		t.Error("expected an error for malformed JSON input")
	}
}
