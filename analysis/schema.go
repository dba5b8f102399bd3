package analysis

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strings"
	"sync"

	"github.com/santhosh-tekuri/jsonschema/v6"
)

const schemaURL = "schema://calctool/request.json"

// RequestSchema returns the JSON schema of a Request.
func RequestSchema() map[string]any {
	number := map[string]any{"type": "number"}
	return map[string]any{
		"$schema":              "https://json-schema.org/draft/2020-12/schema",
		"title":                "calctool analysis request",
		"type":                 "object",
		"additionalProperties": false,
		"required":             []any{"function_text", "mode"},
		"properties": map[string]any{
			"function_text": map[string]any{
				"type":        "string",
				"minLength":   1,
				"description": "Function of x, e.g. sin(x)/x or x^3 - 3x",
			},
			"mode": map[string]any{
				"type": "string",
				"enum": toAny(ModeNames()),
			},
			"parameters": map[string]any{
				"type":                 "object",
				"additionalProperties": false,
				"properties": map[string]any{
					"point":          number,
					"tangent_point":  number,
					"interval_start": number,
					"interval_end":   number,
					"rectangle_count": map[string]any{
						"type":    "integer",
						"minimum": 1,
					},
				},
			},
		},
	}
}

func toAny(ss []string) []any {
	out := make([]any, len(ss))
	for i, s := range ss {
		out[i] = s
	}
	return out
}

var (
	compileOnce    sync.Once
	compiledSchema *jsonschema.Schema
	compileErr     error
)

func requestSchema() (*jsonschema.Schema, error) {
	compileOnce.Do(func() {
		// Round-trip through JSON so the compiler sees plain decoded values.
		raw, err := json.Marshal(RequestSchema())
		if err != nil {
			compileErr = fmt.Errorf("marshal schema: %w", err)
			return
		}
		doc, err := jsonschema.UnmarshalJSON(bytes.NewReader(raw))
		if err != nil {
			compileErr = fmt.Errorf("parse schema: %w", err)
			return
		}
		c := jsonschema.NewCompiler()
		if err := c.AddResource(schemaURL, doc); err != nil {
			compileErr = fmt.Errorf("add resource: %w", err)
			return
		}
		compiledSchema, compileErr = c.Compile(schemaURL)
	})
	return compiledSchema, compileErr
}

// DecodeRequest validates raw against the request schema and decodes it.
func DecodeRequest(raw []byte) (Request, error) {
	schema, err := requestSchema()
	if err != nil {
		return Request{}, err
	}
	doc, err := jsonschema.UnmarshalJSON(bytes.NewReader(raw))
	if err != nil {
		return Request{}, fmt.Errorf("%w: invalid JSON: %v", ErrInvalidRequest, err)
	}
	if err := schema.Validate(doc); err != nil {
		return Request{}, fmt.Errorf("%w: %s", ErrInvalidRequest, strings.TrimSpace(err.Error()))
	}
	var req Request
	dec := json.NewDecoder(bytes.NewReader(raw))
	dec.DisallowUnknownFields()
	if err := dec.Decode(&req); err != nil {
		return Request{}, fmt.Errorf("%w: %v", ErrInvalidRequest, err)
	}
	if dec.More() {
		return Request{}, fmt.Errorf("%w: invalid JSON: trailing data", ErrInvalidRequest)
	}
	return req, nil
}
