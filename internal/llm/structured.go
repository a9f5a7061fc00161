package llm

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/santhosh-tekuri/jsonschema/v5"

	"cv-analyser/pkg/utils"
)

// Schema is a compiled JSON schema that provider output is checked against
type Schema struct {
	name   string
	schema *jsonschema.Schema
}

// CompileSchema compiles a JSON schema document
func CompileSchema(name string, document []byte) (*Schema, error) {
	compiler := jsonschema.NewCompiler()
	if err := compiler.AddResource(name, bytes.NewReader(document)); err != nil {
		return nil, fmt.Errorf("add schema: %w", err)
	}
	s, err := compiler.Compile(name)
	if err != nil {
		return nil, fmt.Errorf("compile schema: %w", err)
	}
	return &Schema{name: name, schema: s}, nil
}

// MustCompileSchema is CompileSchema for package-level schemas
func MustCompileSchema(name string, document []byte) *Schema {
	s, err := CompileSchema(name, document)
	if err != nil {
		panic(err)
	}
	return s
}

// ParseStructured strips markdown fences from raw, validates it against the
// schema and returns the decoded document. The text is only ever decoded as
// JSON; anything else is a *ResponseFormatError.
func ParseStructured(raw string, schema *Schema) (json.RawMessage, error) {
	body := utils.StripCodeFences(raw)
	if body == "" {
		return nil, &ResponseFormatError{Reason: "empty response", Raw: raw}
	}

	var doc any
	dec := json.NewDecoder(strings.NewReader(body))
	dec.UseNumber()
	if err := dec.Decode(&doc); err != nil {
		return nil, &ResponseFormatError{Reason: "response is not valid JSON: " + err.Error(), Raw: raw}
	}
	// only whitespace may follow; More() is false before a stray '}' or ']'
	if err := dec.Decode(&struct{}{}); !errors.Is(err, io.EOF) {
		return nil, &ResponseFormatError{Reason: "unexpected data after JSON document", Raw: raw}
	}

	if schema != nil {
		if err := schema.schema.Validate(doc); err != nil {
			return nil, &ResponseFormatError{Reason: "response does not match " + schema.name + ": " + err.Error(), Raw: raw}
		}
	}

	return json.RawMessage(body), nil
}
