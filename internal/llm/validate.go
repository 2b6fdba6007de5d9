package llm

import (
	"encoding/json"
	"fmt"
	"sync"

	"github.com/santhosh-tekuri/jsonschema/v6"
)

// compiledSchemas caches compiled schemas by name. The engine uses a
// handful of fixed schemas (response-evaluation, model-answer, scenario),
// so each is compiled once for the process lifetime.
var compiledSchemas sync.Map // map[string]*jsonschema.Schema

// validateResponse checks oracle output against the requested schema.
// A nil schema means free-text output and always passes. Any failure,
// including malformed JSON, comes back as *ErrInvalidResponse so the
// retry layer can resample.
func validateResponse(schema *Schema, raw json.RawMessage) error {
	if schema == nil {
		return nil
	}

	invalid := func(err error) error {
		return &ErrInvalidResponse{Content: raw, Err: err}
	}

	var doc any
	if err := json.Unmarshal(raw, &doc); err != nil {
		return invalid(fmt.Errorf("invalid JSON: %w", err))
	}

	compiled, err := compileSchema(schema)
	if err != nil {
		return invalid(fmt.Errorf("compile schema %q: %w", schema.Name, err))
	}

	if err := compiled.Validate(doc); err != nil {
		return invalid(fmt.Errorf("schema validation failed: %w", err))
	}
	return nil
}

// compileSchema returns the cached compiled schema, compiling on first use.
func compileSchema(schema *Schema) (*jsonschema.Schema, error) {
	if cached, ok := compiledSchemas.Load(schema.Name); ok {
		return cached.(*jsonschema.Schema), nil
	}

	// The compiler wants a parsed JSON document, not a Go map that may
	// hold non-JSON types. Round-trip the definition to normalize it.
	defBytes, err := json.Marshal(schema.Definition)
	if err != nil {
		return nil, fmt.Errorf("marshal schema definition: %w", err)
	}
	var def any
	if err := json.Unmarshal(defBytes, &def); err != nil {
		return nil, fmt.Errorf("parse schema definition: %w", err)
	}

	c := jsonschema.NewCompiler()
	url := fmt.Sprintf("schema://%s.json", schema.Name)
	if err := c.AddResource(url, def); err != nil {
		return nil, fmt.Errorf("add resource: %w", err)
	}
	compiled, err := c.Compile(url)
	if err != nil {
		return nil, fmt.Errorf("compile: %w", err)
	}

	compiledSchemas.Store(schema.Name, compiled)
	return compiled, nil
}
