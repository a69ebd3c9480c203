package server

import (
	"bytes"
	"encoding/json"
	"fmt"

	"github.com/santhosh-tekuri/jsonschema/v5"
)

// compileToolSchemas compiles every tool's InputSchema.
func compileToolSchemas(tools []Tool) (map[string]*jsonschema.Schema, error) {
	compiler := jsonschema.NewCompiler()
	compiler.Draft = jsonschema.Draft7

	schemas := make(map[string]*jsonschema.Schema, len(tools))
	for _, tool := range tools {
		data, err := json.Marshal(tool.InputSchema)
		if err != nil {
			return nil, fmt.Errorf("marshal schema for %s: %w", tool.Name, err)
		}
		url := "mem://tools/" + tool.Name + ".json"
		if err := compiler.AddResource(url, bytes.NewReader(data)); err != nil {
			return nil, fmt.Errorf("add schema for %s: %w", tool.Name, err)
		}
		schema, err := compiler.Compile(url)
		if err != nil {
			return nil, fmt.Errorf("compile schema for %s: %w", tool.Name, err)
		}
		schemas[tool.Name] = schema
	}
	return schemas, nil
}

// validateArguments checks raw tool arguments against the tool's schema.
// Missing arguments are validated as an empty object.
func (s *Server) validateArguments(name string, args json.RawMessage) error {
	schema, ok := s.schemas[name]
	if !ok {
		return nil
	}

	var instance interface{} = map[string]interface{}{}
	if len(bytes.TrimSpace(args)) > 0 && !bytes.Equal(bytes.TrimSpace(args), []byte("null")) {
		if err := json.Unmarshal(args, &instance); err != nil {
			return fmt.Errorf("arguments are not valid JSON: %w", err)
		}
	}
	return schema.Validate(instance)
}
