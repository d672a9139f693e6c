package mcpdoc

import (
	"encoding/json"
	"fmt"
	"strings"
	"sync"

	"github.com/santhosh-tekuri/jsonschema/v5"
)

// documentSchema is the shape contract for mcp.json: every provider
// needs command and args; the optional fields must carry the right
// types when present.
const documentSchema = `{
	"type": "object",
	"required": ["mcpServers"],
	"properties": {
		"mcpServers": {
			"type": "object",
			"additionalProperties": {
				"type": "object",
				"required": ["command", "args"],
				"properties": {
					"command": {"type": "string", "minLength": 1},
					"args": {"type": "array", "items": {"type": "string"}},
					"env": {"type": "object", "additionalProperties": {"type": "string"}},
					"autoApprove": {"type": "array", "items": {"type": "string"}},
					"disabled": {"type": "boolean"},
					"timeout": {"type": "integer", "minimum": 1}
				}
			}
		}
	}
}`

var (
	schemaOnce sync.Once
	schema     *jsonschema.Schema
	schemaErr  error
)

func compiledSchema() (*jsonschema.Schema, error) {
	schemaOnce.Do(func() {
		c := jsonschema.NewCompiler()
		if err := c.AddResource("mcp.schema.json", strings.NewReader(documentSchema)); err != nil {
			schemaErr = err
			return
		}
		schema, schemaErr = c.Compile("mcp.schema.json")
	})
	return schema, schemaErr
}

// ValidateSchema parses data and checks it against the document schema.
// Used as the post-write verification step; failures are loud but do
// not undo the write.
func ValidateSchema(data []byte) error {
	sch, err := compiledSchema()
	if err != nil {
		return fmt.Errorf("compile document schema: %w", err)
	}
	var v any
	if err := json.Unmarshal(data, &v); err != nil {
		return fmt.Errorf("written configuration is not valid JSON: %w", err)
	}
	if err := sch.Validate(v); err != nil {
		return fmt.Errorf("written configuration fails schema: %w", err)
	}
	return nil
}
