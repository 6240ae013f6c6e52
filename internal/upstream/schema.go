package upstream

import (
	"encoding/json"
	"fmt"

	"github.com/santhosh-tekuri/jsonschema/v5"
)

// MustCompileSchema compiles a JSON schema literal. It panics on an invalid
// schema, so it is meant for package-level schema variables.
func MustCompileSchema(name, src string) *jsonschema.Schema {
	return jsonschema.MustCompileString(name, src)
}

// DecodeValidated checks raw against schema and only then unmarshals it into out.
func DecodeValidated(schema *jsonschema.Schema, raw []byte, out any) error {
	var v any
	if err := json.Unmarshal(raw, &v); err != nil {
		return fmt.Errorf("unmarshal data: %w", err)
	}
	if err := schema.Validate(v); err != nil {
		return fmt.Errorf("json does not match schema: %w", err)
	}
	if err := json.Unmarshal(raw, out); err != nil {
		return fmt.Errorf("unmarshal into %T: %w", out, err)
	}
	return nil
}
