package config

import (
	"encoding/json"
	"fmt"

	"github.com/santhosh-tekuri/jsonschema/v6"

	flowerrors "github.com/alexisbeaulieu97/flowctl/pkg/errors"
)

// validateOptionsSchema compiles the inline JSON Schema document declared on
// an operation (options_schema) and validates its options block against it.
// A nil/empty schema is a no-op: options_schema is optional.
func validateOptionsSchema(stageName, opName string, schemaDoc map[string]any, options map[string]any) error {
	if len(schemaDoc) == 0 {
		return nil
	}

	resourceID := fmt.Sprintf("%s/%s#options", stageName, opName)

	compiler := jsonschema.NewCompiler()
	if err := compiler.AddResource(resourceID, schemaDoc); err != nil {
		return flowerrors.NewConfigurationError(flowerrors.InvalidDocument, opName,
			fmt.Sprintf("compiling options_schema: %v", err), err)
	}
	compiled, err := compiler.Compile(resourceID)
	if err != nil {
		return flowerrors.NewConfigurationError(flowerrors.InvalidDocument, opName,
			fmt.Sprintf("compiling options_schema: %v", err), err)
	}

	// Round-trip through JSON so Go-native map values (e.g. YAML-decoded
	// ints) match the types jsonschema expects from decoded JSON documents.
	raw, err := json.Marshal(options)
	if err != nil {
		return flowerrors.NewConfigurationError(flowerrors.InvalidDocument, opName, err.Error(), err)
	}
	var decoded any
	if err := json.Unmarshal(raw, &decoded); err != nil {
		return flowerrors.NewConfigurationError(flowerrors.InvalidDocument, opName, err.Error(), err)
	}

	if err := compiled.Validate(decoded); err != nil {
		return flowerrors.NewConfigurationError(flowerrors.InvalidDocument, opName,
			fmt.Sprintf("operation %q options failed schema validation: %v", opName, err), err)
	}
	return nil
}
