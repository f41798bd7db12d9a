package utils

import "github.com/invopop/jsonschema"

// GenerateSchema creates a JSON schema for validating data structures.
// The generated schema is strict (no additional properties allowed) and fully inlined
// (no references to definitions).
func GenerateSchema[T any]() any {
	reflector := jsonschema.Reflector{
		AllowAdditionalProperties: false,
		DoNotReference:            true,
	}

	var v T

	return reflector.Reflect(v)
}
