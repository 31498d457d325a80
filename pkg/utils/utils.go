package utils

import (
	"encoding/json"

	"github.com/invopop/jsonschema"
)

// ToJSONSchema renders the JSON schema of t with every definition inlined.
func ToJSONSchema[T any](t T) (string, error) {
	r := new(jsonschema.Reflector)
	r.DoNotReference = true
	schema := r.Reflect(t)

	jsonSchemaBytes, err := json.Marshal(schema)
	if err != nil {
		return "", err
	}

	return string(jsonSchemaBytes), nil
}
