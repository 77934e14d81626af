// SPDX-FileCopyrightText: 2025 The Karei Authors
// SPDX-License-Identifier: EUPL-1.2

package config

import (
	"encoding/json"
	"fmt"

	"github.com/invopop/jsonschema"
)

// Schema returns the JSON Schema of config.toml, for editors and validators.
func Schema() ([]byte, error) {
	reflector := &jsonschema.Reflector{
		AllowAdditionalProperties: false,
		// Every key is optional, missing ones keep their default.
		RequiredFromJSONSchemaTags: true,
		// Both Config types would share a $defs entry.
		DoNotReference: true,
		FieldNameTag:   "toml",
	}

	schema := reflector.Reflect(&Config{})
	schema.Title = "debwiz configuration"
	schema.Version = "http://json-schema.org/draft-07/schema#"

	data, err := json.MarshalIndent(schema, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("failed to encode schema: %w", err)
	}

	return data, nil
}
