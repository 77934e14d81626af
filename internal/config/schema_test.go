// SPDX-FileCopyrightText: 2025 The Karei Authors
// SPDX-License-Identifier: EUPL-1.2

package config

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type schemaNode struct {
	Type       string                `json:"type"`
	Properties map[string]schemaNode `json:"properties"`
	Required   []string              `json:"required"`
	Enum       []string              `json:"enum"`
	Default    any                   `json:"default"`
}

func TestSchema(t *testing.T) {
	t.Parallel()

	data, err := Schema()
	require.NoError(t, err)

	var root schemaNode
	require.NoError(t, json.Unmarshal(data, &root))

	assert.Equal(t, "object", root.Type)
	assert.Empty(t, root.Required)
	assert.ElementsMatch(t, []string{"elevation_helper", "log", "ui"}, keys(root.Properties))
	assert.Equal(t, DefaultElevationHelper, root.Properties["elevation_helper"].Default)

	log := root.Properties["log"]
	assert.ElementsMatch(t, []string{"level", "format", "file"}, keys(log.Properties), "stderr is not a file setting")
	assert.Equal(t, []string{"text", "json"}, log.Properties["format"].Enum)

	ui := root.Properties["ui"]
	assert.Equal(t, "boolean", ui.Properties["alt_screen"].Type)
	assert.Equal(t, true, ui.Properties["alt_screen"].Default)
}

func keys(m map[string]schemaNode) []string {
	result := make([]string, 0, len(m))
	for k := range m {
		result = append(result, k)
	}

	return result
}
