// Copyright Amazon.com, Inc. or its affiliates. All Rights Reserved.
// SPDX-License-Identifier: Apache-2.0

package help

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"finredact/internal/category"
)

func TestCategories(t *testing.T) {
	infos := Categories()
	require.Len(t, infos, len(category.Builtin()))

	byName := make(map[string]CategoryInfo)
	for _, info := range infos {
		assert.NotEmpty(t, info.Summary, info.Name)
		byName[info.Name] = info
	}

	assert.Equal(t, "ssn", infos[0].Name)
	assert.Equal(t, []string{"minimal", "standard", "aggressive"}, byName["ssn"].Levels)
	assert.Equal(t, []string{"aggressive"}, byName["currency"].Levels)
	require.NotEmpty(t, byName["ssn"].Rules)
	assert.Equal(t, "XXX-XX-XXXX", byName["ssn"].Rules[0].Replacement)
}

func TestShowCategoryHelp(t *testing.T) {
	tests := []struct {
		name     string
		category string
		found    bool
		contains string
	}{
		{"known", "SSN", true, "Social Security numbers written"},
		{"notes", "currency", true, "NOTE:"},
		{"unknown", "passport", false, "Category 'passport' not found"},
		{"custom strings are not built in", "custom_strings", false, "not found"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var buf bytes.Buffer
			found := NewSystem(&buf, true).ShowCategoryHelp(tt.category)
			assert.Equal(t, tt.found, found)
			assert.Contains(t, buf.String(), tt.contains)
		})
	}
}

func TestShowGeneralHelp(t *testing.T) {
	var buf bytes.Buffer
	h := NewSystem(&buf, true)
	h.ShowGeneralHelp([]string{"json", "text"})
	h.ShowCategoriesHelp()

	out := buf.String()
	assert.Contains(t, out, "Report format: json, text")
	assert.Contains(t, out, "routing_number")
	assert.NotContains(t, out, "\x1b[")
}
