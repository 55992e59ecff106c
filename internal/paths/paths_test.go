// Copyright Amazon.com, Inc. or its affiliates. All Rights Reserved.
// SPDX-License-Identifier: Apache-2.0

package paths

import (
	"path/filepath"
	"runtime"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestConfigDirOverride(t *testing.T) {
	dir := t.TempDir()
	t.Setenv("FINREDACT_CONFIG_DIR", dir)

	assert.Equal(t, dir, ConfigDir())
	assert.Equal(t, filepath.Join(dir, "config.yaml"), ConfigFile())
}

func TestConfigDirXDG(t *testing.T) {
	if runtime.GOOS == "windows" {
		t.Skip("XDG applies to Unix only")
	}
	t.Setenv("FINREDACT_CONFIG_DIR", "")
	t.Setenv("XDG_CONFIG_HOME", "/xdg")

	assert.Equal(t, filepath.Join("/xdg", "finredact"), ConfigDir())
}

func TestOutputPaths(t *testing.T) {
	tests := []struct {
		name             string
		input, outDir    string
		suffix           string
		wantPDF, wantTxt string
	}{
		{"next to input", filepath.Join("in", "stmt.pdf"), "", "", filepath.Join("in", "stmt_redacted.pdf"), filepath.Join("in", "stmt_redacted.txt")},
		{"separate dir", filepath.Join("in", "W2.PDF"), "out", "", filepath.Join("out", "W2_redacted.pdf"), filepath.Join("out", "W2_redacted.txt")},
		{"custom suffix", "a.pdf", "out", "-clean", filepath.Join("out", "a-clean.pdf"), filepath.Join("out", "a-clean.txt")},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			pdfPath, textPath := OutputPaths(tt.input, tt.outDir, tt.suffix)
			assert.Equal(t, tt.wantPDF, pdfPath)
			assert.Equal(t, tt.wantTxt, textPath)
		})
	}
}

func TestIsPDF(t *testing.T) {
	assert.True(t, IsPDF("a.pdf"))
	assert.True(t, IsPDF("A.PDF"))
	assert.False(t, IsPDF("a.pdf.txt"))
	assert.False(t, IsPDF("pdf"))
}

func TestValidatePath(t *testing.T) {
	assert.NoError(t, ValidatePath(""))
	assert.NoError(t, ValidatePath(filepath.Join("out", "dir")))

	err := ValidatePath("bad\x00path")
	if runtime.GOOS != "windows" {
		var pve *PathValidationError
		assert.ErrorAs(t, err, &pve)
	}
}
