// Copyright Amazon.com, Inc. or its affiliates. All Rights Reserved.
// SPDX-License-Identifier: Apache-2.0

package paths

import (
	"os"
	"path/filepath"
	"runtime"
	"strings"
)

// DefaultSuffix is appended to the base name of every redacted output
const DefaultSuffix = "_redacted"

// ConfigDir returns the finredact configuration directory.
// Uses APPDATA on Windows and XDG or the home directory elsewhere.
func ConfigDir() string {
	// Check for explicit override first (works on all platforms)
	if dir := os.Getenv("FINREDACT_CONFIG_DIR"); dir != "" {
		return dir
	}

	if runtime.GOOS == "windows" {
		if appData := os.Getenv("APPDATA"); appData != "" {
			return filepath.Join(appData, "finredact")
		}
		if userProfile := os.Getenv("USERPROFILE"); userProfile != "" {
			return filepath.Join(userProfile, ".finredact")
		}
		return ".finredact"
	}

	if xdgConfig := os.Getenv("XDG_CONFIG_HOME"); xdgConfig != "" {
		return filepath.Join(xdgConfig, "finredact")
	}
	home, _ := os.UserHomeDir()
	return filepath.Join(home, ".config", "finredact")
}

// ConfigFile returns the path to the main config file
func ConfigFile() string {
	return filepath.Join(ConfigDir(), "config.yaml")
}

// NormalizePath cleans a path for the current platform, keeping the
// leading double backslash of Windows UNC paths.
func NormalizePath(path string) string {
	if path == "" {
		return ""
	}
	normalized := filepath.Clean(path)
	if runtime.GOOS == "windows" && strings.HasPrefix(path, `\\`) && !strings.HasPrefix(normalized, `\\`) {
		normalized = `\\` + strings.TrimPrefix(normalized, `\`)
	}
	return normalized
}

// ValidatePath validates a path for the current platform
func ValidatePath(path string) error {
	if path == "" {
		return nil // Empty path is valid
	}

	if runtime.GOOS == "windows" {
		for i, char := range path {
			if strings.ContainsRune(`<>:"|?*`, char) {
				// Skip colon if it's part of a drive letter (position 1: C:)
				if char == ':' && i == 1 {
					continue
				}
				return &PathValidationError{Path: path, Reason: "contains invalid character: " + string(char)}
			}
		}
		if len(path) > 32767 {
			return &PathValidationError{Path: path, Reason: "path exceeds maximum length of 32,767 characters"}
		}
		return nil
	}

	if strings.ContainsRune(path, 0) {
		return &PathValidationError{Path: path, Reason: "contains null byte"}
	}
	return nil
}

// PathValidationError represents a path validation error
type PathValidationError struct {
	Path   string
	Reason string
}

func (e *PathValidationError) Error() string {
	return "invalid path '" + e.Path + "': " + e.Reason
}

// IsPDF reports whether name has a .pdf extension in any case
func IsPDF(name string) bool {
	return strings.EqualFold(filepath.Ext(name), ".pdf")
}

// OutputPaths returns the redacted PDF path and the redacted text sidecar
// path for input. An empty outDir writes next to the input.
func OutputPaths(input, outDir, suffix string) (pdfPath, textPath string) {
	if suffix == "" {
		suffix = DefaultSuffix
	}
	if outDir == "" {
		outDir = filepath.Dir(input)
	}
	base := strings.TrimSuffix(filepath.Base(input), filepath.Ext(input)) + suffix
	return filepath.Join(outDir, base+".pdf"), filepath.Join(outDir, base+".txt")
}
