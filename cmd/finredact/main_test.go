// Copyright Amazon.com, Inc. or its affiliates. All Rights Reserved.
// SPDX-License-Identifier: Apache-2.0

package main

import (
	"bytes"
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"finredact/internal/config"
	"finredact/internal/pdf"
)

// isolate keeps user config files and environment out of the test
func isolate(t *testing.T) {
	t.Helper()
	home := t.TempDir()
	t.Setenv("HOME", home)
	t.Setenv("FINREDACT_CONFIG_DIR", filepath.Join(home, "config"))
	t.Setenv("FINREDACT_CONFIG", "")
	t.Setenv("FINREDACT_LOG_LEVEL", "")
	t.Setenv("AWS_REGION", "")
}

func TestResolveConfiguration(t *testing.T) {
	tests := []struct {
		name  string
		args  []string
		env   map[string]string
		check func(t *testing.T, cfg *config.Config)
	}{
		{
			name: "defaults",
			check: func(t *testing.T, cfg *config.Config) {
				assert.Equal(t, config.LevelStandard, cfg.RedactionLevel)
				assert.True(t, cfg.Output.WriteText)
				assert.Equal(t, "info", cfg.Logging.Level)
			},
		},
		{
			name: "flags override the profile",
			args: []string{"--profile", "share", "--mode", "generic", "--no-text", "--format", "json"},
			check: func(t *testing.T, cfg *config.Config) {
				assert.Equal(t, config.LevelAggressive, cfg.RedactionLevel)
				assert.Equal(t, "generic", cfg.ReplacementMode)
				assert.False(t, cfg.Output.WriteText)
				assert.Equal(t, "json", cfg.Output.ReportFormat)
			},
		},
		{
			name: "environment",
			env:  map[string]string{"FINREDACT_LOG_LEVEL": "warn", "AWS_REGION": "eu-west-1"},
			check: func(t *testing.T, cfg *config.Config) {
				assert.Equal(t, "warn", cfg.Logging.Level)
				assert.Equal(t, "eu-west-1", cfg.Detection.Recognizer.Region)
			},
		},
		{
			name: "debug wins over the environment",
			args: []string{"--debug", "--recognizer", "none"},
			env:  map[string]string{"FINREDACT_LOG_LEVEL": "warn"},
			check: func(t *testing.T, cfg *config.Config) {
				assert.Equal(t, "debug", cfg.Logging.Level)
				assert.Equal(t, "none", cfg.Detection.Recognizer.Backend)
			},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			isolate(t)
			for k, v := range tt.env {
				t.Setenv(k, v)
			}
			flags, _, err := parseFlags(tt.args, &bytes.Buffer{})
			require.NoError(t, err)

			cfg := config.Default()
			require.NoError(t, resolveConfiguration(cfg, flags))
			tt.check(t, cfg)
		})
	}
}

func TestResolveConfigurationErrors(t *testing.T) {
	isolate(t)
	for _, args := range [][]string{
		{"--profile", "missing"},
		{"--level", "extreme"},
		{"--recognizer", "oracle"},
	} {
		flags, _, err := parseFlags(args, &bytes.Buffer{})
		require.NoError(t, err)
		assert.Error(t, resolveConfiguration(config.Default(), flags), "args %v", args)
	}
}

func TestConfigPath(t *testing.T) {
	isolate(t)
	flags, _, err := parseFlags(nil, &bytes.Buffer{})
	require.NoError(t, err)
	path, explicit := flags.configPath()
	assert.Empty(t, path)
	assert.False(t, explicit)

	t.Setenv("FINREDACT_CONFIG", "/etc/finredact.yaml")
	path, explicit = flags.configPath()
	assert.Equal(t, "/etc/finredact.yaml", path)
	assert.True(t, explicit)
}

func runCLI(t *testing.T, args ...string) (int, string, string) {
	t.Helper()
	var stdout, stderr bytes.Buffer
	code := run(context.Background(), args, &stdout, &stderr)
	return code, stdout.String(), stderr.String()
}

func TestRunInformational(t *testing.T) {
	isolate(t)

	code, out, _ := runCLI(t, "--version")
	assert.Equal(t, exitOK, code)
	assert.Contains(t, out, "finredact ")

	code, out, _ = runCLI(t, "--help", "categories")
	assert.Equal(t, exitOK, code)
	assert.Contains(t, out, "routing_number")

	code, _, _ = runCLI(t, "--help", "passport")
	assert.Equal(t, exitUsage, code)

	code, out, _ = runCLI(t, "--list-profiles")
	assert.Equal(t, exitOK, code)
	assert.Contains(t, out, "statements")
	assert.Contains(t, out, "share")
}

func TestRunUsageErrors(t *testing.T) {
	isolate(t)

	code, _, errOut := runCLI(t)
	assert.Equal(t, exitUsage, code)
	assert.Contains(t, errOut, "--input is required")

	code, _, _ = runCLI(t, "--input", filepath.Join(t.TempDir(), "missing.pdf"))
	assert.Equal(t, exitUsage, code)

	code, _, _ = runCLI(t, "--config", filepath.Join(t.TempDir(), "missing.yaml"), "--input", ".")
	assert.Equal(t, exitUsage, code)

	code, _, _ = runCLI(t, "--bogus")
	assert.Equal(t, exitUsage, code)
}

func TestRunRedactsFile(t *testing.T) {
	isolate(t)
	dir := t.TempDir()
	in := filepath.Join(dir, "statement.pdf")
	require.NoError(t, pdf.NewWriter().WritePDF(in, []pdf.Page{
		{Number: 1, Text: "Checking Account\nSSN: 123-45-6789"},
	}))
	outDir := filepath.Join(dir, "out")
	metricsFile := filepath.Join(dir, "metrics.prom")

	code, out, errOut := runCLI(t,
		"--input", in,
		"--output-dir", outDir,
		"--recognizer", "none",
		"--format", "json",
		"--metrics-file", metricsFile,
	)
	require.Equal(t, exitOK, code, errOut)

	var batch struct {
		Processed int `json:"processed"`
		Reports   []struct {
			Output string         `json:"output"`
			Counts map[string]int `json:"counts"`
		} `json:"reports"`
	}
	require.NoError(t, json.Unmarshal([]byte(out), &batch))
	assert.Equal(t, 1, batch.Processed)
	require.Len(t, batch.Reports, 1)
	assert.Equal(t, 1, batch.Reports[0].Counts["ssn"])
	assert.Equal(t, filepath.Join(outDir, "statement_redacted.pdf"), batch.Reports[0].Output)

	assert.FileExists(t, batch.Reports[0].Output)
	assert.FileExists(t, filepath.Join(outDir, "statement_redacted.txt"))
	assert.FileExists(t, metricsFile)
}

func TestRunFolderWritesReportFile(t *testing.T) {
	isolate(t)
	dir := t.TempDir()
	for _, name := range []string{"a.pdf", "b.pdf"} {
		require.NoError(t, pdf.NewWriter().WritePDF(filepath.Join(dir, name), []pdf.Page{
			{Number: 1, Text: "Call 555-123-4567"},
		}))
	}
	report := filepath.Join(dir, "reports", "run.csv")

	code, out, errOut := runCLI(t,
		"--input", dir,
		"--output-dir", filepath.Join(dir, "out"),
		"--recognizer", "none",
		"--no-text",
		"--format", "csv",
		"--report", report,
	)
	require.Equal(t, exitOK, code, errOut)
	assert.Empty(t, out)

	data, err := os.ReadFile(report)
	require.NoError(t, err)
	assert.Contains(t, string(data), "a.pdf")
	assert.Contains(t, string(data), "b.pdf")
	assert.NoFileExists(t, filepath.Join(dir, "out", "a_redacted.txt"))
}

func TestRunEstimateCostAndInfo(t *testing.T) {
	isolate(t)
	in := filepath.Join(t.TempDir(), "w2.pdf")
	require.NoError(t, pdf.NewWriter().WritePDF(in, []pdf.Page{
		{Number: 1, Text: "Form W-2 Wage and Tax Statement"},
	}))

	code, out, errOut := runCLI(t, "--input", in, "--estimate-cost", "--recognizer", "none")
	require.Equal(t, exitOK, code, errOut)
	assert.Contains(t, out, "Estimated cost: $")

	code, out, errOut = runCLI(t, "--input", in, "--info", "--recognizer", "none")
	require.Equal(t, exitOK, code, errOut)
	assert.Contains(t, out, "document_type:")
}
