package main

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestRun_StartupError(t *testing.T) {
	t.Parallel()

	invalidHCL := `
		call "zero" {
			module = "data"
	`
	tempDir := t.TempDir()
	filePath := filepath.Join(tempDir, "main.hcl")
	require.NoError(t, os.WriteFile(filePath, []byte(invalidHCL), 0o600))

	err := run(context.Background(), &bytes.Buffer{}, []string{filePath})
	require.Error(t, err)
	require.Contains(t, err.Error(), "application startup failed")
	require.Contains(t, err.Error(), "failed to parse")
}

func TestRun_ShouldExit(t *testing.T) {
	t.Parallel()

	out := &bytes.Buffer{}
	require.NoError(t, run(context.Background(), out, []string{"-h"}))
	require.Contains(t, out.String(), "Usage:")
}

func TestRun_ParseError(t *testing.T) {
	t.Parallel()

	err := run(context.Background(), &bytes.Buffer{}, []string{"--this-is-not-a-valid-flag"})
	require.Error(t, err)
	require.Contains(t, err.Error(), "flag provided but not defined: -this-is-not-a-valid-flag")
}

func TestRun_Infer(t *testing.T) {
	t.Parallel()

	src := `
module "zeros" "data" {
  size = 1
}
module "add_const" "addten" {
  value = 10
}
call "zero" {
  module = "data"
}
call "ten" {
  module = "addten"
  inputs = { mod_in = call.zero.dl_out }
}
infer {
  targets = [call.ten.mod_out]
}
`
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "main.hcl"), []byte(src), 0o600))

	out := &bytes.Buffer{}
	require.NoError(t, run(context.Background(), out, []string{"-log-level", "warn", dir}))
	require.Contains(t, out.String(), "call.ten.mod_out = [")
}
