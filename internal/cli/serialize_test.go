package cli

import (
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hupe1980/graphyaml/internal/yamlutil"
)

const testManifest = "testdata/scene.yaml"

func TestSerializeCommand_Stdout(t *testing.T) {
	stdout, _, err := executeCommand("serialize", testManifest)
	require.NoError(t, err)

	assert.True(t, strings.HasPrefix(stdout, "---\nGameObject:\n  m_FileID: "), "unexpected prefix:\n%s", stdout)
	assert.Equal(t, 16, yamlutil.CountDocuments([]byte(stdout)))
	assert.Equal(t, 1, strings.Count(stdout, "\nMesh:\n"), "shared mesh must be written once")
	assert.Equal(t, 1, strings.Count(stdout, "\nMaterial:\n"), "shared material must be written once")
}

func TestSerializeCommand_Deterministic(t *testing.T) {
	first, _, err := executeCommand("serialize", testManifest)
	require.NoError(t, err)

	second, _, err := executeCommand("serialize", testManifest)
	require.NoError(t, err)

	assert.Equal(t, first, second)
}

func TestSerializeCommand_OutputFile(t *testing.T) {
	out := filepath.Join(t.TempDir(), "scene.archive.yaml")

	stdout, _, err := executeCommand("serialize", testManifest, "-o", out)
	require.NoError(t, err)
	assert.Empty(t, stdout)

	data, err := os.ReadFile(out)
	require.NoError(t, err)
	assert.Equal(t, 16, yamlutil.CountDocuments(data))
}

func TestSerializeCommand_Indent(t *testing.T) {
	stdout, _, err := executeCommand("serialize", testManifest, "--indent", "4")
	require.NoError(t, err)

	assert.True(t, strings.HasPrefix(stdout, "---\nGameObject:\n    m_FileID: "), "unexpected prefix:\n%s", stdout)
}

func TestSerializeCommand_InvalidIndent(t *testing.T) {
	_, _, err := executeCommand("serialize", testManifest, "--indent", "1")
	require.Error(t, err)
	requireExitCode(t, err, ExitUsage)
}

func TestSerializeCommand_JSON(t *testing.T) {
	stdout, _, err := executeCommand("serialize", testManifest, "--format", "json")
	require.NoError(t, err)

	var docs []map[string]any
	require.NoError(t, json.Unmarshal([]byte(stdout), &docs))
	require.Len(t, docs, 16)
	assert.Contains(t, docs[0], "GameObject")
}

func TestSerializeCommand_Tokens(t *testing.T) {
	stdout, _, err := executeCommand("serialize", testManifest, "--format", "tokens")
	require.NoError(t, err)

	assert.True(t, strings.HasPrefix(stdout, "BeginDoc\n"), "unexpected prefix:\n%s", stdout)
	assert.Equal(t, 16, strings.Count(stdout, "BeginDoc"))
	assert.Equal(t, 16, strings.Count(stdout, "EndDoc"))
}

func TestSerializeCommand_UnknownFormat(t *testing.T) {
	_, _, err := executeCommand("serialize", testManifest, "--format", "xml")
	require.Error(t, err)
	requireExitCode(t, err, ExitUsage)
	assert.Contains(t, err.Error(), "unknown output format")
}

func TestSerializeCommand_Validate(t *testing.T) {
	stdout, _, err := executeCommand("serialize", testManifest, "--validate")
	require.NoError(t, err)
	assert.NotEmpty(t, stdout)
}

func TestSerializeCommand_ValidateRequiresYAML(t *testing.T) {
	_, _, err := executeCommand("serialize", testManifest, "--validate", "--format", "json")
	require.Error(t, err)
	requireExitCode(t, err, ExitUsage)
}

func TestSerializeCommand_MissingManifest(t *testing.T) {
	_, _, err := executeCommand("serialize", "testdata/missing.yaml")
	require.Error(t, err)
	requireExitCode(t, err, ExitGeneral)
}

func TestSerializeCommand_InvalidManifest(t *testing.T) {
	_, _, err := executeCommand("serialize", "testdata/cycle.yaml")
	require.Error(t, err)
	requireExitCode(t, err, ExitValidation)
	assert.Contains(t, err.Error(), "parent cycle detected")
}

func TestSerializeCommand_WriteFailure(t *testing.T) {
	dir := t.TempDir()
	blocker := filepath.Join(dir, "file")
	require.NoError(t, os.WriteFile(blocker, []byte("x"), 0o600))

	_, _, err := executeCommand("serialize", testManifest, "-o", filepath.Join(blocker, "out.yaml"))
	require.Error(t, err)
	requireExitCode(t, err, ExitWrite)
}

func TestSerializeCommand_Namespace(t *testing.T) {
	base, _, err := executeCommand("serialize", testManifest)
	require.NoError(t, err)

	other, _, err := executeCommand("--namespace", "6ba7b810-9dad-11d1-80b4-00c04fd430c8", "serialize", testManifest)
	require.NoError(t, err)

	assert.NotEqual(t, base, other)
	assert.Equal(t, yamlutil.CountDocuments([]byte(base)), yamlutil.CountDocuments([]byte(other)))
}

func TestSerializeCommand_FormatFromEnv(t *testing.T) {
	t.Setenv("GRAPHYAML_FORMAT", "tokens")

	stdout, _, err := executeCommand("serialize", testManifest)
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(stdout, "BeginDoc\n"))
}
