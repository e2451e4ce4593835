package cli

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func serializeTo(t *testing.T) string {
	t.Helper()

	out := filepath.Join(t.TempDir(), "scene.archive.yaml")

	_, _, err := executeCommand("serialize", testManifest, "-o", out)
	require.NoError(t, err)

	return out
}

func TestDiffCommand_NoDifferences(t *testing.T) {
	existing := serializeTo(t)

	stdout, _, err := executeCommand("diff", testManifest, "--existing", existing)
	require.NoError(t, err)
	assert.Equal(t, "No differences found.\n", stdout)
}

func TestDiffCommand_Differences(t *testing.T) {
	existing := serializeTo(t)

	data, err := os.ReadFile(existing)
	require.NoError(t, err)

	edited := strings.Replace(string(data), "m_Name: Sun", "m_Name: Moon", 1)
	require.NotEqual(t, string(data), edited)
	require.NoError(t, os.WriteFile(existing, []byte(edited), 0o600))

	stdout, _, err := executeCommand("--no-color", "diff", testManifest, "--existing", existing)
	require.NoError(t, err)

	assert.Contains(t, stdout, "@@")
	assert.Contains(t, stdout, "-  m_Name: Moon")
	assert.Contains(t, stdout, "+  m_Name: Sun")
	assert.NotContains(t, stdout, "\x1b[")
}

func TestDiffCommand_SortIgnoresOrder(t *testing.T) {
	existing := serializeTo(t)

	data, err := os.ReadFile(existing)
	require.NoError(t, err)

	// Move the first document to the end.
	docs := strings.SplitAfterN(string(data), "---\n", 3)
	require.Len(t, docs, 3)

	first := strings.TrimSuffix(docs[1], "---\n")
	reordered := "---\n" + docs[2] + "---\n" + first
	require.NoError(t, os.WriteFile(existing, []byte(reordered), 0o600))

	stdout, _, err := executeCommand("--no-color", "diff", testManifest, "--existing", existing)
	require.NoError(t, err)
	assert.Contains(t, stdout, "@@")

	stdout, _, err = executeCommand("diff", testManifest, "--existing", existing, "--sort")
	require.NoError(t, err)
	assert.Equal(t, "No differences found.\n", stdout)
}

func TestDiffCommand_RequiresExisting(t *testing.T) {
	_, _, err := executeCommand("diff", testManifest)
	require.Error(t, err)
	requireExitCode(t, err, ExitUsage)
}

func TestDiffCommand_MissingExisting(t *testing.T) {
	_, _, err := executeCommand("diff", testManifest, "--existing", filepath.Join(t.TempDir(), "missing.yaml"))
	require.Error(t, err)
	requireExitCode(t, err, ExitGeneral)
}
