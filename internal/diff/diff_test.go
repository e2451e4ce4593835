package diff

import (
	"bytes"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const (
	archiveA = "---\nNode:\n  m_Name: a\n---\nMesh:\n  m_Name: quad\n"
	archiveB = "---\nNode:\n  m_Name: b\n---\nMesh:\n  m_Name: quad\n"
)

func TestCompute_Identical(t *testing.T) {
	result, err := Compute([]byte(archiveA), []byte(archiveA), DefaultOptions())
	require.NoError(t, err)
	assert.False(t, result.HasDifferences)
	assert.Empty(t, result.Hunks)
	assert.Equal(t, 2, result.OldDocuments)
	assert.Equal(t, 2, result.NewDocuments)
}

func TestCompute_Different(t *testing.T) {
	result, err := Compute([]byte(archiveA), []byte(archiveB), DefaultOptions())
	require.NoError(t, err)
	assert.True(t, result.HasDifferences)
	require.Len(t, result.Hunks, 1)
	assert.Contains(t, result.Unified, "--- old\n+++ new\n")
	assert.Contains(t, result.Unified, "-  m_Name: a\n+  m_Name: b\n")
	assert.Contains(t, result.Hunks[0], "@@ ")
	assert.NotContains(t, result.Hunks[0], "+++ new")
}

func TestCompute_NormalizesSeparators(t *testing.T) {
	loose := "Node:\n  m_Name: a\n---   \n\n---\nMesh:\n  m_Name: quad"

	result, err := Compute([]byte(archiveA), []byte(loose), DefaultOptions())
	require.NoError(t, err)
	assert.False(t, result.HasDifferences, result.Unified)
}

func TestCompute_Sort(t *testing.T) {
	reordered := "---\nMesh:\n  m_Name: quad\n---\nNode:\n  m_Name: a\n"

	result, err := Compute([]byte(archiveA), []byte(reordered), DefaultOptions())
	require.NoError(t, err)
	assert.True(t, result.HasDifferences)

	opts := DefaultOptions()
	opts.Sort = true

	result, err = Compute([]byte(archiveA), []byte(reordered), opts)
	require.NoError(t, err)
	assert.False(t, result.HasDifferences)
}

func TestCompute_Labels(t *testing.T) {
	opts := DefaultOptions()
	opts.OldLabel = "before.yaml"
	opts.NewLabel = "after.yaml"

	result, err := Compute([]byte(archiveA), []byte(archiveB), opts)
	require.NoError(t, err)
	assert.Contains(t, result.Unified, "--- before.yaml\n")
	assert.Contains(t, result.Unified, "+++ after.yaml\n")
}

func TestCompute_EmptySide(t *testing.T) {
	result, err := Compute(nil, []byte(archiveA), DefaultOptions())
	require.NoError(t, err)
	assert.True(t, result.HasDifferences)
	assert.Zero(t, result.OldDocuments)
	assert.Contains(t, result.Unified, "+Node:\n")

	result, err = Compute([]byte(archiveA), nil, DefaultOptions())
	require.NoError(t, err)
	assert.True(t, result.HasDifferences)
	assert.Contains(t, result.Unified, "-Node:\n")
}

func TestWrite_NoColor(t *testing.T) {
	result, err := Compute([]byte(archiveA), []byte(archiveB), DefaultOptions())
	require.NoError(t, err)

	var buf bytes.Buffer
	require.NoError(t, Write(&buf, result, false))

	out := buf.String()
	assert.NotContains(t, out, "\033[")
	assert.Contains(t, out, "-  m_Name: a\n")
	assert.Contains(t, out, "+  m_Name: b\n")
}

func TestWrite_WithColor(t *testing.T) {
	result, err := Compute([]byte(archiveA), []byte(archiveB), DefaultOptions())
	require.NoError(t, err)

	var buf bytes.Buffer
	require.NoError(t, Write(&buf, result, true))

	out := buf.String()
	assert.Contains(t, out, "\033[1m--- old\033[0m\n")
	assert.Contains(t, out, "\033[31m-  m_Name: a\033[0m\n")
	assert.Contains(t, out, "\033[32m+  m_Name: b\033[0m\n")
	assert.Contains(t, out, "\033[36m@@")
}

func TestWrite_NoDifferences(t *testing.T) {
	result, err := Compute([]byte(archiveA), []byte(archiveA), DefaultOptions())
	require.NoError(t, err)

	var buf bytes.Buffer
	require.NoError(t, Write(&buf, result, false))
	assert.Equal(t, "No differences found.\n", buf.String())
}

type failingWriter struct{}

func (failingWriter) Write([]byte) (int, error) { return 0, errors.New("disk full") }

func TestWrite_PropagatesWriteError(t *testing.T) {
	result, err := Compute([]byte(archiveA), []byte(archiveB), DefaultOptions())
	require.NoError(t, err)

	require.Error(t, Write(failingWriter{}, result, false))
	require.Error(t, Write(failingWriter{}, result, true))
}

func TestSplitLines(t *testing.T) {
	assert.Equal(t, []string{"a\n", "b\n", "c"}, splitLines("a\nb\nc"))
	assert.Equal(t, []string{"a\n", "b\n", "c\n"}, splitLines("a\nb\nc\n"))
	assert.Nil(t, splitLines(""))
}
