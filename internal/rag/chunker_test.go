package rag

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"unicode/utf8"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSplitTextWindowsAndOverlap(t *testing.T) {
	text := strings.Repeat("a", 10)

	windows := splitText(text, 4, 1)

	// Windows advance by size-overlap: [0,4) [3,7) [6,10).
	require.Len(t, windows, 3)
	for _, w := range windows {
		assert.LessOrEqual(t, len(w), 4)
	}
}

func TestSplitTextClampsOverlapBelowSize(t *testing.T) {
	text := strings.Repeat("b", 20)

	// Overlap >= size would never advance; it must be clamped.
	windows := splitText(text, 5, 50)

	assert.NotEmpty(t, windows)
	assert.Less(t, len(windows), 25, "scan terminates")
}

func TestSplitTextKeepsMultiByteRunesIntact(t *testing.T) {
	text := "atribuição de tarefas é obrigatória"

	windows := splitText(text, 3, 1)

	require.NotEmpty(t, windows)
	for _, window := range windows {
		assert.True(t, utf8.ValidString(window), "window %q", window)
		assert.LessOrEqual(t, utf8.RuneCountInString(window), 3)
	}
	assert.Equal(t, "atr", windows[0])
}

func TestSplitTextWindowSizeIsCountedInRunes(t *testing.T) {
	// Ten two-byte runes: byte-based windows would hold half the characters.
	text := strings.Repeat("ç", 10)

	windows := splitText(text, 4, 1)

	require.NotEmpty(t, windows)
	assert.Equal(t, strings.Repeat("ç", 4), windows[0])
}

func TestSplitTextEdgeCases(t *testing.T) {
	assert.Nil(t, splitText("anything", 0, 0))
	assert.Nil(t, splitText("   ", 10, 2))
	assert.Equal(t, []string{"short"}, splitText("  short  ", 100, 10))
}

func TestLoadMarkdownChunksIndexesAndHashes(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "b.md"), []byte(strings.Repeat("x", 25)), 0o644))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "a.md"), []byte("hello"), 0o644))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "notes.txt"), []byte("ignored"), 0o644))

	chunks := LoadMarkdownChunks(dir, 10, 2)

	require.NotEmpty(t, chunks)
	assert.Equal(t, "a.md", chunks[0].Source, "sources are processed in sorted order")

	bySource := map[string][]Chunk{}
	for _, chunk := range chunks {
		bySource[chunk.Source] = append(bySource[chunk.Source], chunk)
		assert.Len(t, chunk.ContentHash, 64)
	}
	assert.NotContains(t, bySource, "notes.txt")

	for source, list := range bySource {
		for i, chunk := range list {
			assert.Equal(t, i, chunk.Index, "indexes are 0-based and contiguous per %s", source)
		}
	}
}

func TestLoadMarkdownChunksMissingDir(t *testing.T) {
	assert.Nil(t, LoadMarkdownChunks(filepath.Join(t.TempDir(), "nope"), 10, 2))
}

func TestHashChangesWithContent(t *testing.T) {
	assert.NotEqual(t, hashContent("one"), hashContent("two"))
	assert.Equal(t, hashContent("same"), hashContent("same"))
}
