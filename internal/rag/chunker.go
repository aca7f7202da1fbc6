package rag

import (
	"crypto/sha256"
	"encoding/hex"
	"os"
	"path/filepath"
	"sort"
	"strings"
)

// Chunk is one bounded window of a source document, the unit of embedding
// and retrieval. Indexes are 0-based and contiguous per source.
type Chunk struct {
	Source      string
	Index       int
	Content     string
	ContentHash string
}

// LoadMarkdownChunks splits every .md document under dir into overlapping
// fixed-size character windows. A missing or empty directory yields no
// chunks; unreadable files are skipped.
func LoadMarkdownChunks(dir string, size, overlap int) []Chunk {
	info, err := os.Stat(dir)
	if err != nil || !info.IsDir() {
		return nil
	}

	paths, err := filepath.Glob(filepath.Join(dir, "*.md"))
	if err != nil {
		return nil
	}
	sort.Strings(paths)

	var chunks []Chunk
	for _, path := range paths {
		content, err := os.ReadFile(path)
		if err != nil {
			continue
		}
		source := filepath.Base(path)
		for index, window := range splitText(string(content), size, overlap) {
			chunks = append(chunks, Chunk{
				Source:      source,
				Index:       index,
				Content:     window,
				ContentHash: hashContent(window),
			})
		}
	}
	return chunks
}

// splitText windows by runes, not bytes; byte offsets would split
// multi-byte characters and produce invalid UTF-8.
func splitText(text string, size, overlap int) []string {
	if size <= 0 {
		return nil
	}
	runes := []rune(strings.TrimSpace(text))
	if len(runes) == 0 {
		return nil
	}

	// Overlap must stay below the window size or the scan never advances.
	if overlap < 0 {
		overlap = 0
	}
	if overlap > size-1 {
		overlap = size - 1
	}

	var windows []string
	length := len(runes)
	start := 0
	for start < length {
		end := start + size
		if end > length {
			end = length
		}
		window := strings.TrimSpace(string(runes[start:end]))
		if window != "" {
			windows = append(windows, window)
		}
		if end >= length {
			break
		}
		start = end - overlap
	}
	return windows
}

func hashContent(content string) string {
	sum := sha256.Sum256([]byte(content))
	return hex.EncodeToString(sum[:])
}
