package rag

import (
	"strings"
	"unicode/utf8"
)

// Retrieval modes. An unrecognized configured mode behaves as off but keeps
// the raw name in Context.Mode for observability.
const (
	ModeOff    = "off"
	ModeLite   = "lite"
	ModeVector = "vector"
)

// Context is the retrieval result handed to the language-model resolver.
// ContextText never exceeds the configured character budget and Sources
// holds no duplicates.
type Context struct {
	Enabled         bool     `json:"enabled"`
	Mode            string   `json:"mode"`
	Sources         []string `json:"sources"`
	ContextText     string   `json:"-"`
	TopK            int      `json:"top_k,omitempty"`
	RetrievedChunks int      `json:"retrieved_chunks"`
}

// Disabled returns the empty context used when retrieval is not consulted.
func Disabled() Context {
	return Context{Enabled: false, Mode: ModeOff}
}

type sourceBlock struct {
	source  string
	content string
}

// buildBudgetedContext concatenates SOURCE-headed blocks in order until
// maxChars is reached. The last block that does not fit is truncated rather
// than dropped, unless not even its header fits. Source names are
// deduplicated preserving first-seen order.
func buildBudgetedContext(blocks []sourceBlock, maxChars int) (string, []string) {
	var builder strings.Builder
	var sources []string
	seen := make(map[string]bool)
	total := 0

	for _, block := range blocks {
		content := strings.TrimSpace(block.content)
		if content == "" {
			continue
		}

		header := "SOURCE: " + block.source + "\n"
		candidate := header + content + "\n"

		// Account for the separating newline between blocks.
		sep := 0
		if total > 0 {
			sep = 1
		}

		truncated := false
		if total+sep+len(candidate) > maxChars {
			remaining := maxChars - total - sep
			if remaining <= len(header) {
				break
			}
			cut := remaining - len(header) - 1
			// Back the cut up so it never lands inside a multi-byte rune.
			for cut > 0 && !utf8.RuneStart(content[cut]) {
				cut--
			}
			candidate = header + content[:cut] + "\n"
			truncated = true
		}

		if sep > 0 {
			builder.WriteString("\n")
		}
		builder.WriteString(candidate)
		total += sep + len(candidate)

		if !seen[block.source] {
			seen[block.source] = true
			sources = append(sources, block.source)
		}
		if truncated {
			break
		}
	}

	return strings.TrimSpace(builder.String()), sources
}
