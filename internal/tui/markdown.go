package tui

import (
	"strings"
	"sync"

	"github.com/charmbracelet/glamour"
)

var (
	markdownMu       sync.Mutex
	markdownRenderer *glamour.TermRenderer
	markdownErr      error
	markdownWordWrap = 40
)

// renderMarkdown returns Glamour-rendered terminal output, or the input
// unchanged when rendering fails.
func renderMarkdown(content string) string {
	renderer := ensureMarkdownRenderer()
	if renderer == nil {
		return content
	}
	out, err := renderer.Render(content)
	if err != nil {
		return content
	}
	return strings.Trim(out, "\n")
}

func ensureMarkdownRenderer() *glamour.TermRenderer {
	markdownMu.Lock()
	defer markdownMu.Unlock()
	if markdownRenderer != nil && markdownErr == nil {
		return markdownRenderer
	}
	markdownRenderer, markdownErr = glamour.NewTermRenderer(
		glamour.WithAutoStyle(),
		glamour.WithWordWrap(markdownWordWrap),
	)
	if markdownErr != nil {
		return nil
	}
	return markdownRenderer
}

func setMarkdownWordWrap(width int) {
	markdownMu.Lock()
	defer markdownMu.Unlock()
	if width < 10 {
		width = 10
	}
	if markdownWordWrap != width {
		markdownWordWrap = width
		markdownRenderer = nil
		markdownErr = nil
	}
}
