package tui

import (
	"strings"

	"github.com/charmbracelet/glamour"
)

// markdownRenderer renders task content for the detail overlay and recreates the renderer when wrap width changes.
type markdownRenderer struct {
	style    string
	width    int
	renderer *glamour.TermRenderer
}

// render converts markdown input into ANSI-styled terminal text with the requested wrap width.
func (r *markdownRenderer) render(markdown string, width int) string {
	markdown = strings.TrimSpace(markdown)
	if markdown == "" {
		return ""
	}

	wrapWidth := max(width, 24)
	if r.renderer == nil || r.width != wrapWidth {
		style := r.style
		if style == "" {
			style = "dark"
		}
		styleOpt := glamour.WithStandardStyle(style)
		if style == "auto" {
			styleOpt = glamour.WithAutoStyle()
		}
		renderer, err := glamour.NewTermRenderer(
			styleOpt,
			glamour.WithWordWrap(wrapWidth),
		)
		if err != nil {
			return markdown
		}
		r.renderer = renderer
		r.width = wrapWidth
	}

	rendered, err := r.renderer.Render(markdown)
	if err != nil {
		return markdown
	}
	return strings.TrimRight(rendered, "\n")
}
