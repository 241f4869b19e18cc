package tui

type Option func(*Model)

// WithMarkdownStyle selects the glamour style used for task details.
func WithMarkdownStyle(style string) Option {
	return func(m *Model) {
		if style != "" {
			m.markdown.style = style
		}
	}
}

// WithClipboard replaces the system clipboard writer.
func WithClipboard(write func(string) error) Option {
	return func(m *Model) {
		if write != nil {
			m.copyText = write
		}
	}
}
