package buffer

// DefaultTabWidth is the tab width of a new buffer.
const DefaultTabWidth = 4

// Option is a functional option for configuring a Buffer.
type Option func(*Buffer)

// WithTabWidth sets the buffer's tab width. Non-positive widths are ignored.
func WithTabWidth(width int) Option {
	return func(b *Buffer) {
		if width > 0 {
			b.tabWidth = width
		}
	}
}

// WithLanguage sets the buffer's language ID.
func WithLanguage(id string) Option {
	return func(b *Buffer) {
		b.language = id
	}
}

// WithPath sets the file path the buffer was loaded from.
func WithPath(path string) Option {
	return func(b *Buffer) {
		b.path = path
	}
}
