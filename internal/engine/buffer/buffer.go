package buffer

import (
	"fmt"
	"io"
	"sort"
	"strings"
	"sync"

	"github.com/google/uuid"
)

// Buffer is a mutable document. All methods are thread-safe.
type Buffer struct {
	mu         sync.RWMutex
	id         string
	text       string
	lineStarts []int
	revisionID RevisionID
	tabWidth   int
	language   string
	path       string
}

// NewBuffer creates a new empty buffer.
func NewBuffer(opts ...Option) *Buffer {
	b := &Buffer{
		id:         uuid.New().String(),
		lineStarts: []int{0},
		revisionID: NewRevisionID(),
		tabWidth:   DefaultTabWidth,
	}
	for _, opt := range opts {
		opt(b)
	}
	return b
}

// NewBufferFromString creates a buffer with initial content.
func NewBufferFromString(s string, opts ...Option) *Buffer {
	b := NewBuffer(opts...)
	b.text = normalizeLineEndings(s)
	b.lineStarts = indexLines(b.text)
	return b
}

// NewBufferFromReader creates a buffer from an io.Reader.
func NewBufferFromReader(r io.Reader, opts ...Option) (*Buffer, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("reading buffer content: %w", err)
	}
	return NewBufferFromString(string(data), opts...), nil
}

func normalizeLineEndings(s string) string {
	if !strings.Contains(s, "\r") {
		return s
	}
	s = strings.ReplaceAll(s, "\r\n", "\n")
	return strings.ReplaceAll(s, "\r", "\n")
}

func indexLines(s string) []int {
	starts := make([]int, 1, strings.Count(s, "\n")+1)
	for i := 0; i < len(s); i++ {
		if s[i] == '\n' {
			starts = append(starts, i+1)
		}
	}
	return starts
}

// ID returns the buffer's unique identifier.
func (b *Buffer) ID() string {
	return b.id
}

// Text returns the full buffer content.
func (b *Buffer) Text() string {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return b.text
}

// Len returns the content length in bytes.
func (b *Buffer) Len() ByteOffset {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return len(b.text)
}

// IsEmpty returns true if the buffer has no content.
func (b *Buffer) IsEmpty() bool {
	return b.Len() == 0
}

// LineCount returns the number of lines. An empty buffer has one line.
func (b *Buffer) LineCount() uint32 {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return uint32(len(b.lineStarts))
}

// LineText returns the content of a line without its newline.
func (b *Buffer) LineText(line uint32) string {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return lineText(b.text, b.lineStarts, line)
}

// LineStartOffset returns the offset of the first byte of a line.
func (b *Buffer) LineStartOffset(line uint32) ByteOffset {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return lineStart(b.text, b.lineStarts, line)
}

// LineEndOffset returns the offset of a line's newline, or the buffer end.
func (b *Buffer) LineEndOffset(line uint32) ByteOffset {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return lineEnd(b.text, b.lineStarts, line)
}

// OffsetToPoint converts a byte offset to a point, clamping to the buffer.
func (b *Buffer) OffsetToPoint(offset ByteOffset) Point {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return offsetToPoint(b.text, b.lineStarts, offset)
}

// PointToOffset converts a point to a byte offset, clamping to the buffer.
func (b *Buffer) PointToOffset(p Point) ByteOffset {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return pointToOffset(b.text, b.lineStarts, p)
}

// Insert inserts text at offset and returns the offset just past it.
func (b *Buffer) Insert(offset ByteOffset, text string) (ByteOffset, error) {
	return b.Replace(offset, offset, text)
}

// Delete removes the bytes in [start, end).
func (b *Buffer) Delete(start, end ByteOffset) error {
	_, err := b.Replace(start, end, "")
	return err
}

// Replace replaces [start, end) with text and returns the offset just past
// the inserted text.
func (b *Buffer) Replace(start, end ByteOffset, text string) (ByteOffset, error) {
	b.mu.Lock()
	defer b.mu.Unlock()

	if start > end {
		return 0, fmt.Errorf("%w: [%d, %d)", ErrInvalidRange, start, end)
	}
	if start < 0 || end > len(b.text) {
		return 0, fmt.Errorf("%w: [%d, %d) in buffer of %d bytes", ErrOffsetOutOfRange, start, end, len(b.text))
	}

	text = normalizeLineEndings(text)
	if start == end && text == "" {
		return start, nil
	}

	b.text = b.text[:start] + text + b.text[end:]
	b.lineStarts = indexLines(b.text)
	b.revisionID = NewRevisionID()
	return start + len(text), nil
}

// SetText replaces the whole content.
func (b *Buffer) SetText(s string) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.text = normalizeLineEndings(s)
	b.lineStarts = indexLines(b.text)
	b.revisionID = NewRevisionID()
}

// RevisionID returns the current revision.
func (b *Buffer) RevisionID() RevisionID {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return b.revisionID
}

// TabWidth returns the display tab width.
func (b *Buffer) TabWidth() int {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return b.tabWidth
}

// SetTabWidth sets the display tab width. Non-positive widths are ignored.
func (b *Buffer) SetTabWidth(width int) {
	if width <= 0 {
		return
	}
	b.mu.Lock()
	b.tabWidth = width
	b.mu.Unlock()
}

// IndentUnit returns the tab width; it lets a Buffer act as a decorated
// document.
func (b *Buffer) IndentUnit() int {
	return b.TabWidth()
}

// LanguageID returns the buffer's language identifier.
func (b *Buffer) LanguageID() string {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return b.language
}

// SetLanguageID changes the buffer's language identifier.
func (b *Buffer) SetLanguageID(id string) {
	b.mu.Lock()
	b.language = id
	b.mu.Unlock()
}

// Path returns the file path the buffer is associated with.
func (b *Buffer) Path() string {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return b.path
}

// SetPath associates the buffer with a file path.
func (b *Buffer) SetPath(path string) {
	b.mu.Lock()
	b.path = path
	b.mu.Unlock()
}

// Snapshot returns an immutable view of the current state.
func (b *Buffer) Snapshot() *Snapshot {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return &Snapshot{
		text:       b.text,
		lineStarts: b.lineStarts,
		revisionID: b.revisionID,
		tabWidth:   b.tabWidth,
		language:   b.language,
	}
}

// lineStarts slices are never mutated after creation, so snapshots may
// share them with the buffer.

func lineStart(text string, starts []int, line uint32) int {
	if int(line) >= len(starts) {
		return len(text)
	}
	return starts[line]
}

func lineEnd(text string, starts []int, line uint32) int {
	if int(line)+1 < len(starts) {
		return starts[line+1] - 1
	}
	return len(text)
}

func lineText(text string, starts []int, line uint32) string {
	if int(line) >= len(starts) {
		return ""
	}
	return text[lineStart(text, starts, line):lineEnd(text, starts, line)]
}

func offsetToPoint(text string, starts []int, offset int) Point {
	offset = max(0, min(offset, len(text)))
	// Index of the last line starting at or before offset.
	line := sort.SearchInts(starts, offset+1) - 1
	return Point{Line: uint32(line), Column: uint32(offset - starts[line])}
}

func pointToOffset(text string, starts []int, p Point) int {
	if int(p.Line) >= len(starts) {
		return len(text)
	}
	start := starts[p.Line]
	end := lineEnd(text, starts, p.Line)
	return min(start+int(p.Column), end)
}
