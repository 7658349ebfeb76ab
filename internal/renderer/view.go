// Package renderer draws a buffer and its indentation decorations onto a
// terminal backend.
package renderer

import (
	"fmt"
	"sync"

	"github.com/dshills/indentglow/internal/indent"
	"github.com/dshills/indentglow/internal/renderer/backend"
	"github.com/dshills/indentglow/internal/renderer/core"
)

// BufferReader provides read access to buffer content.
type BufferReader interface {
	// LineText returns the text content of a line (0-indexed).
	LineText(line uint32) string

	// LineCount returns the total number of lines in the buffer.
	LineCount() uint32

	// TabWidth returns the configured tab width.
	TabWidth() int
}

// SpanProvider supplies background spans for a line. Span columns are
// byte columns within the line.
type SpanProvider interface {
	SpansForLine(line uint32) []core.StyleSpan
}

// Status is the content of the status line.
type Status struct {
	Filename string
	Language string
	Modified bool
	Message  string
}

// View renders a single buffer filling the backend, with an optional
// status line on the last row.
type View struct {
	mu sync.Mutex

	backend backend.Backend
	buf     BufferReader
	spans   SpanProvider

	topLine    uint32
	leftCol    int
	cursorLine uint32
	cursorCol  uint32

	status      Status
	showStatus  bool
	textStyle   core.Style
	statusStyle core.Style
	frames      uint64
}

// NewView creates a view drawing onto b.
func NewView(b backend.Backend) *View {
	return &View{
		backend:     b,
		showStatus:  true,
		textStyle:   core.DefaultStyle(),
		statusStyle: core.Style{Foreground: core.ColorDefault, Background: core.ColorDefault, Attributes: core.AttrReverse},
	}
}

// SetBuffer sets the buffer to display and resets scrolling.
func (v *View) SetBuffer(buf BufferReader) {
	v.mu.Lock()
	defer v.mu.Unlock()
	v.buf = buf
	v.topLine, v.leftCol = 0, 0
	v.cursorLine, v.cursorCol = 0, 0
}

// SetSpanProvider sets the decoration source.
func (v *View) SetSpanProvider(sp SpanProvider) {
	v.mu.Lock()
	defer v.mu.Unlock()
	v.spans = sp
}

// SetTextStyle sets the base style for buffer text.
func (v *View) SetTextStyle(s core.Style) {
	v.mu.Lock()
	defer v.mu.Unlock()
	v.textStyle = s
}

// SetShowStatus toggles the status line.
func (v *View) SetShowStatus(show bool) {
	v.mu.Lock()
	defer v.mu.Unlock()
	v.showStatus = show
}

// SetStatus replaces the status line content.
func (v *View) SetStatus(s Status) {
	v.mu.Lock()
	defer v.mu.Unlock()
	v.status = s
}

// SetCursor moves the cursor. col is a byte column.
func (v *View) SetCursor(line, col uint32) {
	v.mu.Lock()
	defer v.mu.Unlock()
	v.cursorLine, v.cursorCol = line, col
}

// Cursor returns the cursor position.
func (v *View) Cursor() (line, col uint32) {
	v.mu.Lock()
	defer v.mu.Unlock()
	return v.cursorLine, v.cursorCol
}

// TopLine returns the first visible line.
func (v *View) TopLine() uint32 {
	v.mu.Lock()
	defer v.mu.Unlock()
	return v.topLine
}

// FrameCount returns the number of frames rendered.
func (v *View) FrameCount() uint64 {
	v.mu.Lock()
	defer v.mu.Unlock()
	return v.frames
}

// TextArea returns the screen area used for buffer lines. The status
// line, when shown, takes the last row.
func (v *View) TextArea() core.ScreenRect {
	v.mu.Lock()
	defer v.mu.Unlock()
	return v.textArea()
}

func (v *View) textArea() core.ScreenRect {
	width, height := v.backend.Size()
	rows := height
	if v.showStatus && height > 1 {
		rows--
	}
	return core.RectFromSize(0, 0, rows, width)
}

// Render draws the whole screen and flushes it.
func (v *View) Render() {
	v.mu.Lock()
	defer v.mu.Unlock()

	width, height := v.backend.Size()
	if width <= 0 || height <= 0 {
		return
	}
	area := v.textArea()
	rows := area.Height()

	if v.buf == nil {
		v.backend.Clear()
		v.backend.HideCursor()
		v.backend.Show()
		return
	}

	tabWidth := v.buf.TabWidth()
	if tabWidth <= 0 {
		tabWidth = indent.DefaultUnit
	}
	v.scrollToCursor(rows, width, tabWidth)

	lineCount := v.buf.LineCount()
	for row := 0; row < rows; row++ {
		line := v.topLine + uint32(row)
		if line >= lineCount {
			v.renderFiller(row, width)
			continue
		}
		v.renderLine(line, row, width, tabWidth)
	}

	if rows < height {
		v.renderStatus(height-1, width)
	}
	v.renderCursor(rows, width, tabWidth)

	v.backend.Show()
	v.frames++
}

func (v *View) renderLine(line uint32, row, width, tabWidth int) {
	var spans []core.StyleSpan
	if v.spans != nil {
		spans = v.spans.SpansForLine(line)
	}
	cells, _ := LayoutLine(v.buf.LineText(line), tabWidth, spans, v.textStyle)

	empty := core.NewStyledCell(' ', v.textStyle)
	for x := 0; x < width; x++ {
		col := v.leftCol + x
		if col < len(cells) {
			v.backend.SetCell(x, row, cells[col])
		} else {
			v.backend.SetCell(x, row, empty)
		}
	}
}

func (v *View) renderFiller(row, width int) {
	dim := v.textStyle
	dim.Attributes |= core.AttrDim
	v.backend.SetCell(0, row, core.NewStyledCell('~', dim))
	empty := core.NewStyledCell(' ', v.textStyle)
	for x := 1; x < width; x++ {
		v.backend.SetCell(x, row, empty)
	}
}

func (v *View) renderStatus(row, width int) {
	name := v.status.Filename
	if name == "" {
		name = "[scratch]"
	}
	if v.status.Modified {
		name += " +"
	}
	left := fmt.Sprintf(" %s  %s", name, v.status.Language)
	right := fmt.Sprintf("Ln %d, Col %d ", v.cursorLine+1, v.cursorCol+1)
	if v.status.Message != "" {
		left += "  " + v.status.Message
	}

	x := 0
	for _, r := range left {
		if x >= width {
			break
		}
		c := core.NewStyledCell(r, v.statusStyle)
		v.backend.SetCell(x, row, c)
		x += max(1, c.Width)
	}
	start := width - len(right)
	for ; x < width; x++ {
		if x >= start && x > 0 {
			v.backend.SetCell(x, row, core.NewStyledCell(rune(right[x-start]), v.statusStyle))
			continue
		}
		v.backend.SetCell(x, row, core.NewStyledCell(' ', v.statusStyle))
	}
}

func (v *View) renderCursor(rows, width, tabWidth int) {
	if v.cursorLine < v.topLine || v.cursorLine >= v.topLine+uint32(rows) {
		v.backend.HideCursor()
		return
	}
	x := VisualColumn(v.buf.LineText(v.cursorLine), v.cursorCol, tabWidth) - v.leftCol
	if x < 0 || x >= width {
		v.backend.HideCursor()
		return
	}
	v.backend.ShowCursor(x, int(v.cursorLine-v.topLine))
}

// scrollToCursor must be called with mu held.
func (v *View) scrollToCursor(rows, width, tabWidth int) {
	if lc := v.buf.LineCount(); v.cursorLine >= lc && lc > 0 {
		v.cursorLine = lc - 1
	}
	if v.cursorLine < v.topLine {
		v.topLine = v.cursorLine
	}
	if rows > 0 && v.cursorLine >= v.topLine+uint32(rows) {
		v.topLine = v.cursorLine - uint32(rows) + 1
	}

	col := VisualColumn(v.buf.LineText(v.cursorLine), v.cursorCol, tabWidth)
	if col < v.leftCol {
		v.leftCol = col
	}
	if width > 0 && col >= v.leftCol+width {
		v.leftCol = col - width + 1
	}
}

// LayoutLine expands a line into screen cells. Tabs advance to the next
// multiple of tabWidth. The returned offsets slice maps each byte offset of
// text (plus len(text)) to its first cell. Every span covering a byte
// styles all cells that byte produces.
func LayoutLine(text string, tabWidth int, spans []core.StyleSpan, base core.Style) (cells []core.Cell, offsets []int) {
	if tabWidth <= 0 {
		tabWidth = indent.DefaultUnit
	}
	offsets = make([]int, len(text)+1)
	prev, runeCell := 0, 0
	for i, r := range text {
		for j := prev; j < i; j++ {
			offsets[j] = runeCell
		}
		runeCell = len(cells)
		offsets[i] = runeCell
		prev = i + 1

		style := base
		for _, s := range spans {
			if s.Contains(uint32(i)) {
				style = style.Merge(s.Style)
			}
		}

		if r == '\t' {
			n := tabWidth - len(cells)%tabWidth
			for k := 0; k < n; k++ {
				cells = append(cells, core.NewStyledCell(' ', style))
			}
			continue
		}

		c := core.NewStyledCell(r, style)
		if c.Width <= 0 {
			c = core.NewStyledCell('?', style)
		}
		cells = append(cells, c)
		if c.Width == 2 {
			cells = append(cells, core.ContinuationCell(style))
		}
	}
	for j := prev; j < len(text); j++ {
		offsets[j] = runeCell
	}
	offsets[len(text)] = len(cells)
	return cells, offsets
}

// VisualColumn returns the cell column of a byte column in text.
func VisualColumn(text string, byteCol uint32, tabWidth int) int {
	_, offsets := LayoutLine(text, tabWidth, nil, core.DefaultStyle())
	return offsets[min(int(byteCol), len(text))]
}
