// Package decoration keeps the rainbow indentation ranges of the active
// document and serves them to the view as per-line style spans.
package decoration

import (
	"math"
	"sort"
	"sync"

	"github.com/dshills/indentglow/internal/engine/buffer"
	"github.com/dshills/indentglow/internal/indent"
	"github.com/dshills/indentglow/internal/renderer/core"
)

// Positioner converts byte offsets into line/column points.
type Positioner interface {
	OffsetToPoint(offset buffer.ByteOffset) buffer.Point
}

// span is one colour slot's extent on a single line, in byte columns.
type span struct {
	start, end uint32
	color      int
}

// Layer implements decorator.Sink. Every Render call replaces the ranges
// of one colour slot.
type Layer struct {
	mu         sync.RWMutex
	positioner Positioner
	palette    indent.Palette
	background core.Color
	fills      [indent.PaletteSize]core.Color

	ranges [indent.PaletteSize][]indent.Range
	lines  [indent.PaletteSize]map[uint32][]span

	onChange func(colorIndex int)
}

// DefaultBackground is composited under the palette when no theme
// background is configured.
var DefaultBackground = core.ColorFromRGB(0x1e, 0x1e, 0x1e)

// NewLayer creates a layer using the default palette.
func NewLayer(pos Positioner) *Layer {
	l := &Layer{
		positioner: pos,
		palette:    indent.DefaultPalette(),
		background: DefaultBackground,
	}
	l.recomputeFills()
	return l
}

// SetPositioner changes the offset converter. Existing ranges are dropped
// because they belong to the previous document.
func (l *Layer) SetPositioner(pos Positioner) {
	l.mu.Lock()
	l.positioner = pos
	for i := range l.ranges {
		l.ranges[i] = nil
		l.lines[i] = nil
	}
	l.mu.Unlock()
	l.notify(-1)
}

// SetPalette replaces the palette used for span backgrounds.
func (l *Layer) SetPalette(p indent.Palette) {
	l.mu.Lock()
	l.palette = p
	l.recomputeFills()
	l.mu.Unlock()
	l.notify(-1)
}

// Palette returns the current palette.
func (l *Layer) Palette() indent.Palette {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return l.palette
}

// SetBackground sets the colour the palette is composited onto.
// The default colour selects DefaultBackground.
func (l *Layer) SetBackground(bg core.Color) {
	if bg.IsDefault() {
		bg = DefaultBackground
	}
	l.mu.Lock()
	l.background = bg
	l.recomputeFills()
	l.mu.Unlock()
	l.notify(-1)
}

// OnChange registers a callback run after every change, outside the lock.
// colorIndex is -1 when every slot is affected.
func (l *Layer) OnChange(fn func(colorIndex int)) {
	l.mu.Lock()
	l.onChange = fn
	l.mu.Unlock()
}

// Render replaces the ranges of one colour slot. Out-of-range indexes are
// ignored.
func (l *Layer) Render(colorIndex int, ranges []indent.Range) {
	if colorIndex < 0 || colorIndex >= indent.PaletteSize {
		return
	}

	l.mu.Lock()
	l.ranges[colorIndex] = append([]indent.Range(nil), ranges...)
	l.lines[colorIndex] = l.splitLines(colorIndex, ranges)
	l.mu.Unlock()

	l.notify(colorIndex)
}

// Clear removes every range.
func (l *Layer) Clear() {
	l.mu.Lock()
	for i := range l.ranges {
		l.ranges[i] = nil
		l.lines[i] = nil
	}
	l.mu.Unlock()
	l.notify(-1)
}

// Ranges returns a copy of the ranges last rendered for colorIndex.
func (l *Layer) Ranges(colorIndex int) []indent.Range {
	if colorIndex < 0 || colorIndex >= indent.PaletteSize {
		return nil
	}
	l.mu.RLock()
	defer l.mu.RUnlock()
	return append([]indent.Range(nil), l.ranges[colorIndex]...)
}

// SpansForLine returns the decoration spans of a line sorted by start
// column. Columns are byte columns within the line.
func (l *Layer) SpansForLine(line uint32) []core.StyleSpan {
	l.mu.RLock()
	defer l.mu.RUnlock()

	var spans []core.StyleSpan
	for i := range l.lines {
		for _, s := range l.lines[i][line] {
			spans = append(spans, core.StyleSpan{
				StartCol: s.start,
				EndCol:   s.end,
				Style:    core.DefaultStyle().WithBackground(l.fills[s.color]),
			})
		}
	}
	sort.Slice(spans, func(a, b int) bool {
		return spans[a].StartCol < spans[b].StartCol
	})
	return spans
}

// FillColor returns the solid background for a colour slot. Indexes past
// the palette wrap like depths do.
func (l *Layer) FillColor(colorIndex int) core.Color {
	l.mu.RLock()
	defer l.mu.RUnlock()
	if colorIndex < 0 {
		return l.background
	}
	return l.fills[indent.DepthColor(colorIndex)]
}

func (l *Layer) splitLines(colorIndex int, ranges []indent.Range) map[uint32][]span {
	if len(ranges) == 0 || l.positioner == nil {
		return nil
	}
	out := make(map[uint32][]span)
	for _, r := range ranges {
		if r.IsEmpty() {
			continue
		}
		start := l.positioner.OffsetToPoint(r.Start)
		end := l.positioner.OffsetToPoint(r.End)
		for line := start.Line; line <= end.Line; line++ {
			s := span{start: 0, end: math.MaxUint32, color: colorIndex}
			if line == start.Line {
				s.start = start.Column
			}
			if line == end.Line {
				s.end = end.Column
			}
			if s.end > s.start {
				out[line] = append(out[line], s)
			}
		}
	}
	return out
}

// recomputeFills must be called with mu held.
func (l *Layer) recomputeFills() {
	for i, c := range l.palette {
		r, g, b := c.Over(l.background.R, l.background.G, l.background.B)
		l.fills[i] = core.ColorFromRGB(r, g, b)
	}
}

func (l *Layer) notify(colorIndex int) {
	l.mu.RLock()
	fn := l.onChange
	l.mu.RUnlock()
	if fn != nil {
		fn(colorIndex)
	}
}
