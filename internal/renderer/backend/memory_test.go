package backend

import (
	"testing"

	"github.com/dshills/indentglow/internal/renderer/core"
)

func TestMemoryBackendCells(t *testing.T) {
	b := NewMemoryBackend(5, 2)
	if w, h := b.Size(); w != 5 || h != 2 {
		t.Fatalf("Size = %d,%d", w, h)
	}

	b.SetCell(0, 0, core.NewStyledCell('h', core.DefaultStyle()))
	b.SetCell(1, 0, core.NewStyledCell('i', core.DefaultStyle()))
	b.SetCell(9, 9, core.NewStyledCell('x', core.DefaultStyle()))

	if got := b.Row(0); got != "hi" {
		t.Errorf("Row(0) = %q", got)
	}
	if got := b.GetCell(9, 9); got.Rune != ' ' {
		t.Errorf("out of range GetCell = %q", got.Rune)
	}

	b.Clear()
	if got := b.Row(0); got != "" {
		t.Errorf("Row(0) after Clear = %q", got)
	}
}

func TestMemoryBackendEvents(t *testing.T) {
	b := NewMemoryBackend(5, 2)
	b.PostEvent(Event{Type: EventKey, Key: KeyRune, Rune: 'a'})
	ev := b.PollEvent()
	if ev.Type != EventKey || ev.Rune != 'a' {
		t.Errorf("PollEvent = %+v", ev)
	}

	b.Resize(8, 3)
	ev = b.PollEvent()
	if ev.Type != EventResize || ev.Width != 8 || ev.Height != 3 {
		t.Errorf("resize event = %+v", ev)
	}
	if w, h := b.Size(); w != 8 || h != 3 {
		t.Errorf("Size after resize = %d,%d", w, h)
	}
}

func TestMemoryBackendCursor(t *testing.T) {
	b := NewMemoryBackend(5, 2)
	b.ShowCursor(2, 1)
	if x, y, v := b.CursorPosition(); x != 2 || y != 1 || !v {
		t.Errorf("cursor = %d,%d,%v", x, y, v)
	}
	b.HideCursor()
	if _, _, v := b.CursorPosition(); v {
		t.Error("cursor should be hidden")
	}
}
