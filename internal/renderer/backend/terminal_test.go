package backend

import (
	"testing"

	"github.com/gdamore/tcell/v2"

	"github.com/dshills/indentglow/internal/renderer/core"
)

func TestConvertStyleRoundTrip(t *testing.T) {
	s := core.Style{
		Foreground: core.ColorFromRGB(10, 20, 30),
		Background: core.ColorFromRGB(200, 100, 50),
		Attributes: core.AttrBold | core.AttrReverse,
	}
	got := convertTcellStyle(convertStyle(s))
	if !got.Equals(s) {
		t.Errorf("round trip = %+v, want %+v", got, s)
	}

	def := convertTcellStyle(convertStyle(core.DefaultStyle()))
	if !def.Foreground.IsDefault() || !def.Background.IsDefault() {
		t.Errorf("default style round trip = %+v", def)
	}
}

func TestConvertEvent(t *testing.T) {
	tests := []struct {
		name string
		ev   tcell.Event
		want Event
	}{
		{"rune", tcell.NewEventKey(tcell.KeyRune, 'x', tcell.ModNone), Event{Type: EventKey, Key: KeyRune, Rune: 'x'}},
		{"ctrl-s", tcell.NewEventKey(tcell.KeyCtrlS, 0, tcell.ModCtrl), Event{Type: EventKey, Key: KeyCtrlS, Mod: ModCtrl}},
		{"resize", tcell.NewEventResize(80, 24), Event{Type: EventResize, Width: 80, Height: 24}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := convertEvent(tt.ev)
			if got.Type != tt.want.Type || got.Key != tt.want.Key || got.Width != tt.want.Width || got.Height != tt.want.Height {
				t.Errorf("convertEvent = %+v, want %+v", got, tt.want)
			}
			if tt.want.Type == EventKey && tt.want.Key == KeyRune && got.Rune != tt.want.Rune {
				t.Errorf("Rune = %q, want %q", got.Rune, tt.want.Rune)
			}
		})
	}
}

func TestSimulationTerminal(t *testing.T) {
	screen := tcell.NewSimulationScreen("UTF-8")
	term := newTerminalWithScreen(screen)
	if err := term.Init(); err != nil {
		t.Fatalf("Init: %v", err)
	}
	defer term.Shutdown()
	screen.SetSize(10, 2)

	red := core.DefaultStyle().WithBackground(core.ColorFromRGB(255, 0, 0))
	term.SetCell(1, 0, core.NewStyledCell('z', red))
	term.Show()

	got := term.GetCell(1, 0)
	if got.Rune != 'z' {
		t.Errorf("GetCell rune = %q", got.Rune)
	}
	if !got.Style.Background.Equals(red.Background) {
		t.Errorf("GetCell background = %v", got.Style.Background)
	}

	term.PostEvent(Event{Type: EventInterrupt, Data: "redraw"})
	// The simulation screen may queue a resize first.
	for i := 0; i < 5; i++ {
		ev := term.PollEvent()
		if ev.Type == EventInterrupt {
			if ev.Data != "redraw" {
				t.Errorf("interrupt data = %v", ev.Data)
			}
			return
		}
	}
	t.Error("interrupt event not delivered")
}
