package core

import "testing"

func TestColorFromHex(t *testing.T) {
	c, err := ColorFromHex("#1e1e1e")
	if err != nil {
		t.Fatalf("ColorFromHex() error = %v", err)
	}
	if !c.Equals(ColorFromRGB(30, 30, 30)) {
		t.Errorf("ColorFromHex() = %v", c)
	}
	if c.String() != "#1E1E1E" {
		t.Errorf("String() = %q", c.String())
	}

	if _, err := ColorFromHex("nope"); err == nil {
		t.Error("ColorFromHex(nope) expected error")
	}
}

func TestColorEquals(t *testing.T) {
	if !ColorDefault.Equals(Color{Default: true, R: 9}) {
		t.Error("default colors should be equal regardless of RGB")
	}
	if ColorDefault.Equals(ColorFromRGB(0, 0, 0)) {
		t.Error("default should not equal black")
	}
	if ColorDefault.String() != "default" {
		t.Errorf("String() = %q", ColorDefault.String())
	}
}

func TestStyleMerge(t *testing.T) {
	base := DefaultStyle().WithForeground(ColorFromRGB(200, 200, 200))
	overlay := Style{Foreground: ColorDefault, Background: ColorFromRGB(1, 2, 3), Attributes: AttrBold}

	got := base.Merge(overlay)
	if !got.Foreground.Equals(ColorFromRGB(200, 200, 200)) {
		t.Errorf("Merge() foreground = %v", got.Foreground)
	}
	if !got.Background.Equals(ColorFromRGB(1, 2, 3)) {
		t.Errorf("Merge() background = %v", got.Background)
	}
	if !got.Attributes.Has(AttrBold) {
		t.Error("Merge() lost bold")
	}
}

func TestCells(t *testing.T) {
	if NewStyledCell('a', DefaultStyle()).Width != 1 {
		t.Error("ASCII width should be 1")
	}
	if NewStyledCell('世', DefaultStyle()).Width != 2 {
		t.Error("CJK width should be 2")
	}
	if RuneWidth('\t') != 0 {
		t.Error("control width should be 0")
	}
	if !ContinuationCell(DefaultStyle()).IsContinuation() {
		t.Error("ContinuationCell() is not a continuation")
	}
	if !EmptyCell().Equals(Cell{Rune: ' ', Width: 1, Style: DefaultStyle()}) {
		t.Error("EmptyCell() mismatch")
	}
}

func TestScreenRectAndSpan(t *testing.T) {
	r := RectFromSize(1, 2, 3, 4)
	if r.Width() != 4 || r.Height() != 3 {
		t.Errorf("rect size = %dx%d", r.Width(), r.Height())
	}
	s := StyleSpan{StartCol: 2, EndCol: 5}
	if s.Len() != 3 || !s.Contains(2) || s.Contains(5) {
		t.Error("StyleSpan bounds broken")
	}
}
