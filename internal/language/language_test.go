package language

import (
	"sort"
	"testing"
)

func TestDetect(t *testing.T) {
	r := NewRegistry()
	tests := []struct {
		path string
		want string
	}{
		{"main.rv", Rivet},
		{"/src/Robot.RV", Rivet},
		{"main.go", "go"},
		{"README", PlainText},
		{"notes.txt", PlainText},
	}
	for _, tt := range tests {
		if got := r.Detect(tt.path); got != tt.want {
			t.Errorf("Detect(%q) = %q, want %q", tt.path, got, tt.want)
		}
	}
}

func TestRegister(t *testing.T) {
	r := NewRegistry()
	r.Register("rvt", Rivet)
	r.Register(".TXT", "text")
	r.Register("", "ignored")
	r.Register(".x", "")

	if got := r.Detect("a.rvt"); got != Rivet {
		t.Errorf("Detect(a.rvt) = %q", got)
	}
	if got := r.Detect("a.txt"); got != "text" {
		t.Errorf("Detect(a.txt) = %q", got)
	}
	if _, ok := r.Lookup(".x"); ok {
		t.Error("Lookup(.x) found a mapping with empty id")
	}

	exts := r.Extensions(Rivet)
	sort.Strings(exts)
	if len(exts) != 2 || exts[0] != ".rv" || exts[1] != ".rvt" {
		t.Errorf("Extensions(rivet) = %v", exts)
	}
}

func TestRegistriesAreIndependent(t *testing.T) {
	a := NewRegistry()
	b := NewRegistry()
	a.Register(".rv", "other")
	if b.Detect("x.rv") != Rivet {
		t.Error("Register on one registry leaked into another")
	}
}
