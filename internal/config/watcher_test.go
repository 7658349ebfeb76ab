package config

import (
	"context"
	"os"
	"sync/atomic"
	"testing"
	"time"

	"github.com/dshills/indentglow/internal/event"
)

func TestWatcherReload(t *testing.T) {
	path := writeConfig(t, "[editor]\ntab_size = 2\n")
	bus := event.NewBus()
	var published atomic.Int32
	if _, err := bus.Subscribe(event.TopicConfigReloaded, func(ctx context.Context, ev event.Event) error {
		published.Add(1)
		return nil
	}); err != nil {
		t.Fatalf("Subscribe: %v", err)
	}

	w, err := NewWatcher(path, nil, WithBus(bus), WithEnv(MapEnv(nil)))
	if err != nil {
		t.Fatalf("NewWatcher: %v", err)
	}
	defer w.Stop()

	if err := w.Reload(context.Background()); err != nil {
		t.Fatalf("Reload: %v", err)
	}
	if w.Current().TabSize() != 2 {
		t.Errorf("TabSize = %d, want 2", w.Current().TabSize())
	}
	if published.Load() != 1 {
		t.Errorf("published = %d, want 1", published.Load())
	}
}

func TestWatcherKeepsPreviousOnError(t *testing.T) {
	path := writeConfig(t, "[editor]\ntab_size = 2\n")
	w, err := NewWatcher(path, nil, WithEnv(MapEnv(nil)))
	if err != nil {
		t.Fatalf("NewWatcher: %v", err)
	}
	defer w.Stop()
	if err := w.Reload(context.Background()); err != nil {
		t.Fatalf("Reload: %v", err)
	}

	if err := os.WriteFile(path, []byte("[editor\n"), 0o644); err != nil {
		t.Fatal(err)
	}
	if err := w.Reload(context.Background()); err == nil {
		t.Fatal("Reload should fail")
	}
	if w.Current().TabSize() != 2 || w.Reloads() != 1 {
		t.Errorf("TabSize = %d reloads = %d", w.Current().TabSize(), w.Reloads())
	}
}

func TestWatcherDetectsWrite(t *testing.T) {
	path := writeConfig(t, "[editor]\ntab_size = 2\n")
	w, err := NewWatcher(path, nil, WithDebounce(10*time.Millisecond), WithEnv(MapEnv(nil)))
	if err != nil {
		t.Fatalf("NewWatcher: %v", err)
	}
	if err := w.Start(); err != nil {
		t.Fatalf("Start: %v", err)
	}
	defer w.Stop()

	if err := os.WriteFile(path, []byte("[editor]\ntab_size = 6\n"), 0o644); err != nil {
		t.Fatal(err)
	}

	deadline := time.Now().Add(2 * time.Second)
	for time.Now().Before(deadline) {
		if w.Current().TabSize() == 6 {
			return
		}
		time.Sleep(10 * time.Millisecond)
	}
	t.Errorf("TabSize = %d after write, want 6", w.Current().TabSize())
}

func TestWatcherStopIdempotent(t *testing.T) {
	w, err := NewWatcher(writeConfig(t, ""), nil)
	if err != nil {
		t.Fatalf("NewWatcher: %v", err)
	}
	if err := w.Start(); err != nil {
		t.Fatalf("Start: %v", err)
	}
	if err := w.Stop(); err != nil {
		t.Errorf("Stop: %v", err)
	}
	if err := w.Stop(); err != nil {
		t.Errorf("second Stop: %v", err)
	}
}
