// Package decorator connects the indentation computation to a host editor.
//
// The host supplies the active Document and a Sink that paints ranges. The
// Decorator decides when to recompute: every trigger (the active document
// changed, or its text changed) schedules a debounced update, and only the
// last trigger in a burst results in a computation.
package decorator

import (
	"sync"
	"sync/atomic"
	"time"

	"github.com/dshills/indentglow/internal/debounce"
	"github.com/dshills/indentglow/internal/indent"
	"github.com/dshills/indentglow/internal/logging"
)

const (
	// DefaultLanguage is the language ID decorations are computed for.
	DefaultLanguage = "rivet"

	// DefaultDelay is the quiet period between a trigger and the update.
	DefaultDelay = 50 * time.Millisecond
)

// Document is the host's view of an open document.
//
// Implementations are compared with ==, so they must be comparable
// (pointer types are the usual choice).
type Document interface {
	// LanguageID identifies the document type.
	LanguageID() string
	// Text returns the current full text.
	Text() string
	// IndentUnit returns the current display tab width. Non-positive
	// values are replaced with indent.DefaultUnit.
	IndentUnit() int
}

// Sink renders decorations.
type Sink interface {
	// Render replaces every range previously rendered for colorIndex.
	Render(colorIndex int, ranges []indent.Range)
}

// SinkFunc adapts a function to the Sink interface.
type SinkFunc func(colorIndex int, ranges []indent.Range)

// Render calls f.
func (f SinkFunc) Render(colorIndex int, ranges []indent.Range) {
	f(colorIndex, ranges)
}

// Stats reports decorator activity.
type Stats struct {
	// Updates is the number of computations that reached the sink.
	Updates uint64
	// Skipped is the number of updates with no active document or a
	// document of another language.
	Skipped uint64
	// LastRanges is the number of ranges produced by the last update.
	LastRanges int
}

// Decorator owns the active document and the pending-update slot.
type Decorator struct {
	mu       sync.Mutex
	active   Document
	language string

	sink     Sink
	renderMu sync.Mutex
	debounce *debounce.Debouncer
	logger   *logging.Logger

	updates    atomic.Uint64
	skipped    atomic.Uint64
	lastRanges atomic.Int64
}

// Option configures a Decorator.
type Option func(*Decorator)

// WithLanguage sets the recognised language ID.
func WithLanguage(id string) Option {
	return func(d *Decorator) {
		if id != "" {
			d.language = id
		}
	}
}

// WithDelay sets the debounce delay.
func WithDelay(delay time.Duration) Option {
	return func(d *Decorator) {
		d.debounce.SetDelay(delay)
	}
}

// WithLogger sets the logger.
func WithLogger(l *logging.Logger) Option {
	return func(d *Decorator) {
		if l != nil {
			d.logger = l
		}
	}
}

// New creates a decorator that paints into sink.
func New(sink Sink, opts ...Option) *Decorator {
	d := &Decorator{
		language: DefaultLanguage,
		sink:     sink,
		logger:   logging.Discard(),
	}
	d.debounce = debounce.New(DefaultDelay, d.Update)

	for _, opt := range opts {
		opt(d)
	}
	d.logger = d.logger.WithComponent("decorator")
	return d
}

// Language returns the recognised language ID.
func (d *Decorator) Language() string {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.language
}

// SetLanguage changes the recognised language ID.
func (d *Decorator) SetLanguage(id string) {
	if id == "" {
		return
	}
	d.mu.Lock()
	d.language = id
	d.mu.Unlock()
}

// SetDelay changes the debounce delay for later triggers.
func (d *Decorator) SetDelay(delay time.Duration) {
	d.debounce.SetDelay(delay)
}

// Active returns the active document, or nil.
func (d *Decorator) Active() Document {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.active
}

// SetActive records a change of the focused document and schedules an
// update. Passing nil clears the active document and drops any pending
// update.
func (d *Decorator) SetActive(doc Document) {
	d.mu.Lock()
	d.active = doc
	d.mu.Unlock()

	if doc == nil {
		d.debounce.Cancel()
		return
	}
	d.Trigger()
}

// DocumentChanged schedules an update if doc is the active document.
// It reports whether an update was scheduled.
func (d *Decorator) DocumentChanged(doc Document) bool {
	d.mu.Lock()
	isActive := doc != nil && doc == d.active
	d.mu.Unlock()

	if !isActive {
		return false
	}
	d.Trigger()
	return true
}

// Trigger schedules a debounced update, replacing any pending one.
func (d *Decorator) Trigger() {
	d.debounce.Call()
}

// Pending reports whether an update is scheduled.
func (d *Decorator) Pending() bool {
	return d.debounce.IsPending()
}

// Flush runs a pending update now. It returns false if none was pending.
func (d *Decorator) Flush() bool {
	return d.debounce.Flush()
}

// Update recomputes decorations for the active document and renders all
// colour slots. It does nothing when there is no active document or the
// document has a different language.
func (d *Decorator) Update() {
	d.mu.Lock()
	doc := d.active
	language := d.language
	d.mu.Unlock()

	if doc == nil {
		d.skipped.Add(1)
		return
	}
	if doc.LanguageID() != language {
		d.skipped.Add(1)
		d.logger.Debug("skipping document with language %q", doc.LanguageID())
		return
	}

	unit := indent.ResolveUnit(doc.IndentUnit())
	buckets := indent.Compute(doc.Text(), unit)

	d.renderMu.Lock()
	for i := 0; i < indent.PaletteSize; i++ {
		d.sink.Render(i, buckets[i])
	}
	d.renderMu.Unlock()

	total := buckets.Total()
	d.lastRanges.Store(int64(total))
	d.updates.Add(1)
	d.logger.Debug("rendered %d ranges with unit %d", total, unit)
}

// Stats returns activity counters.
func (d *Decorator) Stats() Stats {
	return Stats{
		Updates:    d.updates.Load(),
		Skipped:    d.skipped.Load(),
		LastRanges: int(d.lastRanges.Load()),
	}
}

// Close drops any pending update and the active document.
func (d *Decorator) Close() {
	d.debounce.Cancel()
	d.mu.Lock()
	d.active = nil
	d.mu.Unlock()
}
