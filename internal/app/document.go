package app

import (
	"errors"
	"os"
	"path/filepath"
	"sync/atomic"

	"github.com/dshills/indentglow/internal/engine/buffer"
	"github.com/dshills/indentglow/internal/language"
)

// Document is an open file. It is the decorated document and the offset
// converter of the decoration layer at the same time: Text records the
// snapshot it read, and OffsetToPoint answers from that snapshot, so
// ranges are always converted against the text they were computed from.
type Document struct {
	// Path is the absolute file path (empty for scratch buffers).
	Path string

	// Name is the display name.
	Name string

	buf      *buffer.Buffer
	modified atomic.Bool
	last     atomic.Pointer[buffer.Snapshot]
}

// OpenDocument reads path into a new document. A missing file yields an
// empty document that will be created on save.
func OpenDocument(path string, registry *language.Registry, tabWidth int) (*Document, error) {
	abs, err := filepath.Abs(path)
	if err != nil {
		return nil, &FileError{Op: "open", Path: path, Err: err}
	}

	content, err := os.ReadFile(abs)
	if err != nil && !errors.Is(err, os.ErrNotExist) {
		return nil, &FileError{Op: "open", Path: abs, Err: err}
	}

	buf := buffer.NewBufferFromString(string(content),
		buffer.WithPath(abs),
		buffer.WithTabWidth(tabWidth),
		buffer.WithLanguage(registry.Detect(abs)),
	)
	return &Document{Path: abs, Name: filepath.Base(abs), buf: buf}, nil
}

// NewScratchDocument creates a document with no file.
func NewScratchDocument(text, languageID string, tabWidth int) *Document {
	buf := buffer.NewBufferFromString(text,
		buffer.WithTabWidth(tabWidth),
		buffer.WithLanguage(languageID),
	)
	return &Document{Name: "[scratch]", buf: buf}
}

// Buffer returns the underlying buffer.
func (d *Document) Buffer() *buffer.Buffer {
	return d.buf
}

// ID returns the buffer ID.
func (d *Document) ID() string {
	return d.buf.ID()
}

// LanguageID returns the document language.
func (d *Document) LanguageID() string {
	return d.buf.LanguageID()
}

// IndentUnit returns the current tab width.
func (d *Document) IndentUnit() int {
	return d.buf.TabWidth()
}

// Text snapshots the buffer and returns the snapshot's text.
func (d *Document) Text() string {
	snap := d.buf.Snapshot()
	d.last.Store(snap)
	return snap.Text()
}

// OffsetToPoint converts an offset using the text last returned by Text.
func (d *Document) OffsetToPoint(offset buffer.ByteOffset) buffer.Point {
	if snap := d.last.Load(); snap != nil {
		return snap.OffsetToPoint(offset)
	}
	return d.buf.OffsetToPoint(offset)
}

// IsScratch returns true if the document has no file path.
func (d *Document) IsScratch() bool {
	return d.Path == ""
}

// IsModified returns true if the document has unsaved changes.
func (d *Document) IsModified() bool {
	return d.modified.Load()
}

// SetModified sets the modified flag.
func (d *Document) SetModified(modified bool) {
	d.modified.Store(modified)
}

// Save writes the buffer to its file.
func (d *Document) Save() error {
	if d.IsScratch() {
		return ErrNoFilePath
	}
	if err := os.WriteFile(d.Path, []byte(d.buf.Text()), 0o644); err != nil {
		return &FileError{Op: "save", Path: d.Path, Err: err}
	}
	d.SetModified(false)
	return nil
}
