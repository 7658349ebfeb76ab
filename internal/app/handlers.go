package app

import (
	"errors"
	"unicode/utf8"

	"github.com/dshills/indentglow/internal/engine/buffer"
	"github.com/dshills/indentglow/internal/event"
	"github.com/dshills/indentglow/internal/renderer/backend"
)

// handleBackendEvent processes a backend event. It returns ErrQuit when
// the application should exit.
func (app *Application) handleBackendEvent(ev backend.Event) error {
	switch ev.Type {
	case backend.EventKey:
		return app.handleKeyEvent(ev)
	case backend.EventResize:
		app.decorator.Trigger()
	case backend.EventFocus:
		if ev.Focused {
			app.activate()
		}
	}
	return nil
}

// handleKeyEvent applies the editing commands.
func (app *Application) handleKeyEvent(ev backend.Event) error {
	if ev.Key != backend.KeyCtrlQ {
		app.quitArmed = false
	}

	switch ev.Key {
	case backend.KeyCtrlQ:
		return app.quit()
	case backend.KeyCtrlS:
		return app.save()
	case backend.KeyRune:
		return app.insert(string(ev.Rune))
	case backend.KeyEnter:
		return app.insert("\n")
	case backend.KeyTab:
		return app.insert("\t")
	case backend.KeyBackspace:
		return app.backspace()
	case backend.KeyDelete:
		return app.deleteForward()
	case backend.KeyLeft:
		app.moveHorizontal(-1)
	case backend.KeyRight:
		app.moveHorizontal(1)
	case backend.KeyUp:
		app.moveVertical(-1)
	case backend.KeyDown:
		app.moveVertical(1)
	case backend.KeyPageUp:
		app.moveVertical(-app.pageSize())
	case backend.KeyPageDown:
		app.moveVertical(app.pageSize())
	case backend.KeyHome:
		app.setCursor(app.cursorLine, 0)
	case backend.KeyEnd:
		buf := app.doc.Buffer()
		app.setCursor(app.cursorLine, uint32(len(buf.LineText(app.cursorLine))))
	}
	return nil
}

func (app *Application) cursorOffset() buffer.ByteOffset {
	return app.doc.Buffer().PointToOffset(buffer.Point{Line: app.cursorLine, Column: app.cursorCol})
}

func (app *Application) setCursor(line, col uint32) {
	app.mu.Lock()
	app.cursorLine, app.cursorCol = line, col
	app.mu.Unlock()
}

func (app *Application) setCursorOffset(offset buffer.ByteOffset) {
	p := app.doc.Buffer().OffsetToPoint(offset)
	app.setCursor(p.Line, p.Column)
}

// Cursor returns the cursor line and byte column.
func (app *Application) Cursor() (line, col uint32) {
	app.mu.Lock()
	defer app.mu.Unlock()
	return app.cursorLine, app.cursorCol
}

func (app *Application) insert(text string) error {
	end, err := app.doc.Buffer().Insert(app.cursorOffset(), text)
	if err != nil {
		return err
	}
	app.setCursorOffset(end)
	app.changed()
	return nil
}

func (app *Application) backspace() error {
	offset := app.cursorOffset()
	if offset == 0 {
		return nil
	}
	text := app.doc.Buffer().Text()
	_, size := utf8.DecodeLastRuneInString(text[:offset])
	if err := app.doc.Buffer().Delete(offset-size, offset); err != nil {
		return err
	}
	app.setCursorOffset(offset - size)
	app.changed()
	return nil
}

func (app *Application) deleteForward() error {
	offset := app.cursorOffset()
	text := app.doc.Buffer().Text()
	if offset >= len(text) {
		return nil
	}
	_, size := utf8.DecodeRuneInString(text[offset:])
	if err := app.doc.Buffer().Delete(offset, offset+size); err != nil {
		return err
	}
	app.changed()
	return nil
}

// changed marks the document modified and announces the edit.
func (app *Application) changed() {
	app.doc.SetModified(true)
	buf := app.doc.Buffer()
	app.publish(event.TopicBufferChanged, event.BufferChanged{
		BufferID: buf.ID(),
		Revision: uint64(buf.RevisionID()),
	})
}

func (app *Application) moveHorizontal(dir int) {
	buf := app.doc.Buffer()
	text := buf.Text()
	offset := app.cursorOffset()

	switch {
	case dir < 0 && offset > 0:
		_, size := utf8.DecodeLastRuneInString(text[:offset])
		offset -= size
	case dir > 0 && offset < len(text):
		_, size := utf8.DecodeRuneInString(text[offset:])
		offset += size
	}
	app.setCursorOffset(offset)
}

func (app *Application) moveVertical(delta int) {
	buf := app.doc.Buffer()
	line := int(app.cursorLine) + delta
	line = max(0, min(line, int(buf.LineCount())-1))

	text := buf.LineText(uint32(line))
	col := min(int(app.cursorCol), len(text))
	for col > 0 && col < len(text) && !utf8.RuneStart(text[col]) {
		col--
	}
	app.setCursor(uint32(line), uint32(col))
}

func (app *Application) pageSize() int {
	if app.view == nil {
		return 1
	}
	// Keep one line of context when paging.
	return max(1, app.view.TextArea().Height()-1)
}

func (app *Application) save() error {
	if err := app.doc.Save(); err != nil {
		if errors.Is(err, ErrNoFilePath) {
			app.setMessage("scratch buffer has no file")
			return nil
		}
		return err
	}
	app.logger.Info("saved %s", app.doc.Path)
	app.setMessage("saved " + app.doc.Name)
	return nil
}

// quit exits, asking for a second Ctrl-Q when there are unsaved changes.
func (app *Application) quit() error {
	if app.doc.IsModified() && !app.quitArmed {
		app.quitArmed = true
		app.setMessage(ErrUnsavedChanges.Error() + ", press Ctrl-Q again to quit")
		return nil
	}
	return ErrQuit
}
