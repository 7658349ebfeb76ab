package app

import (
	"context"

	"github.com/dshills/indentglow/internal/event"
)

// subscribe connects bus topics to the decorator.
func (app *Application) subscribe() error {
	handlers := map[event.Topic]event.HandlerFunc{
		event.TopicBufferChanged:   app.onBufferChanged,
		event.TopicEditorActivated: app.onEditorActivated,
		event.TopicConfigReloaded:  app.onConfigReloaded,
	}
	for topic, fn := range handlers {
		sub, err := app.bus.Subscribe(topic, fn)
		if err != nil {
			return err
		}
		app.subs = append(app.subs, sub)
	}
	return nil
}

func (app *Application) onBufferChanged(_ context.Context, ev event.Event) error {
	payload, ok := ev.Payload.(event.BufferChanged)
	if !ok {
		return nil
	}
	doc := app.Document()
	if doc == nil || doc.ID() != payload.BufferID {
		return nil
	}
	app.decorator.DocumentChanged(doc)
	return nil
}

func (app *Application) onEditorActivated(_ context.Context, ev event.Event) error {
	payload, ok := ev.Payload.(event.EditorActivated)
	if !ok {
		return nil
	}
	doc := app.Document()
	if doc == nil || doc.ID() != payload.BufferID {
		return nil
	}
	if app.decorator.Active() != doc {
		app.layer.SetPositioner(doc)
	}
	app.decorator.SetActive(doc)
	return nil
}

func (app *Application) onConfigReloaded(_ context.Context, _ event.Event) error {
	if app.watcher == nil {
		return nil
	}
	app.applyConfig(app.watcher.Current())
	return nil
}
