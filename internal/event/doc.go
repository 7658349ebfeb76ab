// Package event provides the editor's synchronous publish/subscribe bus.
//
// Topics are dot-separated ("buffer.changed"). Subscriptions may use the
// wildcards "*" (exactly one segment) and "**" (zero or more trailing
// segments):
//
//	bus := event.NewBus()
//	bus.Subscribe("buffer.*", func(ctx context.Context, ev event.Event) error {
//	    ...
//	})
//	bus.Publish(ctx, event.New(event.TopicBufferChanged, event.BufferChanged{...}, "app"))
//
// Handlers run on the publishing goroutine in subscription order. A handler
// error or panic does not stop delivery to the remaining handlers; all
// failures are joined into the error returned by Publish.
package event
