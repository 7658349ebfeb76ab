package event

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"sync/atomic"

	"github.com/google/uuid"
)

// HandlerFunc handles a delivered event.
type HandlerFunc func(ctx context.Context, ev Event) error

// Subscription identifies a registered handler.
type Subscription struct {
	ID      string
	Pattern Topic
	handler HandlerFunc
}

// Stats reports bus activity.
type Stats struct {
	EventsPublished uint64
	EventsDelivered uint64
	HandlerErrors   uint64
	HandlerPanics   uint64
}

// Bus is a synchronous topic bus.
type Bus struct {
	mu   sync.RWMutex
	subs []*Subscription

	published atomic.Uint64
	delivered atomic.Uint64
	errs      atomic.Uint64
	panics    atomic.Uint64
}

// NewBus creates an empty bus.
func NewBus() *Bus {
	return &Bus{}
}

// Subscribe registers fn for every topic matching pattern.
func (b *Bus) Subscribe(pattern Topic, fn HandlerFunc) (*Subscription, error) {
	if err := pattern.Validate(); err != nil {
		return nil, fmt.Errorf("subscribing to %q: %w", pattern, err)
	}
	if fn == nil {
		return nil, ErrNilHandler
	}

	sub := &Subscription{
		ID:      uuid.New().String(),
		Pattern: pattern,
		handler: fn,
	}

	b.mu.Lock()
	b.subs = append(b.subs, sub)
	b.mu.Unlock()
	return sub, nil
}

// Unsubscribe removes a subscription.
func (b *Bus) Unsubscribe(sub *Subscription) error {
	if sub == nil {
		return ErrSubscriptionNotFound
	}

	b.mu.Lock()
	defer b.mu.Unlock()
	for i, s := range b.subs {
		if s.ID == sub.ID {
			b.subs = append(b.subs[:i:i], b.subs[i+1:]...)
			return nil
		}
	}
	return ErrSubscriptionNotFound
}

// SubscriptionCount returns the number of active subscriptions.
func (b *Bus) SubscriptionCount() int {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return len(b.subs)
}

// Publish delivers ev to every matching handler on the calling goroutine.
func (b *Bus) Publish(ctx context.Context, ev Event) error {
	if err := ev.Topic.Validate(); err != nil {
		return fmt.Errorf("publishing %q: %w", ev.Topic, err)
	}
	b.published.Add(1)

	b.mu.RLock()
	targets := make([]*Subscription, 0, len(b.subs))
	for _, s := range b.subs {
		if ev.Topic.Matches(s.Pattern) {
			targets = append(targets, s)
		}
	}
	b.mu.RUnlock()

	var errs []error
	for _, s := range targets {
		if err := ctx.Err(); err != nil {
			errs = append(errs, err)
			break
		}
		if err := b.deliver(ctx, s, ev); err != nil {
			errs = append(errs, &HandlerError{SubscriptionID: s.ID, Topic: ev.Topic, Err: err})
		}
	}
	return errors.Join(errs...)
}

func (b *Bus) deliver(ctx context.Context, s *Subscription, ev Event) (err error) {
	defer func() {
		if r := recover(); r != nil {
			b.panics.Add(1)
			err = fmt.Errorf("%w: %v", ErrHandlerPanic, r)
		}
	}()

	b.delivered.Add(1)
	if err := s.handler(ctx, ev); err != nil {
		b.errs.Add(1)
		return err
	}
	return nil
}

// Stats returns activity counters.
func (b *Bus) Stats() Stats {
	return Stats{
		EventsPublished: b.published.Load(),
		EventsDelivered: b.delivered.Load(),
		HandlerErrors:   b.errs.Load(),
		HandlerPanics:   b.panics.Load(),
	}
}
