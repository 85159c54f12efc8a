package outbox

import (
	"context"
	"errors"
)

// Event is any domain event with a name identifier.
type Event interface {
	EventName() string
}

// Handler processes a published event.
type Handler func(ctx context.Context, e Event) error

// Publisher publishes events to interested subscribers.
type Publisher interface {
	Publish(ctx context.Context, e Event) error
}

// Subscriber registers handlers for event names.
type Subscriber interface {
	Subscribe(eventName string, h Handler)
}

// PublishAll publishes every event, continuing past failures. A nil
// publisher drops the events.
func PublishAll(ctx context.Context, p Publisher, events ...Event) error {
	if p == nil {
		return nil
	}
	var errs []error
	for _, e := range events {
		if err := p.Publish(ctx, e); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}
