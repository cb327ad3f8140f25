// Package services runs mutations against the store and fans out their
// side effects: events for the worker and insight cache invalidation.
package services

import (
	"context"
	"log/slog"

	"budgetly/internal/amqp"
	"budgetly/internal/log"
)

// EventPublisher is satisfied by *amqp.Client.
type EventPublisher interface {
	PublishEvent(ctx context.Context, ev amqp.Event) error
}

// Invalidator drops cached read models. Satisfied by *insights.Engine.
type Invalidator interface {
	Invalidate()
}

// notifier is embedded by every service. Both collaborators are optional.
type notifier struct {
	publisher EventPublisher
	cache     Invalidator
}

// committed runs after a successful mutation. A publish failure is logged
// and never returned: the mutation is already durable.
func (n notifier) committed(ctx context.Context, ev amqp.Event) {
	if n.cache != nil {
		n.cache.Invalidate()
	}
	if n.publisher == nil {
		return
	}
	if err := n.publisher.PublishEvent(ctx, ev); err != nil {
		slog.ErrorContext(ctx, "Failed to publish event",
			log.FieldComponent, log.ComponentAMQP,
			log.FieldOperation, log.OpPublish,
			log.FieldEventID, ev.ID,
			log.FieldEventType, string(ev.Type),
			log.FieldError, err)
	}
}
