package services

import (
	"context"
	"log/slog"
	"time"

	"github.com/werioliveira/card-management/internal/amqp"
	"github.com/werioliveira/card-management/internal/core"
)

// InvoiceListener is told about invoices after the change that produced them
// has been committed.
type InvoiceListener interface {
	InvoicesChanged(ctx context.Context, owner string, invoices []core.Invoice)
}

// InvoicePublisher is the part of the AMQP client the event listener needs.
type InvoicePublisher interface {
	PublishInvoiceChanged(ctx context.Context, msg amqp.InvoiceChangedMessage) error
}

// EventPublisher announces invoice changes on the message bus. Publishing is
// best effort: failures are logged and never reach the caller.
type EventPublisher struct {
	publisher InvoicePublisher
	now       func() time.Time
}

func NewEventPublisher(p InvoicePublisher) *EventPublisher {
	return &EventPublisher{publisher: p, now: time.Now}
}

func (e *EventPublisher) InvoicesChanged(ctx context.Context, owner string, invoices []core.Invoice) {
	if e.publisher == nil {
		slog.WarnContext(ctx, "AMQP client not available, skipping invoice events", "count", len(invoices))
		return
	}

	for _, inv := range invoices {
		msg := amqp.NewInvoiceChangedMessage(inv, e.now())
		if err := e.publisher.PublishInvoiceChanged(ctx, msg); err != nil {
			slog.ErrorContext(ctx, "Failed to publish invoice change",
				"owner", owner,
				"invoice_id", inv.ID,
				"error", err)
		}
	}
}

func notify(ctx context.Context, listeners []InvoiceListener, owner string, invoices []core.Invoice) {
	if len(invoices) == 0 {
		return
	}
	for _, l := range listeners {
		l.InvoicesChanged(ctx, owner, invoices)
	}
}
