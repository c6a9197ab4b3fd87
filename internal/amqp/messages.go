package amqp

import (
	"encoding/json"
	"time"

	"github.com/werioliveira/card-management/internal/core"
)

// InvoiceChangedMessage announces that an invoice total or status changed.
// It carries a snapshot of the invoice; consumers that need the latest state
// re-read the invoice by id.
type InvoiceChangedMessage struct {
	InvoiceID  string    `json:"invoiceId"`
	Owner      string    `json:"owner"`
	CardID     string    `json:"cardId"`
	Year       int       `json:"year"`
	Month      int       `json:"month"`
	TotalCents int64     `json:"totalCents"`
	Status     string    `json:"status"`
	Timestamp  time.Time `json:"timestamp"`
}

// NewInvoiceChangedMessage snapshots inv as of at.
func NewInvoiceChangedMessage(inv core.Invoice, at time.Time) InvoiceChangedMessage {
	return InvoiceChangedMessage{
		InvoiceID:  inv.ID,
		Owner:      inv.Owner,
		CardID:     inv.CardID,
		Year:       inv.Year,
		Month:      inv.Month,
		TotalCents: inv.TotalAmount.Cents,
		Status:     string(inv.Status),
		Timestamp:  at,
	}
}

// ToJSON converts the message to JSON bytes
func (m InvoiceChangedMessage) ToJSON() ([]byte, error) {
	return json.Marshal(m)
}

// InvoiceChangedMessageFromJSON decodes a message body.
func InvoiceChangedMessageFromJSON(data []byte) (*InvoiceChangedMessage, error) {
	var msg InvoiceChangedMessage
	if err := json.Unmarshal(data, &msg); err != nil {
		return nil, err
	}
	return &msg, nil
}
