package domain

import (
	"context"
	"time"

	"github.com/shopspring/decimal"
)

// Sale event types
const (
	EventUnitsReserved = "sale.units_reserved"
	EventPaid          = "sale.paid"
	EventDelivered     = "sale.delivered"
	EventCancelled     = "sale.cancelled"
	EventLineAdded     = "sale.line_added"
	EventLineRemoved   = "sale.line_removed"
	EventDeleted       = "sale.deleted"
)

// SaleEvent is published after a sale operation commits
type SaleEvent struct {
	EventID   string           `json:"event_id"`
	EventType string           `json:"event_type"`
	SaleID    uint             `json:"sale_id"`
	Folio     string           `json:"folio"`
	State     SaleState        `json:"state"`
	UnitIDs   []uint           `json:"unit_ids"`
	Total     decimal.Decimal  `json:"total"`
	Amount    *decimal.Decimal `json:"amount,omitempty"`
	Timestamp time.Time        `json:"timestamp"`
}

// NewSaleEvent snapshots sale for an event of type eventType
func NewSaleEvent(eventType string, sale *Sale, unitIDs []uint) SaleEvent {
	return SaleEvent{
		EventType: eventType,
		SaleID:    sale.ID,
		Folio:     sale.Folio,
		State:     sale.State,
		UnitIDs:   unitIDs,
		Total:     sale.Total,
		Timestamp: time.Now(),
	}
}

// EventPublisher delivers sale events to interested services
type EventPublisher interface {
	PublishSaleEvent(ctx context.Context, event SaleEvent) error
}

// NopPublisher drops every event
type NopPublisher struct{}

func (NopPublisher) PublishSaleEvent(context.Context, SaleEvent) error { return nil }
