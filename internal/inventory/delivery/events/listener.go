// Package events keeps inventory read models in step with sale events.
package events

import (
	"context"

	"github.com/tair/stockroom/internal/sales/domain"
	"github.com/tair/stockroom/kafka"
	"github.com/tair/stockroom/pkg/logger"
)

// Invalidator drops cached unit listings
type Invalidator interface {
	Invalidate(ctx context.Context) error
}

// Registrar accepts event handlers, normally a *kafka.Consumer
type Registrar interface {
	RegisterHandler(eventType string, handler kafka.EventHandler)
}

// unitEvents are the sale events after which some unit changed state
var unitEvents = []string{
	domain.EventUnitsReserved,
	domain.EventPaid,
	domain.EventCancelled,
	domain.EventDeleted,
}

// SaleListener invalidates the unit listing cache when a sale moves units
type SaleListener struct {
	cache Invalidator
}

func NewSaleListener(cache Invalidator) *SaleListener {
	return &SaleListener{cache: cache}
}

// Register subscribes the listener to every unit-affecting event type
func (l *SaleListener) Register(r Registrar) {
	for _, eventType := range unitEvents {
		r.RegisterHandler(eventType, l.Handle)
	}
}

func (l *SaleListener) Handle(ctx context.Context, event domain.SaleEvent) error {
	if len(event.UnitIDs) == 0 {
		return nil
	}
	if err := l.cache.Invalidate(ctx); err != nil {
		return err
	}

	logger.WithContext(ctx).Debug().
		Str("event_type", event.EventType).
		Uint("sale_id", event.SaleID).
		Int("units", len(event.UnitIDs)).
		Msg("Unit listings invalidated after sale event")
	return nil
}
