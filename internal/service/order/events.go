package order

import (
	"context"
	"encoding/json"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// Event types published to the marketplace bus.
const (
	EventOrderCreated       = "order.created"
	EventOrderStatusChanged = "order.status_changed"
	EventOrderAccepted      = "order.accepted"
)

// Event is emitted on order lifecycle changes.
type Event struct {
	Type        string     `json:"type"`
	OrderID     uuid.UUID  `json:"order_id"`
	OrderNumber string     `json:"order_number"`
	VendorID    uuid.UUID  `json:"vendor_id"`
	SupplierID  *uuid.UUID `json:"supplier_id,omitempty"`
	Status      string     `json:"status"`
	TotalAmount float64    `json:"total_amount"`
	At          time.Time  `json:"at"`
}

func (s *Service) publish(ctx context.Context, event Event) {
	if !s.messaging.enabled || s.publisher == nil {
		return
	}
	payload, err := json.Marshal(event)
	if err != nil {
		s.logger.Error("marshal order event", zap.Error(err))
		return
	}
	if err := s.publisher.Publish(ctx, []byte("order-"+event.OrderID.String()), payload); err != nil {
		s.logger.Error("publish order event", zap.String("type", event.Type), zap.Error(err))
	}
}
