package entity

import (
	"time"

	"github.com/google/uuid"
	"github.com/uptrace/bun"

	"github.com/streetsupply/streetsupply/pkg/errorbank"
)

// Group offer statuses.
const (
	GroupOfferStatusActive    = "active"
	GroupOfferStatusAccepted  = "accepted"
	GroupOfferStatusDeclined  = "declined"
	GroupOfferStatusDelivered = "delivered"
	GroupOfferStatusExpired   = "expired"
)

var groupOfferStatuses = map[string]struct{}{
	GroupOfferStatusActive:    {},
	GroupOfferStatusAccepted:  {},
	GroupOfferStatusDeclined:  {},
	GroupOfferStatusDelivered: {},
	GroupOfferStatusExpired:   {},
}

// ValidGroupOfferStatus reports enumeration membership for offer status.
func ValidGroupOfferStatus(s string) bool {
	_, ok := groupOfferStatuses[s]
	return ok
}

// GroupOffer is a time-boxed bulk-discount offer created by a supplier to
// attract multiple vendors. Quantities and rates are numeric and the location
// carries optional coordinates, so offers can be sorted and matched
// server-side. Offers past their deadline are swept to "expired" by a
// background job rather than on read.
type GroupOffer struct {
	bun.BaseModel `bun:"table:product_groups,alias:g"`

	ID                 uuid.UUID  `bun:"id,pk,type:uuid" json:"id"`
	SupplierID         uuid.UUID  `bun:"supplier_id,notnull,type:uuid" json:"supplier_id"`
	ProductDescription string     `bun:"product_description,notnull" json:"product_description"`
	Quantity           float64    `bun:"quantity,notnull" json:"quantity"`
	Unit               string     `bun:"unit,notnull" json:"unit"`
	ActualRate         float64    `bun:"actual_rate,notnull" json:"actual_rate"`
	DiscountedRate     float64    `bun:"discounted_rate,notnull" json:"discounted_rate"`
	DiscountPercent    float64    `bun:"discount_percent,notnull,default:0" json:"discount_percent"`
	Location           string     `bun:"location,notnull" json:"location"`
	Latitude           *float64   `bun:"latitude,nullzero" json:"latitude,omitempty"`
	Longitude          *float64   `bun:"longitude,nullzero" json:"longitude,omitempty"`
	Deadline           time.Time  `bun:"deadline,notnull" json:"deadline"`
	Status             string     `bun:"status,notnull,default:'active'" json:"status"`
	Participants       int        `bun:"participants,notnull,default:0" json:"participants"`
	EstimatedValue     float64    `bun:"estimated_value,notnull,default:0" json:"estimated_value"`

	Timestamps
}

// Validate applies the column-level rules for group offer rows.
func (g *GroupOffer) Validate() error {
	if g.SupplierID == uuid.Nil {
		return errorbank.Violation("supplier_id", "is required")
	}
	if g.ProductDescription == "" {
		return errorbank.Violation("product_description", "is required")
	}
	if g.Quantity <= 0 {
		return errorbank.Violation("quantity", "must be positive")
	}
	if g.Unit == "" {
		return errorbank.Violation("unit", "is required")
	}
	if g.ActualRate < 0 {
		return errorbank.Violation("actual_rate", "must not be negative")
	}
	if g.DiscountedRate < 0 {
		return errorbank.Violation("discounted_rate", "must not be negative")
	}
	if g.DiscountPercent < 0 || g.DiscountPercent > 100 {
		return errorbank.Violation("discount_percent", "must be between 0 and 100")
	}
	if g.Location == "" {
		return errorbank.Violation("location", "is required")
	}
	if (g.Latitude == nil) != (g.Longitude == nil) {
		return errorbank.Violation("location", "latitude and longitude must be set together")
	}
	if g.Deadline.IsZero() {
		return errorbank.Violation("deadline", "is required")
	}
	if !ValidGroupOfferStatus(g.Status) {
		return errorbank.Violation("status", "is not a recognised offer status")
	}
	if g.Participants < 0 {
		return errorbank.Violation("participants", "must not be negative")
	}
	if g.EstimatedValue < 0 {
		return errorbank.Violation("estimated_value", "must not be negative")
	}
	return nil
}
