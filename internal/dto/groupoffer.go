package dto

import (
	"time"

	"github.com/google/uuid"
)

// GroupOfferResponse represents a bulk-discount offer as exposed via
// transport layers.
type GroupOfferResponse struct {
	ID                 uuid.UUID `json:"id"`
	SupplierID         uuid.UUID `json:"supplier_id"`
	ProductDescription string    `json:"product_description"`
	Quantity           float64   `json:"quantity"`
	Unit               string    `json:"unit"`
	ActualRate         float64   `json:"actual_rate"`
	DiscountedRate     float64   `json:"discounted_rate"`
	DiscountPercent    float64   `json:"discount_percent"`
	Location           string    `json:"location"`
	Latitude           *float64  `json:"latitude,omitempty"`
	Longitude          *float64  `json:"longitude,omitempty"`
	Deadline           time.Time `json:"deadline"`
	Status             string    `json:"status"`
	Participants       int       `json:"participants"`
	EstimatedValue     float64   `json:"estimated_value"`
	CreatedAt          time.Time `json:"created_at"`
	UpdatedAt          time.Time `json:"updated_at"`
}
