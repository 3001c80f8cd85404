package dto

import (
	"time"

	"github.com/google/uuid"
)

// ProductResponse represents a catalog listing as exposed via transport layers.
type ProductResponse struct {
	ID               uuid.UUID `json:"id"`
	SupplierID       uuid.UUID `json:"supplier_id"`
	Name             string    `json:"name"`
	Category         string    `json:"category"`
	Unit             string    `json:"unit"`
	PricePerUnit     float64   `json:"price_per_unit"`
	MinOrderQuantity int       `json:"min_order_quantity"`
	StockAvailable   bool      `json:"stock_available"`
	Description      string    `json:"description,omitempty"`
	ImageURL         string    `json:"image_url,omitempty"`
	CreatedAt        time.Time `json:"created_at"`
	UpdatedAt        time.Time `json:"updated_at"`
}
