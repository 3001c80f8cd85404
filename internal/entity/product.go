package entity

import (
	"github.com/google/uuid"
	"github.com/uptrace/bun"

	"github.com/streetsupply/streetsupply/pkg/errorbank"
)

// Product is a catalog listing owned by exactly one supplier. Deleting the
// supplier cascades deletion of its products; deleting a product that order
// items still reference is blocked at the storage layer.
type Product struct {
	bun.BaseModel `bun:"table:products,alias:p"`

	ID               uuid.UUID `bun:"id,pk,type:uuid" json:"id"`
	SupplierID       uuid.UUID `bun:"supplier_id,notnull,type:uuid" json:"supplier_id"`
	Name             string    `bun:"name,notnull" json:"name"`
	Category         string    `bun:"category,notnull" json:"category"`
	Unit             string    `bun:"unit,notnull" json:"unit"`
	PricePerUnit     float64   `bun:"price_per_unit,notnull" json:"price_per_unit"`
	MinOrderQuantity int       `bun:"min_order_quantity,notnull,default:1" json:"min_order_quantity"`
	StockAvailable   bool      `bun:"stock_available,notnull,default:true" json:"stock_available"`
	Description      string    `bun:"description,nullzero" json:"description,omitempty"`
	ImageURL         string    `bun:"image_url,nullzero" json:"image_url,omitempty"`

	Timestamps
}

// Validate applies the column-level rules for product rows.
func (p *Product) Validate() error {
	if p.SupplierID == uuid.Nil {
		return errorbank.Violation("supplier_id", "is required")
	}
	if p.Name == "" {
		return errorbank.Violation("name", "is required")
	}
	if p.Category == "" {
		return errorbank.Violation("category", "is required")
	}
	if p.Unit == "" {
		return errorbank.Violation("unit", "is required")
	}
	if p.PricePerUnit < 0 {
		return errorbank.Violation("price_per_unit", "must not be negative")
	}
	if p.MinOrderQuantity <= 0 {
		return errorbank.Violation("min_order_quantity", "must be positive")
	}
	return nil
}
