package dto

import (
	"time"

	"github.com/google/uuid"

	"github.com/streetsupply/streetsupply/internal/entity"
)

// OrderResponse represents an order as exposed via transport layers.
type OrderResponse struct {
	ID               uuid.UUID               `json:"id"`
	OrderNumber      string                  `json:"order_number"`
	VendorID         uuid.UUID               `json:"vendor_id"`
	SupplierID       *uuid.UUID              `json:"supplier_id,omitempty"`
	OrderType        string                  `json:"order_type"`
	Status           string                  `json:"status"`
	PaymentStatus    string                  `json:"payment_status"`
	PaymentMethod    string                  `json:"payment_method,omitempty"`
	PaymentReference string                  `json:"payment_reference,omitempty"`
	Subtotal         float64                 `json:"subtotal"`
	Tax              float64                 `json:"tax"`
	DeliveryCharge   float64                 `json:"delivery_charge"`
	GroupDiscount    float64                 `json:"group_discount"`
	TotalAmount      float64                 `json:"total_amount"`
	DeliveryAddress  string                  `json:"delivery_address"`
	DeliveryDate     *time.Time              `json:"delivery_date,omitempty"`
	Notes            string                  `json:"notes,omitempty"`
	Items            []entity.ItemSnapshot   `json:"items"`
	Customer         entity.CustomerSnapshot `json:"customer"`
	CreatedAt        time.Time               `json:"created_at"`
	UpdatedAt        time.Time               `json:"updated_at"`
}

// OrderItemResponse represents an order line item. Items are frozen at order
// time and carry no modification timestamp.
type OrderItemResponse struct {
	ID         uuid.UUID `json:"id"`
	OrderID    uuid.UUID `json:"order_id"`
	ProductID  uuid.UUID `json:"product_id"`
	Quantity   int       `json:"quantity"`
	UnitPrice  float64   `json:"unit_price"`
	TotalPrice float64   `json:"total_price"`
	CreatedAt  time.Time `json:"created_at"`
}
