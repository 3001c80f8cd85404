package entity

import (
	"math"
	"time"

	"github.com/google/uuid"
	"github.com/uptrace/bun"

	"github.com/streetsupply/streetsupply/pkg/errorbank"
)

// Order statuses. Transition legality between them is an application-layer
// concern; storage only restricts membership.
const (
	OrderStatusPending   = "pending"
	OrderStatusConfirmed = "confirmed"
	OrderStatusAccepted  = "accepted"
	OrderStatusDelivered = "delivered"
	OrderStatusCompleted = "completed"
	OrderStatusCancelled = "cancelled"
)

// Payment statuses.
const (
	PaymentStatusPending   = "pending"
	PaymentStatusCompleted = "completed"
	PaymentStatusFailed    = "failed"
)

// Order types.
const (
	OrderTypeIndividual = "individual"
	OrderTypeGroup      = "group"
)

var orderStatuses = map[string]struct{}{
	OrderStatusPending:   {},
	OrderStatusConfirmed: {},
	OrderStatusAccepted:  {},
	OrderStatusDelivered: {},
	OrderStatusCompleted: {},
	OrderStatusCancelled: {},
}

var paymentStatuses = map[string]struct{}{
	PaymentStatusPending:   {},
	PaymentStatusCompleted: {},
	PaymentStatusFailed:    {},
}

var orderTypes = map[string]struct{}{
	OrderTypeIndividual: {},
	OrderTypeGroup:      {},
}

// ValidOrderStatus reports enumeration membership for order.status.
func ValidOrderStatus(s string) bool {
	_, ok := orderStatuses[s]
	return ok
}

// ValidPaymentStatus reports enumeration membership for order.payment_status.
func ValidPaymentStatus(s string) bool {
	_, ok := paymentStatuses[s]
	return ok
}

// ValidOrderType reports enumeration membership for order.order_type.
func ValidOrderType(s string) bool {
	_, ok := orderTypes[s]
	return ok
}

// ItemSnapshot is the line-item detail frozen into the order at creation.
type ItemSnapshot struct {
	ProductID   uuid.UUID `json:"product_id"`
	ProductName string    `json:"product_name"`
	Unit        string    `json:"unit"`
	Quantity    int       `json:"quantity"`
	UnitPrice   float64   `json:"unit_price"`
	TotalPrice  float64   `json:"total_price"`
}

// CustomerSnapshot captures the ordering vendor's contact details at order
// time, so the order stays readable after the profile changes.
type CustomerSnapshot struct {
	BusinessName string `json:"business_name"`
	OwnerName    string `json:"owner_name"`
	Phone        string `json:"phone"`
	Address      string `json:"address"`
}

// Order is a purchase request placed by a vendor, optionally assigned to a
// supplier. An order without a supplier sits in the open pool and is visible
// to every registered supplier until one accepts it.
type Order struct {
	bun.BaseModel `bun:"table:orders,alias:o"`

	ID               uuid.UUID        `bun:"id,pk,type:uuid" json:"id"`
	OrderNumber      string           `bun:"order_number,notnull,unique" json:"order_number"`
	VendorID         uuid.UUID        `bun:"vendor_id,notnull,type:uuid" json:"vendor_id"`
	SupplierID       *uuid.UUID       `bun:"supplier_id,nullzero,type:uuid" json:"supplier_id,omitempty"`
	OrderType        string           `bun:"order_type,notnull,default:'individual'" json:"order_type"`
	Status           string           `bun:"status,notnull,default:'pending'" json:"status"`
	PaymentStatus    string           `bun:"payment_status,notnull,default:'pending'" json:"payment_status"`
	PaymentMethod    string           `bun:"payment_method,nullzero" json:"payment_method,omitempty"`
	PaymentReference string           `bun:"payment_reference,nullzero" json:"payment_reference,omitempty"`
	Subtotal         float64          `bun:"subtotal,notnull,default:0" json:"subtotal"`
	Tax              float64          `bun:"tax,notnull,default:0" json:"tax"`
	DeliveryCharge   float64          `bun:"delivery_charge,notnull,default:0" json:"delivery_charge"`
	GroupDiscount    float64          `bun:"group_discount,notnull,default:0" json:"group_discount"`
	TotalAmount      float64          `bun:"total_amount,notnull,default:0" json:"total_amount"`
	DeliveryAddress  string           `bun:"delivery_address,notnull" json:"delivery_address"`
	DeliveryDate     *time.Time       `bun:"delivery_date,nullzero" json:"delivery_date,omitempty"`
	Notes            string           `bun:"notes,nullzero" json:"notes,omitempty"`
	ItemsSnapshot    []ItemSnapshot   `bun:"items_snapshot,type:jsonb" json:"items_snapshot"`
	Customer         CustomerSnapshot `bun:"customer_snapshot,type:jsonb" json:"customer_snapshot"`

	Items []*OrderItem `bun:"rel:has-many,join:id=order_id" json:"items,omitempty"`

	Timestamps
}

// moneyEpsilon absorbs float rounding when checking the monetary identity.
const moneyEpsilon = 0.005

// Validate applies the column-level rules for order rows, including the
// monetary identity total = subtotal + tax + delivery - discount.
func (o *Order) Validate() error {
	if o.OrderNumber == "" {
		return errorbank.Violation("order_number", "is required")
	}
	if o.VendorID == uuid.Nil {
		return errorbank.Violation("vendor_id", "is required")
	}
	if !ValidOrderType(o.OrderType) {
		return errorbank.Violation("order_type", "must be one of individual, group")
	}
	if !ValidOrderStatus(o.Status) {
		return errorbank.Violation("status", "is not a recognised order status")
	}
	if !ValidPaymentStatus(o.PaymentStatus) {
		return errorbank.Violation("payment_status", "must be one of pending, completed, failed")
	}
	for _, field := range []struct {
		name  string
		value float64
	}{
		{"subtotal", o.Subtotal},
		{"tax", o.Tax},
		{"delivery_charge", o.DeliveryCharge},
		{"group_discount", o.GroupDiscount},
		{"total_amount", o.TotalAmount},
	} {
		if field.value < 0 {
			return errorbank.Violation(field.name, "must not be negative")
		}
	}
	if o.DeliveryAddress == "" {
		return errorbank.Violation("delivery_address", "is required")
	}
	expected := o.Subtotal + o.Tax + o.DeliveryCharge - o.GroupDiscount
	if math.Abs(expected-o.TotalAmount) > moneyEpsilon {
		return errorbank.Violation("total_amount", "must equal subtotal + tax + delivery_charge - group_discount")
	}
	return nil
}

// OrderItem is an immutable line-item snapshot within an order. Prices are
// copied from the product at order time so history survives price changes.
// There is deliberately no updated_at column.
type OrderItem struct {
	bun.BaseModel `bun:"table:order_items,alias:oi"`

	ID         uuid.UUID `bun:"id,pk,type:uuid" json:"id"`
	OrderID    uuid.UUID `bun:"order_id,notnull,type:uuid" json:"order_id"`
	ProductID  uuid.UUID `bun:"product_id,notnull,type:uuid" json:"product_id"`
	Quantity   int       `bun:"quantity,notnull" json:"quantity"`
	UnitPrice  float64   `bun:"unit_price,notnull" json:"unit_price"`
	TotalPrice float64   `bun:"total_price,notnull" json:"total_price"`
	CreatedAt  time.Time `bun:"created_at,nullzero,notnull,default:current_timestamp" json:"created_at"`
}

// Validate applies the column-level rules for order item rows.
func (i *OrderItem) Validate() error {
	if i.OrderID == uuid.Nil {
		return errorbank.Violation("order_id", "is required")
	}
	if i.ProductID == uuid.Nil {
		return errorbank.Violation("product_id", "is required")
	}
	if i.Quantity <= 0 {
		return errorbank.Violation("quantity", "must be positive")
	}
	if i.UnitPrice < 0 {
		return errorbank.Violation("unit_price", "must not be negative")
	}
	if i.TotalPrice < 0 {
		return errorbank.Violation("total_price", "must not be negative")
	}
	return nil
}
