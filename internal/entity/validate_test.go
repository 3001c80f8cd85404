package entity

import (
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/streetsupply/streetsupply/pkg/errorbank"
)

func validOrder() *Order {
	return &Order{
		ID:              uuid.New(),
		OrderNumber:     "ORD-20250301-ABCD1234",
		VendorID:        uuid.New(),
		OrderType:       OrderTypeIndividual,
		Status:          OrderStatusPending,
		PaymentStatus:   PaymentStatusPending,
		Subtotal:        500,
		Tax:             25,
		DeliveryCharge:  40,
		GroupDiscount:   15,
		TotalAmount:     550,
		DeliveryAddress: "FC Road, Pune",
	}
}

func assertViolation(t *testing.T, err error, field string) {
	t.Helper()
	require.Error(t, err)
	appErr := errorbank.From(err)
	assert.Equal(t, errorbank.KindUnprocessableEntity, appErr.Kind())
	assert.Equal(t, field, appErr.Details()["field"])
}

func TestOrderValidate(t *testing.T) {
	require.NoError(t, validOrder().Validate())
}

func TestOrderMonetaryIdentity(t *testing.T) {
	o := validOrder()
	o.TotalAmount = 560
	assertViolation(t, o.Validate(), "total_amount")

	// Rounding noise below half a cent is tolerated.
	o = validOrder()
	o.TotalAmount = 550.004
	assert.NoError(t, o.Validate())
}

func TestOrderNegativeAmounts(t *testing.T) {
	o := validOrder()
	o.GroupDiscount = -1
	assertViolation(t, o.Validate(), "group_discount")
}

func TestOrderEnumMembership(t *testing.T) {
	o := validOrder()
	o.Status = "shipped"
	assertViolation(t, o.Validate(), "status")

	o = validOrder()
	o.PaymentStatus = "refunded"
	assertViolation(t, o.Validate(), "payment_status")

	o = validOrder()
	o.OrderType = "bulk"
	assertViolation(t, o.Validate(), "order_type")
}

func TestOrderItemValidate(t *testing.T) {
	item := &OrderItem{
		ID:         uuid.New(),
		OrderID:    uuid.New(),
		ProductID:  uuid.New(),
		Quantity:   10,
		UnitPrice:  22,
		TotalPrice: 220,
	}
	require.NoError(t, item.Validate())

	item.Quantity = 0
	assertViolation(t, item.Validate(), "quantity")
}

func TestSupplierRatingRange(t *testing.T) {
	s := &Supplier{
		ID:           uuid.New(),
		AccountID:    "acct-1",
		BusinessName: "Raju Wholesale",
		OwnerName:    "Raju",
		Email:        "raju@example.com",
		Phone:        "+91-9000000001",
	}
	require.NoError(t, s.Validate())
	assert.Equal(t, DefaultBusinessType, s.BusinessType)

	s.Rating = 5.5
	assertViolation(t, s.Validate(), "rating")

	s.Rating = 4.449
	require.NoError(t, s.Validate())
	assert.Equal(t, 4.4, s.Rating, "rating keeps one decimal")
}

func TestVendorDefaults(t *testing.T) {
	v := &Vendor{
		ID:           uuid.New(),
		AccountID:    "acct-1",
		BusinessName: "Chaat Corner",
		OwnerName:    "Meena",
		Phone:        "+91-9000000002",
	}
	require.NoError(t, v.Validate())
	assert.Equal(t, DefaultBusinessType, v.BusinessType)

	v.BusinessName = ""
	assertViolation(t, v.Validate(), "business_name")
}

func TestProductValidate(t *testing.T) {
	p := &Product{
		ID:               uuid.New(),
		SupplierID:       uuid.New(),
		Name:             "Potatoes",
		Category:         "vegetables",
		Unit:             "kg",
		PricePerUnit:     22,
		MinOrderQuantity: 10,
	}
	require.NoError(t, p.Validate())

	p.MinOrderQuantity = 0
	assertViolation(t, p.Validate(), "min_order_quantity")

	p.MinOrderQuantity = 10
	p.PricePerUnit = -1
	assertViolation(t, p.Validate(), "price_per_unit")
}

func TestGroupOfferValidate(t *testing.T) {
	g := &GroupOffer{
		ID:                 uuid.New(),
		SupplierID:         uuid.New(),
		ProductDescription: "Bulk onions",
		Quantity:           500,
		Unit:               "kg",
		ActualRate:         30,
		DiscountedRate:     24,
		DiscountPercent:    20,
		Location:           "Pune",
		Deadline:           time.Date(2025, 4, 1, 0, 0, 0, 0, time.UTC),
		Status:             GroupOfferStatusActive,
	}
	require.NoError(t, g.Validate())

	lat := 18.52
	g.Latitude = &lat
	assertViolation(t, g.Validate(), "location")

	lng := 73.85
	g.Longitude = &lng
	require.NoError(t, g.Validate())

	g.Status = "open"
	assertViolation(t, g.Validate(), "status")
}
