package order

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/streetsupply/streetsupply/internal/authz"
	"github.com/streetsupply/streetsupply/internal/entity"
	"github.com/streetsupply/streetsupply/internal/identity"
	orderrepo "github.com/streetsupply/streetsupply/internal/repository/order"
	"github.com/streetsupply/streetsupply/pkg/errorbank"
)

type stubRepo struct {
	created      *entity.Order
	createdItems []*entity.OrderItem
	order        *entity.Order
	vendorRows   int64
	supplierRows int64
	acceptRows   int64

	vendorUpdates   int
	supplierUpdates int
}

func (r *stubRepo) CreateWithItems(_ context.Context, o *entity.Order, items []*entity.OrderItem) error {
	r.created = o
	r.createdItems = items
	return nil
}

func (r *stubRepo) GetByID(_ context.Context, id uuid.UUID) (*entity.Order, error) {
	if r.order == nil || r.order.ID != id {
		return nil, orderrepo.ErrNotFound
	}
	clone := *r.order
	return &clone, nil
}

func (r *stubRepo) List(context.Context, authz.Principal, orderrepo.Filter) ([]*entity.Order, error) {
	return nil, nil
}

func (r *stubRepo) UpdateAsVendor(context.Context, *entity.Order) (int64, error) {
	r.vendorUpdates++
	return r.vendorRows, nil
}

func (r *stubRepo) UpdateAsSupplier(context.Context, *entity.Order, uuid.UUID) (int64, error) {
	r.supplierUpdates++
	return r.supplierRows, nil
}

func (r *stubRepo) Accept(context.Context, uuid.UUID, uuid.UUID, time.Time) (int64, error) {
	return r.acceptRows, nil
}

func (r *stubRepo) ListItems(context.Context, uuid.UUID) ([]*entity.OrderItem, error) {
	return nil, nil
}

type stubProducts struct {
	products []*entity.Product
}

func (s *stubProducts) GetByIDs(context.Context, []uuid.UUID) ([]*entity.Product, error) {
	return s.products, nil
}

type stubVendors struct {
	vendor *entity.Vendor
}

func (s *stubVendors) GetByID(context.Context, uuid.UUID) (*entity.Vendor, error) {
	return s.vendor, nil
}

type stubResolver struct {
	principals map[string]authz.Principal
}

func (s *stubResolver) Resolve(_ context.Context, c identity.Caller) (authz.Principal, error) {
	if p, ok := s.principals[c.AccountID]; ok {
		return p, nil
	}
	return authz.FromCaller(c), nil
}

type fixture struct {
	svc  *Service
	repo *stubRepo

	vendorID   uuid.UUID
	supplierID uuid.UUID

	vendorCaller   identity.Caller
	supplierCaller identity.Caller
}

var fixedNow = time.Date(2025, 3, 1, 12, 0, 0, 0, time.UTC)

func newFixture(t *testing.T) *fixture {
	t.Helper()

	f := &fixture{
		repo:           &stubRepo{},
		vendorID:       uuid.New(),
		supplierID:     uuid.New(),
		vendorCaller:   identity.Caller{AccountID: "acct-vendor"},
		supplierCaller: identity.Caller{AccountID: "acct-supplier"},
	}

	resolver := &stubResolver{principals: map[string]authz.Principal{
		"acct-vendor":   {AccountID: "acct-vendor", VendorID: &f.vendorID},
		"acct-supplier": {AccountID: "acct-supplier", SupplierID: &f.supplierID},
	}}

	products := &stubProducts{products: []*entity.Product{
		{
			ID:               uuid.MustParse("11111111-1111-4111-8111-111111111111"),
			SupplierID:       f.supplierID,
			Name:             "Potatoes",
			Unit:             "kg",
			PricePerUnit:     22,
			MinOrderQuantity: 10,
			StockAvailable:   true,
		},
	}}

	vendors := &stubVendors{vendor: &entity.Vendor{
		ID:           f.vendorID,
		AccountID:    "acct-vendor",
		BusinessName: "Chaat Corner",
		OwnerName:    "Meena",
		Phone:        "+91-9000000002",
		Street:       "FC Road",
		City:         "Pune",
	}}

	f.svc = newService(f.repo, products, vendors, resolver, zap.NewNop())
	f.svc.now = func() time.Time { return fixedNow }
	return f
}

func assertKind(t *testing.T, err error, kind errorbank.Kind) {
	t.Helper()
	require.Error(t, err)
	assert.Equal(t, kind, errorbank.From(err).Kind())
}

func TestCreateSnapshotsItemsAndDerivesTotals(t *testing.T) {
	f := newFixture(t)

	productID := uuid.MustParse("11111111-1111-4111-8111-111111111111")
	o, err := f.svc.Create(context.Background(), f.vendorCaller, CreateInput{
		Items:           []ItemInput{{ProductID: productID, Quantity: 20}},
		Tax:             22,
		DeliveryCharge:  40,
		GroupDiscount:   2,
		DeliveryAddress: "FC Road, Pune",
	})
	require.NoError(t, err)

	assert.Equal(t, 440.0, o.Subtotal)
	assert.Equal(t, 500.0, o.TotalAmount)
	assert.Equal(t, entity.OrderStatusPending, o.Status)
	assert.Equal(t, entity.OrderTypeIndividual, o.OrderType)
	assert.Nil(t, o.SupplierID)
	assert.Contains(t, o.OrderNumber, "ORD-20250301-")

	require.Len(t, o.ItemsSnapshot, 1)
	assert.Equal(t, "Potatoes", o.ItemsSnapshot[0].ProductName)
	assert.Equal(t, 22.0, o.ItemsSnapshot[0].UnitPrice)

	assert.Equal(t, "Chaat Corner", o.Customer.BusinessName)
	assert.Equal(t, "FC Road, Pune", o.Customer.Address)

	require.NotNil(t, f.repo.created)
	require.Len(t, f.repo.createdItems, 1)
	assert.Equal(t, o.ID, f.repo.createdItems[0].OrderID)
}

func TestCreateRejectsBelowMinimumQuantity(t *testing.T) {
	f := newFixture(t)

	productID := uuid.MustParse("11111111-1111-4111-8111-111111111111")
	_, err := f.svc.Create(context.Background(), f.vendorCaller, CreateInput{
		Items:           []ItemInput{{ProductID: productID, Quantity: 5}},
		DeliveryAddress: "FC Road, Pune",
	})
	assertKind(t, err, errorbank.KindUnprocessableEntity)
}

func TestCreateRequiresVendorProfile(t *testing.T) {
	f := newFixture(t)

	_, err := f.svc.Create(context.Background(), f.supplierCaller, CreateInput{
		Items:           []ItemInput{{ProductID: uuid.New(), Quantity: 10}},
		DeliveryAddress: "FC Road, Pune",
	})
	assertKind(t, err, errorbank.KindNotFound)
}

func TestGetHidesForeignOrders(t *testing.T) {
	f := newFixture(t)

	otherVendor := uuid.New()
	assigned := uuid.New()
	f.repo.order = &entity.Order{
		ID:         uuid.New(),
		VendorID:   otherVendor,
		SupplierID: &assigned,
		Status:     entity.OrderStatusAccepted,
	}

	_, err := f.svc.Get(context.Background(), f.vendorCaller, f.repo.order.ID)
	assertKind(t, err, errorbank.KindNotFound)

	_, err = f.svc.Get(context.Background(), f.supplierCaller, f.repo.order.ID)
	assertKind(t, err, errorbank.KindNotFound)
}

func TestGetOpenPoolVisibleToSuppliers(t *testing.T) {
	f := newFixture(t)

	f.repo.order = &entity.Order{
		ID:       uuid.New(),
		VendorID: uuid.New(),
		Status:   entity.OrderStatusPending,
	}

	o, err := f.svc.Get(context.Background(), f.supplierCaller, f.repo.order.ID)
	require.NoError(t, err)
	assert.Equal(t, f.repo.order.ID, o.ID)

	_, err = f.svc.Get(context.Background(), identity.Anonymous, f.repo.order.ID)
	assertKind(t, err, errorbank.KindNotFound)
}

func TestUpdateVendorPendingGate(t *testing.T) {
	f := newFixture(t)

	f.repo.order = &entity.Order{
		ID:              uuid.New(),
		OrderNumber:     "ORD-20250301-AAAA1111",
		VendorID:        f.vendorID,
		OrderType:       entity.OrderTypeIndividual,
		Status:          entity.OrderStatusConfirmed,
		PaymentStatus:   entity.PaymentStatusPending,
		DeliveryAddress: "FC Road, Pune",
	}

	notes := "please deliver before 7am"
	_, err := f.svc.Update(context.Background(), f.vendorCaller, f.repo.order.ID, UpdateInput{Notes: &notes})
	assertKind(t, err, errorbank.KindNotFound)
	assert.Zero(t, f.repo.vendorUpdates, "the policy rejects the edit before storage")
}

func TestUpdateConcurrentConfirmationSurfacesAsNotFound(t *testing.T) {
	f := newFixture(t)

	f.repo.order = &entity.Order{
		ID:              uuid.New(),
		OrderNumber:     "ORD-20250301-AAAA1111",
		VendorID:        f.vendorID,
		OrderType:       entity.OrderTypeIndividual,
		Status:          entity.OrderStatusPending,
		PaymentStatus:   entity.PaymentStatusPending,
		DeliveryAddress: "FC Road, Pune",
	}
	f.repo.vendorRows = 0 // the pending fence matched nothing

	notes := "changed my mind"
	_, err := f.svc.Update(context.Background(), f.vendorCaller, f.repo.order.ID, UpdateInput{Notes: &notes})
	assertKind(t, err, errorbank.KindNotFound)
	assert.Equal(t, 1, f.repo.vendorUpdates)
}

func TestUpdateRoutesAssignedSupplier(t *testing.T) {
	f := newFixture(t)

	f.repo.order = &entity.Order{
		ID:              uuid.New(),
		OrderNumber:     "ORD-20250301-AAAA1111",
		VendorID:        f.vendorID,
		SupplierID:      &f.supplierID,
		OrderType:       entity.OrderTypeIndividual,
		Status:          entity.OrderStatusAccepted,
		PaymentStatus:   entity.PaymentStatusPending,
		DeliveryAddress: "FC Road, Pune",
	}
	f.repo.supplierRows = 1

	status := entity.OrderStatusDelivered
	o, err := f.svc.Update(context.Background(), f.supplierCaller, f.repo.order.ID, UpdateInput{Status: &status})
	require.NoError(t, err)
	assert.Equal(t, entity.OrderStatusDelivered, o.Status)
	assert.Equal(t, fixedNow, o.UpdatedAt)
	assert.Equal(t, 1, f.repo.supplierUpdates)
	assert.Zero(t, f.repo.vendorUpdates)
}

func TestAcceptClaimsOpenOrder(t *testing.T) {
	f := newFixture(t)

	f.repo.order = &entity.Order{
		ID:          uuid.New(),
		OrderNumber: "ORD-20250301-AAAA1111",
		VendorID:    f.vendorID,
		Status:      entity.OrderStatusPending,
	}
	f.repo.acceptRows = 1

	o, err := f.svc.Accept(context.Background(), f.supplierCaller, f.repo.order.ID)
	require.NoError(t, err)
	require.NotNil(t, o.SupplierID)
	assert.Equal(t, f.supplierID, *o.SupplierID)
	assert.Equal(t, entity.OrderStatusAccepted, o.Status)
}

func TestAcceptDeniedForVendorsAndAssignedOrders(t *testing.T) {
	f := newFixture(t)

	f.repo.order = &entity.Order{
		ID:       uuid.New(),
		VendorID: f.vendorID,
		Status:   entity.OrderStatusPending,
	}

	_, err := f.svc.Accept(context.Background(), f.vendorCaller, f.repo.order.ID)
	assertKind(t, err, errorbank.KindNotFound)

	claimed := uuid.New()
	f.repo.order.SupplierID = &claimed
	_, err = f.svc.Accept(context.Background(), f.supplierCaller, f.repo.order.ID)
	assertKind(t, err, errorbank.KindNotFound)
}

func TestAcceptLosesRace(t *testing.T) {
	f := newFixture(t)

	f.repo.order = &entity.Order{
		ID:       uuid.New(),
		VendorID: f.vendorID,
		Status:   entity.OrderStatusPending,
	}
	f.repo.acceptRows = 0

	_, err := f.svc.Accept(context.Background(), f.supplierCaller, f.repo.order.ID)
	assertKind(t, err, errorbank.KindNotFound)
}

func TestItemsNotVisibleThroughOpenPool(t *testing.T) {
	f := newFixture(t)

	f.repo.order = &entity.Order{
		ID:       uuid.New(),
		VendorID: uuid.New(),
		Status:   entity.OrderStatusPending,
	}

	_, err := f.svc.Items(context.Background(), f.supplierCaller, f.repo.order.ID)
	assertKind(t, err, errorbank.KindNotFound)
}
