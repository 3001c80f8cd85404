package authz

import (
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"

	"github.com/streetsupply/streetsupply/internal/entity"
	"github.com/streetsupply/streetsupply/internal/identity"
)

func vendorPrincipal(account string, vendorID uuid.UUID) Principal {
	return Principal{AccountID: account, VendorID: &vendorID}
}

func supplierPrincipal(account string, supplierID uuid.UUID) Principal {
	return Principal{AccountID: account, SupplierID: &supplierID}
}

func TestFromCaller(t *testing.T) {
	assert.True(t, FromCaller(identity.Anonymous).Anonymous)
	assert.True(t, FromCaller(identity.Caller{}).Anonymous)

	p := FromCaller(identity.Caller{AccountID: "acct-1"})
	assert.False(t, p.Anonymous)
	assert.Equal(t, "acct-1", p.AccountID)
	assert.False(t, p.IsVendor())
	assert.False(t, p.IsSupplier())
}

func TestVendorProfilePrivacy(t *testing.T) {
	v := &entity.Vendor{ID: uuid.New(), AccountID: "acct-owner"}

	owner := Principal{AccountID: "acct-owner"}
	stranger := Principal{AccountID: "acct-other"}

	assert.True(t, CanReadVendor(owner, v))
	assert.False(t, CanReadVendor(stranger, v))
	assert.False(t, CanReadVendor(AnonymousPrincipal, v))

	assert.True(t, CanUpdateVendor(owner, v))
	assert.False(t, CanUpdateVendor(stranger, v))
}

func TestVendorSingleProfile(t *testing.T) {
	v := &entity.Vendor{ID: uuid.New(), AccountID: "acct-1"}

	fresh := Principal{AccountID: "acct-1"}
	assert.True(t, CanInsertVendor(fresh, v))

	existing := vendorPrincipal("acct-1", uuid.New())
	assert.False(t, CanInsertVendor(existing, v))

	assert.False(t, CanInsertVendor(Principal{AccountID: "acct-2"}, v))
	assert.False(t, CanInsertVendor(AnonymousPrincipal, v))
}

func TestSupplierPublicRead(t *testing.T) {
	s := &entity.Supplier{ID: uuid.New(), AccountID: "acct-owner"}

	assert.True(t, CanReadSupplier(AnonymousPrincipal, s))
	assert.True(t, CanReadSupplier(Principal{AccountID: "acct-other"}, s))

	assert.True(t, CanUpdateSupplier(Principal{AccountID: "acct-owner"}, s))
	assert.False(t, CanUpdateSupplier(Principal{AccountID: "acct-other"}, s))
	assert.False(t, CanUpdateSupplier(AnonymousPrincipal, s))
}

func TestProductOwnership(t *testing.T) {
	supplierID := uuid.New()
	pr := &entity.Product{ID: uuid.New(), SupplierID: supplierID}

	assert.True(t, CanReadProduct(AnonymousPrincipal, pr))

	owner := supplierPrincipal("acct-1", supplierID)
	other := supplierPrincipal("acct-2", uuid.New())
	assert.True(t, CanWriteProduct(owner, pr))
	assert.False(t, CanWriteProduct(other, pr))
	assert.False(t, CanWriteProduct(Principal{AccountID: "acct-3"}, pr))
}

func TestOrderOpenPoolVisibility(t *testing.T) {
	vendorID := uuid.New()
	unassigned := &entity.Order{ID: uuid.New(), VendorID: vendorID, Status: entity.OrderStatusPending}

	owner := vendorPrincipal("acct-vendor", vendorID)
	anySupplier := supplierPrincipal("acct-supplier", uuid.New())
	otherVendor := vendorPrincipal("acct-other", uuid.New())

	assert.True(t, CanReadOrder(owner, unassigned))
	assert.True(t, CanReadOrder(anySupplier, unassigned), "unassigned orders are visible to every supplier")
	assert.False(t, CanReadOrder(otherVendor, unassigned))
	assert.False(t, CanReadOrder(AnonymousPrincipal, unassigned))

	assignedID := uuid.New()
	assigned := &entity.Order{ID: uuid.New(), VendorID: vendorID, SupplierID: &assignedID, Status: entity.OrderStatusAccepted}

	assert.True(t, CanReadOrder(supplierPrincipal("acct-assigned", assignedID), assigned))
	assert.False(t, CanReadOrder(anySupplier, assigned), "assignment closes the pool")
}

func TestOrderVendorPendingGate(t *testing.T) {
	vendorID := uuid.New()
	supplierID := uuid.New()
	owner := vendorPrincipal("acct-vendor", vendorID)
	assignee := supplierPrincipal("acct-supplier", supplierID)

	pending := &entity.Order{VendorID: vendorID, SupplierID: &supplierID, Status: entity.OrderStatusPending}
	confirmed := &entity.Order{VendorID: vendorID, SupplierID: &supplierID, Status: entity.OrderStatusConfirmed}

	assert.True(t, CanUpdateOrder(owner, pending))
	assert.False(t, CanUpdateOrder(owner, confirmed), "vendor edits are fenced on pending")

	assert.True(t, CanUpdateOrder(assignee, pending))
	assert.True(t, CanUpdateOrder(assignee, confirmed))
}

func TestOrderAccept(t *testing.T) {
	vendorID := uuid.New()
	unassigned := &entity.Order{VendorID: vendorID}

	supplier := supplierPrincipal("acct-supplier", uuid.New())
	assert.True(t, CanAcceptOrder(supplier, unassigned))
	assert.False(t, CanAcceptOrder(vendorPrincipal("acct-vendor", vendorID), unassigned))

	claimed := uuid.New()
	assigned := &entity.Order{VendorID: vendorID, SupplierID: &claimed}
	assert.False(t, CanAcceptOrder(supplier, assigned))
}

func TestOrderItemsExcludedFromOpenPool(t *testing.T) {
	vendorID := uuid.New()
	unassigned := &entity.Order{VendorID: vendorID}

	assert.True(t, CanReadOrderItems(vendorPrincipal("acct-vendor", vendorID), unassigned))
	assert.False(t, CanReadOrderItems(supplierPrincipal("acct-supplier", uuid.New()), unassigned),
		"open pool visibility stops at the order header")
}

func TestOrderItemsImmutable(t *testing.T) {
	item := &entity.OrderItem{ID: uuid.New()}
	assert.False(t, CanModifyOrderItem(supplierPrincipal("acct", uuid.New()), item))
	assert.False(t, CanModifyOrderItem(AnonymousPrincipal, item))
}

func TestGroupOfferPolicy(t *testing.T) {
	supplierID := uuid.New()
	g := &entity.GroupOffer{ID: uuid.New(), SupplierID: supplierID}

	assert.True(t, CanReadGroupOffer(AnonymousPrincipal, g))
	assert.True(t, CanWriteGroupOffer(supplierPrincipal("acct-1", supplierID), g))
	assert.False(t, CanWriteGroupOffer(supplierPrincipal("acct-2", uuid.New()), g))
	assert.False(t, CanWriteGroupOffer(AnonymousPrincipal, g))
}
