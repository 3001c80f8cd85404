package authz

import (
	"github.com/streetsupply/streetsupply/internal/entity"
)

// Per-row policy predicates. Each answers whether the principal may perform
// the operation on the given row. Callers translate a false read/update into
// a not-found result so unauthorized rows are indistinguishable from
// nonexistent ones.

// CanReadVendor: vendor profiles are private to their owning account.
func CanReadVendor(p Principal, v *entity.Vendor) bool {
	return !p.Anonymous && p.AccountID == v.AccountID
}

// CanInsertVendor: a caller may create exactly one profile, for itself.
func CanInsertVendor(p Principal, v *entity.Vendor) bool {
	return !p.Anonymous && p.AccountID == v.AccountID && p.VendorID == nil
}

// CanUpdateVendor: only the owning account.
func CanUpdateVendor(p Principal, v *entity.Vendor) bool {
	return !p.Anonymous && p.AccountID == v.AccountID
}

// CanReadSupplier: supplier profiles are public, anonymous callers included.
func CanReadSupplier(Principal, *entity.Supplier) bool {
	return true
}

// CanInsertSupplier: a caller may create exactly one profile, for itself.
func CanInsertSupplier(p Principal, s *entity.Supplier) bool {
	return !p.Anonymous && p.AccountID == s.AccountID && p.SupplierID == nil
}

// CanUpdateSupplier: only the owning account.
func CanUpdateSupplier(p Principal, s *entity.Supplier) bool {
	return !p.Anonymous && p.AccountID == s.AccountID
}

// CanReadProduct: the catalog is public.
func CanReadProduct(Principal, *entity.Product) bool {
	return true
}

// CanWriteProduct covers insert, update, and delete: only the supplier that
// owns the listing.
func CanWriteProduct(p Principal, pr *entity.Product) bool {
	return p.ownsSupplier(pr.SupplierID)
}

// CanReadOrder: the owning vendor, the assigned supplier, or - while the
// order is unassigned - any registered supplier. The last clause is the open
// pool: unclaimed orders are discoverable by every potential fulfiller.
func CanReadOrder(p Principal, o *entity.Order) bool {
	if p.ownsVendor(o.VendorID) {
		return true
	}
	if o.SupplierID != nil {
		return p.ownsSupplier(*o.SupplierID)
	}
	return p.IsSupplier()
}

// CanInsertOrder: only a vendor creating an order for itself.
func CanInsertOrder(p Principal, o *entity.Order) bool {
	return p.ownsVendor(o.VendorID)
}

// CanUpdateOrder: the vendor may edit only while the order is still pending;
// the assigned supplier may progress it at any status. This is the one rule
// that depends on mutable row state rather than pure ownership.
func CanUpdateOrder(p Principal, o *entity.Order) bool {
	if p.ownsVendor(o.VendorID) && o.Status == entity.OrderStatusPending {
		return true
	}
	return o.SupplierID != nil && p.ownsSupplier(*o.SupplierID)
}

// CanAcceptOrder: any registered supplier may claim an unassigned order out
// of the open pool.
func CanAcceptOrder(p Principal, o *entity.Order) bool {
	return p.IsSupplier() && o.SupplierID == nil
}

// CanReadOrderItems: the parent order's vendor or assigned supplier. Open
// pool visibility does not extend to line items.
func CanReadOrderItems(p Principal, o *entity.Order) bool {
	if p.ownsVendor(o.VendorID) {
		return true
	}
	return o.SupplierID != nil && p.ownsSupplier(*o.SupplierID)
}

// CanInsertOrderItem: only the vendor creating the parent order. Items are
// written inside the order-creation transaction and never after.
func CanInsertOrderItem(p Principal, o *entity.Order) bool {
	return p.ownsVendor(o.VendorID)
}

// CanModifyOrderItem: order items are immutable history.
func CanModifyOrderItem(Principal, *entity.OrderItem) bool {
	return false
}

// CanReadGroupOffer: offers are public so vendors can browse them.
func CanReadGroupOffer(Principal, *entity.GroupOffer) bool {
	return true
}

// CanWriteGroupOffer covers insert, update, and delete: only the creating
// supplier.
func CanWriteGroupOffer(p Principal, g *entity.GroupOffer) bool {
	return p.ownsSupplier(g.SupplierID)
}
