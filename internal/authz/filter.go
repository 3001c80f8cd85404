package authz

import (
	"github.com/uptrace/bun"
)

// List-read row filters. These are the SQL mirror of the point-read
// predicates: a list query returns exactly the rows the caller could read
// individually. Filters assume the entity aliases declared on the models.

// FilterOrders applies ownership plus open-pool visibility: a vendor sees its
// own orders, a supplier sees orders assigned to it and every unassigned
// order.
func FilterOrders(q *bun.SelectQuery, p Principal) *bun.SelectQuery {
	switch {
	case p.IsVendor() && p.IsSupplier():
		vendorID, supplierID := *p.VendorID, *p.SupplierID
		return q.WhereGroup(" AND ", func(q *bun.SelectQuery) *bun.SelectQuery {
			return q.
				Where("o.vendor_id = ?", vendorID).
				WhereOr("o.supplier_id = ?", supplierID).
				WhereOr("o.supplier_id IS NULL")
		})
	case p.IsVendor():
		return q.Where("o.vendor_id = ?", *p.VendorID)
	case p.IsSupplier():
		supplierID := *p.SupplierID
		return q.WhereGroup(" AND ", func(q *bun.SelectQuery) *bun.SelectQuery {
			return q.
				Where("o.supplier_id = ?", supplierID).
				WhereOr("o.supplier_id IS NULL")
		})
	default:
		return q.Where("1 = 0")
	}
}
