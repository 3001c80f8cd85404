package authz

import (
	"github.com/google/uuid"

	"github.com/streetsupply/streetsupply/internal/identity"
)

// Principal is a caller resolved against the marketplace profiles. VendorID
// and SupplierID are set when a profile of that type is linked to the
// caller's account; both nil means the account has not onboarded yet.
type Principal struct {
	AccountID  string
	Anonymous  bool
	VendorID   *uuid.UUID
	SupplierID *uuid.UUID
}

// AnonymousPrincipal is the resolved form of the unauthenticated caller.
var AnonymousPrincipal = Principal{Anonymous: true}

// FromCaller builds an unresolved principal carrying only the identity.
func FromCaller(c identity.Caller) Principal {
	if !c.Authenticated() {
		return AnonymousPrincipal
	}
	return Principal{AccountID: c.AccountID}
}

// IsVendor reports whether the principal owns a vendor profile.
func (p Principal) IsVendor() bool {
	return !p.Anonymous && p.VendorID != nil
}

// IsSupplier reports whether the principal owns a supplier profile.
func (p Principal) IsSupplier() bool {
	return !p.Anonymous && p.SupplierID != nil
}

func (p Principal) ownsVendor(id uuid.UUID) bool {
	return p.IsVendor() && *p.VendorID == id
}

func (p Principal) ownsSupplier(id uuid.UUID) bool {
	return p.IsSupplier() && *p.SupplierID == id
}
