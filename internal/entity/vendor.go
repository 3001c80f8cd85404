package entity

import (
	"github.com/google/uuid"
	"github.com/uptrace/bun"

	"github.com/streetsupply/streetsupply/pkg/errorbank"
)

// DefaultBusinessType is applied when a vendor registers without one.
const DefaultBusinessType = "street_food"

// Vendor is the buyer-side business profile. Exactly one exists per
// identity-provider account.
type Vendor struct {
	bun.BaseModel `bun:"table:vendors,alias:v"`

	ID                uuid.UUID `bun:"id,pk,type:uuid" json:"id"`
	AccountID         string    `bun:"account_id,notnull,unique" json:"account_id"`
	BusinessName      string    `bun:"business_name,notnull" json:"business_name"`
	OwnerName         string    `bun:"owner_name,notnull" json:"owner_name"`
	Phone             string    `bun:"phone,notnull" json:"phone"`
	Street            string    `bun:"street" json:"street"`
	City              string    `bun:"city" json:"city"`
	State             string    `bun:"state" json:"state"`
	PostalCode        string    `bun:"postal_code" json:"postal_code"`
	BusinessType      string    `bun:"business_type,notnull,default:'street_food'" json:"business_type"`
	TaxRegistrationNo string    `bun:"tax_registration_no,nullzero" json:"tax_registration_no,omitempty"`

	Timestamps
}

// Validate applies the column-level rules for vendor rows.
func (v *Vendor) Validate() error {
	if v.AccountID == "" {
		return errorbank.Violation("account_id", "is required")
	}
	if v.BusinessName == "" {
		return errorbank.Violation("business_name", "is required")
	}
	if v.OwnerName == "" {
		return errorbank.Violation("owner_name", "is required")
	}
	if v.Phone == "" {
		return errorbank.Violation("phone", "is required")
	}
	if v.BusinessType == "" {
		v.BusinessType = DefaultBusinessType
	}
	return nil
}
