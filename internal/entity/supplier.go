package entity

import (
	"math"

	"github.com/google/uuid"
	"github.com/uptrace/bun"

	"github.com/streetsupply/streetsupply/pkg/errorbank"
)

// Supplier is the seller-side business profile. Publicly readable so vendors
// can browse the marketplace; writable only by the owning account.
type Supplier struct {
	bun.BaseModel `bun:"table:suppliers,alias:s"`

	ID                  uuid.UUID `bun:"id,pk,type:uuid" json:"id"`
	AccountID           string    `bun:"account_id,notnull,unique" json:"account_id"`
	BusinessName        string    `bun:"business_name,notnull" json:"business_name"`
	OwnerName           string    `bun:"owner_name,notnull" json:"owner_name"`
	Email               string    `bun:"email,notnull" json:"email"`
	Phone               string    `bun:"phone,notnull" json:"phone"`
	Street              string    `bun:"street" json:"street"`
	City                string    `bun:"city" json:"city"`
	State               string    `bun:"state" json:"state"`
	PostalCode          string    `bun:"postal_code" json:"postal_code"`
	BusinessType        string    `bun:"business_type,notnull,default:'street_food'" json:"business_type"`
	TaxRegistrationNo   string    `bun:"tax_registration_no,nullzero" json:"tax_registration_no,omitempty"`
	FoodSafetyLicenseNo string    `bun:"food_safety_license_no,nullzero" json:"food_safety_license_no,omitempty"`
	Rating              float64   `bun:"rating,notnull,default:0" json:"rating"`
	TotalReviews        int       `bun:"total_reviews,notnull,default:0" json:"total_reviews"`

	Timestamps
}

// Validate applies the column-level rules for supplier rows. The rating is
// kept to one decimal of precision.
func (s *Supplier) Validate() error {
	if s.AccountID == "" {
		return errorbank.Violation("account_id", "is required")
	}
	if s.BusinessName == "" {
		return errorbank.Violation("business_name", "is required")
	}
	if s.OwnerName == "" {
		return errorbank.Violation("owner_name", "is required")
	}
	if s.Email == "" {
		return errorbank.Violation("email", "is required")
	}
	if s.Phone == "" {
		return errorbank.Violation("phone", "is required")
	}
	if s.Rating < 0 || s.Rating > 5 {
		return errorbank.Violation("rating", "must be between 0 and 5")
	}
	s.Rating = math.Round(s.Rating*10) / 10
	if s.TotalReviews < 0 {
		return errorbank.Violation("total_reviews", "must not be negative")
	}
	if s.BusinessType == "" {
		s.BusinessType = DefaultBusinessType
	}
	return nil
}
