package dto

import (
	"time"

	"github.com/google/uuid"
)

// SupplierResponse represents a supplier profile as exposed via transport
// layers. Suppliers are publicly listable, so this is the browse shape too.
type SupplierResponse struct {
	ID                  uuid.UUID `json:"id"`
	BusinessName        string    `json:"business_name"`
	OwnerName           string    `json:"owner_name"`
	Email               string    `json:"email"`
	Phone               string    `json:"phone"`
	Street              string    `json:"street,omitempty"`
	City                string    `json:"city,omitempty"`
	State               string    `json:"state,omitempty"`
	PostalCode          string    `json:"postal_code,omitempty"`
	BusinessType        string    `json:"business_type"`
	TaxRegistrationNo   string    `json:"tax_registration_no,omitempty"`
	FoodSafetyLicenseNo string    `json:"food_safety_license_no,omitempty"`
	Rating              float64   `json:"rating"`
	TotalReviews        int       `json:"total_reviews"`
	CreatedAt           time.Time `json:"created_at"`
	UpdatedAt           time.Time `json:"updated_at"`
}
