package dto

import (
	"time"

	"github.com/google/uuid"
)

// VendorResponse represents a vendor profile as exposed via transport layers.
type VendorResponse struct {
	ID                uuid.UUID `json:"id"`
	BusinessName      string    `json:"business_name"`
	OwnerName         string    `json:"owner_name"`
	Phone             string    `json:"phone"`
	Street            string    `json:"street,omitempty"`
	City              string    `json:"city,omitempty"`
	State             string    `json:"state,omitempty"`
	PostalCode        string    `json:"postal_code,omitempty"`
	BusinessType      string    `json:"business_type"`
	TaxRegistrationNo string    `json:"tax_registration_no,omitempty"`
	CreatedAt         time.Time `json:"created_at"`
	UpdatedAt         time.Time `json:"updated_at"`
}
