package models

import (
	"time"

	"github.com/google/uuid"
)

// Tenant is a registered mandir. It owns its users and donations.
type Tenant struct {
	ID            uuid.UUID `json:"_id" db:"id"`
	Name          string    `json:"name" db:"name"`
	PhoneNumber   string    `json:"phoneNumber" db:"phone_number"`
	Email         *string   `json:"email,omitempty" db:"email"`
	ContactPerson string    `json:"contactPerson" db:"contact_person"`
	Address       string    `json:"address" db:"address"`
	CreatedAt     time.Time `json:"createdAt" db:"created_at"`
}

// TenantSummary is the public projection used by the mandir picker.
type TenantSummary struct {
	ID   uuid.UUID `json:"_id"`
	Name string    `json:"name"`
}

// RegisterTenantRequest accepts both the current and the legacy field names.
type RegisterTenantRequest struct {
	Name          string  `json:"name"`
	MandirName    string  `json:"mandirName"`
	Phone         string  `json:"phone"`
	PhoneNumber   string  `json:"phoneNumber"`
	ContactPerson string  `json:"contactPerson"`
	Address       string  `json:"address"`
	Email         *string `json:"email,omitempty"`
	Username      string  `json:"username,omitempty"`
	Password      string  `json:"password,omitempty"`
	AdminName     string  `json:"adminName,omitempty"`
}

// DisplayName returns name, falling back to mandirName.
func (r RegisterTenantRequest) DisplayName() string {
	if r.Name != "" {
		return r.Name
	}
	return r.MandirName
}

// ContactPhone returns phone, falling back to phoneNumber.
func (r RegisterTenantRequest) ContactPhone() string {
	if r.Phone != "" {
		return r.Phone
	}
	return r.PhoneNumber
}

// WantsAdmin reports whether the request carries first-admin credentials.
func (r RegisterTenantRequest) WantsAdmin() bool {
	return r.Username != "" || r.Password != ""
}

type RegisterTenantResult struct {
	Tenant *Tenant `json:"-"`
	Admin  *User   `json:"-"`
}
