package models

import (
	"time"

	"github.com/google/uuid"
)

type Role string

const (
	RoleAdmin Role = "admin"
	RoleStaff Role = "staff"
)

func (r Role) IsValid() bool {
	return r == RoleAdmin || r == RoleStaff
}

type User struct {
	ID           uuid.UUID `json:"_id" db:"id"`
	TenantID     uuid.UUID `json:"mandirId" db:"tenant_id"`
	Username     string    `json:"username" db:"username"`
	PasswordHash string    `json:"-" db:"password_hash"` // Never serialize in JSON
	Name         string    `json:"name" db:"name"`
	Role         Role      `json:"role" db:"role"`
	CreatedAt    time.Time `json:"createdAt" db:"created_at"`
}

// Profile is the sanitized view returned by login and user creation.
type Profile struct {
	ID       uuid.UUID `json:"id"`
	Username string    `json:"username"`
	Name     string    `json:"name"`
	Role     Role      `json:"role"`
	MandirID uuid.UUID `json:"mandirId"`
}

func (u *User) Profile() Profile {
	return Profile{
		ID:       u.ID,
		Username: u.Username,
		Name:     u.Name,
		Role:     u.Role,
		MandirID: u.TenantID,
	}
}

type CreateUserRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
	Name     string `json:"name"`
	Role     Role   `json:"role"`
}

type LoginRequest struct {
	TenantID string `json:"tenantId"`
	MandirID string `json:"mandirId"`
	Username string `json:"username"`
	Password string `json:"password"`
}

// Tenant returns tenantId, falling back to mandirId.
func (r LoginRequest) Tenant() string {
	if r.TenantID != "" {
		return r.TenantID
	}
	return r.MandirID
}
