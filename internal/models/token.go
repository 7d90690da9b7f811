package models

import (
	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

// Claims are carried inside every access token.
type Claims struct {
	UserID   uuid.UUID `json:"user_id"`
	Username string    `json:"username"`
	Role     Role      `json:"role"`
	TenantID uuid.UUID `json:"tenant_id"`
	jwt.RegisteredClaims
}

func (c *Claims) IsAdmin() bool {
	return c.Role == RoleAdmin
}

// AuthResult is returned by a successful login.
type AuthResult struct {
	Token     string  `json:"token"`
	TokenType string  `json:"tokenType"`
	ExpiresIn int     `json:"expiresIn"`
	User      Profile `json:"user"`
}
