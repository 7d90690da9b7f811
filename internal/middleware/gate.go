package middleware

import (
	"strings"

	"mandirdaan/internal/common"
	"mandirdaan/internal/models"

	"github.com/labstack/echo/v4"
)

const claimsKey = "claims"

// TokenValidator resolves a bearer token into claims.
type TokenValidator interface {
	ValidateToken(token string) (*models.Claims, error)
}

// Gate is called at the top of every authenticated handler. The tenant it
// resolves is the only tenant the rest of the request may touch.
type Gate struct {
	tokens TokenValidator
}

func NewGate(tokens TokenValidator) *Gate {
	return &Gate{tokens: tokens}
}

// Authenticate validates the Authorization header and records the identity
// on the request context.
func (g *Gate) Authenticate(c echo.Context) (*models.Claims, error) {
	if claims, ok := c.Get(claimsKey).(*models.Claims); ok {
		return claims, nil
	}

	header := c.Request().Header.Get(echo.HeaderAuthorization)
	if header == "" {
		return nil, common.NewError(common.ErrUnauthenticated, "No token, authorization denied")
	}

	scheme, token, found := strings.Cut(header, " ")
	token = strings.TrimSpace(token)
	if !found || !strings.EqualFold(scheme, "Bearer") || token == "" {
		return nil, common.NewError(common.ErrUnauthenticated, "Invalid token format")
	}

	claims, err := g.tokens.ValidateToken(token)
	if err != nil {
		return nil, err
	}

	ctx := common.WithIdentity(c.Request().Context(), claims.UserID, claims.TenantID, string(claims.Role))
	c.SetRequest(c.Request().WithContext(ctx))
	c.Set(claimsKey, claims)
	return claims, nil
}

// RequireAdmin authenticates and then rejects non-admin roles.
func (g *Gate) RequireAdmin(c echo.Context) (*models.Claims, error) {
	claims, err := g.Authenticate(c)
	if err != nil {
		return nil, err
	}
	if !claims.IsAdmin() {
		return nil, common.NewError(common.ErrForbidden, "Access denied. Admin only.")
	}
	return claims, nil
}
