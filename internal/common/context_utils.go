package common

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"mandirdaan/pkg/logger"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
	"go.uber.org/zap"
)

type contextKey string

const (
	UserIDKey   contextKey = "user_id"
	TenantIDKey contextKey = "tenant_id"
	RoleKey     contextKey = "role"

	loggerKey = "logger"
)

// SetLogger attaches the request-scoped logger used when an error response
// is written.
func SetLogger(c echo.Context, log *logger.Logger) {
	c.Set(loggerKey, log)
}

// LoggerFrom returns the logger set by SetLogger, or a no-op logger.
func LoggerFrom(c echo.Context) *logger.Logger {
	if log, ok := c.Get(loggerKey).(*logger.Logger); ok && log != nil {
		return log
	}
	return logger.NewNop()
}

// ErrorResponse represents a standardized error response.
// Message duplicates Error.Message for clients that read a top-level field.
type ErrorResponse struct {
	Message string `json:"message"`
	Error   struct {
		Code    string            `json:"code"`
		Message string            `json:"message"`
		Details map[string]string `json:"details,omitempty"`
	} `json:"error"`
}

// CreateErrorResponse creates a standardized error response
func CreateErrorResponse(code string, message string, details map[string]string) *ErrorResponse {
	var resp ErrorResponse
	resp.Message = message
	resp.Error.Code = code
	resp.Error.Message = message
	resp.Error.Details = details
	return &resp
}

// SendError maps an error kind onto a status code and writes the envelope.
// Unknown errors become a generic 500 so storage details never leak.
func SendError(c echo.Context, err error) error {
	var appErr *Error
	message := ""
	var details map[string]string
	if errors.As(err, &appErr) {
		message = appErr.Message
		if len(appErr.Fields) > 0 {
			details = make(map[string]string, len(appErr.Fields))
			for _, f := range appErr.Fields {
				details[f] = "is required or invalid"
			}
		}
	}

	status, code, fallback := classify(err)
	if message == "" || status == http.StatusInternalServerError {
		message = fallback
	}
	if status == http.StatusInternalServerError || status == http.StatusServiceUnavailable {
		LoggerFrom(c).Error("request failed", err,
			zap.String("method", c.Request().Method),
			zap.String("path", c.Path()),
			zap.Int("status", status),
		)
	}
	return c.JSON(status, CreateErrorResponse(code, message, details))
}

func classify(err error) (int, string, string) {
	switch {
	case errors.Is(err, ErrValidation):
		return http.StatusBadRequest, "VALIDATION_ERROR", "Validation failed"
	case errors.Is(err, ErrInvalidCredentials):
		return http.StatusUnauthorized, "INVALID_CREDENTIALS", "Invalid credentials"
	case errors.Is(err, ErrUnauthenticated):
		return http.StatusUnauthorized, "UNAUTHORIZED", "Unauthorized access"
	case errors.Is(err, ErrForbidden):
		return http.StatusForbidden, "FORBIDDEN", "Access denied"
	case errors.Is(err, ErrNotFound):
		return http.StatusNotFound, "NOT_FOUND", "Not found"
	case errors.Is(err, ErrConflict):
		return http.StatusConflict, "CONFLICT", "Resource already exists"
	case errors.Is(err, ErrRateLimited):
		return http.StatusTooManyRequests, "RATE_LIMITED", "Too many attempts, try again later"
	case errors.Is(err, ErrUnavailable):
		return http.StatusServiceUnavailable, "UNAVAILABLE", "Service temporarily unavailable"
	default:
		return http.StatusInternalServerError, "SERVER_ERROR", "Server error"
	}
}

// SendClientError sends a client error response
func SendClientError(c echo.Context, message string) error {
	return c.JSON(http.StatusBadRequest, CreateErrorResponse("CLIENT_ERROR", message, nil))
}

// SendNotFoundError sends a not found error response
func SendNotFoundError(c echo.Context, resource string) error {
	return c.JSON(http.StatusNotFound, CreateErrorResponse("NOT_FOUND", fmt.Sprintf("%s not found", resource), nil))
}

// ParseID parses a path id. A malformed id is reported as not found so
// callers cannot probe for id formats of other tenants.
func ParseID(idStr, resource string) (uuid.UUID, error) {
	id, err := uuid.Parse(strings.TrimSpace(idStr))
	if err != nil {
		return uuid.Nil, NewError(ErrNotFound, resource+" not found")
	}
	return id, nil
}

// ParseDate accepts RFC3339 timestamps and plain YYYY-MM-DD dates.
func ParseDate(value, fieldName string) (time.Time, error) {
	value = strings.TrimSpace(value)
	if t, err := time.Parse(time.RFC3339, value); err == nil {
		return t, nil
	}
	if t, err := time.Parse("2006-01-02", value); err == nil {
		return t, nil
	}
	return time.Time{}, NewValidationError(fmt.Sprintf("%s must be a date (YYYY-MM-DD) or RFC3339 timestamp", fieldName), fieldName)
}

// IsDateOnly reports whether value is a plain YYYY-MM-DD date.
func IsDateOnly(value string) bool {
	_, err := time.Parse("2006-01-02", strings.TrimSpace(value))
	return err == nil
}

// SafeString safely handles string pointer operations
func SafeString(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}

// StringPtr returns nil for blank input.
func StringPtr(s string) *string {
	s = strings.TrimSpace(s)
	if s == "" {
		return nil
	}
	return &s
}

// WithIdentity stores the authenticated user and tenant on the context.
func WithIdentity(ctx context.Context, userID, tenantID uuid.UUID, role string) context.Context {
	ctx = context.WithValue(ctx, UserIDKey, userID)
	ctx = context.WithValue(ctx, TenantIDKey, tenantID)
	return context.WithValue(ctx, RoleKey, role)
}

// GetUserIDFromContext extracts the user ID from the request context
func GetUserIDFromContext(ctx context.Context) (uuid.UUID, bool) {
	userID, ok := ctx.Value(UserIDKey).(uuid.UUID)
	return userID, ok
}

// GetTenantIDFromContext extracts the tenant ID from the request context
func GetTenantIDFromContext(ctx context.Context) (uuid.UUID, bool) {
	tenantID, ok := ctx.Value(TenantIDKey).(uuid.UUID)
	return tenantID, ok
}
