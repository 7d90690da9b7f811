package handlers

import (
	"context"
	"io"
	"net/http/httptest"
	"strings"

	"mandirdaan/internal/caching"
	"mandirdaan/internal/common"
	"mandirdaan/internal/jobs"
	"mandirdaan/internal/jobs/background"
	"mandirdaan/internal/middleware"
	"mandirdaan/internal/models"
	"mandirdaan/internal/services"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/mock"
)

type MockAuthService struct {
	mock.Mock
}

func (m *MockAuthService) Login(ctx context.Context, req models.LoginRequest) (*models.AuthResult, error) {
	args := m.Called(ctx, req)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.AuthResult), args.Error(1)
}

func (m *MockAuthService) GenerateToken(user *models.User) (string, error) {
	args := m.Called(user)
	return args.String(0), args.Error(1)
}

func (m *MockAuthService) ValidateToken(token string) (*models.Claims, error) {
	args := m.Called(token)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Claims), args.Error(1)
}

type MockUserService struct {
	mock.Mock
}

func (m *MockUserService) Create(ctx context.Context, tenantID uuid.UUID, req models.CreateUserRequest) (*models.User, error) {
	args := m.Called(ctx, tenantID, req)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.User), args.Error(1)
}

func (m *MockUserService) List(ctx context.Context, tenantID uuid.UUID) ([]*models.User, error) {
	args := m.Called(ctx, tenantID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*models.User), args.Error(1)
}

func (m *MockUserService) Get(ctx context.Context, tenantID, userID uuid.UUID) (*models.User, error) {
	args := m.Called(ctx, tenantID, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.User), args.Error(1)
}

type MockTenantService struct {
	mock.Mock
}

func (m *MockTenantService) Register(ctx context.Context, req models.RegisterTenantRequest) (*models.RegisterTenantResult, error) {
	args := m.Called(ctx, req)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.RegisterTenantResult), args.Error(1)
}

func (m *MockTenantService) List(ctx context.Context) ([]models.TenantSummary, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]models.TenantSummary), args.Error(1)
}

func (m *MockTenantService) Get(ctx context.Context, id uuid.UUID) (*models.Tenant, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Tenant), args.Error(1)
}

type MockDonationService struct {
	mock.Mock
}

func (m *MockDonationService) Record(ctx context.Context, claims *models.Claims, req models.CreateDonationRequest) (*models.Donation, error) {
	args := m.Called(ctx, claims, req)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Donation), args.Error(1)
}

func (m *MockDonationService) List(ctx context.Context, tenantID uuid.UUID, query services.ListDonationsQuery) ([]*models.Donation, error) {
	args := m.Called(ctx, tenantID, query)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*models.Donation), args.Error(1)
}

func (m *MockDonationService) Get(ctx context.Context, tenantID, id uuid.UUID) (*models.Donation, error) {
	args := m.Called(ctx, tenantID, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Donation), args.Error(1)
}

func (m *MockDonationService) UpdateStatus(ctx context.Context, tenantID, id uuid.UUID, status models.PaymentStatus) (*models.Donation, error) {
	args := m.Called(ctx, tenantID, id, status)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Donation), args.Error(1)
}

func (m *MockDonationService) Summarize(ctx context.Context, tenantID uuid.UUID) (*models.DonationSummary, error) {
	args := m.Called(ctx, tenantID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.DonationSummary), args.Error(1)
}

type MockReceiptService struct {
	mock.Mock
}

func (m *MockReceiptService) Render(ctx context.Context, tenantID, donationID uuid.UUID) (*services.ReceiptDocument, error) {
	args := m.Called(ctx, tenantID, donationID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*services.ReceiptDocument), args.Error(1)
}

func (m *MockReceiptService) Publish(ctx context.Context, tenantID, donationID uuid.UUID) (*services.PublishedReceipt, error) {
	args := m.Called(ctx, tenantID, donationID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*services.PublishedReceipt), args.Error(1)
}

type MockBreakdownService struct {
	mock.Mock
}

func (m *MockBreakdownService) ByType(ctx context.Context, tenantID uuid.UUID) ([]models.TypeBreakdown, error) {
	args := m.Called(ctx, tenantID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]models.TypeBreakdown), args.Error(1)
}

type MockScheduler struct {
	mock.Mock
}

func (m *MockScheduler) RunReminderNow(ctx context.Context) (jobs.ReminderRunResult, error) {
	args := m.Called(ctx)
	return args.Get(0).(jobs.ReminderRunResult), args.Error(1)
}

func (m *MockScheduler) GetJobStatus() background.SchedulerStatus {
	args := m.Called()
	return args.Get(0).(background.SchedulerStatus)
}

type stubPinger struct{ err error }

func (s stubPinger) Ping(context.Context) error { return s.err }

// tokens maps bearer tokens to the identities tests act as.
type tokens map[string]*models.Claims

func (t tokens) ValidateToken(token string) (*models.Claims, error) {
	if claims, ok := t[token]; ok {
		return claims, nil
	}
	return nil, common.NewError(common.ErrUnauthenticated, "Invalid or expired token")
}

type testServer struct {
	echo      *echo.Echo
	auth      *MockAuthService
	users     *MockUserService
	tenants   *MockTenantService
	donations *MockDonationService
	receipts  *MockReceiptService
	breakdown *MockBreakdownService
	scheduler *MockScheduler
	admin     *models.Claims
	staff     *models.Claims
}

func newTestServer() *testServer {
	tenantID := uuid.New()
	ts := &testServer{
		echo:      echo.New(),
		auth:      &MockAuthService{},
		users:     &MockUserService{},
		tenants:   &MockTenantService{},
		donations: &MockDonationService{},
		receipts:  &MockReceiptService{},
		breakdown: &MockBreakdownService{},
		scheduler: &MockScheduler{},
		admin:     &models.Claims{UserID: uuid.New(), TenantID: tenantID, Username: "priya", Role: models.RoleAdmin},
		staff:     &models.Claims{UserID: uuid.New(), TenantID: tenantID, Username: "ravi", Role: models.RoleStaff},
	}

	gate := middleware.NewGate(tokens{"admin-token": ts.admin, "staff-token": ts.staff})
	RegisterRoutes(ts.echo.Group("/api"), Handlers{
		Auth:      NewAuthHandlers(ts.auth, ts.users, gate),
		Tenants:   NewTenantHandlers(ts.tenants),
		Donations: NewDonationHandlers(ts.donations, ts.receipts, ts.breakdown, gate),
		Health:    NewHealthHandlers(stubPinger{}, caching.NewNoopCacheService(), "mock", false),
		Jobs:      NewJobHandlers(ts.scheduler, gate),
	})
	return ts
}

func (ts *testServer) do(method, path, token, body string) *httptest.ResponseRecorder {
	var reader io.Reader
	if body != "" {
		reader = strings.NewReader(body)
	}
	req := httptest.NewRequest(method, path, reader)
	if body != "" {
		req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	}
	if token != "" {
		req.Header.Set(echo.HeaderAuthorization, "Bearer "+token)
	}
	rec := httptest.NewRecorder()
	ts.echo.ServeHTTP(rec, req)
	return rec
}
