package services

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"mandirdaan/internal/caching"
	"mandirdaan/internal/common"
	"mandirdaan/internal/models"
	"mandirdaan/pkg/logger"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"github.com/stretchr/testify/suite"
)

func amountPtr(v float64) *float64 { return &v }

func claimsFor(tenantID uuid.UUID) *models.Claims {
	return &models.Claims{UserID: uuid.New(), Username: "priya", Role: models.RoleStaff, TenantID: tenantID}
}

func sampleDonation() models.CreateDonationRequest {
	return models.CreateDonationRequest{
		DonorName:     "Amit",
		Address:       "X",
		PhoneNumber:   "999",
		Amount:        amountPtr(500),
		DonationType:  models.DonationTypeMandirNirman,
		PaymentStatus: models.PaymentStatusPledged,
	}
}

type DonationServiceTestSuite struct {
	suite.Suite
	store   *memStore
	service DonationService
	claims  *models.Claims
	ctx     context.Context
}

func (suite *DonationServiceTestSuite) SetupTest() {
	suite.store = newMemStore()
	suite.service = NewDonationService(memDonations{suite.store}, caching.NewNoopCacheService(), logger.NewNop())
	suite.claims = claimsFor(uuid.New())
	suite.ctx = context.Background()
}

func TestDonationServiceTestSuite(t *testing.T) {
	suite.Run(t, new(DonationServiceTestSuite))
}

func (suite *DonationServiceTestSuite) TestRecord_ReportsMissingFields() {
	_, err := suite.service.Record(suite.ctx, suite.claims, models.CreateDonationRequest{DonorName: "Amit"})

	var appErr *common.Error
	suite.Require().True(errors.As(err, &appErr))
	assert.ErrorIs(suite.T(), err, common.ErrValidation)
	assert.Equal(suite.T(), []string{"address", "phoneNumber", "amount", "donationType", "paymentStatus"}, appErr.Fields)
}

func (suite *DonationServiceTestSuite) TestRecord_ZeroAmountAllowedNegativeRejected() {
	req := sampleDonation()
	req.Amount = amountPtr(0)
	_, err := suite.service.Record(suite.ctx, suite.claims, req)
	assert.NoError(suite.T(), err)

	req.Amount = amountPtr(-1)
	_, err = suite.service.Record(suite.ctx, suite.claims, req)
	assert.ErrorIs(suite.T(), err, common.ErrValidation)
}

func (suite *DonationServiceTestSuite) TestRecord_AmountMustFitTheLedger() {
	for _, ok := range []float64{1100.5, 500.13, 0.1, 999999999999.99, 1e11} {
		req := sampleDonation()
		req.Amount = amountPtr(ok)
		d, err := suite.service.Record(suite.ctx, suite.claims, req)
		suite.Require().NoError(err, ok)
		assert.Equal(suite.T(), ok, d.Amount)
	}

	for _, bad := range []float64{500.125, 0.001, 1e12, 5e15} {
		req := sampleDonation()
		req.Amount = amountPtr(bad)
		_, err := suite.service.Record(suite.ctx, suite.claims, req)

		var appErr *common.Error
		suite.Require().True(errors.As(err, &appErr), bad)
		assert.ErrorIs(suite.T(), err, common.ErrValidation)
		assert.Equal(suite.T(), []string{"amount"}, appErr.Fields)
	}
}

func (suite *DonationServiceTestSuite) TestRecord_ResponseMatchesGet() {
	suite.store.users[suite.claims.UserID] = &models.User{
		ID: suite.claims.UserID, TenantID: suite.claims.TenantID, Username: "priya", Name: "Priya Sharma", Role: models.RoleStaff,
	}

	created, err := suite.service.Record(suite.ctx, suite.claims, sampleDonation())
	suite.Require().NoError(err)
	got, err := suite.service.Get(suite.ctx, suite.claims.TenantID, created.ID)
	suite.Require().NoError(err)

	suite.Require().NotNil(created.CreatedBy)
	assert.Equal(suite.T(), "Priya Sharma", created.CreatedBy.Name)
	assert.Equal(suite.T(), got, created)
}

func (suite *DonationServiceTestSuite) TestRecord_RejectsUnknownEnums() {
	req := sampleDonation()
	req.DonationType = "Annadaan"
	_, err := suite.service.Record(suite.ctx, suite.claims, req)
	assert.ErrorIs(suite.T(), err, common.ErrValidation)

	req = sampleDonation()
	req.PaymentStatus = "Paid"
	_, err = suite.service.Record(suite.ctx, suite.claims, req)
	assert.ErrorIs(suite.T(), err, common.ErrValidation)
}

func (suite *DonationServiceTestSuite) TestRecordThenGet_RoundTrip() {
	req := sampleDonation()
	req.DonationDate = "2024-03-15"

	created, err := suite.service.Record(suite.ctx, suite.claims, req)
	suite.Require().NoError(err)

	got, err := suite.service.Get(suite.ctx, suite.claims.TenantID, created.ID)
	suite.Require().NoError(err)

	assert.Equal(suite.T(), req.DonorName, got.DonorName)
	assert.Equal(suite.T(), req.Address, got.Address)
	assert.Equal(suite.T(), req.PhoneNumber, got.PhoneNumber)
	assert.Equal(suite.T(), *req.Amount, got.Amount)
	assert.Equal(suite.T(), time.Date(2024, 3, 15, 0, 0, 0, 0, time.UTC), got.DonationDate)
	assert.Equal(suite.T(), req.DonationType, got.DonationType)
	assert.Equal(suite.T(), req.PaymentStatus, got.PaymentStatus)
	assert.Equal(suite.T(), 0, got.RemindersSent)
	assert.Equal(suite.T(), created.ReceiptNumber, got.ReceiptNumber)
	assert.Equal(suite.T(), suite.claims.TenantID, got.TenantID)
}

func (suite *DonationServiceTestSuite) TestReceiptNumbersIncreasePerTenant() {
	other := claimsFor(uuid.New())
	year := time.Now().Year()

	var previous string
	for i := 1; i <= 3; i++ {
		d, err := suite.service.Record(suite.ctx, suite.claims, sampleDonation())
		suite.Require().NoError(err)
		assert.Equal(suite.T(), models.FormatReceiptNumber("RCP", year, int64(i)), d.ReceiptNumber)
		assert.Greater(suite.T(), d.ReceiptNumber, previous)
		previous = d.ReceiptNumber
	}

	d, err := suite.service.Record(suite.ctx, other, sampleDonation())
	suite.Require().NoError(err)
	assert.Equal(suite.T(), models.FormatReceiptNumber("RCP", year, 1), d.ReceiptNumber)
}

func (suite *DonationServiceTestSuite) TestUpdateStatus_ForeignTenantIsNotFound() {
	d, err := suite.service.Record(suite.ctx, suite.claims, sampleDonation())
	suite.Require().NoError(err)

	_, err = suite.service.UpdateStatus(suite.ctx, uuid.New(), d.ID, models.PaymentStatusReceived)
	assert.ErrorIs(suite.T(), err, common.ErrNotFound)
	assert.NotErrorIs(suite.T(), err, common.ErrForbidden)

	got, err := suite.service.Get(suite.ctx, suite.claims.TenantID, d.ID)
	suite.Require().NoError(err)
	assert.Equal(suite.T(), models.PaymentStatusPledged, got.PaymentStatus)
}

func (suite *DonationServiceTestSuite) TestUpdateStatus_RejectsInvalidStatus() {
	d, err := suite.service.Record(suite.ctx, suite.claims, sampleDonation())
	suite.Require().NoError(err)

	_, err = suite.service.UpdateStatus(suite.ctx, suite.claims.TenantID, d.ID, "Cancelled")
	assert.ErrorIs(suite.T(), err, common.ErrValidation)
}

func (suite *DonationServiceTestSuite) TestSummarize_Idempotent() {
	_, err := suite.service.Record(suite.ctx, suite.claims, sampleDonation())
	suite.Require().NoError(err)

	first, err := suite.service.Summarize(suite.ctx, suite.claims.TenantID)
	suite.Require().NoError(err)
	second, err := suite.service.Summarize(suite.ctx, suite.claims.TenantID)
	suite.Require().NoError(err)
	assert.Equal(suite.T(), first, second)
}

func (suite *DonationServiceTestSuite) TestList_Filters() {
	pledged := sampleDonation()
	pledged.DonationDate = "2024-01-10"
	received := sampleDonation()
	received.PaymentStatus = models.PaymentStatusReceived
	received.DonationType = models.DonationTypeGeneral
	received.DonationDate = "2024-01-31T18:00:00Z"

	_, err := suite.service.Record(suite.ctx, suite.claims, pledged)
	suite.Require().NoError(err)
	_, err = suite.service.Record(suite.ctx, suite.claims, received)
	suite.Require().NoError(err)
	_, err = suite.service.Record(suite.ctx, claimsFor(uuid.New()), received)
	suite.Require().NoError(err)

	all, err := suite.service.List(suite.ctx, suite.claims.TenantID, ListDonationsQuery{})
	suite.Require().NoError(err)
	assert.Len(suite.T(), all, 2)

	onlyReceived, err := suite.service.List(suite.ctx, suite.claims.TenantID, ListDonationsQuery{Status: "Received", Type: "General"})
	suite.Require().NoError(err)
	assert.Len(suite.T(), onlyReceived, 1)

	// The end date is a whole day, so the evening donation on the 31st is included.
	january, err := suite.service.List(suite.ctx, suite.claims.TenantID, ListDonationsQuery{StartDate: "2024-01-10", EndDate: "2024-01-31"})
	suite.Require().NoError(err)
	assert.Len(suite.T(), january, 2)

	_, err = suite.service.List(suite.ctx, suite.claims.TenantID, ListDonationsQuery{Status: "Paid"})
	assert.ErrorIs(suite.T(), err, common.ErrValidation)

	_, err = suite.service.List(suite.ctx, suite.claims.TenantID, ListDonationsQuery{StartDate: "2024-02-01", EndDate: "2024-01-01"})
	assert.ErrorIs(suite.T(), err, common.ErrValidation)
}

func TestSummarize_UsesCacheAndInvalidatesOnWrite(t *testing.T) {
	ctx := context.Background()
	store := newMemStore()
	cache := &MockCacheService{}
	svc := NewDonationService(memDonations{store}, cache, logger.NewNop())
	claims := claimsFor(uuid.New())
	cached := &models.DonationSummary{TotalDonations: 9}

	cache.On("GetTenantSummary", ctx, claims.TenantID).Return(cached, nil).Once()
	got, err := svc.Summarize(ctx, claims.TenantID)
	require.NoError(t, err)
	assert.Same(t, cached, got)
	assert.Equal(t, 0, store.summaries)

	cache.On("InvalidateTenant", ctx, claims.TenantID).Return(nil).Once()
	_, err = svc.Record(ctx, claims, sampleDonation())
	require.NoError(t, err)

	cache.On("GetTenantSummary", ctx, claims.TenantID).Return(nil, nil).Once()
	cache.On("SetTenantSummary", ctx, claims.TenantID, mock.Anything, summaryCacheTTL).Return(nil).Once()
	got, err = svc.Summarize(ctx, claims.TenantID)
	require.NoError(t, err)
	assert.Equal(t, int64(1), got.TotalDonations)
	assert.Equal(t, 1, store.summaries)

	cache.AssertExpectations(t)
}

func TestScenario_ShreeRamMandir(t *testing.T) {
	ctx := context.Background()
	store := newMemStore()
	log := logger.NewNop()
	cache := caching.NewNoopCacheService()

	tenants := NewTenantService(memTenants{store})
	auth := NewAuthService(memUsers{store}, cache, "scenario-secret", log)
	donations := NewDonationService(memDonations{store}, cache, log)

	reg, err := tenants.Register(ctx, models.RegisterTenantRequest{
		Name: "Shree Ram Mandir", Phone: "9990001111", Username: "priya", Password: "secret123",
	})
	require.NoError(t, err)

	session, err := auth.Login(ctx, models.LoginRequest{TenantID: reg.Tenant.ID.String(), Username: "priya", Password: "secret123"})
	require.NoError(t, err)
	claims, err := auth.ValidateToken(session.Token)
	require.NoError(t, err)
	assert.Equal(t, reg.Tenant.ID, claims.TenantID)

	d, err := donations.Record(ctx, claims, sampleDonation())
	require.NoError(t, err)
	assert.Equal(t, fmt.Sprintf("RCP%d000001", time.Now().Year()), d.ReceiptNumber)

	updated, err := donations.UpdateStatus(ctx, claims.TenantID, d.ID, models.PaymentStatusReceived)
	require.NoError(t, err)
	assert.Equal(t, models.PaymentStatusReceived, updated.PaymentStatus)

	summary, err := donations.Summarize(ctx, claims.TenantID)
	require.NoError(t, err)
	assert.Equal(t, float64(500), summary.ReceivedAmount)
	assert.Equal(t, float64(0), summary.PledgedAmount)
	assert.Equal(t, int64(1), summary.TotalDonations)
}
