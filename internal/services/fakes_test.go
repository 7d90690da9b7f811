package services

import (
	"context"
	"sort"
	"sync"
	"time"

	"mandirdaan/internal/common"
	"mandirdaan/internal/models"

	"github.com/google/uuid"
)

// memStore is an in-memory stand-in for the postgres repositories that
// enforces the same uniqueness rules.
type memStore struct {
	mu        sync.Mutex
	tenants   map[uuid.UUID]*models.Tenant
	users     map[uuid.UUID]*models.User
	donations map[uuid.UUID]*models.Donation
	sequences map[uuid.UUID]int64
	summaries int
}

func newMemStore() *memStore {
	return &memStore{
		tenants:   map[uuid.UUID]*models.Tenant{},
		users:     map[uuid.UUID]*models.User{},
		donations: map[uuid.UUID]*models.Donation{},
		sequences: map[uuid.UUID]int64{},
	}
}

type memTenants struct{ *memStore }
type memUsers struct{ *memStore }
type memDonations struct{ *memStore }

func (s *memStore) insertUser(u *models.User) error {
	for _, existing := range s.users {
		if existing.TenantID == u.TenantID && existing.Username == u.Username {
			return common.NewError(common.ErrConflict, "Username already exists")
		}
	}
	cp := *u
	s.users[u.ID] = &cp
	return nil
}

func (r memTenants) Create(_ context.Context, t *models.Tenant) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	cp := *t
	r.tenants[t.ID] = &cp
	return nil
}

func (r memTenants) CreateWithAdmin(_ context.Context, t *models.Tenant, admin *models.User) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if err := r.insertUser(admin); err != nil {
		return err
	}
	cp := *t
	r.tenants[t.ID] = &cp
	return nil
}

func (r memTenants) GetByID(_ context.Context, id uuid.UUID) (*models.Tenant, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	t, ok := r.tenants[id]
	if !ok {
		return nil, common.NewError(common.ErrNotFound, "Mandir not found")
	}
	cp := *t
	return &cp, nil
}

func (r memTenants) List(context.Context) ([]models.TenantSummary, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := []models.TenantSummary{}
	for _, t := range r.tenants {
		out = append(out, models.TenantSummary{ID: t.ID, Name: t.Name})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out, nil
}

func (r memUsers) Create(_ context.Context, u *models.User) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.insertUser(u)
}

func (r memUsers) GetByUsername(_ context.Context, tenantID uuid.UUID, username string) (*models.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, u := range r.users {
		if u.TenantID == tenantID && u.Username == username {
			cp := *u
			return &cp, nil
		}
	}
	return nil, common.NewError(common.ErrNotFound, "User not found")
}

func (r memUsers) GetByID(_ context.Context, tenantID, id uuid.UUID) (*models.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	u, ok := r.users[id]
	if !ok || u.TenantID != tenantID {
		return nil, common.NewError(common.ErrNotFound, "User not found")
	}
	cp := *u
	return &cp, nil
}

func (r memUsers) List(_ context.Context, tenantID uuid.UUID) ([]*models.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := []*models.User{}
	for _, u := range r.users {
		if u.TenantID == tenantID {
			cp := *u
			out = append(out, &cp)
		}
	}
	return out, nil
}

func (r memDonations) Create(_ context.Context, d *models.Donation) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if d.ReceiptNumber == "" {
		r.sequences[d.TenantID]++
		d.ReceiptNumber = models.FormatReceiptNumber("RCP", d.CreatedAt.Year(), r.sequences[d.TenantID])
	}
	for _, existing := range r.donations {
		if existing.TenantID == d.TenantID && existing.ReceiptNumber == d.ReceiptNumber {
			return common.NewError(common.ErrConflict, "Receipt number already issued, please retry")
		}
	}
	cp := *d
	r.donations[d.ID] = &cp
	return nil
}

func (r memDonations) GetByID(_ context.Context, tenantID, id uuid.UUID) (*models.Donation, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	d, ok := r.donations[id]
	if !ok || d.TenantID != tenantID {
		return nil, common.NewError(common.ErrNotFound, "Donation not found")
	}
	cp := *d
	if d.CreatedByID != nil {
		if u, ok := r.users[*d.CreatedByID]; ok {
			cp.CreatedBy = &models.Creator{ID: u.ID, Name: u.Name, Username: u.Username}
		}
	}
	return &cp, nil
}

func (r memDonations) List(_ context.Context, tenantID uuid.UUID, f models.DonationFilter) ([]*models.Donation, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := []*models.Donation{}
	for _, d := range r.donations {
		if d.TenantID != tenantID {
			continue
		}
		if f.Status != nil && d.PaymentStatus != *f.Status {
			continue
		}
		if f.Type != nil && d.DonationType != *f.Type {
			continue
		}
		if f.StartDate != nil && d.DonationDate.Before(*f.StartDate) {
			continue
		}
		if f.EndDate != nil && d.DonationDate.After(*f.EndDate) {
			continue
		}
		cp := *d
		out = append(out, &cp)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	return out, nil
}

func (r memDonations) UpdateStatus(_ context.Context, tenantID, id uuid.UUID, status models.PaymentStatus, at time.Time) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	d, ok := r.donations[id]
	if !ok || d.TenantID != tenantID {
		return common.NewError(common.ErrNotFound, "Donation not found")
	}
	d.PaymentStatus = status
	d.UpdatedAt = at
	return nil
}

func (r memDonations) Summary(_ context.Context, tenantID uuid.UUID) (*models.DonationSummary, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.summaries++
	s := &models.DonationSummary{}
	for _, d := range r.donations {
		if d.TenantID != tenantID {
			continue
		}
		s.TotalDonations++
		s.TotalAmount += d.Amount
		switch d.PaymentStatus {
		case models.PaymentStatusReceived:
			s.ReceivedDonations++
			s.ReceivedAmount += d.Amount
		case models.PaymentStatusPledged:
			s.PledgedDonations++
			s.PledgedAmount += d.Amount
		}
	}
	return s, nil
}

func (r memDonations) SummaryByType(_ context.Context, tenantID uuid.UUID) ([]models.TypeBreakdown, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	byType := map[models.DonationType]*models.TypeBreakdown{}
	for _, d := range r.donations {
		if d.TenantID != tenantID {
			continue
		}
		b, ok := byType[d.DonationType]
		if !ok {
			b = &models.TypeBreakdown{DonationType: d.DonationType}
			byType[d.DonationType] = b
		}
		b.Count++
		b.TotalAmount += d.Amount
		if d.PaymentStatus == models.PaymentStatusReceived {
			b.ReceivedAmount += d.Amount
		} else {
			b.PledgedAmount += d.Amount
		}
	}
	var out []models.TypeBreakdown
	for _, b := range byType {
		out = append(out, *b)
	}
	return out, nil
}

func (r memDonations) ListOverduePledges(_ context.Context, cutoff time.Time) ([]*models.Donation, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []*models.Donation
	for _, d := range r.donations {
		if d.PaymentStatus == models.PaymentStatusPledged && !d.DonationDate.After(cutoff) {
			cp := *d
			out = append(out, &cp)
		}
	}
	return out, nil
}

func (r memDonations) MarkReminderSent(_ context.Context, tenantID, id uuid.UUID, at time.Time) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	d, ok := r.donations[id]
	if !ok || d.TenantID != tenantID {
		return common.NewError(common.ErrNotFound, "Donation not found")
	}
	d.RemindersSent++
	d.LastReminderDate = &at
	return nil
}
