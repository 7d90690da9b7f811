package repositories

import (
	"context"
	"fmt"
	"strings"
	"time"

	"mandirdaan/internal/common"
	"mandirdaan/internal/models"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
)

type DonationRepository interface {
	// Create assigns the next receipt number for the tenant when none is set
	// and inserts the donation in the same transaction.
	Create(ctx context.Context, donation *models.Donation) error
	GetByID(ctx context.Context, tenantID, id uuid.UUID) (*models.Donation, error)
	List(ctx context.Context, tenantID uuid.UUID, filter models.DonationFilter) ([]*models.Donation, error)
	UpdateStatus(ctx context.Context, tenantID, id uuid.UUID, status models.PaymentStatus, at time.Time) error
	Summary(ctx context.Context, tenantID uuid.UUID) (*models.DonationSummary, error)
	SummaryByType(ctx context.Context, tenantID uuid.UUID) ([]models.TypeBreakdown, error)

	// Reminder scan, across all tenants.
	ListOverduePledges(ctx context.Context, cutoff time.Time) ([]*models.Donation, error)
	MarkReminderSent(ctx context.Context, tenantID, id uuid.UUID, at time.Time) error
}

type donationRepo struct {
	db            DBTX
	receiptPrefix string
}

func NewDonationRepo(db DBTX, receiptPrefix string) DonationRepository {
	return &donationRepo{db: db, receiptPrefix: receiptPrefix}
}

// The first use of the counter for a tenant starts after the donations it
// already has, so numbers issued before the counter existed are not reused.
const nextReceiptSQL = `
		INSERT INTO receipt_sequences (tenant_id, last_value)
		VALUES ($1, (SELECT COUNT(*) FROM donations WHERE tenant_id = $1) + 1)
		ON CONFLICT (tenant_id) DO UPDATE SET last_value = receipt_sequences.last_value + 1
		RETURNING last_value
	`

const insertDonationSQL = `
		INSERT INTO donations (
			id, tenant_id, created_by, donor_name, address, phone_number, amount,
			donation_date, donation_type, payment_status, receipt_number,
			reminders_sent, created_at, updated_at
		)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14)
	`

const selectDonationSQL = `
		SELECT d.id, d.tenant_id, d.donor_name, d.address, d.phone_number, d.amount,
			d.donation_date, d.donation_type, d.payment_status, d.receipt_number,
			d.reminders_sent, d.last_reminder_date, d.created_by, d.created_at, d.updated_at,
			u.name, u.username
		FROM donations d
		LEFT JOIN users u ON u.id = d.created_by
	`

func (r *donationRepo) Create(ctx context.Context, d *models.Donation) error {
	return withTx(ctx, r.db, func(tx pgx.Tx) error {
		if d.ReceiptNumber == "" {
			var seq int64
			if err := tx.QueryRow(ctx, nextReceiptSQL, d.TenantID).Scan(&seq); err != nil {
				return fmt.Errorf("next receipt sequence: %w", err)
			}
			d.ReceiptNumber = models.FormatReceiptNumber(r.receiptPrefix, d.CreatedAt.Year(), seq)
		}

		_, err := tx.Exec(ctx, insertDonationSQL,
			d.ID, d.TenantID, d.CreatedByID, d.DonorName, d.Address, d.PhoneNumber, d.Amount,
			d.DonationDate, string(d.DonationType), string(d.PaymentStatus), d.ReceiptNumber,
			d.RemindersSent, d.CreatedAt, d.UpdatedAt,
		)
		return mapError(err, "Donation not found", "Receipt number already issued, please retry")
	})
}

func scanDonation(row pgx.Row) (*models.Donation, error) {
	d := &models.Donation{}
	var donationType, status string
	var creatorName, creatorUsername *string
	err := row.Scan(
		&d.ID, &d.TenantID, &d.DonorName, &d.Address, &d.PhoneNumber, &d.Amount,
		&d.DonationDate, &donationType, &status, &d.ReceiptNumber,
		&d.RemindersSent, &d.LastReminderDate, &d.CreatedByID, &d.CreatedAt, &d.UpdatedAt,
		&creatorName, &creatorUsername,
	)
	if err != nil {
		return nil, err
	}
	d.DonationType = models.DonationType(donationType)
	d.PaymentStatus = models.PaymentStatus(status)
	if d.CreatedByID != nil && creatorUsername != nil {
		d.CreatedBy = &models.Creator{
			ID:       *d.CreatedByID,
			Name:     common.SafeString(creatorName),
			Username: *creatorUsername,
		}
	}
	return d, nil
}

func (r *donationRepo) GetByID(ctx context.Context, tenantID, id uuid.UUID) (*models.Donation, error) {
	d, err := scanDonation(r.db.QueryRow(ctx, selectDonationSQL+` WHERE d.tenant_id = $1 AND d.id = $2`, tenantID, id))
	if err != nil {
		return nil, mapError(err, "Donation not found", "")
	}
	return d, nil
}

func (r *donationRepo) List(ctx context.Context, tenantID uuid.UUID, filter models.DonationFilter) ([]*models.Donation, error) {
	conditions := []string{"d.tenant_id = $1"}
	args := []any{tenantID}

	if filter.Status != nil {
		args = append(args, string(*filter.Status))
		conditions = append(conditions, fmt.Sprintf("d.payment_status = $%d", len(args)))
	}
	if filter.Type != nil {
		args = append(args, string(*filter.Type))
		conditions = append(conditions, fmt.Sprintf("d.donation_type = $%d", len(args)))
	}
	if filter.StartDate != nil {
		args = append(args, *filter.StartDate)
		conditions = append(conditions, fmt.Sprintf("d.donation_date >= $%d", len(args)))
	}
	if filter.EndDate != nil {
		args = append(args, *filter.EndDate)
		conditions = append(conditions, fmt.Sprintf("d.donation_date <= $%d", len(args)))
	}

	query := selectDonationSQL + " WHERE " + strings.Join(conditions, " AND ") + " ORDER BY d.created_at DESC"
	return r.queryDonations(ctx, query, args...)
}

func (r *donationRepo) queryDonations(ctx context.Context, query string, args ...any) ([]*models.Donation, error) {
	rows, err := r.db.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	donations := []*models.Donation{}
	for rows.Next() {
		d, err := scanDonation(rows)
		if err != nil {
			return nil, err
		}
		donations = append(donations, d)
	}
	return donations, rows.Err()
}

func (r *donationRepo) UpdateStatus(ctx context.Context, tenantID, id uuid.UUID, status models.PaymentStatus, at time.Time) error {
	query := `
		UPDATE donations
		SET payment_status = $3, updated_at = $4
		WHERE tenant_id = $1 AND id = $2
	`
	tag, err := r.db.Exec(ctx, query, tenantID, id, string(status), at)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return common.NewError(common.ErrNotFound, "Donation not found")
	}
	return nil
}

func (r *donationRepo) Summary(ctx context.Context, tenantID uuid.UUID) (*models.DonationSummary, error) {
	query := `
		SELECT COUNT(*),
			COUNT(*) FILTER (WHERE payment_status = 'Received'),
			COUNT(*) FILTER (WHERE payment_status = 'Pledged'),
			COALESCE(SUM(amount), 0)::float8,
			COALESCE(SUM(amount) FILTER (WHERE payment_status = 'Received'), 0)::float8,
			COALESCE(SUM(amount) FILTER (WHERE payment_status = 'Pledged'), 0)::float8
		FROM donations
		WHERE tenant_id = $1
	`
	s := &models.DonationSummary{}
	err := r.db.QueryRow(ctx, query, tenantID).Scan(
		&s.TotalDonations, &s.ReceivedDonations, &s.PledgedDonations,
		&s.TotalAmount, &s.ReceivedAmount, &s.PledgedAmount,
	)
	if err != nil {
		return nil, err
	}
	return s, nil
}

func (r *donationRepo) SummaryByType(ctx context.Context, tenantID uuid.UUID) ([]models.TypeBreakdown, error) {
	query := `
		SELECT donation_type,
			COUNT(*),
			COALESCE(SUM(amount), 0)::float8,
			COALESCE(SUM(amount) FILTER (WHERE payment_status = 'Received'), 0)::float8,
			COALESCE(SUM(amount) FILTER (WHERE payment_status = 'Pledged'), 0)::float8
		FROM donations
		WHERE tenant_id = $1
		GROUP BY donation_type
	`
	rows, err := r.db.Query(ctx, query, tenantID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []models.TypeBreakdown
	for rows.Next() {
		var b models.TypeBreakdown
		var donationType string
		if err := rows.Scan(&donationType, &b.Count, &b.TotalAmount, &b.ReceivedAmount, &b.PledgedAmount); err != nil {
			return nil, err
		}
		b.DonationType = models.DonationType(donationType)
		out = append(out, b)
	}
	return out, rows.Err()
}

func (r *donationRepo) ListOverduePledges(ctx context.Context, cutoff time.Time) ([]*models.Donation, error) {
	query := selectDonationSQL + ` WHERE d.payment_status = $1 AND d.donation_date <= $2 ORDER BY d.donation_date ASC`
	return r.queryDonations(ctx, query, string(models.PaymentStatusPledged), cutoff)
}

func (r *donationRepo) MarkReminderSent(ctx context.Context, tenantID, id uuid.UUID, at time.Time) error {
	query := `
		UPDATE donations
		SET reminders_sent = reminders_sent + 1, last_reminder_date = $3, updated_at = $3
		WHERE tenant_id = $1 AND id = $2
	`
	tag, err := r.db.Exec(ctx, query, tenantID, id, at)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return common.NewError(common.ErrNotFound, "Donation not found")
	}
	return nil
}
