package repositories

import (
	"context"
	"fmt"

	"mandirdaan/internal/models"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
)

type TenantRepository interface {
	Create(ctx context.Context, tenant *models.Tenant) error
	// CreateWithAdmin inserts the tenant and its first admin atomically.
	CreateWithAdmin(ctx context.Context, tenant *models.Tenant, admin *models.User) error
	GetByID(ctx context.Context, id uuid.UUID) (*models.Tenant, error)
	List(ctx context.Context) ([]models.TenantSummary, error)
}

type tenantRepo struct {
	db DBTX
}

func NewTenantRepo(db DBTX) TenantRepository {
	return &tenantRepo{db: db}
}

const insertTenantSQL = `
		INSERT INTO mandirs (id, name, phone_number, email, contact_person, address, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
	`

func insertTenant(ctx context.Context, db DBTX, tenant *models.Tenant) error {
	_, err := db.Exec(ctx, insertTenantSQL,
		tenant.ID, tenant.Name, tenant.PhoneNumber, tenant.Email, tenant.ContactPerson, tenant.Address, tenant.CreatedAt)
	return mapError(err, "Mandir not found", "Mandir already exists")
}

func (r *tenantRepo) Create(ctx context.Context, tenant *models.Tenant) error {
	return insertTenant(ctx, r.db, tenant)
}

func (r *tenantRepo) CreateWithAdmin(ctx context.Context, tenant *models.Tenant, admin *models.User) error {
	return withTx(ctx, r.db, func(tx pgx.Tx) error {
		if err := insertTenant(ctx, tx, tenant); err != nil {
			return fmt.Errorf("insert mandir: %w", err)
		}
		if err := insertUser(ctx, tx, admin); err != nil {
			return fmt.Errorf("insert admin: %w", err)
		}
		return nil
	})
}

func (r *tenantRepo) GetByID(ctx context.Context, id uuid.UUID) (*models.Tenant, error) {
	tenant := &models.Tenant{}
	query := `
		SELECT id, name, phone_number, email, contact_person, address, created_at
		FROM mandirs
		WHERE id = $1
	`
	err := r.db.QueryRow(ctx, query, id).Scan(
		&tenant.ID, &tenant.Name, &tenant.PhoneNumber, &tenant.Email,
		&tenant.ContactPerson, &tenant.Address, &tenant.CreatedAt,
	)
	if err != nil {
		return nil, mapError(err, "Mandir not found", "")
	}
	return tenant, nil
}

func (r *tenantRepo) List(ctx context.Context) ([]models.TenantSummary, error) {
	query := `
		SELECT id, name
		FROM mandirs
		ORDER BY name ASC
	`
	rows, err := r.db.Query(ctx, query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	tenants := []models.TenantSummary{}
	for rows.Next() {
		var t models.TenantSummary
		if err := rows.Scan(&t.ID, &t.Name); err != nil {
			return nil, err
		}
		tenants = append(tenants, t)
	}
	return tenants, rows.Err()
}
