package repositories

import (
	"context"

	"mandirdaan/internal/models"

	"github.com/google/uuid"
)

// UserRepository scopes every lookup by tenant; usernames are only unique
// within a tenant.
type UserRepository interface {
	Create(ctx context.Context, user *models.User) error
	GetByUsername(ctx context.Context, tenantID uuid.UUID, username string) (*models.User, error)
	GetByID(ctx context.Context, tenantID, id uuid.UUID) (*models.User, error)
	List(ctx context.Context, tenantID uuid.UUID) ([]*models.User, error)
}

type userRepo struct {
	db DBTX
}

func NewUserRepo(db DBTX) UserRepository {
	return &userRepo{db: db}
}

func insertUser(ctx context.Context, db DBTX, user *models.User) error {
	query := `
		INSERT INTO users (id, tenant_id, username, password_hash, name, role, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
	`
	_, err := db.Exec(ctx, query,
		user.ID, user.TenantID, user.Username, user.PasswordHash, user.Name, string(user.Role), user.CreatedAt)
	return mapError(err, "User not found", "Username already exists")
}

func (r *userRepo) Create(ctx context.Context, user *models.User) error {
	return insertUser(ctx, r.db, user)
}

const selectUserSQL = `
		SELECT id, tenant_id, username, password_hash, name, role, created_at
		FROM users
	`

func (r *userRepo) scanOne(ctx context.Context, query string, args ...any) (*models.User, error) {
	u := &models.User{}
	var role string
	err := r.db.QueryRow(ctx, query, args...).Scan(
		&u.ID, &u.TenantID, &u.Username, &u.PasswordHash, &u.Name, &role, &u.CreatedAt,
	)
	if err != nil {
		return nil, mapError(err, "User not found", "")
	}
	u.Role = models.Role(role)
	return u, nil
}

func (r *userRepo) GetByUsername(ctx context.Context, tenantID uuid.UUID, username string) (*models.User, error) {
	return r.scanOne(ctx, selectUserSQL+` WHERE tenant_id = $1 AND username = $2`, tenantID, username)
}

func (r *userRepo) GetByID(ctx context.Context, tenantID, id uuid.UUID) (*models.User, error) {
	return r.scanOne(ctx, selectUserSQL+` WHERE tenant_id = $1 AND id = $2`, tenantID, id)
}

func (r *userRepo) List(ctx context.Context, tenantID uuid.UUID) ([]*models.User, error) {
	rows, err := r.db.Query(ctx, selectUserSQL+` WHERE tenant_id = $1 ORDER BY created_at ASC`, tenantID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	users := []*models.User{}
	for rows.Next() {
		u := &models.User{}
		var role string
		if err := rows.Scan(&u.ID, &u.TenantID, &u.Username, &u.PasswordHash, &u.Name, &role, &u.CreatedAt); err != nil {
			return nil, err
		}
		u.Role = models.Role(role)
		users = append(users, u)
	}
	return users, rows.Err()
}
