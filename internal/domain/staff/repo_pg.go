package staff

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/primehealth/hms/internal/platform/apperr"
	"github.com/primehealth/hms/internal/platform/auth"
)

type repoPG struct{ pool *pgxpool.Pool }

// NewRepoPG returns a Repository backed by the shared schema.
func NewRepoPG(pool *pgxpool.Pool) Repository { return &repoPG{pool: pool} }

const userCols = `id, first_name, last_name, email, password, role, tenant_id,
	status, department, profile_picture, created_at, updated_at`

func scanUser(row pgx.Row) (*User, error) {
	var u User
	err := row.Scan(&u.ID, &u.FirstName, &u.LastName, &u.Email, &u.Password,
		&u.Role, &u.TenantID, &u.Status, &u.Department, &u.ProfilePicture,
		&u.CreatedAt, &u.UpdatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, apperr.New(apperr.NotFound, "user not found")
	}
	return &u, err
}

func (r *repoPG) Create(ctx context.Context, u *User) error {
	if u.ID == uuid.Nil {
		u.ID = uuid.New()
	}
	return r.pool.QueryRow(ctx, `
		INSERT INTO shared.users (id, first_name, last_name, email, password,
			role, tenant_id, status, department, profile_picture)
		VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10)
		RETURNING created_at, updated_at`,
		u.ID, u.FirstName, u.LastName, u.Email, u.Password,
		u.Role, u.TenantID, u.Status, u.Department, u.ProfilePicture).
		Scan(&u.CreatedAt, &u.UpdatedAt)
}

func (r *repoPG) GetByID(ctx context.Context, id uuid.UUID) (*User, error) {
	return scanUser(r.pool.QueryRow(ctx,
		`SELECT `+userCols+` FROM shared.users WHERE id = $1`, id))
}

func (r *repoPG) GetByEmail(ctx context.Context, email string) (*User, error) {
	return scanUser(r.pool.QueryRow(ctx,
		`SELECT `+userCols+` FROM shared.users WHERE email = $1`, email))
}

func (r *repoPG) ExistsByEmail(ctx context.Context, email string) (bool, error) {
	var exists bool
	err := r.pool.QueryRow(ctx,
		`SELECT EXISTS (SELECT 1 FROM shared.users WHERE email = $1)`, email).Scan(&exists)
	return exists, err
}

func (r *repoPG) ListByTenant(ctx context.Context, tenantID string, role auth.Role) ([]*User, error) {
	query := `SELECT ` + userCols + ` FROM shared.users WHERE tenant_id = $1`
	args := []interface{}{tenantID}
	if role != "" {
		query += ` AND role = $2`
		args = append(args, role)
	}
	query += ` ORDER BY created_at DESC`

	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var items []*User
	for rows.Next() {
		u, err := scanUser(rows)
		if err != nil {
			return nil, err
		}
		items = append(items, u)
	}
	return items, rows.Err()
}

func (r *repoPG) Update(ctx context.Context, u *User) error {
	tag, err := r.pool.Exec(ctx, `
		UPDATE shared.users
		SET first_name=$2, last_name=$3, password=$4, role=$5, status=$6,
			department=$7, profile_picture=$8, updated_at=NOW()
		WHERE id = $1`,
		u.ID, u.FirstName, u.LastName, u.Password, u.Role, u.Status,
		u.Department, u.ProfilePicture)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return apperr.New(apperr.NotFound, "user not found")
	}
	return nil
}

func (r *repoPG) CountByTenantRole(ctx context.Context, tenantID string, role auth.Role) (int, error) {
	var count int
	err := r.pool.QueryRow(ctx,
		`SELECT COUNT(*) FROM shared.users WHERE tenant_id = $1 AND role = $2`,
		tenantID, role).Scan(&count)
	return count, err
}

func (r *repoPG) NamesByIDs(ctx context.Context, ids []uuid.UUID) (map[uuid.UUID]Name, error) {
	out := make(map[uuid.UUID]Name, len(ids))
	if len(ids) == 0 {
		return out, nil
	}
	rows, err := r.pool.Query(ctx,
		`SELECT id, first_name, last_name FROM shared.users WHERE id = ANY($1)`, ids)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	for rows.Next() {
		var id uuid.UUID
		var n Name
		if err := rows.Scan(&id, &n.FirstName, &n.LastName); err != nil {
			return nil, err
		}
		out[id] = n
	}
	return out, rows.Err()
}

func (r *repoPG) SetResetToken(ctx context.Context, id uuid.UUID, token string, expires time.Time) error {
	tag, err := r.pool.Exec(ctx, `
		UPDATE shared.users
		SET reset_token=$2, reset_token_expires=$3, updated_at=NOW()
		WHERE id = $1`, id, token, expires)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return apperr.New(apperr.NotFound, "user not found")
	}
	return nil
}

func (r *repoPG) GetByResetToken(ctx context.Context, token string) (*User, error) {
	return scanUser(r.pool.QueryRow(ctx, `
		SELECT `+userCols+` FROM shared.users
		WHERE reset_token = $1 AND reset_token_expires > NOW()`, token))
}

func (r *repoPG) ClearResetToken(ctx context.Context, id uuid.UUID) error {
	_, err := r.pool.Exec(ctx, `
		UPDATE shared.users
		SET reset_token=NULL, reset_token_expires=NULL, updated_at=NOW()
		WHERE id = $1`, id)
	return err
}
