package hospital

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/primehealth/hms/internal/platform/apperr"
)

type repoPG struct{ pool *pgxpool.Pool }

// NewRepoPG returns a Repository backed by the shared schema.
func NewRepoPG(pool *pgxpool.Pool) Repository { return &repoPG{pool: pool} }

const hospitalCols = `id, name, address, contact_number, admin_email,
	license_number, tenant_id, status, created_at, updated_at`

func scanHospital(row pgx.Row) (*Hospital, error) {
	var h Hospital
	err := row.Scan(&h.ID, &h.Name, &h.Address, &h.ContactNumber, &h.AdminEmail,
		&h.LicenseNumber, &h.TenantID, &h.Status, &h.CreatedAt, &h.UpdatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, apperr.New(apperr.NotFound, "hospital not found")
	}
	return &h, err
}

func (r *repoPG) Create(ctx context.Context, h *Hospital) error {
	if h.ID == uuid.Nil {
		h.ID = uuid.New()
	}
	return r.pool.QueryRow(ctx, `
		INSERT INTO shared.hospitals (id, name, address, contact_number, admin_email,
			license_number, tenant_id, status)
		VALUES ($1,$2,$3,$4,$5,$6,$7,$8)
		RETURNING created_at, updated_at`,
		h.ID, h.Name, h.Address, h.ContactNumber, h.AdminEmail,
		h.LicenseNumber, h.TenantID, h.Status).Scan(&h.CreatedAt, &h.UpdatedAt)
}

func (r *repoPG) GetByID(ctx context.Context, id uuid.UUID) (*Hospital, error) {
	return scanHospital(r.pool.QueryRow(ctx,
		`SELECT `+hospitalCols+` FROM shared.hospitals WHERE id = $1`, id))
}

func (r *repoPG) GetByTenantID(ctx context.Context, tenantID string) (*Hospital, error) {
	return scanHospital(r.pool.QueryRow(ctx,
		`SELECT `+hospitalCols+` FROM shared.hospitals WHERE tenant_id = $1`, tenantID))
}

func (r *repoPG) ExistsByLicenseOrEmail(ctx context.Context, licenseNumber, adminEmail string) (bool, error) {
	var exists bool
	err := r.pool.QueryRow(ctx, `
		SELECT EXISTS (
			SELECT 1 FROM shared.hospitals
			WHERE license_number = $1 OR admin_email = $2
		)`, licenseNumber, adminEmail).Scan(&exists)
	return exists, err
}

func (r *repoPG) Delete(ctx context.Context, id uuid.UUID) error {
	_, err := r.pool.Exec(ctx, `DELETE FROM shared.hospitals WHERE id = $1`, id)
	return err
}

func (r *repoPG) List(ctx context.Context) ([]*Hospital, error) {
	rows, err := r.pool.Query(ctx,
		`SELECT `+hospitalCols+` FROM shared.hospitals ORDER BY created_at DESC`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var items []*Hospital
	for rows.Next() {
		h, err := scanHospital(rows)
		if err != nil {
			return nil, err
		}
		items = append(items, h)
	}
	return items, rows.Err()
}
