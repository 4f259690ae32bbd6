package prescription

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"

	"github.com/primehealth/hms/internal/platform/apperr"
	"github.com/primehealth/hms/internal/platform/db"
)

type queryable interface {
	Query(ctx context.Context, sql string, args ...interface{}) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...interface{}) pgx.Row
	Exec(ctx context.Context, sql string, args ...interface{}) (pgconn.CommandTag, error)
}

type repoPG struct{}

// NewRepoPG returns a Repository that talks to the tenant store resolved on
// the request context.
func NewRepoPG() Repository { return &repoPG{} }

func (r *repoPG) conn(ctx context.Context) (queryable, error) {
	if t := db.TenantFromContext(ctx); t != nil {
		return t, nil
	}
	return nil, apperr.New(apperr.Connection, "no tenant store resolved for request")
}

func (r *repoPG) Create(ctx context.Context, p *Prescription) error {
	conn, err := r.conn(ctx)
	if err != nil {
		return err
	}
	if p.ID == uuid.Nil {
		p.ID = uuid.New()
	}
	return conn.QueryRow(ctx, `
		INSERT INTO prescriptions (id, tenant_id, doctor_id, patient_id, code, medicines, notes)
		VALUES ($1,$2,$3,$4,$5,$6,$7)
		RETURNING created_at, updated_at`,
		p.ID, p.TenantID, p.DoctorID, p.PatientID, p.Code, p.Medicines, p.Notes).
		Scan(&p.CreatedAt, &p.UpdatedAt)
}

const viewQuery = `
	SELECT rx.id, rx.tenant_id, rx.doctor_id, rx.patient_id, rx.code,
		rx.medicines, rx.notes, rx.created_at, rx.updated_at,
		p.id, p.name, p.code, p.gender, p.contact_number
	FROM prescriptions rx
	JOIN patients p ON p.id = rx.patient_id`

func scanView(row pgx.Row) (*View, error) {
	var v View
	err := row.Scan(&v.ID, &v.TenantID, &v.DoctorID, &v.PatientID, &v.Code,
		&v.Medicines, &v.Notes, &v.CreatedAt, &v.UpdatedAt,
		&v.Patient.ID, &v.Patient.Name, &v.Patient.Code, &v.Patient.Gender,
		&v.Patient.ContactNumber)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, apperr.New(apperr.NotFound, "prescription not found")
	}
	return &v, err
}

func (r *repoPG) GetByID(ctx context.Context, tenantID string, id uuid.UUID) (*View, error) {
	conn, err := r.conn(ctx)
	if err != nil {
		return nil, err
	}
	return scanView(conn.QueryRow(ctx,
		viewQuery+` WHERE rx.id = $1 AND rx.tenant_id = $2`, id, tenantID))
}

func (r *repoPG) List(ctx context.Context, tenantID string) ([]*View, error) {
	conn, err := r.conn(ctx)
	if err != nil {
		return nil, err
	}
	rows, err := conn.Query(ctx,
		viewQuery+` WHERE rx.tenant_id = $1 ORDER BY rx.created_at DESC`, tenantID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var items []*View
	for rows.Next() {
		v, err := scanView(rows)
		if err != nil {
			return nil, err
		}
		items = append(items, v)
	}
	return items, rows.Err()
}

func (r *repoPG) CreateTemplate(ctx context.Context, t *Template) error {
	conn, err := r.conn(ctx)
	if err != nil {
		return err
	}
	if t.ID == uuid.Nil {
		t.ID = uuid.New()
	}
	return conn.QueryRow(ctx, `
		INSERT INTO prescription_templates (id, name, medicines, tenant_id, created_by)
		VALUES ($1,$2,$3,$4,$5)
		RETURNING created_at`,
		t.ID, t.Name, t.Medicines, t.TenantID, t.CreatedBy).Scan(&t.CreatedAt)
}

func (r *repoPG) GetTemplate(ctx context.Context, id uuid.UUID) (*Template, error) {
	conn, err := r.conn(ctx)
	if err != nil {
		return nil, err
	}
	var t Template
	err = conn.QueryRow(ctx, `
		SELECT id, name, medicines, tenant_id, created_by, created_at
		FROM prescription_templates WHERE id = $1`, id).
		Scan(&t.ID, &t.Name, &t.Medicines, &t.TenantID, &t.CreatedBy, &t.CreatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, apperr.New(apperr.NotFound, "template not found")
	}
	return &t, err
}

func (r *repoPG) ListTemplates(ctx context.Context, tenantID string) ([]*Template, error) {
	conn, err := r.conn(ctx)
	if err != nil {
		return nil, err
	}
	rows, err := conn.Query(ctx, `
		SELECT id, name, medicines, tenant_id, created_by, created_at
		FROM prescription_templates
		WHERE tenant_id = $1 ORDER BY created_at DESC`, tenantID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var items []*Template
	for rows.Next() {
		var t Template
		if err := rows.Scan(&t.ID, &t.Name, &t.Medicines, &t.TenantID, &t.CreatedBy, &t.CreatedAt); err != nil {
			return nil, err
		}
		items = append(items, &t)
	}
	return items, rows.Err()
}

func (r *repoPG) DeleteTemplate(ctx context.Context, id uuid.UUID) error {
	conn, err := r.conn(ctx)
	if err != nil {
		return err
	}
	_, err = conn.Exec(ctx, `DELETE FROM prescription_templates WHERE id = $1`, id)
	return err
}
