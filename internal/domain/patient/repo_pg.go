package patient

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

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

const patientCols = `id, code, name, date_of_birth, gender, blood_group,
	contact_number, address, ec_name, ec_phone, ec_relation, patient_type,
	department, assigned_doctor, tenant_id, created_at, updated_at`

func scanPatient(row pgx.Row) (*Patient, error) {
	var p Patient
	err := row.Scan(&p.ID, &p.Code, &p.Name, &p.DateOfBirth, &p.Gender, &p.BloodGroup,
		&p.ContactNumber, &p.Address, &p.EmergencyContact.Name, &p.EmergencyContact.Phone,
		&p.EmergencyContact.Relation, &p.PatientType, &p.Department, &p.AssignedDoctor,
		&p.TenantID, &p.CreatedAt, &p.UpdatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, apperr.New(apperr.NotFound, "patient not found")
	}
	return &p, err
}

func (r *repoPG) Create(ctx context.Context, p *Patient) error {
	conn, err := r.conn(ctx)
	if err != nil {
		return err
	}
	if p.ID == uuid.Nil {
		p.ID = uuid.New()
	}
	return conn.QueryRow(ctx, `
		INSERT INTO patients (id, code, name, date_of_birth, gender, blood_group,
			contact_number, address, ec_name, ec_phone, ec_relation, patient_type,
			department, assigned_doctor, tenant_id)
		VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11,$12,$13,$14,$15)
		RETURNING created_at, updated_at`,
		p.ID, p.Code, p.Name, p.DateOfBirth, p.Gender, p.BloodGroup,
		p.ContactNumber, p.Address, p.EmergencyContact.Name, p.EmergencyContact.Phone,
		p.EmergencyContact.Relation, p.PatientType, p.Department, p.AssignedDoctor,
		p.TenantID).Scan(&p.CreatedAt, &p.UpdatedAt)
}

func (r *repoPG) GetByID(ctx context.Context, tenantID string, id uuid.UUID) (*Patient, error) {
	conn, err := r.conn(ctx)
	if err != nil {
		return nil, err
	}
	return scanPatient(conn.QueryRow(ctx,
		`SELECT `+patientCols+` FROM patients WHERE id = $1 AND tenant_id = $2`, id, tenantID))
}

func (r *repoPG) GetByCode(ctx context.Context, tenantID, code string) (*Patient, error) {
	conn, err := r.conn(ctx)
	if err != nil {
		return nil, err
	}
	return scanPatient(conn.QueryRow(ctx,
		`SELECT `+patientCols+` FROM patients WHERE code = $1 AND tenant_id = $2`, code, tenantID))
}

func (r *repoPG) List(ctx context.Context, f Filter) ([]*Patient, error) {
	conn, err := r.conn(ctx)
	if err != nil {
		return nil, err
	}

	query := `SELECT ` + patientCols + ` FROM patients WHERE tenant_id = $1`
	args := []interface{}{f.TenantID}
	idx := 2

	if f.Search != "" {
		query += fmt.Sprintf(` AND (name ILIKE $%d OR contact_number ILIKE $%d OR code ILIKE $%d)`, idx, idx, idx)
		args = append(args, "%"+escapeLike(f.Search)+"%")
		idx++
	}
	if f.PatientType != "" {
		query += fmt.Sprintf(` AND patient_type = $%d`, idx)
		args = append(args, f.PatientType)
		idx++
	}
	if f.Department != "" {
		query += fmt.Sprintf(` AND department = $%d`, idx)
		args = append(args, f.Department)
		idx++
	}
	if f.AssignedDoctor != nil {
		query += fmt.Sprintf(` AND assigned_doctor = $%d`, idx)
		args = append(args, *f.AssignedDoctor)
		idx++
	}
	query += ` ORDER BY created_at DESC`
	if f.Page.Limit > 0 {
		query += ` ` + f.Page.SQL()
	}

	rows, err := conn.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var items []*Patient
	for rows.Next() {
		p, err := scanPatient(rows)
		if err != nil {
			return nil, err
		}
		items = append(items, p)
	}
	return items, rows.Err()
}

// escapeLike makes user search text match literally inside an ILIKE pattern.
func escapeLike(s string) string {
	return strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`).Replace(s)
}

func (r *repoPG) Count(ctx context.Context, tenantID string) (int, error) {
	conn, err := r.conn(ctx)
	if err != nil {
		return 0, err
	}
	var count int
	err = conn.QueryRow(ctx,
		`SELECT COUNT(*) FROM patients WHERE tenant_id = $1`, tenantID).Scan(&count)
	return count, err
}

func (r *repoPG) Recent(ctx context.Context, tenantID string, limit int) ([]*Patient, error) {
	conn, err := r.conn(ctx)
	if err != nil {
		return nil, err
	}
	rows, err := conn.Query(ctx, `
		SELECT `+patientCols+` FROM patients
		WHERE tenant_id = $1 ORDER BY created_at DESC LIMIT $2`, tenantID, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var items []*Patient
	for rows.Next() {
		p, err := scanPatient(rows)
		if err != nil {
			return nil, err
		}
		items = append(items, p)
	}
	return items, rows.Err()
}

func (r *repoPG) CountByMonth(ctx context.Context, tenantID string, since time.Time) (map[string]int, error) {
	conn, err := r.conn(ctx)
	if err != nil {
		return nil, err
	}
	rows, err := conn.Query(ctx, `
		SELECT to_char(created_at, 'YYYY-MM') AS month, COUNT(*)
		FROM patients
		WHERE tenant_id = $1 AND created_at >= $2
		GROUP BY month ORDER BY month`, tenantID, since)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	out := make(map[string]int)
	for rows.Next() {
		var month string
		var count int
		if err := rows.Scan(&month, &count); err != nil {
			return nil, err
		}
		out[month] = count
	}
	return out, rows.Err()
}
