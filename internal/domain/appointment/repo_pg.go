package appointment

import (
	"context"
	"errors"
	"fmt"
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

const apptCols = `id, tenant_id, doctor_id, patient_id, appointment_date,
	time_slot, status, reason, created_at, updated_at`

func scanAppointment(row pgx.Row) (*Appointment, error) {
	var a Appointment
	err := row.Scan(&a.ID, &a.TenantID, &a.DoctorID, &a.PatientID, &a.Date,
		&a.TimeSlot, &a.Status, &a.Reason, &a.CreatedAt, &a.UpdatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, apperr.New(apperr.NotFound, "appointment not found")
	}
	return &a, err
}

func (r *repoPG) Create(ctx context.Context, a *Appointment) error {
	conn, err := r.conn(ctx)
	if err != nil {
		return err
	}
	if a.ID == uuid.Nil {
		a.ID = uuid.New()
	}
	return conn.QueryRow(ctx, `
		INSERT INTO appointments (id, tenant_id, doctor_id, patient_id,
			appointment_date, time_slot, status, reason)
		VALUES ($1,$2,$3,$4,$5,$6,$7,$8)
		RETURNING created_at, updated_at`,
		a.ID, a.TenantID, a.DoctorID, a.PatientID,
		a.Date, a.TimeSlot, a.Status, a.Reason).Scan(&a.CreatedAt, &a.UpdatedAt)
}

func (r *repoPG) GetByID(ctx context.Context, tenantID string, id uuid.UUID) (*Appointment, error) {
	conn, err := r.conn(ctx)
	if err != nil {
		return nil, err
	}
	return scanAppointment(conn.QueryRow(ctx,
		`SELECT `+apptCols+` FROM appointments WHERE id = $1 AND tenant_id = $2`, id, tenantID))
}

func (r *repoPG) UpdateStatus(ctx context.Context, tenantID string, id uuid.UUID, status string) (*Appointment, error) {
	conn, err := r.conn(ctx)
	if err != nil {
		return nil, err
	}
	return scanAppointment(conn.QueryRow(ctx, `
		UPDATE appointments SET status = $3, updated_at = NOW()
		WHERE id = $1 AND tenant_id = $2
		RETURNING `+apptCols, id, tenantID, status))
}

func (r *repoPG) SlotTaken(ctx context.Context, tenantID string, doctorID uuid.UUID, date time.Time, slot string) (bool, error) {
	conn, err := r.conn(ctx)
	if err != nil {
		return false, err
	}
	var taken bool
	err = conn.QueryRow(ctx, `
		SELECT EXISTS (
			SELECT 1 FROM appointments
			WHERE tenant_id = $1 AND doctor_id = $2 AND appointment_date = $3
				AND time_slot = $4 AND status = 'Scheduled'
		)`, tenantID, doctorID, date, slot).Scan(&taken)
	return taken, err
}

const viewCols = `a.id, a.tenant_id, a.doctor_id, a.patient_id, a.appointment_date,
	a.time_slot, a.status, a.reason, a.created_at, a.updated_at,
	p.id, p.name, p.contact_number`

func scanView(row pgx.Row) (*View, error) {
	var v View
	err := row.Scan(&v.ID, &v.TenantID, &v.DoctorID, &v.PatientID, &v.Date,
		&v.TimeSlot, &v.Status, &v.Reason, &v.CreatedAt, &v.UpdatedAt,
		&v.Patient.ID, &v.Patient.Name, &v.Patient.ContactNumber)
	return &v, err
}

func (r *repoPG) List(ctx context.Context, f Filter) ([]*View, error) {
	conn, err := r.conn(ctx)
	if err != nil {
		return nil, err
	}

	query := `SELECT ` + viewCols + `
		FROM appointments a
		JOIN patients p ON p.id = a.patient_id
		WHERE a.tenant_id = $1`
	args := []interface{}{f.TenantID}
	idx := 2

	if f.Date != nil {
		query += fmt.Sprintf(` AND a.appointment_date = $%d`, idx)
		args = append(args, *f.Date)
		idx++
	}
	if f.DoctorID != nil {
		query += fmt.Sprintf(` AND a.doctor_id = $%d`, idx)
		args = append(args, *f.DoctorID)
		idx++
	}
	query += ` ORDER BY a.appointment_date, a.time_slot`

	rows, err := conn.Query(ctx, query, args...)
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

func (r *repoPG) Count(ctx context.Context, tenantID string) (int, error) {
	conn, err := r.conn(ctx)
	if err != nil {
		return 0, err
	}
	var count int
	err = conn.QueryRow(ctx,
		`SELECT COUNT(*) FROM appointments WHERE tenant_id = $1`, tenantID).Scan(&count)
	return count, err
}

func (r *repoPG) CountByStatus(ctx context.Context, tenantID, status string) (int, error) {
	conn, err := r.conn(ctx)
	if err != nil {
		return 0, err
	}
	var count int
	err = conn.QueryRow(ctx,
		`SELECT COUNT(*) FROM appointments WHERE tenant_id = $1 AND status = $2`,
		tenantID, status).Scan(&count)
	return count, err
}

func (r *repoPG) Recent(ctx context.Context, tenantID string, limit int) ([]*View, error) {
	conn, err := r.conn(ctx)
	if err != nil {
		return nil, err
	}
	rows, err := conn.Query(ctx, `
		SELECT `+viewCols+`
		FROM appointments a
		JOIN patients p ON p.id = a.patient_id
		WHERE a.tenant_id = $1
		ORDER BY a.created_at DESC LIMIT $2`, tenantID, limit)
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

func (r *repoPG) CountByMonth(ctx context.Context, tenantID string, since time.Time) (map[string]int, error) {
	conn, err := r.conn(ctx)
	if err != nil {
		return nil, err
	}
	rows, err := conn.Query(ctx, `
		SELECT to_char(created_at, 'YYYY-MM') AS month, COUNT(*)
		FROM appointments
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
