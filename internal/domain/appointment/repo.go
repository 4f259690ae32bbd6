package appointment

import (
	"context"
	"time"

	"github.com/google/uuid"
)

// Repository is the tenant-store persistence contract for appointments. The
// List and Recent results carry the patient joined in-store; the doctor name
// is filled in by the service.
type Repository interface {
	Create(ctx context.Context, a *Appointment) error
	GetByID(ctx context.Context, tenantID string, id uuid.UUID) (*Appointment, error)
	UpdateStatus(ctx context.Context, tenantID string, id uuid.UUID, status string) (*Appointment, error)
	// SlotTaken is the fast-path conflict check on
	// (doctor, date, slot, Scheduled). The partial unique index remains the
	// authoritative guard.
	SlotTaken(ctx context.Context, tenantID string, doctorID uuid.UUID, date time.Time, slot string) (bool, error)
	List(ctx context.Context, f Filter) ([]*View, error)
	Count(ctx context.Context, tenantID string) (int, error)
	CountByStatus(ctx context.Context, tenantID, status string) (int, error)
	Recent(ctx context.Context, tenantID string, limit int) ([]*View, error)
	// CountByMonth groups creations since the cutoff by calendar month,
	// keyed "YYYY-MM".
	CountByMonth(ctx context.Context, tenantID string, since time.Time) (map[string]int, error)
}
