package patient

import (
	"context"
	"time"

	"github.com/google/uuid"
)

// Repository is the tenant-store persistence contract for patients.
type Repository interface {
	Create(ctx context.Context, p *Patient) error
	GetByID(ctx context.Context, tenantID string, id uuid.UUID) (*Patient, error)
	GetByCode(ctx context.Context, tenantID, code string) (*Patient, error)
	List(ctx context.Context, f Filter) ([]*Patient, error)
	Count(ctx context.Context, tenantID string) (int, error)
	Recent(ctx context.Context, tenantID string, limit int) ([]*Patient, error)
	// CountByMonth groups creations since the cutoff by calendar month,
	// keyed "YYYY-MM".
	CountByMonth(ctx context.Context, tenantID string, since time.Time) (map[string]int, error)
}
