package hospital

import (
	"context"

	"github.com/google/uuid"
)

// Repository is the global-store persistence contract for hospitals.
type Repository interface {
	Create(ctx context.Context, h *Hospital) error
	GetByID(ctx context.Context, id uuid.UUID) (*Hospital, error)
	GetByTenantID(ctx context.Context, tenantID string) (*Hospital, error)
	ExistsByLicenseOrEmail(ctx context.Context, licenseNumber, adminEmail string) (bool, error)
	Delete(ctx context.Context, id uuid.UUID) error
	List(ctx context.Context) ([]*Hospital, error)
}
