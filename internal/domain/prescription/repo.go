package prescription

import (
	"context"

	"github.com/google/uuid"
)

// Repository is the tenant-store persistence contract for prescriptions and
// templates. Views carry the patient joined in-store; the doctor name is
// filled in by the service.
type Repository interface {
	Create(ctx context.Context, p *Prescription) error
	GetByID(ctx context.Context, tenantID string, id uuid.UUID) (*View, error)
	List(ctx context.Context, tenantID string) ([]*View, error)

	CreateTemplate(ctx context.Context, t *Template) error
	GetTemplate(ctx context.Context, id uuid.UUID) (*Template, error)
	ListTemplates(ctx context.Context, tenantID string) ([]*Template, error)
	DeleteTemplate(ctx context.Context, id uuid.UUID) error
}
