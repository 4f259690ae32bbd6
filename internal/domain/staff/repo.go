package staff

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/primehealth/hms/internal/platform/auth"
)

// Repository is the global-store persistence contract for staff accounts.
type Repository interface {
	Create(ctx context.Context, u *User) error
	GetByID(ctx context.Context, id uuid.UUID) (*User, error)
	GetByEmail(ctx context.Context, email string) (*User, error)
	ExistsByEmail(ctx context.Context, email string) (bool, error)
	ListByTenant(ctx context.Context, tenantID string, role auth.Role) ([]*User, error)
	Update(ctx context.Context, u *User) error
	CountByTenantRole(ctx context.Context, tenantID string, role auth.Role) (int, error)
	NamesByIDs(ctx context.Context, ids []uuid.UUID) (map[uuid.UUID]Name, error)
	SetResetToken(ctx context.Context, id uuid.UUID, token string, expires time.Time) error
	GetByResetToken(ctx context.Context, token string) (*User, error)
	ClearResetToken(ctx context.Context, id uuid.UUID) error
}
