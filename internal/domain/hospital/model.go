package hospital

import (
	"time"

	"github.com/google/uuid"
)

// Status is the lifecycle state of a registered hospital.
type Status string

const (
	StatusPending   Status = "PENDING"
	StatusVerified  Status = "VERIFIED"
	StatusActive    Status = "ACTIVE"
	StatusSuspended Status = "SUSPENDED"
	StatusInactive  Status = "INACTIVE"
)

// Hospital is a registered tenant. TenantID is generated at registration and
// never changes; it keys the tenant storage namespace.
type Hospital struct {
	ID            uuid.UUID `json:"id"`
	Name          string    `json:"name"`
	Address       string    `json:"address"`
	ContactNumber string    `json:"contactNumber"`
	AdminEmail    string    `json:"adminEmail"`
	LicenseNumber string    `json:"licenseNumber"`
	TenantID      string    `json:"tenantId"`
	Status        Status    `json:"status"`
	CreatedAt     time.Time `json:"createdAt"`
	UpdatedAt     time.Time `json:"updatedAt"`
}

// RegisterRequest is the public registration payload.
type RegisterRequest struct {
	Name          string `json:"name"`
	Address       string `json:"address"`
	ContactNumber string `json:"contactNumber"`
	AdminEmail    string `json:"adminEmail"`
	LicenseNumber string `json:"licenseNumber"`
}

// AdminCredentials carries the first admin's one-time login details back to
// the caller.
type AdminCredentials struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// RegistrationResult is the successful registration outcome.
type RegistrationResult struct {
	Hospital         *Hospital        `json:"hospital"`
	AdminCredentials AdminCredentials `json:"adminCredentials"`
}
