package staff

import (
	"time"

	"github.com/google/uuid"

	"github.com/primehealth/hms/internal/platform/auth"
)

// User account status.
const (
	StatusActive   = "ACTIVE"
	StatusInactive = "INACTIVE"
)

// User is a staff account in the global store. Password carries the bcrypt
// hash and is never serialized.
type User struct {
	ID             uuid.UUID `json:"id"`
	FirstName      string    `json:"firstName"`
	LastName       string    `json:"lastName"`
	Email          string    `json:"email"`
	Password       string    `json:"-"`
	Role           auth.Role `json:"role"`
	TenantID       string    `json:"tenantId"`
	Status         string    `json:"status"`
	Department     string    `json:"department,omitempty"`
	ProfilePicture string    `json:"profilePicture,omitempty"`
	CreatedAt      time.Time `json:"createdAt"`
	UpdatedAt      time.Time `json:"updatedAt"`
}

// Name is the display name pair used when joining doctors into tenant-store
// listings.
type Name struct {
	FirstName string `json:"firstName"`
	LastName  string `json:"lastName"`
}

// UnknownDoctor is rendered when a referenced doctor no longer resolves in
// the global store. Listings degrade to this placeholder instead of failing.
var UnknownDoctor = Name{FirstName: "Unknown", LastName: "Doctor"}

// CreateUserRequest is the staff creation payload.
type CreateUserRequest struct {
	FirstName  string    `json:"firstName"`
	LastName   string    `json:"lastName"`
	Email      string    `json:"email"`
	Role       auth.Role `json:"role"`
	Department string    `json:"department"`
}

// UpdateUserRequest carries the mutable staff fields. Nil pointers leave the
// stored value untouched.
type UpdateUserRequest struct {
	FirstName  *string    `json:"firstName"`
	LastName   *string    `json:"lastName"`
	Role       *auth.Role `json:"role"`
	Department *string    `json:"department"`
	Status     *string    `json:"status"`
	Password   *string    `json:"password"`
}

// LoginRequest is the session creation payload.
type LoginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// LoginResult is the successful session outcome.
type LoginResult struct {
	Token string `json:"token"`
	User  *User  `json:"user"`
}
