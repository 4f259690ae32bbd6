package hospital

import (
	"context"
	"strings"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/primehealth/hms/internal/platform/apperr"
	"github.com/primehealth/hms/internal/platform/auth"
	"github.com/primehealth/hms/internal/platform/db"
	"github.com/primehealth/hms/internal/platform/notification"
)

// AdminAccount is the first staff account created for a new hospital.
type AdminAccount struct {
	FirstName      string
	LastName       string
	Email          string
	HashedPassword string
	Role           auth.Role
	TenantID       string
}

// AccountStore is the slice of the staff store the registration workflow
// needs. Implemented by the staff domain, wired in main.
type AccountStore interface {
	EmailExists(ctx context.Context, email string) (bool, error)
	CreateAdmin(ctx context.Context, a AdminAccount) error
}

// Provisioner creates and tears down tenant storage namespaces.
type Provisioner interface {
	Provision(ctx context.Context, tenantID string) error
	Rollback(ctx context.Context, tenantID string) error
}

type Service struct {
	repo      Repository
	accounts  AccountStore
	provision Provisioner
	mailer    *notification.Mailer
	logger    zerolog.Logger
}

func NewService(repo Repository, accounts AccountStore, provision Provisioner, mailer *notification.Mailer, logger zerolog.Logger) *Service {
	return &Service{repo: repo, accounts: accounts, provision: provision, mailer: mailer, logger: logger}
}

// Register creates a hospital with a fresh tenant namespace and its first
// HOSPITAL_ADMIN account. Either both records exist afterwards or neither
// does: any failure past the hospital insert deletes the hospital again.
func (s *Service) Register(ctx context.Context, req RegisterRequest) (*RegistrationResult, error) {
	req.Name = strings.TrimSpace(req.Name)
	req.AdminEmail = strings.ToLower(strings.TrimSpace(req.AdminEmail))
	req.LicenseNumber = strings.TrimSpace(req.LicenseNumber)

	if req.Name == "" || req.Address == "" || req.ContactNumber == "" ||
		req.AdminEmail == "" || req.LicenseNumber == "" {
		return nil, apperr.New(apperr.Validation,
			"please provide all required fields: name, address, contactNumber, adminEmail, licenseNumber")
	}

	taken, err := s.accounts.EmailExists(ctx, req.AdminEmail)
	if err != nil {
		return nil, err
	}
	if taken {
		return nil, apperr.New(apperr.Conflict, "a user with this email address already exists")
	}

	dup, err := s.repo.ExistsByLicenseOrEmail(ctx, req.LicenseNumber, req.AdminEmail)
	if err != nil {
		return nil, err
	}
	if dup {
		return nil, apperr.New(apperr.Conflict, "hospital with this license number or admin email already exists")
	}

	h := &Hospital{
		Name:          req.Name,
		Address:       req.Address,
		ContactNumber: req.ContactNumber,
		AdminEmail:    req.AdminEmail,
		LicenseNumber: req.LicenseNumber,
		TenantID:      uuid.NewString(),
		Status:        StatusPending,
	}
	if err := s.repo.Create(ctx, h); err != nil {
		if db.IsUniqueViolation(err) {
			return nil, apperr.New(apperr.Conflict, "hospital with this license number or admin email already exists")
		}
		return nil, err
	}

	if err := s.provision.Provision(ctx, h.TenantID); err != nil {
		s.compensate(ctx, h, nil)
		return nil, apperr.Wrap(apperr.Internal, "failed to provision tenant storage", err)
	}

	tempPassword, err := auth.GenerateTempPassword()
	if err != nil {
		s.compensate(ctx, h, s.provision.Rollback)
		return nil, err
	}
	hashed, err := auth.HashPassword(tempPassword)
	if err != nil {
		s.compensate(ctx, h, s.provision.Rollback)
		return nil, err
	}

	err = s.accounts.CreateAdmin(ctx, AdminAccount{
		FirstName:      "Admin",
		LastName:       h.Name,
		Email:          req.AdminEmail,
		HashedPassword: hashed,
		Role:           auth.RoleHospitalAdmin,
		TenantID:       h.TenantID,
	})
	if err != nil {
		s.compensate(ctx, h, s.provision.Rollback)
		return nil, apperr.Wrap(apperr.Internal, "failed to create admin user", err)
	}

	s.mailer.Dispatch("hospital-registered", req.AdminEmail, map[string]string{
		"hospital_name": h.Name,
		"admin_name":    "Admin",
		"email":         req.AdminEmail,
		"temp_password": tempPassword,
	})

	return &RegistrationResult{
		Hospital:         h,
		AdminCredentials: AdminCredentials{Email: req.AdminEmail, Password: tempPassword},
	}, nil
}

func (s *Service) compensate(ctx context.Context, h *Hospital, rollback func(context.Context, string) error) {
	if rollback != nil {
		if err := rollback(ctx, h.TenantID); err != nil {
			s.logger.Error().Err(err).Str("tenant_id", h.TenantID).Msg("tenant schema rollback failed")
		}
	}
	if err := s.repo.Delete(ctx, h.ID); err != nil {
		s.logger.Error().Err(err).Str("hospital_id", h.ID.String()).Msg("hospital compensation delete failed")
	}
}

// Get returns a hospital by tenant id.
func (s *Service) Get(ctx context.Context, tenantID string) (*Hospital, error) {
	return s.repo.GetByTenantID(ctx, tenantID)
}

// List returns all registered hospitals, newest first.
func (s *Service) List(ctx context.Context) ([]*Hospital, error) {
	return s.repo.List(ctx)
}
