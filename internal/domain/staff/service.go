package staff

import (
	"context"
	"io"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/primehealth/hms/internal/platform/apperr"
	"github.com/primehealth/hms/internal/platform/auth"
	"github.com/primehealth/hms/internal/platform/blobstore"
	"github.com/primehealth/hms/internal/platform/db"
	"github.com/primehealth/hms/internal/platform/notification"
)

const resetTokenTTL = time.Hour

type Service struct {
	repo      Repository
	images    blobstore.ImageStore
	mailer    *notification.Mailer
	jwtSecret []byte
	tokenTTL  time.Duration
	logger    zerolog.Logger
}

func NewService(repo Repository, images blobstore.ImageStore, mailer *notification.Mailer,
	jwtSecret []byte, tokenTTL time.Duration, logger zerolog.Logger) *Service {
	return &Service{
		repo:      repo,
		images:    images,
		mailer:    mailer,
		jwtSecret: jwtSecret,
		tokenTTL:  tokenTTL,
		logger:    logger,
	}
}

// Login checks credentials against the global store and mints a session
// token. Unknown email and wrong password produce the same message.
func (s *Service) Login(ctx context.Context, req LoginRequest) (*LoginResult, error) {
	email := strings.ToLower(strings.TrimSpace(req.Email))
	if email == "" || req.Password == "" {
		return nil, apperr.New(apperr.Validation, "please provide an email and password")
	}

	u, err := s.repo.GetByEmail(ctx, email)
	if err != nil {
		if apperr.KindOf(err) == apperr.NotFound {
			return nil, apperr.New(apperr.Unauthenticated, "invalid credentials")
		}
		return nil, err
	}
	if !auth.CheckPassword(u.Password, req.Password) {
		return nil, apperr.New(apperr.Unauthenticated, "invalid credentials")
	}
	if u.Status != StatusActive {
		return nil, apperr.New(apperr.Forbidden, "your account is inactive")
	}

	token, err := auth.GenerateToken(s.jwtSecret, u.ID, u.Role, u.TenantID, s.tokenTTL)
	if err != nil {
		return nil, err
	}
	return &LoginResult{Token: token, User: u}, nil
}

// CreateStaff creates an ACTIVE account in the actor's tenant with a
// generated temporary password. The optional profile image is uploaded on a
// best-effort basis; credentials are emailed and also returned.
func (s *Service) CreateStaff(ctx context.Context, actor *auth.Identity, req CreateUserRequest,
	image io.Reader, imageName, imageType string) (*User, string, error) {

	req.Email = strings.ToLower(strings.TrimSpace(req.Email))
	if req.FirstName == "" || req.LastName == "" || req.Email == "" || req.Role == "" {
		return nil, "", apperr.New(apperr.Validation, "please provide all required fields")
	}
	if !auth.ValidRole(req.Role) {
		return nil, "", apperr.Newf(apperr.Validation, "invalid role: %s", req.Role)
	}

	exists, err := s.repo.ExistsByEmail(ctx, req.Email)
	if err != nil {
		return nil, "", err
	}
	if exists {
		return nil, "", apperr.New(apperr.Conflict, "user with this email already exists")
	}

	tempPassword, err := auth.GenerateTempPassword()
	if err != nil {
		return nil, "", err
	}
	hashed, err := auth.HashPassword(tempPassword)
	if err != nil {
		return nil, "", err
	}

	u := &User{
		FirstName:  req.FirstName,
		LastName:   req.LastName,
		Email:      req.Email,
		Password:   hashed,
		Role:       req.Role,
		TenantID:   actor.TenantID,
		Status:     StatusActive,
		Department: req.Department,
	}

	if image != nil {
		meta, upErr := s.images.Upload(ctx, blobstore.ImageMetadata{
			FileName:    imageName,
			ContentType: imageType,
		}, image)
		if upErr != nil {
			s.logger.Warn().Err(upErr).Str("email", req.Email).Msg("profile image upload failed, creating account without it")
		} else {
			u.ProfilePicture = meta.ID
		}
	}

	if err := s.repo.Create(ctx, u); err != nil {
		if db.IsUniqueViolation(err) {
			return nil, "", apperr.New(apperr.Conflict, "user with this email already exists")
		}
		return nil, "", err
	}

	s.mailer.Dispatch("staff-welcome", u.Email, map[string]string{
		"name":          u.FirstName,
		"role":          string(u.Role),
		"email":         u.Email,
		"temp_password": tempPassword,
	})

	return u, tempPassword, nil
}

// List returns the tenant's staff, optionally filtered by role.
func (s *Service) List(ctx context.Context, tenantID string, role auth.Role) ([]*User, error) {
	if role != "" && !auth.ValidRole(role) {
		return nil, apperr.Newf(apperr.Validation, "invalid role: %s", role)
	}
	return s.repo.ListByTenant(ctx, tenantID, role)
}

// UpdateStaff applies the set fields of req to the user. The account must
// belong to the actor's tenant. A new password is rehashed before storage.
func (s *Service) UpdateStaff(ctx context.Context, actor *auth.Identity, id uuid.UUID, req UpdateUserRequest) (*User, error) {
	u, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if u.TenantID != actor.TenantID && actor.Role != auth.RoleSuperAdmin {
		return nil, apperr.New(apperr.NotFound, "user not found")
	}

	if req.FirstName != nil {
		u.FirstName = *req.FirstName
	}
	if req.LastName != nil {
		u.LastName = *req.LastName
	}
	if req.Role != nil {
		if !auth.ValidRole(*req.Role) {
			return nil, apperr.Newf(apperr.Validation, "invalid role: %s", *req.Role)
		}
		u.Role = *req.Role
	}
	if req.Department != nil {
		u.Department = *req.Department
	}
	if req.Status != nil {
		if *req.Status != StatusActive && *req.Status != StatusInactive {
			return nil, apperr.Newf(apperr.Validation, "invalid status: %s", *req.Status)
		}
		u.Status = *req.Status
	}
	if req.Password != nil && *req.Password != "" {
		hashed, err := auth.HashPassword(*req.Password)
		if err != nil {
			return nil, err
		}
		u.Password = hashed
	}

	if err := s.repo.Update(ctx, u); err != nil {
		return nil, err
	}
	return u, nil
}

// UpdatePhoto stores a new profile image and records its reference. Unlike
// creation, an upload failure fails the whole operation here.
func (s *Service) UpdatePhoto(ctx context.Context, actor *auth.Identity, id uuid.UUID,
	image io.Reader, imageName, imageType string) (*User, error) {

	u, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if u.TenantID != actor.TenantID && actor.Role != auth.RoleSuperAdmin {
		return nil, apperr.New(apperr.NotFound, "user not found")
	}

	meta, err := s.images.Upload(ctx, blobstore.ImageMetadata{
		FileName:    imageName,
		ContentType: imageType,
		OwnerID:     id.String(),
	}, image)
	if err != nil {
		return nil, apperr.Wrap(apperr.Validation, "profile image upload failed", err)
	}

	u.ProfilePicture = meta.ID
	if err := s.repo.Update(ctx, u); err != nil {
		return nil, err
	}
	return u, nil
}

// ForgotPassword issues a reset token and mails it. If the email cannot be
// delivered the token is cleared again so a stale token never lingers.
func (s *Service) ForgotPassword(ctx context.Context, email string) error {
	email = strings.ToLower(strings.TrimSpace(email))
	if email == "" {
		return apperr.New(apperr.Validation, "please provide an email")
	}

	u, err := s.repo.GetByEmail(ctx, email)
	if err != nil {
		return err
	}

	token, err := auth.GenerateResetToken()
	if err != nil {
		return err
	}
	if err := s.repo.SetResetToken(ctx, u.ID, token, time.Now().Add(resetTokenTTL)); err != nil {
		return err
	}

	err = s.mailer.Send(ctx, "password-reset", u.Email, map[string]string{"reset_token": token})
	if err != nil {
		if clearErr := s.repo.ClearResetToken(ctx, u.ID); clearErr != nil {
			s.logger.Error().Err(clearErr).Str("user_id", u.ID.String()).Msg("failed to clear reset token")
		}
		return apperr.Wrap(apperr.Internal, "reset email could not be sent", err)
	}
	return nil
}

// ResetPassword consumes a valid, unexpired token and stores the new
// password.
func (s *Service) ResetPassword(ctx context.Context, token, newPassword string) error {
	if token == "" || newPassword == "" {
		return apperr.New(apperr.Validation, "please provide the reset token and a new password")
	}
	if len(newPassword) < 6 {
		return apperr.New(apperr.Validation, "password must be at least 6 characters")
	}

	u, err := s.repo.GetByResetToken(ctx, token)
	if err != nil {
		if apperr.KindOf(err) == apperr.NotFound {
			return apperr.New(apperr.Validation, "invalid or expired reset token")
		}
		return err
	}

	hashed, err := auth.HashPassword(newPassword)
	if err != nil {
		return err
	}
	u.Password = hashed
	if err := s.repo.Update(ctx, u); err != nil {
		return err
	}
	return s.repo.ClearResetToken(ctx, u.ID)
}

// LoadIdentity resolves a token subject into a request identity. Inactive
// accounts do not resolve.
func (s *Service) LoadIdentity(ctx context.Context, id uuid.UUID) (*auth.Identity, error) {
	u, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if u.Status != StatusActive {
		return nil, apperr.New(apperr.Unauthenticated, "your account is inactive")
	}
	return &auth.Identity{
		ID:         u.ID,
		Role:       u.Role,
		TenantID:   u.TenantID,
		FirstName:  u.FirstName,
		LastName:   u.LastName,
		Email:      u.Email,
		Department: u.Department,
	}, nil
}

// DisplayNames batch-resolves doctor display names for tenant-store joins.
// Missing ids are simply absent from the result; callers substitute the
// UnknownDoctor placeholder.
func (s *Service) DisplayNames(ctx context.Context, ids []uuid.UUID) (map[uuid.UUID]Name, error) {
	return s.repo.NamesByIDs(ctx, ids)
}

// EmailExists reports whether any account uses the email.
func (s *Service) EmailExists(ctx context.Context, email string) (bool, error) {
	return s.repo.ExistsByEmail(ctx, strings.ToLower(strings.TrimSpace(email)))
}

// CreateAccount inserts a pre-hashed account, used by the registration
// workflow for the first admin.
func (s *Service) CreateAccount(ctx context.Context, u *User) error {
	if err := s.repo.Create(ctx, u); err != nil {
		if db.IsUniqueViolation(err) {
			return apperr.New(apperr.Conflict, "user with this email already exists")
		}
		return err
	}
	return nil
}

// CountDoctors returns the number of DOCTOR accounts in a tenant.
func (s *Service) CountDoctors(ctx context.Context, tenantID string) (int, error) {
	return s.repo.CountByTenantRole(ctx, tenantID, auth.RoleDoctor)
}
