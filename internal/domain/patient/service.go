package patient

import (
	"context"
	"crypto/rand"
	"fmt"
	"math/big"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/primehealth/hms/internal/platform/apperr"
	"github.com/primehealth/hms/internal/platform/auth"
	"github.com/primehealth/hms/internal/platform/db"
	"github.com/primehealth/hms/pkg/pagination"
)

const codeInsertRetries = 3

type Service struct {
	repo Repository
}

func NewService(repo Repository) *Service {
	return &Service{repo: repo}
}

// newCode generates a display code like P-1717171717171-042.
func newCode() (string, error) {
	n, err := rand.Int(rand.Reader, big.NewInt(1000))
	if err != nil {
		return "", fmt.Errorf("generate patient code: %w", err)
	}
	return fmt.Sprintf("P-%d-%03d", time.Now().UnixMilli(), n.Int64()), nil
}

// Register creates a patient tagged with the actor's tenant. The display code
// is generated and inserted with a bounded retry on collision.
func (s *Service) Register(ctx context.Context, actor *auth.Identity, req RegisterRequest) (*Patient, error) {
	req.Name = strings.TrimSpace(req.Name)
	req.ContactNumber = strings.TrimSpace(req.ContactNumber)
	if req.Name == "" || req.ContactNumber == "" {
		return nil, apperr.New(apperr.Validation, "name and contact number are required")
	}
	if req.PatientType == "" {
		req.PatientType = TypeOPD
	}
	if req.PatientType != TypeOPD && req.PatientType != TypeIPD {
		return nil, apperr.Newf(apperr.Validation, "invalid patient type: %s", req.PatientType)
	}

	p := &Patient{
		Name:             req.Name,
		DateOfBirth:      req.DateOfBirth,
		Gender:           req.Gender,
		BloodGroup:       req.BloodGroup,
		ContactNumber:    req.ContactNumber,
		Address:          req.Address,
		EmergencyContact: req.EmergencyContact,
		PatientType:      req.PatientType,
		Department:       req.Department,
		AssignedDoctor:   req.AssignedDoctor,
		TenantID:         actor.TenantID,
	}

	for attempt := 0; attempt < codeInsertRetries; attempt++ {
		code, err := newCode()
		if err != nil {
			return nil, err
		}
		p.Code = code
		err = s.repo.Create(ctx, p)
		if err == nil {
			return p, nil
		}
		if !db.IsUniqueViolation(err) {
			return nil, err
		}
	}
	return nil, apperr.New(apperr.Conflict, "could not allocate a unique patient id")
}

// List returns the tenant's patients. DOCTOR requesters see only their
// department's patients, or, without a department, patients assigned to them.
func (s *Service) List(ctx context.Context, actor *auth.Identity, search, patientType string, page pagination.Params) ([]*Patient, error) {
	if patientType != "" && patientType != TypeOPD && patientType != TypeIPD {
		return nil, apperr.Newf(apperr.Validation, "invalid patient type: %s", patientType)
	}

	f := Filter{
		TenantID:    actor.TenantID,
		Search:      search,
		PatientType: patientType,
		Page:        page,
	}
	if actor.Role == auth.RoleDoctor {
		if actor.Department != "" {
			f.Department = actor.Department
		} else {
			id := actor.ID
			f.AssignedDoctor = &id
		}
	}
	return s.repo.List(ctx, f)
}

// Resolve turns a patient reference, either an internal id or a display
// code, into the patient record within the actor's tenant.
func (s *Service) Resolve(ctx context.Context, tenantID, ref string) (*Patient, error) {
	if id, err := uuid.Parse(ref); err == nil {
		return s.repo.GetByID(ctx, tenantID, id)
	}
	p, err := s.repo.GetByCode(ctx, tenantID, ref)
	if err != nil {
		if apperr.KindOf(err) == apperr.NotFound {
			return nil, apperr.Newf(apperr.NotFound, "patient with id '%s' not found", ref)
		}
		return nil, err
	}
	return p, nil
}
