package prescription

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/primehealth/hms/internal/domain/patient"
	"github.com/primehealth/hms/internal/domain/staff"
	"github.com/primehealth/hms/internal/platform/apperr"
	"github.com/primehealth/hms/internal/platform/auth"
	"github.com/primehealth/hms/internal/platform/db"
	"github.com/primehealth/hms/internal/platform/render"
)

const codeInsertRetries = 3

// PatientResolver looks up a patient by internal id or display code within a
// tenant.
type PatientResolver interface {
	Resolve(ctx context.Context, tenantID, ref string) (*patient.Patient, error)
}

// DoctorDirectory maps user ids to display names.
type DoctorDirectory interface {
	DisplayNames(ctx context.Context, ids []uuid.UUID) (map[uuid.UUID]staff.Name, error)
}

// HospitalDirectory provides the letterhead details for rendered documents.
type HospitalDirectory interface {
	HospitalInfo(ctx context.Context, tenantID string) (name, address string, err error)
}

type Service struct {
	repo      Repository
	patients  PatientResolver
	doctors   DoctorDirectory
	hospitals HospitalDirectory
	logger    zerolog.Logger
}

func NewService(repo Repository, patients PatientResolver, doctors DoctorDirectory, hospitals HospitalDirectory, logger zerolog.Logger) *Service {
	return &Service{
		repo:      repo,
		patients:  patients,
		doctors:   doctors,
		hospitals: hospitals,
		logger:    logger.With().Str("component", "prescription").Logger(),
	}
}

func newCode() string {
	return fmt.Sprintf("RX-%d", time.Now().UnixMilli())
}

// Create records a prescription written by the acting doctor.
func (s *Service) Create(ctx context.Context, actor *auth.Identity, req CreateRequest) (*Prescription, error) {
	req.PatientRef = strings.TrimSpace(req.PatientRef)
	if req.PatientRef == "" || len(req.Medicines) == 0 {
		return nil, apperr.New(apperr.Validation, "patient and at least one medicine are required")
	}
	for _, m := range req.Medicines {
		if strings.TrimSpace(m.Name) == "" {
			return nil, apperr.New(apperr.Validation, "every medicine needs a name")
		}
	}

	p, err := s.patients.Resolve(ctx, actor.TenantID, req.PatientRef)
	if err != nil {
		if apperr.KindOf(err) == apperr.NotFound {
			return nil, apperr.New(apperr.NotFound, "patient not found in this hospital records")
		}
		return nil, err
	}

	rx := &Prescription{
		TenantID:  actor.TenantID,
		DoctorID:  actor.ID,
		PatientID: p.ID,
		Medicines: req.Medicines,
		Notes:     strings.TrimSpace(req.Notes),
	}
	for attempt := 0; attempt < codeInsertRetries; attempt++ {
		rx.Code = newCode()
		err = s.repo.Create(ctx, rx)
		if err == nil {
			return rx, nil
		}
		if !db.IsUniqueViolation(err) {
			return nil, err
		}
	}
	return nil, apperr.New(apperr.Conflict, "could not allocate a unique prescription id")
}

// List returns all prescriptions of the tenant, newest first, with doctor
// names joined in.
func (s *Service) List(ctx context.Context, actor *auth.Identity) ([]*View, error) {
	items, err := s.repo.List(ctx, actor.TenantID)
	if err != nil {
		return nil, err
	}
	if err := s.joinDoctors(ctx, items); err != nil {
		return nil, err
	}
	return items, nil
}

func (s *Service) joinDoctors(ctx context.Context, items []*View) error {
	seen := make(map[uuid.UUID]struct{}, len(items))
	ids := make([]uuid.UUID, 0, len(items))
	for _, v := range items {
		if _, ok := seen[v.DoctorID]; ok {
			continue
		}
		seen[v.DoctorID] = struct{}{}
		ids = append(ids, v.DoctorID)
	}
	if len(ids) == 0 {
		return nil
	}
	names, err := s.doctors.DisplayNames(ctx, ids)
	if err != nil {
		return err
	}
	for _, v := range items {
		if name, ok := names[v.DoctorID]; ok {
			v.Doctor = name
		} else {
			v.Doctor = staff.UnknownDoctor
		}
	}
	return nil
}

// Download renders the prescription as a PDF document.
func (s *Service) Download(ctx context.Context, actor *auth.Identity, id uuid.UUID) ([]byte, string, error) {
	v, err := s.repo.GetByID(ctx, actor.TenantID, id)
	if err != nil {
		return nil, "", err
	}
	if err := s.joinDoctors(ctx, []*View{v}); err != nil {
		return nil, "", err
	}

	doc := render.PrescriptionDoc{
		PrescriptionID: v.Code,
		DoctorName:     v.Doctor.FirstName + " " + v.Doctor.LastName,
		IssuedAt:       v.CreatedAt,
		PatientName:    v.Patient.Name,
		PatientGender:  v.Patient.Gender,
		PatientContact: v.Patient.ContactNumber,
		Notes:          v.Notes,
	}
	if s.hospitals != nil {
		if name, address, err := s.hospitals.HospitalInfo(ctx, actor.TenantID); err == nil {
			doc.HospitalName = name
			doc.HospitalAddress = address
		} else {
			s.logger.Warn().Err(err).Str("tenant", actor.TenantID).Msg("hospital lookup failed, using default letterhead")
		}
	}
	for _, m := range v.Medicines {
		doc.Medicines = append(doc.Medicines, render.MedicineLine{
			Name:         m.Name,
			Dosage:       m.Dosage,
			Frequency:    m.Frequency,
			Duration:     m.Duration,
			Instructions: m.Instructions,
		})
	}

	pdf, err := render.PrescriptionPDF(doc)
	if err != nil {
		return nil, "", apperr.Wrap(apperr.Internal, "prescription could not be rendered", err)
	}
	return pdf, fmt.Sprintf("prescription-%s.pdf", v.Code), nil
}

// CreateTemplate stores a reusable medicine set for the acting doctor's
// hospital.
func (s *Service) CreateTemplate(ctx context.Context, actor *auth.Identity, req CreateTemplateRequest) (*Template, error) {
	req.Name = strings.TrimSpace(req.Name)
	if req.Name == "" || len(req.Medicines) == 0 {
		return nil, apperr.New(apperr.Validation, "template name and at least one medicine are required")
	}
	t := &Template{
		Name:      req.Name,
		Medicines: req.Medicines,
		TenantID:  actor.TenantID,
		CreatedBy: actor.ID,
	}
	if err := s.repo.CreateTemplate(ctx, t); err != nil {
		return nil, err
	}
	return t, nil
}

func (s *Service) ListTemplates(ctx context.Context, actor *auth.Identity) ([]*Template, error) {
	return s.repo.ListTemplates(ctx, actor.TenantID)
}

// DeleteTemplate removes a template. A template owned by another hospital is
// rejected rather than hidden.
func (s *Service) DeleteTemplate(ctx context.Context, actor *auth.Identity, id uuid.UUID) error {
	t, err := s.repo.GetTemplate(ctx, id)
	if err != nil {
		return err
	}
	if t.TenantID != actor.TenantID {
		return apperr.New(apperr.Forbidden, "not authorized to delete this template")
	}
	return s.repo.DeleteTemplate(ctx, id)
}
