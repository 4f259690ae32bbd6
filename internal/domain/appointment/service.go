package appointment

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/primehealth/hms/internal/domain/patient"
	"github.com/primehealth/hms/internal/domain/staff"
	"github.com/primehealth/hms/internal/platform/apperr"
	"github.com/primehealth/hms/internal/platform/auth"
	"github.com/primehealth/hms/internal/platform/db"
)

const dateLayout = "2006-01-02"

// PatientResolver resolves a patient reference (internal id or display code)
// within a tenant.
type PatientResolver interface {
	Resolve(ctx context.Context, tenantID, ref string) (*patient.Patient, error)
}

// DoctorDirectory batch-resolves doctor display names from the global store.
type DoctorDirectory interface {
	DisplayNames(ctx context.Context, ids []uuid.UUID) (map[uuid.UUID]staff.Name, error)
}

type Service struct {
	repo     Repository
	patients PatientResolver
	doctors  DoctorDirectory
}

func NewService(repo Repository, patients PatientResolver, doctors DoctorDirectory) *Service {
	return &Service{repo: repo, patients: patients, doctors: doctors}
}

// Book creates a Scheduled appointment. Callers may reference the patient by
// internal id or display code. The application-level slot check gives a clean
// error message; the storage-level unique index decides races.
func (s *Service) Book(ctx context.Context, actor *auth.Identity, req BookRequest) (*Appointment, error) {
	if req.DoctorID == uuid.Nil || req.PatientRef == "" || req.Date == "" || req.TimeSlot == "" {
		return nil, apperr.New(apperr.Validation, "doctor, patient, date, and time slot are required")
	}
	date, err := time.Parse(dateLayout, req.Date)
	if err != nil {
		return nil, apperr.New(apperr.Validation, "date must be formatted YYYY-MM-DD")
	}

	p, err := s.patients.Resolve(ctx, actor.TenantID, req.PatientRef)
	if err != nil {
		return nil, err
	}

	taken, err := s.repo.SlotTaken(ctx, actor.TenantID, req.DoctorID, date, req.TimeSlot)
	if err != nil {
		return nil, err
	}
	if taken {
		return nil, apperr.New(apperr.Conflict, "this time slot is already booked for the selected doctor")
	}

	a := &Appointment{
		TenantID:  actor.TenantID,
		DoctorID:  req.DoctorID,
		PatientID: p.ID,
		Date:      date,
		TimeSlot:  req.TimeSlot,
		Status:    StatusScheduled,
		Reason:    req.Reason,
	}
	if err := s.repo.Create(ctx, a); err != nil {
		if db.IsUniqueViolation(err) {
			return nil, apperr.New(apperr.Conflict, "this time slot is already booked for the selected doctor")
		}
		return nil, err
	}
	return a, nil
}

// UpdateStatus moves an appointment to Scheduled, Completed, or Cancelled.
// Appointments outside the actor's tenant read as absent. Restoring to
// Scheduled can collide with a booking made after the slot was freed; the
// slot index rejects it like any other double booking.
func (s *Service) UpdateStatus(ctx context.Context, actor *auth.Identity, id uuid.UUID, status string) (*Appointment, error) {
	if !ValidStatus(status) {
		return nil, apperr.Newf(apperr.Validation, "invalid status: %s", status)
	}
	a, err := s.repo.UpdateStatus(ctx, actor.TenantID, id, status)
	if err != nil {
		if db.IsUniqueViolation(err) {
			return nil, apperr.New(apperr.Conflict, "this time slot is already booked for the selected doctor")
		}
		return nil, err
	}
	return a, nil
}

// List returns the tenant's appointments with patient and doctor joined.
// Doctors that no longer resolve in the global store render as the
// UnknownDoctor placeholder rather than failing the listing.
func (s *Service) List(ctx context.Context, actor *auth.Identity, dateStr string, doctorID *uuid.UUID) ([]*View, error) {
	f := Filter{TenantID: actor.TenantID, DoctorID: doctorID}
	if dateStr != "" {
		date, err := time.Parse(dateLayout, dateStr)
		if err != nil {
			return nil, apperr.New(apperr.Validation, "date must be formatted YYYY-MM-DD")
		}
		f.Date = &date
	}

	items, err := s.repo.List(ctx, f)
	if err != nil {
		return nil, err
	}
	if err := s.JoinDoctors(ctx, items); err != nil {
		return nil, err
	}
	return items, nil
}

// JoinDoctors fills the Doctor field of each view from the global store.
func (s *Service) JoinDoctors(ctx context.Context, items []*View) error {
	if len(items) == 0 {
		return nil
	}
	seen := make(map[uuid.UUID]bool)
	var ids []uuid.UUID
	for _, v := range items {
		if !seen[v.DoctorID] {
			seen[v.DoctorID] = true
			ids = append(ids, v.DoctorID)
		}
	}
	names, err := s.doctors.DisplayNames(ctx, ids)
	if err != nil {
		return err
	}
	for _, v := range items {
		if n, ok := names[v.DoctorID]; ok {
			v.Doctor = n
		} else {
			v.Doctor = staff.UnknownDoctor
		}
	}
	return nil
}
