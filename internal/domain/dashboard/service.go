package dashboard

import (
	"context"
	"math"
	"time"

	"github.com/rs/zerolog"

	"github.com/primehealth/hms/internal/domain/appointment"
	"github.com/primehealth/hms/internal/domain/patient"
	"github.com/primehealth/hms/internal/platform/auth"
)

const (
	recentLimit = 5
	chartMonths = 6
)

// Stats is the hospital overview block.
type Stats struct {
	TotalPatients       int                 `json:"totalPatients"`
	TotalDoctors        int                 `json:"totalDoctors"`
	TotalAppointments   int                 `json:"totalAppointments"`
	PendingAppointments int                 `json:"pendingAppointments"`
	RecentPatients      []*patient.Patient  `json:"recentPatients"`
	RecentAppointments  []*appointment.View `json:"recentAppointments"`
}

// ChartPoint is one calendar month of registration activity.
type ChartPoint struct {
	Month        string `json:"month"`
	Patients     int    `json:"patients"`
	Appointments int    `json:"appointments"`
}

// Chart carries the trailing six months plus the month-over-month patient
// growth of the latest month.
type Chart struct {
	Points     []ChartPoint `json:"points"`
	GrowthRate float64      `json:"growthRate"`
}

// PatientSource exposes the patient aggregates the dashboard reads.
type PatientSource interface {
	Count(ctx context.Context, tenantID string) (int, error)
	Recent(ctx context.Context, tenantID string, limit int) ([]*patient.Patient, error)
	CountByMonth(ctx context.Context, tenantID string, since time.Time) (map[string]int, error)
}

// AppointmentSource exposes the appointment aggregates the dashboard reads.
type AppointmentSource interface {
	Count(ctx context.Context, tenantID string) (int, error)
	CountByStatus(ctx context.Context, tenantID, status string) (int, error)
	Recent(ctx context.Context, tenantID string, limit int) ([]*appointment.View, error)
	CountByMonth(ctx context.Context, tenantID string, since time.Time) (map[string]int, error)
}

// DoctorCounter reports how many active doctors a hospital has.
type DoctorCounter interface {
	CountDoctors(ctx context.Context, tenantID string) (int, error)
}

// DoctorJoiner fills doctor display names into appointment views.
type DoctorJoiner interface {
	JoinDoctors(ctx context.Context, items []*appointment.View) error
}

type Service struct {
	patients     PatientSource
	appointments AppointmentSource
	doctors      DoctorCounter
	joiner       DoctorJoiner
	now          func() time.Time
	logger       zerolog.Logger
}

func NewService(patients PatientSource, appointments AppointmentSource, doctors DoctorCounter, joiner DoctorJoiner, logger zerolog.Logger) *Service {
	return &Service{
		patients:     patients,
		appointments: appointments,
		doctors:      doctors,
		joiner:       joiner,
		now:          time.Now,
		logger:       logger.With().Str("component", "dashboard").Logger(),
	}
}

// Stats assembles the overview counters and the five most recent patients and
// appointments of the acting user's hospital.
func (s *Service) Stats(ctx context.Context, actor *auth.Identity) (*Stats, error) {
	tenantID := actor.TenantID
	out := &Stats{
		RecentPatients:     []*patient.Patient{},
		RecentAppointments: []*appointment.View{},
	}

	var err error
	if out.TotalPatients, err = s.patients.Count(ctx, tenantID); err != nil {
		return nil, err
	}
	if out.TotalDoctors, err = s.doctors.CountDoctors(ctx, tenantID); err != nil {
		return nil, err
	}
	if out.TotalAppointments, err = s.appointments.Count(ctx, tenantID); err != nil {
		return nil, err
	}
	if out.PendingAppointments, err = s.appointments.CountByStatus(ctx, tenantID, appointment.StatusScheduled); err != nil {
		return nil, err
	}

	recentPatients, err := s.patients.Recent(ctx, tenantID, recentLimit)
	if err != nil {
		return nil, err
	}
	if recentPatients != nil {
		out.RecentPatients = recentPatients
	}

	recentAppointments, err := s.appointments.Recent(ctx, tenantID, recentLimit)
	if err != nil {
		return nil, err
	}
	if len(recentAppointments) > 0 {
		if err := s.joiner.JoinDoctors(ctx, recentAppointments); err != nil {
			return nil, err
		}
		out.RecentAppointments = recentAppointments
	}
	return out, nil
}

// Chart returns monthly registration counts for the trailing six months. The
// growth rate compares the latest month's patient intake with the month
// before.
func (s *Service) Chart(ctx context.Context, actor *auth.Identity) (*Chart, error) {
	now := s.now()
	start := time.Date(now.Year(), now.Month(), 1, 0, 0, 0, 0, time.UTC).
		AddDate(0, -(chartMonths - 1), 0)

	patientCounts, err := s.patients.CountByMonth(ctx, actor.TenantID, start)
	if err != nil {
		return nil, err
	}
	appointmentCounts, err := s.appointments.CountByMonth(ctx, actor.TenantID, start)
	if err != nil {
		return nil, err
	}

	chart := &Chart{Points: make([]ChartPoint, 0, chartMonths)}
	for i := 0; i < chartMonths; i++ {
		m := start.AddDate(0, i, 0)
		key := m.Format("2006-01")
		chart.Points = append(chart.Points, ChartPoint{
			Month:        m.Format("Jan"),
			Patients:     patientCounts[key],
			Appointments: appointmentCounts[key],
		})
	}

	cur := chart.Points[chartMonths-1].Patients
	prev := chart.Points[chartMonths-2].Patients
	chart.GrowthRate = growthRate(cur, prev)
	return chart, nil
}

func growthRate(cur, prev int) float64 {
	if prev == 0 {
		if cur > 0 {
			return 100
		}
		return 0
	}
	rate := float64(cur-prev) / float64(prev) * 100
	return math.Round(rate*10) / 10
}
