package dashboard

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/primehealth/hms/internal/domain/appointment"
	"github.com/primehealth/hms/internal/domain/patient"
	"github.com/primehealth/hms/internal/domain/staff"
	"github.com/primehealth/hms/internal/platform/auth"
)

type mockPatients struct {
	total   int
	recent  []*patient.Patient
	byMonth map[string]int
}

func (m *mockPatients) Count(_ context.Context, _ string) (int, error) { return m.total, nil }

func (m *mockPatients) Recent(_ context.Context, _ string, limit int) ([]*patient.Patient, error) {
	if len(m.recent) > limit {
		return m.recent[:limit], nil
	}
	return m.recent, nil
}

func (m *mockPatients) CountByMonth(_ context.Context, _ string, _ time.Time) (map[string]int, error) {
	return m.byMonth, nil
}

type mockAppointments struct {
	total     int
	scheduled int
	recent    []*appointment.View
	byMonth   map[string]int
}

func (m *mockAppointments) Count(_ context.Context, _ string) (int, error) { return m.total, nil }

func (m *mockAppointments) CountByStatus(_ context.Context, _, status string) (int, error) {
	if status == appointment.StatusScheduled {
		return m.scheduled, nil
	}
	return 0, nil
}

func (m *mockAppointments) Recent(_ context.Context, _ string, limit int) ([]*appointment.View, error) {
	if len(m.recent) > limit {
		return m.recent[:limit], nil
	}
	return m.recent, nil
}

func (m *mockAppointments) CountByMonth(_ context.Context, _ string, _ time.Time) (map[string]int, error) {
	return m.byMonth, nil
}

type mockDoctors struct {
	count int
	name  staff.Name
}

func (m *mockDoctors) CountDoctors(_ context.Context, _ string) (int, error) { return m.count, nil }

func (m *mockDoctors) JoinDoctors(_ context.Context, items []*appointment.View) error {
	for _, v := range items {
		v.Doctor = m.name
	}
	return nil
}

func fixedNow() time.Time {
	return time.Date(2024, time.June, 15, 10, 0, 0, 0, time.UTC)
}

func fixture(patients *mockPatients, appts *mockAppointments, doctors *mockDoctors) (*Service, *auth.Identity) {
	svc := NewService(patients, appts, doctors, doctors, zerolog.Nop())
	svc.now = fixedNow
	return svc, &auth.Identity{ID: uuid.New(), Role: auth.RoleHospitalAdmin, TenantID: "t1"}
}

func TestStats(t *testing.T) {
	patients := &mockPatients{
		total: 42,
		recent: []*patient.Patient{
			{ID: uuid.New(), Name: "Ana Silva"},
			{ID: uuid.New(), Name: "Ben Carter"},
		},
	}
	appts := &mockAppointments{
		total:     17,
		scheduled: 6,
		recent: []*appointment.View{
			{Appointment: appointment.Appointment{ID: uuid.New(), DoctorID: uuid.New()}},
		},
	}
	doctors := &mockDoctors{count: 7, name: staff.Name{FirstName: "Gregory", LastName: "House"}}
	svc, actor := fixture(patients, appts, doctors)

	stats, err := svc.Stats(context.Background(), actor)
	if err != nil {
		t.Fatalf("stats: %v", err)
	}
	if stats.TotalPatients != 42 || stats.TotalDoctors != 7 || stats.TotalAppointments != 17 {
		t.Errorf("totals = %d/%d/%d", stats.TotalPatients, stats.TotalDoctors, stats.TotalAppointments)
	}
	if stats.PendingAppointments != 6 {
		t.Errorf("pending = %d, want 6", stats.PendingAppointments)
	}
	if len(stats.RecentPatients) != 2 {
		t.Errorf("recent patients = %d, want 2", len(stats.RecentPatients))
	}
	if len(stats.RecentAppointments) != 1 {
		t.Fatalf("recent appointments = %d, want 1", len(stats.RecentAppointments))
	}
	if stats.RecentAppointments[0].Doctor != doctors.name {
		t.Errorf("doctor not joined: %+v", stats.RecentAppointments[0].Doctor)
	}
}

func TestStatsEmptyHospital(t *testing.T) {
	svc, actor := fixture(&mockPatients{}, &mockAppointments{}, &mockDoctors{})

	stats, err := svc.Stats(context.Background(), actor)
	if err != nil {
		t.Fatalf("stats: %v", err)
	}
	if stats.RecentPatients == nil || stats.RecentAppointments == nil {
		t.Error("recent lists should serialize as empty arrays, not null")
	}
}

func TestChart(t *testing.T) {
	patients := &mockPatients{byMonth: map[string]int{
		"2024-01": 3, "2024-04": 8, "2024-05": 10, "2024-06": 15,
	}}
	appts := &mockAppointments{byMonth: map[string]int{
		"2024-05": 4, "2024-06": 9,
	}}
	svc, actor := fixture(patients, appts, &mockDoctors{})

	chart, err := svc.Chart(context.Background(), actor)
	if err != nil {
		t.Fatalf("chart: %v", err)
	}
	if len(chart.Points) != 6 {
		t.Fatalf("points = %d, want 6", len(chart.Points))
	}
	wantMonths := []string{"Jan", "Feb", "Mar", "Apr", "May", "Jun"}
	for i, p := range chart.Points {
		if p.Month != wantMonths[i] {
			t.Errorf("point %d month = %q, want %q", i, p.Month, wantMonths[i])
		}
	}
	if chart.Points[0].Patients != 3 || chart.Points[5].Patients != 15 {
		t.Errorf("patient counts misaligned: %+v", chart.Points)
	}
	if chart.Points[5].Appointments != 9 {
		t.Errorf("appointment count = %d, want 9", chart.Points[5].Appointments)
	}
	if chart.GrowthRate != 50 {
		t.Errorf("growthRate = %v, want 50 (10 -> 15)", chart.GrowthRate)
	}
}

func TestGrowthRate(t *testing.T) {
	cases := []struct {
		cur, prev int
		want      float64
	}{
		{15, 10, 50},
		{10, 15, -33.3},
		{5, 0, 100},
		{0, 0, 0},
		{7, 7, 0},
	}
	for _, tc := range cases {
		if got := growthRate(tc.cur, tc.prev); got != tc.want {
			t.Errorf("growthRate(%d, %d) = %v, want %v", tc.cur, tc.prev, got, tc.want)
		}
	}
}
