package appointment

import (
	"time"

	"github.com/google/uuid"

	"github.com/primehealth/hms/internal/domain/staff"
)

// Appointment status.
const (
	StatusScheduled = "Scheduled"
	StatusCompleted = "Completed"
	StatusCancelled = "Cancelled"
)

// ValidStatus reports whether s is one of the three accepted states.
func ValidStatus(s string) bool {
	return s == StatusScheduled || s == StatusCompleted || s == StatusCancelled
}

// Appointment lives in the tenant store. DoctorID references a User in the
// global store; PatientID references a Patient in the same tenant store.
// Date carries day granularity only.
type Appointment struct {
	ID        uuid.UUID `json:"id"`
	TenantID  string    `json:"tenantId"`
	DoctorID  uuid.UUID `json:"doctorId"`
	PatientID uuid.UUID `json:"patientId"`
	Date      time.Time `json:"appointmentDate"`
	TimeSlot  string    `json:"timeSlot"`
	Status    string    `json:"status"`
	Reason    string    `json:"reason,omitempty"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

// PatientRef is the slice of the patient record joined into listings.
type PatientRef struct {
	ID            uuid.UUID `json:"id"`
	Name          string    `json:"name"`
	ContactNumber string    `json:"contactNumber"`
}

// View is a listing row: the appointment with its patient joined from the
// tenant store and the doctor's display name joined from the global store.
type View struct {
	Appointment
	Patient PatientRef `json:"patient"`
	Doctor  staff.Name `json:"doctor"`
}

// BookRequest is the booking payload. PatientRef accepts either an internal
// id or the display code.
type BookRequest struct {
	DoctorID   uuid.UUID `json:"doctorId"`
	PatientRef string    `json:"patientId"`
	Date       string    `json:"date"`
	TimeSlot   string    `json:"timeSlot"`
	Reason     string    `json:"reason"`
}

// Filter narrows an appointment listing.
type Filter struct {
	TenantID string
	Date     *time.Time
	DoctorID *uuid.UUID
}
