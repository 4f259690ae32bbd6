package prescription

import (
	"time"

	"github.com/google/uuid"

	"github.com/primehealth/hms/internal/domain/staff"
)

// Medicine is one line of a prescription or template.
type Medicine struct {
	Name         string `json:"name"`
	Dosage       string `json:"dosage"`
	Frequency    string `json:"frequency"`
	Duration     string `json:"duration"`
	Instructions string `json:"instructions,omitempty"`
}

// Prescription lives in the tenant store and is immutable once created.
// DoctorID references a User in the global store.
type Prescription struct {
	ID        uuid.UUID  `json:"id"`
	TenantID  string     `json:"tenantId"`
	DoctorID  uuid.UUID  `json:"doctorId"`
	PatientID uuid.UUID  `json:"patientId"`
	Code      string     `json:"prescriptionId"`
	Medicines []Medicine `json:"medicines"`
	Notes     string     `json:"notes,omitempty"`
	CreatedAt time.Time  `json:"createdAt"`
	UpdatedAt time.Time  `json:"updatedAt"`
}

// PatientRef is the slice of the patient record joined into listings.
type PatientRef struct {
	ID            uuid.UUID `json:"id"`
	Name          string    `json:"name"`
	Code          string    `json:"patientId"`
	Gender        string    `json:"gender,omitempty"`
	ContactNumber string    `json:"contactNumber,omitempty"`
}

// View is a listing row with patient and doctor joined.
type View struct {
	Prescription
	Patient PatientRef `json:"patient"`
	Doctor  staff.Name `json:"doctor"`
}

// Template is a reusable set of medicines owned by its creator.
type Template struct {
	ID        uuid.UUID  `json:"id"`
	Name      string     `json:"name"`
	Medicines []Medicine `json:"medicines"`
	TenantID  string     `json:"tenantId"`
	CreatedBy uuid.UUID  `json:"createdBy"`
	CreatedAt time.Time  `json:"createdAt"`
}

// CreateRequest is the prescription creation payload.
type CreateRequest struct {
	PatientRef string     `json:"patientId"`
	Medicines  []Medicine `json:"medicines"`
	Notes      string     `json:"notes"`
}

// CreateTemplateRequest is the template creation payload.
type CreateTemplateRequest struct {
	Name      string     `json:"name"`
	Medicines []Medicine `json:"medicines"`
}
