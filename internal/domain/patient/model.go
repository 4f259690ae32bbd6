package patient

import (
	"time"

	"github.com/google/uuid"

	"github.com/primehealth/hms/pkg/pagination"
)

// Patient type.
const (
	TypeOPD = "OPD"
	TypeIPD = "IPD"
)

// EmergencyContact is the person to call.
type EmergencyContact struct {
	Name     string `json:"name,omitempty"`
	Phone    string `json:"phone,omitempty"`
	Relation string `json:"relation,omitempty"`
}

// Patient lives in the tenant store. Code is the human-readable identifier
// handed to front-desk staff; AssignedDoctor references a User id in the
// global store.
type Patient struct {
	ID               uuid.UUID        `json:"id"`
	Code             string           `json:"patientId"`
	Name             string           `json:"name"`
	DateOfBirth      *time.Time       `json:"dateOfBirth,omitempty"`
	Gender           string           `json:"gender,omitempty"`
	BloodGroup       string           `json:"bloodGroup,omitempty"`
	ContactNumber    string           `json:"contactNumber"`
	Address          string           `json:"address,omitempty"`
	EmergencyContact EmergencyContact `json:"emergencyContact"`
	PatientType      string           `json:"patientType"`
	Department       string           `json:"department,omitempty"`
	AssignedDoctor   *uuid.UUID       `json:"assignedDoctor,omitempty"`
	TenantID         string           `json:"tenantId"`
	CreatedAt        time.Time        `json:"createdAt"`
	UpdatedAt        time.Time        `json:"updatedAt"`
}

// RegisterRequest is the patient registration payload.
type RegisterRequest struct {
	Name             string           `json:"name"`
	DateOfBirth      *time.Time       `json:"dateOfBirth"`
	Gender           string           `json:"gender"`
	BloodGroup       string           `json:"bloodGroup"`
	ContactNumber    string           `json:"contactNumber"`
	Address          string           `json:"address"`
	EmergencyContact EmergencyContact `json:"emergencyContact"`
	PatientType      string           `json:"patientType"`
	Department       string           `json:"department"`
	AssignedDoctor   *uuid.UUID       `json:"assignedDoctor"`
}

// Filter narrows a patient listing. Department and AssignedDoctor carry the
// DOCTOR-role visibility restriction; Search matches name, contact number,
// and patient code.
type Filter struct {
	TenantID       string
	Search         string
	PatientType    string
	Department     string
	AssignedDoctor *uuid.UUID
	Page           pagination.Params
}
