package render

import (
	"bytes"
	"testing"
	"time"
)

func TestPrescriptionPDF(t *testing.T) {
	out, err := PrescriptionPDF(PrescriptionDoc{
		HospitalName:    "City Care Hospital",
		HospitalAddress: "12 Wellness Road",
		PrescriptionID:  "RX-1717171717171",
		DoctorName:      "Meera Nair",
		IssuedAt:        time.Date(2025, 6, 1, 0, 0, 0, 0, time.UTC),
		PatientName:     "Arjun Pillai",
		PatientGender:   "Male",
		PatientContact:  "9876543210",
		Medicines: []MedicineLine{
			{Name: "Paracetamol", Dosage: "500mg", Frequency: "1-0-1", Duration: "5 days"},
			{Name: "Amoxicillin", Dosage: "250mg", Frequency: "1-1-1", Duration: "7 days", Instructions: "After food"},
		},
		Notes: "Plenty of fluids. Review after a week.",
	})
	if err != nil {
		t.Fatalf("PrescriptionPDF: %v", err)
	}
	if len(out) == 0 {
		t.Fatal("expected non-empty output")
	}
	if !bytes.HasPrefix(out, []byte("%PDF")) {
		t.Errorf("output is not a PDF, starts with %q", out[:minInt(8, len(out))])
	}
}

func TestPrescriptionPDF_NoMedicinesStillRenders(t *testing.T) {
	out, err := PrescriptionPDF(PrescriptionDoc{
		PrescriptionID: "RX-1",
		DoctorName:     "A. Doctor",
		IssuedAt:       time.Now(),
		PatientName:    "B. Patient",
	})
	if err != nil {
		t.Fatalf("PrescriptionPDF: %v", err)
	}
	if !bytes.HasPrefix(out, []byte("%PDF")) {
		t.Error("output is not a PDF")
	}
}

func minInt(a, b int) int {
	if a < b {
		return a
	}
	return b
}
