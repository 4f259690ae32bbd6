// Package render produces printable documents from domain data.
package render

import (
	"bytes"
	"fmt"
	"time"

	"github.com/go-pdf/fpdf"
)

// MedicineLine is one row of the medicines table.
type MedicineLine struct {
	Name         string
	Dosage       string
	Frequency    string
	Duration     string
	Instructions string
}

// PrescriptionDoc carries everything needed to render a prescription.
type PrescriptionDoc struct {
	HospitalName    string
	HospitalAddress string
	PrescriptionID  string
	DoctorName      string
	IssuedAt        time.Time
	PatientName     string
	PatientGender   string
	PatientContact  string
	Medicines       []MedicineLine
	Notes           string
}

// PrescriptionPDF renders the document and returns the PDF bytes.
func PrescriptionPDF(doc PrescriptionDoc) ([]byte, error) {
	pdf := fpdf.New("P", "mm", "A4", "")
	pdf.SetTitle(fmt.Sprintf("Prescription %s", doc.PrescriptionID), false)
	pdf.AddPage()

	hospital := doc.HospitalName
	if hospital == "" {
		hospital = "Prime Health Hospital"
	}
	pdf.SetFont("Helvetica", "B", 20)
	pdf.CellFormat(0, 10, hospital, "", 1, "C", false, 0, "")
	pdf.SetFont("Helvetica", "", 10)
	pdf.CellFormat(0, 5, doc.HospitalAddress, "", 1, "C", false, 0, "")
	pdf.Ln(3)
	pdf.SetDrawColor(120, 120, 120)
	pdf.Line(15, pdf.GetY(), 195, pdf.GetY())
	pdf.Ln(5)

	pdf.SetFont("Helvetica", "", 12)
	pdf.CellFormat(0, 6, "Date: "+doc.IssuedAt.Format("02 Jan 2006"), "", 1, "R", false, 0, "")
	pdf.CellFormat(0, 6, "Dr. "+doc.DoctorName, "", 1, "L", false, 0, "")
	pdf.SetFont("Helvetica", "", 10)
	pdf.CellFormat(0, 5, fmt.Sprintf("(Prescription ID: %s)", doc.PrescriptionID), "", 1, "L", false, 0, "")
	pdf.Ln(4)

	pdf.SetFont("Helvetica", "B", 12)
	pdf.CellFormat(0, 6, "Patient Details:", "", 1, "L", false, 0, "")
	pdf.SetFont("Helvetica", "", 10)
	pdf.CellFormat(0, 5, "Name: "+doc.PatientName, "", 1, "L", false, 0, "")
	pdf.CellFormat(0, 5, "Gender: "+doc.PatientGender, "", 1, "L", false, 0, "")
	pdf.CellFormat(0, 5, "Contact: "+doc.PatientContact, "", 1, "L", false, 0, "")
	pdf.Ln(3)
	pdf.Line(15, pdf.GetY(), 195, pdf.GetY())
	pdf.Ln(2)

	pdf.SetFont("Helvetica", "B", 14)
	pdf.CellFormat(0, 8, "MEDICINES", "", 1, "C", false, 0, "")
	pdf.SetFont("Helvetica", "B", 10)
	pdf.CellFormat(70, 6, "Name", "B", 0, "L", false, 0, "")
	pdf.CellFormat(40, 6, "Dosage", "B", 0, "L", false, 0, "")
	pdf.CellFormat(35, 6, "Freq", "B", 0, "L", false, 0, "")
	pdf.CellFormat(35, 6, "Duration", "B", 1, "L", false, 0, "")

	pdf.SetFont("Helvetica", "", 10)
	for _, med := range doc.Medicines {
		pdf.CellFormat(70, 6, med.Name, "", 0, "L", false, 0, "")
		pdf.CellFormat(40, 6, med.Dosage, "", 0, "L", false, 0, "")
		pdf.CellFormat(35, 6, med.Frequency, "", 0, "L", false, 0, "")
		pdf.CellFormat(35, 6, med.Duration, "", 1, "L", false, 0, "")
		if med.Instructions != "" {
			pdf.SetFont("Helvetica", "I", 8)
			pdf.SetTextColor(110, 110, 110)
			pdf.CellFormat(0, 4, "  Note: "+med.Instructions, "", 1, "L", false, 0, "")
			pdf.SetTextColor(0, 0, 0)
			pdf.SetFont("Helvetica", "", 10)
		}
	}

	if doc.Notes != "" {
		pdf.Ln(4)
		pdf.SetFont("Helvetica", "B", 10)
		pdf.CellFormat(0, 6, "Advice / Notes:", "", 1, "L", false, 0, "")
		pdf.SetFont("Helvetica", "", 10)
		pdf.MultiCell(0, 5, doc.Notes, "", "L", false)
	}

	pdf.Ln(10)
	pdf.SetFont("Helvetica", "I", 10)
	pdf.CellFormat(0, 6, "Get Well Soon!", "", 1, "C", false, 0, "")

	var buf bytes.Buffer
	if err := pdf.Output(&buf); err != nil {
		return nil, fmt.Errorf("render prescription pdf: %w", err)
	}
	return buf.Bytes(), nil
}
