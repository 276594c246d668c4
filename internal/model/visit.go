package model

import (
	"time"

	"github.com/google/uuid"
)

// Vitals is the fixed set of free-text vital sign fields recorded per
// visit (heart rate, blood pressure, respiratory rate, temperature, blood
// sugar reading).
type Vitals struct {
	HR   string `json:"hr"`
	BP   string `json:"bp"`
	RR   string `json:"rr"`
	Temp string `json:"temp"`
	BSR  string `json:"bsr"`
}

// PhysicalExamination is the fixed set of free-text exam finding fields.
type PhysicalExamination struct {
	General string `json:"general"`
	CVS     string `json:"cvs"`
	Resp    string `json:"resp"`
	Abd     string `json:"abd"`
	Neuro   string `json:"neuro"`
}

// PrescriptionEntry is one Rx line.
type PrescriptionEntry struct {
	Medicine  string `json:"medicine"`
	Dose      string `json:"dose"`
	Frequency string `json:"frequency"`
}

// Blank reports whether every field of the entry is empty. Blank lines are
// discarded before persistence.
func (p PrescriptionEntry) Blank() bool {
	return p.Medicine == "" && p.Dose == "" && p.Frequency == ""
}

// Visit is a dated clinical encounter for a patient. The visit's doctor
// matches the patient's owning doctor at creation; visits are never
// updated or deleted.
type Visit struct {
	ID                  uuid.UUID           `json:"id" db:"id"`
	PatientID           uuid.UUID           `json:"patient" db:"patient_id"`
	DoctorID            uuid.UUID           `json:"doctor" db:"doctor_id"`
	Date                time.Time           `json:"date" db:"date"`
	PresentingComplaint string              `json:"presentingComplaint" db:"presenting_complaint"`
	PreviousHistory     string              `json:"previousHistory" db:"previous_history"`
	Vitals              Vitals              `json:"vitals" db:"-"`
	PhysicalExamination PhysicalExamination `json:"physicalExamination" db:"-"`
	Prescription        []PrescriptionEntry `json:"prescription" db:"-"`

	// JSONB column images of the structured fields above.
	VitalsJSON       string `json:"-" db:"vitals"`
	ExaminationJSON  string `json:"-" db:"physical_examination"`
	PrescriptionJSON string `json:"-" db:"prescription"`
}

// CreateVisitRequest represents visit creation parameters
type CreateVisitRequest struct {
	Date                *time.Time          `json:"date" binding:"required"`
	PresentingComplaint string              `json:"presentingComplaint"`
	PreviousHistory     string              `json:"previousHistory"`
	Vitals              Vitals              `json:"vitals"`
	PhysicalExamination PhysicalExamination `json:"physicalExamination"`
	Prescription        []PrescriptionEntry `json:"prescription"`
}
