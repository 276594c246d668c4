package model

import (
	"time"

	"github.com/google/uuid"
	"github.com/lib/pq"
)

// Patient categories
const (
	CategoryOPD  = "opd"
	CategoryWard = "ward"
)

// ValidCategory reports whether c is one of the enumerated patient
// categories.
func ValidCategory(c string) bool {
	return c == CategoryOPD || c == CategoryWard
}

// Patient is a clinical record owned by exactly one doctor. The owning
// doctor is immutable after creation. VisitIDs holds the patient's visit
// references most-recent-first.
type Patient struct {
	ID          uuid.UUID      `json:"id" db:"id"`
	DoctorID    uuid.UUID      `json:"doctor" db:"doctor_id"`
	Name        string         `json:"name" db:"name"`
	CaseSummary string         `json:"caseSummary" db:"case_summary"`
	Category    string         `json:"category" db:"category"`
	DateAdded   time.Time      `json:"dateAdded" db:"date_added"`
	VisitIDs    pq.StringArray `json:"visits" db:"visit_ids"`
}

// CreatePatientRequest represents patient creation parameters
type CreatePatientRequest struct {
	Name        string `json:"name" binding:"required"`
	CaseSummary string `json:"caseSummary" binding:"required"`
	Category    string `json:"category" binding:"required,oneof=opd ward"`
}

// UpdatePatientRequest is an explicit patch: only non-nil fields are
// applied, field by field. The owning doctor cannot be changed.
type UpdatePatientRequest struct {
	Name        *string `json:"name"`
	CaseSummary *string `json:"caseSummary"`
	Category    *string `json:"category" binding:"omitempty,oneof=opd ward"`
}
