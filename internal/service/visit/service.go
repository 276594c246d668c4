package visit

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/google/uuid"

	"github.com/cliniqor/cliniqor-api/internal/model"
	"github.com/cliniqor/cliniqor-api/internal/repository"
	apperrors "github.com/cliniqor/cliniqor-api/pkg/errors"
)

// Service exposes visit operations. Ownership is enforced through the
// patient row, which is the single source of truth for who owns a record;
// the visit's own doctor id is written at creation for reference but never
// consulted for access.
type Service interface {
	Create(ctx context.Context, doctorID, patientID uuid.UUID, req *model.CreateVisitRequest) (*model.Visit, error)
	List(ctx context.Context, doctorID, patientID uuid.UUID) ([]*model.Visit, error)
}

type service struct {
	visits   repository.VisitRepository
	patients repository.PatientRepository
}

func NewService(visits repository.VisitRepository, patients repository.PatientRepository) Service {
	return &service{visits: visits, patients: patients}
}

func (s *service) Create(ctx context.Context, doctorID, patientID uuid.UUID, req *model.CreateVisitRequest) (*model.Visit, error) {
	if req.Date == nil {
		return nil, apperrors.Validation("validation failed", apperrors.FieldError{
			Field:   "date",
			Message: "date is required",
		})
	}

	patient, err := s.getOwnedPatient(ctx, doctorID, patientID)
	if err != nil {
		return nil, err
	}

	visit := &model.Visit{
		ID:                  uuid.New(),
		PatientID:           patient.ID,
		DoctorID:            patient.DoctorID,
		Date:                *req.Date,
		PresentingComplaint: req.PresentingComplaint,
		PreviousHistory:     req.PreviousHistory,
		Vitals:              req.Vitals,
		PhysicalExamination: req.PhysicalExamination,
		Prescription:        prunePrescription(req.Prescription),
	}

	if err := marshalJSONFields(visit); err != nil {
		return nil, apperrors.Internal(err)
	}

	if err := s.visits.Create(ctx, visit); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, apperrors.NotFound("patient", err)
		}
		return nil, apperrors.Internal(err)
	}
	return visit, nil
}

func (s *service) List(ctx context.Context, doctorID, patientID uuid.UUID) ([]*model.Visit, error) {
	if _, err := s.getOwnedPatient(ctx, doctorID, patientID); err != nil {
		return nil, err
	}

	visits, err := s.visits.ListByPatient(ctx, patientID)
	if err != nil {
		return nil, apperrors.Internal(err)
	}

	for _, v := range visits {
		if err := unmarshalJSONFields(v); err != nil {
			return nil, apperrors.Internal(fmt.Errorf("failed to unmarshal visit %s: %w", v.ID, err))
		}
	}
	return visits, nil
}

func (s *service) getOwnedPatient(ctx context.Context, doctorID, patientID uuid.UUID) (*model.Patient, error) {
	patient, err := s.patients.Get(ctx, patientID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, apperrors.NotFound("patient", err)
		}
		return nil, apperrors.Internal(err)
	}

	if patient.DoctorID != doctorID {
		return nil, apperrors.Forbidden("not authorized")
	}
	return patient, nil
}

// prunePrescription drops Rx lines with every field blank. Order of the
// remaining lines is preserved.
func prunePrescription(entries []model.PrescriptionEntry) []model.PrescriptionEntry {
	pruned := make([]model.PrescriptionEntry, 0, len(entries))
	for _, e := range entries {
		if !e.Blank() {
			pruned = append(pruned, e)
		}
	}
	return pruned
}

func marshalJSONFields(v *model.Visit) error {
	vitals, err := json.Marshal(v.Vitals)
	if err != nil {
		return err
	}
	v.VitalsJSON = string(vitals)

	exam, err := json.Marshal(v.PhysicalExamination)
	if err != nil {
		return err
	}
	v.ExaminationJSON = string(exam)

	rx, err := json.Marshal(v.Prescription)
	if err != nil {
		return err
	}
	v.PrescriptionJSON = string(rx)
	return nil
}

func unmarshalJSONFields(v *model.Visit) error {
	if v.VitalsJSON != "" {
		if err := json.Unmarshal([]byte(v.VitalsJSON), &v.Vitals); err != nil {
			return err
		}
	}
	if v.ExaminationJSON != "" {
		if err := json.Unmarshal([]byte(v.ExaminationJSON), &v.PhysicalExamination); err != nil {
			return err
		}
	}
	if v.PrescriptionJSON != "" {
		if err := json.Unmarshal([]byte(v.PrescriptionJSON), &v.Prescription); err != nil {
			return err
		}
	}
	return nil
}
