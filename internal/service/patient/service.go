package patient

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/lib/pq"

	"github.com/cliniqor/cliniqor-api/internal/model"
	"github.com/cliniqor/cliniqor-api/internal/repository"
	apperrors "github.com/cliniqor/cliniqor-api/pkg/errors"
)

// Service exposes ownership-scoped patient operations. Every read and
// write is checked against the owning doctor.
type Service interface {
	List(ctx context.Context, doctorID uuid.UUID, category string) ([]*model.Patient, error)
	Create(ctx context.Context, doctorID uuid.UUID, req *model.CreatePatientRequest) (*model.Patient, error)
	Get(ctx context.Context, doctorID, patientID uuid.UUID) (*model.Patient, error)
	Update(ctx context.Context, doctorID, patientID uuid.UUID, req *model.UpdatePatientRequest) (*model.Patient, error)
	Delete(ctx context.Context, doctorID, patientID uuid.UUID) error
}

type service struct {
	repo repository.PatientRepository
}

func NewService(repo repository.PatientRepository) Service {
	return &service{repo: repo}
}

func (s *service) List(ctx context.Context, doctorID uuid.UUID, category string) ([]*model.Patient, error) {
	if !model.ValidCategory(category) {
		return nil, apperrors.Validation("validation failed", apperrors.FieldError{
			Field:   "category",
			Message: "category must be one of: opd, ward",
		})
	}

	patients, err := s.repo.List(ctx, doctorID, category)
	if err != nil {
		return nil, apperrors.Internal(err)
	}
	return patients, nil
}

func (s *service) Create(ctx context.Context, doctorID uuid.UUID, req *model.CreatePatientRequest) (*model.Patient, error) {
	patient := &model.Patient{
		ID:          uuid.New(),
		DoctorID:    doctorID,
		Name:        req.Name,
		CaseSummary: req.CaseSummary,
		Category:    req.Category,
		DateAdded:   time.Now(),
		VisitIDs:    pq.StringArray{},
	}

	if err := s.repo.Create(ctx, patient); err != nil {
		return nil, apperrors.Internal(err)
	}
	return patient, nil
}

func (s *service) Get(ctx context.Context, doctorID, patientID uuid.UUID) (*model.Patient, error) {
	return s.getOwned(ctx, doctorID, patientID)
}

// Update applies the patch field by field; absent fields are untouched.
// The owning doctor is immutable and not part of the patch.
func (s *service) Update(ctx context.Context, doctorID, patientID uuid.UUID, req *model.UpdatePatientRequest) (*model.Patient, error) {
	patient, err := s.getOwned(ctx, doctorID, patientID)
	if err != nil {
		return nil, err
	}

	if req.Name != nil {
		patient.Name = *req.Name
	}
	if req.CaseSummary != nil {
		patient.CaseSummary = *req.CaseSummary
	}
	if req.Category != nil {
		if !model.ValidCategory(*req.Category) {
			return nil, apperrors.Validation("validation failed", apperrors.FieldError{
				Field:   "category",
				Message: "category must be one of: opd, ward",
			})
		}
		patient.Category = *req.Category
	}

	if err := s.repo.Update(ctx, patient); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, apperrors.NotFound("patient", err)
		}
		return nil, apperrors.Internal(err)
	}
	return patient, nil
}

func (s *service) Delete(ctx context.Context, doctorID, patientID uuid.UUID) error {
	if _, err := s.getOwned(ctx, doctorID, patientID); err != nil {
		return err
	}

	if err := s.repo.Delete(ctx, patientID); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return apperrors.NotFound("patient", err)
		}
		return apperrors.Internal(err)
	}
	return nil
}

// getOwned fetches the patient and enforces ownership. Missing records are
// 404; records owned by another doctor are rejected without leaking their
// contents.
func (s *service) getOwned(ctx context.Context, doctorID, patientID uuid.UUID) (*model.Patient, error) {
	patient, err := s.repo.Get(ctx, patientID)
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
