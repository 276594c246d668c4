package repository

import (
	"context"
	"errors"

	"github.com/google/uuid"

	"github.com/cliniqor/cliniqor-api/internal/model"
)

// Sentinel errors surfaced by repositories. Services translate these into
// the API error taxonomy.
var (
	ErrNotFound       = errors.New("record not found")
	ErrDuplicateEmail = errors.New("email already registered")
)

// UserRepository persists doctor accounts.
type UserRepository interface {
	Create(ctx context.Context, user *model.User) error
	Get(ctx context.Context, id uuid.UUID) (*model.User, error)
	GetByEmail(ctx context.Context, email string) (*model.User, error)
	GetByProviderID(ctx context.Context, provider, providerID string) (*model.User, error)
	LinkProvider(ctx context.Context, id uuid.UUID, provider, providerID string) error
}

// PatientRepository persists patient records.
type PatientRepository interface {
	Create(ctx context.Context, patient *model.Patient) error
	Get(ctx context.Context, id uuid.UUID) (*model.Patient, error)
	List(ctx context.Context, doctorID uuid.UUID, category string) ([]*model.Patient, error)
	Update(ctx context.Context, patient *model.Patient) error
	// Delete removes the patient and its visits in one transaction.
	Delete(ctx context.Context, id uuid.UUID) error
}

// VisitRepository persists visit records.
type VisitRepository interface {
	// Create inserts the visit and prepends its id onto the patient's
	// visit list atomically.
	Create(ctx context.Context, visit *model.Visit) error
	ListByPatient(ctx context.Context, patientID uuid.UUID) ([]*model.Visit, error)
}
