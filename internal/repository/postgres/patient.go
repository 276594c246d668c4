package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/cliniqor/cliniqor-api/internal/model"
	"github.com/cliniqor/cliniqor-api/internal/repository"
)

type patientRepository struct {
	db *sqlx.DB
}

func NewPatientRepository(db *sqlx.DB) repository.PatientRepository {
	return &patientRepository{db: db}
}

func (r *patientRepository) Create(ctx context.Context, patient *model.Patient) error {
	query := `
		INSERT INTO patients (id, doctor_id, name, case_summary, category, date_added, visit_ids)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
	`
	_, err := r.db.ExecContext(ctx, query,
		patient.ID,
		patient.DoctorID,
		patient.Name,
		patient.CaseSummary,
		patient.Category,
		patient.DateAdded,
		patient.VisitIDs,
	)
	if err != nil {
		return fmt.Errorf("failed to create patient: %w", err)
	}
	return nil
}

func (r *patientRepository) Get(ctx context.Context, id uuid.UUID) (*model.Patient, error) {
	query := `SELECT * FROM patients WHERE id = $1`
	var patient model.Patient
	if err := r.db.GetContext(ctx, &patient, query, id); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, repository.ErrNotFound
		}
		return nil, fmt.Errorf("failed to get patient: %w", err)
	}
	return &patient, nil
}

func (r *patientRepository) List(ctx context.Context, doctorID uuid.UUID, category string) ([]*model.Patient, error) {
	query := `
		SELECT * FROM patients
		WHERE doctor_id = $1 AND category = $2
		ORDER BY date_added DESC
	`
	patients := []*model.Patient{}
	if err := r.db.SelectContext(ctx, &patients, query, doctorID, category); err != nil {
		return nil, fmt.Errorf("failed to list patients: %w", err)
	}
	return patients, nil
}

func (r *patientRepository) Update(ctx context.Context, patient *model.Patient) error {
	query := `
		UPDATE patients
		SET name = $1, case_summary = $2, category = $3
		WHERE id = $4
	`
	res, err := r.db.ExecContext(ctx, query,
		patient.Name,
		patient.CaseSummary,
		patient.Category,
		patient.ID,
	)
	if err != nil {
		return fmt.Errorf("failed to update patient: %w", err)
	}
	if rows, _ := res.RowsAffected(); rows == 0 {
		return repository.ErrNotFound
	}
	return nil
}

// Delete removes the patient and cascade-deletes its visits in the same
// transaction so no orphaned visit rows remain.
func (r *patientRepository) Delete(ctx context.Context, id uuid.UUID) error {
	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx, `DELETE FROM visits WHERE patient_id = $1`, id); err != nil {
		return fmt.Errorf("failed to delete patient visits: %w", err)
	}

	res, err := tx.ExecContext(ctx, `DELETE FROM patients WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("failed to delete patient: %w", err)
	}
	if rows, _ := res.RowsAffected(); rows == 0 {
		return repository.ErrNotFound
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit patient delete: %w", err)
	}
	return nil
}
