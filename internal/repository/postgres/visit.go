package postgres

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/cliniqor/cliniqor-api/internal/model"
	"github.com/cliniqor/cliniqor-api/internal/repository"
)

type visitRepository struct {
	db *sqlx.DB
}

func NewVisitRepository(db *sqlx.DB) repository.VisitRepository {
	return &visitRepository{db: db}
}

// Create inserts the visit and prepends its id onto the owning patient's
// visit list. Both writes run in one transaction: either the visit exists
// and is referenced, or neither write happened.
func (r *visitRepository) Create(ctx context.Context, visit *model.Visit) error {
	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	insert := `
		INSERT INTO visits (id, patient_id, doctor_id, date, presenting_complaint,
			previous_history, vitals, physical_examination, prescription)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
	`
	_, err = tx.ExecContext(ctx, insert,
		visit.ID,
		visit.PatientID,
		visit.DoctorID,
		visit.Date,
		visit.PresentingComplaint,
		visit.PreviousHistory,
		visit.VitalsJSON,
		visit.ExaminationJSON,
		visit.PrescriptionJSON,
	)
	if err != nil {
		return fmt.Errorf("failed to create visit: %w", err)
	}

	prepend := `
		UPDATE patients
		SET visit_ids = array_prepend($1::text, visit_ids)
		WHERE id = $2
	`
	res, err := tx.ExecContext(ctx, prepend, visit.ID.String(), visit.PatientID)
	if err != nil {
		return fmt.Errorf("failed to record visit on patient: %w", err)
	}
	if rows, _ := res.RowsAffected(); rows == 0 {
		return repository.ErrNotFound
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit visit create: %w", err)
	}
	return nil
}

func (r *visitRepository) ListByPatient(ctx context.Context, patientID uuid.UUID) ([]*model.Visit, error) {
	query := `
		SELECT * FROM visits
		WHERE patient_id = $1
		ORDER BY date DESC
	`
	visits := []*model.Visit{}
	if err := r.db.SelectContext(ctx, &visits, query, patientID); err != nil {
		return nil, fmt.Errorf("failed to list visits: %w", err)
	}
	return visits, nil
}
