package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/careloop/visitcare-api/internal/model"
	"github.com/careloop/visitcare-api/internal/repository"
)

const visitColumns = `
	v.id, v.facility_id, v.client_id, c.name AS client_name,
	v.staff_id, s.name AS staff_name, v.service_type_id,
	v.visit_date, v.start_time, v.end_time, v.status, v.notes,
	v.recurrence_rule, v.recurrence_group_id,
	v.created_at, v.updated_at
`

const visitJoins = `
	FROM visits v
	JOIN clients c ON c.id = v.client_id
	JOIN staff s ON s.id = v.staff_id
`

func (r *visitRepository) Create(ctx context.Context, draft *model.VisitDraft) (uuid.UUID, error) {
	query := `
		INSERT INTO visits (
			id, facility_id, client_id, staff_id, service_type_id,
			visit_date, start_time, end_time, status, notes,
			recurrence_rule, recurrence_group_id,
			created_at, updated_at
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14)
	`
	id := uuid.New()
	now := time.Now()

	_, err := r.db.ExecContext(ctx, query,
		id,
		draft.FacilityID,
		draft.ClientID,
		draft.StaffID,
		draft.ServiceTypeID,
		draft.VisitDate,
		draft.StartTime,
		draft.EndTime,
		model.VisitStatusScheduled,
		draft.Notes,
		draft.RecurrenceRule,
		draft.RecurrenceGroupID,
		now,
		now,
	)
	if err != nil {
		return uuid.Nil, fmt.Errorf("failed to create visit: %w", err)
	}
	return id, nil
}

func (r *visitRepository) Get(ctx context.Context, id uuid.UUID) (*model.Visit, error) {
	query := `SELECT ` + visitColumns + visitJoins + ` WHERE v.id = $1`

	var visit model.Visit
	err := r.db.GetContext(ctx, &visit, query, id)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, repository.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get visit: %w", err)
	}
	return &visit, nil
}

func (r *visitRepository) Update(ctx context.Context, id uuid.UUID, update *model.VisitUpdate) error {
	if update.IsEmpty() {
		return nil
	}

	query := "UPDATE visits SET updated_at = $1"
	args := []interface{}{time.Now()}
	argCount := 2

	appendSet := func(col string, v interface{}) {
		query += fmt.Sprintf(", %s = $%d", col, argCount)
		args = append(args, v)
		argCount++
	}

	if update.ClientID != nil {
		appendSet("client_id", *update.ClientID)
	}
	if update.StaffID != nil {
		appendSet("staff_id", *update.StaffID)
	}
	if update.ServiceTypeID != nil {
		appendSet("service_type_id", *update.ServiceTypeID)
	}
	if update.VisitDate != nil {
		appendSet("visit_date", *update.VisitDate)
	}
	if update.StartTime != nil {
		appendSet("start_time", *update.StartTime)
	}
	if update.EndTime != nil {
		appendSet("end_time", *update.EndTime)
	}
	if update.Status != nil {
		appendSet("status", *update.Status)
	}
	if update.Notes != nil {
		appendSet("notes", *update.Notes)
	}

	query += fmt.Sprintf(" WHERE id = $%d", argCount)
	args = append(args, id)

	result, err := r.db.ExecContext(ctx, query, args...)
	if err != nil {
		return fmt.Errorf("failed to update visit: %w", err)
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}
	if rows == 0 {
		return repository.ErrNotFound
	}
	return nil
}

func (r *visitRepository) Delete(ctx context.Context, id uuid.UUID) error {
	result, err := r.db.ExecContext(ctx, `DELETE FROM visits WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("failed to delete visit: %w", err)
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}
	if rows == 0 {
		return repository.ErrNotFound
	}
	return nil
}

func (r *visitRepository) ListByRecurrenceGroup(ctx context.Context, groupID uuid.UUID) ([]*model.Visit, error) {
	query := `SELECT ` + visitColumns + visitJoins + `
		WHERE v.recurrence_group_id = $1
		ORDER BY v.visit_date ASC`

	var visits []*model.Visit
	if err := r.db.SelectContext(ctx, &visits, query, groupID); err != nil {
		return nil, fmt.Errorf("failed to list recurrence group: %w", err)
	}
	return visits, nil
}

func (r *visitRepository) ListByDateRange(ctx context.Context, facilityID uuid.UUID, start, end time.Time) ([]*model.Visit, error) {
	query := `SELECT ` + visitColumns + visitJoins + `
		WHERE v.facility_id = $1
		AND v.visit_date >= $2
		AND v.visit_date <= $3
		ORDER BY v.visit_date ASC, v.start_time ASC`

	var visits []*model.Visit
	if err := r.db.SelectContext(ctx, &visits, query, facilityID, start, end); err != nil {
		return nil, fmt.Errorf("failed to list visits by date range: %w", err)
	}
	return visits, nil
}
