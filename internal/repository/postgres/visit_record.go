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

func (r *visitRecordRepository) Create(ctx context.Context, record *model.VisitRecord) error {
	query := `
		INSERT INTO visit_records (
			id, visit_id, client_id, body, vitals_note,
			recorded_by, recorded_at, created_at, updated_at
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
	`
	record.ID = uuid.New()
	record.CreatedAt = time.Now()
	record.UpdatedAt = time.Now()
	if record.RecordedAt.IsZero() {
		record.RecordedAt = record.CreatedAt
	}

	_, err := r.db.ExecContext(ctx, query,
		record.ID,
		record.VisitID,
		record.ClientID,
		record.Body,
		record.VitalsNote,
		record.RecordedBy,
		record.RecordedAt,
		record.CreatedAt,
		record.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to create visit record: %w", err)
	}
	return nil
}

func (r *visitRecordRepository) Get(ctx context.Context, id uuid.UUID) (*model.VisitRecord, error) {
	query := `
		SELECT id, visit_id, client_id, body, vitals_note,
			   recorded_by, recorded_at, created_at, updated_at
		FROM visit_records
		WHERE id = $1
	`
	var record model.VisitRecord
	err := r.db.GetContext(ctx, &record, query, id)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, repository.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get visit record: %w", err)
	}
	return &record, nil
}

func (r *visitRecordRepository) ListByClientMonth(ctx context.Context, clientID uuid.UUID, month time.Time) ([]*model.VisitRecord, error) {
	monthStart := time.Date(month.Year(), month.Month(), 1, 0, 0, 0, 0, time.UTC)
	monthEnd := monthStart.AddDate(0, 1, 0)

	query := `
		SELECT id, visit_id, client_id, body, vitals_note,
			   recorded_by, recorded_at, created_at, updated_at
		FROM visit_records
		WHERE client_id = $1
		AND recorded_at >= $2
		AND recorded_at < $3
		ORDER BY recorded_at ASC
	`
	var records []*model.VisitRecord
	if err := r.db.SelectContext(ctx, &records, query, clientID, monthStart, monthEnd); err != nil {
		return nil, fmt.Errorf("failed to list visit records: %w", err)
	}
	return records, nil
}
