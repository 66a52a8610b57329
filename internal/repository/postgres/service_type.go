package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/google/uuid"

	"github.com/careloop/visitcare-api/internal/model"
	"github.com/careloop/visitcare-api/internal/repository"
)

func (r *serviceTypeRepository) Get(ctx context.Context, id uuid.UUID) (*model.ServiceType, error) {
	query := `
		SELECT id, facility_id, name, category, created_at, updated_at
		FROM service_types
		WHERE id = $1
	`
	var st model.ServiceType
	err := r.db.GetContext(ctx, &st, query, id)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, repository.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get service type: %w", err)
	}
	return &st, nil
}

func (r *serviceTypeRepository) List(ctx context.Context, facilityID uuid.UUID) ([]*model.ServiceType, error) {
	query := `
		SELECT id, facility_id, name, category, created_at, updated_at
		FROM service_types
		WHERE facility_id = $1
		ORDER BY category ASC, name ASC
	`
	var types []*model.ServiceType
	if err := r.db.SelectContext(ctx, &types, query, facilityID); err != nil {
		return nil, fmt.Errorf("failed to list service types: %w", err)
	}
	return types, nil
}
