package repository

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"

	"github.com/careloop/visitcare-api/internal/model"
)

// ErrNotFound is returned when an update, delete or get targets a row that
// does not exist. Callers surface it to the user rather than ignoring it.
var ErrNotFound = errors.New("not found")

// All repository interfaces in one file
type (
	// VisitRepository is the persistence boundary for schedule visits. The
	// scheduling services depend on this interface only, so they can be
	// exercised against an in-memory fake.
	VisitRepository interface {
		Create(ctx context.Context, draft *model.VisitDraft) (uuid.UUID, error)
		Get(ctx context.Context, id uuid.UUID) (*model.Visit, error)
		Update(ctx context.Context, id uuid.UUID, update *model.VisitUpdate) error
		Delete(ctx context.Context, id uuid.UUID) error
		ListByRecurrenceGroup(ctx context.Context, groupID uuid.UUID) ([]*model.Visit, error)
		ListByDateRange(ctx context.Context, facilityID uuid.UUID, start, end time.Time) ([]*model.Visit, error)
	}

	ClientRepository interface {
		Create(ctx context.Context, client *model.Client) error
		Get(ctx context.Context, id uuid.UUID) (*model.Client, error)
		Update(ctx context.Context, client *model.Client) error
		Delete(ctx context.Context, id uuid.UUID) error
		List(ctx context.Context, filters *model.ClientFilters) ([]*model.Client, error)
	}

	StaffRepository interface {
		Get(ctx context.Context, id uuid.UUID) (*model.Staff, error)
		List(ctx context.Context, facilityID uuid.UUID) ([]*model.Staff, error)
	}

	ServiceTypeRepository interface {
		Get(ctx context.Context, id uuid.UUID) (*model.ServiceType, error)
		List(ctx context.Context, facilityID uuid.UUID) ([]*model.ServiceType, error)
	}

	VisitRecordRepository interface {
		Create(ctx context.Context, record *model.VisitRecord) error
		Get(ctx context.Context, id uuid.UUID) (*model.VisitRecord, error)
		ListByClientMonth(ctx context.Context, clientID uuid.UUID, month time.Time) ([]*model.VisitRecord, error)
	}
)
