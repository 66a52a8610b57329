package schedule

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/careloop/visitcare-api/internal/model"
	"github.com/careloop/visitcare-api/internal/repository"
)

// Actor identifies who is performing a mutation. Both ids come from the
// session context; this subsystem treats them as opaque.
type Actor struct {
	StaffID    uuid.UUID
	FacilityID uuid.UUID
}

// Service is the server-side schedule API: it persists visits through the
// repository, announces committed changes, and delegates scoped group
// mutations to the Resolver.
type Service struct {
	repo     repository.VisitRepository
	resolver *Resolver
	pub      ChangePublisher
	logger   *zerolog.Logger
}

func NewService(repo repository.VisitRepository, pub ChangePublisher, logger *zerolog.Logger) *Service {
	return &Service{
		repo:     repo,
		resolver: NewResolver(repo, pub, logger),
		pub:      pub,
		logger:   logger,
	}
}

// CreateVisits persists a single visit, or a whole series when the spec is
// recurring. Partial series failure is reported, not rolled back.
func (s *Service) CreateVisits(ctx context.Context, actor Actor, draft model.VisitDraft, spec model.RecurrenceSpec) (BatchResult, []uuid.UUID, error) {
	draft.FacilityID = actor.FacilityID

	drafts, err := buildSeriesDrafts(draft, spec)
	if err != nil {
		return BatchResult{}, nil, fmt.Errorf("invalid visit: %w", err)
	}

	result, ids, err := createBatch(ctx, s.repo, drafts)
	if len(ids) > 0 {
		s.pub.Notify(ctx, actor.FacilityID, actor.StaffID, ids[0], model.ChangeActionCreate)
	}
	if err != nil {
		return result, ids, err
	}

	s.logger.Info().
		Int("visits", result.Total).
		Str("client_id", draft.ClientID.String()).
		Msg("visit series created")
	return result, ids, nil
}

func (s *Service) GetVisit(ctx context.Context, id uuid.UUID) (*model.Visit, error) {
	visit, err := s.repo.Get(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("failed to get visit: %w", err)
	}
	return visit, nil
}

// UpdateVisit applies a partial update to one visit. The start/end ordering
// invariant is validated against the stored visit before any write.
func (s *Service) UpdateVisit(ctx context.Context, actor Actor, id uuid.UUID, update *model.VisitUpdate) error {
	if update.StartTime != nil || update.EndTime != nil {
		visit, err := s.repo.Get(ctx, id)
		if err != nil {
			return fmt.Errorf("failed to get visit: %w", err)
		}
		start, end := visit.StartTime, visit.EndTime
		if update.StartTime != nil {
			start = *update.StartTime
		}
		if update.EndTime != nil {
			end = *update.EndTime
		}
		if err := model.ValidateTimeOrder(start, end); err != nil {
			return fmt.Errorf("invalid visit: %w", err)
		}
	}

	if err := s.repo.Update(ctx, id, update); err != nil {
		return fmt.Errorf("failed to update visit: %w", err)
	}

	s.pub.Notify(ctx, actor.FacilityID, actor.StaffID, id, model.ChangeActionUpdate)
	return nil
}

// ScopedEdit applies the same changes across a recurrence group scope.
func (s *Service) ScopedEdit(ctx context.Context, actor Actor, id uuid.UUID, scope EditScope, changes *model.VisitUpdate) (BatchResult, error) {
	visit, err := s.repo.Get(ctx, id)
	if err != nil {
		return BatchResult{}, fmt.Errorf("failed to get visit: %w", err)
	}
	return s.resolver.ApplyScopedEdit(ctx, actor, visit, scope, changes)
}

// ScopedDelete removes the selected visit or its entire group.
func (s *Service) ScopedDelete(ctx context.Context, actor Actor, id uuid.UUID, scope EditScope) (BatchResult, error) {
	visit, err := s.repo.Get(ctx, id)
	if err != nil {
		return BatchResult{}, fmt.Errorf("failed to get visit: %w", err)
	}
	return s.resolver.ApplyScopedDelete(ctx, actor, visit, scope)
}

// ListRange returns the visits of the window the given anchor and granularity
// expand to.
func (s *Service) ListRange(ctx context.Context, facilityID uuid.UUID, anchor time.Time, granularity model.CalendarGranularity) ([]*model.Visit, error) {
	start, end, err := RangeFor(anchor, granularity)
	if err != nil {
		return nil, err
	}
	visits, err := s.repo.ListByDateRange(ctx, facilityID, start, end)
	if err != nil {
		return nil, fmt.Errorf("failed to list visits: %w", err)
	}
	return visits, nil
}

// ListGroup returns all members of a recurrence group, ordered by date.
func (s *Service) ListGroup(ctx context.Context, groupID uuid.UUID) ([]*model.Visit, error) {
	visits, err := s.repo.ListByRecurrenceGroup(ctx, groupID)
	if err != nil {
		return nil, fmt.Errorf("failed to list recurrence group: %w", err)
	}
	return visits, nil
}
