package schedule

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/careloop/visitcare-api/internal/model"
	"github.com/careloop/visitcare-api/internal/repository"
)

// ChangeNotifier announces a committed mutation made through this view.
// Satisfied by notifier.ScheduleNotifier.
type ChangeNotifier interface {
	Notify(ctx context.Context, visitID uuid.UUID, action string)
}

// CalendarView owns the state of one connected calendar: the visible date
// window, the fetched visit set and its event projection. Mutations made
// through the view are applied optimistically and reverted when the
// repository rejects them; foreign changes trigger a refetch of the whole
// window since change events carry no payload.
type CalendarView struct {
	repo   repository.VisitRepository
	types  repository.ServiceTypeRepository
	notify ChangeNotifier
	logger *zerolog.Logger

	facilityID uuid.UUID

	mu          sync.Mutex
	granularity model.CalendarGranularity
	anchor      time.Time
	rangeStart  time.Time
	rangeEnd    time.Time
	visits      []*model.Visit
	events      []model.CalendarEvent
	categories  map[uuid.UUID]string
}

func NewCalendarView(
	repo repository.VisitRepository,
	types repository.ServiceTypeRepository,
	notify ChangeNotifier,
	facilityID uuid.UUID,
	logger *zerolog.Logger,
) *CalendarView {
	return &CalendarView{
		repo:       repo,
		types:      types,
		notify:     notify,
		logger:     logger,
		facilityID: facilityID,
		categories: make(map[uuid.UUID]string),
	}
}

// LoadRange moves the visible window to the anchor date at the given
// granularity and fetches the visits inside it.
func (v *CalendarView) LoadRange(ctx context.Context, anchor time.Time, granularity model.CalendarGranularity) error {
	start, end, err := RangeFor(anchor, granularity)
	if err != nil {
		return err
	}

	v.mu.Lock()
	v.anchor = anchor
	v.granularity = granularity
	v.rangeStart = start
	v.rangeEnd = end
	v.mu.Unlock()

	return v.Refetch(ctx)
}

// Refetch reloads the current window from the repository and recomputes the
// event projection.
func (v *CalendarView) Refetch(ctx context.Context) error {
	v.mu.Lock()
	start, end := v.rangeStart, v.rangeEnd
	v.mu.Unlock()

	if start.IsZero() {
		return fmt.Errorf("no visible range loaded")
	}

	visits, err := v.repo.ListByDateRange(ctx, v.facilityID, start, end)
	if err != nil {
		return fmt.Errorf("failed to fetch visits: %w", err)
	}

	if err := v.loadCategories(ctx); err != nil {
		// Colors degrade gracefully; the schedule itself is more important.
		v.logger.Warn().Err(err).Msg("failed to load service type categories")
	}

	v.mu.Lock()
	v.visits = visits
	v.events = EventsFromVisits(visits, v.categories)
	v.mu.Unlock()
	return nil
}

func (v *CalendarView) loadCategories(ctx context.Context) error {
	types, err := v.types.List(ctx, v.facilityID)
	if err != nil {
		return err
	}
	v.mu.Lock()
	defer v.mu.Unlock()
	for _, st := range types {
		v.categories[st.ID] = st.Category
	}
	return nil
}

// Events returns a snapshot of the current projection.
func (v *CalendarView) Events() []model.CalendarEvent {
	v.mu.Lock()
	defer v.mu.Unlock()
	out := make([]model.CalendarEvent, len(v.events))
	copy(out, v.events)
	return out
}

// VisibleRange returns the current window bounds.
func (v *CalendarView) VisibleRange() (time.Time, time.Time) {
	v.mu.Lock()
	defer v.mu.Unlock()
	return v.rangeStart, v.rangeEnd
}

// Reschedule handles a drag-move or drag-resize gesture: the new times are
// validated before any repository call, then applied optimistically. On
// rejection the prior state is restored exactly; on success the change is
// announced and the window refetched.
func (v *CalendarView) Reschedule(ctx context.Context, visitID uuid.UUID, newDate time.Time, newStart, newEnd string) error {
	if err := model.ValidateTimeOrder(newStart, newEnd); err != nil {
		return fmt.Errorf("invalid visit: %w", err)
	}

	v.mu.Lock()
	var target *model.Visit
	for _, visit := range v.visits {
		if visit.ID == visitID {
			target = visit
			break
		}
	}
	if target == nil {
		v.mu.Unlock()
		return fmt.Errorf("visit %s is not in the visible range", visitID)
	}

	// Two-phase optimistic apply: keep the prior value explicit so a
	// failed update restores it verbatim.
	prior := *target
	target.VisitDate = newDate
	target.StartTime = newStart
	target.EndTime = newEnd
	v.events = EventsFromVisits(v.visits, v.categories)
	v.mu.Unlock()

	update := &model.VisitUpdate{
		VisitDate: &newDate,
		StartTime: &newStart,
		EndTime:   &newEnd,
	}
	if err := v.repo.Update(ctx, visitID, update); err != nil {
		v.mu.Lock()
		*target = prior
		v.events = EventsFromVisits(v.visits, v.categories)
		v.mu.Unlock()
		return fmt.Errorf("failed to reschedule visit: %w", err)
	}

	v.notify.Notify(ctx, visitID, model.ChangeActionUpdate)

	if err := v.Refetch(ctx); err != nil {
		v.logger.Warn().Err(err).Msg("refetch after reschedule failed")
	}
	return nil
}

// CreateSeries expands the spec into dates and persists one visit per date,
// all sharing a group id generated up front when the spec is recurring. The
// first create runs alone, the rest fan out concurrently; partial failure is
// reported through BatchResult and never rolled back.
func (v *CalendarView) CreateSeries(ctx context.Context, draft model.VisitDraft, spec model.RecurrenceSpec) (BatchResult, error) {
	draft.FacilityID = v.facilityID

	drafts, err := buildSeriesDrafts(draft, spec)
	if err != nil {
		return BatchResult{}, fmt.Errorf("invalid visit: %w", err)
	}

	result, ids, err := createBatch(ctx, v.repo, drafts)
	if len(ids) > 0 {
		v.notify.Notify(ctx, ids[0], model.ChangeActionCreate)
		if rerr := v.Refetch(ctx); rerr != nil {
			v.logger.Warn().Err(rerr).Msg("refetch after create failed")
		}
	}
	return result, err
}

// HandleForeignChange is wired to the notifier subscription: some other
// client changed the schedule, so the cached window is stale.
func (v *CalendarView) HandleForeignChange(ctx context.Context, change model.ScheduleChange) {
	v.logger.Debug().
		Str("visit_id", change.VisitID).
		Str("action", change.Action).
		Msg("foreign schedule change, refetching")
	if err := v.Refetch(ctx); err != nil {
		v.logger.Warn().Err(err).Msg("refetch after foreign change failed")
	}
}
