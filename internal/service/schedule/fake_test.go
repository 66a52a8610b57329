package schedule

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/careloop/visitcare-api/internal/model"
	"github.com/careloop/visitcare-api/internal/repository"
)

// fakeVisitRepo is an in-memory VisitRepository with per-call error
// injection, standing in for the persistence backend.
type fakeVisitRepo struct {
	mu     sync.Mutex
	visits map[uuid.UUID]*model.Visit

	createCalls int
	updateCalls []uuid.UUID
	deleteCalls []uuid.UUID

	failCreateFrom int // fail the Nth and later creates (1-based, 0 = never)
	failUpdateIDs  map[uuid.UUID]bool
	failDeleteIDs  map[uuid.UUID]bool
}

func newFakeVisitRepo() *fakeVisitRepo {
	return &fakeVisitRepo{
		visits:        make(map[uuid.UUID]*model.Visit),
		failUpdateIDs: make(map[uuid.UUID]bool),
		failDeleteIDs: make(map[uuid.UUID]bool),
	}
}

func (f *fakeVisitRepo) Create(ctx context.Context, draft *model.VisitDraft) (uuid.UUID, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	f.createCalls++
	if f.failCreateFrom > 0 && f.createCalls >= f.failCreateFrom {
		return uuid.Nil, fmt.Errorf("backend unavailable")
	}

	id := uuid.New()
	f.visits[id] = &model.Visit{
		Base:              model.Base{ID: id, CreatedAt: time.Now(), UpdatedAt: time.Now()},
		FacilityID:        draft.FacilityID,
		ClientID:          draft.ClientID,
		StaffID:           draft.StaffID,
		ServiceTypeID:     draft.ServiceTypeID,
		VisitDate:         draft.VisitDate,
		StartTime:         draft.StartTime,
		EndTime:           draft.EndTime,
		Status:            model.VisitStatusScheduled,
		Notes:             draft.Notes,
		RecurrenceRule:    draft.RecurrenceRule,
		RecurrenceGroupID: draft.RecurrenceGroupID,
	}
	return id, nil
}

func (f *fakeVisitRepo) Get(ctx context.Context, id uuid.UUID) (*model.Visit, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	v, ok := f.visits[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	cp := *v
	return &cp, nil
}

func (f *fakeVisitRepo) Update(ctx context.Context, id uuid.UUID, update *model.VisitUpdate) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	f.updateCalls = append(f.updateCalls, id)
	if f.failUpdateIDs[id] {
		return fmt.Errorf("backend unavailable")
	}

	v, ok := f.visits[id]
	if !ok {
		return repository.ErrNotFound
	}
	if update.ClientID != nil {
		v.ClientID = *update.ClientID
	}
	if update.StaffID != nil {
		v.StaffID = *update.StaffID
	}
	if update.ServiceTypeID != nil {
		v.ServiceTypeID = update.ServiceTypeID
	}
	if update.VisitDate != nil {
		v.VisitDate = *update.VisitDate
	}
	if update.StartTime != nil {
		v.StartTime = *update.StartTime
	}
	if update.EndTime != nil {
		v.EndTime = *update.EndTime
	}
	if update.Status != nil {
		v.Status = *update.Status
	}
	if update.Notes != nil {
		v.Notes = *update.Notes
	}
	return nil
}

func (f *fakeVisitRepo) Delete(ctx context.Context, id uuid.UUID) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	f.deleteCalls = append(f.deleteCalls, id)
	if f.failDeleteIDs[id] {
		return fmt.Errorf("backend unavailable")
	}
	if _, ok := f.visits[id]; !ok {
		return repository.ErrNotFound
	}
	delete(f.visits, id)
	return nil
}

func (f *fakeVisitRepo) ListByRecurrenceGroup(ctx context.Context, groupID uuid.UUID) ([]*model.Visit, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	var out []*model.Visit
	for _, v := range f.visits {
		if v.RecurrenceGroupID != nil && *v.RecurrenceGroupID == groupID {
			cp := *v
			out = append(out, &cp)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].VisitDate.Before(out[j].VisitDate) })
	return out, nil
}

func (f *fakeVisitRepo) ListByDateRange(ctx context.Context, facilityID uuid.UUID, start, end time.Time) ([]*model.Visit, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	var out []*model.Visit
	for _, v := range f.visits {
		if v.FacilityID == facilityID && !v.VisitDate.Before(start) && !v.VisitDate.After(end) {
			cp := *v
			out = append(out, &cp)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].VisitDate.Before(out[j].VisitDate) })
	return out, nil
}

// seed inserts a visit directly, bypassing Create bookkeeping.
func (f *fakeVisitRepo) seed(v *model.Visit) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.visits[v.ID] = v
}

type fakeServiceTypeRepo struct {
	types []*model.ServiceType
}

func (f *fakeServiceTypeRepo) Get(ctx context.Context, id uuid.UUID) (*model.ServiceType, error) {
	for _, st := range f.types {
		if st.ID == id {
			return st, nil
		}
	}
	return nil, repository.ErrNotFound
}

func (f *fakeServiceTypeRepo) List(ctx context.Context, facilityID uuid.UUID) ([]*model.ServiceType, error) {
	return f.types, nil
}

// fakePublisher records server-side change notifications.
type fakePublisher struct {
	mu      sync.Mutex
	changes []string // "action:visitID"
}

func (f *fakePublisher) Notify(ctx context.Context, facilityID, actingStaffID, visitID uuid.UUID, action string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.changes = append(f.changes, action+":"+visitID.String())
}

func (f *fakePublisher) count() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.changes)
}

// fakeNotifier records client-side change notifications.
type fakeNotifier struct {
	mu      sync.Mutex
	actions []string
}

func (f *fakeNotifier) Notify(ctx context.Context, visitID uuid.UUID, action string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.actions = append(f.actions, action)
}

func testLogger() *zerolog.Logger {
	l := zerolog.Nop()
	return &l
}

func mustDate(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

// seedGroup creates n weekly visits sharing one recurrence group.
func seedGroup(repo *fakeVisitRepo, facilityID uuid.UUID, n int, firstDate time.Time) (uuid.UUID, []*model.Visit) {
	groupID := uuid.New()
	rule := "FREQ=WEEKLY;BYDAY=MO;COUNT=" + fmt.Sprint(n)

	var visits []*model.Visit
	for i := 0; i < n; i++ {
		v := &model.Visit{
			Base:              model.Base{ID: uuid.New()},
			FacilityID:        facilityID,
			ClientID:          uuid.New(),
			StaffID:           uuid.New(),
			VisitDate:         firstDate.AddDate(0, 0, 7*i),
			StartTime:         "09:00",
			EndTime:           "10:00",
			Status:            model.VisitStatusScheduled,
			RecurrenceRule:    &rule,
			RecurrenceGroupID: &groupID,
		}
		repo.seed(v)
		visits = append(visits, v)
	}
	return groupID, visits
}
