package schedule

import (
	"context"
	"fmt"
	"sync"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/careloop/visitcare-api/internal/model"
	"github.com/careloop/visitcare-api/internal/repository"
)

type EditScope string

const (
	ScopeSingle        EditScope = "single"
	ScopeThisAndFuture EditScope = "this_and_future"
	ScopeAll           EditScope = "all"
)

// FlowState tracks the scoped-edit flow for one selected recurring visit.
type FlowState int

const (
	FlowIdle FlowState = iota
	FlowAwaitingScopeChoice
	FlowResolving
	FlowDone
	FlowFailed
)

// editFlow is the state machine behind a scoped mutation. Transitions are
// strict: a scope can only be chosen after an edit was requested on a visit
// that belongs to a recurrence group.
type editFlow struct {
	state FlowState
	visit *model.Visit
	scope EditScope
}

func (f *editFlow) requestEdit(visit *model.Visit) error {
	if f.state != FlowIdle {
		return fmt.Errorf("edit already in progress")
	}
	if !visit.IsRecurring() {
		return fmt.Errorf("visit %s is not part of a recurrence group", visit.ID)
	}
	f.visit = visit
	f.state = FlowAwaitingScopeChoice
	return nil
}

func (f *editFlow) chooseScope(scope EditScope) error {
	if f.state != FlowAwaitingScopeChoice {
		return fmt.Errorf("no edit awaiting a scope choice")
	}
	switch scope {
	case ScopeSingle, ScopeThisAndFuture, ScopeAll:
	default:
		return fmt.Errorf("unknown edit scope %q", scope)
	}
	f.scope = scope
	f.state = FlowResolving
	return nil
}

func (f *editFlow) finish(err error) {
	if err != nil {
		f.state = FlowFailed
		return
	}
	f.state = FlowDone
}

// Resolver computes the target set for a scoped edit or delete of a
// recurrence group and issues the batched repository calls. The group is a
// logical boundary, not a transactional one: a mid-batch failure leaves the
// already-applied mutations in place and reports the counts.
type Resolver struct {
	repo   repository.VisitRepository
	pub    ChangePublisher
	logger *zerolog.Logger
}

// ChangePublisher announces committed mutations to other clients.
type ChangePublisher interface {
	Notify(ctx context.Context, facilityID, actingStaffID, visitID uuid.UUID, action string)
}

func NewResolver(repo repository.VisitRepository, pub ChangePublisher, logger *zerolog.Logger) *Resolver {
	return &Resolver{repo: repo, pub: pub, logger: logger}
}

// resolveTargets fetches the visits a scope expands to, ordered by date.
func (r *Resolver) resolveTargets(ctx context.Context, visit *model.Visit, scope EditScope) ([]*model.Visit, error) {
	if scope == ScopeSingle {
		return []*model.Visit{visit}, nil
	}

	group, err := r.repo.ListByRecurrenceGroup(ctx, *visit.RecurrenceGroupID)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve recurrence group: %w", err)
	}

	if scope == ScopeAll {
		return group, nil
	}

	// this_and_future: members on or after the selected visit's date.
	var targets []*model.Visit
	for _, v := range group {
		if !v.VisitDate.Before(visit.VisitDate) {
			targets = append(targets, v)
		}
	}
	return targets, nil
}

// ApplyScopedEdit applies the same field changes to every visit the scope
// expands to. The visit date is occurrence-specific and must not be part of a
// scoped edit. Updates run sequentially and stop at the first failure; visits
// already updated stay updated.
func (r *Resolver) ApplyScopedEdit(ctx context.Context, actor Actor, visit *model.Visit, scope EditScope, changes *model.VisitUpdate) (BatchResult, error) {
	if changes.VisitDate != nil {
		return BatchResult{}, fmt.Errorf("visit date cannot be changed for a whole series")
	}
	if changes.StartTime != nil && changes.EndTime != nil {
		if err := model.ValidateTimeOrder(*changes.StartTime, *changes.EndTime); err != nil {
			return BatchResult{}, err
		}
	}

	flow := &editFlow{}
	if err := flow.requestEdit(visit); err != nil {
		return BatchResult{}, err
	}
	if err := flow.chooseScope(scope); err != nil {
		return BatchResult{}, err
	}

	targets, err := r.resolveTargets(ctx, visit, scope)
	if err != nil {
		flow.finish(err)
		return BatchResult{}, err
	}

	result := BatchResult{Total: len(targets)}
	for _, target := range targets {
		if err := r.repo.Update(ctx, target.ID, changes); err != nil {
			flow.finish(err)
			if result.Succeeded > 0 {
				r.pub.Notify(ctx, actor.FacilityID, actor.StaffID, visit.ID, model.ChangeActionUpdate)
			}
			return result, fmt.Errorf("updated %s visits: %w", result, err)
		}
		result.Succeeded++
	}

	flow.finish(nil)
	r.pub.Notify(ctx, actor.FacilityID, actor.StaffID, visit.ID, model.ChangeActionUpdate)
	return result, nil
}

// ApplyScopedDelete deletes the selected visit or its entire group. Group
// deletions are issued concurrently and announced once, using the earliest
// target that was actually deleted as the representative.
func (r *Resolver) ApplyScopedDelete(ctx context.Context, actor Actor, visit *model.Visit, scope EditScope) (BatchResult, error) {
	if scope == ScopeThisAndFuture {
		return BatchResult{}, fmt.Errorf("delete supports single or all, not %q", scope)
	}

	var targets []*model.Visit
	if scope == ScopeSingle || !visit.IsRecurring() {
		targets = []*model.Visit{visit}
	} else {
		group, err := r.repo.ListByRecurrenceGroup(ctx, *visit.RecurrenceGroupID)
		if err != nil {
			return BatchResult{}, fmt.Errorf("failed to resolve recurrence group: %w", err)
		}
		targets = group
	}

	result := BatchResult{Total: len(targets)}

	var (
		wg      sync.WaitGroup
		mu      sync.Mutex
		errs    []error
		deleted = make([]bool, len(targets))
	)
	for i, target := range targets {
		wg.Add(1)
		go func(i int, id uuid.UUID) {
			defer wg.Done()
			err := r.repo.Delete(ctx, id)
			mu.Lock()
			defer mu.Unlock()
			if err != nil {
				errs = append(errs, err)
				return
			}
			deleted[i] = true
			result.Succeeded++
		}(i, target.ID)
	}
	wg.Wait()

	for i, ok := range deleted {
		if ok {
			r.pub.Notify(ctx, actor.FacilityID, actor.StaffID, targets[i].ID, model.ChangeActionDelete)
			break
		}
	}

	if len(errs) > 0 {
		return result, fmt.Errorf("deleted %s visits: %w", result, errs[0])
	}
	return result, nil
}
