package schedule

import (
	"context"
	"fmt"
	"sync"

	"github.com/google/uuid"

	"github.com/careloop/visitcare-api/internal/model"
	"github.com/careloop/visitcare-api/internal/recurrence"
	"github.com/careloop/visitcare-api/internal/repository"
)

// buildSeriesDrafts validates the draft and spec, expands the recurrence into
// concrete dates and returns one draft per date. When the spec is recurring,
// a single group id is generated up front and shared by every draft together
// with the canonical rule string; a non-recurring spec yields one draft with
// no group semantics.
func buildSeriesDrafts(draft model.VisitDraft, spec model.RecurrenceSpec) ([]model.VisitDraft, error) {
	if err := model.ValidateTimeOrder(draft.StartTime, draft.EndTime); err != nil {
		return nil, err
	}
	if err := spec.Validate(draft.VisitDate); err != nil {
		return nil, err
	}

	dates, err := recurrence.ExpandDates(draft.VisitDate, spec)
	if err != nil {
		return nil, err
	}

	var rule *string
	var groupID *uuid.UUID
	if spec.Type != model.RecurrenceNone {
		r := recurrence.ToRuleString(spec)
		rule = &r
		g := uuid.New()
		groupID = &g
	}

	drafts := make([]model.VisitDraft, len(dates))
	for i, date := range dates {
		d := draft
		d.VisitDate = date
		d.RecurrenceRule = rule
		d.RecurrenceGroupID = groupID
		drafts[i] = d
	}
	return drafts, nil
}

// createBatch persists the drafts: the first create runs alone so a total
// failure stops before fanning out, then the remaining creates are issued
// concurrently. Already-created visits are not rolled back when a later
// create fails; the counts in BatchResult tell the caller what happened.
func createBatch(ctx context.Context, repo repository.VisitRepository, drafts []model.VisitDraft) (BatchResult, []uuid.UUID, error) {
	result := BatchResult{Total: len(drafts)}

	firstID, err := repo.Create(ctx, &drafts[0])
	if err != nil {
		return result, nil, fmt.Errorf("failed to create visit: %w", err)
	}
	result.Succeeded = 1
	ids := []uuid.UUID{firstID}

	if len(drafts) == 1 {
		return result, ids, nil
	}

	var (
		wg   sync.WaitGroup
		mu   sync.Mutex
		errs []error
	)
	for i := 1; i < len(drafts); i++ {
		wg.Add(1)
		go func(d model.VisitDraft) {
			defer wg.Done()
			id, err := repo.Create(ctx, &d)
			mu.Lock()
			defer mu.Unlock()
			if err != nil {
				errs = append(errs, err)
				return
			}
			result.Succeeded++
			ids = append(ids, id)
		}(drafts[i])
	}
	wg.Wait()

	if len(errs) > 0 {
		return result, ids, fmt.Errorf("created %s visits: %w", result, errs[0])
	}
	return result, ids, nil
}
