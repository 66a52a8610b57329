package schedule

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"sort"
	"sync"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/careloop/visitcare-api/internal/middleware"
	"github.com/careloop/visitcare-api/internal/model"
	"github.com/careloop/visitcare-api/internal/repository"
	svc "github.com/careloop/visitcare-api/internal/service/schedule"
	"github.com/careloop/visitcare-api/pkg/validator"
)

func TestMain(m *testing.M) {
	if err := validator.RegisterCustom(); err != nil {
		panic(err)
	}
	m.Run()
}

type memVisitRepo struct {
	mu     sync.Mutex
	visits map[uuid.UUID]*model.Visit
}

func newMemVisitRepo() *memVisitRepo {
	return &memVisitRepo{visits: make(map[uuid.UUID]*model.Visit)}
}

func (m *memVisitRepo) Create(ctx context.Context, d *model.VisitDraft) (uuid.UUID, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	id := uuid.New()
	m.visits[id] = &model.Visit{
		Base:              model.Base{ID: id},
		FacilityID:        d.FacilityID,
		ClientID:          d.ClientID,
		StaffID:           d.StaffID,
		VisitDate:         d.VisitDate,
		StartTime:         d.StartTime,
		EndTime:           d.EndTime,
		Status:            model.VisitStatusScheduled,
		Notes:             d.Notes,
		RecurrenceRule:    d.RecurrenceRule,
		RecurrenceGroupID: d.RecurrenceGroupID,
	}
	return id, nil
}

func (m *memVisitRepo) Get(ctx context.Context, id uuid.UUID) (*model.Visit, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	v, ok := m.visits[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	cp := *v
	return &cp, nil
}

func (m *memVisitRepo) Update(ctx context.Context, id uuid.UUID, u *model.VisitUpdate) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	v, ok := m.visits[id]
	if !ok {
		return repository.ErrNotFound
	}
	if u.Notes != nil {
		v.Notes = *u.Notes
	}
	if u.StartTime != nil {
		v.StartTime = *u.StartTime
	}
	if u.EndTime != nil {
		v.EndTime = *u.EndTime
	}
	if u.Status != nil {
		v.Status = *u.Status
	}
	return nil
}

func (m *memVisitRepo) Delete(ctx context.Context, id uuid.UUID) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.visits[id]; !ok {
		return repository.ErrNotFound
	}
	delete(m.visits, id)
	return nil
}

func (m *memVisitRepo) ListByRecurrenceGroup(ctx context.Context, g uuid.UUID) ([]*model.Visit, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []*model.Visit
	for _, v := range m.visits {
		if v.RecurrenceGroupID != nil && *v.RecurrenceGroupID == g {
			cp := *v
			out = append(out, &cp)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].VisitDate.Before(out[j].VisitDate) })
	return out, nil
}

func (m *memVisitRepo) ListByDateRange(ctx context.Context, f uuid.UUID, start, end time.Time) ([]*model.Visit, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []*model.Visit
	for _, v := range m.visits {
		if v.FacilityID == f && !v.VisitDate.Before(start) && !v.VisitDate.After(end) {
			cp := *v
			out = append(out, &cp)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].VisitDate.Before(out[j].VisitDate) })
	return out, nil
}

type nopPublisher struct{}

func (nopPublisher) Notify(ctx context.Context, facilityID, actingStaffID, visitID uuid.UUID, action string) {
}

func setupRouter(repo *memVisitRepo, staffID, facilityID uuid.UUID) *gin.Engine {
	gin.SetMode(gin.TestMode)
	logger := zerolog.Nop()
	service := svc.NewService(repo, nopPublisher{}, &logger)
	handler := NewHandler(service)

	r := gin.New()
	r.Use(middleware.RequestID(), middleware.ErrorHandler())
	r.Use(func(c *gin.Context) {
		c.Set("staff_id", staffID)
		c.Set("facility_id", facilityID)
	})
	handler.RegisterRoutes(r.Group("/api/v1"))
	return r
}

func doJSON(t *testing.T, r *gin.Engine, method, path string, body any) *httptest.ResponseRecorder {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func TestCreateVisitSeriesEndpoint(t *testing.T) {
	repo := newMemVisitRepo()
	facilityID := uuid.New()
	r := setupRouter(repo, uuid.New(), facilityID)

	w := doJSON(t, r, http.MethodPost, "/api/v1/visits", gin.H{
		"client_id":  uuid.NewString(),
		"staff_id":   uuid.NewString(),
		"visit_date": "2024-01-01",
		"start_time": "09:00",
		"end_time":   "10:00",
		"recurrence": gin.H{
			"type":     "weekly",
			"weekdays": []string{"MO"},
			"end":      gin.H{"count": 3},
		},
	})

	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())

	var resp struct {
		Status string `json:"status"`
		Data   struct {
			Created  int         `json:"created"`
			Total    int         `json:"total"`
			VisitIDs []uuid.UUID `json:"visit_ids"`
		} `json:"data"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, "success", resp.Status)
	assert.Equal(t, 3, resp.Data.Created)
	require.Len(t, resp.Data.VisitIDs, 3)

	first, err := repo.Get(context.Background(), resp.Data.VisitIDs[0])
	require.NoError(t, err)
	require.NotNil(t, first.RecurrenceGroupID)

	// The group is retrievable through the group endpoint.
	w = doJSON(t, r, http.MethodGet, "/api/v1/recurrence-groups/"+first.RecurrenceGroupID.String(), nil)
	require.Equal(t, http.StatusOK, w.Code)
	var groupResp struct {
		Data []json.RawMessage `json:"data"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &groupResp))
	assert.Len(t, groupResp.Data, 3)
}

func TestCreateVisitRejectsBadPayload(t *testing.T) {
	r := setupRouter(newMemVisitRepo(), uuid.New(), uuid.New())

	w := doJSON(t, r, http.MethodPost, "/api/v1/visits", gin.H{
		"client_id":  "not-a-uuid",
		"staff_id":   uuid.NewString(),
		"visit_date": "2024-01-01",
		"start_time": "09:00",
		"end_time":   "10:00",
	})

	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestGetVisitNotFound(t *testing.T) {
	r := setupRouter(newMemVisitRepo(), uuid.New(), uuid.New())

	w := doJSON(t, r, http.MethodGet, "/api/v1/visits/"+uuid.NewString(), nil)

	require.Equal(t, http.StatusNotFound, w.Code)

	// The error middleware renders the body and carries the request id.
	var resp struct {
		Code      int    `json:"code"`
		Message   string `json:"message"`
		RequestID string `json:"request_id"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, http.StatusNotFound, resp.Code)
	assert.Contains(t, resp.Message, "not found")
	assert.NotEmpty(t, resp.RequestID)
}

func TestGetVisitRejectsMalformedID(t *testing.T) {
	r := setupRouter(newMemVisitRepo(), uuid.New(), uuid.New())

	w := doJSON(t, r, http.MethodGet, "/api/v1/visits/not-a-uuid", nil)

	require.Equal(t, http.StatusBadRequest, w.Code)
	assert.Contains(t, w.Body.String(), "invalid visit ID")
}

func TestScopedEditEndpoint(t *testing.T) {
	repo := newMemVisitRepo()
	facilityID := uuid.New()
	r := setupRouter(repo, uuid.New(), facilityID)

	groupID := uuid.New()
	rule := "FREQ=DAILY;COUNT=3"
	var ids []uuid.UUID
	for i := 0; i < 3; i++ {
		id, err := repo.Create(context.Background(), &model.VisitDraft{
			FacilityID:        facilityID,
			ClientID:          uuid.New(),
			StaffID:           uuid.New(),
			VisitDate:         time.Date(2024, 1, 1+i, 0, 0, 0, 0, time.UTC),
			StartTime:         "09:00",
			EndTime:           "10:00",
			RecurrenceRule:    &rule,
			RecurrenceGroupID: &groupID,
		})
		require.NoError(t, err)
		ids = append(ids, id)
	}

	w := doJSON(t, r, http.MethodPut, fmt.Sprintf("/api/v1/visits/%s/scoped", ids[1]), gin.H{
		"scope":   "this_and_future",
		"changes": gin.H{"notes": "revised plan"},
	})

	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	first, _ := repo.Get(context.Background(), ids[0])
	second, _ := repo.Get(context.Background(), ids[1])
	third, _ := repo.Get(context.Background(), ids[2])
	assert.Empty(t, first.Notes)
	assert.Equal(t, "revised plan", second.Notes)
	assert.Equal(t, "revised plan", third.Notes)
}

func TestScopedDeleteEndpoint(t *testing.T) {
	repo := newMemVisitRepo()
	facilityID := uuid.New()
	r := setupRouter(repo, uuid.New(), facilityID)

	groupID := uuid.New()
	rule := "FREQ=DAILY;COUNT=2"
	var ids []uuid.UUID
	for i := 0; i < 2; i++ {
		id, err := repo.Create(context.Background(), &model.VisitDraft{
			FacilityID:        facilityID,
			ClientID:          uuid.New(),
			StaffID:           uuid.New(),
			VisitDate:         time.Date(2024, 1, 1+i, 0, 0, 0, 0, time.UTC),
			StartTime:         "09:00",
			EndTime:           "10:00",
			RecurrenceRule:    &rule,
			RecurrenceGroupID: &groupID,
		})
		require.NoError(t, err)
		ids = append(ids, id)
	}

	w := doJSON(t, r, http.MethodDelete, fmt.Sprintf("/api/v1/visits/%s?scope=all", ids[0]), nil)

	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	remaining, err := repo.ListByRecurrenceGroup(context.Background(), groupID)
	require.NoError(t, err)
	assert.Empty(t, remaining)
}
