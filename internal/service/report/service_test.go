package report

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/careloop/visitcare-api/internal/model"
	"github.com/careloop/visitcare-api/internal/repository"
)

type stubClientRepo struct{ client *model.Client }

func (s *stubClientRepo) Create(ctx context.Context, c *model.Client) error { return nil }
func (s *stubClientRepo) Get(ctx context.Context, id uuid.UUID) (*model.Client, error) {
	if s.client == nil || s.client.ID != id {
		return nil, repository.ErrNotFound
	}
	return s.client, nil
}
func (s *stubClientRepo) Update(ctx context.Context, c *model.Client) error { return nil }
func (s *stubClientRepo) Delete(ctx context.Context, id uuid.UUID) error    { return nil }
func (s *stubClientRepo) List(ctx context.Context, f *model.ClientFilters) ([]*model.Client, error) {
	return nil, nil
}

type stubVisitRepo struct{ visits []*model.Visit }

func (s *stubVisitRepo) Create(ctx context.Context, d *model.VisitDraft) (uuid.UUID, error) {
	return uuid.Nil, nil
}
func (s *stubVisitRepo) Get(ctx context.Context, id uuid.UUID) (*model.Visit, error) {
	return nil, repository.ErrNotFound
}
func (s *stubVisitRepo) Update(ctx context.Context, id uuid.UUID, u *model.VisitUpdate) error {
	return nil
}
func (s *stubVisitRepo) Delete(ctx context.Context, id uuid.UUID) error { return nil }
func (s *stubVisitRepo) ListByRecurrenceGroup(ctx context.Context, g uuid.UUID) ([]*model.Visit, error) {
	return nil, nil
}
func (s *stubVisitRepo) ListByDateRange(ctx context.Context, f uuid.UUID, start, end time.Time) ([]*model.Visit, error) {
	return s.visits, nil
}

type stubRecordRepo struct{ records []*model.VisitRecord }

func (s *stubRecordRepo) Create(ctx context.Context, r *model.VisitRecord) error { return nil }
func (s *stubRecordRepo) Get(ctx context.Context, id uuid.UUID) (*model.VisitRecord, error) {
	return nil, repository.ErrNotFound
}
func (s *stubRecordRepo) ListByClientMonth(ctx context.Context, c uuid.UUID, m time.Time) ([]*model.VisitRecord, error) {
	return s.records, nil
}

func TestCannedSummary(t *testing.T) {
	client := &model.Client{Name: "Yamada"}

	text, err := Canned{}.Summarize(context.Background(), client, nil)
	require.NoError(t, err)
	assert.Contains(t, text, "Yamada")
	assert.Contains(t, text, "No visits")

	text, err = Canned{}.Summarize(context.Background(), client, []*model.VisitRecord{{}, {}, {}})
	require.NoError(t, err)
	assert.Contains(t, text, "3 recorded visits")
}

func TestMonthlyReportRendersPDF(t *testing.T) {
	clientID := uuid.New()
	facilityID := uuid.New()
	logger := zerolog.Nop()

	svc := NewService(
		&stubClientRepo{client: &model.Client{
			Base: model.Base{ID: clientID}, FacilityID: facilityID, Name: "Yamada",
		}},
		&stubVisitRepo{visits: []*model.Visit{{
			Base: model.Base{ID: uuid.New()}, ClientID: clientID, FacilityID: facilityID,
			VisitDate: time.Date(2024, 3, 5, 0, 0, 0, 0, time.UTC),
			StartTime: "09:00", EndTime: "10:00",
			StaffName: "Tanaka", Status: model.VisitStatusCompleted,
		}}},
		&stubRecordRepo{records: []*model.VisitRecord{{
			Base: model.Base{ID: uuid.New()}, VisitID: uuid.New(), ClientID: clientID,
			Body: "Assisted with bathing and meal preparation.", RecordedAt: time.Now(),
		}}},
		nil, // fall back to the canned generator
		SMTPConfig{},
		&logger,
	)

	pdf, err := svc.MonthlyReport(context.Background(), clientID, time.Date(2024, 3, 15, 0, 0, 0, 0, time.UTC))

	require.NoError(t, err)
	assert.True(t, len(pdf) > 500, "expected a rendered document")
	assert.Equal(t, "%PDF", string(pdf[:4]))
}

func TestMonthlyReportClientNotFound(t *testing.T) {
	logger := zerolog.Nop()
	svc := NewService(&stubClientRepo{}, &stubVisitRepo{}, &stubRecordRepo{}, nil, SMTPConfig{}, &logger)

	_, err := svc.MonthlyReport(context.Background(), uuid.New(), time.Now())

	assert.ErrorIs(t, err, repository.ErrNotFound)
}
