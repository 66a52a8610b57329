package visitrecord

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/careloop/visitcare-api/internal/model"
	"github.com/careloop/visitcare-api/internal/repository"
)

type VisitRecordService interface {
	CreateRecord(ctx context.Context, record *model.VisitRecord) error
	GetRecord(ctx context.Context, id uuid.UUID) (*model.VisitRecord, error)
	ListByClientMonth(ctx context.Context, clientID uuid.UUID, month time.Time) ([]*model.VisitRecord, error)
}

// Service stores the care logs staff write after a visit. Filing a record
// also moves the visit itself to completed.
type Service struct {
	repo      repository.VisitRecordRepository
	visitRepo repository.VisitRepository
	logger    *zerolog.Logger
}

func NewService(repo repository.VisitRecordRepository, visitRepo repository.VisitRepository, logger *zerolog.Logger) *Service {
	return &Service{
		repo:      repo,
		visitRepo: visitRepo,
		logger:    logger,
	}
}

func (s *Service) CreateRecord(ctx context.Context, record *model.VisitRecord) error {
	if strings.TrimSpace(record.Body) == "" {
		return fmt.Errorf("record body is required")
	}

	visit, err := s.visitRepo.Get(ctx, record.VisitID)
	if err != nil {
		return fmt.Errorf("failed to get visit: %w", err)
	}

	record.ID = uuid.New()
	record.ClientID = visit.ClientID
	record.CreatedAt = time.Now()
	record.UpdatedAt = time.Now()
	if record.RecordedAt.IsZero() {
		record.RecordedAt = time.Now()
	}

	if err := s.repo.Create(ctx, record); err != nil {
		return fmt.Errorf("failed to create visit record: %w", err)
	}

	// The record is the source of truth; a failed status flip is logged and
	// left for reconciliation rather than failing the whole request.
	status := model.VisitStatusCompleted
	if err := s.visitRepo.Update(ctx, visit.ID, &model.VisitUpdate{Status: &status}); err != nil {
		s.logger.Warn().Err(err).
			Str("visit_id", visit.ID.String()).
			Msg("failed to mark visit completed")
	}
	return nil
}

func (s *Service) GetRecord(ctx context.Context, id uuid.UUID) (*model.VisitRecord, error) {
	record, err := s.repo.Get(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("failed to get visit record: %w", err)
	}
	return record, nil
}

// ListByClientMonth returns the records for one client in the calendar month
// containing the given date, ordered by recording time.
func (s *Service) ListByClientMonth(ctx context.Context, clientID uuid.UUID, month time.Time) ([]*model.VisitRecord, error) {
	records, err := s.repo.ListByClientMonth(ctx, clientID, month)
	if err != nil {
		return nil, fmt.Errorf("failed to list visit records: %w", err)
	}
	return records, nil
}
