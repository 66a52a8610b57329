package report

import (
	"context"
	"fmt"
	"io"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"gopkg.in/gomail.v2"

	"github.com/careloop/visitcare-api/internal/model"
	"github.com/careloop/visitcare-api/internal/repository"
)

// TextGenerator produces the narrative summary for a monthly report. The
// production implementation may call an external text service; Canned is the
// built-in fallback used when none is configured or the call fails.
type TextGenerator interface {
	Summarize(ctx context.Context, client *model.Client, records []*model.VisitRecord) (string, error)
}

// Canned writes a fixed-form summary from the record counts alone.
type Canned struct{}

func (Canned) Summarize(_ context.Context, client *model.Client, records []*model.VisitRecord) (string, error) {
	if len(records) == 0 {
		return fmt.Sprintf("No visits were recorded for %s this month.", client.Name), nil
	}
	return fmt.Sprintf("%s received %d recorded visits this month. Care was provided according to the visit plan; see the individual entries below for details.",
		client.Name, len(records)), nil
}

type SMTPConfig struct {
	Host     string
	Port     int
	Username string
	Password string
	From     string
}

type ReportService interface {
	MonthlyReport(ctx context.Context, clientID uuid.UUID, month time.Time) ([]byte, error)
	EmailMonthlyReport(ctx context.Context, clientID uuid.UUID, month time.Time, to string) error
}

// Service builds the monthly care report for a client: the month's visits and
// records rendered as a PDF, fronted by a generated narrative summary.
type Service struct {
	clients   repository.ClientRepository
	visits    repository.VisitRepository
	records   repository.VisitRecordRepository
	generator TextGenerator
	smtp      SMTPConfig
	logger    *zerolog.Logger
}

func NewService(
	clients repository.ClientRepository,
	visits repository.VisitRepository,
	records repository.VisitRecordRepository,
	generator TextGenerator,
	smtp SMTPConfig,
	logger *zerolog.Logger,
) *Service {
	if generator == nil {
		generator = Canned{}
	}
	return &Service{
		clients:   clients,
		visits:    visits,
		records:   records,
		generator: generator,
		smtp:      smtp,
		logger:    logger,
	}
}

// MonthlyReport renders the report PDF for the month containing the given
// date.
func (s *Service) MonthlyReport(ctx context.Context, clientID uuid.UUID, month time.Time) ([]byte, error) {
	client, err := s.clients.Get(ctx, clientID)
	if err != nil {
		return nil, fmt.Errorf("failed to get client: %w", err)
	}

	first := time.Date(month.Year(), month.Month(), 1, 0, 0, 0, 0, time.UTC)
	last := first.AddDate(0, 1, -1)

	visits, err := s.visits.ListByDateRange(ctx, client.FacilityID, first, last)
	if err != nil {
		return nil, fmt.Errorf("failed to list visits: %w", err)
	}
	var clientVisits []*model.Visit
	for _, v := range visits {
		if v.ClientID == clientID {
			clientVisits = append(clientVisits, v)
		}
	}

	records, err := s.records.ListByClientMonth(ctx, clientID, first)
	if err != nil {
		return nil, fmt.Errorf("failed to list visit records: %w", err)
	}

	summary, err := s.generator.Summarize(ctx, client, records)
	if err != nil {
		s.logger.Warn().Err(err).Msg("summary generation failed, using canned text")
		summary, _ = Canned{}.Summarize(ctx, client, records)
	}

	pdf, err := renderMonthlyPDF(client, first, clientVisits, records, summary)
	if err != nil {
		return nil, fmt.Errorf("failed to render report: %w", err)
	}
	return pdf, nil
}

// EmailMonthlyReport renders the report and mails it as an attachment.
func (s *Service) EmailMonthlyReport(ctx context.Context, clientID uuid.UUID, month time.Time, to string) error {
	pdf, err := s.MonthlyReport(ctx, clientID, month)
	if err != nil {
		return err
	}

	filename := fmt.Sprintf("care-report-%s.pdf", month.Format("2006-01"))
	msg := gomail.NewMessage()
	msg.SetHeader("From", s.smtp.From)
	msg.SetHeader("To", to)
	msg.SetHeader("Subject", fmt.Sprintf("Monthly care report %s", month.Format("January 2006")))
	msg.SetBody("text/plain", "The monthly care report is attached.")
	msg.Attach(filename, gomail.SetCopyFunc(func(w io.Writer) error {
		_, werr := w.Write(pdf)
		return werr
	}))

	dialer := gomail.NewDialer(s.smtp.Host, s.smtp.Port, s.smtp.Username, s.smtp.Password)
	if err := dialer.DialAndSend(msg); err != nil {
		return fmt.Errorf("failed to send report email: %w", err)
	}

	s.logger.Info().
		Str("client_id", clientID.String()).
		Str("to", to).
		Msg("monthly report emailed")
	return nil
}
