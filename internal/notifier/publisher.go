package notifier

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/careloop/visitcare-api/internal/model"
	"github.com/careloop/visitcare-api/pkg/messaging"
)

// Publisher is the server-side counterpart of ScheduleNotifier: it publishes
// change events on behalf of whichever staff member performed the mutation,
// so connected clients of the same facility know to refetch.
type Publisher struct {
	broker messaging.Broker
	logger *zerolog.Logger
}

func NewPublisher(broker messaging.Broker, logger *zerolog.Logger) *Publisher {
	return &Publisher{broker: broker, logger: logger}
}

// Notify is best-effort: the mutation already committed, so failures are
// logged and never escalated.
func (p *Publisher) Notify(ctx context.Context, facilityID, actingStaffID, visitID uuid.UUID, action string) {
	change := model.ScheduleChange{
		EventID:       uuid.NewString(),
		VisitID:       visitID.String(),
		Action:        action,
		ActingStaffID: actingStaffID.String(),
		Timestamp:     time.Now(),
	}

	if err := p.broker.Publish(ctx, channelFor(facilityID), change); err != nil {
		p.logger.Warn().
			Err(err).
			Str("visit_id", change.VisitID).
			Str("action", action).
			Msg("failed to publish schedule change")
	}
}
