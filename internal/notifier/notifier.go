// Package notifier announces schedule changes to other connected clients of
// the same facility. Events carry no payload beyond which visit changed;
// receivers refetch instead of trusting cached state.
package notifier

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/careloop/visitcare-api/internal/model"
	"github.com/careloop/visitcare-api/pkg/messaging"
)

// ScheduleNotifier publishes and consumes schedule-change events on a
// per-facility channel. Publishing is best-effort: the originating mutation
// has already committed, so a failed publish is logged and never retried or
// surfaced to the user.
type ScheduleNotifier struct {
	broker     messaging.Broker
	facilityID uuid.UUID
	staffID    uuid.UUID
	logger     *zerolog.Logger

	// lastEventID is a single-slot dedup against redelivery of the most
	// recent event. Only the subscribe goroutine touches it.
	lastEventID string
}

func NewScheduleNotifier(broker messaging.Broker, facilityID, staffID uuid.UUID, logger *zerolog.Logger) *ScheduleNotifier {
	return &ScheduleNotifier{
		broker:     broker,
		facilityID: facilityID,
		staffID:    staffID,
		logger:     logger,
	}
}

func channelFor(facilityID uuid.UUID) string {
	return fmt.Sprintf("facility:%s:schedule", facilityID)
}

// Notify publishes a change event for a visit. action is one of
// model.ChangeActionCreate/Update/Delete.
func (n *ScheduleNotifier) Notify(ctx context.Context, visitID uuid.UUID, action string) {
	change := model.ScheduleChange{
		EventID:       uuid.NewString(),
		VisitID:       visitID.String(),
		Action:        action,
		ActingStaffID: n.staffID.String(),
		Timestamp:     time.Now(),
	}

	if err := n.broker.Publish(ctx, channelFor(n.facilityID), change); err != nil {
		n.logger.Warn().
			Err(err).
			Str("visit_id", change.VisitID).
			Str("action", action).
			Msg("failed to publish schedule change")
	}
}

// Subscribe listens on the facility channel and invokes onForeignChange for
// every event another staff member produced. Self-originated events and
// redeliveries of the last-seen event id are dropped. The listener stops when
// ctx is cancelled; it does not abort in-flight mutations.
func (n *ScheduleNotifier) Subscribe(ctx context.Context, onForeignChange func(model.ScheduleChange)) error {
	msgs, err := n.broker.Subscribe(ctx, channelFor(n.facilityID))
	if err != nil {
		return fmt.Errorf("failed to subscribe to schedule channel: %w", err)
	}

	go func() {
		for {
			select {
			case <-ctx.Done():
				return
			case payload, ok := <-msgs:
				if !ok {
					return
				}
				n.handle(payload, onForeignChange)
			}
		}
	}()

	return nil
}

func (n *ScheduleNotifier) handle(payload []byte, onForeignChange func(model.ScheduleChange)) {
	var change model.ScheduleChange
	if err := json.Unmarshal(payload, &change); err != nil {
		n.logger.Warn().Err(err).Msg("dropping malformed schedule change")
		return
	}

	if change.ActingStaffID == n.staffID.String() {
		return
	}
	if change.EventID != "" && change.EventID == n.lastEventID {
		return
	}
	n.lastEventID = change.EventID

	onForeignChange(change)
}
