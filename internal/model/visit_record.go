package model

import (
	"time"

	"github.com/google/uuid"
)

// VisitRecord is the log a staff member writes after completing a visit.
type VisitRecord struct {
	Base
	VisitID    uuid.UUID `db:"visit_id" json:"visit_id"`
	ClientID   uuid.UUID `db:"client_id" json:"client_id"`
	Body       string    `db:"body" json:"body"`
	VitalsNote string    `db:"vitals_note" json:"vitals_note,omitempty"`
	RecordedBy uuid.UUID `db:"recorded_by" json:"recorded_by"`
	RecordedAt time.Time `db:"recorded_at" json:"recorded_at"`
}

type CreateVisitRecordRequest struct {
	VisitID    string `json:"visit_id" binding:"required,uuid"`
	Body       string `json:"body" binding:"required,max=5000"`
	VitalsNote string `json:"vitals_note" binding:"max=1000"`
}
