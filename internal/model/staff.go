package model

import "github.com/google/uuid"

// Staff is a care worker who performs visits. Account management lives in the
// identity provider; this subsystem only needs ids and display names.
type Staff struct {
	Base
	FacilityID uuid.UUID `db:"facility_id" json:"facility_id"`
	Name       string    `db:"name" json:"name"`
	Email      string    `db:"email" json:"email,omitempty"`
	Role       string    `db:"role" json:"role,omitempty"`
	Active     bool      `db:"active" json:"active"`
}
