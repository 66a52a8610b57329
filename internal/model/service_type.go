package model

import "github.com/google/uuid"

// ServiceType categorizes a visit (physical care, domestic help, nursing...).
// The category drives calendar event colors.
type ServiceType struct {
	Base
	FacilityID uuid.UUID `db:"facility_id" json:"facility_id"`
	Name       string    `db:"name" json:"name"`
	Category   string    `db:"category" json:"category"`
}
