package model

import (
	"github.com/google/uuid"
)

type ClientStatus string

const (
	ClientStatusActive   ClientStatus = "active"
	ClientStatusInactive ClientStatus = "inactive"
)

// Client is a person receiving home visits.
type Client struct {
	Base
	FacilityID uuid.UUID    `db:"facility_id" json:"facility_id"`
	Name       string       `db:"name" json:"name"`
	NameKana   string       `db:"name_kana" json:"name_kana,omitempty"`
	Address    string       `db:"address" json:"address,omitempty"`
	Phone      string       `db:"phone" json:"phone,omitempty"`
	CareLevel  string       `db:"care_level" json:"care_level,omitempty"`
	Status     ClientStatus `db:"status" json:"status"`
}

type CreateClientRequest struct {
	Name      string `json:"name" binding:"required,max=200"`
	NameKana  string `json:"name_kana" binding:"max=200"`
	Address   string `json:"address" binding:"max=500"`
	Phone     string `json:"phone" binding:"max=30"`
	CareLevel string `json:"care_level" binding:"max=50"`
}

type UpdateClientRequest struct {
	Name      *string       `json:"name" binding:"omitempty,max=200"`
	NameKana  *string       `json:"name_kana" binding:"omitempty,max=200"`
	Address   *string       `json:"address" binding:"omitempty,max=500"`
	Phone     *string       `json:"phone" binding:"omitempty,max=30"`
	CareLevel *string       `json:"care_level" binding:"omitempty,max=50"`
	Status    *ClientStatus `json:"status" binding:"omitempty,oneof=active inactive"`
}

type ClientFilters struct {
	FacilityID uuid.UUID
	Status     ClientStatus
	SearchTerm string
}
