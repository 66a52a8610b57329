package postgres

import (
	"github.com/jmoiron/sqlx"

	"github.com/careloop/visitcare-api/internal/repository"
)

type visitRepository struct {
	db *sqlx.DB
}

type clientRepository struct {
	db *sqlx.DB
}

type staffRepository struct {
	db *sqlx.DB
}

type serviceTypeRepository struct {
	db *sqlx.DB
}

type visitRecordRepository struct {
	db *sqlx.DB
}

func NewVisitRepository(db *sqlx.DB) repository.VisitRepository {
	return &visitRepository{db: db}
}

func NewClientRepository(db *sqlx.DB) repository.ClientRepository {
	return &clientRepository{db: db}
}

func NewStaffRepository(db *sqlx.DB) repository.StaffRepository {
	return &staffRepository{db: db}
}

func NewServiceTypeRepository(db *sqlx.DB) repository.ServiceTypeRepository {
	return &serviceTypeRepository{db: db}
}

func NewVisitRecordRepository(db *sqlx.DB) repository.VisitRecordRepository {
	return &visitRecordRepository{db: db}
}
