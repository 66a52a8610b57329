package client

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/careloop/visitcare-api/internal/model"
	"github.com/careloop/visitcare-api/internal/repository"
)

type ClientService interface {
	CreateClient(ctx context.Context, client *model.Client) error
	GetClient(ctx context.Context, id uuid.UUID) (*model.Client, error)
	UpdateClient(ctx context.Context, client *model.Client) error
	DeleteClient(ctx context.Context, id uuid.UUID) error
	ListClients(ctx context.Context, filters *model.ClientFilters) ([]*model.Client, error)
	ListStaff(ctx context.Context, facilityID uuid.UUID) ([]*model.Staff, error)
	ListServiceTypes(ctx context.Context, facilityID uuid.UUID) ([]*model.ServiceType, error)
}

// Service manages the facility roster: clients, staff and service types. Staff
// and service types are read-only here; their lifecycle belongs to facility
// administration.
type Service struct {
	repo      repository.ClientRepository
	staffRepo repository.StaffRepository
	typeRepo  repository.ServiceTypeRepository
}

func NewService(repo repository.ClientRepository, staffRepo repository.StaffRepository, typeRepo repository.ServiceTypeRepository) *Service {
	return &Service{
		repo:      repo,
		staffRepo: staffRepo,
		typeRepo:  typeRepo,
	}
}

func (s *Service) CreateClient(ctx context.Context, client *model.Client) error {
	if err := s.validateClient(client); err != nil {
		return fmt.Errorf("invalid client data: %w", err)
	}

	client.ID = uuid.New()
	client.CreatedAt = time.Now()
	client.UpdatedAt = time.Now()
	client.Status = model.ClientStatusActive

	if err := s.repo.Create(ctx, client); err != nil {
		return fmt.Errorf("failed to create client: %w", err)
	}
	return nil
}

func (s *Service) GetClient(ctx context.Context, id uuid.UUID) (*model.Client, error) {
	client, err := s.repo.Get(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("failed to get client: %w", err)
	}
	return client, nil
}

func (s *Service) UpdateClient(ctx context.Context, client *model.Client) error {
	if err := s.validateClient(client); err != nil {
		return fmt.Errorf("invalid client data: %w", err)
	}

	client.UpdatedAt = time.Now()

	if err := s.repo.Update(ctx, client); err != nil {
		return fmt.Errorf("failed to update client: %w", err)
	}
	return nil
}

func (s *Service) DeleteClient(ctx context.Context, id uuid.UUID) error {
	if err := s.repo.Delete(ctx, id); err != nil {
		return fmt.Errorf("failed to delete client: %w", err)
	}
	return nil
}

func (s *Service) ListClients(ctx context.Context, filters *model.ClientFilters) ([]*model.Client, error) {
	clients, err := s.repo.List(ctx, filters)
	if err != nil {
		return nil, fmt.Errorf("failed to list clients: %w", err)
	}
	return clients, nil
}

func (s *Service) ListStaff(ctx context.Context, facilityID uuid.UUID) ([]*model.Staff, error) {
	staff, err := s.staffRepo.List(ctx, facilityID)
	if err != nil {
		return nil, fmt.Errorf("failed to list staff: %w", err)
	}
	return staff, nil
}

func (s *Service) ListServiceTypes(ctx context.Context, facilityID uuid.UUID) ([]*model.ServiceType, error) {
	types, err := s.typeRepo.List(ctx, facilityID)
	if err != nil {
		return nil, fmt.Errorf("failed to list service types: %w", err)
	}
	return types, nil
}

func (s *Service) validateClient(client *model.Client) error {
	if strings.TrimSpace(client.Name) == "" {
		return fmt.Errorf("name is required")
	}
	if client.FacilityID == uuid.Nil {
		return fmt.Errorf("facility id is required")
	}
	return nil
}
