package services

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/Dosada05/sports-registry/models"
	"github.com/Dosada05/sports-registry/queue"
	"github.com/Dosada05/sports-registry/realtime"
	"github.com/Dosada05/sports-registry/repositories"
)

type OrganizationService interface {
	CreateOrganization(ctx context.Context, input OrganizationInput, actorID int) (*models.Organization, error)
	GetOrganization(ctx context.Context, id int) (*models.Organization, error)
	ListOrganizations(ctx context.Context) ([]models.Organization, error)
	UpdateOrganization(ctx context.Context, id int, input OrganizationInput, actorID int) (*models.Organization, error)
	DeleteOrganization(ctx context.Context, id int, actorID int) error
}

type OrganizationInput struct {
	Name    string  `json:"name"`
	Address *string `json:"address"`
}

type organizationService struct {
	orgRepo  repositories.OrganizationRepository
	notifier *Notifier
}

func NewOrganizationService(orgRepo repositories.OrganizationRepository, notifier *Notifier) OrganizationService {
	return &organizationService{orgRepo: orgRepo, notifier: notifier}
}

func mapOrganizationError(err error) error {
	switch {
	case errors.Is(err, repositories.ErrOrganizationNotFound):
		return ErrOrganizationNotFound
	case errors.Is(err, repositories.ErrOrganizationNameConflict):
		return ErrOrganizationConflict
	case errors.Is(err, repositories.ErrOrganizationInUse):
		return ErrOrganizationInUse
	}
	return nil
}

func (s *organizationService) CreateOrganization(ctx context.Context, input OrganizationInput, actorID int) (*models.Organization, error) {
	org := &models.Organization{
		Name:    strings.TrimSpace(input.Name),
		Address: trimOptional(input.Address),
	}
	if org.Name == "" {
		return nil, ErrNameRequired
	}

	if err := s.orgRepo.Create(ctx, org); err != nil {
		if mapped := mapOrganizationError(err); mapped != nil {
			return nil, mapped
		}
		return nil, fmt.Errorf("failed to create organization: %w", err)
	}

	s.changed(ctx, queue.ActionCreated, org.ID, org.Name, actorID)
	return org, nil
}

func (s *organizationService) GetOrganization(ctx context.Context, id int) (*models.Organization, error) {
	org, err := s.orgRepo.GetByID(ctx, id)
	if err != nil {
		if mapped := mapOrganizationError(err); mapped != nil {
			return nil, mapped
		}
		return nil, fmt.Errorf("failed to get organization %d: %w", id, err)
	}
	return org, nil
}

func (s *organizationService) ListOrganizations(ctx context.Context) ([]models.Organization, error) {
	orgs, err := s.orgRepo.GetAll(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list organizations: %w", err)
	}
	return orgs, nil
}

func (s *organizationService) UpdateOrganization(ctx context.Context, id int, input OrganizationInput, actorID int) (*models.Organization, error) {
	org := &models.Organization{
		ID:      id,
		Name:    strings.TrimSpace(input.Name),
		Address: trimOptional(input.Address),
	}
	if org.Name == "" {
		return nil, ErrNameRequired
	}

	if err := s.orgRepo.Update(ctx, org); err != nil {
		if mapped := mapOrganizationError(err); mapped != nil {
			return nil, mapped
		}
		return nil, fmt.Errorf("failed to update organization %d: %w", id, err)
	}

	s.changed(ctx, queue.ActionUpdated, org.ID, org.Name, actorID)
	return org, nil
}

func (s *organizationService) DeleteOrganization(ctx context.Context, id int, actorID int) error {
	org, err := s.GetOrganization(ctx, id)
	if err != nil {
		return err
	}
	if err := s.orgRepo.Delete(ctx, id); err != nil {
		if mapped := mapOrganizationError(err); mapped != nil {
			return mapped
		}
		return fmt.Errorf("failed to delete organization %d: %w", id, err)
	}

	s.changed(ctx, queue.ActionDeleted, org.ID, org.Name, actorID)
	return nil
}

func (s *organizationService) changed(ctx context.Context, action string, id int, name string, actorID int) {
	s.notifier.Changed(ctx, realtime.RoomOrganizations, MsgOrganizationsChanged, queue.EntityEvent{
		Entity: "organization", Action: action, ID: id, Name: name, ActorID: actorID,
	})
}
