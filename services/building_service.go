package services

import (
	"context"
	"errors"
	"fmt"
	"math"
	"strings"

	"github.com/Dosada05/sports-registry/models"
	"github.com/Dosada05/sports-registry/queue"
	"github.com/Dosada05/sports-registry/realtime"
	"github.com/Dosada05/sports-registry/repositories"
)

// Границы значений, как у полей ввода: вместимость до 9999.
const (
	maxBuildingPlaces = 9999
	minPlacesFilter   = 1
)

var (
	ErrBuildingInvalidPlaces       = errors.New("building places must be between 0 and 9999")
	ErrBuildingInvalidArea         = errors.New("building area must be a non-negative number")
	ErrBuildingInvalidFilter       = errors.New("minimum places filter must be between 1 and 9999")
	ErrBuildingOrganizationInvalid = errors.New("building organization does not exist")
)

type BuildingService interface {
	CreateBuilding(ctx context.Context, input BuildingInput, actorID int) (*models.Building, error)
	GetBuilding(ctx context.Context, id int) (*models.Building, error)
	ListBuildings(ctx context.Context, filter models.BuildingFilter) ([]models.Building, error)
	ListBuildingTypes(ctx context.Context) ([]string, error)
	UpdateBuilding(ctx context.Context, id int, input BuildingInput, actorID int) (*models.Building, error)
	DeleteBuilding(ctx context.Context, id int, actorID int) error
}

type BuildingInput struct {
	OrganizationID int     `json:"organization_id"`
	Name           string  `json:"name"`
	Address        *string `json:"address"`
	Type           string  `json:"building_type"`
	Places         int     `json:"places"`
	Area           float64 `json:"area"`
}

type buildingService struct {
	buildingRepo repositories.BuildingRepository
	notifier     *Notifier
}

func NewBuildingService(buildingRepo repositories.BuildingRepository, notifier *Notifier) BuildingService {
	return &buildingService{buildingRepo: buildingRepo, notifier: notifier}
}

func (input BuildingInput) toModel(id int) (*models.Building, error) {
	b := &models.Building{
		ID:             id,
		OrganizationID: input.OrganizationID,
		Name:           strings.TrimSpace(input.Name),
		Address:        trimOptional(input.Address),
		Type:           strings.TrimSpace(input.Type),
		Places:         input.Places,
		Area:           input.Area,
	}
	if b.Name == "" {
		return nil, ErrNameRequired
	}
	if b.Type == "" {
		return nil, fmt.Errorf("%w: building type is required", ErrValidationFailed)
	}
	if b.OrganizationID <= 0 {
		return nil, ErrBuildingOrganizationInvalid
	}
	if b.Places < 0 || b.Places > maxBuildingPlaces {
		return nil, ErrBuildingInvalidPlaces
	}
	if b.Area < 0 || math.IsNaN(b.Area) || math.IsInf(b.Area, 0) {
		return nil, ErrBuildingInvalidArea
	}
	return b, nil
}

func mapBuildingError(err error) error {
	switch {
	case errors.Is(err, repositories.ErrBuildingNotFound):
		return ErrBuildingNotFound
	case errors.Is(err, repositories.ErrBuildingOrganizationInvalid):
		return ErrBuildingOrganizationInvalid
	case errors.Is(err, repositories.ErrBuildingInvalidValue):
		return fmt.Errorf("%w: places or area out of range", ErrValidationFailed)
	}
	return nil
}

func (s *buildingService) CreateBuilding(ctx context.Context, input BuildingInput, actorID int) (*models.Building, error) {
	b, err := input.toModel(0)
	if err != nil {
		return nil, err
	}
	if err := s.buildingRepo.Create(ctx, b); err != nil {
		if mapped := mapBuildingError(err); mapped != nil {
			return nil, mapped
		}
		return nil, fmt.Errorf("failed to create building: %w", err)
	}

	s.changed(ctx, queue.ActionCreated, b.ID, b.Name, actorID)
	return b, nil
}

func (s *buildingService) GetBuilding(ctx context.Context, id int) (*models.Building, error) {
	b, err := s.buildingRepo.GetByID(ctx, id)
	if err != nil {
		if mapped := mapBuildingError(err); mapped != nil {
			return nil, mapped
		}
		return nil, fmt.Errorf("failed to get building %d: %w", id, err)
	}
	return b, nil
}

// ListBuildings применяет фильтры по типу и минимальной вместимости (через AND).
func (s *buildingService) ListBuildings(ctx context.Context, filter models.BuildingFilter) ([]models.Building, error) {
	if filter.Type != nil {
		t := strings.TrimSpace(*filter.Type)
		if t == "" {
			filter.Type = nil
		} else {
			filter.Type = &t
		}
	}
	if filter.MinPlaces != nil && (*filter.MinPlaces < minPlacesFilter || *filter.MinPlaces > maxBuildingPlaces) {
		return nil, ErrBuildingInvalidFilter
	}

	list, err := s.buildingRepo.List(ctx, filter)
	if err != nil {
		return nil, fmt.Errorf("failed to list buildings: %w", err)
	}
	return list, nil
}

func (s *buildingService) ListBuildingTypes(ctx context.Context) ([]string, error) {
	types, err := s.buildingRepo.ListTypes(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list building types: %w", err)
	}
	return types, nil
}

func (s *buildingService) UpdateBuilding(ctx context.Context, id int, input BuildingInput, actorID int) (*models.Building, error) {
	b, err := input.toModel(id)
	if err != nil {
		return nil, err
	}
	if err := s.buildingRepo.Update(ctx, b); err != nil {
		if mapped := mapBuildingError(err); mapped != nil {
			return nil, mapped
		}
		return nil, fmt.Errorf("failed to update building %d: %w", id, err)
	}

	s.changed(ctx, queue.ActionUpdated, b.ID, b.Name, actorID)
	return b, nil
}

func (s *buildingService) DeleteBuilding(ctx context.Context, id int, actorID int) error {
	b, err := s.GetBuilding(ctx, id)
	if err != nil {
		return err
	}
	if err := s.buildingRepo.Delete(ctx, id); err != nil {
		if mapped := mapBuildingError(err); mapped != nil {
			return mapped
		}
		return fmt.Errorf("failed to delete building %d: %w", id, err)
	}

	s.changed(ctx, queue.ActionDeleted, b.ID, b.Name, actorID)
	return nil
}

func (s *buildingService) changed(ctx context.Context, action string, id int, name string, actorID int) {
	s.notifier.Changed(ctx, realtime.RoomBuildings, MsgBuildingsChanged, queue.EntityEvent{
		Entity: "building", Action: action, ID: id, Name: name, ActorID: actorID,
	})
}
