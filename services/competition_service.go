package services

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/Dosada05/sports-registry/models"
	"github.com/Dosada05/sports-registry/queue"
	"github.com/Dosada05/sports-registry/realtime"
	"github.com/Dosada05/sports-registry/repositories"
)

var (
	ErrCompetitionDateRequired     = errors.New("competition date must be YYYY-MM-DD")
	ErrCompetitionReferenceInvalid = errors.New("competition sport or building does not exist")
	ErrParticipantNotFound         = errors.New("sportsman does not take part in this competition")
	ErrParticipantInvalid          = errors.New("participant must be an existing sportsman with a positive place")
)

type CompetitionService interface {
	CreateCompetition(ctx context.Context, input CompetitionInput, actorID int) (*models.Competition, error)
	GetCompetition(ctx context.Context, id int) (*models.Competition, error)
	ListCompetitions(ctx context.Context, sportID *int) ([]models.Competition, error)
	DeleteCompetition(ctx context.Context, id int, actorID int) error
	AddParticipant(ctx context.Context, competitionID int, input ParticipantInput, actorID int) (*models.CompetitionParticipant, error)
	RemoveParticipant(ctx context.Context, competitionID, sportsmanID int, actorID int) error
	ListParticipants(ctx context.Context, competitionID int) ([]models.CompetitionParticipant, error)
}

type CompetitionInput struct {
	Name       string `json:"name"`
	HeldOn     string `json:"held_on"` // YYYY-MM-DD
	SportID    int    `json:"sport_id"`
	BuildingID *int   `json:"building_id"`
}

type ParticipantInput struct {
	SportsmanID int  `json:"sportsman_id"`
	Place       *int `json:"place"`
}

type competitionService struct {
	competitionRepo repositories.CompetitionRepository
	personRepo      repositories.PersonRepository
	notifier        *Notifier
}

func NewCompetitionService(
	competitionRepo repositories.CompetitionRepository,
	personRepo repositories.PersonRepository,
	notifier *Notifier,
) CompetitionService {
	return &competitionService{
		competitionRepo: competitionRepo,
		personRepo:      personRepo,
		notifier:        notifier,
	}
}

func (s *competitionService) CreateCompetition(ctx context.Context, input CompetitionInput, actorID int) (*models.Competition, error) {
	c := &models.Competition{
		Name:       strings.TrimSpace(input.Name),
		SportID:    input.SportID,
		BuildingID: input.BuildingID,
	}
	if c.Name == "" {
		return nil, ErrNameRequired
	}
	heldOn, err := time.Parse(dateLayout, strings.TrimSpace(input.HeldOn))
	if err != nil {
		return nil, ErrCompetitionDateRequired
	}
	c.HeldOn = heldOn

	if err := s.competitionRepo.Create(ctx, c); err != nil {
		if errors.Is(err, repositories.ErrCompetitionReferenceInvalid) {
			return nil, ErrCompetitionReferenceInvalid
		}
		return nil, fmt.Errorf("failed to create competition: %w", err)
	}

	s.changed(ctx, queue.ActionCreated, c.ID, c.Name, actorID)
	return c, nil
}

func (s *competitionService) GetCompetition(ctx context.Context, id int) (*models.Competition, error) {
	c, err := s.competitionRepo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, repositories.ErrCompetitionNotFound) {
			return nil, ErrCompetitionNotFound
		}
		return nil, fmt.Errorf("failed to get competition %d: %w", id, err)
	}
	return c, nil
}

func (s *competitionService) ListCompetitions(ctx context.Context, sportID *int) ([]models.Competition, error) {
	list, err := s.competitionRepo.List(ctx, sportID)
	if err != nil {
		return nil, fmt.Errorf("failed to list competitions: %w", err)
	}
	return list, nil
}

func (s *competitionService) DeleteCompetition(ctx context.Context, id int, actorID int) error {
	c, err := s.GetCompetition(ctx, id)
	if err != nil {
		return err
	}
	if err := s.competitionRepo.Delete(ctx, id); err != nil {
		if errors.Is(err, repositories.ErrCompetitionNotFound) {
			return ErrCompetitionNotFound
		}
		return fmt.Errorf("failed to delete competition %d: %w", id, err)
	}

	s.changed(ctx, queue.ActionDeleted, c.ID, c.Name, actorID)
	return nil
}

func (s *competitionService) AddParticipant(ctx context.Context, competitionID int, input ParticipantInput, actorID int) (*models.CompetitionParticipant, error) {
	c, err := s.GetCompetition(ctx, competitionID)
	if err != nil {
		return nil, err
	}
	if input.Place != nil && *input.Place <= 0 {
		return nil, ErrParticipantInvalid
	}

	sportsman, err := s.personRepo.GetByID(ctx, input.SportsmanID)
	if err != nil {
		if errors.Is(err, repositories.ErrPersonNotFound) {
			return nil, ErrPersonNotFound
		}
		return nil, fmt.Errorf("failed to get sportsman %d: %w", input.SportsmanID, err)
	}
	if sportsman.IsCoach {
		return nil, ErrPersonIsCoach
	}

	p := &models.CompetitionParticipant{
		CompetitionID: competitionID,
		SportsmanID:   input.SportsmanID,
		Place:         input.Place,
		FirstName:     sportsman.FirstName,
		LastName:      sportsman.LastName,
		MiddleName:    sportsman.MiddleName,
	}
	if err := s.competitionRepo.AddParticipant(ctx, p); err != nil {
		switch {
		case errors.Is(err, repositories.ErrCompetitionParticipantExists):
			return nil, ErrParticipantExists
		case errors.Is(err, repositories.ErrCompetitionParticipantBad):
			return nil, ErrParticipantInvalid
		}
		return nil, fmt.Errorf("failed to add participant: %w", err)
	}

	s.changed(ctx, queue.ActionUpdated, c.ID, c.Name, actorID)
	return p, nil
}

func (s *competitionService) RemoveParticipant(ctx context.Context, competitionID, sportsmanID int, actorID int) error {
	c, err := s.GetCompetition(ctx, competitionID)
	if err != nil {
		return err
	}
	if err := s.competitionRepo.RemoveParticipant(ctx, competitionID, sportsmanID); err != nil {
		if errors.Is(err, repositories.ErrCompetitionParticipantAbsent) {
			return ErrParticipantNotFound
		}
		return fmt.Errorf("failed to remove participant: %w", err)
	}

	s.changed(ctx, queue.ActionUpdated, c.ID, c.Name, actorID)
	return nil
}

func (s *competitionService) ListParticipants(ctx context.Context, competitionID int) ([]models.CompetitionParticipant, error) {
	if _, err := s.GetCompetition(ctx, competitionID); err != nil {
		return nil, err
	}
	list, err := s.competitionRepo.ListParticipants(ctx, competitionID)
	if err != nil {
		return nil, fmt.Errorf("failed to list participants: %w", err)
	}
	return list, nil
}

func (s *competitionService) changed(ctx context.Context, action string, id int, name string, actorID int) {
	s.notifier.Changed(ctx, realtime.RoomCompetitions, MsgCompetitionsChanged, queue.EntityEvent{
		Entity: "competition", Action: action, ID: id, Name: name, ActorID: actorID,
	})
}
