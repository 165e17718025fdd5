package services

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/Dosada05/sports-registry/models"
	"github.com/Dosada05/sports-registry/queue"
	"github.com/Dosada05/sports-registry/realtime"
	"github.com/Dosada05/sports-registry/repositories"
)

var (
	ErrSportNameRequired   = errors.New("sport name is required")
	ErrSportCreationFailed = errors.New("failed to create sport")
	ErrSportUpdateFailed   = errors.New("failed to update sport")
	ErrSportDeleteFailed   = errors.New("failed to delete sport")
)

// DeleteNotConfirmedError возвращается из DeleteSport без подтверждения
// и несёт сводку того, что будет удалено.
type DeleteNotConfirmedError struct {
	Preview *models.SportDeletePreview
}

func (e *DeleteNotConfirmedError) Error() string {
	return e.Preview.Message
}

func (e *DeleteNotConfirmedError) Unwrap() error {
	return ErrDeleteNotConfirmed
}

type SportService interface {
	CreateSport(ctx context.Context, input CreateSportInput, actorID int) (*models.Sport, error)
	GetSportByID(ctx context.Context, id int) (*models.Sport, error)
	GetAllSports(ctx context.Context) ([]models.Sport, error)
	UpdateSport(ctx context.Context, id int, input UpdateSportInput, actorID int) (*models.Sport, error)
	PreviewSportDeletion(ctx context.Context, id int) (*models.SportDeletePreview, error)
	DeleteSport(ctx context.Context, id int, confirm bool, actorID int) error
	GetCoachesOfSport(ctx context.Context, id int) ([]models.CoachRow, error)
}

type CreateSportInput struct {
	Name string `json:"name"`
}

type UpdateSportInput struct {
	Name string `json:"name"`
}

type sportService struct {
	db         *sql.DB
	sportRepo  repositories.SportRepository
	reportRepo repositories.ReportRepository
	cache      ReportCache
	notifier   *Notifier
	logger     *slog.Logger
}

func NewSportService(
	db *sql.DB,
	sportRepo repositories.SportRepository,
	reportRepo repositories.ReportRepository,
	cache ReportCache,
	notifier *Notifier,
	logger *slog.Logger,
) SportService {
	return &sportService{
		db:         db,
		sportRepo:  sportRepo,
		reportRepo: reportRepo,
		cache:      cache,
		notifier:   notifier,
		logger:     logger,
	}
}

func (s *sportService) CreateSport(ctx context.Context, input CreateSportInput, actorID int) (*models.Sport, error) {
	name := strings.TrimSpace(input.Name)
	if name == "" {
		return nil, ErrSportNameRequired
	}

	sport := &models.Sport{
		Name: name,
	}

	err := s.sportRepo.Create(ctx, sport)
	if err != nil {
		if errors.Is(err, repositories.ErrSportNameConflict) {
			return nil, ErrSportNameConflict
		}
		return nil, fmt.Errorf("%w: %w", ErrSportCreationFailed, err)
	}

	s.changed(ctx, queue.ActionCreated, sport, actorID)
	return sport, nil
}

func (s *sportService) GetSportByID(ctx context.Context, id int) (*models.Sport, error) {
	sport, err := s.sportRepo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, repositories.ErrSportNotFound) {
			return nil, ErrSportNotFound
		}
		return nil, fmt.Errorf("failed to get sport by id %d: %w", id, err)
	}
	return sport, nil
}

func (s *sportService) GetAllSports(ctx context.Context) ([]models.Sport, error) {
	sports, err := s.sportRepo.GetAll(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to get all sports: %w", err)
	}
	return sports, nil
}

func (s *sportService) UpdateSport(ctx context.Context, id int, input UpdateSportInput, actorID int) (*models.Sport, error) {
	name := strings.TrimSpace(input.Name)
	if name == "" {
		return nil, ErrSportNameRequired
	}

	sport := &models.Sport{ID: id, Name: name}
	err := s.sportRepo.Update(ctx, sport)
	if err != nil {
		switch {
		case errors.Is(err, repositories.ErrSportNotFound):
			return nil, ErrSportNotFound
		case errors.Is(err, repositories.ErrSportNameConflict):
			return nil, ErrSportNameConflict
		}
		return nil, fmt.Errorf("%w: %w", ErrSportUpdateFailed, err)
	}

	s.changed(ctx, queue.ActionUpdated, sport, actorID)
	return sport, nil
}

func (s *sportService) PreviewSportDeletion(ctx context.Context, id int) (*models.SportDeletePreview, error) {
	preview, err := s.sportRepo.CountDependents(ctx, id)
	if err != nil {
		if errors.Is(err, repositories.ErrSportNotFound) {
			return nil, ErrSportNotFound
		}
		return nil, fmt.Errorf("failed to count sport dependents: %w", err)
	}
	preview.Message = fmt.Sprintf("Delete %s and all connected tables?", preview.SportName)
	return preview, nil
}

func (s *sportService) DeleteSport(ctx context.Context, id int, confirm bool, actorID int) error {
	preview, err := s.PreviewSportDeletion(ctx, id)
	if err != nil {
		return err
	}
	if !confirm {
		return &DeleteNotConfirmedError{Preview: preview}
	}

	if err := s.deleteInTx(ctx, id); err != nil {
		return err
	}

	s.changed(ctx, queue.ActionDeleted, &models.Sport{ID: id, Name: preview.SportName}, actorID)
	return nil
}

// deleteInTx удаляет вид спорта и зависимые строки одной транзакцией.
func (s *sportService) deleteInTx(ctx context.Context, id int) (err error) {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("%w: failed to begin transaction: %w", ErrSportDeleteFailed, err)
	}
	defer func() {
		if p := recover(); p != nil {
			_ = tx.Rollback()
			panic(p)
		} else if err != nil {
			if rbErr := tx.Rollback(); rbErr != nil && s.logger != nil {
				s.logger.ErrorContext(ctx, "failed to rollback sport deletion", slog.Int("sport_id", id), slog.Any("error", rbErr))
			}
		} else {
			err = tx.Commit()
			if err != nil {
				err = fmt.Errorf("%w: failed to commit transaction: %w", ErrSportDeleteFailed, err)
			}
		}
	}()

	if err = s.sportRepo.DeleteWithDependents(ctx, tx, id); err != nil {
		if errors.Is(err, repositories.ErrSportNotFound) {
			return ErrSportNotFound
		}
		return fmt.Errorf("%w: %w", ErrSportDeleteFailed, err)
	}
	return nil
}

func (s *sportService) GetCoachesOfSport(ctx context.Context, id int) ([]models.CoachRow, error) {
	if _, err := s.GetSportByID(ctx, id); err != nil {
		return nil, err
	}
	return cached(ctx, s.cache, s.logger, reportCacheKey(s.cache, "coaches_of_sport", id), func() ([]models.CoachRow, error) {
		coaches, err := s.reportRepo.CoachesOfSport(ctx, id)
		if err != nil {
			return nil, fmt.Errorf("failed to get coaches of sport %d: %w", id, err)
		}
		return coaches, nil
	})
}

func (s *sportService) changed(ctx context.Context, action string, sport *models.Sport, actorID int) {
	s.notifier.Changed(ctx, realtime.RoomSports, MsgSportsChanged, queue.EntityEvent{
		Entity:  "sport",
		Action:  action,
		ID:      sport.ID,
		Name:    sport.Name,
		ActorID: actorID,
	})
}
