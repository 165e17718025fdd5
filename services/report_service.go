package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/Dosada05/sports-registry/models"
	"github.com/Dosada05/sports-registry/repositories"
)

// Допустимый диапазон дат для фильтра "без соревнований": сегодня ± два года.
const reportDateWindow = 730 * 24 * time.Hour

var (
	ErrReportFilterInvalid = errors.New("invalid sportsmen filter")
	ErrReportDateRange     = errors.New("dates must lie within two years of today and from must not be after to")
)

type ReportService interface {
	ListSportsmen(ctx context.Context, filter models.SportsmanFilter) ([]models.SportsmanRow, error)
	GetCoachesOfSportsman(ctx context.Context, sportsmanID int) ([]models.CoachRow, error)
	// ListCoaches возвращает тренеров, у которых есть спортсмены.
	ListCoaches(ctx context.Context) ([]models.CoachRow, error)
	ListQualificationTitles(ctx context.Context) ([]string, error)
}

type reportService struct {
	reportRepo     repositories.ReportRepository
	experienceRepo repositories.ExperienceRepository
	personRepo     repositories.PersonRepository
	cache          ReportCache
	logger         *slog.Logger
	now            func() time.Time
}

func NewReportService(
	reportRepo repositories.ReportRepository,
	experienceRepo repositories.ExperienceRepository,
	personRepo repositories.PersonRepository,
	cache ReportCache,
	logger *slog.Logger,
) ReportService {
	return &reportService{
		reportRepo:     reportRepo,
		experienceRepo: experienceRepo,
		personRepo:     personRepo,
		cache:          cache,
		logger:         logger,
		now:            time.Now,
	}
}

// cached читает отчёт из кеша или вызывает load и сохраняет результат.
// Ошибки кеша не прерывают запрос.
func cached[T any](ctx context.Context, c ReportCache, logger *slog.Logger, key string, load func() (T, error)) (T, error) {
	var out T
	if c != nil {
		hit, err := c.Get(ctx, key, &out)
		if err != nil && logger != nil {
			logger.WarnContext(ctx, "report cache read failed", slog.String("key", key), slog.Any("error", err))
		}
		if hit {
			return out, nil
		}
	}

	out, err := load()
	if err != nil {
		return out, err
	}

	if c != nil {
		if err := c.Set(ctx, key, out); err != nil && logger != nil {
			logger.WarnContext(ctx, "report cache write failed", slog.String("key", key), slog.Any("error", err))
		}
	}
	return out, nil
}

func reportCacheKey(c ReportCache, name string, args ...interface{}) string {
	if c == nil {
		return ""
	}
	return c.Key(name, args...)
}

// validateFilter проверяет, что для выбранного фильтра задан ровно нужный параметр.
func (s *reportService) validateFilter(filter *models.SportsmanFilter) error {
	switch filter.Kind {
	case "", models.FilterNone:
		filter.Kind = models.FilterNone
	case models.FilterSport:
		filter.SportName = strings.TrimSpace(filter.SportName)
		if filter.SportName == "" {
			return fmt.Errorf("%w: sport is required", ErrReportFilterInvalid)
		}
	case models.FilterQualification:
		filter.Qualification = strings.TrimSpace(filter.Qualification)
		if filter.Qualification == "" {
			return fmt.Errorf("%w: title is required", ErrReportFilterInvalid)
		}
	case models.FilterCoach:
		if filter.CoachID <= 0 {
			return fmt.Errorf("%w: coach_id is required", ErrReportFilterInvalid)
		}
	case models.FilterNoCompetitions:
		if filter.From.IsZero() || filter.To.IsZero() {
			return fmt.Errorf("%w: from and to are required", ErrReportFilterInvalid)
		}
		today := dateOnly(s.now())
		lo, hi := today.Add(-reportDateWindow), today.Add(reportDateWindow)
		from, to := dateOnly(filter.From), dateOnly(filter.To)
		if from.Before(lo) || to.After(hi) || from.After(hi) || to.Before(lo) || from.After(to) {
			return ErrReportDateRange
		}
		filter.From, filter.To = from, to
	case models.FilterMultipleSports:
	default:
		return fmt.Errorf("%w: unknown filter %q", ErrReportFilterInvalid, filter.Kind)
	}
	return nil
}

func filterCacheArgs(f models.SportsmanFilter) []interface{} {
	switch f.Kind {
	case models.FilterSport:
		return []interface{}{f.Kind, f.SportName}
	case models.FilterQualification:
		return []interface{}{f.Kind, f.Qualification}
	case models.FilterCoach:
		return []interface{}{f.Kind, f.CoachID}
	case models.FilterNoCompetitions:
		return []interface{}{f.Kind, f.From.Format(dateLayout), f.To.Format(dateLayout)}
	}
	return []interface{}{f.Kind}
}

func (s *reportService) ListSportsmen(ctx context.Context, filter models.SportsmanFilter) ([]models.SportsmanRow, error) {
	if err := s.validateFilter(&filter); err != nil {
		return nil, err
	}

	return cached(ctx, s.cache, s.logger, reportCacheKey(s.cache, "sportsmen", filterCacheArgs(filter)...), func() ([]models.SportsmanRow, error) {
		rows, err := s.reportRepo.Sportsmen(ctx, filter)
		if err != nil {
			return nil, fmt.Errorf("failed to list sportsmen (%s): %w", filter.Kind, err)
		}
		return rows, nil
	})
}

func (s *reportService) GetCoachesOfSportsman(ctx context.Context, sportsmanID int) ([]models.CoachRow, error) {
	if _, err := s.personRepo.GetByID(ctx, sportsmanID); err != nil {
		if errors.Is(err, repositories.ErrPersonNotFound) {
			return nil, ErrPersonNotFound
		}
		return nil, fmt.Errorf("failed to get sportsman %d: %w", sportsmanID, err)
	}

	return cached(ctx, s.cache, s.logger, reportCacheKey(s.cache, "coaches_of_sportsman", sportsmanID), func() ([]models.CoachRow, error) {
		coaches, err := s.reportRepo.CoachesOfSportsman(ctx, sportsmanID)
		if err != nil {
			return nil, fmt.Errorf("failed to get coaches of sportsman %d: %w", sportsmanID, err)
		}
		return coaches, nil
	})
}

func (s *reportService) ListCoaches(ctx context.Context) ([]models.CoachRow, error) {
	return cached(ctx, s.cache, s.logger, reportCacheKey(s.cache, "coaches"), func() ([]models.CoachRow, error) {
		coaches, err := s.reportRepo.CoachesWithSportsmen(ctx)
		if err != nil {
			return nil, fmt.Errorf("failed to list coaches: %w", err)
		}
		return coaches, nil
	})
}

func (s *reportService) ListQualificationTitles(ctx context.Context) ([]string, error) {
	return cached(ctx, s.cache, s.logger, reportCacheKey(s.cache, "qualifications"), func() ([]string, error) {
		titles, err := s.experienceRepo.ListTitles(ctx)
		if err != nil {
			return nil, fmt.Errorf("failed to list qualification titles: %w", err)
		}
		return titles, nil
	})
}
