package repositories

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/Dosada05/sports-registry/models"
)

var (
	ErrSportNotFound     = errors.New("sport not found")
	ErrSportNameConflict = errors.New("sport name conflict")
)

type SportRepository interface {
	Create(ctx context.Context, sport *models.Sport) error
	GetByID(ctx context.Context, id int) (*models.Sport, error)
	GetAll(ctx context.Context) ([]models.Sport, error)
	Update(ctx context.Context, sport *models.Sport) error
	CountDependents(ctx context.Context, id int) (*models.SportDeletePreview, error)
	// DeleteWithDependents удаляет вид спорта и все связанные строки через exec (обычно *sql.Tx).
	DeleteWithDependents(ctx context.Context, exec SQLExecutor, id int) error
	ListByCoach(ctx context.Context, coachID int) ([]models.Sport, error)
}

type postgresSportRepository struct {
	db *sql.DB
}

func NewPostgresSportRepository(db *sql.DB) SportRepository {
	return &postgresSportRepository{db: db}
}

func (r *postgresSportRepository) Create(ctx context.Context, sport *models.Sport) error {
	query := `INSERT INTO sports (name) VALUES ($1) RETURNING id`

	err := r.db.QueryRowContext(ctx, query, sport.Name).Scan(&sport.ID)
	if err != nil {
		if pqErr, ok := pqError(err); ok && pqErr.Code == pqUniqueViolation && pqErr.Constraint == "sports_name_key" {
			return ErrSportNameConflict
		}
		return err
	}
	return nil
}

func (r *postgresSportRepository) GetByID(ctx context.Context, id int) (*models.Sport, error) {
	query := `SELECT id, name FROM sports WHERE id = $1`

	var sport models.Sport
	err := r.db.QueryRowContext(ctx, query, id).Scan(&sport.ID, &sport.Name)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrSportNotFound
		}
		return nil, err
	}
	return &sport, nil
}

func (r *postgresSportRepository) GetAll(ctx context.Context) ([]models.Sport, error) {
	query := `SELECT id, name FROM sports ORDER BY name ASC`
	return r.list(ctx, query)
}

func (r *postgresSportRepository) ListByCoach(ctx context.Context, coachID int) ([]models.Sport, error) {
	query := `
		SELECT s.id, s.name
		FROM coach_sports cs
		JOIN sports s ON s.id = cs.sport_id
		WHERE cs.coach_id = $1
		ORDER BY s.name ASC`
	return r.list(ctx, query, coachID)
}

func (r *postgresSportRepository) list(ctx context.Context, query string, args ...interface{}) ([]models.Sport, error) {
	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	sports := make([]models.Sport, 0)
	for rows.Next() {
		var sport models.Sport
		if scanErr := rows.Scan(&sport.ID, &sport.Name); scanErr != nil {
			return nil, scanErr
		}
		sports = append(sports, sport)
	}

	// Критически важная проверка ошибки после цикла
	if err = rows.Err(); err != nil {
		return nil, err
	}

	return sports, nil
}

func (r *postgresSportRepository) Update(ctx context.Context, sport *models.Sport) error {
	query := `UPDATE sports SET name = $1 WHERE id = $2`

	result, err := r.db.ExecContext(ctx, query, sport.Name, sport.ID)
	if err != nil {
		if pqErr, ok := pqError(err); ok && pqErr.Code == pqUniqueViolation && pqErr.Constraint == "sports_name_key" {
			return ErrSportNameConflict
		}
		return err
	}

	return checkAffectedRows(result, ErrSportNotFound)
}

func (r *postgresSportRepository) CountDependents(ctx context.Context, id int) (*models.SportDeletePreview, error) {
	query := `
		SELECT s.id, s.name,
			(SELECT COUNT(*) FROM coach_sports WHERE sport_id = s.id),
			(SELECT COUNT(*) FROM trainings WHERE sport_id = s.id),
			(SELECT COUNT(*) FROM experience WHERE sport_id = s.id),
			(SELECT COUNT(*) FROM competitions WHERE sport_id = s.id)
		FROM sports s
		WHERE s.id = $1`

	var p models.SportDeletePreview
	err := r.db.QueryRowContext(ctx, query, id).Scan(
		&p.SportID, &p.SportName, &p.CoachLinks, &p.Trainings, &p.ExperienceTitles, &p.Competitions,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrSportNotFound
		}
		return nil, err
	}
	return &p, nil
}

func (r *postgresSportRepository) DeleteWithDependents(ctx context.Context, exec SQLExecutor, id int) error {
	executor := getExecutor(r.db, exec)

	// Порядок важен: сначала зависимые таблицы, затем сам вид спорта.
	dependents := []string{
		`DELETE FROM competition_participants WHERE competition_id IN (SELECT id FROM competitions WHERE sport_id = $1)`,
		`DELETE FROM competitions WHERE sport_id = $1`,
		`DELETE FROM experience WHERE sport_id = $1`,
		`DELETE FROM trainings WHERE sport_id = $1`,
		`DELETE FROM coach_sports WHERE sport_id = $1`,
	}
	for _, query := range dependents {
		if _, err := executor.ExecContext(ctx, query, id); err != nil {
			return fmt.Errorf("failed to delete sport %d dependents: %w", id, err)
		}
	}

	result, err := executor.ExecContext(ctx, `DELETE FROM sports WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("failed to delete sport %d: %w", id, err)
	}
	return checkAffectedRows(result, ErrSportNotFound)
}
