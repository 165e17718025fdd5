package repositories

import (
	"context"
	"database/sql"
	"errors"

	"github.com/Dosada05/sports-registry/models"
)

var (
	ErrCoachSportNotFound = errors.New("coach is not linked to this sport")
	ErrTrainingNotFound   = errors.New("training not found")
	ErrLinkInvalid        = errors.New("referenced person or sport does not exist")
)

// TrainingRepository хранит связи тренер-вид спорта и спортсмен-вид спорта-тренер.
type TrainingRepository interface {
	AddCoachSport(ctx context.Context, coachID, sportID int) error
	RemoveCoachSport(ctx context.Context, coachID, sportID int) error
	UpsertTraining(ctx context.Context, t *models.Training) error
	RemoveTraining(ctx context.Context, sportsmanID, sportID int) error
	ListTrainings(ctx context.Context, sportsmanID int) ([]models.Training, error)
}

type postgresTrainingRepository struct {
	db *sql.DB
}

func NewPostgresTrainingRepository(db *sql.DB) TrainingRepository {
	return &postgresTrainingRepository{db: db}
}

func mapLinkError(err error) error {
	if pqErr, ok := pqError(err); ok && pqErr.Code == pqForeignKeyViolation {
		return ErrLinkInvalid
	}
	return err
}

func (r *postgresTrainingRepository) AddCoachSport(ctx context.Context, coachID, sportID int) error {
	query := `INSERT INTO coach_sports (coach_id, sport_id) VALUES ($1, $2) ON CONFLICT DO NOTHING`
	if _, err := r.db.ExecContext(ctx, query, coachID, sportID); err != nil {
		return mapLinkError(err)
	}
	return nil
}

func (r *postgresTrainingRepository) RemoveCoachSport(ctx context.Context, coachID, sportID int) error {
	result, err := r.db.ExecContext(ctx, `DELETE FROM coach_sports WHERE coach_id = $1 AND sport_id = $2`, coachID, sportID)
	if err != nil {
		return err
	}
	return checkAffectedRows(result, ErrCoachSportNotFound)
}

func (r *postgresTrainingRepository) UpsertTraining(ctx context.Context, t *models.Training) error {
	query := `
		INSERT INTO trainings (sportsman_id, sport_id, coach_id)
		VALUES ($1, $2, $3)
		ON CONFLICT (sportsman_id, sport_id) DO UPDATE SET coach_id = EXCLUDED.coach_id`

	if _, err := r.db.ExecContext(ctx, query, t.SportsmanID, t.SportID, t.CoachID); err != nil {
		return mapLinkError(err)
	}
	return nil
}

func (r *postgresTrainingRepository) RemoveTraining(ctx context.Context, sportsmanID, sportID int) error {
	result, err := r.db.ExecContext(ctx, `DELETE FROM trainings WHERE sportsman_id = $1 AND sport_id = $2`, sportsmanID, sportID)
	if err != nil {
		return err
	}
	return checkAffectedRows(result, ErrTrainingNotFound)
}

func (r *postgresTrainingRepository) ListTrainings(ctx context.Context, sportsmanID int) ([]models.Training, error) {
	query := `
		SELECT t.sportsman_id, t.sport_id, t.coach_id, s.name
		FROM trainings t
		JOIN sports s ON s.id = t.sport_id
		WHERE t.sportsman_id = $1
		ORDER BY s.name ASC`

	rows, err := r.db.QueryContext(ctx, query, sportsmanID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	trainings := make([]models.Training, 0)
	for rows.Next() {
		var t models.Training
		if err := rows.Scan(&t.SportsmanID, &t.SportID, &t.CoachID, &t.SportName); err != nil {
			return nil, err
		}
		trainings = append(trainings, t)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return trainings, nil
}
