package repositories

import (
	"context"
	"database/sql"
	"errors"

	"github.com/Dosada05/sports-registry/models"
)

var (
	ErrExperienceNotFound      = errors.New("experience record not found")
	ErrExperienceSportInvalid  = errors.New("experience sport conflict or invalid")
	ErrExperiencePersonInvalid = errors.New("experience person conflict or invalid")
)

type ExperienceRepository interface {
	Create(ctx context.Context, e *models.Experience) error
	ListByPerson(ctx context.Context, personID int) ([]models.Experience, error)
	Delete(ctx context.Context, personID, id int) error
	ListTitles(ctx context.Context) ([]string, error)
}

type postgresExperienceRepository struct {
	db *sql.DB
}

func NewPostgresExperienceRepository(db *sql.DB) ExperienceRepository {
	return &postgresExperienceRepository{db: db}
}

func (r *postgresExperienceRepository) Create(ctx context.Context, e *models.Experience) error {
	query := `
		INSERT INTO experience (person_id, sport_id, title, awarded_on)
		VALUES ($1, $2, $3, $4)
		RETURNING id`

	err := r.db.QueryRowContext(ctx, query, e.PersonID, e.SportID, e.Title, e.AwardedOn).Scan(&e.ID)
	if err != nil {
		if pqErr, ok := pqError(err); ok && pqErr.Code == pqForeignKeyViolation {
			switch pqErr.Constraint {
			case "experience_sport_id_fkey":
				return ErrExperienceSportInvalid
			case "experience_person_id_fkey":
				return ErrExperiencePersonInvalid
			}
		}
		return err
	}
	return nil
}

func (r *postgresExperienceRepository) ListByPerson(ctx context.Context, personID int) ([]models.Experience, error) {
	query := `
		SELECT e.id, e.person_id, e.sport_id, e.title, e.awarded_on, s.name
		FROM experience e
		JOIN sports s ON s.id = e.sport_id
		WHERE e.person_id = $1
		ORDER BY e.awarded_on DESC NULLS LAST, e.id ASC`

	rows, err := r.db.QueryContext(ctx, query, personID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	list := make([]models.Experience, 0)
	for rows.Next() {
		var e models.Experience
		if err := rows.Scan(&e.ID, &e.PersonID, &e.SportID, &e.Title, &e.AwardedOn, &e.SportName); err != nil {
			return nil, err
		}
		list = append(list, e)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return list, nil
}

func (r *postgresExperienceRepository) Delete(ctx context.Context, personID, id int) error {
	result, err := r.db.ExecContext(ctx, `DELETE FROM experience WHERE id = $1 AND person_id = $2`, id, personID)
	if err != nil {
		return err
	}
	return checkAffectedRows(result, ErrExperienceNotFound)
}

func (r *postgresExperienceRepository) ListTitles(ctx context.Context) ([]string, error) {
	rows, err := r.db.QueryContext(ctx, `SELECT title FROM experience GROUP BY title ORDER BY title`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	titles := make([]string, 0)
	for rows.Next() {
		var title string
		if err := rows.Scan(&title); err != nil {
			return nil, err
		}
		titles = append(titles, title)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return titles, nil
}
