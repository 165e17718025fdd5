package repositories

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/Dosada05/sports-registry/models"
)

var (
	ErrPersonNotFound   = errors.New("person not found")
	ErrPersonRoleLocked = errors.New("person has trainings, coach sports or competition entries")
)

type PersonRepository interface {
	Create(ctx context.Context, p *models.Person) error
	GetByID(ctx context.Context, id int) (*models.Person, error)
	// List возвращает людей; isCoach == nil - всех.
	List(ctx context.Context, isCoach *bool) ([]models.Person, error)
	// Update не меняет is_coach, пока у человека есть тренировки, виды спорта
	// тренера или участия в соревнованиях (ErrPersonRoleLocked).
	Update(ctx context.Context, p *models.Person) error
	UpdatePhotoKey(ctx context.Context, id int, key *string) error
	Delete(ctx context.Context, id int) error
}

type postgresPersonRepository struct {
	db *sql.DB
}

func NewPostgresPersonRepository(db *sql.DB) PersonRepository {
	return &postgresPersonRepository{db: db}
}

const personColumns = `id, firstname, lastname, middlename, birthdate, is_coach, photo_key`

func scanPerson(row interface{ Scan(dest ...interface{}) error }) (*models.Person, error) {
	var p models.Person
	if err := row.Scan(&p.ID, &p.FirstName, &p.LastName, &p.MiddleName, &p.BirthDate, &p.IsCoach, &p.PhotoKey); err != nil {
		return nil, err
	}
	return &p, nil
}

func (r *postgresPersonRepository) Create(ctx context.Context, p *models.Person) error {
	query := `
		INSERT INTO people (firstname, lastname, middlename, birthdate, is_coach)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING id`

	return r.db.QueryRowContext(ctx, query,
		p.FirstName, p.LastName, p.MiddleName, p.BirthDate, p.IsCoach,
	).Scan(&p.ID)
}

func (r *postgresPersonRepository) GetByID(ctx context.Context, id int) (*models.Person, error) {
	p, err := scanPerson(r.db.QueryRowContext(ctx, `SELECT `+personColumns+` FROM people WHERE id = $1`, id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrPersonNotFound
		}
		return nil, err
	}
	return p, nil
}

func (r *postgresPersonRepository) List(ctx context.Context, isCoach *bool) ([]models.Person, error) {
	query := `SELECT ` + personColumns + ` FROM people`
	args := []interface{}{}
	if isCoach != nil {
		query += ` WHERE is_coach = $1`
		args = append(args, *isCoach)
	}
	query += ` ORDER BY lastname ASC, firstname ASC`

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	people := make([]models.Person, 0)
	for rows.Next() {
		p, err := scanPerson(rows)
		if err != nil {
			return nil, err
		}
		people = append(people, *p)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return people, nil
}

func (r *postgresPersonRepository) Update(ctx context.Context, p *models.Person) error {
	query := `
		UPDATE people p
		SET firstname = $1, lastname = $2, middlename = $3, birthdate = $4, is_coach = $5
		WHERE p.id = $6
		  AND (p.is_coach = $5 OR NOT EXISTS (
			SELECT 1 FROM trainings t WHERE t.sportsman_id = p.id OR t.coach_id = p.id
			UNION ALL
			SELECT 1 FROM coach_sports cs WHERE cs.coach_id = p.id
			UNION ALL
			SELECT 1 FROM competition_participants cp WHERE cp.sportsman_id = p.id
		  ))`

	result, err := r.db.ExecContext(ctx, query,
		p.FirstName, p.LastName, p.MiddleName, p.BirthDate, p.IsCoach, p.ID,
	)
	if err != nil {
		return err
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to check affected rows: %w", err)
	}
	if affected > 0 {
		return nil
	}

	// Ничего не обновили: либо человека нет, либо смена роли запрещена.
	var exists bool
	if err := r.db.QueryRowContext(ctx, `SELECT EXISTS (SELECT 1 FROM people WHERE id = $1)`, p.ID).Scan(&exists); err != nil {
		return err
	}
	if exists {
		return ErrPersonRoleLocked
	}
	return ErrPersonNotFound
}

func (r *postgresPersonRepository) UpdatePhotoKey(ctx context.Context, id int, key *string) error {
	result, err := r.db.ExecContext(ctx, `UPDATE people SET photo_key = $1 WHERE id = $2`, key, id)
	if err != nil {
		return err
	}
	return checkAffectedRows(result, ErrPersonNotFound)
}

func (r *postgresPersonRepository) Delete(ctx context.Context, id int) error {
	result, err := r.db.ExecContext(ctx, `DELETE FROM people WHERE id = $1`, id)
	if err != nil {
		return err
	}
	return checkAffectedRows(result, ErrPersonNotFound)
}
