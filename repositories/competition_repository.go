package repositories

import (
	"context"
	"database/sql"
	"errors"

	"github.com/Dosada05/sports-registry/models"
)

var (
	ErrCompetitionNotFound          = errors.New("competition not found")
	ErrCompetitionReferenceInvalid  = errors.New("competition sport or building conflict or invalid")
	ErrCompetitionParticipantExists = errors.New("sportsman already takes part in this competition")
	ErrCompetitionParticipantAbsent = errors.New("sportsman does not take part in this competition")
	ErrCompetitionParticipantBad    = errors.New("competition participant conflict or invalid")
)

type CompetitionRepository interface {
	Create(ctx context.Context, c *models.Competition) error
	GetByID(ctx context.Context, id int) (*models.Competition, error)
	List(ctx context.Context, sportID *int) ([]models.Competition, error)
	Delete(ctx context.Context, id int) error
	AddParticipant(ctx context.Context, p *models.CompetitionParticipant) error
	RemoveParticipant(ctx context.Context, competitionID, sportsmanID int) error
	ListParticipants(ctx context.Context, competitionID int) ([]models.CompetitionParticipant, error)
}

type postgresCompetitionRepository struct {
	db *sql.DB
}

func NewPostgresCompetitionRepository(db *sql.DB) CompetitionRepository {
	return &postgresCompetitionRepository{db: db}
}

func (r *postgresCompetitionRepository) Create(ctx context.Context, c *models.Competition) error {
	query := `
		INSERT INTO competitions (name, held_on, sport_id, building_id)
		VALUES ($1, $2, $3, $4)
		RETURNING id`

	err := r.db.QueryRowContext(ctx, query, c.Name, c.HeldOn, c.SportID, c.BuildingID).Scan(&c.ID)
	if err != nil {
		if pqErr, ok := pqError(err); ok && pqErr.Code == pqForeignKeyViolation {
			return ErrCompetitionReferenceInvalid
		}
		return err
	}
	return nil
}

func (r *postgresCompetitionRepository) GetByID(ctx context.Context, id int) (*models.Competition, error) {
	query := `SELECT id, name, held_on, sport_id, building_id FROM competitions WHERE id = $1`

	var c models.Competition
	err := r.db.QueryRowContext(ctx, query, id).Scan(&c.ID, &c.Name, &c.HeldOn, &c.SportID, &c.BuildingID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrCompetitionNotFound
		}
		return nil, err
	}
	return &c, nil
}

func (r *postgresCompetitionRepository) List(ctx context.Context, sportID *int) ([]models.Competition, error) {
	query := `SELECT id, name, held_on, sport_id, building_id FROM competitions`
	args := []interface{}{}
	if sportID != nil {
		query += ` WHERE sport_id = $1`
		args = append(args, *sportID)
	}
	query += ` ORDER BY held_on DESC, id DESC`

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	list := make([]models.Competition, 0)
	for rows.Next() {
		var c models.Competition
		if err := rows.Scan(&c.ID, &c.Name, &c.HeldOn, &c.SportID, &c.BuildingID); err != nil {
			return nil, err
		}
		list = append(list, c)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return list, nil
}

func (r *postgresCompetitionRepository) Delete(ctx context.Context, id int) error {
	result, err := r.db.ExecContext(ctx, `DELETE FROM competitions WHERE id = $1`, id)
	if err != nil {
		return err
	}
	return checkAffectedRows(result, ErrCompetitionNotFound)
}

func (r *postgresCompetitionRepository) AddParticipant(ctx context.Context, p *models.CompetitionParticipant) error {
	query := `INSERT INTO competition_participants (competition_id, sportsman_id, place) VALUES ($1, $2, $3)`

	if _, err := r.db.ExecContext(ctx, query, p.CompetitionID, p.SportsmanID, p.Place); err != nil {
		if pqErr, ok := pqError(err); ok {
			switch pqErr.Code {
			case pqUniqueViolation:
				return ErrCompetitionParticipantExists
			case pqForeignKeyViolation, pqCheckViolation:
				return ErrCompetitionParticipantBad
			}
		}
		return err
	}
	return nil
}

func (r *postgresCompetitionRepository) RemoveParticipant(ctx context.Context, competitionID, sportsmanID int) error {
	result, err := r.db.ExecContext(ctx,
		`DELETE FROM competition_participants WHERE competition_id = $1 AND sportsman_id = $2`,
		competitionID, sportsmanID)
	if err != nil {
		return err
	}
	return checkAffectedRows(result, ErrCompetitionParticipantAbsent)
}

func (r *postgresCompetitionRepository) ListParticipants(ctx context.Context, competitionID int) ([]models.CompetitionParticipant, error) {
	query := `
		SELECT cp.competition_id, cp.sportsman_id, cp.place, p.firstname, p.lastname, p.middlename
		FROM competition_participants cp
		JOIN people p ON p.id = cp.sportsman_id
		WHERE cp.competition_id = $1
		ORDER BY cp.place ASC NULLS LAST, p.lastname ASC`

	rows, err := r.db.QueryContext(ctx, query, competitionID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	list := make([]models.CompetitionParticipant, 0)
	for rows.Next() {
		var p models.CompetitionParticipant
		if err := rows.Scan(&p.CompetitionID, &p.SportsmanID, &p.Place, &p.FirstName, &p.LastName, &p.MiddleName); err != nil {
			return nil, err
		}
		list = append(list, p)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return list, nil
}
