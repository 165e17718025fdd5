package repositories

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/Dosada05/sports-registry/models"
)

// ReportRepository вызывает серверные функции-отчёты. Параметры всегда
// передаются плейсхолдерами, текст запроса не собирается из значений.
type ReportRepository interface {
	CoachesOfSport(ctx context.Context, sportID int) ([]models.CoachRow, error)
	CoachesOfSportsman(ctx context.Context, sportsmanID int) ([]models.CoachRow, error)
	CoachesWithSportsmen(ctx context.Context) ([]models.CoachRow, error)
	Sportsmen(ctx context.Context, filter models.SportsmanFilter) ([]models.SportsmanRow, error)
}

type postgresReportRepository struct {
	db *sql.DB
}

func NewPostgresReportRepository(db *sql.DB) ReportRepository {
	return &postgresReportRepository{db: db}
}

const (
	queryCoachesOfSport       = `SELECT id, firstname, lastname FROM coaches_of_sport($1)`
	queryCoachesOfSportsman   = `SELECT id, firstname, lastname FROM coaches_of_sportsman($1)`
	queryCoachesWithSportsmen = `
		SELECT DISTINCT coach_id, coach_firstname, coach_lastname
		FROM sportsmen_with_coaches
		ORDER BY coach_lastname, coach_firstname`

	queryAllSportsmen = `
		SELECT DISTINCT id, firstname, lastname, middlename, birthdate
		FROM sportsmen_with_sports
		ORDER BY lastname, firstname`
	querySportsmenWithSport         = `SELECT id, firstname, lastname, middlename, birthdate FROM sportsmen_with_sport($1)`
	querySportsmenWithQualification = `SELECT id, firstname, lastname, middlename, birthdate FROM sportsmen_with_qualification($1)`
	querySportsmenOfCoach           = `SELECT id, firstname, lastname, middlename, birthdate FROM sportsmen_of_coach($1)`
	querySportsmenNoCompetitions    = `SELECT id, firstname, lastname, middlename, birthdate FROM sportsmen_without_competitions($1, $2)`
	querySportsmenSeveralSports     = `SELECT id, firstname, lastname, middlename, birthdate FROM sportsmen_with_several_sports()`
)

const dateLayout = "2006-01-02"

func (r *postgresReportRepository) CoachesOfSport(ctx context.Context, sportID int) ([]models.CoachRow, error) {
	return r.coaches(ctx, queryCoachesOfSport, sportID)
}

func (r *postgresReportRepository) CoachesOfSportsman(ctx context.Context, sportsmanID int) ([]models.CoachRow, error) {
	return r.coaches(ctx, queryCoachesOfSportsman, sportsmanID)
}

func (r *postgresReportRepository) CoachesWithSportsmen(ctx context.Context) ([]models.CoachRow, error) {
	return r.coaches(ctx, queryCoachesWithSportsmen)
}

func (r *postgresReportRepository) coaches(ctx context.Context, query string, args ...interface{}) ([]models.CoachRow, error) {
	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	coaches := make([]models.CoachRow, 0)
	for rows.Next() {
		var c models.CoachRow
		if err := rows.Scan(&c.ID, &c.FirstName, &c.LastName); err != nil {
			return nil, err
		}
		coaches = append(coaches, c)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return coaches, nil
}

// sportsmenQuery выбирает отчёт по виду фильтра.
func sportsmenQuery(filter models.SportsmanFilter) (string, []interface{}, error) {
	switch filter.Kind {
	case models.FilterNone, "":
		return queryAllSportsmen, nil, nil
	case models.FilterSport:
		return querySportsmenWithSport, []interface{}{filter.SportName}, nil
	case models.FilterQualification:
		return querySportsmenWithQualification, []interface{}{filter.Qualification}, nil
	case models.FilterCoach:
		return querySportsmenOfCoach, []interface{}{filter.CoachID}, nil
	case models.FilterNoCompetitions:
		return querySportsmenNoCompetitions, []interface{}{
			filter.From.Format(dateLayout),
			filter.To.Format(dateLayout),
		}, nil
	case models.FilterMultipleSports:
		return querySportsmenSeveralSports, nil, nil
	default:
		return "", nil, fmt.Errorf("unknown sportsman filter %q", filter.Kind)
	}
}

func (r *postgresReportRepository) Sportsmen(ctx context.Context, filter models.SportsmanFilter) ([]models.SportsmanRow, error) {
	query, args, err := sportsmenQuery(filter)
	if err != nil {
		return nil, err
	}

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	sportsmen := make([]models.SportsmanRow, 0)
	for rows.Next() {
		var s models.SportsmanRow
		if err := rows.Scan(&s.ID, &s.FirstName, &s.LastName, &s.MiddleName, &s.BirthDate); err != nil {
			return nil, err
		}
		sportsmen = append(sportsmen, s)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return sportsmen, nil
}
