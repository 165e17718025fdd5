package repositories

import (
	"context"
	"database/sql"
	"fmt"
)

// StatsEntity - сущность, по которой считается статистика для дашборда.
type StatsEntity string

const (
	StatsSports        StatsEntity = "sports"
	StatsOrganizations StatsEntity = "organizations"
	StatsBuildings     StatsEntity = "buildings"
	StatsSportsmen     StatsEntity = "sportsmen"
	StatsCoaches       StatsEntity = "coaches"
	StatsCompetitions  StatsEntity = "competitions"
)

var statsQueries = map[StatsEntity]string{
	StatsSports:        `SELECT COUNT(*) FROM sports`,
	StatsOrganizations: `SELECT COUNT(*) FROM organizations`,
	StatsBuildings:     `SELECT COUNT(*) FROM buildings`,
	StatsSportsmen:     `SELECT COUNT(*) FROM people WHERE NOT is_coach`,
	StatsCoaches:       `SELECT COUNT(*) FROM people WHERE is_coach`,
	StatsCompetitions:  `SELECT COUNT(*) FROM competitions`,
}

type StatsRepository interface {
	Count(ctx context.Context, entity StatsEntity) (int, error)
}

type postgresStatsRepository struct {
	db *sql.DB
}

func NewPostgresStatsRepository(db *sql.DB) StatsRepository {
	return &postgresStatsRepository{db: db}
}

func (r *postgresStatsRepository) Count(ctx context.Context, entity StatsEntity) (int, error) {
	query, ok := statsQueries[entity]
	if !ok {
		return 0, fmt.Errorf("unknown stats entity %q", entity)
	}
	var n int
	if err := r.db.QueryRowContext(ctx, query).Scan(&n); err != nil {
		return 0, fmt.Errorf("failed to count %s: %w", entity, err)
	}
	return n, nil
}
