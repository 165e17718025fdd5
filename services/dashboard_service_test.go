package services

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Dosada05/sports-registry/repositories"
)

type fakeStatsRepo struct {
	counts map[repositories.StatsEntity]int
	err    error
}

func (r *fakeStatsRepo) Count(ctx context.Context, entity repositories.StatsEntity) (int, error) {
	if r.err != nil {
		return 0, r.err
	}
	return r.counts[entity], nil
}

func TestDashboardService_GetStats(t *testing.T) {
	svc := NewDashboardService(&fakeStatsRepo{counts: map[repositories.StatsEntity]int{
		repositories.StatsSports:        3,
		repositories.StatsOrganizations: 2,
		repositories.StatsBuildings:     5,
		repositories.StatsSportsmen:     40,
		repositories.StatsCoaches:       6,
		repositories.StatsCompetitions:  1,
	}})

	stats, err := svc.GetStats(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 3, stats.SportsTotal)
	assert.Equal(t, 40, stats.SportsmenTotal)
	assert.Equal(t, 6, stats.CoachesTotal)
	assert.Equal(t, 1, stats.CompetitionsTotal)

	_, err = NewDashboardService(&fakeStatsRepo{err: errors.New("db down")}).GetStats(context.Background())
	assert.Error(t, err)
}
