package services

import (
	"context"
	"fmt"

	"golang.org/x/sync/errgroup"

	"github.com/Dosada05/sports-registry/models"
	"github.com/Dosada05/sports-registry/repositories"
)

type DashboardService interface {
	GetStats(ctx context.Context) (models.DashboardStats, error)
}

type dashboardService struct {
	statsRepo repositories.StatsRepository
}

func NewDashboardService(statsRepo repositories.StatsRepository) DashboardService {
	return &dashboardService{statsRepo: statsRepo}
}

func (s *dashboardService) GetStats(ctx context.Context) (models.DashboardStats, error) {
	var stats models.DashboardStats

	targets := []struct {
		entity repositories.StatsEntity
		dst    *int
	}{
		{repositories.StatsSports, &stats.SportsTotal},
		{repositories.StatsOrganizations, &stats.OrganizationsTotal},
		{repositories.StatsBuildings, &stats.BuildingsTotal},
		{repositories.StatsSportsmen, &stats.SportsmenTotal},
		{repositories.StatsCoaches, &stats.CoachesTotal},
		{repositories.StatsCompetitions, &stats.CompetitionsTotal},
	}

	g, gctx := errgroup.WithContext(ctx)
	for _, t := range targets {
		t := t
		g.Go(func() error {
			n, err := s.statsRepo.Count(gctx, t.entity)
			if err != nil {
				return err
			}
			*t.dst = n
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return models.DashboardStats{}, fmt.Errorf("failed to load dashboard stats: %w", err)
	}
	return stats, nil
}
