package services

import (
	"context"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/safestreets/safestreets-backend/internal/platform/logger"
	"github.com/safestreets/safestreets-backend/internal/repos"
	"github.com/safestreets/safestreets-backend/internal/types"
)

// DashboardOverview is the police landing view: queue depth by status,
// the most recent submissions, and the top reporters.
type DashboardOverview struct {
	StatusCounts  map[string]int64         `json:"statusCounts"`
	TodayReports  int64                    `json:"todayReports"`
	RecentReports []*types.ViolationReport `json:"recentReports"`
	TopCitizens   []*types.Citizen         `json:"topCitizens"`
}

type DashboardService interface {
	Overview(ctx context.Context) (*DashboardOverview, error)
}

type dashboardService struct {
	reportRepo  repos.ViolationReportRepo
	citizenRepo repos.CitizenRepo
	log         *logger.Logger
}

func NewDashboardService(
	reportRepo repos.ViolationReportRepo,
	citizenRepo repos.CitizenRepo,
	baseLog *logger.Logger,
) DashboardService {
	return &dashboardService{
		reportRepo:  reportRepo,
		citizenRepo: citizenRepo,
		log:         baseLog.With("service", "DashboardService"),
	}
}

// Overview fans the aggregate queries out in parallel.
func (s *dashboardService) Overview(ctx context.Context) (*DashboardOverview, error) {
	out := &DashboardOverview{}
	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		counts, err := s.reportRepo.CountByStatus(gctx, nil)
		if err != nil {
			return err
		}
		out.StatusCounts = counts
		return nil
	})
	g.Go(func() error {
		today, err := s.reportRepo.CountSince(gctx, nil, time.Now().Truncate(24*time.Hour))
		if err != nil {
			return err
		}
		out.TodayReports = today
		return nil
	})
	g.Go(func() error {
		recent, err := s.reportRepo.List(gctx, nil, repos.ReportFilter{Limit: 10})
		if err != nil {
			return err
		}
		out.RecentReports = recent
		return nil
	})
	g.Go(func() error {
		top, err := s.citizenRepo.TopByPoints(gctx, nil, 10)
		if err != nil {
			return err
		}
		out.TopCitizens = top
		return nil
	})

	if err := g.Wait(); err != nil {
		return nil, err
	}
	return out, nil
}
