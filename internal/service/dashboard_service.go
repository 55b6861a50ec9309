package service

import (
	"context"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/segyhp/sacco-ledger/internal/cache"
	"github.com/segyhp/sacco-ledger/internal/domain"
	"github.com/segyhp/sacco-ledger/internal/repository"
	customError "github.com/segyhp/sacco-ledger/pkg/errors"
	"github.com/segyhp/sacco-ledger/pkg/utils"
)

// outstandingStatuses are the loan statuses whose balances are still owed
var outstandingStatuses = []domain.LoanStatus{domain.LoanStatusActive, domain.LoanStatusOverdue}

type DashboardService struct {
	repo  repository.DashboardRepository
	cache cache.DashboardCache
	log   logrus.FieldLogger
	now   func() time.Time
}

func NewDashboardService(repos repository.Repositories, cache cache.DashboardCache, log logrus.FieldLogger) *DashboardService {
	return &DashboardService{
		repo:  repos.Dashboard,
		cache: cache,
		log:   log,
		now:   time.Now,
	}
}

// GetDashboardStats returns the summary for the calendar month containing
// now. A cached copy is served while it lives.
func (s *DashboardService) GetDashboardStats(ctx context.Context, actor domain.Actor) (*domain.DashboardStats, error) {
	if err := authorize(actor, domain.PermDashboardRead); err != nil {
		return nil, err
	}

	cached, generation, err := s.cache.Get(ctx)
	if err != nil {
		s.log.WithError(err).Warn("dashboard cache read failed")
	}
	if cached != nil {
		return cached, nil
	}

	stats, err := s.compute(ctx, s.now())
	if err != nil {
		return nil, customError.WrapDatabaseError(err)
	}

	if err := s.cache.Set(ctx, generation, stats); err != nil {
		s.log.WithError(err).Warn("dashboard cache write failed")
	}

	return stats, nil
}

func (s *DashboardService) compute(ctx context.Context, now time.Time) (*domain.DashboardStats, error) {
	start, end := utils.MonthBounds(now)
	stats := &domain.DashboardStats{
		PeriodStart: start,
		PeriodEnd:   end,
		GeneratedAt: now,
	}

	var err error
	if stats.TotalMembers, err = s.repo.CountMembers(ctx); err != nil {
		return nil, err
	}
	if stats.TotalSavings, err = s.repo.TotalSavings(ctx); err != nil {
		return nil, err
	}
	if stats.ActiveLoanTotal, err = s.repo.OutstandingLoanBalance(ctx, outstandingStatuses); err != nil {
		return nil, err
	}
	if stats.MonthlyRevenue, err = s.repo.SumTransactions(ctx, domain.TransactionFee, start, end); err != nil {
		return nil, err
	}
	if stats.LoansByStatus, err = s.repo.LoanCountsByStatus(ctx); err != nil {
		return nil, err
	}

	for _, count := range stats.LoansByStatus {
		stats.TotalLoans += count
	}
	stats.PendingLoans = stats.LoansByStatus[domain.LoanStatusPending]
	stats.DefaultedLoans = stats.LoansByStatus[domain.LoanStatusDefaulted]
	stats.DefaultRate = utils.Ratio(stats.DefaultedLoans, stats.TotalLoans, 4)

	return stats, nil
}
