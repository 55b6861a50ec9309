package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/jmoiron/sqlx"
	_ "github.com/lib/pq"
	"github.com/redis/go-redis/v9"
	"github.com/robfig/cron/v3"
	"github.com/sirupsen/logrus"

	"github.com/segyhp/sacco-ledger/internal/cache"
	"github.com/segyhp/sacco-ledger/internal/config"
	"github.com/segyhp/sacco-ledger/internal/domain"
	"github.com/segyhp/sacco-ledger/internal/events"
	"github.com/segyhp/sacco-ledger/internal/logger"
	"github.com/segyhp/sacco-ledger/internal/repository"
	"github.com/segyhp/sacco-ledger/internal/service"
)

// sweepTimeout bounds a single overdue sweep run
const sweepTimeout = 5 * time.Minute

func main() {
	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		logrus.WithError(err).Fatal("failed to load configuration")
	}

	log := logger.New(cfg.Logging)
	log.Info("starting ledger scheduler")

	db, err := sqlx.Connect("postgres", cfg.Database.URL)
	if err != nil {
		log.WithError(err).Fatal("failed to initialize database")
	}
	defer db.Close()
	db.SetMaxOpenConns(cfg.Database.MaxOpenConns)

	publisher := events.Publisher(events.Noop{})
	if cfg.Events.AMQPURL != "" {
		amqpPublisher, err := events.NewAMQPPublisher(cfg.Events.AMQPURL, cfg.Events.Exchange, log)
		if err != nil {
			log.WithError(err).Warn("event broker unavailable, events will not be published")
		} else {
			publisher = amqpPublisher
		}
	}
	defer publisher.Close()

	// The sweep changes loan counts, so it drops the server's cached dashboard
	var dashboardCache cache.DashboardCache = cache.Noop{}
	if cfg.Redis.Enabled && cfg.Dashboard.CacheTTL > 0 {
		redisClient := redis.NewClient(&redis.Options{
			Addr:     cfg.Redis.Addr,
			Password: cfg.Redis.Password,
			DB:       cfg.Redis.DB,
		})
		defer redisClient.Close()
		dashboardCache = cache.NewRedisDashboardCache(redisClient, cfg.Dashboard.CacheTTL)
	}

	store := repository.NewStore(db)
	loans := service.NewLoanService(store.Repositories(), store, publisher, log, cfg)

	location, err := time.LoadLocation(cfg.Scheduler.Timezone)
	if err != nil {
		log.WithError(err).Fatal("invalid scheduler timezone")
	}

	// Initialize cron scheduler
	c := cron.New(cron.WithSeconds(), cron.WithLocation(location))
	if err := setupCronJobs(c, cfg, loans, dashboardCache, log); err != nil {
		log.WithError(err).Fatal("failed to schedule jobs")
	}

	c.Start()
	log.Info("scheduler started")

	// Wait for interrupt signal to gracefully shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info("shutting down scheduler")
	<-c.Stop().Done()
	log.Info("scheduler stopped")
}

type overdueSweeper interface {
	SweepOverdue(ctx context.Context, actor domain.Actor) (int, error)
}

type cacheInvalidator interface {
	Invalidate(ctx context.Context) error
}

func setupCronJobs(c *cron.Cron, cfg *config.Config, loans overdueSweeper, dashboard cacheInvalidator, log logrus.FieldLogger) error {
	// Move active loans past their due date to overdue
	_, err := c.AddFunc(cfg.Scheduler.OverdueSpec, func() {
		runOverdueSweep(loans, dashboard, log)
	})
	if err != nil {
		return err
	}

	log.WithField("spec", cfg.Scheduler.OverdueSpec).Info("overdue sweep scheduled")
	return nil
}

func runOverdueSweep(loans overdueSweeper, dashboard cacheInvalidator, log logrus.FieldLogger) {
	ctx, cancel := context.WithTimeout(context.Background(), sweepTimeout)
	defer cancel()

	start := time.Now()
	moved, err := loans.SweepOverdue(ctx, domain.SystemActor())
	entry := log.WithFields(logrus.Fields{
		"moved":    moved,
		"duration": time.Since(start).String(),
	})

	// A partially failed sweep may still have moved loans
	if moved > 0 {
		if err := dashboard.Invalidate(ctx); err != nil {
			log.WithError(err).Warn("failed to invalidate dashboard cache")
		}
	}

	if err != nil {
		entry.WithError(err).Error("overdue sweep failed")
		return
	}
	entry.Info("overdue sweep completed")
}
