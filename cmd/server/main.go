package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/jmoiron/sqlx"
	_ "github.com/lib/pq"
	"github.com/redis/go-redis/v9"
	"github.com/sirupsen/logrus"

	"github.com/segyhp/sacco-ledger/internal/auth"
	"github.com/segyhp/sacco-ledger/internal/cache"
	"github.com/segyhp/sacco-ledger/internal/config"
	"github.com/segyhp/sacco-ledger/internal/events"
	"github.com/segyhp/sacco-ledger/internal/handler"
	"github.com/segyhp/sacco-ledger/internal/logger"
	"github.com/segyhp/sacco-ledger/internal/repository"
	"github.com/segyhp/sacco-ledger/internal/service"
)

func main() {
	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		logrus.WithError(err).Fatal("failed to load configuration")
	}

	log := logger.New(cfg.Logging)

	if cfg.Database.AutoMigrate {
		if err := repository.RunMigrations(cfg.Database.URL); err != nil {
			log.WithError(err).Fatal("failed to run migrations")
		}
		log.Info("database migrations applied")
	}

	// Initialize database
	db, err := initDB(cfg)
	if err != nil {
		log.WithError(err).Fatal("failed to initialize database")
	}
	defer db.Close()

	// Initialize Redis
	var (
		dashboardCache cache.DashboardCache = cache.Noop{}
		redisPinger    handler.RedisPinger
	)
	if cfg.Redis.Enabled {
		redisClient := initRedis(cfg)
		defer redisClient.Close()
		redisPinger = redisClient
		if cfg.Dashboard.CacheTTL > 0 {
			dashboardCache = cache.NewRedisDashboardCache(redisClient, cfg.Dashboard.CacheTTL)
		}
	}

	publisher := initPublisher(cfg, log)
	defer publisher.Close()

	store := repository.NewStore(db)
	repos := store.Repositories()

	// Initialize services
	memberService := service.NewMemberService(repos, store, publisher, log)
	loanService := service.NewLoanService(repos, store, publisher, log, cfg)
	ledgerService := service.NewLedgerService(repos, store, publisher, log)
	unfreezeService := service.NewUnfreezeService(repos, store, publisher, log)
	dashboardService := service.NewDashboardService(repos, dashboardCache, log)

	router := handler.NewRouter(handler.Handlers{
		Health:    handler.NewHealthHandler(db, redisPinger, cfg.Health.Timeout),
		Members:   handler.NewMemberHandler(memberService, ledgerService),
		Loans:     handler.NewLoanHandler(loanService),
		Ledger:    handler.NewLedgerHandler(ledgerService),
		Unfreeze:  handler.NewUnfreezeHandler(unfreezeService),
		Dashboard: handler.NewDashboardHandler(dashboardService),
	}, handler.RouterConfig{
		Tokens:         auth.NewTokens(cfg.Auth.JWTSecret, cfg.Auth.Issuer, cfg.Auth.TokenTTL),
		Cache:          dashboardCache,
		Log:            log,
		AllowedOrigins: cfg.Server.AllowedOrigins,
	})

	server := &http.Server{
		Addr:         cfg.Address(),
		Handler:      router,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
	}

	// Start server in a goroutine
	go func() {
		log.WithField("addr", server.Addr).Info("server starting")
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.WithError(err).Fatal("server failed to start")
		}
	}()

	// Wait for interrupt signal to gracefully shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	log.Info("shutting down server")

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := server.Shutdown(ctx); err != nil {
		log.WithError(err).Error("server forced to shutdown")
		return
	}

	log.Info("server exited")
}

func initDB(cfg *config.Config) (*sqlx.DB, error) {
	db, err := sqlx.Connect("postgres", cfg.Database.URL)
	if err != nil {
		return nil, err
	}

	db.SetMaxOpenConns(cfg.Database.MaxOpenConns)
	db.SetMaxIdleConns(cfg.Database.MaxIdleConns)
	db.SetConnMaxLifetime(cfg.Database.ConnMaxLifetime)

	return db, nil
}

func initRedis(cfg *config.Config) *redis.Client {
	return redis.NewClient(&redis.Options{
		Addr:     cfg.Redis.Addr,
		Password: cfg.Redis.Password,
		DB:       cfg.Redis.DB,
	})
}

// initPublisher connects to the broker when one is configured. Without a
// broker, or when it cannot be reached, events are dropped.
func initPublisher(cfg *config.Config, log logrus.FieldLogger) events.Publisher {
	if cfg.Events.AMQPURL == "" {
		return events.Noop{}
	}

	publisher, err := events.NewAMQPPublisher(cfg.Events.AMQPURL, cfg.Events.Exchange, log)
	if err != nil {
		log.WithError(err).Warn("event broker unavailable, events will not be published")
		return events.Noop{}
	}
	return publisher
}
