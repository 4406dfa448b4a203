package main

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"github.com/voltai/billing-service/internal/config"
	"github.com/voltai/billing-service/internal/observability"
	"github.com/voltai/billing-service/internal/persistence"
	"github.com/voltai/billing-service/internal/repository"
)

// bootstrap holds the collaborators every subcommand needs.
type bootstrap struct {
	cfg       *config.Config
	logger    *zap.Logger
	pg        *persistence.Postgres
	customers repository.CustomerRepository
	employees repository.EmployeeRepository
	database  string
}

func newBootstrap(ctx context.Context) (*bootstrap, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, fmt.Errorf("load config: %w", err)
	}

	logger, err := observability.NewLogger(cfg.Logger)
	if err != nil {
		return nil, fmt.Errorf("init logger: %w", err)
	}

	rt := &bootstrap{cfg: cfg, logger: logger, pg: &persistence.Postgres{}}
	if !cfg.Storage.UsePostgres(cfg.Postgres) {
		rt.customers = repository.NewMemoryCustomerRepository()
		rt.employees = repository.NewMemoryEmployeeRepository()
		rt.database = "In-memory (temporary)"
		logger.Info("using in-memory storage")
		return rt, nil
	}

	pg, err := persistence.NewPostgres(ctx, cfg.Postgres, logger)
	if err != nil {
		_ = logger.Sync()
		return nil, fmt.Errorf("connect postgres: %w", err)
	}
	rt.pg = pg
	rt.customers = repository.NewCustomerRepository(pg.Pool)
	rt.employees = repository.NewEmployeeRepository(pg.Pool)
	rt.database = "PostgreSQL"
	return rt, nil
}

func (rt *bootstrap) migrate(ctx context.Context) error {
	if !rt.pg.Enabled() {
		return fmt.Errorf("migrations require postgres storage")
	}
	return persistence.RunMigrations(ctx, rt.pg.Pool, rt.cfg.Postgres.MigrationsDir, rt.logger)
}

func (rt *bootstrap) close() {
	rt.pg.Close()
	_ = rt.logger.Sync()
}
