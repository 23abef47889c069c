package main

import (
	"context"
	"log/slog"
	"strings"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/valkey-io/valkey-go"

	"github.com/varad-more/Voyagent/internal/domain/session"
	"github.com/varad-more/Voyagent/internal/domain/trip"
	"github.com/varad-more/Voyagent/internal/infra/config"
	"github.com/varad-more/Voyagent/internal/infra/docstore"
	"github.com/varad-more/Voyagent/internal/infra/historyrepo"
	"github.com/varad-more/Voyagent/internal/infra/planner"
)

func provideSessionConfig(cfg *config.Config) session.Config {
	return session.Config{DocumentTTL: cfg.Session.TTL}
}

func provideShareConfig(cfg *config.Config) config.ShareConfig {
	return cfg.Share
}

func providePlannerClient(cfg *config.Config) (*planner.Client, error) {
	return planner.NewClient(cfg.Planner.BaseURL, cfg.Planner.APIKey, cfg.Planner.RequestTimeout, cfg.Planner.StreamTimeout)
}

// plannerGateway narrows the concrete client's stream return type to
// the session.EventSource interface.
type plannerGateway struct {
	*planner.Client
}

func (g plannerGateway) GenerateStream(ctx context.Context, req trip.Request) (session.EventSource, error) {
	return g.Client.GenerateStream(ctx, req)
}

func providePlannerGateway(client *planner.Client) session.PlannerClient {
	return plannerGateway{Client: client}
}

func provideDocumentStore(cfg *config.Config, logger *slog.Logger) session.Store {
	if cfg.Session.Valkey.Enabled {
		opt, err := buildValkeyOptions(cfg)
		if err != nil {
			logger.Error("invalid valkey configuration, falling back to memory store", "error", err)
			return docstore.NewMemoryStore()
		}
		client, err := valkey.NewClient(opt)
		if err != nil {
			logger.Error("failed to create valkey client, falling back to memory store", "error", err)
			return docstore.NewMemoryStore()
		}
		ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
		defer cancel()
		if err := client.Do(ctx, client.B().Ping().Build()).Error(); err != nil {
			logger.Error("valkey ping failed, falling back to memory store", "error", err)
		} else {
			logger.Info("valkey document store enabled", "addr", cfg.Session.Valkey.Addr)
			return docstore.NewValkeyStore(client, "voyagent")
		}
	}
	return docstore.NewMemoryStore()
}

func provideHistoryRepository(cfg *config.Config, logger *slog.Logger) session.HistoryRepository {
	fallback := historyrepo.NewMemoryRepository()
	dsn := strings.TrimSpace(cfg.History.DSN)
	if dsn == "" {
		logger.Info("history postgres dsn not set, using memory repository")
		return fallback
	}
	poolConfig, err := pgxpool.ParseConfig(dsn)
	if err != nil {
		logger.Error("invalid postgres dsn, using memory repository", "error", err)
		return fallback
	}
	if cfg.History.MaxConns > 0 {
		poolConfig.MaxConns = cfg.History.MaxConns
	}
	if cfg.History.MinConns > 0 {
		poolConfig.MinConns = cfg.History.MinConns
	}
	pool, err := pgxpool.NewWithConfig(context.Background(), poolConfig)
	if err != nil {
		logger.Error("failed to initialize postgres pool, using memory repository", "error", err)
		return fallback
	}
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := pool.Ping(ctx); err != nil {
		logger.Error("postgres ping failed, using memory repository", "error", err)
		pool.Close()
		return fallback
	}
	logger.Info("history postgres repository enabled")
	return historyrepo.NewPostgresRepository(pool)
}

func buildValkeyOptions(cfg *config.Config) (valkey.ClientOption, error) {
	var (
		opt valkey.ClientOption
		err error
	)
	if strings.Contains(cfg.Session.Valkey.Addr, "://") {
		opt, err = valkey.ParseURL(cfg.Session.Valkey.Addr)
	} else {
		opt = valkey.ClientOption{InitAddress: []string{cfg.Session.Valkey.Addr}}
	}
	if err != nil {
		return valkey.ClientOption{}, err
	}
	return opt, nil
}
