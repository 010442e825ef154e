package app

import (
	"context"
	"os"
	"strings"

	"github.com/nimasrn/trader-ledger/internal/config"
	"github.com/nimasrn/trader-ledger/internal/idempotency"
	"github.com/nimasrn/trader-ledger/internal/kvstore"
	"github.com/nimasrn/trader-ledger/internal/repository"
	"github.com/nimasrn/trader-ledger/internal/services"
	"github.com/nimasrn/trader-ledger/pkg/logger"
	"github.com/nimasrn/trader-ledger/pkg/pg"
	"github.com/nimasrn/trader-ledger/pkg/redis"
	"github.com/pkg/errors"
)

// App holds the ledger service wired to the configured backend.
type App struct {
	Service *services.LedgerService
	pingers []func(ctx context.Context) error
}

// New connects to the configured store. Redis backs the idempotency guard
// whatever the store is; with the postgres store it is optional.
func New(c *config.Config) (*App, error) {
	a := &App{}

	var (
		store services.Store
		rdb   redis.RedisAdapter
		err   error
	)

	switch c.StoreBackend {
	case config.BackendPostgres:
		read, write := PostgresConfigs(c)
		db, err := pg.CreateReadWrite(read, write, c.AppDebug)
		if err != nil {
			return nil, errors.Wrap(err, "failed connecting to pg")
		}
		store = repository.NewStore(db)
		a.pingers = append(a.pingers, db.Ping)

		rdb, err = NewRedis(c)
		if err != nil {
			logger.Warn("redis unavailable, idempotency keys are ignored", "error", err)
			rdb = nil
		}
	case config.BackendRedis:
		rdb, err = NewRedis(c)
		if err != nil {
			return nil, errors.Wrap(err, "failed connecting to redis")
		}
		store = kvstore.NewStore(rdb)
	default:
		return nil, errors.Errorf("unknown store backend %q", c.StoreBackend)
	}

	var guard services.IdempotencyGuard
	if rdb != nil {
		cfg := idempotency.DefaultConfig()
		if c.IdempotencyTTL > 0 {
			cfg.ProcessedTTL = c.IdempotencyTTL
		}
		guard = idempotency.NewService(rdb, cfg)
		a.pingers = append(a.pingers, func(ctx context.Context) error {
			return rdb.Client().Ping(ctx).Err()
		})
	}

	a.Service = services.NewLedgerService(store, guard, c.DefaultCurrency)
	logger.Info("ledger wired", "backend", c.StoreBackend, "idempotency", guard != nil)
	return a, nil
}

// Ping checks every backing connection.
func (a *App) Ping(ctx context.Context) error {
	for _, p := range a.pingers {
		if err := p(ctx); err != nil {
			return err
		}
	}
	return nil
}

func PostgresConfigs(c *config.Config) (read pg.Config, write pg.Config) {
	read = pg.Config{
		User:     c.PostgresReadUser,
		Host:     c.PostgresReadHost,
		Port:     c.PostgresReadPort,
		Password: c.PostgresReadPassword,
		Database: c.PostgresReadDatabase,
	}
	write = pg.Config{
		User:     c.PostgresWriteUser,
		Host:     c.PostgresWriteHost,
		Port:     c.PostgresWritePort,
		Password: c.PostgresWritePassword,
		Database: c.PostgresWriteDatabase,
	}
	return read, write
}

func NewRedis(c *config.Config) (redis.RedisAdapter, error) {
	return redis.NewRedisAdapter("default", c.RedisUniversalKeyPrefix, &redis.Options{
		Addrs:      []string{c.RedisAddr},
		ClientName: c.AppName,
		DB:         c.RedisDatabase,
		Username:   c.RedisUsername,
		Password:   c.RedisPassword,
	})
}

// EnvPath returns the file passed as --env=path, or "" when absent or unreadable.
func EnvPath(args []string) string {
	for _, v := range args {
		if strings.HasPrefix(v, "--env=") {
			p := strings.TrimPrefix(v, "--env=")
			if _, err := os.Stat(p); err != nil {
				logger.Error("failed to open the passed env file", "path", p, "error", err)
				return ""
			}
			return p
		}
	}
	return ""
}
