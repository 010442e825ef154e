package config

import (
	"time"

	"github.com/Netflix/go-env"
	"github.com/joho/godotenv"
	"github.com/nimasrn/trader-ledger/pkg/logger"
	"github.com/pkg/errors"
)

const ConfigTagName = "env"

const (
	BackendPostgres = "postgres"
	BackendRedis    = "redis"
)

var config *Config

// Config holds every configuration value of the ledger services. Nothing else
// reads the environment directly.
type Config struct {
	AppEnv   string `env:"APP_ENV,default=dev"`
	AppName  string `env:"APP_NAME,default=trader_ledger"`
	AppDebug bool   `env:"APP_DEBUG,default=false"`

	HttpListenAddr     string        `env:"HTTP_LISTEN_ADDR,default=:8080"`
	HttpRequestTimeout time.Duration `env:"HTTP_REQUEST_TIMEOUT,default=5s"`

	StoreBackend string `env:"STORE_BACKEND,default=postgres"`

	PostgresReadHost     string `env:"POSTGRES_READ_HOST"`
	PostgresReadPort     string `env:"POSTGRES_READ_PORT,default=5432"`
	PostgresReadUser     string `env:"POSTGRES_READ_USER"`
	PostgresReadPassword string `env:"POSTGRES_READ_PASSWORD"`
	PostgresReadDatabase string `env:"POSTGRES_READ_DBNAME"`

	PostgresWriteHost     string `env:"POSTGRES_WRITE_HOST"`
	PostgresWritePort     string `env:"POSTGRES_WRITE_PORT,default=5432"`
	PostgresWriteUser     string `env:"POSTGRES_WRITE_USER"`
	PostgresWritePassword string `env:"POSTGRES_WRITE_PASSWORD"`
	PostgresWriteDatabase string `env:"POSTGRES_WRITE_DBNAME"`

	MigrationsDir string `env:"MIGRATIONS_DIR,default=./migrations"`

	RedisAddr               string `env:"REDIS_ADDR,default=localhost:6379"`
	RedisUsername           string `env:"REDIS_USER"`
	RedisPassword           string `env:"REDIS_PASS"`
	RedisDatabase           int    `env:"REDIS_DATABASE"`
	RedisUniversalKeyPrefix string `env:"REDIS_UNIVERSAL_KEY_PREFIX,default=ledger:"`

	PromNamespace string `env:"PROM_NAMESPACE,default=trader_ledger"`
	MetricsAddr   string `env:"METRICS_ADDR,default=:9100"`
	MetricsURI    string `env:"METRICS_URI,default=/metrics"`

	LogLevel string `env:"LOG_LEVEL"`

	ReconcileInterval time.Duration `env:"RECONCILE_INTERVAL,default=10m"`
	ReconcileWorkers  int           `env:"RECONCILE_WORKERS,default=4"`
	ReconcileRepair   bool          `env:"RECONCILE_REPAIR,default=false"`

	IdempotencyTTL time.Duration `env:"IDEMPOTENCY_TTL,default=24h"`

	DefaultCurrency string `env:"DEFAULT_CURRENCY,default=TRY"`
}

func Load(path string) error {
	logger.Info("loading configs..", "path", path)
	c := &Config{}
	var err error
	if path != "" {
		logger.Info("trying to publish env from file", "path", path)
		err = godotenv.Load(path)
		if err != nil {
			return errors.Wrapf(err, "failed to load configuration file %s", path)
		}
	}

	_, err = env.UnmarshalFromEnviron(c)
	if err != nil {
		return errors.Wrap(err, "failed to map env variables to Configuration object")
	}

	if err = c.Validate(); err != nil {
		return err
	}

	if c.LogLevel != "" && !logger.SetLevel(c.LogLevel) {
		logger.Warn("ignoring unknown log level", "level", c.LogLevel)
	}

	config = c
	return nil
}

func (c *Config) Validate() error {
	switch c.StoreBackend {
	case BackendPostgres:
		if c.PostgresWriteHost == "" || c.PostgresWriteDatabase == "" {
			return errors.New("postgres backend requires POSTGRES_WRITE_HOST and POSTGRES_WRITE_DBNAME")
		}
		if c.PostgresReadHost == "" {
			c.PostgresReadHost = c.PostgresWriteHost
			c.PostgresReadPort = c.PostgresWritePort
			c.PostgresReadUser = c.PostgresWriteUser
			c.PostgresReadPassword = c.PostgresWritePassword
			c.PostgresReadDatabase = c.PostgresWriteDatabase
		}
	case BackendRedis:
		if c.RedisAddr == "" {
			return errors.New("redis backend requires REDIS_ADDR")
		}
	default:
		return errors.Errorf("unknown STORE_BACKEND %q", c.StoreBackend)
	}
	if c.ReconcileWorkers <= 0 {
		c.ReconcileWorkers = 1
	}
	return nil
}

func Get() *Config {
	if config == nil {
		logger.Panic("Config is not initialized")
	}
	return config
}

// Set replaces the loaded configuration; used by tests and tools that build
// a Config by hand.
func Set(c *Config) {
	config = c
}
