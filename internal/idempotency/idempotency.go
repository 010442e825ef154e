package idempotency

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/nimasrn/trader-ledger/pkg/logger"
	"github.com/nimasrn/trader-ledger/pkg/redis"
)

var (
	ErrAlreadyProcessed  = errors.New("request already processed")
	ErrLockAcquireFailed = errors.New("request is being processed")
)

type Config struct {
	LockTTL time.Duration

	ProcessedTTL time.Duration

	LockKeyPrefix string

	ProcessedKeyPrefix string
}

func DefaultConfig() Config {
	return Config{
		LockTTL:            30 * time.Second,
		ProcessedTTL:       24 * time.Hour,
		LockKeyPrefix:      "idem:lock:",
		ProcessedKeyPrefix: "idem:done:",
	}
}

// Service makes a keyed operation run at most once within ProcessedTTL. The
// result of the first successful run is kept and handed to later callers.
type Service struct {
	redis  redis.RedisAdapter
	config Config
}

func NewService(redisAdapter redis.RedisAdapter, config Config) *Service {
	return &Service{
		redis:  redisAdapter,
		config: config,
	}
}

type Claim struct {
	Key          string
	lockAcquired bool
}

// Acquire claims key. It fails with ErrAlreadyProcessed when a result is
// stored for key and with ErrLockAcquireFailed while another caller holds it.
func (s *Service) Acquire(ctx context.Context, key string) (*Claim, error) {
	exists, err := s.redis.Exist(ctx, s.config.ProcessedKeyPrefix+key)
	if err != nil {
		logger.Warn("failed to check processed marker", "key", key, "error", err)
	} else if exists > 0 {
		logger.Info("request already processed", "key", key)
		return nil, ErrAlreadyProcessed
	}

	lockValue := []byte(fmt.Sprintf("%d", time.Now().UnixNano()))
	acquired, err := s.redis.SetNX(ctx, s.config.LockKeyPrefix+key, lockValue, s.config.LockTTL)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrLockAcquireFailed, err)
	}
	if !acquired {
		logger.Info("lock already held", "key", key)
		return nil, ErrLockAcquireFailed
	}

	logger.Debug("idempotency lock acquired", "key", key, "lock_ttl", s.config.LockTTL)
	return &Claim{Key: key, lockAcquired: true}, nil
}

// MarkSuccess stores result under the processed marker and drops the lock.
func (s *Service) MarkSuccess(ctx context.Context, c *Claim, result []byte) error {
	if result == nil {
		result = []byte{}
	}
	if err := s.redis.Set(ctx, s.config.ProcessedKeyPrefix+c.Key, result, s.config.ProcessedTTL); err != nil {
		logger.Error("failed to store processed marker", "key", c.Key, "error", err)
		return fmt.Errorf("failed to mark as processed: %w", err)
	}
	return s.Release(ctx, c)
}

// Release drops the lock without a result so the request can be retried.
func (s *Service) Release(ctx context.Context, c *Claim) error {
	if c == nil || !c.lockAcquired {
		return nil
	}
	if err := s.redis.Del(ctx, s.config.LockKeyPrefix+c.Key); err != nil {
		logger.Warn("failed to release lock", "key", c.Key, "error", err)
		return err
	}
	c.lockAcquired = false
	return nil
}

// Result returns the stored result of a processed key.
func (s *Service) Result(ctx context.Context, key string) ([]byte, error) {
	raw, err := s.redis.Get(ctx, s.config.ProcessedKeyPrefix+key)
	if err != nil {
		if errors.Is(err, redis.NilError) {
			return nil, nil
		}
		return nil, err
	}
	return raw, nil
}

func (s *Service) IsProcessed(ctx context.Context, key string) (bool, error) {
	exists, err := s.redis.Exist(ctx, s.config.ProcessedKeyPrefix+key)
	if err != nil {
		return false, err
	}
	return exists > 0, nil
}
