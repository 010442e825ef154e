package idempotency

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/nimasrn/trader-ledger/pkg/redis"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func setupService(t *testing.T) (*miniredis.Miniredis, *Service) {
	mr, err := miniredis.Run()
	require.NoError(t, err)
	t.Cleanup(mr.Close)

	rdb, err := redis.NewRedisAdapter(t.Name()+"-"+mr.Addr(), "", &redis.Options{
		Addrs: []string{mr.Addr()},
	})
	require.NoError(t, err)
	return mr, NewService(rdb, DefaultConfig())
}

func TestService_AcquireAndSucceed(t *testing.T) {
	mr, s := setupService(t)
	ctx := context.Background()

	claim, err := s.Acquire(ctx, "conv-1")
	require.NoError(t, err)
	assert.True(t, mr.Exists("idem:lock:conv-1"))

	_, err = s.Acquire(ctx, "conv-1")
	assert.ErrorIs(t, err, ErrLockAcquireFailed)

	require.NoError(t, s.MarkSuccess(ctx, claim, []byte(`{"ok":true}`)))
	assert.False(t, mr.Exists("idem:lock:conv-1"))

	_, err = s.Acquire(ctx, "conv-1")
	assert.ErrorIs(t, err, ErrAlreadyProcessed)

	res, err := s.Result(ctx, "conv-1")
	require.NoError(t, err)
	assert.JSONEq(t, `{"ok":true}`, string(res))

	done, err := s.IsProcessed(ctx, "conv-1")
	require.NoError(t, err)
	assert.True(t, done)
}

func TestService_ReleaseAllowsRetry(t *testing.T) {
	_, s := setupService(t)
	ctx := context.Background()

	claim, err := s.Acquire(ctx, "conv-2")
	require.NoError(t, err)
	require.NoError(t, s.Release(ctx, claim))
	require.NoError(t, s.Release(ctx, claim))

	claim, err = s.Acquire(ctx, "conv-2")
	require.NoError(t, err)
	assert.NotNil(t, claim)

	res, err := s.Result(ctx, "conv-2")
	require.NoError(t, err)
	assert.Nil(t, res)
}

func TestService_LockExpires(t *testing.T) {
	mr, s := setupService(t)
	ctx := context.Background()

	_, err := s.Acquire(ctx, "conv-3")
	require.NoError(t, err)

	mr.FastForward(31 * time.Second)

	_, err = s.Acquire(ctx, "conv-3")
	assert.NoError(t, err)
}

func TestService_ProcessedMarkerExpires(t *testing.T) {
	mr, s := setupService(t)
	ctx := context.Background()

	claim, err := s.Acquire(ctx, "conv-4")
	require.NoError(t, err)
	require.NoError(t, s.MarkSuccess(ctx, claim, nil))

	mr.FastForward(25 * time.Hour)

	done, err := s.IsProcessed(ctx, "conv-4")
	require.NoError(t, err)
	assert.False(t, done)
}
