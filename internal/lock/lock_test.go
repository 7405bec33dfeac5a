package lock

import (
	"context"
	"testing"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNoop_AlwaysAcquires(t *testing.T) {
	var l Locker = Noop{}
	for i := 0; i < 3; i++ {
		release, err := l.Acquire(context.Background(), "grading", time.Second)
		require.NoError(t, err)
		release()
	}
}

func TestRedisLocker_UnreachableServer(t *testing.T) {
	l := NewRedisLocker(&redis.Options{
		Addr:        "127.0.0.1:1",
		DialTimeout: 100 * time.Millisecond,
		MaxRetries:  -1,
	}, "savant:")
	defer func() { _ = l.Close() }()

	release, err := l.Acquire(context.Background(), "grading", time.Second)
	assert.Error(t, err)
	assert.NotErrorIs(t, err, ErrNotAcquired)
	assert.Nil(t, release)
}
