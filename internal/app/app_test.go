package app

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Sternrassler/bookreview/internal/config"
	"github.com/Sternrassler/bookreview/internal/testutil"
	"github.com/Sternrassler/bookreview/pkg/logging"
)

func TestOpen_RedisUnreachable(t *testing.T) {
	mr, _ := testutil.NewRedis(t)
	addr := mr.Addr()
	mr.Close()

	cfg := config.Config{RedisURL: addr, MongoURI: "mongodb://127.0.0.1:1", MongoDB: "bookreview"}

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	a, err := Open(ctx, cfg, logging.Nop())
	require.Error(t, err)
	assert.Nil(t, a)
	assert.Contains(t, err.Error(), "connect to redis")
	assert.Contains(t, err.Error(), "redis ping", "startup ping goes through the cache manager")
}

func TestOpen_BadRedisURL(t *testing.T) {
	_, err := Open(context.Background(), config.Config{RedisURL: "ftp://x"}, logging.Nop())
	assert.Error(t, err)
}

func TestOpen_MongoUnreachable(t *testing.T) {
	mr, _ := testutil.NewRedis(t)

	cfg := config.Config{
		RedisURL: mr.Addr(),
		MongoURI: "mongodb://127.0.0.1:1/?serverSelectionTimeoutMS=200&connectTimeoutMS=200",
		MongoDB:  "bookreview",
	}

	a, err := Open(context.Background(), cfg, logging.Nop())
	require.Error(t, err)
	assert.Nil(t, a)
	assert.Contains(t, err.Error(), "mongo")
}

func TestClose_PartialApp(t *testing.T) {
	var a App
	assert.NoError(t, a.Close(context.Background()))

	_, client := testutil.NewRedis(t)
	a.Redis = client
	assert.NoError(t, a.Close(context.Background()))
	assert.Nil(t, a.Redis)
}
