package cache

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/go-redis/redismock/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRedisCacheGetSet(t *testing.T) {
	db, mock := redismock.NewClientMock()
	c := NewRedisCache(db)
	ctx := context.Background()
	key := Key("0x2::sui::SUI")

	mock.ExpectSet(key, []byte(`{"overallScore":0.7}`), time.Minute).SetVal("OK")
	require.NoError(t, c.Set(ctx, key, []byte(`{"overallScore":0.7}`), time.Minute))

	mock.ExpectGet(key).SetVal(`{"overallScore":0.7}`)
	val, ok := c.Get(ctx, key)
	require.True(t, ok)
	assert.JSONEq(t, `{"overallScore":0.7}`, string(val))

	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestRedisCacheMissAndError(t *testing.T) {
	db, mock := redismock.NewClientMock()
	c := NewRedisCache(db)
	ctx := context.Background()

	mock.ExpectGet(Key("missing")).RedisNil()
	_, ok := c.Get(ctx, Key("missing"))
	assert.False(t, ok)

	mock.ExpectGet(Key("down")).SetErr(errors.New("connection refused"))
	_, ok = c.Get(ctx, Key("down"))
	assert.False(t, ok)

	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestMemoryCacheExpires(t *testing.T) {
	m := NewMemoryCache()
	now := time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)
	m.now = func() time.Time { return now }
	ctx := context.Background()

	require.NoError(t, m.Set(ctx, "k", []byte("v"), time.Minute))
	val, ok := m.Get(ctx, "k")
	require.True(t, ok)
	assert.Equal(t, "v", string(val))

	now = now.Add(2 * time.Minute)
	_, ok = m.Get(ctx, "k")
	assert.False(t, ok)
}

func TestNewWithoutRedisURLUsesMemory(t *testing.T) {
	_, ok := New("").(*MemoryCache)
	assert.True(t, ok)
	_, ok = New("::not a url").(*MemoryCache)
	assert.True(t, ok)
}
