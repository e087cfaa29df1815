package kv

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"vitrine/models"
)

func setupTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(&models.ContentEntry{}))
	return db
}

type fakeRedis struct {
	values map[string]string
}

func (f *fakeRedis) Get(ctx context.Context, key string) *redis.StringCmd {
	v, ok := f.values[key]
	if !ok {
		return redis.NewStringResult("", redis.Nil)
	}
	return redis.NewStringResult(v, nil)
}

func (f *fakeRedis) Set(ctx context.Context, key string, value interface{}, _ time.Duration) *redis.StatusCmd {
	switch v := value.(type) {
	case []byte:
		f.values[key] = string(v)
	case string:
		f.values[key] = v
	}
	return redis.NewStatusResult("OK", nil)
}

func (f *fakeRedis) Del(ctx context.Context, keys ...string) *redis.IntCmd {
	var n int64
	for _, k := range keys {
		if _, ok := f.values[k]; ok {
			delete(f.values, k)
			n++
		}
	}
	return redis.NewIntResult(n, nil)
}

func backends(t *testing.T) map[string]Backend {
	fileBackend, err := NewFile(t.TempDir())
	require.NoError(t, err)

	return map[string]Backend{
		"memory": NewMemory(),
		"gorm":   NewGorm(setupTestDB(t)),
		"file":   fileBackend,
		"redis":  NewRedis(&fakeRedis{values: map[string]string{}}, "vitrine:"),
	}
}

func TestBackends_GetMissing(t *testing.T) {
	for name, b := range backends(t) {
		t.Run(name, func(t *testing.T) {
			_, err := b.Get(context.Background(), "missing")
			assert.ErrorIs(t, err, ErrNotFound)
		})
	}
}

func TestBackends_SetGetOverwriteDelete(t *testing.T) {
	ctx := context.Background()
	for name, b := range backends(t) {
		t.Run(name, func(t *testing.T) {
			require.NoError(t, b.Set(ctx, "portfolio-content", []byte(`{"a":1}`)))

			got, err := b.Get(ctx, "portfolio-content")
			require.NoError(t, err)
			assert.JSONEq(t, `{"a":1}`, string(got))

			require.NoError(t, b.Set(ctx, "portfolio-content", []byte(`{"a":2}`)))
			got, err = b.Get(ctx, "portfolio-content")
			require.NoError(t, err)
			assert.JSONEq(t, `{"a":2}`, string(got))

			require.NoError(t, b.Delete(ctx, "portfolio-content"))
			_, err = b.Get(ctx, "portfolio-content")
			assert.ErrorIs(t, err, ErrNotFound)

			// deleting twice is not an error
			assert.NoError(t, b.Delete(ctx, "portfolio-content"))
		})
	}
}

func TestMemory_CopiesValues(t *testing.T) {
	m := NewMemory()
	value := []byte("abc")
	require.NoError(t, m.Set(context.Background(), "k", value))
	value[0] = 'x'

	got, err := m.Get(context.Background(), "k")
	require.NoError(t, err)
	assert.Equal(t, "abc", string(got))
}

func TestFile_KeyWithSlashStaysInDir(t *testing.T) {
	dir := t.TempDir()
	f, err := NewFile(dir)
	require.NoError(t, err)

	assert.Equal(t, dir, filepath.Dir(f.path("../escape")))
}
