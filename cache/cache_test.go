package cache

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type keyValueCache interface {
	Get(key string) (string, bool, error)
	Set(key, value string) error
	Delete(key string) error
}

func newSQLiteCache(t *testing.T, path string) *SQLiteCache {
	t.Helper()
	c, err := NewSQLiteCache(path)
	require.NoError(t, err)
	t.Cleanup(func() { c.Close() })
	return c
}

func TestCaches(t *testing.T) {
	caches := map[string]func(t *testing.T) keyValueCache{
		"memory": func(t *testing.T) keyValueCache { return NewMemoryCache() },
		"sqlite": func(t *testing.T) keyValueCache {
			return newSQLiteCache(t, filepath.Join(t.TempDir(), "nested", "cache.db"))
		},
	}

	for name, newCache := range caches {
		t.Run(name, func(t *testing.T) {
			c := newCache(t)

			_, ok, err := c.Get("portfolioProjects")
			require.NoError(t, err)
			assert.False(t, ok)

			require.NoError(t, c.Set("portfolioProjects", "[]"))
			require.NoError(t, c.Set("portfolioProjects", `[{"localId":"1"}]`))

			value, ok, err := c.Get("portfolioProjects")
			require.NoError(t, err)
			assert.True(t, ok)
			assert.Equal(t, `[{"localId":"1"}]`, value)

			require.NoError(t, c.Delete("portfolioProjects"))
			require.NoError(t, c.Delete("portfolioProjects"))
			_, ok, err = c.Get("portfolioProjects")
			require.NoError(t, err)
			assert.False(t, ok)
		})
	}
}

func TestSQLiteCache_SurvivesReopen(t *testing.T) {
	path := filepath.Join(t.TempDir(), "cache.db")

	first, err := NewSQLiteCache(path)
	require.NoError(t, err)
	require.NoError(t, first.Set("isAdminAuth", "true"))
	require.NoError(t, first.Close())

	second := newSQLiteCache(t, path)
	value, ok, err := second.Get("isAdminAuth")
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, "true", value)
}

func TestSQLiteCache_InMemory(t *testing.T) {
	c := newSQLiteCache(t, ":memory:")
	require.NoError(t, c.Set("k", "v"))
	value, ok, err := c.Get("k")
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, "v", value)
}
