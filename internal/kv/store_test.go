package kv

import (
	"context"
	"database/sql"
	"errors"
	"os"
	"path/filepath"
	"regexp"
	"sort"
	"sync"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"smartreads/internal/config"
)

func exerciseStore(t *testing.T, s Store) {
	t.Helper()
	ctx := context.Background()

	_, err := s.Get(ctx, UsersKey)
	require.ErrorIs(t, err, ErrNotFound)

	require.NoError(t, s.Set(ctx, UsersKey, `[]`))
	require.NoError(t, s.Set(ctx, SessionKey("p1"), `{"role":"admin"}`))
	require.NoError(t, s.Set(ctx, SessionKey("p2"), `{"role":"user"}`))

	v, err := s.Get(ctx, UsersKey)
	require.NoError(t, err)
	assert.Equal(t, `[]`, v)

	require.NoError(t, s.Set(ctx, UsersKey, `[{"id":"x"}]`))
	v, err = s.Get(ctx, UsersKey)
	require.NoError(t, err)
	assert.Equal(t, `[{"id":"x"}]`, v, "set overwrites")

	keys, err := s.Keys(ctx, SessionKeyPrefix+":")
	require.NoError(t, err)
	sort.Strings(keys)
	assert.Equal(t, []string{SessionKey("p1"), SessionKey("p2")}, keys)

	require.NoError(t, s.Delete(ctx, SessionKey("p1")))
	_, err = s.Get(ctx, SessionKey("p1"))
	require.ErrorIs(t, err, ErrNotFound)

	require.NoError(t, s.Delete(ctx, "never-set"), "deleting a missing key is not an error")

	counter := "counter"
	require.NoError(t, s.Update(ctx, counter, func(current string, found bool) (string, error) {
		assert.False(t, found)
		assert.Empty(t, current)
		return "1", nil
	}))
	require.NoError(t, s.Update(ctx, counter, func(current string, found bool) (string, error) {
		assert.True(t, found)
		return current + "1", nil
	}))
	v, err = s.Get(ctx, counter)
	require.NoError(t, err)
	assert.Equal(t, "11", v)

	boom := errors.New("boom")
	err = s.Update(ctx, counter, func(string, bool) (string, error) { return "lost", boom })
	require.ErrorIs(t, err, boom)
	v, err = s.Get(ctx, counter)
	require.NoError(t, err)
	assert.Equal(t, "11", v, "a failed update writes nothing")
}

// appendConcurrently has workers append one rune each to key through Update
// and returns the final value.
func appendConcurrently(t *testing.T, stores []Store, key string, perStore int) string {
	t.Helper()
	ctx := context.Background()

	var wg sync.WaitGroup
	for _, s := range stores {
		for i := 0; i < perStore; i++ {
			wg.Add(1)
			go func(s Store) {
				defer wg.Done()
				assert.NoError(t, s.Update(ctx, key, func(current string, _ bool) (string, error) {
					return current + "x", nil
				}))
			}(s)
		}
	}
	wg.Wait()

	v, err := stores[0].Get(ctx, key)
	require.NoError(t, err)
	return v
}

func TestMemoryStore(t *testing.T) {
	exerciseStore(t, NewMemoryStore())
}

func TestSQLiteStore(t *testing.T) {
	s, err := OpenSQLite(context.Background(), filepath.Join(t.TempDir(), "nested", "kv.db"))
	require.NoError(t, err)
	t.Cleanup(func() { _ = s.Close() })

	exerciseStore(t, s)
}

func TestMemoryStoreUpdateIsAtomic(t *testing.T) {
	s := NewMemoryStore()
	got := appendConcurrently(t, []Store{s}, UsersKey, 50)
	assert.Len(t, got, 50)
}

func TestSQLiteStoreUpdateAcrossHandles(t *testing.T) {
	ctx := context.Background()
	path := filepath.Join(t.TempDir(), "kv.db")

	first, err := OpenSQLite(ctx, path)
	require.NoError(t, err)
	t.Cleanup(func() { _ = first.Close() })
	second, err := OpenSQLite(ctx, path)
	require.NoError(t, err)
	t.Cleanup(func() { _ = second.Close() })

	// Two handles stand in for two server processes sharing one file.
	got := appendConcurrently(t, []Store{first, second}, UsersKey, 15)
	assert.Len(t, got, 30, "no update may be lost between handles")
}

func TestSQLiteStoreKeysDoesNotTreatUnderscoreAsWildcard(t *testing.T) {
	s, err := OpenSQLite(context.Background(), filepath.Join(t.TempDir(), "kv.db"))
	require.NoError(t, err)
	t.Cleanup(func() { _ = s.Close() })

	ctx := context.Background()
	require.NoError(t, s.Set(ctx, "smartreadsXuser:1", "v"))
	require.NoError(t, s.Set(ctx, SessionKey("1"), "v"))

	keys, err := s.Keys(ctx, SessionKeyPrefix)
	require.NoError(t, err)
	assert.Equal(t, []string{SessionKey("1")}, keys)
}

func TestSQLiteStoreGetPropagatesDriverErrors(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	mock.ExpectExec(regexp.QuoteMeta("CREATE TABLE IF NOT EXISTS kv_entries")).
		WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectQuery(regexp.QuoteMeta("SELECT value FROM kv_entries WHERE key = ?")).
		WithArgs(UsersKey).
		WillReturnError(sql.ErrConnDone)
	mock.ExpectQuery(regexp.QuoteMeta("SELECT value FROM kv_entries WHERE key = ?")).
		WithArgs(SessionKey("p")).
		WillReturnRows(sqlmock.NewRows([]string{"value"}))

	s, err := NewSQLiteStore(context.Background(), db)
	require.NoError(t, err)

	_, err = s.Get(context.Background(), UsersKey)
	assert.True(t, errors.Is(err, sql.ErrConnDone))

	_, err = s.Get(context.Background(), SessionKey("p"))
	assert.ErrorIs(t, err, ErrNotFound)

	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestRedisStore(t *testing.T) {
	addr := os.Getenv("SMARTREADS_TEST_REDIS")
	if addr == "" {
		t.Skip("SMARTREADS_TEST_REDIS not set")
	}
	client := redis.NewClient(&redis.Options{Addr: addr, DB: 15})
	t.Cleanup(func() { _ = client.Close() })
	require.NoError(t, client.FlushDB(context.Background()).Err())

	exerciseStore(t, NewRedisStore(client))
}

func TestPostgresStore(t *testing.T) {
	dsn := os.Getenv("SMARTREADS_TEST_POSTGRES")
	if dsn == "" {
		t.Skip("SMARTREADS_TEST_POSTGRES not set")
	}
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	pool, err := pgxpool.New(ctx, dsn)
	require.NoError(t, err)
	_, _ = pool.Exec(ctx, `DROP TABLE IF EXISTS kv_entries`)

	s, err := NewPostgresStore(ctx, pool)
	require.NoError(t, err)
	t.Cleanup(func() { _ = s.Close() })

	exerciseStore(t, s)
}

func TestOpen(t *testing.T) {
	s, err := Open(context.Background(), config.KVConfig{Backend: config.KVBackendMemory}, Backends{})
	require.NoError(t, err)
	assert.IsType(t, &MemoryStore{}, s)

	_, err = Open(context.Background(), config.KVConfig{Backend: config.KVBackendRedis}, Backends{})
	assert.Error(t, err)

	_, err = Open(context.Background(), config.KVConfig{Backend: "etcd"}, Backends{})
	assert.Error(t, err)
}

func TestProfileFromSessionKey(t *testing.T) {
	id, ok := ProfileFromSessionKey(SessionKey("abc"))
	assert.True(t, ok)
	assert.Equal(t, "abc", id)

	_, ok = ProfileFromSessionKey(UsersKey)
	assert.False(t, ok)
	_, ok = ProfileFromSessionKey(SessionKeyPrefix + ":")
	assert.False(t, ok)
}
