package repository

import (
	"context"
	"fmt"
	"path/filepath"
	"sort"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"smartreads/internal/kv"
	"smartreads/internal/models"
)

func TestUserRepositoryCreateAndFind(t *testing.T) {
	ctx := context.Background()
	repo := NewUserRepository(kv.NewMemoryStore())

	users, err := repo.List(ctx)
	require.NoError(t, err)
	assert.Empty(t, users)

	u := models.User{ID: "u1", FirstName: "Ada", LastName: "Lovelace", Email: "ada@example.com", Role: models.UserRoleAdmin}
	require.NoError(t, repo.Create(ctx, u))

	got, err := repo.FindByEmail(ctx, "ada@example.com")
	require.NoError(t, err)
	assert.Equal(t, u.ID, got.ID)

	_, err = repo.FindByEmail(ctx, "ADA@example.com")
	assert.ErrorIs(t, err, ErrUserNotFound, "email match is exact")
}

func TestUserRepositoryRejectsDuplicateEmail(t *testing.T) {
	ctx := context.Background()
	repo := NewUserRepository(kv.NewMemoryStore())

	require.NoError(t, repo.Create(ctx, models.User{ID: "a", Email: "x@y.z"}))
	err := repo.Create(ctx, models.User{ID: "b", Email: "x@y.z"})
	assert.ErrorIs(t, err, ErrEmailTaken)

	users, err := repo.List(ctx)
	require.NoError(t, err)
	assert.Len(t, users, 1)
}

func TestUserRepositoryPersistsWholeList(t *testing.T) {
	ctx := context.Background()
	store := kv.NewMemoryStore()
	repo := NewUserRepository(store)

	require.NoError(t, repo.Create(ctx, models.User{ID: "a", Email: "a@x.io"}))
	require.NoError(t, repo.Create(ctx, models.User{ID: "b", Email: "b@x.io"}))

	raw, err := store.Get(ctx, kv.UsersKey)
	require.NoError(t, err)
	assert.Contains(t, raw, `"email":"a@x.io"`)
	assert.Contains(t, raw, `"email":"b@x.io"`)

	// A second repository over the same store sees the same users.
	other := NewUserRepository(store)
	users, err := other.List(ctx)
	require.NoError(t, err)
	assert.Len(t, users, 2)
}

func TestUserRepositoryConcurrentCreates(t *testing.T) {
	ctx := context.Background()
	repo := NewUserRepository(kv.NewMemoryStore())

	var wg sync.WaitGroup
	for i := 0; i < 20; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			email := string(rune('a'+i)) + "@x.io"
			assert.NoError(t, repo.Create(ctx, models.User{ID: email, Email: email}))
		}(i)
	}
	wg.Wait()

	users, err := repo.List(ctx)
	require.NoError(t, err)
	assert.Len(t, users, 20)
}

func TestUserRepositoryCreatesFromTwoInstancesSharingAFile(t *testing.T) {
	ctx := context.Background()
	path := filepath.Join(t.TempDir(), "users.db")

	var repos []*UserRepository
	for i := 0; i < 2; i++ {
		store, err := kv.OpenSQLite(ctx, path)
		require.NoError(t, err)
		t.Cleanup(func() { _ = store.Close() })
		repos = append(repos, NewUserRepository(store))
	}

	var wg sync.WaitGroup
	for i := 0; i < 10; i++ {
		for r, repo := range repos {
			wg.Add(1)
			go func(repo *UserRepository, email string) {
				defer wg.Done()
				assert.NoError(t, repo.Create(ctx, models.User{ID: email, Email: email}))
			}(repo, fmt.Sprintf("u%d-%d@x.io", r, i))
		}
	}
	wg.Wait()

	for _, repo := range repos {
		users, err := repo.List(ctx)
		require.NoError(t, err)
		assert.Len(t, users, 20, "every signup survives both writers")
	}

	err := repos[1].Create(ctx, models.User{ID: "dup", Email: "u0-0@x.io"})
	assert.ErrorIs(t, err, ErrEmailTaken, "duplicates are seen across instances")
}

func TestUserRepositoryCreateRejectsCorruptList(t *testing.T) {
	ctx := context.Background()
	store := kv.NewMemoryStore()
	require.NoError(t, store.Set(ctx, kv.UsersKey, "{not json"))

	err := NewUserRepository(store).Create(ctx, models.User{ID: "a", Email: "a@x.io"})
	require.Error(t, err)

	raw, err := store.Get(ctx, kv.UsersKey)
	require.NoError(t, err)
	assert.Equal(t, "{not json", raw, "corrupt list is left untouched")
}

func TestUserRepositoryCorruptJSON(t *testing.T) {
	ctx := context.Background()
	store := kv.NewMemoryStore()
	require.NoError(t, store.Set(ctx, kv.UsersKey, "{not json"))

	_, err := NewUserRepository(store).List(ctx)
	require.Error(t, err)
	assert.Contains(t, err.Error(), kv.UsersKey)
}

func TestSessionRepository(t *testing.T) {
	ctx := context.Background()
	repo := NewSessionRepository(kv.NewMemoryStore())

	_, err := repo.Get(ctx, "p1")
	require.ErrorIs(t, err, ErrSessionNotFound)

	login := time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC)
	require.NoError(t, repo.Save(ctx, "p1", models.Session{Role: models.UserRoleAdmin, LoginTime: login}))
	require.NoError(t, repo.Save(ctx, "p2", models.Session{Role: models.UserRoleUser, LoginTime: login}))

	s, err := repo.Get(ctx, "p1")
	require.NoError(t, err)
	assert.Equal(t, models.UserRoleAdmin, s.Role)
	assert.True(t, login.Equal(s.LoginTime))

	// Saving again overwrites.
	require.NoError(t, repo.Save(ctx, "p1", models.Session{Role: models.UserRoleUser, LoginTime: login}))
	s, err = repo.Get(ctx, "p1")
	require.NoError(t, err)
	assert.Equal(t, models.UserRoleUser, s.Role)

	profiles, err := repo.Profiles(ctx)
	require.NoError(t, err)
	sort.Strings(profiles)
	assert.Equal(t, []string{"p1", "p2"}, profiles)

	require.NoError(t, repo.Delete(ctx, "p1"))
	_, err = repo.Get(ctx, "p1")
	assert.ErrorIs(t, err, ErrSessionNotFound)
}
