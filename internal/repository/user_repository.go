package repository

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"smartreads/internal/kv"
	"smartreads/internal/models"
)

var (
	ErrUserNotFound = errors.New("user not found")
	ErrEmailTaken   = errors.New("email already registered")
)

// UserRepository keeps every registered user in one JSON array under
// kv.UsersKey. Writes rewrite the whole list through kv.Store.Update, so
// instances sharing a backend never drop each other's users.
type UserRepository struct {
	store kv.Store
}

func NewUserRepository(store kv.Store) *UserRepository {
	return &UserRepository{store: store}
}

func (r *UserRepository) List(ctx context.Context) ([]models.User, error) {
	raw, err := r.store.Get(ctx, kv.UsersKey)
	if errors.Is(err, kv.ErrNotFound) {
		return []models.User{}, nil
	}
	if err != nil {
		return nil, err
	}

	var users []models.User
	if err := json.Unmarshal([]byte(raw), &users); err != nil {
		return nil, fmt.Errorf("decode %s: %w", kv.UsersKey, err)
	}
	if users == nil {
		users = []models.User{}
	}
	return users, nil
}

// Create appends user to the list. Emails are compared exactly.
func (r *UserRepository) Create(ctx context.Context, user models.User) error {
	return r.store.Update(ctx, kv.UsersKey, func(current string, found bool) (string, error) {
		users := []models.User{}
		if found {
			if err := json.Unmarshal([]byte(current), &users); err != nil {
				return "", fmt.Errorf("decode %s: %w", kv.UsersKey, err)
			}
		}
		for _, u := range users {
			if u.Email == user.Email {
				return "", ErrEmailTaken
			}
		}

		payload, err := json.Marshal(append(users, user))
		if err != nil {
			return "", fmt.Errorf("encode %s: %w", kv.UsersKey, err)
		}
		return string(payload), nil
	})
}

func (r *UserRepository) FindByEmail(ctx context.Context, email string) (models.User, error) {
	users, err := r.List(ctx)
	if err != nil {
		return models.User{}, err
	}
	for _, u := range users {
		if u.Email == email {
			return u, nil
		}
	}
	return models.User{}, ErrUserNotFound
}
