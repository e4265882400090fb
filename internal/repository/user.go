package repository

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"photo-journal-backend/internal/models"
	"photo-journal-backend/internal/storage"
)

const usersKey = "users"

// UserRepository persists the user directory as one JSON collection under
// the "users" key.
type UserRepository struct {
	store storage.Store
}

// NewUserRepository creates a new user repository
func NewUserRepository(store storage.Store) *UserRepository {
	return &UserRepository{store: store}
}

func (r *UserRepository) load(ctx context.Context) ([]models.User, error) {
	raw, err := r.store.Get(ctx, usersKey)
	if errors.Is(err, storage.ErrKeyNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to load users: %w", err)
	}
	var users []models.User
	if err := json.Unmarshal(raw, &users); err != nil {
		return nil, fmt.Errorf("failed to decode users: %w", err)
	}
	return users, nil
}

// Create appends a new user. Fails with ErrDuplicateEmail when the email is
// already taken (exact, case-sensitive match).
func (r *UserRepository) Create(ctx context.Context, user *models.User) error {
	return r.store.Update(ctx, usersKey, func(current []byte) ([]byte, error) {
		var users []models.User
		if current != nil {
			if err := json.Unmarshal(current, &users); err != nil {
				return nil, fmt.Errorf("failed to decode users: %w", err)
			}
		}
		for _, u := range users {
			if u.Email == user.Email {
				return nil, models.ErrDuplicateEmail
			}
		}
		users = append(users, *user)
		return json.Marshal(users)
	})
}

// GetByID retrieves a user by id.
func (r *UserRepository) GetByID(ctx context.Context, id string) (*models.User, error) {
	users, err := r.load(ctx)
	if err != nil {
		return nil, err
	}
	for i := range users {
		if users[i].ID == id {
			return &users[i], nil
		}
	}
	return nil, models.ErrUnknownUser
}

// GetByEmail retrieves a user by exact email.
func (r *UserRepository) GetByEmail(ctx context.Context, email string) (*models.User, error) {
	users, err := r.load(ctx)
	if err != nil {
		return nil, err
	}
	for i := range users {
		if users[i].Email == email {
			return &users[i], nil
		}
	}
	return nil, models.ErrUnknownUser
}

// List returns the whole directory.
func (r *UserRepository) List(ctx context.Context) ([]models.User, error) {
	return r.load(ctx)
}

// Exists reports whether a user id is present in the directory.
func (r *UserRepository) Exists(ctx context.Context, id string) (bool, error) {
	users, err := r.load(ctx)
	if err != nil {
		return false, err
	}
	for _, u := range users {
		if u.ID == id {
			return true, nil
		}
	}
	return false, nil
}

// UpdatePushToken stores the APNs device token for a user.
func (r *UserRepository) UpdatePushToken(ctx context.Context, userID string, pushToken *string) error {
	return r.store.Update(ctx, usersKey, func(current []byte) ([]byte, error) {
		var users []models.User
		if current != nil {
			if err := json.Unmarshal(current, &users); err != nil {
				return nil, fmt.Errorf("failed to decode users: %w", err)
			}
		}
		for i := range users {
			if users[i].ID == userID {
				users[i].PushToken = pushToken
				return json.Marshal(users)
			}
		}
		return nil, models.ErrUnknownUser
	})
}
