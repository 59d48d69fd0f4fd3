package repository

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/vanishbox/vanishbot/internal/storage"
	"github.com/vanishbox/vanishbot/pkg/models"
)

// ErrNotFound is returned when a record does not exist
var ErrNotFound = errors.New("record not found")

// ErrAlreadyExists is returned when a record with the same key already exists
var ErrAlreadyExists = errors.New("record already exists")

const userPrefix = "user:"

// Users persists per-chat user records
type Users struct {
	store storage.Store
}

// NewUsers creates a user repository over the given store
func NewUsers(store storage.Store) *Users {
	return &Users{store: store}
}

func userKey(chatID int64) string {
	return userPrefix + strconv.FormatInt(chatID, 10)
}

// Get returns the user record for chatID, or ErrNotFound
func (r *Users) Get(ctx context.Context, chatID int64) (*models.User, error) {
	raw, err := r.store.Get(ctx, userKey(chatID))
	if errors.Is(err, storage.ErrNotFound) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get user %d: %w", chatID, err)
	}

	var user models.User
	if err := json.Unmarshal(raw, &user); err != nil {
		return nil, fmt.Errorf("failed to decode user %d: %w", chatID, err)
	}
	return &user, nil
}

// GetOrCreate returns the user record, lazily creating a default one
// on first contact.
func (r *Users) GetOrCreate(ctx context.Context, chatID int64) (*models.User, error) {
	user, err := r.Get(ctx, chatID)
	if err == nil {
		return user, nil
	}
	if !errors.Is(err, ErrNotFound) {
		return nil, err
	}

	user = &models.User{
		ChatID:     chatID,
		CreatedAt:  time.Now(),
		LastActive: time.Now(),
	}
	if err := r.Save(ctx, user); err != nil {
		return nil, err
	}
	return user, nil
}

// Save writes the whole user record back
func (r *Users) Save(ctx context.Context, user *models.User) error {
	raw, err := json.Marshal(user)
	if err != nil {
		return fmt.Errorf("failed to encode user %d: %w", user.ChatID, err)
	}
	if err := r.store.Put(ctx, userKey(user.ChatID), raw, 0); err != nil {
		return fmt.Errorf("failed to save user %d: %w", user.ChatID, err)
	}
	return nil
}

// Delete removes the user record
func (r *Users) Delete(ctx context.Context, chatID int64) error {
	if err := r.store.Delete(ctx, userKey(chatID)); err != nil {
		return fmt.Errorf("failed to delete user %d: %w", chatID, err)
	}
	return nil
}

// AllIDs returns the chat IDs of every known user
func (r *Users) AllIDs(ctx context.Context) ([]int64, error) {
	keys, err := r.store.Keys(ctx, userPrefix)
	if err != nil {
		return nil, fmt.Errorf("failed to list users: %w", err)
	}

	ids := make([]int64, 0, len(keys))
	for _, k := range keys {
		id, err := strconv.ParseInt(strings.TrimPrefix(k, userPrefix), 10, 64)
		if err != nil {
			continue
		}
		ids = append(ids, id)
	}
	return ids, nil
}
