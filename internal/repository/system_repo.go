package repository

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/vanishbox/vanishbot/internal/storage"
	"github.com/vanishbox/vanishbot/pkg/models"
)

const (
	broadcastPrefix = "broadcast:"
	welcomeKey      = "system_message:welcome"
	statsCacheKey   = "system_stats:cache"
)

// Broadcasts persists short-lived broadcast drafts
type Broadcasts struct {
	store storage.Store
	ttl   time.Duration
}

// NewBroadcasts creates a broadcast draft repository. Drafts expire
// after ttl if never confirmed.
func NewBroadcasts(store storage.Store, ttl time.Duration) *Broadcasts {
	return &Broadcasts{store: store, ttl: ttl}
}

// Create stores the draft under a fresh random identifier
func (r *Broadcasts) Create(ctx context.Context, adminID int64, text string) (*models.BroadcastDraft, error) {
	draft := &models.BroadcastDraft{
		ID:        uuid.NewString(),
		AdminID:   adminID,
		Text:      text,
		CreatedAt: time.Now(),
	}

	raw, err := json.Marshal(draft)
	if err != nil {
		return nil, fmt.Errorf("failed to encode broadcast draft: %w", err)
	}
	if err := r.store.Put(ctx, broadcastPrefix+draft.ID, raw, r.ttl); err != nil {
		return nil, fmt.Errorf("failed to save broadcast draft: %w", err)
	}
	return draft, nil
}

// Get returns the draft by identifier. An expired or already-consumed
// draft comes back as ErrNotFound.
func (r *Broadcasts) Get(ctx context.Context, id string) (*models.BroadcastDraft, error) {
	raw, err := r.store.Get(ctx, broadcastPrefix+id)
	if errors.Is(err, storage.ErrNotFound) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get broadcast draft %s: %w", id, err)
	}

	var draft models.BroadcastDraft
	if err := json.Unmarshal(raw, &draft); err != nil {
		return nil, fmt.Errorf("failed to decode broadcast draft %s: %w", id, err)
	}
	return &draft, nil
}

// Delete removes the draft so a retried confirm cannot double-send
func (r *Broadcasts) Delete(ctx context.Context, id string) error {
	if err := r.store.Delete(ctx, broadcastPrefix+id); err != nil {
		return fmt.Errorf("failed to delete broadcast draft %s: %w", id, err)
	}
	return nil
}

// System persists operator-level singletons: the welcome message and
// the cached stats snapshot.
type System struct {
	store    storage.Store
	statsTTL time.Duration
}

// NewSystem creates the system repository
func NewSystem(store storage.Store, statsTTL time.Duration) *System {
	return &System{store: store, statsTTL: statsTTL}
}

// Welcome returns the configured welcome message, or ErrNotFound
func (r *System) Welcome(ctx context.Context) (string, error) {
	raw, err := r.store.Get(ctx, welcomeKey)
	if errors.Is(err, storage.ErrNotFound) {
		return "", ErrNotFound
	}
	if err != nil {
		return "", fmt.Errorf("failed to get welcome message: %w", err)
	}
	return string(raw), nil
}

// SetWelcome stores the welcome message
func (r *System) SetWelcome(ctx context.Context, text string) error {
	if err := r.store.Put(ctx, welcomeKey, []byte(text), 0); err != nil {
		return fmt.Errorf("failed to save welcome message: %w", err)
	}
	return nil
}

// CachedStats returns the cached stats snapshot, or ErrNotFound when
// the cache is cold or expired.
func (r *System) CachedStats(ctx context.Context) (*models.Stats, error) {
	raw, err := r.store.Get(ctx, statsCacheKey)
	if errors.Is(err, storage.ErrNotFound) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get stats cache: %w", err)
	}

	var stats models.Stats
	if err := json.Unmarshal(raw, &stats); err != nil {
		return nil, fmt.Errorf("failed to decode stats cache: %w", err)
	}
	return &stats, nil
}

// SaveStats caches the stats snapshot with the configured TTL
func (r *System) SaveStats(ctx context.Context, stats *models.Stats) error {
	raw, err := json.Marshal(stats)
	if err != nil {
		return fmt.Errorf("failed to encode stats: %w", err)
	}
	if err := r.store.Put(ctx, statsCacheKey, raw, r.statsTTL); err != nil {
		return fmt.Errorf("failed to save stats cache: %w", err)
	}
	return nil
}
