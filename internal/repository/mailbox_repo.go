package repository

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/vanishbox/vanishbot/internal/storage"
	"github.com/vanishbox/vanishbot/pkg/models"
)

const mailboxPrefix = "email:"

// Mailboxes persists mailbox records keyed by address
type Mailboxes struct {
	store storage.Store
}

// NewMailboxes creates a mailbox repository over the given store
func NewMailboxes(store storage.Store) *Mailboxes {
	return &Mailboxes{store: store}
}

func mailboxKey(address string) string {
	return mailboxPrefix + address
}

// Get returns the mailbox for address, or ErrNotFound
func (r *Mailboxes) Get(ctx context.Context, address string) (*models.Mailbox, error) {
	raw, err := r.store.Get(ctx, mailboxKey(address))
	if errors.Is(err, storage.ErrNotFound) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get mailbox %s: %w", address, err)
	}

	var box models.Mailbox
	if err := json.Unmarshal(raw, &box); err != nil {
		return nil, fmt.Errorf("failed to decode mailbox %s: %w", address, err)
	}
	return &box, nil
}

// Create stores a new empty mailbox. Returns ErrAlreadyExists if the
// address is already taken.
func (r *Mailboxes) Create(ctx context.Context, address string, owner int64) (*models.Mailbox, error) {
	_, err := r.store.Get(ctx, mailboxKey(address))
	if err == nil {
		return nil, ErrAlreadyExists
	}
	if !errors.Is(err, storage.ErrNotFound) {
		return nil, fmt.Errorf("failed to check mailbox %s: %w", address, err)
	}

	box := &models.Mailbox{Address: address, Owner: owner}
	if err := r.Save(ctx, box); err != nil {
		return nil, err
	}
	return box, nil
}

// Save writes the whole mailbox record back
func (r *Mailboxes) Save(ctx context.Context, box *models.Mailbox) error {
	raw, err := json.Marshal(box)
	if err != nil {
		return fmt.Errorf("failed to encode mailbox %s: %w", box.Address, err)
	}
	if err := r.store.Put(ctx, mailboxKey(box.Address), raw, 0); err != nil {
		return fmt.Errorf("failed to save mailbox %s: %w", box.Address, err)
	}
	return nil
}

// Delete removes the mailbox record. Deleting a missing mailbox is a no-op.
func (r *Mailboxes) Delete(ctx context.Context, address string) error {
	if err := r.store.Delete(ctx, mailboxKey(address)); err != nil {
		return fmt.Errorf("failed to delete mailbox %s: %w", address, err)
	}
	return nil
}

// AllAddresses returns every known mailbox address
func (r *Mailboxes) AllAddresses(ctx context.Context) ([]string, error) {
	keys, err := r.store.Keys(ctx, mailboxPrefix)
	if err != nil {
		return nil, fmt.Errorf("failed to list mailboxes: %w", err)
	}

	addrs := make([]string, 0, len(keys))
	for _, k := range keys {
		addrs = append(addrs, strings.TrimPrefix(k, mailboxPrefix))
	}
	return addrs, nil
}
