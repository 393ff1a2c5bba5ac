// Package ledger is the purchase/inventory tracker: a simple CRUD collection
// over the shared key-value store. It is deliberately thin bookkeeping and
// never touches the encrypted account record.
package ledger

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/waxworks/vinylvault/internal/common"
	"github.com/waxworks/vinylvault/internal/keeper"
	"github.com/waxworks/vinylvault/internal/kvstore"
)

const purchasesKey = keeper.Prefix + "purchases"

// Purchase is one ledger entry for a backed or bought record.
type Purchase struct {
	ID          string    `json:"id"`
	Title       string    `json:"title"`
	Artist      string    `json:"artist"`
	Quantity    int       `json:"quantity"`
	PriceCents  int       `json:"priceCents"`
	PurchasedAt time.Time `json:"purchasedAt"`
}

// Ledger tracks purchases in a single JSON document under the store.
type Ledger struct {
	store kvstore.Store
	now   func() time.Time
}

// New returns a Ledger persisting through store.
func New(store kvstore.Store) *Ledger {
	return &Ledger{store: store, now: time.Now}
}

func (l *Ledger) load(ctx context.Context) ([]Purchase, error) {
	raw, err := l.store.Get(ctx, purchasesKey)
	if errors.Is(err, common.ErrNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	var items []Purchase
	if err := json.Unmarshal(raw, &items); err != nil {
		return nil, fmt.Errorf("failed to decode purchases: %w", err)
	}
	return items, nil
}

func (l *Ledger) save(ctx context.Context, items []Purchase) error {
	data, err := json.Marshal(items)
	if err != nil {
		return err
	}
	return l.store.Set(ctx, purchasesKey, data)
}

// Add appends a purchase and returns its generated id. A zero PurchasedAt is
// stamped with the current time.
func (l *Ledger) Add(ctx context.Context, p Purchase) (string, error) {
	items, err := l.load(ctx)
	if err != nil {
		return "", err
	}

	p.ID = uuid.NewString()
	if p.PurchasedAt.IsZero() {
		p.PurchasedAt = l.now()
	}
	items = append(items, p)

	if err := l.save(ctx, items); err != nil {
		return "", err
	}
	return p.ID, nil
}

// List returns all purchases in insertion order.
func (l *Ledger) List(ctx context.Context) ([]Purchase, error) {
	return l.load(ctx)
}

// Remove deletes the purchase with the given id. Removing an unknown id
// returns common.ErrNotFound.
func (l *Ledger) Remove(ctx context.Context, id string) error {
	items, err := l.load(ctx)
	if err != nil {
		return err
	}

	kept := items[:0]
	found := false
	for _, p := range items {
		if p.ID == id {
			found = true
			continue
		}
		kept = append(kept, p)
	}
	if !found {
		return common.ErrNotFound
	}
	return l.save(ctx, kept)
}
