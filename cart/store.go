// Package cart holds the single source of truth for the shopping cart: an
// ordered collection of line items keyed by product id, mutated only through
// the four state-transition operations and mirrored into the persistent
// store after every accepted mutation.
package cart

import (
	"context"
	"errors"
	"sync"

	"go.uber.org/zap"

	"gofalre.io/storefront/models"
	"gofalre.io/storefront/persist"
)

var _ Store = (*store)(nil)

// Store exposes the cart state transitions. Every operation is total over
// its input domain: none of them can fail, and each returns the state after
// the transition. Callers never receive a mutable reference to the live
// state.
type Store interface {
	// AddToCart merges the item into the cart. If a line item with the same
	// id exists its quantity grows by the given amount; otherwise the item is
	// appended. A quantity below 1 is treated as 1.
	AddToCart(ctx context.Context, item models.LineItem, quantity int) *models.CartState

	// UpdateQuantity sets the quantity of an existing line item. Negative
	// requests clamp to 0, and 0 removes the line item. Unknown ids are a
	// no-op.
	UpdateQuantity(ctx context.Context, id string, quantity int) *models.CartState

	// RemoveItem deletes the line item if present; idempotent.
	RemoveItem(ctx context.Context, id string) *models.CartState

	// Clear empties the cart unconditionally. Called on logout and once an
	// order is confirmed placed.
	Clear(ctx context.Context) *models.CartState

	// State returns a copy of the current cart state.
	State() *models.CartState
}

type store struct {
	mu      sync.Mutex
	scope   string
	state   *models.CartState
	persist persist.Store
	logger  *zap.Logger
}

// NewStore hydrates the cart partition for the given scope. A missing
// snapshot starts an empty cart; a corrupt or unreadable one is logged and
// also starts empty.
func NewStore(ctx context.Context, scope string, p persist.Store, logger *zap.Logger) Store {
	s := &store{
		scope:   scope,
		state:   models.NewCartState(),
		persist: p,
		logger:  logger,
	}

	var snap models.CartState
	err := p.Load(ctx, scope, persist.PartitionCart, &snap)
	switch {
	case err == nil:
		s.state = &snap
	case errors.Is(err, persist.ErrNotFound):
		// first visit, nothing to restore
	default:
		logger.Warn("Failed to hydrate cart, starting empty", zap.Error(err), zap.String("scope", scope))
	}

	return s
}

func (s *store) AddToCart(ctx context.Context, item models.LineItem, quantity int) *models.CartState {
	if quantity < 1 {
		quantity = 1
	}

	s.mu.Lock()
	if existing := s.state.Find(item.ID); existing != nil {
		existing.Quantity += quantity
	} else {
		item.Quantity = quantity
		s.state.Items = append(s.state.Items, item)
	}
	snap := s.state.Clone()
	s.mu.Unlock()

	s.flush(ctx, snap)
	return snap
}

func (s *store) UpdateQuantity(ctx context.Context, id string, quantity int) *models.CartState {
	if quantity < 0 {
		quantity = 0
	}

	s.mu.Lock()
	item := s.state.Find(id)
	if item == nil {
		snap := s.state.Clone()
		s.mu.Unlock()
		return snap
	}

	if quantity == 0 {
		s.dropLocked(id)
	} else {
		item.Quantity = quantity
	}
	snap := s.state.Clone()
	s.mu.Unlock()

	s.flush(ctx, snap)
	return snap
}

func (s *store) RemoveItem(ctx context.Context, id string) *models.CartState {
	s.mu.Lock()
	if s.state.Find(id) == nil {
		snap := s.state.Clone()
		s.mu.Unlock()
		return snap
	}

	s.dropLocked(id)
	snap := s.state.Clone()
	s.mu.Unlock()

	s.flush(ctx, snap)
	return snap
}

func (s *store) Clear(ctx context.Context) *models.CartState {
	s.mu.Lock()
	s.state.Items = nil
	snap := s.state.Clone()
	s.mu.Unlock()

	s.flush(ctx, snap)
	return snap
}

func (s *store) State() *models.CartState {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state.Clone()
}

// dropLocked removes the line item in place, preserving the order of the
// remaining items. Caller holds s.mu.
func (s *store) dropLocked(id string) {
	items := s.state.Items[:0]
	for _, item := range s.state.Items {
		if item.ID != id {
			items = append(items, item)
		}
	}
	if len(items) == 0 {
		items = nil
	}
	s.state.Items = items
}

// flush mirrors the given snapshot into the persistent store. A failed write
// is logged and the in-memory state stands; the operation's result is never
// affected.
func (s *store) flush(ctx context.Context, snap *models.CartState) {
	if err := s.persist.Save(ctx, s.scope, persist.PartitionCart, snap); err != nil {
		s.logger.Error("Failed to persist cart state", zap.Error(err), zap.String("scope", s.scope))
	}
}
