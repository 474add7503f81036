// Package cartstore holds the process-wide cart shared by every surface
// that renders cart contents. Writers are serialized; readers take an
// atomic snapshot and never observe a partially-applied update.
package cartstore

import (
	"sync"
	"sync/atomic"

	"restaurant-checkout-system/models"
)

type snapshot struct {
	version uint64
	items   []models.CartItem
}

// Store is a versioned cart cell with a single logical writer. Each
// mutation installs a fresh immutable snapshot via one pointer swap.
type Store struct {
	mu      sync.Mutex
	current atomic.Pointer[snapshot]
}

// New returns an empty cart store.
func New() *Store {
	s := &Store{}
	s.current.Store(&snapshot{})
	return s
}

// Snapshot returns the current cart items and the store version. The
// returned slice is a copy; callers may keep or modify it freely.
func (s *Store) Snapshot() ([]models.CartItem, uint64) {
	snap := s.current.Load()
	items := make([]models.CartItem, len(snap.items))
	copy(items, snap.items)
	return items, snap.version
}

// Len reports how many line items are in the cart.
func (s *Store) Len() int {
	return len(s.current.Load().items)
}

// Replace installs newItems as the entire cart contents and returns the
// new version.
func (s *Store) Replace(newItems []models.CartItem) uint64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.install(newItems)
}

// Add appends an item to the cart. If a line with the same item and size
// already exists, its quantity is increased instead.
func (s *Store) Add(item models.CartItem) uint64 {
	s.mu.Lock()
	defer s.mu.Unlock()

	snap := s.current.Load()
	items := make([]models.CartItem, len(snap.items))
	copy(items, snap.items)

	for i := range items {
		if items[i].Key() == item.Key() {
			items[i].Quantity += item.Quantity
			return s.install(items)
		}
	}
	return s.install(append(items, item))
}

// RemoveItems removes exactly the given items from the cart, as an
// order-independent set difference, and returns the new version. Items
// not present are ignored.
func (s *Store) RemoveItems(checkedOut []models.CartItem) uint64 {
	s.mu.Lock()
	defer s.mu.Unlock()

	removed := make(map[string]bool, len(checkedOut))
	for _, item := range checkedOut {
		removed[item.Key()] = true
	}

	snap := s.current.Load()
	var kept []models.CartItem
	for _, item := range snap.items {
		if !removed[item.Key()] {
			kept = append(kept, item)
		}
	}
	return s.install(kept)
}

// install must be called with mu held.
func (s *Store) install(items []models.CartItem) uint64 {
	next := &snapshot{
		version: s.current.Load().version + 1,
		items:   items,
	}
	s.current.Store(next)
	return next.version
}
