package cart

import "sync"

// Store keeps open carts keyed by a caller-chosen cart ID (one per terminal
// or register session). Carts live only in memory: a process restart drops
// every open cart, mirroring how a page reload discards the register screen.
//
// Each cart carries its own lock so a slow operation on one terminal's cart
// never stalls another terminal; the store-level lock only guards the map.
type Store struct {
	mu    sync.RWMutex
	carts map[string]*entry
}

type entry struct {
	mu   sync.Mutex
	cart *Cart
}

// NewStore returns an empty cart store.
func NewStore() *Store {
	return &Store{carts: make(map[string]*entry)}
}

// With runs fn against the cart for id, creating an empty cart on first use.
// Mutations on a single cart are serialized; fn must not retain the cart.
func (s *Store) With(id string, fn func(c *Cart)) {
	e := s.entry(id)

	e.mu.Lock()
	defer e.mu.Unlock()
	fn(e.cart)
}

func (s *Store) entry(id string) *entry {
	s.mu.RLock()
	e, ok := s.carts[id]
	s.mu.RUnlock()
	if ok {
		return e
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if e, ok := s.carts[id]; ok {
		return e
	}
	e = &entry{cart: New()}
	s.carts[id] = e
	return e
}

// Drop forgets the cart for id entirely.
func (s *Store) Drop(id string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.carts, id)
}
