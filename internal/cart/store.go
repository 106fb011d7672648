package cart

import "sync"

// Store holds the session cart. Operations are applied in call order; the last write
// for a product wins.
type Store struct {
	mu        sync.Mutex
	cart      Cart
	listeners map[int]func(Cart)
	nextID    int
}

// NewStore creates an empty store
func NewStore() *Store {
	return &Store{listeners: make(map[int]func(Cart))}
}

// Snapshot returns the current cart
func (s *Store) Snapshot() Cart {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.cart
}

// Add merges item into the cart
func (s *Store) Add(item Line) Cart {
	return s.apply(func(c Cart) Cart { return c.Add(item) })
}

// Remove drops productID from the cart
func (s *Store) Remove(productID string) Cart {
	return s.apply(func(c Cart) Cart { return c.Remove(productID) })
}

// SetQuantity replaces the quantity of productID
func (s *Store) SetQuantity(productID string, quantity int) Cart {
	return s.apply(func(c Cart) Cart { return c.SetQuantity(productID, quantity) })
}

// Clear empties the cart
func (s *Store) Clear() Cart {
	return s.apply(func(c Cart) Cart { return c.Clear() })
}

// Subscribe calls fn with the new cart after every operation
func (s *Store) Subscribe(fn func(Cart)) (unsubscribe func()) {
	s.mu.Lock()
	id := s.nextID
	s.nextID++
	s.listeners[id] = fn
	s.mu.Unlock()

	return func() {
		s.mu.Lock()
		delete(s.listeners, id)
		s.mu.Unlock()
	}
}

func (s *Store) apply(op func(Cart) Cart) Cart {
	s.mu.Lock()
	s.cart = op(s.cart)
	next := s.cart
	fns := make([]func(Cart), 0, len(s.listeners))
	for _, fn := range s.listeners {
		fns = append(fns, fn)
	}
	s.mu.Unlock()

	for _, fn := range fns {
		fn(next)
	}
	return next
}
