// Package cart provides the client-local shopping cart store.
package cart

import (
	"sync"

	"pharmacart/domain"
)

// Item is one cart line: a product snapshot taken at add-time plus a
// quantity. The snapshot deliberately does not track later catalog updates.
type Item struct {
	Product  domain.Product `json:"product"`
	Quantity int            `json:"quantity"`
}

// Store is a thread-safe, stock-bounded cart. After every mutation each
// stored line satisfies 0 < quantity <= product stock, and there is at most
// one line per product id. Operations never fail; invalid inputs are
// clamped or ignored.
type Store struct {
	mu      sync.RWMutex
	items   []Item
	subs    map[int]func()
	nextSub int
}

// NewStore constructs an empty cart.
func NewStore() *Store {
	return &Store{subs: make(map[int]func())}
}

// Subscribe registers fn to run after every completed mutation and returns
// an unsubscribe func. Callbacks run outside the store lock.
func (s *Store) Subscribe(fn func()) func() {
	s.mu.Lock()
	id := s.nextSub
	s.nextSub++
	s.subs[id] = fn
	s.mu.Unlock()
	return func() {
		s.mu.Lock()
		delete(s.subs, id)
		s.mu.Unlock()
	}
}

func (s *Store) notify() {
	s.mu.RLock()
	fns := make([]func(), 0, len(s.subs))
	for _, fn := range s.subs {
		fns = append(fns, fn)
	}
	s.mu.RUnlock()
	for _, fn := range fns {
		fn()
	}
}

func (s *Store) indexOf(id string) int {
	for i := range s.items {
		if s.items[i].Product.ID == id {
			return i
		}
	}
	return -1
}

// AddItem adds quantity units of product, clamping to available stock. If a
// line for the product already exists its quantity is incremented, with the
// sum re-clamped to stock. Returns the quantity actually added, which is
// less than the requested amount when clamping applied and zero when the
// cart is unchanged.
func (s *Store) AddItem(product domain.Product, quantity int) int {
	s.mu.Lock()
	if quantity > product.Quantity {
		quantity = product.Quantity
	}

	added := 0
	if i := s.indexOf(product.ID); i != -1 {
		newQty := s.items[i].Quantity + quantity
		if newQty > product.Quantity {
			newQty = product.Quantity
		}
		added = newQty - s.items[i].Quantity
		s.items[i].Quantity = newQty
	} else if quantity > 0 {
		s.items = append(s.items, Item{Product: product, Quantity: quantity})
		added = quantity
	}
	s.mu.Unlock()

	if added != 0 {
		s.notify()
	}
	return added
}

// RemoveItem removes the line for id; no-op if absent.
func (s *Store) RemoveItem(id string) {
	s.mu.Lock()
	i := s.indexOf(id)
	if i == -1 {
		s.mu.Unlock()
		return
	}
	s.items = append(s.items[:i], s.items[i+1:]...)
	s.mu.Unlock()
	s.notify()
}

// UpdateQuantity sets the quantity for id, clamped to available stock.
// Quantities at or below zero remove the line. No-op if absent.
func (s *Store) UpdateQuantity(id string, quantity int) {
	s.mu.Lock()
	i := s.indexOf(id)
	if i == -1 {
		s.mu.Unlock()
		return
	}
	if quantity > s.items[i].Product.Quantity {
		quantity = s.items[i].Product.Quantity
	}
	if quantity <= 0 {
		s.items = append(s.items[:i], s.items[i+1:]...)
	} else {
		s.items[i].Quantity = quantity
	}
	s.mu.Unlock()
	s.notify()
}

// IncrementQuantity adds one unit to the line for id; no-op at the stock
// bound or if absent.
func (s *Store) IncrementQuantity(id string) {
	s.mu.Lock()
	i := s.indexOf(id)
	if i == -1 || s.items[i].Quantity >= s.items[i].Product.Quantity {
		s.mu.Unlock()
		return
	}
	s.items[i].Quantity++
	s.mu.Unlock()
	s.notify()
}

// DecrementQuantity removes one unit from the line for id, deleting the
// line when the quantity would drop below one. No-op if absent.
func (s *Store) DecrementQuantity(id string) {
	s.mu.Lock()
	i := s.indexOf(id)
	if i == -1 {
		s.mu.Unlock()
		return
	}
	if s.items[i].Quantity > 1 {
		s.items[i].Quantity--
	} else {
		s.items = append(s.items[:i], s.items[i+1:]...)
	}
	s.mu.Unlock()
	s.notify()
}

// ItemByID returns the line for id and whether it exists.
func (s *Store) ItemByID(id string) (Item, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if i := s.indexOf(id); i != -1 {
		return s.items[i], true
	}
	return Item{}, false
}

// UpdateItem replaces the line matching item's product id in place; no-op
// if there is no such line.
func (s *Store) UpdateItem(item Item) {
	s.mu.Lock()
	i := s.indexOf(item.Product.ID)
	if i == -1 {
		s.mu.Unlock()
		return
	}
	s.items[i] = item
	s.mu.Unlock()
	s.notify()
}

// Clear empties the cart.
func (s *Store) Clear() {
	s.mu.Lock()
	s.items = nil
	s.mu.Unlock()
	s.notify()
}

// Items returns a copy of the lines in insertion order.
func (s *Store) Items() []Item {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]Item, len(s.items))
	copy(out, s.items)
	return out
}

// Len returns the number of lines in the cart.
func (s *Store) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.items)
}

// TotalItems returns the sum of line quantities.
func (s *Store) TotalItems() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	total := 0
	for _, it := range s.items {
		total += it.Quantity
	}
	return total
}

// TotalPrice returns the sum of quantity times unit price over all lines.
func (s *Store) TotalPrice() float64 {
	s.mu.RLock()
	defer s.mu.RUnlock()
	total := 0.0
	for _, it := range s.items {
		total += it.Product.Price * float64(it.Quantity)
	}
	return total
}

// IsEmpty reports whether the cart has no lines.
func (s *Store) IsEmpty() bool {
	return s.Len() == 0
}
