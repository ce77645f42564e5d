package cart

import (
	"encoding/json"
	"os"
	"path/filepath"
)

// Save writes the cart lines to path as indented JSON. The write goes
// through a temp file and rename so a crash never leaves a half-written
// snapshot.
func (s *Store) Save(path string) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return err
	}

	s.mu.RLock()
	items := make([]Item, len(s.items))
	copy(items, s.items)
	s.mu.RUnlock()

	b, err := json.MarshalIndent(items, "", "  ")
	if err != nil {
		return err
	}
	tmp := path + ".tmp"
	if err := os.WriteFile(tmp, b, 0o644); err != nil {
		return err
	}
	return os.Rename(tmp, path)
}

// Load replaces the cart contents with the snapshot at path. A missing
// file loads an empty cart. Loaded lines are re-checked against the cart
// invariants: duplicate product ids keep the first occurrence, quantities
// are clamped to the snapshot's recorded stock, and non-positive lines are
// dropped.
func (s *Store) Load(path string) error {
	b, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			s.Clear()
			return nil
		}
		return err
	}

	var loaded []Item
	if len(b) > 0 {
		if err := json.Unmarshal(b, &loaded); err != nil {
			return err
		}
	}

	items := make([]Item, 0, len(loaded))
	seen := make(map[string]bool, len(loaded))
	for _, it := range loaded {
		if seen[it.Product.ID] {
			continue
		}
		if it.Quantity > it.Product.Quantity {
			it.Quantity = it.Product.Quantity
		}
		if it.Quantity <= 0 {
			continue
		}
		seen[it.Product.ID] = true
		items = append(items, it)
	}

	s.mu.Lock()
	s.items = items
	s.mu.Unlock()
	s.notify()
	return nil
}
