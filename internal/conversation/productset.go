package conversation

import "github.com/adcraftlabs/adcraft/internal/content"

// ProductSet is an ordered set of selected products keyed by Product.Key()
// (SKU, falling back to product name). Adding an already-present key is a
// no-op, so re-selecting the same product never duplicates it.
type ProductSet struct {
	keys  map[string]int // key -> index in order
	order []content.Product
}

// NewProductSet creates an empty set.
func NewProductSet() *ProductSet {
	return &ProductSet{keys: make(map[string]int)}
}

// Add inserts a product unless its key is already present.
// Returns true if the product was added.
func (ps *ProductSet) Add(p content.Product) bool {
	key := p.Key()
	if key == "" {
		return false
	}
	if _, ok := ps.keys[key]; ok {
		return false
	}
	ps.keys[key] = len(ps.order)
	ps.order = append(ps.order, p)
	return true
}

// Remove deletes the product with the given key, preserving the order of
// the rest. Returns true if something was removed.
func (ps *ProductSet) Remove(key string) bool {
	idx, ok := ps.keys[key]
	if !ok {
		return false
	}
	ps.order = append(ps.order[:idx], ps.order[idx+1:]...)
	delete(ps.keys, key)
	for i := idx; i < len(ps.order); i++ {
		ps.keys[ps.order[i].Key()] = i
	}
	return true
}

// Replace swaps the entire selection for the given list, deduplicating by
// key and keeping first-seen order.
func (ps *ProductSet) Replace(products []content.Product) {
	ps.keys = make(map[string]int)
	ps.order = ps.order[:0]
	for _, p := range products {
		ps.Add(p)
	}
}

// Products returns a copy of the selection in order.
func (ps *ProductSet) Products() []content.Product {
	out := make([]content.Product, len(ps.order))
	copy(out, ps.order)
	return out
}

// Len returns the number of selected products.
func (ps *ProductSet) Len() int {
	return len(ps.order)
}
