package domain

import "sort"

// Bag maps an item identifier to a non-negative quantity. Pseudo-item
// identifiers (see constants.go) share the same namespace as real items so a
// single Bag can carry a full reward: items, gold, energy and experience.
type Bag map[string]int

// Merge adds every entry of other into b, summing quantities per key.
// Zero-quantity results are removed so a Bag never carries dead entries.
func (b Bag) Merge(other Bag) {
	for id, qty := range other {
		b[id] += qty
		if b[id] == 0 {
			delete(b, id)
		}
	}
}

// Add increments a single entry, removing it if the sum reaches zero.
func (b Bag) Add(itemID string, qty int) {
	b[itemID] += qty
	if b[itemID] == 0 {
		delete(b, itemID)
	}
}

// Clone returns an independent copy of the bag.
func (b Bag) Clone() Bag {
	out := make(Bag, len(b))
	for id, qty := range b {
		out[id] = qty
	}
	return out
}

// IsEmpty reports whether the bag has no entries.
func (b Bag) IsEmpty() bool {
	return len(b) == 0
}

// Total returns the sum of all quantities.
func (b Bag) Total() int {
	total := 0
	for _, qty := range b {
		total += qty
	}
	return total
}

// SortedIDs returns the item identifiers in lexical order. Used wherever
// iteration order must be deterministic (serialization, remainder splitting).
func (b Bag) SortedIDs() []string {
	ids := make([]string, 0, len(b))
	for id := range b {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids
}

// Split partitions the bag into pseudo-item entries and real item entries.
func (b Bag) Split() (pseudo, items Bag) {
	pseudo = make(Bag)
	items = make(Bag)
	for id, qty := range b {
		if IsPseudoItem(id) {
			pseudo[id] = qty
		} else {
			items[id] = qty
		}
	}
	return pseudo, items
}
