// Copyright (c) 2026 The Vrrb developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package block

// OrderedMap preserves insertion order while allowing O(1) lookup, used for
// a Proposal's txns and claims bundles (spec.md §3: "ordered-map<TxnId,
// Txn>"). Iteration order participates in Proposal.Hash, so it must be
// deterministic and insertion-stable.
type OrderedMap[K comparable, V any] struct {
	keys   []K
	values map[K]V
}

// NewOrderedMap returns an empty OrderedMap.
func NewOrderedMap[K comparable, V any]() *OrderedMap[K, V] {
	return &OrderedMap[K, V]{values: make(map[K]V)}
}

// Set inserts or overwrites the value for key, preserving the original
// insertion position on overwrite.
func (m *OrderedMap[K, V]) Set(key K, value V) {
	if _, ok := m.values[key]; !ok {
		m.keys = append(m.keys, key)
	}
	m.values[key] = value
}

// Get retrieves the value for key.
func (m *OrderedMap[K, V]) Get(key K) (V, bool) {
	v, ok := m.values[key]
	return v, ok
}

// Delete removes key, preserving order of the remaining entries.
func (m *OrderedMap[K, V]) Delete(key K) {
	if _, ok := m.values[key]; !ok {
		return
	}
	delete(m.values, key)
	for i, k := range m.keys {
		if k == key {
			m.keys = append(m.keys[:i], m.keys[i+1:]...)
			break
		}
	}
}

// Len returns the number of entries.
func (m *OrderedMap[K, V]) Len() int {
	return len(m.keys)
}

// Keys returns the keys in insertion order.
func (m *OrderedMap[K, V]) Keys() []K {
	return append([]K(nil), m.keys...)
}

// Each iterates entries in insertion order.
func (m *OrderedMap[K, V]) Each(fn func(K, V)) {
	for _, k := range m.keys {
		fn(k, m.values[k])
	}
}

// Clone returns a deep-enough copy (new backing slice/map, same values).
func (m *OrderedMap[K, V]) Clone() *OrderedMap[K, V] {
	cpy := NewOrderedMap[K, V]()
	cpy.keys = append([]K(nil), m.keys...)
	cpy.values = make(map[K]V, len(m.values))
	for k, v := range m.values {
		cpy.values[k] = v
	}
	return cpy
}
