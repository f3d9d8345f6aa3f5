// Copyright (c) 2026 The Vrrb developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package state

import (
	"sort"
	"sync/atomic"

	"github.com/vrrb-network/vrrb/claim"
	"github.com/vrrb-network/vrrb/tx"
	"github.com/vrrb-network/vrrb/vrrb"
)

// nodeKey is the comparable, map-keyable form of a vrrb.NodeId (whose
// underlying pborman/uuid.UUID type is a byte slice and so cannot itself
// be used as a map key).
type nodeKey [16]byte

func keyOf(id vrrb.NodeId) nodeKey {
	var k nodeKey
	copy(k[:], id)
	return k
}

// snapshot is one immutable, published generation of all three tries.
// Swapping the pointer held by Trie.current is the "publication" step
// spec.md §3 describes as atomic per block application.
type snapshot struct {
	accounts     map[vrrb.Address]*Account
	transactions map[tx.Id]*tx.Transaction
	claims       map[nodeKey]*claim.Claim
}

func emptySnapshot() *snapshot {
	return &snapshot{
		accounts:     make(map[vrrb.Address]*Account),
		transactions: make(map[tx.Id]*tx.Transaction),
		claims:       make(map[nodeKey]*claim.Claim),
	}
}

func (s *snapshot) clone() *snapshot {
	cpy := &snapshot{
		accounts:     make(map[vrrb.Address]*Account, len(s.accounts)),
		transactions: make(map[tx.Id]*tx.Transaction, len(s.transactions)),
		claims:       make(map[nodeKey]*claim.Claim, len(s.claims)),
	}
	for k, v := range s.accounts {
		cpy.accounts[k] = v.Clone()
	}
	for k, v := range s.transactions {
		cpy.transactions[k] = v
	}
	for k, v := range s.claims {
		cpy.claims[k] = v
	}
	return cpy
}

// Trie is a left-right double-buffered StateTrie/TransactionTrie/
// ClaimTrie, per spec.md §3: "a writer applies batch updates; readers
// observe the previously published snapshot. Publication is atomic per
// block application." A single *Applier owns the write side; any number
// of readers may call the accessor methods concurrently.
type Trie struct {
	current atomic.Value // *snapshot
}

// NewTrie returns an empty, published Trie.
func NewTrie() *Trie {
	t := &Trie{}
	t.current.Store(emptySnapshot())
	return t
}

func (t *Trie) load() *snapshot {
	return t.current.Load().(*snapshot)
}

// Account returns the currently published Account for addr, or nil.
func (t *Trie) Account(addr vrrb.Address) *Account {
	if a, ok := t.load().accounts[addr]; ok {
		return a.Clone()
	}
	return nil
}

// Transaction returns the currently published Transaction for id, or nil.
func (t *Trie) Transaction(id tx.Id) *tx.Transaction {
	return t.load().transactions[id]
}

// Claim returns the currently published Claim for id, or nil.
func (t *Trie) Claim(id vrrb.NodeId) *claim.Claim {
	return t.load().claims[keyOf(id)]
}

// Claims returns every currently published Claim, keyed by NodeId string
// (NodeId itself is not a valid map key), for quorum-roster derivation.
func (t *Trie) Claims() map[string]*claim.Claim {
	snap := t.load()
	out := make(map[string]*claim.Claim, len(snap.claims))
	for _, c := range snap.claims {
		out[c.NodeID.String()] = c
	}
	return out
}

// StateRoot, TxnRoot and ClaimRoot compute and return the currently
// published root hash of each trie. Root computation is over the sorted
// key set so that it is independent of map iteration order (spec.md §4.8:
// "the StateUpdate fold must be order-independent").
func (t *Trie) StateRoot() vrrb.Bytes32 {
	snap := t.load()
	keys := make([]vrrb.Address, 0, len(snap.accounts))
	for k := range snap.accounts {
		keys = append(keys, k)
	}
	sort.Slice(keys, func(i, j int) bool { return lessBytes(keys[i][:], keys[j][:]) })
	parts := make([][]byte, 0, len(keys)*2)
	for _, k := range keys {
		parts = append(parts, k[:], snap.accounts[k].Hash[:])
	}
	return vrrb.Sha256(parts...)
}

func (t *Trie) TxnRoot() vrrb.Bytes32 {
	snap := t.load()
	keys := make([]tx.Id, 0, len(snap.transactions))
	for k := range snap.transactions {
		keys = append(keys, k)
	}
	sort.Slice(keys, func(i, j int) bool { return lessBytes(keys[i][:], keys[j][:]) })
	parts := make([][]byte, 0, len(keys))
	for _, k := range keys {
		parts = append(parts, k[:])
	}
	return vrrb.Sha256(parts...)
}

func (t *Trie) ClaimRoot() vrrb.Bytes32 {
	snap := t.load()
	keys := make([]nodeKey, 0, len(snap.claims))
	for k := range snap.claims {
		keys = append(keys, k)
	}
	sort.Slice(keys, func(i, j int) bool { return lessBytes(keys[i][:], keys[j][:]) })
	parts := make([][]byte, 0, len(keys)*2)
	for _, k := range keys {
		parts = append(parts, k[:], snap.claims[k].Hash[:])
	}
	return vrrb.Sha256(parts...)
}

func lessBytes(a, b []byte) bool {
	for i := 0; i < len(a) && i < len(b); i++ {
		if a[i] != b[i] {
			return a[i] < b[i]
		}
	}
	return len(a) < len(b)
}
