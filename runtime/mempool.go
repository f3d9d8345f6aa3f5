// Copyright (c) 2026 The Vrrb developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package runtime

import (
	"sync"

	"github.com/vrrb-network/vrrb/block"
	"github.com/vrrb-network/vrrb/claim"
	"github.com/vrrb-network/vrrb/tx"
	"github.com/vrrb-network/vrrb/vrrb"
)

// Mempool holds TxnValidated admissions until a harvester packs them into
// a Proposal, per spec.md §6's "admit to mempool after signature/nonce
// checks."
type Mempool struct {
	mu   sync.Mutex
	txns *block.OrderedMap[tx.Id, *tx.Transaction]
}

// NewMempool returns an empty Mempool.
func NewMempool() *Mempool {
	return &Mempool{txns: block.NewOrderedMap[tx.Id, *tx.Transaction]()}
}

// Admit records txn, per spec.md §6's TxnValidated handling.
func (m *Mempool) Admit(t *tx.Transaction) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.txns.Set(t.Id(), t)
}

// Drain hands the caller up to vrrb.PullTxnBatchSize pending transactions,
// per spec.md §6, leaving any overflow in the pool for the next round.
func (m *Mempool) Drain() *block.OrderedMap[tx.Id, *tx.Transaction] {
	m.mu.Lock()
	defer m.mu.Unlock()

	out := block.NewOrderedMap[tx.Id, *tx.Transaction]()
	remaining := block.NewOrderedMap[tx.Id, *tx.Transaction]()
	taken := 0
	m.txns.Each(func(id tx.Id, t *tx.Transaction) {
		if taken < vrrb.PullTxnBatchSize {
			out.Set(id, t)
			taken++
			return
		}
		remaining.Set(id, t)
	})
	m.txns = remaining
	return out
}

// ClaimRoster selects every claim eligible to sit in the next quorum
// (spec.md §4.7 step 4: "input: all claims with eligibility = Validator
// at the time of election").
func ClaimRoster(claims map[string]*claim.Claim) []*claim.Claim {
	var out []*claim.Claim
	for _, c := range claims {
		if c.Eligibility == claim.EligibilityValidator {
			out = append(out, c)
		}
	}
	return out
}
