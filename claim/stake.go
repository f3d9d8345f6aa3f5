// Copyright (c) 2026 The Vrrb developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package claim

import (
	"errors"

	"github.com/holiman/uint256"
)

// StakeKind discriminates the stake-transaction variants restored from
// original_source's staking.rs (referenced by claim.rs but compressed out
// of the distilled spec, which only says "stake is always equal to the
// fold over stake_txns").
type StakeKind uint8

const (
	StakeAdd StakeKind = iota
	StakeWithdrawal
	StakeSlash
)

// StakeTxn is one certified stake-ledger operation.
//
// Value is the absolute amount for Add/Withdrawal, and a percentage
// (0-100, saturating) for Slash.
type StakeTxn struct {
	Kind        StakeKind
	Value       *uint256.Int
	Certified   bool
}

// ErrUncertifiedStake is returned when an uncertified stake transaction is
// submitted, per spec.md §3 ("A stake transaction is admitted only if
// already certified.").
var ErrUncertifiedStake = errors.New("claim: uncertified stake transaction")

// UpdateStake folds txn into c's stake ledger, per spec.md §3/§4.2:
//
//   - Add(v): stake += v
//   - Withdrawal(v): stake = max(stake - v, 0) (clamped, a no-op past zero)
//   - Slash(pct): stake = stake * (1 - pct/100), pct saturating at 100
//
// Only certified transactions are admitted.
func (c *Claim) UpdateStake(txn StakeTxn) error {
	if !txn.Certified {
		return ErrUncertifiedStake
	}

	switch txn.Kind {
	case StakeAdd:
		c.stake = new(uint256.Int).Add(c.stake, txn.Value)
	case StakeWithdrawal:
		if txn.Value.Cmp(c.stake) >= 0 {
			c.stake = uint256.NewInt(0)
		} else {
			c.stake = new(uint256.Int).Sub(c.stake, txn.Value)
		}
	case StakeSlash:
		pct := txn.Value.Uint64()
		if pct > 100 {
			pct = 100
		}
		// stake * (100 - pct) / 100, integer arithmetic.
		remaining := new(uint256.Int).Mul(c.stake, uint256.NewInt(100-pct))
		c.stake = remaining.Div(remaining, uint256.NewInt(100))
	}

	c.stakeTxns = append(c.stakeTxns, txn)
	return nil
}

// StakeTxns returns the ledger of applied stake transactions.
func (c *Claim) StakeTxns() []StakeTxn {
	return append([]StakeTxn(nil), c.stakeTxns...)
}
