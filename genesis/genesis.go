// Copyright (c) 2026 The Vrrb developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

// Package genesis builds the network's root block: the vesting-table
// transfers and Bootstrap-role claims spec.md §3 and §4.1 require a Genesis
// block to carry, plus the first epoch's reward schedule. Grounded on the
// teacher's genesis package shape (a Builder that produces a block plus its
// initial account state) rebuilt for this repo's vesting-table semantics in
// place of thor's devnet/mainnet/customnet account seeding, which this
// repo's Genesis block kind has no equivalent of.
package genesis

import (
	"github.com/holiman/uint256"
	"github.com/pkg/errors"

	"github.com/vrrb-network/vrrb/block"
	"github.com/vrrb-network/vrrb/claim"
	"github.com/vrrb-network/vrrb/crypto"
	"github.com/vrrb-network/vrrb/tx"
	"github.com/vrrb-network/vrrb/vrrb"
)

// VestingEntry is one line of the Genesis block's vesting table: a
// treasury-funded transfer to a network participant, per spec.md §3's
// "the Genesis block carries a vesting table of initial balances."
type VestingEntry struct {
	Receiver vrrb.Address
	Amount   *uint256.Int
}

// Builder assembles a Genesis block from a vesting table and the set of
// claims entitled to act as Bootstrap nodes from block height zero.
type Builder struct {
	Timestamp   uint64
	BlockSeed   uint64
	Vesting     []VestingEntry
	Claims      []*claim.Claim
	FirstReward block.Reward
}

// ErrNoClaims is returned by Build when the builder has no claims to seat
// the Genesis miner (block.NewGenesis itself would fall back to an empty
// Claim).
var ErrNoClaims = errors.New("genesis: no claims to seat the Genesis miner")

// Build signs every vesting transfer with treasurySk and assembles the
// signed Genesis block, sequencing each transfer's nonce by its position in
// the vesting table.
func (b *Builder) Build(treasurySk *crypto.PrivateKey) (*block.Genesis, error) {
	if len(b.Claims) == 0 {
		return nil, ErrNoClaims
	}

	treasuryPub := &treasurySk.PublicKey
	treasuryAddr := crypto.AddressOf(treasuryPub)

	vested := make([]*tx.Transaction, 0, len(b.Vesting))
	for nonce, entry := range b.Vesting {
		t := tx.New(b.Timestamp, treasuryAddr, treasuryPub, entry.Receiver, "VRRB", entry.Amount, uint64(nonce))
		sig, err := crypto.Sign(t.SigningHash(), treasurySk)
		if err != nil {
			return nil, errors.Wrapf(err, "genesis: sign vesting entry %d", nonce)
		}
		vested = append(vested, t.WithSignature(sig))
	}

	g, err := block.NewGenesis(block.GenesisParams{
		Timestamp:   b.Timestamp,
		BlockSeed:   b.BlockSeed,
		Vested:      vested,
		Claims:      b.Claims,
		FirstReward: b.FirstReward,
	}, treasurySk)
	if err != nil {
		return nil, errors.Wrap(err, "genesis: build")
	}
	return g, nil
}
