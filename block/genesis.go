// Copyright (c) 2026 The Vrrb developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

// Genesis implements the Genesis block kind of spec.md §3: identical shape
// to Convergence, but with an empty ref_hashes list, round and epoch fixed
// at zero, and a vesting-table seeded transaction set rather than a
// resolution of prior proposals.
package block

import (
	"fmt"
	"io"

	"github.com/ethereum/go-ethereum/rlp"

	"github.com/vrrb-network/vrrb/claim"
	"github.com/vrrb-network/vrrb/crypto"
	"github.com/vrrb-network/vrrb/tx"
	"github.com/vrrb-network/vrrb/vrrb"
)

// Genesis is the chain's root block.
type Genesis struct {
	header *Header
	vested []*tx.Transaction
	claims []*claim.Claim
}

// GenesisParams bundles NewGenesis's arguments.
type GenesisParams struct {
	Timestamp   uint64
	BlockSeed   uint64
	Vested      []*tx.Transaction
	Claims      []*claim.Claim
	FirstReward Reward
}

// NewGenesis builds the Genesis block. It is signed by sk, the network's
// bootstrap key, standing in for the miner signature Convergence headers
// carry (genesis has no winning claim to sign with).
func NewGenesis(p GenesisParams, sk *crypto.PrivateKey) (*Genesis, error) {
	txnHash := hashTxns(p.Vested)
	claimListHash := hashClaims(p.Claims)

	var minerClaim *claim.Claim
	if len(p.Claims) > 0 {
		minerClaim = p.Claims[0]
	} else {
		minerClaim = &claim.Claim{}
	}

	header, err := NewHeader(HeaderParams{
		RefHashes:       nil,
		Round:           0,
		Epoch:           0,
		BlockSeed:       p.BlockSeed,
		NextBlockSeed:   p.BlockSeed,
		BlockHeight:     0,
		Timestamp:       p.Timestamp,
		TxnHash:         txnHash,
		MinerClaim:      minerClaim,
		ClaimListHash:   claimListHash,
		BlockReward:     p.FirstReward,
		NextBlockReward: p.FirstReward,
	}, sk)
	if err != nil {
		return nil, err
	}

	return &Genesis{
		header: header,
		vested: append([]*tx.Transaction(nil), p.Vested...),
		claims: append([]*claim.Claim(nil), p.Claims...),
	}, nil
}

// Header returns the Genesis block's header.
func (g *Genesis) Header() *Header { return g.header }

// Vested returns a copy of the genesis vesting-table transactions.
func (g *Genesis) Vested() []*tx.Transaction { return append([]*tx.Transaction(nil), g.vested...) }

// Claims returns a copy of the genesis claim set.
func (g *Genesis) Claims() []*claim.Claim { return append([]*claim.Claim(nil), g.claims...) }

func hashTxns(txns []*tx.Transaction) (h vrrb.Bytes32) {
	parts := make([][]byte, 0, len(txns))
	for _, t := range txns {
		id := t.Id()
		parts = append(parts, id[:])
	}
	return vrrb.Sha256(parts...)
}

func hashClaims(claims []*claim.Claim) (h vrrb.Bytes32) {
	parts := make([][]byte, 0, len(claims))
	for _, c := range claims {
		parts = append(parts, c.Hash[:])
	}
	return vrrb.Sha256(parts...)
}

type genesisBody struct {
	Header *Header
	Vested []*tx.Transaction
	Claims []*claim.Claim
}

// EncodeRLP implements rlp.Encoder.
func (g *Genesis) EncodeRLP(w io.Writer) error {
	return rlp.Encode(w, &genesisBody{Header: g.header, Vested: g.vested, Claims: g.claims})
}

// DecodeRLP implements rlp.Decoder.
func (g *Genesis) DecodeRLP(s *rlp.Stream) error {
	var body genesisBody
	if err := s.Decode(&body); err != nil {
		return err
	}
	*g = Genesis{header: body.Header, vested: body.Vested, claims: body.Claims}
	return nil
}

func (g *Genesis) String() string {
	return fmt.Sprintf("Genesis(%x)\n%v\nVested: %d, Claims: %d", g.header.Hash(), g.header, len(g.vested), len(g.claims))
}
