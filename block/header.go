// Copyright (c) 2026 The Vrrb developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

// Header carries the fields shared by the Genesis and Convergence block
// kinds (spec.md §3: "Genesis Block. Identical shape to Convergence").
// Adapted from the teacher's single-chain Header (ParentID/Beneficiary/
// GasLimit/TxsRoot/StateRoot/ReceiptsRoot, with a VRF-backed Extension for
// proposer-scheduling proof) into the DAG header spec.md §3 names: multiple
// ref_hashes instead of one ParentID, a block_seed/next_block_seed pair, a
// miner claim reference and a reward schedule. The VRF extension is dropped
// entirely, since proposer election here is the deterministic Proof-of-Claim
// of spec.md §4.2, not VRF-based.
package block

import (
	"bytes"
	"fmt"
	"io"
	"sync/atomic"

	"github.com/ethereum/go-ethereum/rlp"
	"github.com/holiman/uint256"

	"github.com/vrrb-network/vrrb/claim"
	"github.com/vrrb-network/vrrb/crypto"
	"github.com/vrrb-network/vrrb/vrrb"
)

// Reward is a block's miner reward at a given epoch, per spec.md §4.6.
type Reward struct {
	Epoch  uint64
	Amount *uint256.Int
}

// Header is immutable; it is shared by Genesis and Convergence.
type Header struct {
	body headerBody

	cache struct {
		signingHash atomic.Value
		hash        atomic.Value
		signer      atomic.Value
	}
}

type headerBody struct {
	RefHashes []vrrb.Bytes32

	Round       uint64
	Epoch       uint64
	BlockSeed   uint64
	NextSeed    uint64
	BlockHeight uint64
	Timestamp   uint64

	TxnHash        vrrb.Bytes32
	MinerClaimHash vrrb.Bytes32
	ClaimListHash  vrrb.Bytes32

	BlockReward     rewardBody
	NextBlockReward rewardBody

	MinerSignature []byte
}

type rewardBody struct {
	Epoch  uint64
	Amount []byte
}

// HeaderParams bundles NewHeader's arguments, since spec.md §3's Convergence
// header carries twelve fields ahead of the signature.
type HeaderParams struct {
	RefHashes       []vrrb.Bytes32
	Round           uint64
	Epoch           uint64
	BlockSeed       uint64
	NextBlockSeed   uint64
	BlockHeight     uint64
	Timestamp       uint64
	TxnHash         vrrb.Bytes32
	MinerClaim      *claim.Claim
	ClaimListHash   vrrb.Bytes32
	BlockReward     Reward
	NextBlockReward Reward
}

// NewHeader builds and signs a Header with sk, the winning miner's key.
func NewHeader(p HeaderParams, sk *crypto.PrivateKey) (*Header, error) {
	refHashes := append([]vrrb.Bytes32(nil), p.RefHashes...)
	sortBytes32(refHashes)

	h := &Header{body: headerBody{
		RefHashes:      refHashes,
		Round:          p.Round,
		Epoch:          p.Epoch,
		BlockSeed:      p.BlockSeed,
		NextSeed:       p.NextBlockSeed,
		BlockHeight:    p.BlockHeight,
		Timestamp:      p.Timestamp,
		TxnHash:        p.TxnHash,
		MinerClaimHash: p.MinerClaim.Hash,
		ClaimListHash:  p.ClaimListHash,
		BlockReward:     rewardBody{Epoch: p.BlockReward.Epoch, Amount: p.BlockReward.Amount.Bytes()},
		NextBlockReward: rewardBody{Epoch: p.NextBlockReward.Epoch, Amount: p.NextBlockReward.Amount.Bytes()},
	}}

	sig, err := crypto.Sign(h.SigningHash(), sk)
	if err != nil {
		return nil, err
	}
	h.body.MinerSignature = sig
	return h, nil
}

func sortBytes32(hs []vrrb.Bytes32) {
	for i := 1; i < len(hs); i++ {
		for j := i; j > 0 && bytes.Compare(hs[j-1][:], hs[j][:]) > 0; j-- {
			hs[j-1], hs[j] = hs[j], hs[j-1]
		}
	}
}

// RefHashes returns the sorted Proposal-hash list this header consolidates;
// empty for Genesis.
func (h *Header) RefHashes() []vrrb.Bytes32 {
	return append([]vrrb.Bytes32(nil), h.body.RefHashes...)
}

// Round and Epoch are the header's consensus coordinates.
func (h *Header) Round() uint64 { return h.body.Round }
func (h *Header) Epoch() uint64 { return h.body.Epoch }

// BlockSeed and NextBlockSeed drive Proof-of-Claim election, per spec.md
// §4.2.
func (h *Header) BlockSeed() uint64     { return h.body.BlockSeed }
func (h *Header) NextBlockSeed() uint64 { return h.body.NextSeed }

// BlockHeight is the block's sequential position.
func (h *Header) BlockHeight() uint64 { return h.body.BlockHeight }

// Timestamp is the block's creation time.
func (h *Header) Timestamp() uint64 { return h.body.Timestamp }

// TxnHash is the root of the transaction trie after this block is applied.
func (h *Header) TxnHash() vrrb.Bytes32 { return h.body.TxnHash }

// MinerClaimHash identifies the winning miner's claim.
func (h *Header) MinerClaimHash() vrrb.Bytes32 { return h.body.MinerClaimHash }

// ClaimListHash is the root of the consolidated claim list.
func (h *Header) ClaimListHash() vrrb.Bytes32 { return h.body.ClaimListHash }

// BlockReward and NextBlockReward are the miner reward schedule, per
// spec.md §4.6.
func (h *Header) BlockReward() Reward {
	return Reward{Epoch: h.body.BlockReward.Epoch, Amount: new(uint256.Int).SetBytes(h.body.BlockReward.Amount)}
}

func (h *Header) NextBlockReward() Reward {
	return Reward{Epoch: h.body.NextBlockReward.Epoch, Amount: new(uint256.Int).SetBytes(h.body.NextBlockReward.Amount)}
}

// MinerSignature is the winning miner's signature over the header.
func (h *Header) MinerSignature() []byte {
	return append([]byte(nil), h.body.MinerSignature...)
}

// IsEpochBoundary reports whether this header sits on an EpochBlocks
// boundary, per spec.md §4.6/§8.
func (h *Header) IsEpochBoundary() bool {
	return h.body.BlockHeight > 0 && h.body.BlockHeight%vrrb.EpochBlocks == vrrb.EpochBlocks-1
}

// SigningHash computes the hash of all header fields excluding the
// signature.
func (h *Header) SigningHash() (hash vrrb.Bytes32) {
	if cached := h.cache.signingHash.Load(); cached != nil {
		return cached.(vrrb.Bytes32)
	}
	defer func() { h.cache.signingHash.Store(hash) }()

	return vrrb.Sha256Fn(func(w io.Writer) {
		rlp.Encode(w, []interface{}{
			h.body.RefHashes,
			h.body.Round,
			h.body.Epoch,
			h.body.BlockSeed,
			h.body.NextSeed,
			h.body.BlockHeight,
			h.body.Timestamp,
			&h.body.TxnHash,
			&h.body.MinerClaimHash,
			&h.body.ClaimListHash,
			h.body.BlockReward,
			h.body.NextBlockReward,
		})
	})
}

// Hash is the header's identity: the signing hash plus its signature.
func (h *Header) Hash() (hash vrrb.Bytes32) {
	if cached := h.cache.hash.Load(); cached != nil {
		return cached.(vrrb.Bytes32)
	}
	defer func() { h.cache.hash.Store(hash) }()

	signingHash := h.SigningHash()
	return vrrb.Sha256Fn(func(w io.Writer) {
		rlp.Encode(w, []interface{}{&signingHash, h.body.MinerSignature})
	})
}

// Signer recovers the winning miner's address from MinerSignature. Block
// height 0 is the genesis block, whose header is signed with the bootstrap
// key rather than a miner's; for it Signer returns the zero address.
func (h *Header) Signer() (vrrb.Address, error) {
	if h.body.BlockHeight == 0 {
		return vrrb.Address{}, nil
	}
	if cached := h.cache.signer.Load(); cached != nil {
		return cached.(vrrb.Address), nil
	}
	pub, err := crypto.Recover(h.SigningHash(), h.body.MinerSignature)
	if err != nil {
		return vrrb.Address{}, err
	}
	addr := crypto.AddressOf(pub)
	h.cache.signer.Store(addr)
	return addr, nil
}

// EncodeRLP implements rlp.Encoder.
func (h *Header) EncodeRLP(w io.Writer) error {
	return rlp.Encode(w, &h.body)
}

// DecodeRLP implements rlp.Decoder.
func (h *Header) DecodeRLP(s *rlp.Stream) error {
	var body headerBody
	if err := s.Decode(&body); err != nil {
		return err
	}
	*h = Header{body: body}
	return nil
}

func (h *Header) String() string {
	var signerStr string
	if signer, err := h.Signer(); err != nil {
		signerStr = "N/A"
	} else {
		signerStr = signer.String()
	}

	return fmt.Sprintf(`Header(%x):
	BlockHeight:     %v
	Round:           %v
	Epoch:           %v
	Timestamp:       %v
	Signer:          %v
	RefHashes:       %v
	BlockSeed:       %v
	NextBlockSeed:   %v
	TxnHash:         %x
	MinerClaimHash:  %x
	ClaimListHash:   %x
	BlockReward:     %+v
	NextBlockReward: %+v
	MinerSignature:  0x%x`, h.Hash(), h.body.BlockHeight, h.body.Round, h.body.Epoch, h.body.Timestamp, signerStr,
		h.body.RefHashes, h.body.BlockSeed, h.body.NextSeed, h.body.TxnHash, h.body.MinerClaimHash,
		h.body.ClaimListHash, h.BlockReward(), h.NextBlockReward(), h.body.MinerSignature)
}

// BetterThan reports whether h should be preferred over other when both
// extend the same parent set, by block height then lexicographic Hash
// tie-break - a deterministic analogue of the teacher's total-score
// comparison, since this chain has no accumulated difficulty score.
func (h *Header) BetterThan(other *Header) bool {
	if h.body.BlockHeight != other.body.BlockHeight {
		return h.body.BlockHeight > other.body.BlockHeight
	}
	hHash, oHash := h.Hash(), other.Hash()
	return bytes.Compare(hHash[:], oHash[:]) < 0
}
