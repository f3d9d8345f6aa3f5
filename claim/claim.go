// Copyright (c) 2026 The Vrrb developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

// Package claim implements the Claim & Identity subsystem (C2): a node's
// mining/validator identity, its election hash and stake ledger, per
// spec.md §3 and §4.2. The field set and Eligibility enum are restored from
// original_source/crates/vrrb_core/src/claim.rs, which the distilled spec
// compresses into a single "eligibility" field.
package claim

import (
	"errors"
	"net"

	"github.com/holiman/uint256"

	"github.com/vrrb-network/vrrb/crypto"
	"github.com/vrrb-network/vrrb/vrrb"
)

// Eligibility is the role a claim's node is entitled to act as.
type Eligibility int

const (
	EligibilityNone Eligibility = iota
	EligibilityValidator
	EligibilityMiner
)

func (e Eligibility) String() string {
	switch e {
	case EligibilityValidator:
		return "Validator"
	case EligibilityMiner:
		return "Miner"
	default:
		return "None"
	}
}

// Claim is a participating node's cryptographic identity and stake record.
type Claim struct {
	PublicKey   *crypto.PublicKey
	Address     vrrb.Address
	IPAddress   net.IP
	Signature   []byte
	NodeID      vrrb.NodeId
	Hash        vrrb.Bytes32
	Eligibility Eligibility

	stake     *uint256.Int
	stakeTxns []StakeTxn
}

// ErrInvalidSignature is returned when a claim's signature does not verify
// against H(public_key ‖ ip_address).
var ErrInvalidSignature = errors.New("claim: invalid signature")

// New constructs a Claim, verifying its signature on creation as spec.md §3
// requires ("is_valid_claim(...) must hold on construction").
func New(pub *crypto.PublicKey, sig []byte, nodeID vrrb.NodeId, ip net.IP, eligibility Eligibility) (*Claim, error) {
	hash := hashOf(pub, ip)
	if !IsValidClaim(hash, sig, pub) {
		return nil, ErrInvalidSignature
	}
	return &Claim{
		PublicKey:   pub,
		Address:     crypto.AddressOf(pub),
		IPAddress:   ip,
		Signature:   sig,
		NodeID:      nodeID,
		Hash:        hash,
		Eligibility: eligibility,
		stake:       uint256.NewInt(0),
	}, nil
}

// hashOf computes SHA-256(public_key ‖ ip_address) per spec.md §3.
func hashOf(pub *crypto.PublicKey, ip net.IP) vrrb.Bytes32 {
	return vrrb.Sha256(crypto.PublicKeyBytes(pub), []byte(ip.String()))
}

// IsValidClaim verifies sig over hash against pub, the invariant spec.md §3
// requires on construction and on any IP-address update.
func IsValidClaim(hash vrrb.Bytes32, sig []byte, pub *crypto.PublicKey) bool {
	return crypto.Verify(hash, sig, pub)
}

// WithIPAddress returns a copy of c with its IP address updated, re-deriving
// and re-checking the claim hash/signature invariant.
func (c *Claim) WithIPAddress(ip net.IP, sig []byte) (*Claim, error) {
	hash := hashOf(c.PublicKey, ip)
	if !IsValidClaim(hash, sig, c.PublicKey) {
		return nil, ErrInvalidSignature
	}
	cpy := *c
	cpy.IPAddress = ip
	cpy.Signature = sig
	cpy.Hash = hash
	return &cpy, nil
}

// Stake returns the claim's current stake.
func (c *Claim) Stake() *uint256.Int {
	return c.stake.Clone()
}

// ElectionResult computes election_result(claim, block_seed) =
// claim.hash XOR block_seed, per spec.md §4.2. blockSeed is a u64 repeated
// into all four 64-bit limbs of the 256-bit value, as spec.md specifies.
func (c *Claim) ElectionResult(blockSeed uint64) *uint256.Int {
	return ElectionResult(c.Hash, blockSeed)
}

// ElectionResult is the free-function form used by package resolver, so
// that conflict resolution needs no Claim, only its hash.
func ElectionResult(claimHash vrrb.Bytes32, blockSeed uint64) *uint256.Int {
	h := new(uint256.Int).SetBytes(claimHash[:])
	seed := seedUint256(blockSeed)
	return new(uint256.Int).Xor(h, seed)
}

// seedUint256 repeats a u64 seed into all four 64-bit limbs of a uint256,
// as spec.md §4.2 specifies for block_seed.
func seedUint256(seed uint64) *uint256.Int {
	var limbs [4]uint64
	for i := range limbs {
		limbs[i] = seed
	}
	return new(uint256.Int).SetBytes(limbsToBytes(limbs))
}

func limbsToBytes(limbs [4]uint64) []byte {
	b := make([]byte, 32)
	for i := 0; i < 4; i++ {
		// big-endian, limb 3 is most significant to match uint256.SetBytes.
		v := limbs[3-i]
		off := i * 8
		b[off] = byte(v >> 56)
		b[off+1] = byte(v >> 48)
		b[off+2] = byte(v >> 40)
		b[off+3] = byte(v >> 32)
		b[off+4] = byte(v >> 24)
		b[off+5] = byte(v >> 16)
		b[off+6] = byte(v >> 8)
		b[off+7] = byte(v)
	}
	return b
}
