// Copyright (c) 2026 The Vrrb developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

// Package state implements the State Applier (C8): the StateTrie,
// TransactionTrie and ClaimTrie content-addressed maps, StateUpdate
// derivation/consolidation, and deterministic batch application of a
// certified Convergence block, per spec.md §4.8. Grounded on the
// left-right double-buffer discipline implied by spec.md §3's "readers
// observe the previously published snapshot", generalizing the
// single-writer/atomically-published-summary pattern the teacher's
// chain.Repository applies to its best-block pointer.
package state

import (
	"errors"
	"io"

	"github.com/ethereum/go-ethereum/rlp"
	"github.com/holiman/uint256"

	"github.com/vrrb-network/vrrb/tx"
	"github.com/vrrb-network/vrrb/vrrb"
)

// Digests records the transaction ids an account has participated in, per
// spec.md §3's "digests: {sent[], recv[], stake[]}".
type Digests struct {
	Sent  []tx.Id
	Recv  []tx.Id
	Stake []tx.Id
}

// Account is a StateTrie entry: spec.md §3's (address, nonce, credits,
// debits, storage?, code?, digests, hash, created_at, updated_at) tuple.
type Account struct {
	Address   vrrb.Address
	Nonce     uint64
	Credits   *uint256.Int
	Debits    *uint256.Int
	Storage   []byte
	Code      []byte
	Digests   Digests
	Hash      vrrb.Bytes32
	CreatedAt uint64
	UpdatedAt uint64
}

// NewAccount returns a zero-balance Account for address, first seen at
// createdAt ("Accounts are created on first receipt", spec.md §3).
func NewAccount(address vrrb.Address, createdAt uint64) *Account {
	a := &Account{
		Address:   address,
		Credits:   uint256.NewInt(0),
		Debits:    uint256.NewInt(0),
		CreatedAt: createdAt,
		UpdatedAt: createdAt,
	}
	a.rehash()
	return a
}

// Clone returns a deep-enough copy safe for independent mutation.
func (a *Account) Clone() *Account {
	cpy := *a
	cpy.Credits = a.Credits.Clone()
	cpy.Debits = a.Debits.Clone()
	cpy.Storage = append([]byte(nil), a.Storage...)
	cpy.Code = append([]byte(nil), a.Code...)
	cpy.Digests = Digests{
		Sent:  append([]tx.Id(nil), a.Digests.Sent...),
		Recv:  append([]tx.Id(nil), a.Digests.Recv...),
		Stake: append([]tx.Id(nil), a.Digests.Stake...),
	}
	return &cpy
}

// ErrOverdrawn is returned when applying a StateUpdate would leave debits
// greater than credits, per spec.md §3's "credits ≥ debits" invariant.
var ErrOverdrawn = errors.New("state: account overdrawn")

// apply folds u into a in place, recomputing a's hash, and fails if the
// resulting balance would violate credits >= debits (spec.md §4.8 step 5).
// The caller is expected to roll back the whole batch on failure.
func (a *Account) apply(u StateUpdate, at uint64) error {
	credits := new(uint256.Int).Add(a.Credits, u.CreditDelta)
	debits := new(uint256.Int).Add(a.Debits, u.DebitDelta)
	if debits.Cmp(credits) > 0 {
		return ErrOverdrawn
	}
	a.Credits = credits
	a.Debits = debits
	if u.Nonce > a.Nonce {
		a.Nonce = u.Nonce
	}
	a.Digests.Sent = append(a.Digests.Sent, u.SentIds...)
	a.Digests.Recv = append(a.Digests.Recv, u.RecvIds...)
	a.Digests.Stake = append(a.Digests.Stake, u.StakeIds...)
	if u.HasStorage {
		a.Storage = u.Storage
	}
	if u.HasCode {
		a.Code = u.Code
	}
	a.UpdatedAt = at
	a.rehash()
	return nil
}

// rehash recomputes a.Hash from every other field, per spec.md §3
// ("hash is recomputed on every mutation from the other fields").
func (a *Account) rehash() {
	a.Hash = vrrb.Sha256Fn(func(w io.Writer) {
		rlp.Encode(w, accountBody{
			Address:   a.Address,
			Nonce:     a.Nonce,
			Credits:   a.Credits.Bytes(),
			Debits:    a.Debits.Bytes(),
			Storage:   a.Storage,
			Code:      a.Code,
			Sent:      a.Digests.Sent,
			Recv:      a.Digests.Recv,
			Stake:     a.Digests.Stake,
			CreatedAt: a.CreatedAt,
			UpdatedAt: a.UpdatedAt,
		})
	})
}

type accountBody struct {
	Address   vrrb.Address
	Nonce     uint64
	Credits   []byte
	Debits    []byte
	Storage   []byte
	Code      []byte
	Sent      []tx.Id
	Recv      []tx.Id
	Stake     []tx.Id
	CreatedAt uint64
	UpdatedAt uint64
}

// EncodeRLP implements rlp.Encoder, letting Account be stored directly in a
// kvstore-backed Trie.
func (a *Account) EncodeRLP(w io.Writer) error {
	return rlp.Encode(w, accountBody{
		Address:   a.Address,
		Nonce:     a.Nonce,
		Credits:   a.Credits.Bytes(),
		Debits:    a.Debits.Bytes(),
		Storage:   a.Storage,
		Code:      a.Code,
		Sent:      a.Digests.Sent,
		Recv:      a.Digests.Recv,
		Stake:     a.Digests.Stake,
		CreatedAt: a.CreatedAt,
		UpdatedAt: a.UpdatedAt,
	})
}

// DecodeRLP implements rlp.Decoder.
func (a *Account) DecodeRLP(s *rlp.Stream) error {
	var body accountBody
	if err := s.Decode(&body); err != nil {
		return err
	}
	*a = Account{
		Address:   body.Address,
		Nonce:     body.Nonce,
		Credits:   new(uint256.Int).SetBytes(body.Credits),
		Debits:    new(uint256.Int).SetBytes(body.Debits),
		Storage:   body.Storage,
		Code:      body.Code,
		Digests:   Digests{Sent: body.Sent, Recv: body.Recv, Stake: body.Stake},
		CreatedAt: body.CreatedAt,
		UpdatedAt: body.UpdatedAt,
	}
	a.rehash()
	return nil
}
