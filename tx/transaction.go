// Copyright (c) 2026 The Vrrb developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

// Package tx implements the Transaction model of spec.md §3, part of the
// Block Model subsystem (C3). Reconstructed in the teacher's idiom: the
// teacher's own tx/ package non-test sources were not present in the
// retrieval pack (only tests survived distillation), so this package is
// built fresh against spec.md's field list, following the
// hash-then-sign-then-rehash pattern block.Header/block.Proposal use.
package tx

import (
	"errors"
	"io"

	"github.com/ethereum/go-ethereum/rlp"
	"github.com/holiman/uint256"

	"github.com/vrrb-network/vrrb/crypto"
	"github.com/vrrb-network/vrrb/vrrb"
)

// Id uniquely identifies a Transaction; derived from the digest of all
// remaining fields, per spec.md §3.
type Id = vrrb.Bytes32

// Transaction is a transfer of token between two accounts, validated by a
// set of farmer votes.
type Transaction struct {
	body txBody
}

type txBody struct {
	Timestamp     uint64
	SenderAddr    vrrb.Address
	SenderPubKey  []byte
	ReceiverAddr  vrrb.Address
	Token         string
	Amount        *uint256.Int
	Nonce         uint64
	Signature     []byte
	Validators    []validatorVote
}

type validatorVote struct {
	Addr     vrrb.Address
	Approved bool
}

// New builds an unsigned Transaction.
func New(timestamp uint64, senderAddr vrrb.Address, senderPub *crypto.PublicKey, receiverAddr vrrb.Address, token string, amount *uint256.Int, nonce uint64) *Transaction {
	return &Transaction{body: txBody{
		Timestamp:    timestamp,
		SenderAddr:   senderAddr,
		SenderPubKey: crypto.PublicKeyBytes(senderPub),
		ReceiverAddr: receiverAddr,
		Token:        token,
		Amount:       amount,
		Nonce:        nonce,
	}}
}

// SigningHash hashes every field except the signature.
func (t *Transaction) SigningHash() vrrb.Bytes32 {
	return vrrb.Sha256Fn(func(w io.Writer) {
		rlp.Encode(w, []interface{}{
			t.body.Timestamp,
			t.body.SenderAddr,
			t.body.SenderPubKey,
			t.body.ReceiverAddr,
			t.body.Token,
			t.body.Amount.Bytes(),
			t.body.Nonce,
		})
	})
}

// WithSignature returns a copy of t with its signature set.
func (t *Transaction) WithSignature(sig []byte) *Transaction {
	cpy := *t
	cpy.body.Signature = append([]byte(nil), sig...)
	return &cpy
}

// Id is the digest of all fields including the signature, per spec.md §3.
func (t *Transaction) Id() Id {
	return vrrb.Sha256Fn(func(w io.Writer) {
		rlp.Encode(w, t.body)
	})
}

// Sender, Receiver, Token, Amount, Nonce, Signature are plain accessors.
func (t *Transaction) Sender() vrrb.Address    { return t.body.SenderAddr }
func (t *Transaction) Receiver() vrrb.Address  { return t.body.ReceiverAddr }
func (t *Transaction) Token() string           { return t.body.Token }
func (t *Transaction) Amount() *uint256.Int    { return t.body.Amount.Clone() }
func (t *Transaction) Nonce() uint64           { return t.body.Nonce }
func (t *Transaction) Signature() []byte       { return append([]byte(nil), t.body.Signature...) }
func (t *Transaction) Timestamp() uint64       { return t.body.Timestamp }

// Signer recovers the sender's address from the signature, failing closed
// if it does not match SenderAddr (a forged sender field).
func (t *Transaction) Signer() (vrrb.Address, error) {
	pub, err := crypto.Recover(t.SigningHash(), t.body.Signature)
	if err != nil {
		return vrrb.Address{}, err
	}
	addr := crypto.AddressOf(pub)
	if addr != t.body.SenderAddr {
		return vrrb.Address{}, errors.New("tx: signature does not match sender address")
	}
	return addr, nil
}

// SetValidatorVote records whether validator addr approved t.
func (t *Transaction) SetValidatorVote(addr vrrb.Address, approved bool) {
	for i := range t.body.Validators {
		if t.body.Validators[i].Addr == addr {
			t.body.Validators[i].Approved = approved
			return
		}
	}
	t.body.Validators = append(t.body.Validators, validatorVote{Addr: addr, Approved: approved})
}

// Validators returns the addr->approved vote map.
func (t *Transaction) Validators() map[vrrb.Address]bool {
	out := make(map[vrrb.Address]bool, len(t.body.Validators))
	for _, v := range t.body.Validators {
		out[v.Addr] = v.Approved
	}
	return out
}

// ApprovingValidators returns the addresses that voted true.
func (t *Transaction) ApprovingValidators() []vrrb.Address {
	var out []vrrb.Address
	for _, v := range t.body.Validators {
		if v.Approved {
			out = append(out, v.Addr)
		}
	}
	return out
}

// EncodeRLP implements rlp.Encoder.
func (t *Transaction) EncodeRLP(w io.Writer) error {
	return rlp.Encode(w, t.body)
}

// DecodeRLP implements rlp.Decoder.
func (t *Transaction) DecodeRLP(s *rlp.Stream) error {
	var body txBody
	if err := s.Decode(&body); err != nil {
		return err
	}
	t.body = body
	return nil
}
