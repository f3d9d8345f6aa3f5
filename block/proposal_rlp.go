// Copyright (c) 2026 The Vrrb developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package block

import (
	"io"

	"github.com/ethereum/go-ethereum/rlp"

	"github.com/vrrb-network/vrrb/claim"
	"github.com/vrrb-network/vrrb/tx"
	"github.com/vrrb-network/vrrb/vrrb"
)

// proposalRLPBody flattens a Proposal's OrderedMap fields into parallel
// key/value slices, since OrderedMap's unexported keys/values fields are
// invisible to rlp's struct reflection.
type proposalRLPBody struct {
	RefHash   vrrb.Bytes32
	Round     uint64
	Epoch     uint64
	TxnIds    []tx.Id
	Txns      []*tx.Transaction
	ClaimIds  []ClaimHash
	Claims    []*claim.Claim
	From      *claim.Claim
	Signature []byte
}

// EncodeRLP implements rlp.Encoder.
func (p *Proposal) EncodeRLP(w io.Writer) error {
	body := proposalRLPBody{
		RefHash: p.body.RefHash,
		Round:   p.body.Round,
		Epoch:   p.body.Epoch,
		From:    p.body.From,
		Signature: p.body.Signature,
	}
	p.body.Txns.Each(func(id tx.Id, t *tx.Transaction) {
		body.TxnIds = append(body.TxnIds, id)
		body.Txns = append(body.Txns, t)
	})
	p.body.Claims.Each(func(h ClaimHash, c *claim.Claim) {
		body.ClaimIds = append(body.ClaimIds, h)
		body.Claims = append(body.Claims, c)
	})
	return rlp.Encode(w, &body)
}

// DecodeRLP implements rlp.Decoder.
func (p *Proposal) DecodeRLP(s *rlp.Stream) error {
	var body proposalRLPBody
	if err := s.Decode(&body); err != nil {
		return err
	}

	txns := NewOrderedMap[tx.Id, *tx.Transaction]()
	for i, id := range body.TxnIds {
		txns.Set(id, body.Txns[i])
	}
	claims := NewOrderedMap[ClaimHash, *claim.Claim]()
	for i, h := range body.ClaimIds {
		claims.Set(h, body.Claims[i])
	}

	*p = Proposal{body: proposalBody{
		RefHash:   body.RefHash,
		Round:     body.Round,
		Epoch:     body.Epoch,
		Txns:      txns,
		Claims:    claims,
		From:      body.From,
		Signature: body.Signature,
	}}
	return nil
}
