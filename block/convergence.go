// Copyright (c) 2026 The Vrrb developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

// Convergence implements the Convergence block kind of spec.md §3-4.4,
// adapted from the teacher's Block (header + txs + backerSignatures)
// template: in place of a flat transaction list, a Convergence carries, per
// resolved Proposal, the subset of its transactions and claims that survived
// conflict resolution (spec.md §4.4's "resolved_txns"/"resolved_claims"),
// and an optional quorum Certificate rather than per-backer signatures.
package block

import (
	"errors"
	"fmt"
	"io"

	"github.com/ethereum/go-ethereum/rlp"

	"github.com/vrrb-network/vrrb/tx"
	"github.com/vrrb-network/vrrb/vrrb"
)

// ProposalHash identifies a Proposal a Convergence consolidates.
type ProposalHash = vrrb.Bytes32

// TxnSet is the subset of one Proposal's transactions that survived
// conflict resolution.
type TxnSet map[tx.Id]struct{}

// ClaimSet is the subset of one Proposal's claims that survived conflict
// resolution.
type ClaimSet map[ClaimHash]struct{}

// Certificate is the quorum BLS threshold signature attesting a Convergence
// block, per spec.md §4.7. It is produced by package certificate and merely
// stored here, to avoid a block<->certificate import cycle.
type Certificate struct {
	Signature   []byte
	SignerIndex []int
}

// Convergence is a DAG block that resolves one or more Proposals into a
// single ordered outcome.
type Convergence struct {
	header      *Header
	txns        map[ProposalHash]TxnSet
	claims      map[ProposalHash]ClaimSet
	certificate *Certificate
}

// ErrMissingResolution is returned by ComposeConvergence when a ref'd proposal has no
// corresponding resolved txn/claim entry.
var ErrMissingResolution = errors.New("block: convergence missing resolution for a ref hash")

// ComposeConvergence assembles a Convergence from a signed header and the
// per-proposal resolved txn/claim sets. The header's RefHashes must have a
// matching (possibly empty) entry in both txns and claims.
func ComposeConvergence(header *Header, txns map[ProposalHash]TxnSet, claims map[ProposalHash]ClaimSet) (*Convergence, error) {
	for _, ref := range header.RefHashes() {
		if _, ok := txns[ref]; !ok {
			return nil, ErrMissingResolution
		}
		if _, ok := claims[ref]; !ok {
			return nil, ErrMissingResolution
		}
	}
	return &Convergence{
		header: header,
		txns:   cloneTxnSets(txns),
		claims: cloneClaimSets(claims),
	}, nil
}

// Header returns the Convergence block's header.
func (c *Convergence) Header() *Header { return c.header }

// Txns returns the resolved transaction sets keyed by the originating
// proposal's hash.
func (c *Convergence) Txns() map[ProposalHash]TxnSet { return cloneTxnSets(c.txns) }

// Claims returns the resolved claim sets keyed by the originating
// proposal's hash.
func (c *Convergence) Claims() map[ProposalHash]ClaimSet { return cloneClaimSets(c.claims) }

// Certificate returns the block's quorum certificate, or nil if it has not
// yet been certified (spec.md §4.7's "Emitted -> AwaitingCertificate"
// window).
func (c *Convergence) Certificate() *Certificate { return c.certificate }

// WithCertificate returns a copy of c with its certificate attached.
func (c *Convergence) WithCertificate(cert *Certificate) *Convergence {
	cpy := *c
	cpy.certificate = cert
	return &cpy
}

func cloneTxnSets(m map[ProposalHash]TxnSet) map[ProposalHash]TxnSet {
	out := make(map[ProposalHash]TxnSet, len(m))
	for k, v := range m {
		set := make(TxnSet, len(v))
		for id := range v {
			set[id] = struct{}{}
		}
		out[k] = set
	}
	return out
}

func cloneClaimSets(m map[ProposalHash]ClaimSet) map[ProposalHash]ClaimSet {
	out := make(map[ProposalHash]ClaimSet, len(m))
	for k, v := range m {
		set := make(ClaimSet, len(v))
		for id := range v {
			set[id] = struct{}{}
		}
		out[k] = set
	}
	return out
}

type certificateBody struct {
	Signature   []byte
	SignerIndex []int
}

type convergenceBody struct {
	Header      *Header
	ProposalRef []ProposalHash
	TxnIds      [][]tx.Id
	ClaimIds    [][]ClaimHash
	Certificate *certificateBody
}

// EncodeRLP implements rlp.Encoder.
func (c *Convergence) EncodeRLP(w io.Writer) error {
	refs := c.header.RefHashes()
	body := convergenceBody{
		Header:      c.header,
		ProposalRef: refs,
		TxnIds:      make([][]tx.Id, len(refs)),
		ClaimIds:    make([][]ClaimHash, len(refs)),
	}
	for i, ref := range refs {
		for id := range c.txns[ref] {
			body.TxnIds[i] = append(body.TxnIds[i], id)
		}
		for id := range c.claims[ref] {
			body.ClaimIds[i] = append(body.ClaimIds[i], id)
		}
		sortBytes32(body.TxnIds[i])
		sortBytes32(body.ClaimIds[i])
	}
	if c.certificate != nil {
		body.Certificate = &certificateBody{Signature: c.certificate.Signature, SignerIndex: c.certificate.SignerIndex}
	}
	return rlp.Encode(w, &body)
}

// DecodeRLP implements rlp.Decoder.
func (c *Convergence) DecodeRLP(s *rlp.Stream) error {
	var body convergenceBody
	if err := s.Decode(&body); err != nil {
		return err
	}

	txns := make(map[ProposalHash]TxnSet, len(body.ProposalRef))
	claims := make(map[ProposalHash]ClaimSet, len(body.ProposalRef))
	for i, ref := range body.ProposalRef {
		txSet := make(TxnSet, len(body.TxnIds[i]))
		for _, id := range body.TxnIds[i] {
			txSet[id] = struct{}{}
		}
		txns[ref] = txSet

		claimSet := make(ClaimSet, len(body.ClaimIds[i]))
		for _, id := range body.ClaimIds[i] {
			claimSet[id] = struct{}{}
		}
		claims[ref] = claimSet
	}

	var cert *Certificate
	if body.Certificate != nil {
		cert = &Certificate{Signature: body.Certificate.Signature, SignerIndex: body.Certificate.SignerIndex}
	}

	*c = Convergence{header: body.Header, txns: txns, claims: claims, certificate: cert}
	return nil
}

func (c *Convergence) String() string {
	certStr := "uncertified"
	if c.certificate != nil {
		certStr = fmt.Sprintf("certified by %d signers", len(c.certificate.SignerIndex))
	}
	return fmt.Sprintf("Convergence(%x)\n%v\nRefs: %d, %s", c.header.Hash(), c.header, len(c.header.RefHashes()), certStr)
}
