// Copyright (c) 2026 The Vrrb developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package runtime

import (
	"github.com/vrrb-network/vrrb/block"
	"github.com/vrrb-network/vrrb/certificate"
	"github.com/vrrb-network/vrrb/claim"
	"github.com/vrrb-network/vrrb/tx"
	"github.com/vrrb-network/vrrb/vrrb"
)

// Event is the typed message surface spec.md §6 names, both the variants
// consumed by the orchestrator and those it emits back out.
type Event interface {
	eventSource() string
}

// sourced gives every event a From tag naming its source. The orchestrator
// does not read it: send order is kept by the single FIFO mailbox, which
// orders all events globally and so also per source.
type sourced struct {
	From string
}

func (s sourced) eventSource() string { return s.From }

// Consumed event variants.

type TxnValidated struct {
	sourced
	Txn *tx.Transaction
}

type BlockReceived struct {
	sourced
	Genesis     *block.Genesis
	Proposal    *block.Proposal
	Convergence *block.Convergence
}

type MineProposalBlock struct {
	sourced
	RefHash vrrb.Bytes32
	Round   uint64
	Epoch   uint64
	Claim   *claim.Claim
}

type SignConvergenceBlock struct {
	sourced
	Block *block.Convergence
}

type PeerConvergenceBlockSign struct {
	sourced
	NodeIdx     int
	BlockHash   vrrb.Bytes32
	PayloadHash vrrb.Bytes32
	PartialSig  []byte
	Threshold   int
}

type BlockCertificateCreated struct {
	sourced
	Certificate *certificate.Certificate
	BlockHash   vrrb.Bytes32
}

type BlockCertificateReceived struct {
	sourced
	Certificate *certificate.Certificate
	BlockHash   vrrb.Bytes32
}

type QuorumElectionStarted struct {
	sourced
	Header *block.Header
}

type Stop struct {
	sourced
}

// Emitted event variants.

type MinedBlock struct {
	sourced
	Convergence *block.Convergence
}

type SendBlockCertificate struct {
	sourced
	Certificate *certificate.Certificate
}

type SendPeerConvergenceBlockSign struct {
	sourced
	NodeIdx     int
	BlockHash   vrrb.Bytes32
	PayloadHash vrrb.Bytes32
	PartialSig  []byte
}

type UpdateState struct {
	sourced
	BlockHash vrrb.Bytes32
}

// QuorumRosterComputed carries the validator roster elected for the next
// quorum, per spec.md §6's QuorumElectionStarted handling (spec.md §4.7
// step 4). Handed off via the event stream rather than returned, matching
// how every other orchestrator side effect reaches its consumer.
type QuorumRosterComputed struct {
	sourced
	Roster []*claim.Claim
}
