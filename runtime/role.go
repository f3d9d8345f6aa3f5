// Copyright (c) 2026 The Vrrb developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

// Package runtime implements the Runtime Orchestrator (C9): the node's
// authorization context and sole-dispatcher event loop, per spec.md §4.9
// and §5. Grounded on the teacher's bft.Engine (a top-level struct
// bundling every subsystem a consensus round touches, addressed through
// one API) and cmd/thor/node's component-wiring idiom.
package runtime

import (
	"github.com/pkg/errors"
)

// NodeType is the role a node is configured to act as.
type NodeType int

const (
	NodeNone NodeType = iota
	NodeBootstrap
	NodeMiner
	NodeValidator
)

func (n NodeType) String() string {
	switch n {
	case NodeBootstrap:
		return "Bootstrap"
	case NodeMiner:
		return "Miner"
	case NodeValidator:
		return "Validator"
	default:
		return "None"
	}
}

// QuorumKind marks whether a Validator node also holds a harvester's BLS
// secret share, the second half of the "Validator ∧ Harvester" roles
// spec.md §4.9 requires for building and certifying blocks.
type QuorumKind int

const (
	QuorumNone QuorumKind = iota
	QuorumHarvester
)

// RoleContext is a node's fixed authorization identity for its lifetime.
type RoleContext struct {
	Type   NodeType
	Quorum QuorumKind
}

// IsHarvester reports whether ctx satisfies "Validator ∧ Harvester".
func (ctx RoleContext) IsHarvester() bool {
	return ctx.Type == NodeValidator && ctx.Quorum == QuorumHarvester
}

// Action names the privileged operations spec.md §4.9's table gates.
type Action string

const (
	ActionProduceGenesisTxns  Action = "produce genesis transactions"
	ActionMineBlock           Action = "mine genesis / mine convergence"
	ActionBuildProposal       Action = "build proposal block"
	ActionCertifyBlock        Action = "certify blocks"
)

// ErrWrongNodeType is returned when ctx.Type cannot perform action.
var ErrWrongNodeType = errors.New("runtime: wrong node type for action")

// ErrWrongQuorum is returned when ctx satisfies NodeType but not the
// quorum-role half of an action's requirement.
var ErrWrongQuorum = errors.New("runtime: wrong quorum role for action")

// Authorize implements spec.md §4.9's action -> required-role table,
// refusing any action string ctx is not permitted to perform.
func Authorize(ctx RoleContext, action Action) error {
	switch action {
	case ActionProduceGenesisTxns:
		if ctx.Type != NodeBootstrap {
			return ErrWrongNodeType
		}
	case ActionMineBlock:
		if ctx.Type != NodeMiner {
			return ErrWrongNodeType
		}
	case ActionBuildProposal, ActionCertifyBlock:
		if ctx.Type != NodeValidator {
			return ErrWrongNodeType
		}
		if ctx.Quorum != QuorumHarvester {
			return ErrWrongQuorum
		}
	default:
		return errors.Errorf("runtime: unknown action %q", action)
	}
	return nil
}
