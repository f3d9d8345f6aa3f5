// Copyright (c) 2026 The Vrrb developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package main

import (
	"encoding/hex"
	"encoding/json"
	"fmt"
	"io/ioutil"
	"net"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"

	"time"

	ethcrypto "github.com/ethereum/go-ethereum/crypto"
	"github.com/inconshreveable/log15"
	"github.com/pkg/errors"
	cli "gopkg.in/urfave/cli.v1"

	"github.com/holiman/uint256"
	"github.com/vrrb-network/vrrb/bls"
	"github.com/vrrb-network/vrrb/block"
	"github.com/vrrb-network/vrrb/certificate"
	"github.com/vrrb-network/vrrb/claim"
	"github.com/vrrb-network/vrrb/crypto"
	"github.com/vrrb-network/vrrb/dag"
	"github.com/vrrb-network/vrrb/genesis"
	"github.com/vrrb-network/vrrb/kvstore"
	"github.com/vrrb-network/vrrb/miner"
	"github.com/vrrb-network/vrrb/runtime"
	"github.com/vrrb-network/vrrb/state"
	"github.com/vrrb-network/vrrb/vrrb"
)

var log = log15.New("pkg", "main")

func main() {
	app := cli.App{
		Name:      "vrrbd",
		Usage:     "Node of the Vrrb permissioned DAG network",
		Copyright: "2026 The Vrrb developers",
		Flags: []cli.Flag{
			roleFlag,
			dataDirFlag,
			ipFlag,
			quorumThresholdFlag,
			blsIKMFlag,
			blsGroupFlag,
			verbosityFlag,
		},
		Action: runAction,
	}

	if err := app.Run(os.Args); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func runAction(ctx *cli.Context) error {
	initLogger(ctx)

	role, err := parseRole(ctx.String(roleFlag.Name))
	if err != nil {
		return err
	}

	dataDir := ctx.String(dataDirFlag.Name)
	if err := os.MkdirAll(dataDir, 0700); err != nil {
		return errors.Wrap(err, "create data dir")
	}

	sk, err := loadOrGenerateNodeKey(filepath.Join(dataDir, "node.key"))
	if err != nil {
		return errors.Wrap(err, "load or generate node key")
	}

	nodeID, err := loadOrGenerateNodeID(filepath.Join(dataDir, "node.id"))
	if err != nil {
		return errors.Wrap(err, "load or generate node id")
	}

	ip := net.ParseIP(ctx.String(ipFlag.Name))
	if ip == nil {
		return errors.Errorf("invalid --%s", ipFlag.Name)
	}

	eligibility := claim.EligibilityValidator
	if role == runtime.NodeMiner || role == runtime.NodeBootstrap {
		eligibility = claim.EligibilityMiner
	}
	self, err := buildClaim(sk, nodeID, ip, eligibility)
	if err != nil {
		return errors.Wrap(err, "build self claim")
	}

	store, err := kvstore.New(filepath.Join(dataDir, "dag"), kvstore.Options{})
	if err != nil {
		return errors.Wrap(err, "open dag store")
	}
	dagStore, err := dag.New(store)
	if err != nil {
		return errors.Wrap(err, "init dag")
	}

	if _, err := dagStore.Head(); err == dag.ErrNoGenesis {
		if role != runtime.NodeBootstrap {
			return errors.New("vrrbd: no genesis found; start a --role bootstrap node first")
		}
		if err := bootstrapGenesis(dagStore, self, sk); err != nil {
			return errors.Wrap(err, "bootstrap genesis")
		}
	} else if err != nil {
		return errors.Wrap(err, "read dag head")
	}

	roleCtx := runtime.RoleContext{Type: role}
	var signer *bls.Signer
	if ctx.String(blsIKMFlag.Name) != "" && ctx.String(blsGroupFlag.Name) != "" {
		signer, err = loadSigner(ctx.String(blsIKMFlag.Name), ctx.String(blsGroupFlag.Name), nodeID)
		if err != nil {
			return errors.Wrap(err, "load BLS signer")
		}
		roleCtx.Quorum = runtime.QuorumHarvester
	}

	certs, err := certificate.New(signer)
	if err != nil {
		return errors.Wrap(err, "init certificate pipeline")
	}

	trie := state.NewTrie()
	applier := state.NewApplier(trie, state.DefaultFeeSchedule, nowUnix)
	mn := miner.New(dagStore, self, sk, nil)

	orc := runtime.New(runtime.Config{
		Role:    roleCtx,
		DAG:     dagStore,
		Certs:   certs,
		Miner:   mn,
		Applier: applier,
		Trie:    trie,
		Signer:  signer,
		Self:    self,
		SK:      sk,
		Mempool: runtime.NewMempool(),
		Emit:    func(ev runtime.Event) { log.Debug("emitted event", "event", fmt.Sprintf("%T", ev)) },
	})

	log.Info("vrrbd started", "role", role, "address", self.Address, "dataDir", dataDir)
	orc.Run()

	exit := make(chan os.Signal, 1)
	signal.Notify(exit, os.Interrupt, syscall.SIGTERM)
	<-exit

	log.Info("shutting down")
	orc.Stop()
	orc.Wait()
	return nil
}

func initLogger(ctx *cli.Context) {
	log15.Root().SetHandler(log15.LvlFilterHandler(log15.Lvl(ctx.Int(verbosityFlag.Name)), log15.StderrHandler))
}

func parseRole(s string) (runtime.NodeType, error) {
	switch s {
	case "bootstrap":
		return runtime.NodeBootstrap, nil
	case "miner":
		return runtime.NodeMiner, nil
	case "validator":
		return runtime.NodeValidator, nil
	default:
		return runtime.NodeNone, errors.Errorf("vrrbd: unknown --role %q", s)
	}
}

func loadOrGenerateNodeKey(path string) (*crypto.PrivateKey, error) {
	if key, err := ethcrypto.LoadECDSA(path); err == nil {
		return key, nil
	}
	key, err := crypto.GenerateKey()
	if err != nil {
		return nil, err
	}
	if err := ethcrypto.SaveECDSA(path, key); err != nil {
		return nil, err
	}
	return key, nil
}

func loadOrGenerateNodeID(path string) (vrrb.NodeId, error) {
	raw, err := ioutil.ReadFile(path)
	if err == nil {
		return vrrb.ParseNodeId(string(raw))
	}
	id := vrrb.NewNodeId()
	if err := ioutil.WriteFile(path, []byte(id.String()), 0600); err != nil {
		return vrrb.NodeId{}, err
	}
	return id, nil
}

func buildClaim(sk *crypto.PrivateKey, nodeID vrrb.NodeId, ip net.IP, eligibility claim.Eligibility) (*claim.Claim, error) {
	pub := &sk.PublicKey
	hash := vrrb.Sha256(crypto.PublicKeyBytes(pub), []byte(ip.String()))
	sig, err := crypto.Sign(hash, sk)
	if err != nil {
		return nil, err
	}
	return claim.New(pub, sig, nodeID, ip, eligibility)
}

// bootstrapGenesis mints the root block for a brand-new network: a single
// vesting entry crediting the bootstrap node itself, and a one-claim
// roster naming it the Genesis miner.
func bootstrapGenesis(store *dag.Store, self *claim.Claim, sk *crypto.PrivateKey) error {
	b := &genesis.Builder{
		Timestamp: nowUnix(),
		BlockSeed: 1,
		Vesting: []genesis.VestingEntry{
			{Receiver: self.Address, Amount: uint256.NewInt(1_000_000)},
		},
		Claims:      []*claim.Claim{self},
		FirstReward: block.Reward{Epoch: 0, Amount: uint256.NewInt(50)},
	}
	g, err := b.Build(sk)
	if err != nil {
		return err
	}
	return store.AppendGenesis(g)
}

type groupFile struct {
	GroupKey string            `json:"group_key"`
	Shares   map[string]string `json:"shares"`
}

// loadSigner builds this node's bls.Signer from its secret-share seed
// material and the quorum's published group public-key set.
func loadSigner(ikmPath, groupPath string, nodeID vrrb.NodeId) (*bls.Signer, error) {
	ikm, err := ioutil.ReadFile(ikmPath)
	if err != nil {
		return nil, err
	}
	raw, err := ioutil.ReadFile(groupPath)
	if err != nil {
		return nil, err
	}
	var gf groupFile
	if err := json.Unmarshal(raw, &gf); err != nil {
		return nil, errors.Wrap(err, "parse bls group file")
	}

	groupKey, err := hex.DecodeString(gf.GroupKey)
	if err != nil {
		return nil, errors.Wrap(err, "decode group key")
	}
	perNode := make(map[vrrb.NodeId][]byte, len(gf.Shares))
	for idStr, shareHex := range gf.Shares {
		id, err := vrrb.ParseNodeId(idStr)
		if err != nil {
			return nil, errors.Wrapf(err, "parse node id %q", idStr)
		}
		share, err := hex.DecodeString(shareHex)
		if err != nil {
			return nil, errors.Wrapf(err, "decode share for %q", idStr)
		}
		perNode[id] = share
	}
	groupSet := bls.NewGroupPublicKeySet(groupKey, perNode)

	share := bls.NewSecretShare(nodeID, ikm)
	return bls.NewSigner(share, groupSet), nil
}

func nowUnix() uint64 {
	return uint64(time.Now().Unix())
}
