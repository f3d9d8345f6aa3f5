// Copyright (c) 2026 The Vrrb developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package main

import (
	"os"
	"path/filepath"

	cli "gopkg.in/urfave/cli.v1"
)

var (
	roleFlag = cli.StringFlag{
		Name:  "role",
		Value: "validator",
		Usage: "node role: bootstrap|miner|validator",
	}
	dataDirFlag = cli.StringFlag{
		Name:  "data-dir",
		Value: defaultDataDir(),
		Usage: "directory for the DAG store and node keys",
	}
	ipFlag = cli.StringFlag{
		Name:  "ip",
		Value: "127.0.0.1",
		Usage: "this node's advertised IP address, bound into its claim",
	}
	quorumThresholdFlag = cli.IntFlag{
		Name:  "quorum-threshold",
		Value: 1,
		Usage: "number of harvester partial signatures required to certify a block (parsed but not read; each partial-signature event carries its own threshold)",
	}
	blsIKMFlag = cli.StringFlag{
		Name:  "bls-ikm-file",
		Usage: "path to this node's BLS secret-share seed material (harvester-only)",
	}
	blsGroupFlag = cli.StringFlag{
		Name:  "bls-group-file",
		Usage: "path to the quorum's BLS group public-key set, JSON-encoded (harvester-only)",
	}
	verbosityFlag = cli.IntFlag{
		Name:  "verbosity",
		Value: int(3),
		Usage: "log verbosity (0-5)",
	}
)

func defaultDataDir() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return ".vrrbd"
	}
	return filepath.Join(home, ".vrrbd")
}
