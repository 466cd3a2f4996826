// Copyright (c) 2025 The VeChainThor developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package main

import (
	cli "gopkg.in/urfave/cli.v1"

	"github.com/vechain/stakeledger/log"
)

var (
	dataDirFlag = cli.StringFlag{
		Name:  "data-dir",
		Value: defaultDataDir(),
		Usage: "directory for the ledger database",
	}
	verbosityFlag = cli.IntFlag{
		Name:  "verbosity",
		Value: int(log.LegacyLevelInfo),
		Usage: "log verbosity (0-9)",
	}
	jsonLogsFlag = cli.BoolFlag{
		Name:  "log-json",
		Usage: "output logs in JSON format",
	}
	metricsAddrFlag = cli.StringFlag{
		Name:  "metrics-addr",
		Usage: "metrics service listening address, disabled if empty",
	}
	ntpCheckFlag = cli.BoolFlag{
		Name:  "ntp-check",
		Usage: "warn when the local clock drifts from NTP time",
	}
	cacheSizeFlag = cli.IntFlag{
		Name:  "cache",
		Value: 128,
		Usage: "size of the database cache in MiB",
	}
	paramsFlag = cli.StringFlag{
		Name:  "params",
		Usage: "path to the pool parameters (yaml)",
	}
	poolFlag = cli.StringFlag{
		Name:  "pool",
		Usage: "config key of the pool (base58)",
	}
	stakeRatioFlag = cli.Uint64Flag{
		Name:  "stake-ratio",
		Value: 13000,
		Usage: "tokens made effective per unit of collateral, in basis points",
	}
)
