// Copyright (c) 2025 The VeChainThor developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package main

import (
	"fmt"
	"os"

	"github.com/pkg/errors"
	cli "gopkg.in/urfave/cli.v1"
	"gopkg.in/yaml.v3"

	"github.com/vechain/stakeledger/log"
	"github.com/vechain/stakeledger/staker"
	"github.com/vechain/stakeledger/staker/memhost"
)

var (
	version   string
	gitCommit string
	gitTag    string
	logger    = log.WithContext("pkg", "main")
)

func fullVersion() string {
	versionMeta := "release"
	if gitTag == "" {
		versionMeta = "dev"
	}
	return fmt.Sprintf("%s-%s-%s", version, gitCommit, versionMeta)
}

func main() {
	app := cli.App{
		Version:   fullVersion(),
		Name:      "stakeledger",
		Usage:     "Operator tool of the token staking ledger",
		Copyright: "2025 VeChain Foundation <https://vechain.org/>",
		Flags: []cli.Flag{
			dataDirFlag,
			verbosityFlag,
			jsonLogsFlag,
			metricsAddrFlag,
			ntpCheckFlag,
			cacheSizeFlag,
		},
		Before: beforeAction,
		Commands: []cli.Command{
			{
				Name:   "init",
				Usage:  "create a pool in the ledger database",
				Flags:  []cli.Flag{paramsFlag},
				Action: initAction,
			},
			{
				Name:   "show",
				Usage:  "print a pool config and its stake records",
				Flags:  []cli.Flag{poolFlag},
				Action: showAction,
			},
			{
				Name:      "replay",
				Usage:     "run a scenario against an in-memory ledger",
				ArgsUsage: "<scenario.yaml>",
				Flags:     []cli.Flag{stakeRatioFlag},
				Action:    replayAction,
			},
		},
	}

	if err := app.Run(os.Args); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func beforeAction(ctx *cli.Context) error {
	initLogger(ctx)
	if ctx.GlobalBool(ntpCheckFlag.Name) {
		go checkClockOffset()
	}
	return nil
}

func initAction(ctx *cli.Context) error {
	path := ctx.String(paramsFlag.Name)
	if path == "" {
		return errors.New("missing --params")
	}
	params, err := loadPoolParams(path)
	if err != nil {
		return err
	}

	return withLedger(ctx, false, func(st *staker.Staker) error {
		if err := st.InitializeConfig(params.Pool, params.configParams()); err != nil {
			return errors.Wrap(err, "initialize config")
		}
		fmt.Printf("pool %v created\n", params.Pool)
		return nil
	})
}

func showAction(ctx *cli.Context) error {
	pool, err := parsePubkeyFlag(ctx, poolFlag.Name)
	if err != nil {
		return err
	}

	return withLedger(ctx, true, func(st *staker.Staker) error {
		view, err := newPoolView(st, pool)
		if err != nil {
			return err
		}
		enc := yaml.NewEncoder(os.Stdout)
		defer enc.Close()
		return enc.Encode(view)
	})
}

func replayAction(ctx *cli.Context) error {
	if ctx.NArg() != 1 {
		return errors.New("expected exactly one scenario file")
	}
	sc, err := loadScenario(ctx.Args().First())
	if err != nil {
		return err
	}

	stop, err := startMetrics(ctx)
	if err != nil {
		return err
	}
	defer stop()

	results, err := replay(sc, ctx.Uint64(stakeRatioFlag.Name), true)
	for _, r := range results {
		fmt.Println(r)
	}
	return err
}

// withLedger opens the ledger database with an offline host, which rejects
// anything that would move funds.
func withLedger(ctx *cli.Context, readOnly bool, fn func(st *staker.Staker) error) error {
	db, err := openDB(ctx, readOnly)
	if err != nil {
		return err
	}
	defer func() {
		logger.Info("closing ledger database...")
		if err := db.Close(); err != nil {
			logger.Warn("failed to close ledger database", "err", err)
		}
	}()

	stop, err := startMetrics(ctx)
	if err != nil {
		return err
	}
	defer stop()

	host := memhost.New()
	st, err := staker.New(db, host.Host(), staker.Options{})
	if err != nil {
		return err
	}
	return fn(st)
}
