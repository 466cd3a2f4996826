// Copyright (c) 2025 The VeChainThor developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package main

import (
	"log/slog"
	"net"
	"net/http"
	"os"
	"os/user"
	"path/filepath"
	"time"

	"github.com/beevik/ntp"
	"github.com/gorilla/handlers"
	"github.com/gorilla/mux"
	"github.com/mattn/go-isatty"
	"github.com/pkg/errors"
	"golang.org/x/sync/errgroup"
	cli "gopkg.in/urfave/cli.v1"

	"github.com/vechain/stakeledger/ledger"
	"github.com/vechain/stakeledger/log"
	"github.com/vechain/stakeledger/lvldb"
	"github.com/vechain/stakeledger/metrics"
	"github.com/vechain/stakeledger/staker"
)

// maxClockOffset is the drift above which cooldown deadlines computed from the
// local clock become unreliable.
const maxClockOffset = 2 * time.Second

func initLogger(ctx *cli.Context) {
	format := log.FormatTerminal
	if ctx.GlobalBool(jsonLogsFlag.Name) {
		format = log.FormatJSON
	}
	useColor := (isatty.IsTerminal(os.Stderr.Fd()) || isatty.IsCygwinTerminal(os.Stderr.Fd())) && os.Getenv("TERM") != "dumb"

	var level slog.LevelVar
	level.Set(log.FromLegacyLevel(ctx.GlobalInt(verbosityFlag.Name)))
	logger := log.NewLogger(log.NewHandler(os.Stderr, format, &level, useColor))
	log.SetDefault(logger)
	staker.SetLogger(logger.New("pkg", "staker"))
}

func defaultDataDir() string {
	if home := homeDir(); home != "" {
		return filepath.Join(home, ".stakeledger")
	}
	return ""
}

func homeDir() string {
	if home := os.Getenv("HOME"); home != "" {
		return home
	}
	if usr, err := user.Current(); err == nil {
		return usr.HomeDir
	}
	return ""
}

// openDB opens the ledger database under --data-dir. A read-only open requires
// an existing database.
func openDB(ctx *cli.Context, readOnly bool) (*lvldb.LevelDB, error) {
	dir := ctx.GlobalString(dataDirFlag.Name)
	if dir == "" {
		return nil, errors.New("unable to infer default data dir, use --data-dir to specify")
	}
	if !readOnly {
		if err := os.MkdirAll(dir, 0o700); err != nil {
			return nil, errors.Wrapf(err, "create data dir [%v]", dir)
		}
	}
	db, err := lvldb.New(filepath.Join(dir, "ledger.db"), lvldb.Options{
		CacheSize:              ctx.GlobalInt(cacheSizeFlag.Name),
		OpenFilesCacheCapacity: 64,
		ReadOnly:               readOnly,
	})
	if err != nil {
		return nil, errors.Wrapf(err, "open ledger database [%v]", dir)
	}
	return db, nil
}

func parsePubkeyFlag(ctx *cli.Context, name string) (ledger.Pubkey, error) {
	value := ctx.String(name)
	if value == "" {
		return ledger.Pubkey{}, errors.Errorf("missing --%v", name)
	}
	key, err := ledger.ParsePubkey(value)
	if err != nil {
		return ledger.Pubkey{}, errors.Wrapf(err, "parse --%v", name)
	}
	return key, nil
}

// startMetrics serves prometheus metrics when --metrics-addr is set. The returned
// func stops the server.
func startMetrics(ctx *cli.Context) (func(), error) {
	addr := ctx.GlobalString(metricsAddrFlag.Name)
	if addr == "" {
		return func() {}, nil
	}
	metrics.InitializePrometheusMetrics()
	url, stop, err := startMetricsServer(addr)
	if err != nil {
		return nil, err
	}
	logger.Info("metrics service started", "url", url)
	return stop, nil
}

func startMetricsServer(addr string) (string, func(), error) {
	listener, err := net.Listen("tcp", addr)
	if err != nil {
		return "", nil, errors.Wrapf(err, "listen metrics API addr [%v]", addr)
	}

	router := mux.NewRouter()
	router.PathPrefix("/metrics").Handler(metrics.HTTPHandler())
	handler := handlers.CompressHandler(router)

	srv := &http.Server{Handler: handler, ReadHeaderTimeout: time.Second, ReadTimeout: 5 * time.Second}
	var group errgroup.Group
	group.Go(func() error {
		if err := srv.Serve(listener); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})
	return "http://" + listener.Addr().String() + "/metrics", func() {
		srv.Close()
		if err := group.Wait(); err != nil {
			logger.Warn("metrics server stopped", "err", err)
		}
	}, nil
}

func checkClockOffset() {
	resp, err := ntp.Query("pool.ntp.org")
	if err != nil {
		logger.Debug("failed to access NTP", "err", err)
		return
	}
	if resp.ClockOffset > maxClockOffset || resp.ClockOffset < -maxClockOffset {
		logger.Warn("clock offset detected", "offset", resp.ClockOffset)
	}
}
