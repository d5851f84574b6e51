// Copyright (c) 2026 The StakeHouse developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"golang.org/x/sync/errgroup"
	cli "gopkg.in/urfave/cli.v1"

	"github.com/stakehouse/stakehouse/api"
	"github.com/stakehouse/stakehouse/log"
	"github.com/stakehouse/stakehouse/metrics"
	rt "github.com/stakehouse/stakehouse/runtime"
)

var (
	version   string
	gitCommit string
	gitTag    string
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
		Name:      "StakeHouse",
		Usage:     "staking and auction engine with an HTTP API",
		Copyright: "2026 The StakeHouse developers",
		Flags: []cli.Flag{
			genesisFlag,
			dataDirFlag,
			memFlag,
			apiAddrFlag,
			apiCorsFlag,
			apiEventsLimitFlag,
			apiTimeoutFlag,
			enableAPILogsFlag,
			verbosityFlag,
			jsonLogsFlag,
			pprofFlag,
			enableMetricsFlag,
			metricsAddrFlag,
			skipClockCheckFlag,
		},
		Action: defaultAction,
	}

	if err := app.Run(os.Args); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func defaultAction(ctx *cli.Context) error {
	defer func() { log.Info("exited") }()

	initLogger(ctx)
	checkMemory()
	if !ctx.Bool(skipClockCheckFlag.Name) {
		checkClockOffset()
	}
	if ctx.Bool(enableMetricsFlag.Name) {
		metrics.InitializePrometheusMetrics()
	}

	db := openEventDB(ctx)
	defer func() { log.Info("closing event database..."); db.Close() }()

	cfg, err := loadGenesisConfig(ctx.String(genesisFlag.Name))
	if err != nil {
		fatal("load genesis config:", err)
	}

	node, err := buildNode(cfg, rt.SystemClock{}, db)
	if err != nil {
		fatal("build node:", err)
	}
	log.Info("genesis applied", "owner", node.Owner, "tokenHolders", len(cfg.Tokens), "assets", len(cfg.Assets))

	handler, closeSubs := api.New(node.Runtime, api.Engines{
		Ledger:   node.Ledger,
		Registry: node.Registry,
		Staking:  node.Staking,
		Auction:  node.Auction,
	}, db, api.Options{
		AllowedOrigins:  ctx.String(apiCorsFlag.Name),
		EventsLimit:     ctx.Uint64(apiEventsLimitFlag.Name),
		PprofOn:         ctx.Bool(pprofFlag.Name),
		EnableMetrics:   ctx.Bool(enableMetricsFlag.Name),
		EnableReqLogger: ctx.Bool(enableAPILogsFlag.Name),
	})
	defer func() { log.Info("closing subscriptions..."); closeSubs() }()

	signalCtx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	timeout := time.Duration(ctx.Uint64(apiTimeoutFlag.Name)) * time.Millisecond

	group, groupCtx := errgroup.WithContext(signalCtx)
	group.Go(func() error {
		return serveHTTP(groupCtx, "api", ctx.String(apiAddrFlag.Name), handler, timeout)
	})
	if ctx.Bool(enableMetricsFlag.Name) {
		group.Go(func() error {
			return serveMetrics(groupCtx, ctx.String(metricsAddrFlag.Name))
		})
	}
	return group.Wait()
}
