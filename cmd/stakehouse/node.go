// Copyright (c) 2026 The StakeHouse developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package main

import (
	"context"
	"net"
	"net/http"
	"time"

	"github.com/pkg/errors"
	"golang.org/x/sync/errgroup"

	"github.com/stakehouse/stakehouse/auction"
	"github.com/stakehouse/stakehouse/house"
	"github.com/stakehouse/stakehouse/ledger"
	"github.com/stakehouse/stakehouse/log"
	"github.com/stakehouse/stakehouse/metrics"
	"github.com/stakehouse/stakehouse/registry"
	"github.com/stakehouse/stakehouse/runtime"
	"github.com/stakehouse/stakehouse/staking"
	"github.com/stakehouse/stakehouse/state"
)

// Node bundles the built engines and runtime of one instance.
type Node struct {
	State    *state.State
	Runtime  *runtime.Runtime
	Ledger   *ledger.Ledger
	Registry *registry.Registry
	Staking  *staking.Staking
	Auction  *auction.Auction
	Owner    house.Address
}

// buildNode seeds state from the genesis config and wires the engines
// together over it.
func buildNode(cfg *GenesisConfig, clock runtime.Clock, store runtime.EventStore) (*Node, error) {
	st := state.New()

	owner, err := applyGenesis(st, cfg)
	if err != nil {
		return nil, err
	}

	// config overrides must land before engine construction reads them
	ldg := ledger.New(house.LedgerAddress, st)
	ldg.Initialize(owner)
	reg := registry.New(house.RegistryAddress, st)
	pool := staking.New(house.StakingAddress, st, ldg)
	engine := auction.New(house.AuctionAddress, st, reg)
	engine.Initialize(owner)

	if err := seedEngines(st, cfg, owner, ldg, reg, pool.Address()); err != nil {
		return nil, errors.WithMessage(err, "seed genesis state")
	}

	return &Node{
		State:    st,
		Runtime:  runtime.New(st, clock, store),
		Ledger:   ldg,
		Registry: reg,
		Staking:  pool,
		Auction:  engine,
		Owner:    owner,
	}, nil
}

// serveHTTP runs one http server until ctx is canceled, then drains it.
func serveHTTP(ctx context.Context, name, addr string, handler http.Handler, timeout time.Duration) error {
	listener, err := net.Listen("tcp", addr)
	if err != nil {
		return errors.WithMessagef(err, "listen %v addr [%v]", name, addr)
	}
	srv := &http.Server{
		Handler:           handler,
		ReadHeaderTimeout: timeout,
		ReadTimeout:       timeout,
	}
	log.Info("service started", "name", name, "addr", "http://"+listener.Addr().String())

	group, groupCtx := errgroup.WithContext(ctx)
	group.Go(func() error {
		if err := srv.Serve(listener); err != http.ErrServerClosed {
			return errors.WithMessage(err, name)
		}
		return nil
	})
	group.Go(func() error {
		<-groupCtx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	})
	return group.Wait()
}

func serveMetrics(ctx context.Context, addr string) error {
	mux := http.NewServeMux()
	mux.Handle("/metrics", metrics.HTTPHandler())
	return serveHTTP(ctx, "metrics", addr, mux, 10*time.Second)
}
