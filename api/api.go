// Copyright (c) 2026 The StakeHouse developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

// Package api assembles the HTTP surface: engine endpoints, the event log
// query endpoint and the websocket event stream.
package api

import (
	"net/http"
	"net/http/pprof"
	"strings"

	"github.com/gorilla/handlers"
	"github.com/gorilla/mux"

	"github.com/stakehouse/stakehouse/api/assets"
	"github.com/stakehouse/stakehouse/api/auctions"
	"github.com/stakehouse/stakehouse/api/events"
	"github.com/stakehouse/stakehouse/api/stakers"
	"github.com/stakehouse/stakehouse/api/subscriptions"
	"github.com/stakehouse/stakehouse/api/tokens"
	"github.com/stakehouse/stakehouse/auction"
	"github.com/stakehouse/stakehouse/eventdb"
	"github.com/stakehouse/stakehouse/ledger"
	"github.com/stakehouse/stakehouse/log"
	"github.com/stakehouse/stakehouse/registry"
	"github.com/stakehouse/stakehouse/runtime"
	"github.com/stakehouse/stakehouse/staking"
)

var logger = log.WithContext("pkg", "api")

type Options struct {
	AllowedOrigins  string
	EventsLimit     uint64
	PprofOn         bool
	EnableMetrics   bool
	EnableReqLogger bool
}

// Engines bundles the call targets the API mounts.
type Engines struct {
	Ledger   *ledger.Ledger
	Registry *registry.Registry
	Staking  *staking.Staking
	Auction  *auction.Auction
}

// New returns the api handler and a close function that terminates live
// websocket subscriptions.
func New(
	rt *runtime.Runtime,
	engines Engines,
	eventDB *eventdb.EventDB,
	opts Options,
) (http.HandlerFunc, func()) {
	origins := strings.Split(strings.TrimSpace(opts.AllowedOrigins), ",")
	for i, o := range origins {
		origins[i] = strings.ToLower(strings.TrimSpace(o))
	}

	router := mux.NewRouter()

	tokens.New(rt, engines.Ledger).
		Mount(router, "/tokens")
	assets.New(rt, engines.Registry).
		Mount(router, "/assets")
	stakers.New(rt, engines.Staking).
		Mount(router, "/stakers")
	auctions.New(rt, engines.Auction).
		Mount(router, "/auctions")
	if eventDB != nil {
		events.New(eventDB, opts.EventsLimit).
			Mount(router, "/events")
	}
	subs := subscriptions.New(rt, origins)
	subs.Mount(router, "/subscriptions")

	if opts.PprofOn {
		router.HandleFunc("/debug/pprof/cmdline", pprof.Cmdline)
		router.HandleFunc("/debug/pprof/profile", pprof.Profile)
		router.HandleFunc("/debug/pprof/symbol", pprof.Symbol)
		router.HandleFunc("/debug/pprof/trace", pprof.Trace)
		router.PathPrefix("/debug/pprof/").HandlerFunc(pprof.Index)
	}

	if opts.EnableMetrics {
		router.Use(metricsMiddleware)
	}

	handler := handlers.CompressHandler(router)
	handler = handlers.CORS(
		handlers.AllowedOrigins(origins),
		handlers.AllowedHeaders([]string{"content-type"}),
		handlers.AllowedMethods([]string{http.MethodGet, http.MethodPost}),
	)(handler)

	if opts.EnableReqLogger {
		handler = requestLoggerHandler(handler, logger)
	}

	return handler.ServeHTTP, subs.Close
}
