// Copyright (c) 2026 The StakeHouse developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

// Package runtime drives engine operations: it serializes calls, snapshots
// state so a rejected call leaves nothing behind, moves attached native
// value into engine custody, and publishes events only for calls that
// succeed.
package runtime

import (
	"math/big"
	"sync"
	"time"

	"github.com/ethereum/go-ethereum/event"

	"github.com/stakehouse/stakehouse/house"
	"github.com/stakehouse/stakehouse/log"
	"github.com/stakehouse/stakehouse/metrics"
	"github.com/stakehouse/stakehouse/reverts"
	"github.com/stakehouse/stakehouse/state"
	"github.com/stakehouse/stakehouse/xenv"
)

var logger = log.WithContext("pkg", "runtime")

// ErrInsufficientValue the caller's native balance cannot cover the value
// attached to the call.
var ErrInsufficientValue = reverts.New("InsufficientValue")

var (
	metricCalls        = metrics.LazyLoadCounterVec("runtime_call_count", []string{"outcome"})
	metricCallDuration = metrics.LazyLoadHistogram("runtime_call_duration_ms", metrics.Bucket10s)
)

// EventStore persists events of successful calls. Implementations must
// tolerate being called from the runtime's serial section.
type EventStore interface {
	Write(blockTime uint64, events xenv.Events) error
}

// Runtime executes engine operations one at a time against shared state.
type Runtime struct {
	mu    sync.Mutex
	state *state.State
	clock Clock
	store EventStore
	feed  event.Feed
}

// New create a new runtime. store may be nil to skip persistence.
func New(st *state.State, clock Clock, store EventStore) *Runtime {
	return &Runtime{
		state: st,
		clock: clock,
		store: store,
	}
}

// Now returns the current clock reading.
func (rt *Runtime) Now() uint64 {
	return rt.clock.Now()
}

// SubscribeEvents delivers each successful call's event batch to ch.
func (rt *Runtime) SubscribeEvents(ch chan<- xenv.Events) event.Subscription {
	return rt.feed.Subscribe(ch)
}

// Read runs fn inside the serial section without checkpointing. fn must not
// mutate state.
func (rt *Runtime) Read(fn func(st *state.State, now uint64) error) error {
	rt.mu.Lock()
	defer rt.mu.Unlock()
	return fn(rt.state, rt.clock.Now())
}

// Call executes one engine operation. The attached value moves from the
// caller into the target engine's custody before fn runs; fn sees it via
// env.Value(). On any error the state snapshot is restored and collected
// events are dropped. On success events are flushed to the store and to
// subscribers, exactly once.
func (rt *Runtime) Call(
	target house.Address,
	caller house.Address,
	value *big.Int,
	fn func(env *xenv.Environment) error,
) (xenv.Events, error) {
	rt.mu.Lock()
	defer rt.mu.Unlock()

	started := time.Now()
	defer func() {
		metricCallDuration().Observe(time.Since(started).Milliseconds())
	}()

	now := rt.clock.Now()
	env := xenv.New(rt.state, &xenv.BlockContext{Time: now}, caller, value)

	checkpoint := rt.state.NewCheckpoint()
	abort := func(err error) (xenv.Events, error) {
		rt.state.RevertTo(checkpoint)
		outcome := "error"
		if reverts.IsRevertErr(err) {
			outcome = "revert"
		}
		metricCalls().AddWithLabel(1, map[string]string{"outcome": outcome})
		logger.Debug("call rejected", "target", target, "caller", caller, "err", err)
		return nil, err
	}

	if value != nil && value.Sign() > 0 {
		ok, err := rt.state.SubBalance(caller, value)
		if err != nil {
			return abort(err)
		}
		if !ok {
			return abort(ErrInsufficientValue)
		}
		if err := rt.state.AddBalance(target, value); err != nil {
			return abort(err)
		}
	}

	if err := fn(env); err != nil {
		return abort(err)
	}

	events := env.Events()
	if rt.store != nil && len(events) > 0 {
		if err := rt.store.Write(now, events); err != nil {
			// state already committed; the event log is best-effort
			logger.Error("failed to persist events", "err", err)
		}
	}
	if len(events) > 0 {
		rt.feed.Send(events)
	}
	metricCalls().AddWithLabel(1, map[string]string{"outcome": "ok"})
	return events, nil
}
