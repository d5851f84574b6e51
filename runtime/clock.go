// Copyright (c) 2026 The StakeHouse developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package runtime

import (
	"sync/atomic"
	"time"
)

// Clock is the external time source. It is read once per call, at the start,
// so every check inside an operation sees the same reading.
type Clock interface {
	Now() uint64
}

// SystemClock reads wall time in unix seconds.
type SystemClock struct{}

func (SystemClock) Now() uint64 {
	return uint64(time.Now().Unix())
}

// ManualClock is an externally advanced clock for tests and replay.
type ManualClock struct {
	now atomic.Uint64
}

func NewManualClock(now uint64) *ManualClock {
	c := &ManualClock{}
	c.now.Store(now)
	return c
}

func (c *ManualClock) Now() uint64 {
	return c.now.Load()
}

// Advance moves the clock forward by d seconds.
func (c *ManualClock) Advance(d uint64) {
	c.now.Add(d)
}

// Set jumps the clock to now. Never moves backwards.
func (c *ManualClock) Set(now uint64) {
	for {
		cur := c.now.Load()
		if now <= cur || c.now.CompareAndSwap(cur, now) {
			return
		}
	}
}
