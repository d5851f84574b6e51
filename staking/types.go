// Copyright (c) 2026 The StakeHouse developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package staking

import (
	"math/big"

	"github.com/stakehouse/stakehouse/house"
)

// Record is the per-staker ledger entry. Records are zeroed in place on
// full exit, never deleted.
type Record struct {
	Amount     *big.Int // staked principal
	Rewards    *big.Int // accrued but unclaimed rewards
	LastUpdate uint64   // accrual checkpoint, unix seconds
}

func newRecord() *Record {
	return &Record{
		Amount:  new(big.Int),
		Rewards: new(big.Int),
	}
}

// IsEmpty reports whether the record carries no principal and no rewards.
func (r *Record) IsEmpty() bool {
	return r.Amount.Sign() == 0 && r.Rewards.Sign() == 0
}

// pendingFor computes the reward earned on the current principal since the
// last checkpoint, truncating toward zero.
func (r *Record) pendingFor(now uint64, rateBps uint32) *big.Int {
	if now <= r.LastUpdate || r.Amount.Sign() == 0 {
		return new(big.Int)
	}
	elapsed := new(big.Int).SetUint64(now - r.LastUpdate)
	pending := new(big.Int).Mul(r.Amount, big.NewInt(int64(rateBps)))
	pending.Mul(pending, elapsed)
	return pending.Div(pending, big.NewInt(house.BpsDenominator*house.YearSeconds))
}

// accrue folds pending rewards into the record and moves the checkpoint to
// now. Every state-changing operation accrues before acting.
func (r *Record) accrue(now uint64, rateBps uint32) {
	r.Rewards.Add(r.Rewards, r.pendingFor(now, rateBps))
	r.LastUpdate = now
}

// Projected returns the record as it would look after an accrual at now,
// without mutating storage.
func (r *Record) Projected(now uint64, rateBps uint32) *Record {
	return &Record{
		Amount:     new(big.Int).Set(r.Amount),
		Rewards:    new(big.Int).Add(r.Rewards, r.pendingFor(now, rateBps)),
		LastUpdate: r.LastUpdate,
	}
}
