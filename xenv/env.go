// Copyright (c) 2026 The StakeHouse developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package xenv

import (
	"math/big"

	"github.com/stakehouse/stakehouse/house"
	"github.com/stakehouse/stakehouse/state"
)

// BlockContext execution context provided by the surrounding environment.
type BlockContext struct {
	Time uint64
}

// Environment is handed to every engine operation. It carries the caller
// identity, the attached native value, the external clock reading taken at
// the start of the call, and the event sink.
type Environment struct {
	state    *state.State
	blockCtx *BlockContext
	caller   house.Address
	value    *big.Int

	events Events
}

// New create a new env.
func New(st *state.State, blockCtx *BlockContext, caller house.Address, value *big.Int) *Environment {
	if value == nil {
		value = new(big.Int)
	}
	return &Environment{
		state:    st,
		blockCtx: blockCtx,
		caller:   caller,
		value:    value,
	}
}

func (env *Environment) State() *state.State { return env.state }

// Caller the identity invoking the operation.
func (env *Environment) Caller() house.Address { return env.caller }

// Value native coin attached to the call, already held in engine custody.
func (env *Environment) Value() *big.Int { return env.value }

// Now the external clock reading for this call.
func (env *Environment) Now() uint64 { return env.blockCtx.Time }

// BlockContext returns the block context.
func (env *Environment) BlockContext() *BlockContext { return env.blockCtx }

// Log collects an event. The runtime flushes collected events only when the
// operation succeeds.
func (env *Environment) Log(address house.Address, name string, topics []house.Bytes32, data []byte) {
	env.events = append(env.events, &Event{
		Address: address,
		Name:    name,
		Topics:  topics,
		Data:    data,
	})
}

// Events returns events collected so far.
func (env *Environment) Events() Events { return env.events }
