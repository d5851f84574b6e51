// Copyright (c) 2026 The StakeHouse developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package solidity

import (
	"github.com/stakehouse/stakehouse/house"
	"github.com/stakehouse/stakehouse/state"
)

// Context binds an engine account to the world state. All storage wrappers of
// one engine share a context apart from their slot positions.
type Context struct {
	address house.Address
	state   *state.State
}

func NewContext(address house.Address, state *state.State) *Context {
	return &Context{
		address: address,
		state:   state,
	}
}

func (c *Context) Address() house.Address {
	return c.address
}

func (c *Context) State() *state.State {
	return c.state
}
