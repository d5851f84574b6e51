// Copyright (c) 2026 The StakeHouse developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package solidity

import (
	"github.com/stakehouse/stakehouse/house"
)

// Address is a wrapper for storage and retrieval of an address. Similar to storing an address in a smart contract.
type Address struct {
	context *Context
	pos     house.Bytes32
}

func NewAddress(context *Context, pos house.Bytes32) *Address {
	return &Address{context: context, pos: pos}
}

func (a *Address) Get() (house.Address, error) {
	storage, err := a.context.state.GetStorage(a.context.address, a.pos)
	if err != nil {
		return house.Address{}, err
	}
	return house.BytesToAddress(storage.Bytes()), nil
}

func (a *Address) Set(addr *house.Address) {
	var storage house.Bytes32
	if addr != nil {
		storage = house.BytesToBytes32(addr.Bytes())
	}
	a.context.state.SetStorage(a.context.address, a.pos, storage)
}
