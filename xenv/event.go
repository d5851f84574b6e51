// Copyright (c) 2026 The StakeHouse developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package xenv

import (
	"github.com/ethereum/go-ethereum/rlp"

	"github.com/stakehouse/stakehouse/house"
)

// Event is emitted by an engine on a successful state transition. Events
// collected during a reverted operation are discarded, so every stored event
// corresponds to exactly one transition.
type Event struct {
	Address house.Address   `json:"address"`
	Name    string          `json:"name"`
	Topics  []house.Bytes32 `json:"topics"`
	Data    []byte          `json:"data"`
}

// Signature returns the keccak256 hash of the event name, following the
// solidity event signature convention.
func (e *Event) Signature() house.Bytes32 {
	return house.Keccak256([]byte(e.Name))
}

// Events slice of events.
type Events []*Event

// EncodeData RLP encodes values into event data.
func EncodeData(values ...any) []byte {
	data, err := rlp.EncodeToBytes(values)
	if err != nil {
		panic(err)
	}
	return data
}
