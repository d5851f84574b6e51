// Copyright (c) 2026 The StakeHouse developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package solidity

import (
	"reflect"

	"github.com/ethereum/go-ethereum/rlp"

	"github.com/stakehouse/stakehouse/house"
)

type Key interface {
	Bytes() []byte
}

// Mapping is a key/value storage abstraction for engine accounts, similar to
// the mapping in Solidity. Values are RLP encoded at blake2b-derived positions.
type Mapping[K Key, V any] struct {
	context *Context
	basePos house.Bytes32
}

func NewMapping[K Key, V any](context *Context, pos house.Bytes32) *Mapping[K, V] {
	return &Mapping[K, V]{context: context, basePos: pos}
}

// Get returns the value at key, or the zero value of V if never set.
func (m *Mapping[K, V]) Get(key K) (value V, err error) {
	position := house.Blake2b(key.Bytes(), m.basePos.Bytes())
	err = m.context.state.DecodeStorage(m.context.address, position, func(raw []byte) error {
		if reflect.ValueOf(value).Kind() == reflect.Ptr {
			value = reflect.New(reflect.TypeOf(value).Elem()).Interface().(V)
		}
		if len(raw) == 0 {
			return nil
		}
		return rlp.DecodeBytes(raw, &value)
	})
	return
}

// Set stores the value at key.
func (m *Mapping[K, V]) Set(key K, value V) error {
	position := house.Blake2b(key.Bytes(), m.basePos.Bytes())
	return m.context.state.EncodeStorage(m.context.address, position, func() ([]byte, error) {
		return rlp.EncodeToBytes(value)
	})
}

// Delete clears the entry at key.
func (m *Mapping[K, V]) Delete(key K) error {
	position := house.Blake2b(key.Bytes(), m.basePos.Bytes())
	return m.context.state.EncodeStorage(m.context.address, position, func() ([]byte, error) {
		return nil, nil
	})
}
