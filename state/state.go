// Copyright (c) 2026 The StakeHouse developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package state

import (
	"fmt"
	"math/big"

	"github.com/ethereum/go-ethereum/rlp"

	"github.com/stakehouse/stakehouse/house"
	"github.com/stakehouse/stakehouse/stackedmap"
)

// Error is the error caused by state access failure.
type Error struct {
	cause error
}

func (e *Error) Error() string {
	return fmt.Sprintf("state: %v", e.cause)
}

// storageKey key of per-account storage.
type storageKey struct {
	addr house.Address
	key  house.Bytes32
}

// balanceKey key of native-coin balance.
type balanceKey house.Address

// State manages the world state: native-coin balances and per-account
// structured storage. All mutations are journaled, so a checkpoint taken
// before an operation can atomically revert everything the operation wrote.
type State struct {
	sm *stackedmap.StackedMap
}

// New create an empty state.
func New() *State {
	state := &State{}
	state.sm = stackedmap.New(func(key any) (any, bool, error) {
		return state.emptyValue(key)
	})
	// base layer holding committed values
	state.sm.Push()
	return state
}

// emptyValue implements stackedmap.MapGetter, providing the zero value of
// every kind of state entry.
func (s *State) emptyValue(key any) (any, bool, error) {
	switch key.(type) {
	case balanceKey:
		return &big.Int{}, true, nil
	case storageKey:
		return rlp.RawValue(nil), true, nil
	}
	panic(fmt.Errorf("unexpected key type %+v", key))
}

// GetBalance returns native-coin balance of the account.
// The returned value must not be mutated by the caller.
func (s *State) GetBalance(addr house.Address) (*big.Int, error) {
	v, _, err := s.sm.Get(balanceKey(addr))
	if err != nil {
		return nil, &Error{err}
	}
	return v.(*big.Int), nil
}

// SetBalance sets native-coin balance of the account.
func (s *State) SetBalance(addr house.Address, balance *big.Int) {
	s.sm.Put(balanceKey(addr), balance)
}

// AddBalance adds amount to the account's native-coin balance.
func (s *State) AddBalance(addr house.Address, amount *big.Int) error {
	if amount.Sign() == 0 {
		return nil
	}
	balance, err := s.GetBalance(addr)
	if err != nil {
		return err
	}
	s.SetBalance(addr, new(big.Int).Add(balance, amount))
	return nil
}

// SubBalance subtracts amount from the account's native-coin balance.
// Returns false if the balance is insufficient; the state is unchanged then.
func (s *State) SubBalance(addr house.Address, amount *big.Int) (bool, error) {
	if amount.Sign() == 0 {
		return true, nil
	}
	balance, err := s.GetBalance(addr)
	if err != nil {
		return false, err
	}
	if balance.Cmp(amount) < 0 {
		return false, nil
	}
	s.SetBalance(addr, new(big.Int).Sub(balance, amount))
	return true, nil
}

// GetRawStorage returns storage value in rlp raw for given key.
func (s *State) GetRawStorage(addr house.Address, key house.Bytes32) (rlp.RawValue, error) {
	v, _, err := s.sm.Get(storageKey{addr, key})
	if err != nil {
		return nil, &Error{err}
	}
	return v.(rlp.RawValue), nil
}

// SetRawStorage set storage value in rlp raw.
func (s *State) SetRawStorage(addr house.Address, key house.Bytes32, raw rlp.RawValue) {
	s.sm.Put(storageKey{addr, key}, raw)
}

// EncodeStorage set storage value encoded by given enc method.
// An empty encoded value deletes the storage entry.
func (s *State) EncodeStorage(addr house.Address, key house.Bytes32, enc func() ([]byte, error)) error {
	raw, err := enc()
	if err != nil {
		return &Error{err}
	}
	s.SetRawStorage(addr, key, raw)
	return nil
}

// DecodeStorage get and decode storage value.
// The dec method is called with nil raw when the entry does not exist.
func (s *State) DecodeStorage(addr house.Address, key house.Bytes32, dec func([]byte) error) error {
	raw, err := s.GetRawStorage(addr, key)
	if err != nil {
		return err
	}
	if err := dec(raw); err != nil {
		return &Error{err}
	}
	return nil
}

// GetStorage returns storage value for the given key.
func (s *State) GetStorage(addr house.Address, key house.Bytes32) (house.Bytes32, error) {
	var value house.Bytes32
	err := s.DecodeStorage(addr, key, func(raw []byte) error {
		if len(raw) == 0 {
			value = house.Bytes32{}
			return nil
		}
		_, content, _, err := rlp.Split(raw)
		if err != nil {
			return err
		}
		value = house.BytesToBytes32(content)
		return nil
	})
	return value, err
}

// SetStorage set storage value for the given key.
// Zero value deletes the storage entry.
func (s *State) SetStorage(addr house.Address, key, value house.Bytes32) {
	if value.IsZero() {
		s.SetRawStorage(addr, key, nil)
		return
	}
	trimmed := trimLeadingZeros(value.Bytes())
	encoded, _ := rlp.EncodeToBytes(trimmed)
	s.SetRawStorage(addr, key, encoded)
}

// NewCheckpoint makes a checkpoint of current state.
// It returns revision of the checkpoint.
func (s *State) NewCheckpoint() int {
	return s.sm.Push()
}

// RevertTo reverts to the given revision.
func (s *State) RevertTo(revision int) {
	s.sm.PopTo(revision)
}

func trimLeadingZeros(b []byte) []byte {
	for len(b) > 0 && b[0] == 0 {
		b = b[1:]
	}
	return b
}
