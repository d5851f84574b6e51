// Copyright (c) 2026 The StakeHouse developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package solidity

import (
	"math/big"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/stakehouse/stakehouse/house"
	"github.com/stakehouse/stakehouse/state"
)

var testEngine = house.BytesToAddress([]byte("test-engine"))

func testContext() *Context {
	return NewContext(testEngine, state.New())
}

type entry struct {
	Amount *big.Int
	Flag   bool
}

func TestMappingStructValues(t *testing.T) {
	m := NewMapping[house.Address, *entry](testContext(), house.BytesToBytes32([]byte("entries")))
	key := house.BytesToAddress([]byte("holder"))

	// unset key decodes to a zero-field value
	got, err := m.Get(key)
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.Nil(t, got.Amount)
	assert.False(t, got.Flag)

	require.NoError(t, m.Set(key, &entry{Amount: big.NewInt(42), Flag: true}))
	got, err = m.Get(key)
	require.NoError(t, err)
	assert.Equal(t, big.NewInt(42), got.Amount)
	assert.True(t, got.Flag)

	require.NoError(t, m.Delete(key))
	got, err = m.Get(key)
	require.NoError(t, err)
	assert.Nil(t, got.Amount)
}

func TestMappingKeyIsolation(t *testing.T) {
	ctx := testContext()
	a := NewMapping[house.Address, *entry](ctx, house.BytesToBytes32([]byte("a")))
	b := NewMapping[house.Address, *entry](ctx, house.BytesToBytes32([]byte("b")))
	key := house.BytesToAddress([]byte("holder"))

	require.NoError(t, a.Set(key, &entry{Amount: big.NewInt(1)}))

	// same key under a different base slot stays untouched
	got, err := b.Get(key)
	require.NoError(t, err)
	assert.Nil(t, got.Amount)
}

func TestUint256(t *testing.T) {
	u := NewUint256(testContext(), house.BytesToBytes32([]byte("counter")))

	value, err := u.Get()
	require.NoError(t, err)
	assert.Zero(t, value.Sign())

	require.NoError(t, u.Add(big.NewInt(100)))
	require.NoError(t, u.Sub(big.NewInt(30)))

	value, err = u.Get()
	require.NoError(t, err)
	assert.Equal(t, big.NewInt(70), value)
}

func TestAddressSlot(t *testing.T) {
	a := NewAddress(testContext(), house.BytesToBytes32([]byte("owner")))

	got, err := a.Get()
	require.NoError(t, err)
	assert.True(t, got.IsZero())

	owner := house.BytesToAddress([]byte("the-owner"))
	a.Set(&owner)
	got, err = a.Get()
	require.NoError(t, err)
	assert.Equal(t, owner, got)

	a.Set(nil)
	got, err = a.Get()
	require.NoError(t, err)
	assert.True(t, got.IsZero())
}

func TestConfigVariableOverride(t *testing.T) {
	st := state.New()
	ctx := NewContext(testEngine, st)

	v := NewConfigVariable("tuning-knob", 500)
	v.Override(ctx)
	assert.Equal(t, uint32(500), v.Get())

	// a genesis override in the slot wins over the default
	st.SetStorage(testEngine,
		house.BytesToBytes32([]byte("tuning-knob")),
		house.BytesToBytes32(big.NewInt(750).Bytes()))

	v = NewConfigVariable("tuning-knob", 500)
	v.Override(ctx)
	assert.Equal(t, uint32(750), v.Get())

	// the first read sticks
	st.SetStorage(testEngine,
		house.BytesToBytes32([]byte("tuning-knob")),
		house.BytesToBytes32(big.NewInt(999).Bytes()))
	v.Override(ctx)
	assert.Equal(t, uint32(750), v.Get())
}
