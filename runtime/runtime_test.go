// Copyright (c) 2026 The StakeHouse developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package runtime

import (
	"math/big"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/stakehouse/stakehouse/house"
	"github.com/stakehouse/stakehouse/reverts"
	"github.com/stakehouse/stakehouse/state"
	"github.com/stakehouse/stakehouse/xenv"
)

type recordingStore struct {
	writes []xenv.Events
}

func (s *recordingStore) Write(_ uint64, events xenv.Events) error {
	s.writes = append(s.writes, events)
	return nil
}

func TestCallRevertRestoresState(t *testing.T) {
	st := state.New()
	rt := New(st, NewManualClock(1000), nil)
	engine := house.BytesToAddress([]byte("engine"))
	caller := house.BytesToAddress([]byte("caller"))
	slot := house.BytesToBytes32([]byte("slot"))
	boom := reverts.New("Boom")

	_, err := rt.Call(engine, caller, nil, func(env *xenv.Environment) error {
		env.State().SetStorage(engine, slot, house.BytesToBytes32([]byte("dirty")))
		env.Log(engine, "Dirty", nil, nil)
		return boom
	})
	assert.Equal(t, boom, err)

	got, err := st.GetStorage(engine, slot)
	require.NoError(t, err)
	assert.True(t, got.IsZero())
}

func TestCallMovesValueIntoCustody(t *testing.T) {
	st := state.New()
	rt := New(st, NewManualClock(1000), nil)
	engine := house.BytesToAddress([]byte("engine"))
	caller := house.BytesToAddress([]byte("caller"))

	require.NoError(t, st.AddBalance(caller, big.NewInt(500)))

	_, err := rt.Call(engine, caller, big.NewInt(200), func(env *xenv.Environment) error {
		assert.Equal(t, int64(200), env.Value().Int64())
		balance, err := env.State().GetBalance(engine)
		require.NoError(t, err)
		assert.Equal(t, int64(200), balance.Int64())
		return nil
	})
	require.NoError(t, err)

	balance, err := st.GetBalance(caller)
	require.NoError(t, err)
	assert.Equal(t, int64(300), balance.Int64())
}

func TestCallInsufficientValue(t *testing.T) {
	st := state.New()
	rt := New(st, NewManualClock(1000), nil)
	engine := house.BytesToAddress([]byte("engine"))
	caller := house.BytesToAddress([]byte("caller"))

	ran := false
	_, err := rt.Call(engine, caller, big.NewInt(1), func(*xenv.Environment) error {
		ran = true
		return nil
	})
	assert.Equal(t, ErrInsufficientValue, err)
	assert.False(t, ran)

	balance, err := st.GetBalance(engine)
	require.NoError(t, err)
	assert.Equal(t, int64(0), balance.Int64())
}

func TestEventsFlushedExactlyOnSuccess(t *testing.T) {
	st := state.New()
	store := &recordingStore{}
	rt := New(st, NewManualClock(1000), store)
	engine := house.BytesToAddress([]byte("engine"))
	caller := house.BytesToAddress([]byte("caller"))

	ch := make(chan xenv.Events, 1)
	sub := rt.SubscribeEvents(ch)
	defer sub.Unsubscribe()

	events, err := rt.Call(engine, caller, nil, func(env *xenv.Environment) error {
		env.Log(engine, "Something", nil, nil)
		return nil
	})
	require.NoError(t, err)
	require.Len(t, events, 1)
	assert.Equal(t, "Something", events[0].Name)

	require.Len(t, store.writes, 1)
	got := <-ch
	assert.Equal(t, "Something", got[0].Name)

	// failed calls publish nothing
	_, err = rt.Call(engine, caller, nil, func(env *xenv.Environment) error {
		env.Log(engine, "Dropped", nil, nil)
		return reverts.New("Nope")
	})
	require.Error(t, err)
	assert.Len(t, store.writes, 1)
	select {
	case <-ch:
		t.Fatal("events of a reverted call must not be published")
	default:
	}
}

func TestManualClock(t *testing.T) {
	c := NewManualClock(100)
	assert.Equal(t, uint64(100), c.Now())
	c.Advance(50)
	assert.Equal(t, uint64(150), c.Now())
	c.Set(120) // never backwards
	assert.Equal(t, uint64(150), c.Now())
	c.Set(200)
	assert.Equal(t, uint64(200), c.Now())
}
