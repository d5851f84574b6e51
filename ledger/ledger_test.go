// Copyright (c) 2026 The StakeHouse developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package ledger

import (
	"math/big"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/stakehouse/stakehouse/house"
	"github.com/stakehouse/stakehouse/state"
	"github.com/stakehouse/stakehouse/xenv"
)

func newEnv(st *state.State, caller house.Address) *xenv.Environment {
	return xenv.New(st, &xenv.BlockContext{Time: 1000}, caller, nil)
}

func TestLedgerTransfer(t *testing.T) {
	st := state.New()
	master := house.BytesToAddress([]byte("master"))
	a1 := house.BytesToAddress([]byte("a1"))
	a2 := house.BytesToAddress([]byte("a2"))

	ldg := New(house.LedgerAddress, st)
	ldg.Initialize(master)
	require.NoError(t, ldg.AddMinter(newEnv(st, master), master))
	require.NoError(t, ldg.Mint(newEnv(st, master), master, a1, big.NewInt(100)))

	balance, _ := ldg.BalanceOf(a1)
	assert.Equal(t, big.NewInt(100), balance)
	supply, _ := ldg.TotalSupply()
	assert.Equal(t, big.NewInt(100), supply)

	env := newEnv(st, a1)
	assert.NoError(t, ldg.Transfer(env, a1, a2, big.NewInt(40)))
	balance, _ = ldg.BalanceOf(a1)
	assert.Equal(t, big.NewInt(60), balance)
	balance, _ = ldg.BalanceOf(a2)
	assert.Equal(t, big.NewInt(40), balance)

	assert.Equal(t, ErrInsufficientBalance, ldg.Transfer(env, a1, a2, big.NewInt(61)))

	// one Transfer event per successful move, none for the rejected one
	transfers := 0
	for _, ev := range env.Events() {
		if ev.Name == "Transfer" {
			transfers++
		}
	}
	assert.Equal(t, 1, transfers)
}

func TestLedgerAllowance(t *testing.T) {
	st := state.New()
	master := house.BytesToAddress([]byte("master"))
	owner := house.BytesToAddress([]byte("owner"))
	spender := house.BytesToAddress([]byte("spender"))
	sink := house.BytesToAddress([]byte("sink"))

	ldg := New(house.LedgerAddress, st)
	ldg.Initialize(master)
	require.NoError(t, ldg.AddMinter(newEnv(st, master), master))
	require.NoError(t, ldg.Mint(newEnv(st, master), master, owner, big.NewInt(100)))

	// no allowance yet
	err := ldg.TransferFrom(newEnv(st, spender), spender, owner, sink, big.NewInt(10))
	assert.Equal(t, ErrInsufficientAllowance, err)

	require.NoError(t, ldg.Approve(newEnv(st, owner), spender, big.NewInt(50)))
	allowance, _ := ldg.Allowance(owner, spender)
	assert.Equal(t, big.NewInt(50), allowance)

	require.NoError(t, ldg.TransferFrom(newEnv(st, spender), spender, owner, sink, big.NewInt(30)))
	allowance, _ = ldg.Allowance(owner, spender)
	assert.Equal(t, big.NewInt(20), allowance)
	balance, _ := ldg.BalanceOf(sink)
	assert.Equal(t, big.NewInt(30), balance)

	// allowance checked before balance
	err = ldg.TransferFrom(newEnv(st, spender), spender, owner, sink, big.NewInt(21))
	assert.Equal(t, ErrInsufficientAllowance, err)
}

func TestLedgerMinterRole(t *testing.T) {
	st := state.New()
	master := house.BytesToAddress([]byte("master"))
	outsider := house.BytesToAddress([]byte("outsider"))

	ldg := New(house.LedgerAddress, st)
	ldg.Initialize(master)

	assert.Equal(t, ErrNotMaster, ldg.AddMinter(newEnv(st, outsider), outsider))
	assert.Equal(t, ErrNotMinter, ldg.Mint(newEnv(st, outsider), outsider, outsider, big.NewInt(1)))

	require.NoError(t, ldg.AddMinter(newEnv(st, master), outsider))
	ok, _ := ldg.IsMinter(outsider)
	assert.True(t, ok)
	assert.NoError(t, ldg.Mint(newEnv(st, outsider), outsider, outsider, big.NewInt(1)))
}
