// Copyright (c) 2026 The StakeHouse developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package registry

import (
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

func TestRegistryMint(t *testing.T) {
	st := state.New()
	alice := house.BytesToAddress([]byte("alice"))

	reg := New(house.RegistryAddress, st)

	id0, err := reg.Mint(newEnv(st, alice), alice)
	require.NoError(t, err)
	assert.Equal(t, uint64(0), id0)

	id1, err := reg.Mint(newEnv(st, alice), alice)
	require.NoError(t, err)
	assert.Equal(t, uint64(1), id1)

	count, err := reg.Count()
	require.NoError(t, err)
	assert.Equal(t, uint64(2), count)

	owner, err := reg.OwnerOf(id0)
	require.NoError(t, err)
	assert.Equal(t, alice, owner)

	_, err = reg.OwnerOf(99)
	assert.Equal(t, ErrNonexistentAsset, err)
}

func TestRegistryTransferFrom(t *testing.T) {
	st := state.New()
	alice := house.BytesToAddress([]byte("alice"))
	bob := house.BytesToAddress([]byte("bob"))
	carol := house.BytesToAddress([]byte("carol"))

	reg := New(house.RegistryAddress, st)
	id, err := reg.Mint(newEnv(st, alice), alice)
	require.NoError(t, err)

	// bob has no authority over alice's asset
	err = reg.TransferFrom(newEnv(st, bob), bob, alice, bob, id)
	assert.Equal(t, ErrNotApproved, err)

	// from must match the actual owner
	err = reg.TransferFrom(newEnv(st, alice), alice, bob, carol, id)
	assert.Equal(t, ErrNotOwner, err)

	require.NoError(t, reg.TransferFrom(newEnv(st, alice), alice, alice, bob, id))

	owner, err := reg.OwnerOf(id)
	require.NoError(t, err)
	assert.Equal(t, bob, owner)
}

func TestRegistryApprovals(t *testing.T) {
	st := state.New()
	alice := house.BytesToAddress([]byte("alice"))
	bob := house.BytesToAddress([]byte("bob"))
	carol := house.BytesToAddress([]byte("carol"))

	reg := New(house.RegistryAddress, st)
	id, err := reg.Mint(newEnv(st, alice), alice)
	require.NoError(t, err)

	// only the owner (or an operator) may approve
	assert.Equal(t, ErrNotApproved, reg.Approve(newEnv(st, bob), bob, id))

	require.NoError(t, reg.Approve(newEnv(st, alice), bob, id))
	approved, err := reg.GetApproved(id)
	require.NoError(t, err)
	assert.Equal(t, bob, approved)

	// approved identity may move the asset; approval is cleared afterwards
	require.NoError(t, reg.TransferFrom(newEnv(st, bob), bob, alice, carol, id))
	approved, err = reg.GetApproved(id)
	require.NoError(t, err)
	assert.True(t, approved.IsZero())
}

func TestRegistryOperator(t *testing.T) {
	st := state.New()
	alice := house.BytesToAddress([]byte("alice"))
	op := house.BytesToAddress([]byte("operator"))
	bob := house.BytesToAddress([]byte("bob"))

	reg := New(house.RegistryAddress, st)
	id, err := reg.Mint(newEnv(st, alice), alice)
	require.NoError(t, err)

	require.NoError(t, reg.SetApprovalForAll(newEnv(st, alice), op, true))
	ok, err := reg.IsApprovedForAll(alice, op)
	require.NoError(t, err)
	assert.True(t, ok)

	// operators may both approve and transfer
	require.NoError(t, reg.Approve(newEnv(st, op), op, id))
	require.NoError(t, reg.TransferFrom(newEnv(st, op), op, alice, bob, id))

	// revocation takes effect immediately
	require.NoError(t, reg.SetApprovalForAll(newEnv(st, bob), op, false))
	assert.Equal(t, ErrNotApproved, reg.TransferFrom(newEnv(st, op), op, bob, alice, id))
}
