// Copyright (c) 2026 The StakeHouse developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

// Package registry implements the unique asset registry the auction engine
// lists from. Assets carry sequential ids, a single-asset approval and
// per-operator blanket approvals.
package registry

import (
	"encoding/binary"
	"math/big"

	"github.com/stakehouse/stakehouse/house"
	"github.com/stakehouse/stakehouse/log"
	"github.com/stakehouse/stakehouse/reverts"
	"github.com/stakehouse/stakehouse/solidity"
	"github.com/stakehouse/stakehouse/state"
	"github.com/stakehouse/stakehouse/xenv"
)

var logger = log.WithContext("pkg", "registry")

// Enumerable rejection kinds.
var (
	ErrNonexistentAsset = reverts.New("NonexistentAsset")
	ErrNotOwner         = reverts.New("NotOwner")
	ErrNotApproved      = reverts.New("NotApproved")
)

var (
	slotOwners    = house.BytesToBytes32([]byte("owners"))
	slotApprovals = house.BytesToBytes32([]byte("approvals"))
	slotOperators = house.BytesToBytes32([]byte("operators"))
	slotCounter   = house.BytesToBytes32([]byte("asset-counter"))
)

// assetKey asset id as mapping key.
type assetKey uint64

func (k assetKey) Bytes() []byte {
	var b [8]byte
	binary.BigEndian.PutUint64(b[:], uint64(k))
	return b[:]
}

// operatorKey identifies an (owner, operator) blanket approval pair.
type operatorKey struct {
	owner    house.Address
	operator house.Address
}

func (k operatorKey) Bytes() []byte {
	return append(k.owner.Bytes(), k.operator.Bytes()...)
}

// Registry implements the unique asset registry.
type Registry struct {
	addr      house.Address
	owners    *solidity.Mapping[assetKey, house.Address]
	approvals *solidity.Mapping[assetKey, house.Address]
	operators *solidity.Mapping[operatorKey, bool]
	counter   *solidity.Uint256
}

// New create a new instance.
func New(addr house.Address, st *state.State) *Registry {
	sctx := solidity.NewContext(addr, st)
	return &Registry{
		addr:      addr,
		owners:    solidity.NewMapping[assetKey, house.Address](sctx, slotOwners),
		approvals: solidity.NewMapping[assetKey, house.Address](sctx, slotApprovals),
		operators: solidity.NewMapping[operatorKey, bool](sctx, slotOperators),
		counter:   solidity.NewUint256(sctx, slotCounter),
	}
}

// Address returns the registry's account address.
func (r *Registry) Address() house.Address {
	return r.addr
}

// Count returns the number of assets ever minted.
func (r *Registry) Count() (uint64, error) {
	count, err := r.counter.Get()
	if err != nil {
		return 0, err
	}
	return count.Uint64(), nil
}

// OwnerOf returns the owner of an asset.
func (r *Registry) OwnerOf(id uint64) (house.Address, error) {
	owner, err := r.owners.Get(assetKey(id))
	if err != nil {
		return house.Address{}, err
	}
	if owner.IsZero() {
		return house.Address{}, ErrNonexistentAsset
	}
	return owner, nil
}

// GetApproved returns the single-asset approval, the null identity if unset.
func (r *Registry) GetApproved(id uint64) (house.Address, error) {
	return r.approvals.Get(assetKey(id))
}

// IsApprovedForAll checks a blanket approval.
func (r *Registry) IsApprovedForAll(owner, operator house.Address) (bool, error) {
	return r.operators.Get(operatorKey{owner, operator})
}

// Mint assigns the next sequential id to a new asset owned by to.
// Ids are zero-based and never reused.
func (r *Registry) Mint(env *xenv.Environment, to house.Address) (uint64, error) {
	count, err := r.counter.Get()
	if err != nil {
		return 0, err
	}
	id := count.Uint64()
	if err := r.owners.Set(assetKey(id), to); err != nil {
		return 0, err
	}
	if err := r.counter.Add(big.NewInt(1)); err != nil {
		return 0, err
	}

	logger.Debug("minted asset", "id", id, "to", to)
	env.Log(r.addr, "AssetMinted", []house.Bytes32{
		assetTopic(id),
		house.BytesToBytes32(to.Bytes()),
	}, nil)
	return id, nil
}

// Approve grants a single-asset approval. Caller must be the owner or one of
// the owner's operators.
func (r *Registry) Approve(env *xenv.Environment, to house.Address, id uint64) error {
	owner, err := r.OwnerOf(id)
	if err != nil {
		return err
	}
	if env.Caller() != owner {
		isOperator, err := r.operators.Get(operatorKey{owner, env.Caller()})
		if err != nil {
			return err
		}
		if !isOperator {
			return ErrNotApproved
		}
	}
	return r.approvals.Set(assetKey(id), to)
}

// SetApprovalForAll grants or revokes a blanket approval for all of the
// caller's assets.
func (r *Registry) SetApprovalForAll(env *xenv.Environment, operator house.Address, approved bool) error {
	return r.operators.Set(operatorKey{env.Caller(), operator}, approved)
}

// TransferFrom moves the asset to a new owner on behalf of spender, which
// must be the current owner, the approved identity or an operator. The
// single-asset approval is cleared on transfer.
func (r *Registry) TransferFrom(env *xenv.Environment, spender, from, to house.Address, id uint64) error {
	owner, err := r.OwnerOf(id)
	if err != nil {
		return err
	}
	if owner != from {
		return ErrNotOwner
	}

	authorized, err := r.isAuthorized(spender, owner, id)
	if err != nil {
		return err
	}
	if !authorized {
		return ErrNotApproved
	}

	if err := r.approvals.Delete(assetKey(id)); err != nil {
		return err
	}
	if err := r.owners.Set(assetKey(id), to); err != nil {
		return err
	}

	env.Log(r.addr, "AssetTransferred", []house.Bytes32{
		assetTopic(id),
		house.BytesToBytes32(from.Bytes()),
		house.BytesToBytes32(to.Bytes()),
	}, nil)
	return nil
}

func (r *Registry) isAuthorized(spender, owner house.Address, id uint64) (bool, error) {
	if spender == owner {
		return true, nil
	}
	approved, err := r.approvals.Get(assetKey(id))
	if err != nil {
		return false, err
	}
	if approved == spender {
		return true, nil
	}
	return r.operators.Get(operatorKey{owner, spender})
}

func assetTopic(id uint64) house.Bytes32 {
	return house.BytesToBytes32(assetKey(id).Bytes())
}
