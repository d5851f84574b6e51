// Copyright (c) 2026 The StakeHouse developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package ledger

import (
	"math/big"

	"github.com/pkg/errors"

	"github.com/stakehouse/stakehouse/house"
	"github.com/stakehouse/stakehouse/solidity"
)

var (
	slotBalances    = house.BytesToBytes32([]byte("balances"))
	slotAllowances  = house.BytesToBytes32([]byte("allowances"))
	slotMinters     = house.BytesToBytes32([]byte("minters"))
	slotTotalSupply = house.BytesToBytes32([]byte("total-supply"))
	slotMaster      = house.BytesToBytes32([]byte("master"))
)

// approvalKey identifies an (owner, spender) allowance pair.
type approvalKey struct {
	owner   house.Address
	spender house.Address
}

func (k approvalKey) Bytes() []byte {
	return append(k.owner.Bytes(), k.spender.Bytes()...)
}

type storage struct {
	balances    *solidity.Mapping[house.Address, *big.Int]
	allowances  *solidity.Mapping[approvalKey, *big.Int]
	minters     *solidity.Mapping[house.Address, bool]
	totalSupply *solidity.Uint256
	master      *solidity.Address
}

func newStorage(sctx *solidity.Context) *storage {
	return &storage{
		balances:    solidity.NewMapping[house.Address, *big.Int](sctx, slotBalances),
		allowances:  solidity.NewMapping[approvalKey, *big.Int](sctx, slotAllowances),
		minters:     solidity.NewMapping[house.Address, bool](sctx, slotMinters),
		totalSupply: solidity.NewUint256(sctx, slotTotalSupply),
		master:      solidity.NewAddress(sctx, slotMaster),
	}
}

func (s *storage) getBalance(addr house.Address) (*big.Int, error) {
	balance, err := s.balances.Get(addr)
	if err != nil {
		return nil, errors.Wrap(err, "failed to get balance")
	}
	if balance == nil {
		return new(big.Int), nil
	}
	return balance, nil
}

func (s *storage) setBalance(addr house.Address, balance *big.Int) error {
	if err := s.balances.Set(addr, balance); err != nil {
		return errors.Wrap(err, "failed to set balance")
	}
	return nil
}

func (s *storage) getAllowance(owner, spender house.Address) (*big.Int, error) {
	allowance, err := s.allowances.Get(approvalKey{owner, spender})
	if err != nil {
		return nil, errors.Wrap(err, "failed to get allowance")
	}
	if allowance == nil {
		return new(big.Int), nil
	}
	return allowance, nil
}

func (s *storage) setAllowance(owner, spender house.Address, amount *big.Int) error {
	if err := s.allowances.Set(approvalKey{owner, spender}, amount); err != nil {
		return errors.Wrap(err, "failed to set allowance")
	}
	return nil
}
