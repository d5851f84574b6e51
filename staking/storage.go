// Copyright (c) 2026 The StakeHouse developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package staking

import (
	"github.com/pkg/errors"

	"github.com/stakehouse/stakehouse/house"
	"github.com/stakehouse/stakehouse/solidity"
)

var (
	slotStakers     = house.BytesToBytes32([]byte("stakers"))
	slotTotalStaked = house.BytesToBytes32([]byte("total-staked"))
)

type storage struct {
	stakers     *solidity.Mapping[house.Address, *Record]
	totalStaked *solidity.Uint256
}

func newStorage(sctx *solidity.Context) *storage {
	return &storage{
		stakers:     solidity.NewMapping[house.Address, *Record](sctx, slotStakers),
		totalStaked: solidity.NewUint256(sctx, slotTotalStaked),
	}
}

// getRecord returns the staker's record, a fresh zeroed record if the
// identity has never staked.
func (s *storage) getRecord(addr house.Address) (*Record, error) {
	record, err := s.stakers.Get(addr)
	if err != nil {
		return nil, errors.Wrap(err, "failed to get stake record")
	}
	if record == nil || record.Amount == nil {
		return newRecord(), nil
	}
	return record, nil
}

func (s *storage) setRecord(addr house.Address, record *Record) error {
	if err := s.stakers.Set(addr, record); err != nil {
		return errors.Wrap(err, "failed to set stake record")
	}
	return nil
}
