// Copyright (c) 2026 The StakeHouse developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

// Package staking implements the staking pool with lazily accrued,
// linearly time-weighted rewards. Principal is pulled from and returned to
// the fungible-asset ledger; rewards are minted, so the pool holds the
// ledger's minter role.
package staking

import (
	"math/big"

	"github.com/stakehouse/stakehouse/house"
	"github.com/stakehouse/stakehouse/ledger"
	"github.com/stakehouse/stakehouse/log"
	"github.com/stakehouse/stakehouse/metrics"
	"github.com/stakehouse/stakehouse/reverts"
	"github.com/stakehouse/stakehouse/solidity"
	"github.com/stakehouse/stakehouse/state"
	"github.com/stakehouse/stakehouse/xenv"
)

var logger = log.WithContext("pkg", "staking")

var (
	ErrInvalidAmount     = reverts.New("InvalidAmount")
	ErrInsufficientStake = reverts.New("InsufficientStake")
)

var metricStakeOps = metrics.LazyLoadCounterVec("staking_op_count", []string{"op"})

// Staking is the staking pool engine.
type Staking struct {
	addr    house.Address
	ledger  *ledger.Ledger
	storage *storage

	// annual reward rate in basis points, fixed at runtime; a genesis
	// setup may override the stored slot before first use.
	rewardRateBps *solidity.ConfigVariable
}

// New create a new instance bound to the pool address and its token ledger.
func New(addr house.Address, st *state.State, ldg *ledger.Ledger) *Staking {
	sctx := solidity.NewContext(addr, st)
	rewardRateBps := solidity.NewConfigVariable("reward-rate-bps", house.InitialRewardRateBps)
	rewardRateBps.Override(sctx)
	return &Staking{
		addr:          addr,
		ledger:        ldg,
		storage:       newStorage(sctx),
		rewardRateBps: rewardRateBps,
	}
}

// Address returns the pool's account address.
func (s *Staking) Address() house.Address {
	return s.addr
}

// TotalStaked returns the principal currently held by the pool.
func (s *Staking) TotalStaked() (*big.Int, error) {
	return s.storage.totalStaked.Get()
}

// GetStakerInfo returns the staker's record with rewards projected up to
// now. The stored checkpoint is reported as-is; projection never writes.
func (s *Staking) GetStakerInfo(addr house.Address, now uint64) (*Record, error) {
	record, err := s.storage.getRecord(addr)
	if err != nil {
		return nil, err
	}
	return record.Projected(now, s.rewardRateBps.Get()), nil
}

// Stake deposits amount of the external token as principal. The staker must
// have approved the pool for at least amount beforehand.
func (s *Staking) Stake(env *xenv.Environment, amount *big.Int) error {
	if amount == nil || amount.Sign() <= 0 {
		return ErrInvalidAmount
	}
	staker := env.Caller()

	record, err := s.storage.getRecord(staker)
	if err != nil {
		return err
	}
	record.accrue(env.Now(), s.rewardRateBps.Get())
	record.Amount.Add(record.Amount, amount)
	if err := s.storage.setRecord(staker, record); err != nil {
		return err
	}
	if err := s.storage.totalStaked.Add(amount); err != nil {
		return err
	}

	// pull principal into pool custody; reverts surface the ledger's
	// allowance/balance kinds unchanged
	if err := s.ledger.TransferFrom(env, s.addr, staker, s.addr, amount); err != nil {
		return err
	}

	logger.Debug("stake", "staker", staker, "amount", amount)
	metricStakeOps().AddWithLabel(1, map[string]string{"op": "stake"})
	env.Log(s.addr, "Staked", []house.Bytes32{
		house.BytesToBytes32(staker.Bytes()),
	}, xenv.EncodeData(amount))
	return nil
}

// Unstake withdraws amount of principal back to the staker. Accrued rewards
// are preserved across partial unstakes.
func (s *Staking) Unstake(env *xenv.Environment, amount *big.Int) error {
	if amount == nil || amount.Sign() <= 0 {
		return ErrInvalidAmount
	}
	staker := env.Caller()

	record, err := s.storage.getRecord(staker)
	if err != nil {
		return err
	}
	if amount.Cmp(record.Amount) > 0 {
		return ErrInsufficientStake
	}
	record.accrue(env.Now(), s.rewardRateBps.Get())
	record.Amount.Sub(record.Amount, amount)
	if err := s.storage.setRecord(staker, record); err != nil {
		return err
	}
	if err := s.storage.totalStaked.Sub(amount); err != nil {
		return err
	}

	if err := s.ledger.Transfer(env, s.addr, staker, amount); err != nil {
		return err
	}

	logger.Debug("unstake", "staker", staker, "amount", amount)
	metricStakeOps().AddWithLabel(1, map[string]string{"op": "unstake"})
	env.Log(s.addr, "Unstaked", []house.Bytes32{
		house.BytesToBytes32(staker.Bytes()),
	}, xenv.EncodeData(amount))
	return nil
}

// ClaimRewards accrues and pays out the staker's unclaimed rewards by
// minting fresh tokens. Zero rewards is a successful no-op.
func (s *Staking) ClaimRewards(env *xenv.Environment) error {
	staker := env.Caller()

	record, err := s.storage.getRecord(staker)
	if err != nil {
		return err
	}
	record.accrue(env.Now(), s.rewardRateBps.Get())

	payout := new(big.Int).Set(record.Rewards)
	record.Rewards.SetInt64(0)
	if err := s.storage.setRecord(staker, record); err != nil {
		return err
	}
	if payout.Sign() == 0 {
		return nil
	}

	if err := s.ledger.Mint(env, s.addr, staker, payout); err != nil {
		return err
	}

	logger.Debug("claim", "staker", staker, "rewards", payout)
	metricStakeOps().AddWithLabel(1, map[string]string{"op": "claim"})
	env.Log(s.addr, "RewardsClaimed", []house.Bytes32{
		house.BytesToBytes32(staker.Bytes()),
	}, xenv.EncodeData(payout))
	return nil
}
