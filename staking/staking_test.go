// Copyright (c) 2026 The StakeHouse developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package staking

import (
	"math/big"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/stakehouse/stakehouse/house"
	"github.com/stakehouse/stakehouse/ledger"
	"github.com/stakehouse/stakehouse/state"
	"github.com/stakehouse/stakehouse/xenv"
)

const day = 24 * 60 * 60

type testPool struct {
	st      *state.State
	ledger  *ledger.Ledger
	staking *Staking
	master  house.Address
}

func newTestPool(t *testing.T) *testPool {
	st := state.New()
	master := house.BytesToAddress([]byte("master"))

	ldg := ledger.New(house.LedgerAddress, st)
	ldg.Initialize(master)

	pool := New(house.StakingAddress, st, ldg)
	masterEnv := xenv.New(st, &xenv.BlockContext{Time: 0}, master, nil)
	require.NoError(t, ldg.AddMinter(masterEnv, master))
	require.NoError(t, ldg.AddMinter(masterEnv, pool.Address()))
	return &testPool{st: st, ledger: ldg, staking: pool, master: master}
}

// fund mints tokens to a staker and approves the pool for the full amount.
func (p *testPool) fund(t *testing.T, staker house.Address, amount int64) {
	masterEnv := xenv.New(p.st, &xenv.BlockContext{Time: 0}, p.master, nil)
	require.NoError(t, p.ledger.Mint(masterEnv, p.master, staker, big.NewInt(amount)))

	stakerEnv := xenv.New(p.st, &xenv.BlockContext{Time: 0}, staker, nil)
	require.NoError(t, p.ledger.Approve(stakerEnv, p.staking.Address(), big.NewInt(amount)))
}

func (p *testPool) envAt(staker house.Address, now uint64) *xenv.Environment {
	return xenv.New(p.st, &xenv.BlockContext{Time: now}, staker, nil)
}

func TestStakeOneYearAccrual(t *testing.T) {
	p := newTestPool(t)
	alice := house.BytesToAddress([]byte("alice"))
	p.fund(t, alice, 1000)

	require.NoError(t, p.staking.Stake(p.envAt(alice, 1000), big.NewInt(1000)))

	balance, err := p.ledger.BalanceOf(alice)
	require.NoError(t, err)
	assert.Equal(t, int64(0), balance.Int64())

	// 5% annual rate over a full year on 1000 staked
	info, err := p.staking.GetStakerInfo(alice, 1000+365*day)
	require.NoError(t, err)
	assert.Equal(t, int64(1000), info.Amount.Int64())
	assert.Equal(t, int64(50), info.Rewards.Int64())
	assert.Equal(t, uint64(1000), info.LastUpdate)
}

func TestPartialUnstakeAccrual(t *testing.T) {
	p := newTestPool(t)
	alice := house.BytesToAddress([]byte("alice"))
	p.fund(t, alice, 1000)

	require.NoError(t, p.staking.Stake(p.envAt(alice, 0), big.NewInt(1000)))
	require.NoError(t, p.staking.Unstake(p.envAt(alice, 180*day), big.NewInt(500)))

	// rewards earned on the full principal up to the unstake, truncated
	want := new(big.Int).Div(
		big.NewInt(1000*500*180*day),
		big.NewInt(10000*365*day),
	)
	info, err := p.staking.GetStakerInfo(alice, 180*day)
	require.NoError(t, err)
	assert.Equal(t, int64(500), info.Amount.Int64())
	assert.Equal(t, want.Int64(), info.Rewards.Int64())

	balance, err := p.ledger.BalanceOf(alice)
	require.NoError(t, err)
	assert.Equal(t, int64(500), balance.Int64())
}

func TestStakeUnstakeRoundTrip(t *testing.T) {
	p := newTestPool(t)
	alice := house.BytesToAddress([]byte("alice"))
	p.fund(t, alice, 700)

	require.NoError(t, p.staking.Stake(p.envAt(alice, 5000), big.NewInt(700)))
	require.NoError(t, p.staking.Unstake(p.envAt(alice, 5000), big.NewInt(700)))

	info, err := p.staking.GetStakerInfo(alice, 5000)
	require.NoError(t, err)
	assert.Equal(t, int64(0), info.Amount.Int64())
	assert.Equal(t, int64(0), info.Rewards.Int64())

	balance, err := p.ledger.BalanceOf(alice)
	require.NoError(t, err)
	assert.Equal(t, int64(700), balance.Int64())

	total, err := p.staking.TotalStaked()
	require.NoError(t, err)
	assert.Equal(t, int64(0), total.Int64())
}

func TestClaimRewards(t *testing.T) {
	p := newTestPool(t)
	alice := house.BytesToAddress([]byte("alice"))
	p.fund(t, alice, 1000)

	require.NoError(t, p.staking.Stake(p.envAt(alice, 0), big.NewInt(1000)))

	env := p.envAt(alice, 365*day)
	require.NoError(t, p.staking.ClaimRewards(env))

	balance, err := p.ledger.BalanceOf(alice)
	require.NoError(t, err)
	assert.Equal(t, int64(50), balance.Int64())

	events := env.Events()
	require.NotEmpty(t, events)
	assert.Equal(t, "RewardsClaimed", events[len(events)-1].Name)

	// immediate second claim pays nothing and emits nothing
	env2 := p.envAt(alice, 365*day)
	require.NoError(t, p.staking.ClaimRewards(env2))
	assert.Empty(t, env2.Events())

	balance, err = p.ledger.BalanceOf(alice)
	require.NoError(t, err)
	assert.Equal(t, int64(50), balance.Int64())
}

func TestStakeRejections(t *testing.T) {
	p := newTestPool(t)
	alice := house.BytesToAddress([]byte("alice"))
	p.fund(t, alice, 100)

	assert.Equal(t, ErrInvalidAmount, p.staking.Stake(p.envAt(alice, 0), big.NewInt(0)))
	assert.Equal(t, ErrInvalidAmount, p.staking.Unstake(p.envAt(alice, 0), big.NewInt(0)))

	require.NoError(t, p.staking.Stake(p.envAt(alice, 0), big.NewInt(100)))
	assert.Equal(t, ErrInsufficientStake, p.staking.Unstake(p.envAt(alice, 0), big.NewInt(101)))

	// allowance exhausted: ledger kinds surface unchanged
	err := p.staking.Stake(p.envAt(alice, 0), big.NewInt(1))
	assert.Equal(t, ledger.ErrInsufficientAllowance, err)
}

func TestRewardsSurviveRestake(t *testing.T) {
	p := newTestPool(t)
	alice := house.BytesToAddress([]byte("alice"))
	p.fund(t, alice, 2000)

	require.NoError(t, p.staking.Stake(p.envAt(alice, 0), big.NewInt(1000)))
	// second stake accrues first, then raises principal
	require.NoError(t, p.staking.Stake(p.envAt(alice, 365*day), big.NewInt(1000)))

	info, err := p.staking.GetStakerInfo(alice, 2*365*day)
	require.NoError(t, err)
	assert.Equal(t, int64(2000), info.Amount.Int64())
	// 50 from year one on 1000, 100 from year two on 2000
	assert.Equal(t, int64(150), info.Rewards.Int64())
	assert.Equal(t, uint64(365*day), info.LastUpdate)
}

func TestRewardRateOverride(t *testing.T) {
	st := state.New()
	master := house.BytesToAddress([]byte("master"))

	// a seeded slot replaces the default 5% rate; it must be written
	// before the pool is constructed
	st.SetStorage(house.StakingAddress,
		house.BytesToBytes32([]byte("reward-rate-bps")),
		house.BytesToBytes32(big.NewInt(1000).Bytes()))

	ldg := ledger.New(house.LedgerAddress, st)
	ldg.Initialize(master)
	pool := New(house.StakingAddress, st, ldg)
	masterEnv := xenv.New(st, &xenv.BlockContext{Time: 0}, master, nil)
	require.NoError(t, ldg.AddMinter(masterEnv, master))
	require.NoError(t, ldg.AddMinter(masterEnv, pool.Address()))
	p := &testPool{st: st, ledger: ldg, staking: pool, master: master}

	alice := house.BytesToAddress([]byte("alice"))
	p.fund(t, alice, 1000)
	require.NoError(t, p.staking.Stake(p.envAt(alice, 0), big.NewInt(1000)))

	// 10% annual rate over a full year on 1000 staked
	info, err := p.staking.GetStakerInfo(alice, 365*day)
	require.NoError(t, err)
	assert.Equal(t, int64(100), info.Rewards.Int64())
}
