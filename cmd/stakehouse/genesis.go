// Copyright (c) 2026 The StakeHouse developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package main

import (
	"math/big"
	"os"

	"github.com/pkg/errors"
	"gopkg.in/yaml.v3"

	"github.com/stakehouse/stakehouse/house"
	"github.com/stakehouse/stakehouse/ledger"
	"github.com/stakehouse/stakehouse/registry"
	"github.com/stakehouse/stakehouse/state"
	"github.com/stakehouse/stakehouse/xenv"
)

// GenesisConfig seeds a fresh instance: the owner identity, initial token
// and native-coin holdings, extra minter grants, pre-minted assets and
// engine tuning overrides.
type GenesisConfig struct {
	Owner string `yaml:"owner"`

	Tokens []struct {
		Address string `yaml:"address"`
		Amount  int64  `yaml:"amount"`
	} `yaml:"tokens"`
	Coins []struct {
		Address string `yaml:"address"`
		Amount  int64  `yaml:"amount"`
	} `yaml:"coins"`
	Minters []string `yaml:"minters"`
	Assets  []struct {
		Owner string `yaml:"owner"`
	} `yaml:"assets"`

	RewardRateBps uint32 `yaml:"rewardRateBps"`
	BidExtension  uint32 `yaml:"bidExtension"`
}

func loadGenesisConfig(path string) (*GenesisConfig, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, errors.WithMessage(err, "read genesis config")
	}
	var cfg GenesisConfig
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, errors.WithMessage(err, "decode genesis config")
	}
	if cfg.Owner == "" {
		return nil, errors.New("genesis config: owner required")
	}
	if _, err := house.ParseAddress(cfg.Owner); err != nil {
		return nil, errors.WithMessage(err, "genesis config: owner")
	}
	return &cfg, nil
}

// applyGenesis writes config-variable overrides and seeds balances. It runs
// against raw state before the runtime starts, with the owner as caller.
func applyGenesis(st *state.State, cfg *GenesisConfig) (house.Address, error) {
	owner := house.MustParseAddress(cfg.Owner)

	// engine tuning slots are read once at engine construction
	if cfg.RewardRateBps != 0 {
		st.SetStorage(house.StakingAddress,
			house.BytesToBytes32([]byte("reward-rate-bps")),
			house.BytesToBytes32(new(big.Int).SetUint64(uint64(cfg.RewardRateBps)).Bytes()))
	}
	if cfg.BidExtension != 0 {
		st.SetStorage(house.AuctionAddress,
			house.BytesToBytes32([]byte("bid-extension")),
			house.BytesToBytes32(new(big.Int).SetUint64(uint64(cfg.BidExtension)).Bytes()))
	}

	for _, coin := range cfg.Coins {
		addr, err := house.ParseAddress(coin.Address)
		if err != nil {
			return house.Address{}, errors.WithMessage(err, "genesis config: coins")
		}
		if err := st.AddBalance(*addr, big.NewInt(coin.Amount)); err != nil {
			return house.Address{}, err
		}
	}
	return owner, nil
}

// seedEngines issues genesis tokens, roles and assets through the engines so
// the usual events land in the state.
func seedEngines(
	st *state.State,
	cfg *GenesisConfig,
	owner house.Address,
	ldg *ledger.Ledger,
	reg *registry.Registry,
	stakingAddr house.Address,
) error {
	env := xenv.New(st, &xenv.BlockContext{Time: 0}, owner, nil)

	if err := ldg.AddMinter(env, owner); err != nil {
		return err
	}
	if err := ldg.AddMinter(env, stakingAddr); err != nil {
		return err
	}
	for _, minter := range cfg.Minters {
		addr, err := house.ParseAddress(minter)
		if err != nil {
			return errors.WithMessage(err, "genesis config: minters")
		}
		if err := ldg.AddMinter(env, *addr); err != nil {
			return err
		}
	}

	for _, grant := range cfg.Tokens {
		addr, err := house.ParseAddress(grant.Address)
		if err != nil {
			return errors.WithMessage(err, "genesis config: tokens")
		}
		if err := ldg.Mint(env, owner, *addr, big.NewInt(grant.Amount)); err != nil {
			return err
		}
	}

	for _, asset := range cfg.Assets {
		addr, err := house.ParseAddress(asset.Owner)
		if err != nil {
			return errors.WithMessage(err, "genesis config: assets")
		}
		if _, err := reg.Mint(env, *addr); err != nil {
			return err
		}
	}
	return nil
}
