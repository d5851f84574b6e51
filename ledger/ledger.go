// Copyright (c) 2026 The StakeHouse developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

// Package ledger implements the fungible asset ledger (the STX token).
// It is a collaborator of the staking pool: the pool pulls principal via
// TransferFrom and pays rewards via Mint with the minter role granted at
// genesis.
package ledger

import (
	"math/big"

	"github.com/stakehouse/stakehouse/house"
	"github.com/stakehouse/stakehouse/log"
	"github.com/stakehouse/stakehouse/reverts"
	"github.com/stakehouse/stakehouse/solidity"
	"github.com/stakehouse/stakehouse/state"
	"github.com/stakehouse/stakehouse/xenv"
)

var logger = log.WithContext("pkg", "ledger")

// Enumerable rejection kinds.
var (
	ErrInvalidAmount         = reverts.New("InvalidAmount")
	ErrInsufficientBalance   = reverts.New("InsufficientBalance")
	ErrInsufficientAllowance = reverts.New("InsufficientAllowance")
	ErrNotMinter             = reverts.New("NotMinter")
	ErrNotMaster             = reverts.New("NotMaster")
)

// Ledger implements the fungible asset ledger.
type Ledger struct {
	addr    house.Address
	storage *storage
}

// New create a new instance.
func New(addr house.Address, st *state.State) *Ledger {
	sctx := solidity.NewContext(addr, st)
	return &Ledger{
		addr:    addr,
		storage: newStorage(sctx),
	}
}

// Address returns the ledger's account address.
func (l *Ledger) Address() house.Address {
	return l.addr
}

// Initialize sets the master identity. Meant for genesis setup only.
func (l *Ledger) Initialize(master house.Address) {
	l.storage.master.Set(&master)
}

// Master returns the ledger's administrating identity.
func (l *Ledger) Master() (house.Address, error) {
	return l.storage.master.Get()
}

// BalanceOf returns token balance of an account.
func (l *Ledger) BalanceOf(addr house.Address) (*big.Int, error) {
	return l.storage.getBalance(addr)
}

// TotalSupply returns total minted supply.
func (l *Ledger) TotalSupply() (*big.Int, error) {
	return l.storage.totalSupply.Get()
}

// Allowance returns the remaining amount spender may pull from owner.
func (l *Ledger) Allowance(owner, spender house.Address) (*big.Int, error) {
	return l.storage.getAllowance(owner, spender)
}

// IsMinter checks the minter role.
func (l *Ledger) IsMinter(addr house.Address) (bool, error) {
	return l.storage.minters.Get(addr)
}

// AddMinter grants the minter role. Master only.
func (l *Ledger) AddMinter(env *xenv.Environment, minter house.Address) error {
	master, err := l.storage.master.Get()
	if err != nil {
		return err
	}
	if env.Caller() != master {
		return ErrNotMaster
	}
	if err := l.storage.minters.Set(minter, true); err != nil {
		return err
	}
	logger.Info("granted minter role", "minter", minter)
	return nil
}

// Approve sets the allowance of spender over the caller's tokens.
func (l *Ledger) Approve(env *xenv.Environment, spender house.Address, amount *big.Int) error {
	owner := env.Caller()
	if err := l.storage.setAllowance(owner, spender, amount); err != nil {
		return err
	}
	env.Log(l.addr, "Approval", []house.Bytes32{
		house.BytesToBytes32(owner.Bytes()),
		house.BytesToBytes32(spender.Bytes()),
	}, xenv.EncodeData(amount))
	return nil
}

// Transfer moves tokens from one account to another.
// The trust boundary is the caller's: engines pass their own identity as from,
// the transact surface only accepts from == request origin.
func (l *Ledger) Transfer(env *xenv.Environment, from, to house.Address, amount *big.Int) error {
	if err := l.move(from, to, amount); err != nil {
		return err
	}
	env.Log(l.addr, "Transfer", []house.Bytes32{
		house.BytesToBytes32(from.Bytes()),
		house.BytesToBytes32(to.Bytes()),
	}, xenv.EncodeData(amount))
	return nil
}

// TransferFrom moves tokens out of from's account on behalf of spender,
// consuming spender's allowance. Allowance is checked before balance so the
// rejection kind is stable regardless of account funding.
func (l *Ledger) TransferFrom(env *xenv.Environment, spender, from, to house.Address, amount *big.Int) error {
	allowance, err := l.storage.getAllowance(from, spender)
	if err != nil {
		return err
	}
	if allowance.Cmp(amount) < 0 {
		return ErrInsufficientAllowance
	}
	// effects: reduce allowance before moving funds
	if err := l.storage.setAllowance(from, spender, new(big.Int).Sub(allowance, amount)); err != nil {
		return err
	}
	return l.Transfer(env, from, to, amount)
}

// Mint creates amount tokens on to's account. Requires the minter role.
func (l *Ledger) Mint(env *xenv.Environment, minter, to house.Address, amount *big.Int) error {
	isMinter, err := l.storage.minters.Get(minter)
	if err != nil {
		return err
	}
	if !isMinter {
		return ErrNotMinter
	}

	balance, err := l.storage.getBalance(to)
	if err != nil {
		return err
	}
	if err := l.storage.setBalance(to, new(big.Int).Add(balance, amount)); err != nil {
		return err
	}
	if err := l.storage.totalSupply.Add(amount); err != nil {
		return err
	}

	logger.Debug("minted", "to", to, "amount", amount)
	env.Log(l.addr, "Transfer", []house.Bytes32{
		{}, // mint: from the null identity
		house.BytesToBytes32(to.Bytes()),
	}, xenv.EncodeData(amount))
	return nil
}

func (l *Ledger) move(from, to house.Address, amount *big.Int) error {
	if amount.Sign() == 0 {
		return nil
	}
	fromBalance, err := l.storage.getBalance(from)
	if err != nil {
		return err
	}
	if fromBalance.Cmp(amount) < 0 {
		return ErrInsufficientBalance
	}
	if err := l.storage.setBalance(from, new(big.Int).Sub(fromBalance, amount)); err != nil {
		return err
	}
	toBalance, err := l.storage.getBalance(to)
	if err != nil {
		return err
	}
	return l.storage.setBalance(to, new(big.Int).Add(toBalance, amount))
}
