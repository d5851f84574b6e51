// Copyright (c) 2026 The StakeHouse developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

// Package tokens exposes the fungible-asset ledger over HTTP.
package tokens

import (
	"math/big"
	"net/http"

	"github.com/gorilla/mux"
	"github.com/pkg/errors"

	"github.com/stakehouse/stakehouse/api/restutil"
	"github.com/stakehouse/stakehouse/house"
	"github.com/stakehouse/stakehouse/ledger"
	"github.com/stakehouse/stakehouse/runtime"
	"github.com/stakehouse/stakehouse/state"
	"github.com/stakehouse/stakehouse/xenv"
)

type Tokens struct {
	rt  *runtime.Runtime
	ldg *ledger.Ledger
}

func New(rt *runtime.Runtime, ldg *ledger.Ledger) *Tokens {
	return &Tokens{rt, ldg}
}

// TransferRequest moves tokens between identities.
type TransferRequest struct {
	Caller house.Address `json:"caller"`
	To     house.Address `json:"to"`
	Amount *big.Int      `json:"amount"`
}

// ApproveRequest grants a spending allowance.
type ApproveRequest struct {
	Caller  house.Address `json:"caller"`
	Spender house.Address `json:"spender"`
	Amount  *big.Int      `json:"amount"`
}

// MintRequest issues fresh tokens. Caller must hold the minter role.
type MintRequest struct {
	Caller house.Address `json:"caller"`
	To     house.Address `json:"to"`
	Amount *big.Int      `json:"amount"`
}

func parseAddressVar(req *http.Request, name string) (*house.Address, error) {
	addr, err := house.ParseAddress(mux.Vars(req)[name])
	if err != nil {
		return nil, restutil.BadRequest(errors.WithMessage(err, name))
	}
	return addr, nil
}

func (t *Tokens) handleGetSupply(w http.ResponseWriter, req *http.Request) error {
	var supply *big.Int
	if err := t.rt.Read(func(*state.State, uint64) (err error) {
		supply, err = t.ldg.TotalSupply()
		return
	}); err != nil {
		return err
	}
	return restutil.WriteJSON(w, restutil.M{"totalSupply": supply})
}

func (t *Tokens) handleGetBalance(w http.ResponseWriter, req *http.Request) error {
	addr, err := parseAddressVar(req, "address")
	if err != nil {
		return err
	}
	var balance *big.Int
	if err := t.rt.Read(func(*state.State, uint64) (err error) {
		balance, err = t.ldg.BalanceOf(*addr)
		return
	}); err != nil {
		return err
	}
	return restutil.WriteJSON(w, restutil.M{"balance": balance})
}

func (t *Tokens) handleGetAllowance(w http.ResponseWriter, req *http.Request) error {
	owner, err := parseAddressVar(req, "owner")
	if err != nil {
		return err
	}
	spender, err := parseAddressVar(req, "spender")
	if err != nil {
		return err
	}
	var allowance *big.Int
	if err := t.rt.Read(func(*state.State, uint64) (err error) {
		allowance, err = t.ldg.Allowance(*owner, *spender)
		return
	}); err != nil {
		return err
	}
	return restutil.WriteJSON(w, restutil.M{"allowance": allowance})
}

func (t *Tokens) handleTransfer(w http.ResponseWriter, req *http.Request) error {
	var body TransferRequest
	if err := restutil.ParseJSON(req.Body, &body); err != nil {
		return restutil.BadRequest(errors.WithMessage(err, "body"))
	}
	events, err := t.rt.Call(t.ldg.Address(), body.Caller, nil, func(env *xenv.Environment) error {
		return t.ldg.Transfer(env, body.Caller, body.To, body.Amount)
	})
	if err != nil {
		return err
	}
	return restutil.WriteJSON(w, restutil.M{"events": events})
}

func (t *Tokens) handleApprove(w http.ResponseWriter, req *http.Request) error {
	var body ApproveRequest
	if err := restutil.ParseJSON(req.Body, &body); err != nil {
		return restutil.BadRequest(errors.WithMessage(err, "body"))
	}
	events, err := t.rt.Call(t.ldg.Address(), body.Caller, nil, func(env *xenv.Environment) error {
		return t.ldg.Approve(env, body.Spender, body.Amount)
	})
	if err != nil {
		return err
	}
	return restutil.WriteJSON(w, restutil.M{"events": events})
}

func (t *Tokens) handleMint(w http.ResponseWriter, req *http.Request) error {
	var body MintRequest
	if err := restutil.ParseJSON(req.Body, &body); err != nil {
		return restutil.BadRequest(errors.WithMessage(err, "body"))
	}
	events, err := t.rt.Call(t.ldg.Address(), body.Caller, nil, func(env *xenv.Environment) error {
		return t.ldg.Mint(env, body.Caller, body.To, body.Amount)
	})
	if err != nil {
		return err
	}
	return restutil.WriteJSON(w, restutil.M{"events": events})
}

func (t *Tokens) Mount(root *mux.Router, pathPrefix string) {
	sub := root.PathPrefix(pathPrefix).Subrouter()

	sub.Path("/supply").
		Methods(http.MethodGet).
		Name("GET /tokens/supply").
		HandlerFunc(restutil.WrapHandlerFunc(t.handleGetSupply))
	sub.Path("/balances/{address}").
		Methods(http.MethodGet).
		Name("GET /tokens/balances/{address}").
		HandlerFunc(restutil.WrapHandlerFunc(t.handleGetBalance))
	sub.Path("/allowances/{owner}/{spender}").
		Methods(http.MethodGet).
		Name("GET /tokens/allowances/{owner}/{spender}").
		HandlerFunc(restutil.WrapHandlerFunc(t.handleGetAllowance))
	sub.Path("/transfer").
		Methods(http.MethodPost).
		Name("POST /tokens/transfer").
		HandlerFunc(restutil.WrapHandlerFunc(t.handleTransfer))
	sub.Path("/approve").
		Methods(http.MethodPost).
		Name("POST /tokens/approve").
		HandlerFunc(restutil.WrapHandlerFunc(t.handleApprove))
	sub.Path("/mint").
		Methods(http.MethodPost).
		Name("POST /tokens/mint").
		HandlerFunc(restutil.WrapHandlerFunc(t.handleMint))
}
