// Copyright (c) 2026 The StakeHouse developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

// Package stakers exposes the staking pool over HTTP. Reads project rewards
// to the current clock; mutations run through the runtime on behalf of the
// caller named in the request body.
package stakers

import (
	"math/big"
	"net/http"

	"github.com/gorilla/mux"
	"github.com/pkg/errors"

	"github.com/stakehouse/stakehouse/api/restutil"
	"github.com/stakehouse/stakehouse/house"
	"github.com/stakehouse/stakehouse/runtime"
	"github.com/stakehouse/stakehouse/staking"
	"github.com/stakehouse/stakehouse/state"
	"github.com/stakehouse/stakehouse/xenv"
)

type Stakers struct {
	rt   *runtime.Runtime
	pool *staking.Staking
}

func New(rt *runtime.Runtime, pool *staking.Staking) *Stakers {
	return &Stakers{rt, pool}
}

// StakerInfo is the projected view of one staker.
type StakerInfo struct {
	Address    house.Address `json:"address"`
	Amount     *big.Int      `json:"amount"`
	Rewards    *big.Int      `json:"rewards"`
	LastUpdate uint64        `json:"lastUpdate"`
}

// StakeRequest names the caller and the amount for stake and unstake.
type StakeRequest struct {
	Caller house.Address `json:"caller"`
	Amount *big.Int      `json:"amount"`
}

// ClaimRequest names the caller of a reward claim.
type ClaimRequest struct {
	Caller house.Address `json:"caller"`
}

func (s *Stakers) handleGetStaker(w http.ResponseWriter, req *http.Request) error {
	addr, err := house.ParseAddress(mux.Vars(req)["address"])
	if err != nil {
		return restutil.BadRequest(errors.WithMessage(err, "address"))
	}

	var info *staking.Record
	if err := s.rt.Read(func(_ *state.State, now uint64) error {
		info, err = s.pool.GetStakerInfo(*addr, now)
		return err
	}); err != nil {
		return err
	}
	return restutil.WriteJSON(w, &StakerInfo{
		Address:    *addr,
		Amount:     info.Amount,
		Rewards:    info.Rewards,
		LastUpdate: info.LastUpdate,
	})
}

func (s *Stakers) handleGetTotal(w http.ResponseWriter, req *http.Request) error {
	var total *big.Int
	if err := s.rt.Read(func(*state.State, uint64) (err error) {
		total, err = s.pool.TotalStaked()
		return
	}); err != nil {
		return err
	}
	return restutil.WriteJSON(w, restutil.M{"totalStaked": total})
}

func (s *Stakers) handleStake(w http.ResponseWriter, req *http.Request) error {
	var body StakeRequest
	if err := restutil.ParseJSON(req.Body, &body); err != nil {
		return restutil.BadRequest(errors.WithMessage(err, "body"))
	}
	events, err := s.rt.Call(s.pool.Address(), body.Caller, nil, func(env *xenv.Environment) error {
		return s.pool.Stake(env, body.Amount)
	})
	if err != nil {
		return err
	}
	return restutil.WriteJSON(w, restutil.M{"events": events})
}

func (s *Stakers) handleUnstake(w http.ResponseWriter, req *http.Request) error {
	var body StakeRequest
	if err := restutil.ParseJSON(req.Body, &body); err != nil {
		return restutil.BadRequest(errors.WithMessage(err, "body"))
	}
	events, err := s.rt.Call(s.pool.Address(), body.Caller, nil, func(env *xenv.Environment) error {
		return s.pool.Unstake(env, body.Amount)
	})
	if err != nil {
		return err
	}
	return restutil.WriteJSON(w, restutil.M{"events": events})
}

func (s *Stakers) handleClaim(w http.ResponseWriter, req *http.Request) error {
	var body ClaimRequest
	if err := restutil.ParseJSON(req.Body, &body); err != nil {
		return restutil.BadRequest(errors.WithMessage(err, "body"))
	}
	events, err := s.rt.Call(s.pool.Address(), body.Caller, nil, func(env *xenv.Environment) error {
		return s.pool.ClaimRewards(env)
	})
	if err != nil {
		return err
	}
	return restutil.WriteJSON(w, restutil.M{"events": events})
}

func (s *Stakers) Mount(root *mux.Router, pathPrefix string) {
	sub := root.PathPrefix(pathPrefix).Subrouter()

	sub.Path("/total").
		Methods(http.MethodGet).
		Name("GET /stakers/total").
		HandlerFunc(restutil.WrapHandlerFunc(s.handleGetTotal))
	sub.Path("/{address}").
		Methods(http.MethodGet).
		Name("GET /stakers/{address}").
		HandlerFunc(restutil.WrapHandlerFunc(s.handleGetStaker))
	sub.Path("/stake").
		Methods(http.MethodPost).
		Name("POST /stakers/stake").
		HandlerFunc(restutil.WrapHandlerFunc(s.handleStake))
	sub.Path("/unstake").
		Methods(http.MethodPost).
		Name("POST /stakers/unstake").
		HandlerFunc(restutil.WrapHandlerFunc(s.handleUnstake))
	sub.Path("/claim").
		Methods(http.MethodPost).
		Name("POST /stakers/claim").
		HandlerFunc(restutil.WrapHandlerFunc(s.handleClaim))
}
