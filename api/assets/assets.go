// Copyright (c) 2026 The StakeHouse developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

// Package assets exposes the unique asset registry over HTTP.
package assets

import (
	"net/http"
	"strconv"

	"github.com/gorilla/mux"
	"github.com/pkg/errors"

	"github.com/stakehouse/stakehouse/api/restutil"
	"github.com/stakehouse/stakehouse/house"
	"github.com/stakehouse/stakehouse/registry"
	"github.com/stakehouse/stakehouse/runtime"
	"github.com/stakehouse/stakehouse/state"
	"github.com/stakehouse/stakehouse/xenv"
)

type Assets struct {
	rt  *runtime.Runtime
	reg *registry.Registry
}

func New(rt *runtime.Runtime, reg *registry.Registry) *Assets {
	return &Assets{rt, reg}
}

// MintRequest mints a fresh asset to the named recipient.
type MintRequest struct {
	Caller house.Address `json:"caller"`
	To     house.Address `json:"to"`
}

// ApproveRequest grants the single-asset approval.
type ApproveRequest struct {
	Caller  house.Address `json:"caller"`
	To      house.Address `json:"to"`
	AssetID uint64        `json:"assetId"`
}

// OperatorRequest grants or revokes a blanket approval.
type OperatorRequest struct {
	Caller   house.Address `json:"caller"`
	Operator house.Address `json:"operator"`
	Approved bool          `json:"approved"`
}

// TransferRequest moves an asset between owners.
type TransferRequest struct {
	Caller  house.Address `json:"caller"`
	From    house.Address `json:"from"`
	To      house.Address `json:"to"`
	AssetID uint64        `json:"assetId"`
}

func (a *Assets) handleGetOwner(w http.ResponseWriter, req *http.Request) error {
	id, err := strconv.ParseUint(mux.Vars(req)["id"], 10, 64)
	if err != nil {
		return restutil.BadRequest(errors.WithMessage(err, "id"))
	}
	var owner house.Address
	if err := a.rt.Read(func(*state.State, uint64) (err error) {
		owner, err = a.reg.OwnerOf(id)
		return
	}); err != nil {
		if errors.Is(err, registry.ErrNonexistentAsset) {
			return restutil.HTTPError(err, http.StatusNotFound)
		}
		return err
	}
	return restutil.WriteJSON(w, restutil.M{"owner": owner})
}

func (a *Assets) handleGetCount(w http.ResponseWriter, req *http.Request) error {
	var count uint64
	if err := a.rt.Read(func(*state.State, uint64) (err error) {
		count, err = a.reg.Count()
		return
	}); err != nil {
		return err
	}
	return restutil.WriteJSON(w, restutil.M{"count": count})
}

func (a *Assets) handleMint(w http.ResponseWriter, req *http.Request) error {
	var body MintRequest
	if err := restutil.ParseJSON(req.Body, &body); err != nil {
		return restutil.BadRequest(errors.WithMessage(err, "body"))
	}
	var id uint64
	events, err := a.rt.Call(a.reg.Address(), body.Caller, nil, func(env *xenv.Environment) (err error) {
		id, err = a.reg.Mint(env, body.To)
		return
	})
	if err != nil {
		return err
	}
	return restutil.WriteJSON(w, restutil.M{"id": id, "events": events})
}

func (a *Assets) handleApprove(w http.ResponseWriter, req *http.Request) error {
	var body ApproveRequest
	if err := restutil.ParseJSON(req.Body, &body); err != nil {
		return restutil.BadRequest(errors.WithMessage(err, "body"))
	}
	events, err := a.rt.Call(a.reg.Address(), body.Caller, nil, func(env *xenv.Environment) error {
		return a.reg.Approve(env, body.To, body.AssetID)
	})
	if err != nil {
		return err
	}
	return restutil.WriteJSON(w, restutil.M{"events": events})
}

func (a *Assets) handleSetOperator(w http.ResponseWriter, req *http.Request) error {
	var body OperatorRequest
	if err := restutil.ParseJSON(req.Body, &body); err != nil {
		return restutil.BadRequest(errors.WithMessage(err, "body"))
	}
	events, err := a.rt.Call(a.reg.Address(), body.Caller, nil, func(env *xenv.Environment) error {
		return a.reg.SetApprovalForAll(env, body.Operator, body.Approved)
	})
	if err != nil {
		return err
	}
	return restutil.WriteJSON(w, restutil.M{"events": events})
}

func (a *Assets) handleTransfer(w http.ResponseWriter, req *http.Request) error {
	var body TransferRequest
	if err := restutil.ParseJSON(req.Body, &body); err != nil {
		return restutil.BadRequest(errors.WithMessage(err, "body"))
	}
	events, err := a.rt.Call(a.reg.Address(), body.Caller, nil, func(env *xenv.Environment) error {
		return a.reg.TransferFrom(env, body.Caller, body.From, body.To, body.AssetID)
	})
	if err != nil {
		return err
	}
	return restutil.WriteJSON(w, restutil.M{"events": events})
}

func (a *Assets) Mount(root *mux.Router, pathPrefix string) {
	sub := root.PathPrefix(pathPrefix).Subrouter()

	sub.Path("/count").
		Methods(http.MethodGet).
		Name("GET /assets/count").
		HandlerFunc(restutil.WrapHandlerFunc(a.handleGetCount))
	sub.Path("/{id}/owner").
		Methods(http.MethodGet).
		Name("GET /assets/{id}/owner").
		HandlerFunc(restutil.WrapHandlerFunc(a.handleGetOwner))
	sub.Path("/mint").
		Methods(http.MethodPost).
		Name("POST /assets/mint").
		HandlerFunc(restutil.WrapHandlerFunc(a.handleMint))
	sub.Path("/approve").
		Methods(http.MethodPost).
		Name("POST /assets/approve").
		HandlerFunc(restutil.WrapHandlerFunc(a.handleApprove))
	sub.Path("/operators").
		Methods(http.MethodPost).
		Name("POST /assets/operators").
		HandlerFunc(restutil.WrapHandlerFunc(a.handleSetOperator))
	sub.Path("/transfer").
		Methods(http.MethodPost).
		Name("POST /assets/transfer").
		HandlerFunc(restutil.WrapHandlerFunc(a.handleTransfer))
}
