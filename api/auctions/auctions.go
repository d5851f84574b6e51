// Copyright (c) 2026 The StakeHouse developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

// Package auctions exposes the marketplace engine over HTTP.
package auctions

import (
	"math/big"
	"net/http"
	"strconv"

	"github.com/gorilla/mux"
	"github.com/pkg/errors"

	"github.com/stakehouse/stakehouse/api/restutil"
	"github.com/stakehouse/stakehouse/auction"
	"github.com/stakehouse/stakehouse/house"
	"github.com/stakehouse/stakehouse/runtime"
	"github.com/stakehouse/stakehouse/state"
	"github.com/stakehouse/stakehouse/xenv"
)

type Auctions struct {
	rt     *runtime.Runtime
	engine *auction.Auction
}

func New(rt *runtime.Runtime, engine *auction.Auction) *Auctions {
	return &Auctions{rt, engine}
}

// ListingView is the JSON shape of one listing.
type ListingView struct {
	ID            uint64        `json:"id"`
	Seller        house.Address `json:"seller"`
	AssetContract house.Address `json:"assetContract"`
	AssetID       uint64        `json:"assetId"`
	Price         *big.Int      `json:"price"`
	IsAuction     bool          `json:"isAuction"`
	Deadline      uint64        `json:"deadline"`
	HighestBidder house.Address `json:"highestBidder"`
	HighestBid    *big.Int      `json:"highestBid"`
	BidCount      uint64        `json:"bidCount"`
	Active        bool          `json:"active"`
}

func convertListing(id uint64, l *auction.Listing) *ListingView {
	return &ListingView{
		ID:            id,
		Seller:        l.Seller,
		AssetContract: l.AssetContract,
		AssetID:       l.AssetID,
		Price:         l.Price,
		IsAuction:     l.IsAuction,
		Deadline:      l.Deadline,
		HighestBidder: l.HighestBidder,
		HighestBid:    l.HighestBid,
		BidCount:      l.BidCount,
		Active:        l.Active,
	}
}

// BidView is the JSON shape of one bid-history entry.
type BidView struct {
	Bidder house.Address `json:"bidder"`
	Amount *big.Int      `json:"amount"`
	Time   uint64        `json:"time"`
}

// CreateListingRequest creates a listing on behalf of caller.
type CreateListingRequest struct {
	Caller        house.Address `json:"caller"`
	AssetContract house.Address `json:"assetContract"`
	AssetID       uint64        `json:"assetId"`
	Price         *big.Int      `json:"price"`
	IsAuction     bool          `json:"isAuction"`
	Duration      uint64        `json:"duration"`
}

// ValueRequest names the caller and the attached native value.
type ValueRequest struct {
	Caller house.Address `json:"caller"`
	Value  *big.Int      `json:"value"`
}

// CallerRequest names just the caller.
type CallerRequest struct {
	Caller house.Address `json:"caller"`
}

// FeeRequest updates the sale fee.
type FeeRequest struct {
	Caller house.Address `json:"caller"`
	FeeBps uint32        `json:"feeBps"`
}

func listingID(req *http.Request) (uint64, error) {
	id, err := strconv.ParseUint(mux.Vars(req)["id"], 10, 64)
	if err != nil {
		return 0, restutil.BadRequest(errors.WithMessage(err, "id"))
	}
	return id, nil
}

func (a *Auctions) handleGetListing(w http.ResponseWriter, req *http.Request) error {
	id, err := listingID(req)
	if err != nil {
		return err
	}
	var listing *auction.Listing
	if err := a.rt.Read(func(*state.State, uint64) (err error) {
		listing, err = a.engine.GetListing(id)
		return
	}); err != nil {
		return err
	}
	if listing == nil {
		return restutil.HTTPError(errors.New("listing not found"), http.StatusNotFound)
	}
	return restutil.WriteJSON(w, convertListing(id, listing))
}

func (a *Auctions) handleListListings(w http.ResponseWriter, req *http.Request) error {
	views := []*ListingView{}
	if err := a.rt.Read(func(*state.State, uint64) error {
		count, err := a.engine.ListingCount()
		if err != nil {
			return err
		}
		for id := uint64(0); id < count; id++ {
			listing, err := a.engine.GetListing(id)
			if err != nil {
				return err
			}
			views = append(views, convertListing(id, listing))
		}
		return nil
	}); err != nil {
		return err
	}
	return restutil.WriteJSON(w, views)
}

func (a *Auctions) handleGetBid(w http.ResponseWriter, req *http.Request) error {
	id, err := listingID(req)
	if err != nil {
		return err
	}
	index, err := strconv.ParseUint(mux.Vars(req)["index"], 10, 64)
	if err != nil {
		return restutil.BadRequest(errors.WithMessage(err, "index"))
	}
	var bid *auction.Bid
	if err := a.rt.Read(func(*state.State, uint64) (err error) {
		bid, err = a.engine.GetBid(id, index)
		return
	}); err != nil {
		return err
	}
	if bid == nil {
		return restutil.HTTPError(errors.New("bid not found"), http.StatusNotFound)
	}
	return restutil.WriteJSON(w, &BidView{
		Bidder: bid.Bidder,
		Amount: bid.Amount,
		Time:   bid.Time,
	})
}

func (a *Auctions) handleGetReturns(w http.ResponseWriter, req *http.Request) error {
	addr, err := house.ParseAddress(mux.Vars(req)["address"])
	if err != nil {
		return restutil.BadRequest(errors.WithMessage(err, "address"))
	}
	var balance *big.Int
	if err := a.rt.Read(func(*state.State, uint64) (err error) {
		balance, err = a.engine.PendingReturns(*addr)
		return
	}); err != nil {
		return err
	}
	return restutil.WriteJSON(w, restutil.M{"pendingReturns": balance})
}

func (a *Auctions) handleGetFee(w http.ResponseWriter, req *http.Request) error {
	var fee uint32
	if err := a.rt.Read(func(*state.State, uint64) (err error) {
		fee, err = a.engine.FeeBps()
		return
	}); err != nil {
		return err
	}
	return restutil.WriteJSON(w, restutil.M{"feeBps": fee})
}

func (a *Auctions) handleCreateListing(w http.ResponseWriter, req *http.Request) error {
	var body CreateListingRequest
	if err := restutil.ParseJSON(req.Body, &body); err != nil {
		return restutil.BadRequest(errors.WithMessage(err, "body"))
	}
	var id uint64
	events, err := a.rt.Call(a.engine.Address(), body.Caller, nil, func(env *xenv.Environment) (err error) {
		id, err = a.engine.CreateListing(
			env, body.AssetContract, body.AssetID, body.Price, body.IsAuction, body.Duration)
		return
	})
	if err != nil {
		return err
	}
	return restutil.WriteJSON(w, restutil.M{"id": id, "events": events})
}

func (a *Auctions) handlePlaceBid(w http.ResponseWriter, req *http.Request) error {
	id, err := listingID(req)
	if err != nil {
		return err
	}
	var body ValueRequest
	if err := restutil.ParseJSON(req.Body, &body); err != nil {
		return restutil.BadRequest(errors.WithMessage(err, "body"))
	}
	events, err := a.rt.Call(a.engine.Address(), body.Caller, body.Value, func(env *xenv.Environment) error {
		return a.engine.PlaceBid(env, id)
	})
	if err != nil {
		return err
	}
	return restutil.WriteJSON(w, restutil.M{"events": events})
}

func (a *Auctions) handleBuyNow(w http.ResponseWriter, req *http.Request) error {
	id, err := listingID(req)
	if err != nil {
		return err
	}
	var body ValueRequest
	if err := restutil.ParseJSON(req.Body, &body); err != nil {
		return restutil.BadRequest(errors.WithMessage(err, "body"))
	}
	events, err := a.rt.Call(a.engine.Address(), body.Caller, body.Value, func(env *xenv.Environment) error {
		return a.engine.BuyNow(env, id)
	})
	if err != nil {
		return err
	}
	return restutil.WriteJSON(w, restutil.M{"events": events})
}

func (a *Auctions) handleFinalize(w http.ResponseWriter, req *http.Request) error {
	id, err := listingID(req)
	if err != nil {
		return err
	}
	var body CallerRequest
	if err := restutil.ParseJSON(req.Body, &body); err != nil {
		return restutil.BadRequest(errors.WithMessage(err, "body"))
	}
	events, err := a.rt.Call(a.engine.Address(), body.Caller, nil, func(env *xenv.Environment) error {
		return a.engine.FinalizeAuction(env, id)
	})
	if err != nil {
		return err
	}
	return restutil.WriteJSON(w, restutil.M{"events": events})
}

func (a *Auctions) handleCancel(w http.ResponseWriter, req *http.Request) error {
	id, err := listingID(req)
	if err != nil {
		return err
	}
	var body CallerRequest
	if err := restutil.ParseJSON(req.Body, &body); err != nil {
		return restutil.BadRequest(errors.WithMessage(err, "body"))
	}
	events, err := a.rt.Call(a.engine.Address(), body.Caller, nil, func(env *xenv.Environment) error {
		return a.engine.CancelListing(env, id)
	})
	if err != nil {
		return err
	}
	return restutil.WriteJSON(w, restutil.M{"events": events})
}

func (a *Auctions) handleWithdraw(w http.ResponseWriter, req *http.Request) error {
	var body CallerRequest
	if err := restutil.ParseJSON(req.Body, &body); err != nil {
		return restutil.BadRequest(errors.WithMessage(err, "body"))
	}
	var withdrawn *big.Int
	events, err := a.rt.Call(a.engine.Address(), body.Caller, nil, func(env *xenv.Environment) (err error) {
		withdrawn, err = a.engine.WithdrawPendingReturns(env)
		return
	})
	if err != nil {
		return err
	}
	return restutil.WriteJSON(w, restutil.M{"withdrawn": withdrawn, "events": events})
}

func (a *Auctions) handleUpdateFee(w http.ResponseWriter, req *http.Request) error {
	var body FeeRequest
	if err := restutil.ParseJSON(req.Body, &body); err != nil {
		return restutil.BadRequest(errors.WithMessage(err, "body"))
	}
	events, err := a.rt.Call(a.engine.Address(), body.Caller, nil, func(env *xenv.Environment) error {
		return a.engine.UpdateFee(env, body.FeeBps)
	})
	if err != nil {
		return err
	}
	return restutil.WriteJSON(w, restutil.M{"events": events})
}

func (a *Auctions) Mount(root *mux.Router, pathPrefix string) {
	sub := root.PathPrefix(pathPrefix).Subrouter()

	sub.Path("/listings").
		Methods(http.MethodGet).
		Name("GET /auctions/listings").
		HandlerFunc(restutil.WrapHandlerFunc(a.handleListListings))
	sub.Path("/listings").
		Methods(http.MethodPost).
		Name("POST /auctions/listings").
		HandlerFunc(restutil.WrapHandlerFunc(a.handleCreateListing))
	sub.Path("/listings/{id}").
		Methods(http.MethodGet).
		Name("GET /auctions/listings/{id}").
		HandlerFunc(restutil.WrapHandlerFunc(a.handleGetListing))
	sub.Path("/listings/{id}/bids/{index}").
		Methods(http.MethodGet).
		Name("GET /auctions/listings/{id}/bids/{index}").
		HandlerFunc(restutil.WrapHandlerFunc(a.handleGetBid))
	sub.Path("/listings/{id}/bids").
		Methods(http.MethodPost).
		Name("POST /auctions/listings/{id}/bids").
		HandlerFunc(restutil.WrapHandlerFunc(a.handlePlaceBid))
	sub.Path("/listings/{id}/buy").
		Methods(http.MethodPost).
		Name("POST /auctions/listings/{id}/buy").
		HandlerFunc(restutil.WrapHandlerFunc(a.handleBuyNow))
	sub.Path("/listings/{id}/finalize").
		Methods(http.MethodPost).
		Name("POST /auctions/listings/{id}/finalize").
		HandlerFunc(restutil.WrapHandlerFunc(a.handleFinalize))
	sub.Path("/listings/{id}/cancel").
		Methods(http.MethodPost).
		Name("POST /auctions/listings/{id}/cancel").
		HandlerFunc(restutil.WrapHandlerFunc(a.handleCancel))
	sub.Path("/returns/{address}").
		Methods(http.MethodGet).
		Name("GET /auctions/returns/{address}").
		HandlerFunc(restutil.WrapHandlerFunc(a.handleGetReturns))
	sub.Path("/returns/withdraw").
		Methods(http.MethodPost).
		Name("POST /auctions/returns/withdraw").
		HandlerFunc(restutil.WrapHandlerFunc(a.handleWithdraw))
	sub.Path("/fee").
		Methods(http.MethodGet).
		Name("GET /auctions/fee").
		HandlerFunc(restutil.WrapHandlerFunc(a.handleGetFee))
	sub.Path("/fee").
		Methods(http.MethodPost).
		Name("POST /auctions/fee").
		HandlerFunc(restutil.WrapHandlerFunc(a.handleUpdateFee))
}
