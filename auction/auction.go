// Copyright (c) 2026 The StakeHouse developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

// Package auction implements the marketplace engine: fixed-price listings,
// ascending-bid English auctions, a pull-based refund escrow for outbid
// participants and a basis-point sale fee paid to the engine owner.
package auction

import (
	"math/big"

	"github.com/pkg/errors"

	"github.com/stakehouse/stakehouse/house"
	"github.com/stakehouse/stakehouse/log"
	"github.com/stakehouse/stakehouse/metrics"
	"github.com/stakehouse/stakehouse/reverts"
	"github.com/stakehouse/stakehouse/solidity"
	"github.com/stakehouse/stakehouse/state"
	"github.com/stakehouse/stakehouse/xenv"
)

var logger = log.WithContext("pkg", "auction")

// Enumerable rejection kinds, ordered roughly by check order.
var (
	ErrPriceTooLow          = reverts.New("PriceTooLow")
	ErrDurationInvalid      = reverts.New("DurationInvalid")
	ErrUnknownAssetContract = reverts.New("UnknownAssetContract")
	ErrNotAssetOwner        = reverts.New("NotAssetOwner")
	ErrEngineNotApproved    = reverts.New("EngineNotApproved")
	ErrInvalidListing       = reverts.New("InvalidListing")
	ErrListingNotActive     = reverts.New("ListingNotActive")
	ErrNotAnAuction         = reverts.New("NotAnAuction")
	ErrNotForDirectSale     = reverts.New("NotForDirectSale")
	ErrAuctionEnded         = reverts.New("AuctionEnded")
	ErrAuctionNotEnded      = reverts.New("AuctionNotEnded")
	ErrSellerCannotBid      = reverts.New("SellerCannotBid")
	ErrSellerCannotBuy      = reverts.New("SellerCannotBuy")
	ErrBidTooLow            = reverts.New("BidTooLow")
	ErrInsufficientPayment  = reverts.New("InsufficientPayment")
	ErrNotAuthorized        = reverts.New("NotAuthorized")
	ErrCannotCancelWithBids = reverts.New("CannotCancelWithBids")
	ErrNoPendingReturns     = reverts.New("NoPendingReturns")
	ErrNotOwner             = reverts.New("NotOwner")
	ErrFeeTooHigh           = reverts.New("FeeTooHigh")
)

var metricAuctionOps = metrics.LazyLoadCounterVec("auction_op_count", []string{"op"})

// AssetRegistry is the unique-asset collaborator the engine lists from.
type AssetRegistry interface {
	Address() house.Address
	OwnerOf(id uint64) (house.Address, error)
	GetApproved(id uint64) (house.Address, error)
	IsApprovedForAll(owner, operator house.Address) (bool, error)
	TransferFrom(env *xenv.Environment, spender, from, to house.Address, id uint64) error
}

// Auction is the marketplace engine.
type Auction struct {
	addr       house.Address
	state      *state.State
	storage    *storage
	registries map[house.Address]AssetRegistry

	// anti-sniping window in seconds. A bid landing within the window
	// pushes the deadline out by the same amount. Zero disables it.
	bidExtension *solidity.ConfigVariable
}

// New create a new instance. The given registries are the asset contracts
// the engine accepts listings for.
func New(addr house.Address, st *state.State, registries ...AssetRegistry) *Auction {
	sctx := solidity.NewContext(addr, st)
	bidExtension := solidity.NewConfigVariable("bid-extension", 0)
	bidExtension.Override(sctx)
	byAddr := make(map[house.Address]AssetRegistry, len(registries))
	for _, reg := range registries {
		byAddr[reg.Address()] = reg
	}
	return &Auction{
		addr:         addr,
		state:        st,
		storage:      newStorage(sctx),
		registries:   byAddr,
		bidExtension: bidExtension,
	}
}

// Initialize sets the engine owner (also the fee recipient) and the initial
// fee. Called once at genesis.
func (a *Auction) Initialize(owner house.Address) {
	a.storage.owner.Set(&owner)
	a.storage.feeBps.Set(big.NewInt(house.InitialMarketFeeBps))
}

// Address returns the engine's account address.
func (a *Auction) Address() house.Address {
	return a.addr
}

// Owner returns the engine owner, who collects fees and tunes them.
func (a *Auction) Owner() (house.Address, error) {
	return a.storage.owner.Get()
}

// FeeBps returns the current sale fee in basis points.
func (a *Auction) FeeBps() (uint32, error) {
	fee, err := a.storage.feeBps.Get()
	if err != nil {
		return 0, err
	}
	return uint32(fee.Uint64()), nil
}

// ListingCount returns the number of listings ever created.
func (a *Auction) ListingCount() (uint64, error) {
	count, err := a.storage.counter.Get()
	if err != nil {
		return 0, err
	}
	return count.Uint64(), nil
}

// GetListing returns the listing record, nil for ids never issued.
func (a *Auction) GetListing(id uint64) (*Listing, error) {
	return a.storage.getListing(id)
}

// GetBid returns one entry of a listing's bid history, nil when the index
// is out of range.
func (a *Auction) GetBid(id, index uint64) (*Bid, error) {
	bid, err := a.storage.bids.Get(bidKey{id, index})
	if err != nil {
		return nil, errors.Wrap(err, "failed to get bid")
	}
	if bid == nil || bid.Amount == nil {
		return nil, nil
	}
	return bid, nil
}

// PendingReturns returns the caller-withdrawable escrow balance of addr.
func (a *Auction) PendingReturns(addr house.Address) (*big.Int, error) {
	return a.storage.getPendingReturns(addr)
}

// CreateListing lists an asset for sale. Ids are zero-based and never
// reused. The asset is pulled into engine custody, so the seller must have
// approved the engine beforehand.
func (a *Auction) CreateListing(
	env *xenv.Environment,
	assetContract house.Address,
	assetID uint64,
	price *big.Int,
	isAuction bool,
	duration uint64,
) (uint64, error) {
	if price == nil || price.Sign() <= 0 {
		return 0, ErrPriceTooLow
	}
	if duration == 0 {
		return 0, ErrDurationInvalid
	}
	registry, ok := a.registries[assetContract]
	if !ok {
		return 0, ErrUnknownAssetContract
	}

	seller := env.Caller()
	owner, err := registry.OwnerOf(assetID)
	if err != nil {
		return 0, err
	}
	if owner != seller {
		return 0, ErrNotAssetOwner
	}
	approved, err := a.isApprovedFor(registry, seller, assetID)
	if err != nil {
		return 0, err
	}
	if !approved {
		return 0, ErrEngineNotApproved
	}

	count, err := a.storage.counter.Get()
	if err != nil {
		return 0, err
	}
	id := count.Uint64()

	// every listing carries a deadline; only the auction path gates on it
	deadline := env.Now() + duration
	listing := &Listing{
		Seller:        seller,
		AssetContract: assetContract,
		AssetID:       assetID,
		Price:         price,
		IsAuction:     isAuction,
		Deadline:      deadline,
		HighestBid:    new(big.Int),
		Active:        true,
	}
	if err := a.storage.setListing(id, listing); err != nil {
		return 0, err
	}
	if err := a.storage.counter.Add(big.NewInt(1)); err != nil {
		return 0, err
	}

	// asset moves into engine custody for the life of the listing
	if err := registry.TransferFrom(env, a.addr, seller, a.addr, assetID); err != nil {
		return 0, err
	}

	logger.Debug("listing created",
		"id", id, "seller", seller, "asset", assetID, "auction", isAuction)
	metricAuctionOps().AddWithLabel(1, map[string]string{"op": "create"})
	env.Log(a.addr, "ListingCreated", []house.Bytes32{
		listingTopic(id),
		house.BytesToBytes32(seller.Bytes()),
	}, xenv.EncodeData(assetContract, assetID, price, isAuction, deadline))
	return id, nil
}

// PlaceBid places an ascending bid on an auction listing with the native
// value attached to the call. The previous highest bid moves to the outbid
// participant's pending returns in full.
func (a *Auction) PlaceBid(env *xenv.Environment, id uint64) error {
	listing, err := a.storage.getListing(id)
	if err != nil {
		return err
	}
	if listing == nil {
		return ErrInvalidListing
	}
	if !listing.Active {
		return ErrListingNotActive
	}
	if !listing.IsAuction {
		return ErrNotAnAuction
	}
	if env.Now() > listing.Deadline {
		return ErrAuctionEnded
	}
	bidder := env.Caller()
	if bidder == listing.Seller {
		return ErrSellerCannotBid
	}
	value := env.Value()
	// a bid must strictly exceed the standing one, or the price floor when
	// none stands yet
	floor := listing.HighestBid
	if floor.Sign() == 0 {
		floor = listing.Price
	}
	if value.Cmp(floor) <= 0 {
		return ErrBidTooLow
	}

	if listing.HighestBid.Sign() > 0 {
		if err := a.creditReturns(listing.HighestBidder, listing.HighestBid); err != nil {
			return err
		}
	}

	if err := a.storage.bids.Set(bidKey{id, listing.BidCount}, &Bid{
		Bidder: bidder,
		Amount: value,
		Time:   env.Now(),
	}); err != nil {
		return errors.Wrap(err, "failed to append bid")
	}

	listing.HighestBidder = bidder
	listing.HighestBid = value
	listing.BidCount++
	if ext := uint64(a.bidExtension.Get()); ext > 0 && listing.Deadline-env.Now() < ext {
		listing.Deadline = env.Now() + ext
	}
	if err := a.storage.setListing(id, listing); err != nil {
		return err
	}

	logger.Debug("bid placed", "id", id, "bidder", bidder, "amount", value)
	metricAuctionOps().AddWithLabel(1, map[string]string{"op": "bid"})
	env.Log(a.addr, "BidPlaced", []house.Bytes32{
		listingTopic(id),
		house.BytesToBytes32(bidder.Bytes()),
	}, xenv.EncodeData(value))
	return nil
}

// BuyNow purchases a fixed-price listing outright with the attached native
// value. Auction listings cannot be bought directly.
func (a *Auction) BuyNow(env *xenv.Environment, id uint64) error {
	listing, err := a.storage.getListing(id)
	if err != nil {
		return err
	}
	if listing == nil {
		return ErrInvalidListing
	}
	if !listing.Active {
		return ErrListingNotActive
	}
	if listing.IsAuction {
		return ErrNotForDirectSale
	}
	buyer := env.Caller()
	if buyer == listing.Seller {
		return ErrSellerCannotBuy
	}
	value := env.Value()
	if value.Cmp(listing.Price) < 0 {
		return ErrInsufficientPayment
	}

	listing.Active = false
	if err := a.storage.setListing(id, listing); err != nil {
		return err
	}

	if err := a.settle(env, listing, buyer, value); err != nil {
		return err
	}

	metricAuctionOps().AddWithLabel(1, map[string]string{"op": "buy"})
	env.Log(a.addr, "ListingSold", []house.Bytes32{
		listingTopic(id),
		house.BytesToBytes32(buyer.Bytes()),
	}, xenv.EncodeData(value))
	return nil
}

// FinalizeAuction settles an ended auction. Callable by anyone. With no
// bids the asset goes back to the seller and the listing counts as
// canceled; otherwise the highest bidder wins and proceeds are split.
func (a *Auction) FinalizeAuction(env *xenv.Environment, id uint64) error {
	listing, err := a.storage.getListing(id)
	if err != nil {
		return err
	}
	if listing == nil {
		return ErrInvalidListing
	}
	if !listing.Active {
		return ErrListingNotActive
	}
	if !listing.IsAuction {
		return ErrNotAnAuction
	}
	if env.Now() <= listing.Deadline {
		return ErrAuctionNotEnded
	}

	listing.Active = false
	if err := a.storage.setListing(id, listing); err != nil {
		return err
	}

	if listing.BidCount == 0 {
		registry := a.registries[listing.AssetContract]
		if err := registry.TransferFrom(env, a.addr, a.addr, listing.Seller, listing.AssetID); err != nil {
			return err
		}
		metricAuctionOps().AddWithLabel(1, map[string]string{"op": "finalize_no_bids"})
		env.Log(a.addr, "ListingCanceled", []house.Bytes32{listingTopic(id)}, nil)
		return nil
	}

	if err := a.settle(env, listing, listing.HighestBidder, listing.HighestBid); err != nil {
		return err
	}

	metricAuctionOps().AddWithLabel(1, map[string]string{"op": "finalize"})
	env.Log(a.addr, "ListingSold", []house.Bytes32{
		listingTopic(id),
		house.BytesToBytes32(listing.HighestBidder.Bytes()),
	}, xenv.EncodeData(listing.HighestBid))
	return nil
}

// CancelListing withdraws an active listing and returns the asset to the
// seller. Only the seller may cancel, and only before any bid landed.
func (a *Auction) CancelListing(env *xenv.Environment, id uint64) error {
	listing, err := a.storage.getListing(id)
	if err != nil {
		return err
	}
	if listing == nil {
		return ErrInvalidListing
	}
	if !listing.Active {
		return ErrListingNotActive
	}
	if env.Caller() != listing.Seller {
		return ErrNotAuthorized
	}
	if listing.BidCount > 0 {
		return ErrCannotCancelWithBids
	}

	listing.Active = false
	if err := a.storage.setListing(id, listing); err != nil {
		return err
	}

	registry := a.registries[listing.AssetContract]
	if err := registry.TransferFrom(env, a.addr, a.addr, listing.Seller, listing.AssetID); err != nil {
		return err
	}

	metricAuctionOps().AddWithLabel(1, map[string]string{"op": "cancel"})
	env.Log(a.addr, "ListingCanceled", []house.Bytes32{listingTopic(id)}, nil)
	return nil
}

// WithdrawPendingReturns pays out the caller's escrowed refunds. The
// balance is zeroed before the native transfer.
func (a *Auction) WithdrawPendingReturns(env *xenv.Environment) (*big.Int, error) {
	caller := env.Caller()
	balance, err := a.storage.getPendingReturns(caller)
	if err != nil {
		return nil, err
	}
	if balance.Sign() == 0 {
		return nil, ErrNoPendingReturns
	}

	if err := a.storage.setPendingReturns(caller, new(big.Int)); err != nil {
		return nil, err
	}
	if err := a.payOut(caller, balance); err != nil {
		return nil, err
	}

	logger.Debug("returns withdrawn", "addr", caller, "amount", balance)
	metricAuctionOps().AddWithLabel(1, map[string]string{"op": "withdraw"})
	return balance, nil
}

// UpdateFee sets the sale fee. Engine owner only, capped at 10%.
func (a *Auction) UpdateFee(env *xenv.Environment, newFeeBps uint32) error {
	owner, err := a.storage.owner.Get()
	if err != nil {
		return err
	}
	if env.Caller() != owner {
		return ErrNotOwner
	}
	if newFeeBps > house.MaxMarketFeeBps {
		return ErrFeeTooHigh
	}

	oldFee, err := a.FeeBps()
	if err != nil {
		return err
	}
	a.storage.feeBps.Set(big.NewInt(int64(newFeeBps)))

	logger.Info("fee updated", "old", oldFee, "new", newFeeBps)
	env.Log(a.addr, "FeeUpdated", nil, xenv.EncodeData(oldFee, newFeeBps))
	return nil
}

// settle hands the asset to the recipient and splits the sale value into
// the owner's fee and the seller's proceeds. Effects have already been
// recorded by the caller.
func (a *Auction) settle(env *xenv.Environment, listing *Listing, recipient house.Address, value *big.Int) error {
	registry := a.registries[listing.AssetContract]
	if err := registry.TransferFrom(env, a.addr, a.addr, recipient, listing.AssetID); err != nil {
		return err
	}

	feeBps, err := a.storage.feeBps.Get()
	if err != nil {
		return err
	}
	fee := new(big.Int).Mul(value, feeBps)
	fee.Div(fee, big.NewInt(house.BpsDenominator))
	proceeds := new(big.Int).Sub(value, fee)

	owner, err := a.storage.owner.Get()
	if err != nil {
		return err
	}
	if fee.Sign() > 0 {
		if err := a.payOut(owner, fee); err != nil {
			return err
		}
	}
	return a.payOut(listing.Seller, proceeds)
}

// payOut moves native value out of engine custody.
func (a *Auction) payOut(to house.Address, amount *big.Int) error {
	ok, err := a.state.SubBalance(a.addr, amount)
	if err != nil {
		return err
	}
	if !ok {
		return errors.New("engine custody balance underflow")
	}
	return a.state.AddBalance(to, amount)
}

func (a *Auction) creditReturns(addr house.Address, amount *big.Int) error {
	balance, err := a.storage.getPendingReturns(addr)
	if err != nil {
		return err
	}
	return a.storage.setPendingReturns(addr, new(big.Int).Add(balance, amount))
}

func (a *Auction) isApprovedFor(registry AssetRegistry, owner house.Address, assetID uint64) (bool, error) {
	approved, err := registry.GetApproved(assetID)
	if err != nil {
		return false, err
	}
	if approved == a.addr {
		return true, nil
	}
	return registry.IsApprovedForAll(owner, a.addr)
}

func listingTopic(id uint64) house.Bytes32 {
	return house.BytesToBytes32(listingKey(id).Bytes())
}
