// Copyright (c) 2026 The StakeHouse developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package auction

import (
	"math/big"

	"github.com/stakehouse/stakehouse/house"
)

// Listing is a single asset offered for sale, either fixed-price or as an
// ascending-bid auction. Seller, asset reference, price and mode are fixed
// at creation; the bid fields and the active flag evolve.
type Listing struct {
	Seller        house.Address
	AssetContract house.Address
	AssetID       uint64
	Price         *big.Int
	IsAuction     bool
	Deadline      uint64 // unix seconds, zero for fixed-price listings
	HighestBidder house.Address
	HighestBid    *big.Int
	BidCount      uint64
	Active        bool
}

// Bid is one entry of a listing's append-only bid history.
type Bid struct {
	Bidder house.Address
	Amount *big.Int
	Time   uint64
}
