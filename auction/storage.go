// Copyright (c) 2026 The StakeHouse developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package auction

import (
	"encoding/binary"
	"math/big"

	"github.com/pkg/errors"

	"github.com/stakehouse/stakehouse/house"
	"github.com/stakehouse/stakehouse/solidity"
)

var (
	slotListings = house.BytesToBytes32([]byte("listings"))
	slotBids     = house.BytesToBytes32([]byte("bids"))
	slotReturns  = house.BytesToBytes32([]byte("pending-returns"))
	slotCounter  = house.BytesToBytes32([]byte("listing-counter"))
	slotOwner    = house.BytesToBytes32([]byte("owner"))
	slotFeeBps   = house.BytesToBytes32([]byte("fee-bps"))
)

type listingKey uint64

func (k listingKey) Bytes() []byte {
	var b [8]byte
	binary.BigEndian.PutUint64(b[:], uint64(k))
	return b[:]
}

// bidKey addresses one entry of a listing's bid history.
type bidKey struct {
	listing uint64
	index   uint64
}

func (k bidKey) Bytes() []byte {
	var b [16]byte
	binary.BigEndian.PutUint64(b[:8], k.listing)
	binary.BigEndian.PutUint64(b[8:], k.index)
	return b[:]
}

type storage struct {
	listings *solidity.Mapping[listingKey, *Listing]
	bids     *solidity.Mapping[bidKey, *Bid]
	returns  *solidity.Mapping[house.Address, *big.Int]
	counter  *solidity.Uint256
	owner    *solidity.Address
	feeBps   *solidity.Uint256
}

func newStorage(sctx *solidity.Context) *storage {
	return &storage{
		listings: solidity.NewMapping[listingKey, *Listing](sctx, slotListings),
		bids:     solidity.NewMapping[bidKey, *Bid](sctx, slotBids),
		returns:  solidity.NewMapping[house.Address, *big.Int](sctx, slotReturns),
		counter:  solidity.NewUint256(sctx, slotCounter),
		owner:    solidity.NewAddress(sctx, slotOwner),
		feeBps:   solidity.NewUint256(sctx, slotFeeBps),
	}
}

// getListing returns nil for ids never issued.
func (s *storage) getListing(id uint64) (*Listing, error) {
	listing, err := s.listings.Get(listingKey(id))
	if err != nil {
		return nil, errors.Wrap(err, "failed to get listing")
	}
	if listing == nil || listing.Price == nil {
		return nil, nil
	}
	return listing, nil
}

func (s *storage) setListing(id uint64, listing *Listing) error {
	if err := s.listings.Set(listingKey(id), listing); err != nil {
		return errors.Wrap(err, "failed to set listing")
	}
	return nil
}

func (s *storage) getPendingReturns(addr house.Address) (*big.Int, error) {
	balance, err := s.returns.Get(addr)
	if err != nil {
		return nil, errors.Wrap(err, "failed to get pending returns")
	}
	if balance == nil {
		return new(big.Int), nil
	}
	return balance, nil
}

func (s *storage) setPendingReturns(addr house.Address, balance *big.Int) error {
	if err := s.returns.Set(addr, balance); err != nil {
		return errors.Wrap(err, "failed to set pending returns")
	}
	return nil
}
