// Copyright (c) 2026 The StakeHouse developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package api

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"math/big"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/stakehouse/stakehouse/auction"
	"github.com/stakehouse/stakehouse/eventdb"
	"github.com/stakehouse/stakehouse/house"
	"github.com/stakehouse/stakehouse/ledger"
	"github.com/stakehouse/stakehouse/registry"
	"github.com/stakehouse/stakehouse/runtime"
	"github.com/stakehouse/stakehouse/staking"
	"github.com/stakehouse/stakehouse/state"
	"github.com/stakehouse/stakehouse/xenv"
)

type testServer struct {
	ts    *httptest.Server
	clock *runtime.ManualClock
	st    *state.State

	master house.Address
}

func newTestServer(t *testing.T) *testServer {
	st := state.New()
	master := house.BytesToAddress([]byte("master"))

	ldg := ledger.New(house.LedgerAddress, st)
	ldg.Initialize(master)
	reg := registry.New(house.RegistryAddress, st)
	pool := staking.New(house.StakingAddress, st, ldg)
	engine := auction.New(house.AuctionAddress, st, reg)
	engine.Initialize(master)

	db, err := eventdb.NewMem()
	require.NoError(t, err)

	clock := runtime.NewManualClock(1000)
	rt := runtime.New(st, clock, db)

	// grant the pool its minter role through the runtime
	_, err = rt.Call(ldg.Address(), master, nil, func(env *xenv.Environment) error {
		if err := ldg.AddMinter(env, master); err != nil {
			return err
		}
		return ldg.AddMinter(env, pool.Address())
	})
	require.NoError(t, err)

	handler, closer := New(rt, Engines{
		Ledger:   ldg,
		Registry: reg,
		Staking:  pool,
		Auction:  engine,
	}, db, Options{AllowedOrigins: "*", EventsLimit: 100, EnableMetrics: true})

	ts := httptest.NewServer(handler)
	t.Cleanup(func() {
		ts.Close()
		closer()
		db.Close()
	})
	return &testServer{ts: ts, clock: clock, st: st, master: master}
}

func (s *testServer) post(t *testing.T, path string, body any) (int, []byte) {
	data, err := json.Marshal(body)
	require.NoError(t, err)
	res, err := http.Post(s.ts.URL+path, "application/json", bytes.NewReader(data))
	require.NoError(t, err)
	defer res.Body.Close()
	payload, err := io.ReadAll(res.Body)
	require.NoError(t, err)
	return res.StatusCode, payload
}

func (s *testServer) get(t *testing.T, path string, v any) int {
	res, err := http.Get(s.ts.URL + path)
	require.NoError(t, err)
	defer res.Body.Close()
	if v != nil && res.StatusCode == http.StatusOK {
		require.NoError(t, json.NewDecoder(res.Body).Decode(v))
	}
	return res.StatusCode
}

func TestStakingOverHTTP(t *testing.T) {
	s := newTestServer(t)
	alice := house.BytesToAddress([]byte("alice"))

	code, _ := s.post(t, "/tokens/mint", map[string]any{
		"caller": s.master.String(), "to": alice.String(), "amount": 1000,
	})
	require.Equal(t, http.StatusOK, code)

	code, _ = s.post(t, "/tokens/approve", map[string]any{
		"caller": alice.String(), "spender": house.StakingAddress.String(), "amount": 1000,
	})
	require.Equal(t, http.StatusOK, code)

	code, _ = s.post(t, "/stakers/stake", map[string]any{
		"caller": alice.String(), "amount": 1000,
	})
	require.Equal(t, http.StatusOK, code)

	s.clock.Advance(365 * 24 * 60 * 60)

	var info struct {
		Amount     *big.Int `json:"amount"`
		Rewards    *big.Int `json:"rewards"`
		LastUpdate uint64   `json:"lastUpdate"`
	}
	code = s.get(t, "/stakers/"+alice.String(), &info)
	require.Equal(t, http.StatusOK, code)
	assert.Equal(t, int64(1000), info.Amount.Int64())
	assert.Equal(t, int64(50), info.Rewards.Int64())

	code, _ = s.post(t, "/stakers/claim", map[string]any{"caller": alice.String()})
	require.Equal(t, http.StatusOK, code)

	var balance struct {
		Balance *big.Int `json:"balance"`
	}
	code = s.get(t, "/tokens/balances/"+alice.String(), &balance)
	require.Equal(t, http.StatusOK, code)
	assert.Equal(t, int64(50), balance.Balance.Int64())
}

func TestStakingRejectionOverHTTP(t *testing.T) {
	s := newTestServer(t)
	alice := house.BytesToAddress([]byte("alice"))

	code, body := s.post(t, "/stakers/stake", map[string]any{
		"caller": alice.String(), "amount": 0,
	})
	assert.Equal(t, http.StatusConflict, code)
	assert.Contains(t, string(body), "InvalidAmount")
}

func TestAuctionOverHTTP(t *testing.T) {
	s := newTestServer(t)
	seller := house.BytesToAddress([]byte("seller"))
	bidder := house.BytesToAddress([]byte("bidder"))

	// bidder holds native coin for the bid
	require.NoError(t, s.st.AddBalance(bidder, big.NewInt(10000)))

	code, body := s.post(t, "/assets/mint", map[string]any{
		"caller": seller.String(), "to": seller.String(),
	})
	require.Equal(t, http.StatusOK, code)
	var minted struct {
		ID uint64 `json:"id"`
	}
	require.NoError(t, json.Unmarshal(body, &minted))

	code, _ = s.post(t, "/assets/approve", map[string]any{
		"caller": seller.String(), "to": house.AuctionAddress.String(), "assetId": minted.ID,
	})
	require.Equal(t, http.StatusOK, code)

	code, body = s.post(t, "/auctions/listings", map[string]any{
		"caller":        seller.String(),
		"assetContract": house.RegistryAddress.String(),
		"assetId":       minted.ID,
		"price":         200,
		"isAuction":     true,
		"duration":      3600,
	})
	require.Equal(t, http.StatusOK, code)
	var created struct {
		ID uint64 `json:"id"`
	}
	require.NoError(t, json.Unmarshal(body, &created))

	code, _ = s.post(t, fmt.Sprintf("/auctions/listings/%d/bids", created.ID), map[string]any{
		"caller": bidder.String(), "value": 500,
	})
	require.Equal(t, http.StatusOK, code)

	var listing struct {
		HighestBid *big.Int `json:"highestBid"`
		Active     bool     `json:"active"`
	}
	code = s.get(t, fmt.Sprintf("/auctions/listings/%d", created.ID), &listing)
	require.Equal(t, http.StatusOK, code)
	assert.Equal(t, int64(500), listing.HighestBid.Int64())
	assert.True(t, listing.Active)

	s.clock.Advance(3601)
	code, _ = s.post(t, fmt.Sprintf("/auctions/listings/%d/finalize", created.ID), map[string]any{
		"caller": bidder.String(),
	})
	require.Equal(t, http.StatusOK, code)

	var owner struct {
		Owner house.Address `json:"owner"`
	}
	code = s.get(t, fmt.Sprintf("/assets/%d/owner", minted.ID), &owner)
	require.Equal(t, http.StatusOK, code)
	assert.Equal(t, bidder, owner.Owner)

	// 250 bps fee on 500
	sellerBalance, err := s.st.GetBalance(seller)
	require.NoError(t, err)
	assert.Equal(t, int64(488), sellerBalance.Int64())

	code = s.get(t, "/auctions/listings/42", nil)
	assert.Equal(t, http.StatusNotFound, code)
}

func TestEventFilterOverHTTP(t *testing.T) {
	s := newTestServer(t)
	alice := house.BytesToAddress([]byte("alice"))

	code, _ := s.post(t, "/tokens/mint", map[string]any{
		"caller": s.master.String(), "to": alice.String(), "amount": 42,
	})
	require.Equal(t, http.StatusOK, code)

	code, body := s.post(t, "/events", map[string]any{
		"criteria": []any{map[string]any{"name": "Transfer"}},
	})
	require.Equal(t, http.StatusOK, code)

	var found []*eventdb.Event
	require.NoError(t, json.Unmarshal(body, &found))
	require.Len(t, found, 1)
	assert.Equal(t, "Transfer", found[0].Name)
	assert.Equal(t, house.LedgerAddress, found[0].Address)
}
