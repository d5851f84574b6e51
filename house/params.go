// Copyright (c) 2026 The StakeHouse developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package house

// Constants of the StakeHouse protocol.
const (
	// BpsDenominator basis-point denominator, 10000 bps = 100%.
	BpsDenominator = 10000

	// YearSeconds reward accrual year, 365 days.
	YearSeconds = 365 * 24 * 60 * 60

	// InitialRewardRateBps staking reward rate, 5% per year.
	InitialRewardRateBps = 500

	// InitialMarketFeeBps marketplace fee applied to sale proceeds.
	InitialMarketFeeBps = 250

	// MaxMarketFeeBps ceiling for fee updates, 10%.
	MaxMarketFeeBps = 1000
)

// Well-known engine account addresses. The surrounding environment owns the
// address space; these are fixed the way built-in contract addresses are.
var (
	LedgerAddress   = BytesToAddress([]byte("stx-ledger"))
	RegistryAddress = BytesToAddress([]byte("asset-registry"))
	StakingAddress  = BytesToAddress([]byte("staking-pool"))
	AuctionAddress  = BytesToAddress([]byte("auction-engine"))
)
