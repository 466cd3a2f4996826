// Copyright (c) 2025 The VeChainThor developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package stakelimit

import (
	"math"

	"github.com/holiman/uint256"

	"github.com/vechain/stakeledger/ledger"
)

// Policy bounds how many tokens a unit of collateral can make effective.
type Policy struct {
	RatioBasisPoints uint64 // tokens allowed per collateral unit, in basis points
	Cap              uint64 // absolute upper bound on the limit, 0 disables it
}

// Default allows 1.3 tokens per unit of collateral without an absolute cap.
var Default = Policy{RatioBasisPoints: ledger.DefaultStakeRatioBasisPoints}

// StakeLimit returns floor(collateral * ratio / 10000), saturated to uint64 and bounded by Cap.
func (p Policy) StakeLimit(collateral uint64) uint64 {
	limit := new(uint256.Int).Mul(uint256.NewInt(collateral), uint256.NewInt(p.RatioBasisPoints))
	limit.Div(limit, uint256.NewInt(ledger.MaxBasisPoints))

	result := uint64(math.MaxUint64)
	if limit.IsUint64() {
		result = limit.Uint64()
	}
	if p.Cap > 0 && result > p.Cap {
		result = p.Cap
	}
	return result
}

// Collateral is the external collateral backing a delegation.
type Collateral struct {
	Amount    uint64 // collateral reported for the record
	AmountMin uint64 // administrative floor that overrides a lower Amount
}

// Effective returns the collateral figure the limit is computed from.
func (c Collateral) Effective() uint64 {
	if c.AmountMin > c.Amount {
		return c.AmountMin
	}
	return c.Amount
}

// StakeLimitOf returns the stake limit implied by the collateral.
func (p Policy) StakeLimitOf(c Collateral) uint64 {
	return p.StakeLimit(c.Effective())
}
