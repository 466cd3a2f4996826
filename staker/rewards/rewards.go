// Copyright (c) 2025 The VeChainThor developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

// Package rewards computes what a delegation is owed since its last checkpoint.
// Stake rewards accrue on every delegated token. The share of tokens above the
// collateral limit is forfeited and folded back into the stake accumulator for
// the rest of the pool, so every folded unit was deposited.
package rewards

import (
	"github.com/holiman/uint256"

	"github.com/vechain/stakeledger/ledger"
	"github.com/vechain/stakeledger/staker/config"
	"github.com/vechain/stakeledger/staker/delegation"
	"github.com/vechain/stakeledger/staker/safemath"
)

var scale = uint256.NewInt(ledger.RewardScale)

// Result is the outcome of a harvest.
type Result struct {
	Owed      uint64       // rewards earned by the validated amount
	Paid      uint64       // Owed clamped to the spendable pool balance
	Forfeited uint64       // rewards earned by the amount above the stake limit
	Increment *uint256.Int // accumulator increment funded by Forfeited
}

// Clamped returns whether the payout was cut by the pool balance.
func (r *Result) Clamped() bool {
	return r.Paid < r.Owed
}

// Harvest settles the stake rewards of d. The checkpoint is always moved to the
// accumulator, including when nothing is owed. spendable bounds the payout.
func Harvest(cfg *config.Config, d *delegation.Delegation, stakeLimit, spendable uint64) (*Result, error) {
	marginal, err := safemath.CheckedSubU128(cfg.AccumulatedStakeRewardsPerToken, d.LastSeenStakeRewardsPerToken)
	if err != nil {
		return nil, err
	}

	validated := safemath.MinU64(d.ActiveAmount, stakeLimit)
	owed, err := safemath.MulDivU64(marginal, uint256.NewInt(validated), ledger.RewardScale)
	if err != nil {
		return nil, err
	}

	res := &Result{Owed: owed, Increment: new(uint256.Int)}
	if d.ActiveAmount > stakeLimit {
		excess := d.ActiveAmount - stakeLimit
		if res.Forfeited, err = safemath.MulDivU64(marginal, uint256.NewInt(excess), ledger.RewardScale); err != nil {
			return nil, err
		}
		if res.Forfeited > 0 {
			others, err := safemath.CheckedSubU64(cfg.TokenAmountDelegated, d.ActiveAmount)
			if err != nil {
				return nil, err
			}
			if res.Increment, err = safemath.MulDivU128(uint256.NewInt(res.Forfeited), scale, uint256.NewInt(others)); err != nil {
				return nil, err
			}
			if err := cfg.IncreaseStakeRewardsPerToken(res.Increment); err != nil {
				return nil, err
			}
		}
	}

	d.LastSeenStakeRewardsPerToken = safemath.U128(cfg.AccumulatedStakeRewardsPerToken)
	res.Paid = safemath.MinU64(owed, spendable)
	return res, nil
}

// HarvestHolder settles the holder rewards of d. Holder rewards accrue on the
// whole active amount and are never forfeited.
func HarvestHolder(cfg *config.Config, d *delegation.Delegation, spendable uint64) (*Result, error) {
	marginal, err := safemath.CheckedSubU128(cfg.AccumulatedHolderRewardsPerToken, d.LastSeenHolderRewardsPerToken)
	if err != nil {
		return nil, err
	}
	owed, err := safemath.MulDivU64(marginal, uint256.NewInt(d.ActiveAmount), ledger.RewardScale)
	if err != nil {
		return nil, err
	}

	d.LastSeenHolderRewardsPerToken = safemath.U128(cfg.AccumulatedHolderRewardsPerToken)
	return &Result{
		Owed:      owed,
		Paid:      safemath.MinU64(owed, spendable),
		Increment: new(uint256.Int),
	}, nil
}

// Pending returns the stake rewards Harvest would owe, without mutating anything.
func Pending(cfg *config.Config, d *delegation.Delegation, stakeLimit uint64) (uint64, error) {
	marginal, err := safemath.CheckedSubU128(cfg.AccumulatedStakeRewardsPerToken, d.LastSeenStakeRewardsPerToken)
	if err != nil {
		return 0, err
	}
	return safemath.MulDivU64(marginal, uint256.NewInt(safemath.MinU64(d.ActiveAmount, stakeLimit)), ledger.RewardScale)
}

// PendingHolder returns the holder rewards HarvestHolder would owe.
func PendingHolder(cfg *config.Config, d *delegation.Delegation) (uint64, error) {
	marginal, err := safemath.CheckedSubU128(cfg.AccumulatedHolderRewardsPerToken, d.LastSeenHolderRewardsPerToken)
	if err != nil {
		return 0, err
	}
	return safemath.MulDivU64(marginal, uint256.NewInt(d.ActiveAmount), ledger.RewardScale)
}
