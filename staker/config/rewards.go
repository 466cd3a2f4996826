// Copyright (c) 2025 The VeChainThor developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package config

import (
	"github.com/holiman/uint256"

	"github.com/vechain/stakeledger/ledger"
	"github.com/vechain/stakeledger/staker/reverts"
	"github.com/vechain/stakeledger/staker/safemath"
)

// RewardPerToken returns floor(rewards * RewardScale / supply). A zero supply yields zero.
func RewardPerToken(rewards, supply uint64) (*uint256.Int, error) {
	return safemath.MulDivU128(
		uint256.NewInt(rewards),
		uint256.NewInt(ledger.RewardScale),
		uint256.NewInt(supply),
	)
}

// IncreaseStakeRewardsPerToken raises the stake accumulator. It can only grow.
func (c *Config) IncreaseStakeRewardsPerToken(increment *uint256.Int) error {
	acc, err := safemath.CheckedAddU128(c.AccumulatedStakeRewardsPerToken, increment)
	if err != nil {
		return err
	}
	c.AccumulatedStakeRewardsPerToken = acc
	return nil
}

// IncreaseHolderRewardsPerToken raises the holder accumulator. It can only grow.
func (c *Config) IncreaseHolderRewardsPerToken(increment *uint256.Int) error {
	acc, err := safemath.CheckedAddU128(c.AccumulatedHolderRewardsPerToken, increment)
	if err != nil {
		return err
	}
	c.AccumulatedHolderRewardsPerToken = acc
	return nil
}

// DistributeStakeRewards spreads amount over every delegated token and returns
// the accumulator increment. The share of tokens above a stake limit is only
// claimable through the forfeit fold at harvest, so the pool needs some
// effective stake to receive rewards at all.
func (c *Config) DistributeStakeRewards(amount uint64) (*uint256.Int, error) {
	if amount == 0 {
		return nil, reverts.ErrInvalidAmount
	}
	if c.TokenAmountEffective == 0 {
		return nil, reverts.ErrNoEffectiveStake
	}
	increment, err := RewardPerToken(amount, c.TokenAmountDelegated)
	if err != nil {
		return nil, err
	}
	total, err := safemath.CheckedAddU64(c.TotalStakeRewards, amount)
	if err != nil {
		return nil, err
	}
	if err := c.IncreaseStakeRewardsPerToken(increment); err != nil {
		return nil, err
	}
	c.TotalStakeRewards = total
	return increment, nil
}

// DistributeHolderRewards spreads amount over every delegated token and returns
// the accumulator increment.
func (c *Config) DistributeHolderRewards(amount uint64) (*uint256.Int, error) {
	if amount == 0 {
		return nil, reverts.ErrInvalidAmount
	}
	if c.TokenAmountDelegated == 0 {
		return nil, reverts.ErrNoEffectiveStake
	}
	increment, err := RewardPerToken(amount, c.TokenAmountDelegated)
	if err != nil {
		return nil, err
	}
	if err := c.IncreaseHolderRewardsPerToken(increment); err != nil {
		return nil, err
	}
	return increment, nil
}
