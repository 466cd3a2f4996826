// Copyright (c) 2025 The VeChainThor developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package delegation

import (
	"github.com/holiman/uint256"
	"github.com/pkg/errors"

	"github.com/vechain/stakeledger/ledger"
	"github.com/vechain/stakeledger/staker/safemath"
)

// Delegation is the position shape shared by validator and collateral-staker records.
type Delegation struct {
	Authority ledger.Pubkey // controls the position
	Validator ledger.Pubkey // the validator the tokens are committed to

	ActiveAmount       uint64 // currently staked, includes DeactivatingAmount
	EffectiveAmount    uint64 // collateral-capped share of ActiveAmount, earns rewards
	DeactivatingAmount uint64
	InactiveAmount     uint64 // withdrawable

	DeactivationTimestamp *uint64 `rlp:"nil"`
	UnstakeCooldown       uint64  // no unstake before this unix time

	LastSeenStakeRewardsPerToken  *uint256.Int
	LastSeenHolderRewardsPerToken *uint256.Int
}

// New returns an empty position, checkpointed at the pool's current accumulators.
func New(authority, validator ledger.Pubkey, stakeRewardsPerToken, holderRewardsPerToken *uint256.Int) *Delegation {
	return &Delegation{
		Authority:                     authority,
		Validator:                     validator,
		LastSeenStakeRewardsPerToken:  safemath.U128(stakeRewardsPerToken),
		LastSeenHolderRewardsPerToken: safemath.U128(holderRewardsPerToken),
	}
}

// IsEmpty returns whether every amount of the position is zero.
func (d *Delegation) IsEmpty() bool {
	return d.ActiveAmount == 0 &&
		d.EffectiveAmount == 0 &&
		d.DeactivatingAmount == 0 &&
		d.InactiveAmount == 0
}

// Validate checks the amount invariants of the position.
func (d *Delegation) Validate() error {
	if d.EffectiveAmount > d.ActiveAmount {
		return errors.Errorf("effective amount %d exceeds active amount %d", d.EffectiveAmount, d.ActiveAmount)
	}
	if d.DeactivatingAmount > d.ActiveAmount {
		return errors.Errorf("deactivating amount %d exceeds active amount %d", d.DeactivatingAmount, d.ActiveAmount)
	}
	return nil
}

// Clone returns a deep copy.
func (d *Delegation) Clone() *Delegation {
	cpy := *d
	if d.DeactivationTimestamp != nil {
		ts := *d.DeactivationTimestamp
		cpy.DeactivationTimestamp = &ts
	}
	cpy.LastSeenStakeRewardsPerToken = safemath.U128(d.LastSeenStakeRewardsPerToken)
	cpy.LastSeenHolderRewardsPerToken = safemath.U128(d.LastSeenHolderRewardsPerToken)
	return &cpy
}
