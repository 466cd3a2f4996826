// Copyright (c) 2025 The VeChainThor developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

// Package cooldown governs when and how much of a delegation may be unstaked.
//
// The production path is the single-step unstake: ValidateUnstake, then the
// caller harvests, then ApplyUnstake. The two-phase deactivate, inactivate and
// withdraw flow in legacy.go only exists for ledgers created before it.
package cooldown

import (
	"github.com/holiman/uint256"

	"github.com/vechain/stakeledger/ledger"
	"github.com/vechain/stakeledger/staker/config"
	"github.com/vechain/stakeledger/staker/delegation"
	"github.com/vechain/stakeledger/staker/reverts"
	"github.com/vechain/stakeledger/staker/safemath"
)

// MaxDeactivation returns floor(active * bps / 10000).
func MaxDeactivation(active uint64, basisPoints uint16) uint64 {
	limit, err := safemath.MulDivU64(
		uint256.NewInt(active),
		uint256.NewInt(uint64(basisPoints)),
		ledger.MaxBasisPoints,
	)
	if err != nil {
		// bps never exceeds 10000 so the quotient is at most active
		return active
	}
	return limit
}

// ValidateUnstake checks an unstake request without touching any state.
func ValidateUnstake(cfg *config.Config, d *delegation.Delegation, amount, now uint64) error {
	if now < d.UnstakeCooldown {
		return reverts.ErrActiveUnstakeCooldown
	}
	if amount == 0 {
		return reverts.ErrInvalidAmount
	}
	if amount > d.ActiveAmount {
		return reverts.ErrInsufficientStakeAmount
	}
	if amount > MaxDeactivation(d.ActiveAmount, cfg.MaxDeactivationBasisPoints) {
		return reverts.ErrMaximumDeactivationAmountExceeded
	}
	return nil
}

// ApplyUnstake removes amount from d and the pool's delegated total and arms the
// next cooldown. The effective amount must be synced afterwards.
func ApplyUnstake(cfg *config.Config, d *delegation.Delegation, amount, now uint64) error {
	active, err := safemath.CheckedSubU64(d.ActiveAmount, amount)
	if err != nil {
		return err
	}
	until, err := safemath.CheckedAddU64(now, cfg.CooldownTimeSeconds)
	if err != nil {
		return err
	}
	if err := cfg.SubDelegated(amount); err != nil {
		return err
	}
	d.ActiveAmount = active
	d.DeactivatingAmount = safemath.MinU64(d.DeactivatingAmount, active)
	d.UnstakeCooldown = until
	return nil
}
