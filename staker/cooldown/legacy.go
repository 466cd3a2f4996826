// Copyright (c) 2025 The VeChainThor developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package cooldown

import (
	"github.com/vechain/stakeledger/staker/config"
	"github.com/vechain/stakeledger/staker/delegation"
	"github.com/vechain/stakeledger/staker/reverts"
	"github.com/vechain/stakeledger/staker/safemath"
)

// Deactivate marks amount of d as deactivating from now on. It overwrites any
// pending deactivation; a zero amount cancels it.
//
// Deprecated: use ValidateUnstake and ApplyUnstake.
func Deactivate(cfg *config.Config, d *delegation.Delegation, amount, now uint64) error {
	if amount == 0 {
		d.DeactivatingAmount = 0
		d.DeactivationTimestamp = nil
		return nil
	}
	if amount > d.ActiveAmount {
		return reverts.ErrInsufficientStakeAmount
	}
	if amount > MaxDeactivation(d.ActiveAmount, cfg.MaxDeactivationBasisPoints) {
		return reverts.ErrMaximumDeactivationAmountExceeded
	}
	d.DeactivatingAmount = amount
	d.DeactivationTimestamp = &now
	return nil
}

// Inactivate moves the deactivating amount to inactive once the cooldown has
// elapsed and returns the amount moved. The effective amount must be synced afterwards.
//
// Deprecated: use ValidateUnstake and ApplyUnstake.
func Inactivate(cfg *config.Config, d *delegation.Delegation, now uint64) (uint64, error) {
	if d.DeactivatingAmount == 0 || d.DeactivationTimestamp == nil {
		return 0, reverts.ErrNoDeactivatingAmount
	}
	ready, err := safemath.CheckedAddU64(*d.DeactivationTimestamp, cfg.CooldownTimeSeconds)
	if err != nil {
		return 0, err
	}
	if now < ready {
		return 0, reverts.ErrActiveDeactivationCooldown
	}

	amount := d.DeactivatingAmount
	active, err := safemath.CheckedSubU64(d.ActiveAmount, amount)
	if err != nil {
		return 0, err
	}
	inactive, err := safemath.CheckedAddU64(d.InactiveAmount, amount)
	if err != nil {
		return 0, err
	}
	if err := cfg.SubDelegated(amount); err != nil {
		return 0, err
	}
	d.ActiveAmount = active
	d.InactiveAmount = inactive
	d.DeactivatingAmount = 0
	d.DeactivationTimestamp = nil
	return amount, nil
}

// Withdraw releases amount of the inactive balance.
//
// Deprecated: use ValidateUnstake and ApplyUnstake.
func Withdraw(d *delegation.Delegation, amount uint64) error {
	if amount == 0 {
		return reverts.ErrInvalidAmount
	}
	if amount > d.InactiveAmount {
		return reverts.ErrInsufficientInactiveAmount
	}
	d.InactiveAmount -= amount
	return nil
}
