// Copyright (c) 2025 The VeChainThor developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

// Package slash applies authority-ordered reductions of a stake position.
package slash

import (
	"github.com/vechain/stakeledger/staker/config"
	"github.com/vechain/stakeledger/staker/delegation"
	"github.com/vechain/stakeledger/staker/reverts"
	"github.com/vechain/stakeledger/staker/safemath"
)

// Slash removes up to amount from d and the pool's delegated total and returns
// the amount removed. Requests above the active amount are clamped to it.
// The effective amount must be synced afterwards.
func Slash(cfg *config.Config, d *delegation.Delegation, amount uint64) (uint64, error) {
	if amount == 0 {
		return 0, reverts.ErrInvalidAmount
	}
	if d.ActiveAmount == 0 {
		return 0, reverts.ErrInsufficientStakeAmount
	}
	slashed := safemath.MinU64(amount, d.ActiveAmount)
	if err := cfg.SubDelegated(slashed); err != nil {
		return 0, err
	}
	d.ActiveAmount -= slashed
	d.DeactivatingAmount = safemath.MinU64(d.DeactivatingAmount, d.ActiveAmount)
	return slashed, nil
}

// Unbond detaches a collateral staker's collateral from its validator and
// returns the amount detached. Both effective amounts must be synced afterwards.
func Unbond(validator *delegation.ValidatorExtra, staker *delegation.StakerExtra) (uint64, error) {
	total, err := safemath.CheckedSubU64(validator.TotalStakedLamportsAmount, staker.LamportsAmount)
	if err != nil {
		return 0, err
	}
	amount := staker.LamportsAmount
	validator.TotalStakedLamportsAmount = total
	staker.LamportsAmount = 0
	return amount, nil
}
