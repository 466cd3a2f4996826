// Copyright (c) 2025 The VeChainThor developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

// Package effective keeps a delegation's collateral-capped effective amount and
// the pool-wide effective total in step. The total is only ever moved by the
// signed delta of a single delegation, never recomputed.
package effective

import (
	"github.com/vechain/stakeledger/staker/config"
	"github.com/vechain/stakeledger/staker/delegation"
	"github.com/vechain/stakeledger/staker/safemath"
	"github.com/vechain/stakeledger/staker/stakelimit"
)

// Target returns the effective amount d should hold for the given collateral.
func Target(d *delegation.Delegation, collateral stakelimit.Collateral, policy stakelimit.Policy) uint64 {
	return safemath.MinU64(d.ActiveAmount, policy.StakeLimitOf(collateral))
}

// Sync recomputes d's effective amount and applies the change to the pool total.
// Neither is touched when the pool total cannot absorb the change.
func Sync(cfg *config.Config, d *delegation.Delegation, collateral stakelimit.Collateral, policy stakelimit.Policy) (config.Delta, error) {
	target := Target(d, collateral, policy)
	delta := config.NewDelta(d.EffectiveAmount, target)
	if delta.IsZero() {
		return delta, nil
	}
	if err := cfg.ApplyEffective(delta); err != nil {
		return config.Delta{}, err
	}
	d.EffectiveAmount = target
	return delta, nil
}

// SyncStake syncs a stake record against its own collateral.
func SyncStake(cfg *config.Config, s *delegation.Stake, policy stakelimit.Policy) (config.Delta, error) {
	return Sync(cfg, s.Delegation, s.Collateral(), policy)
}
