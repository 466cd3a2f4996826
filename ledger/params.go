// Copyright (c) 2025 The VeChainThor developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package ledger

const (
	// RewardScale is the fixed-point scale of every reward-per-token accumulator.
	RewardScale uint64 = 1_000_000_000

	// MaxBasisPoints is 100% expressed in basis points.
	MaxBasisPoints uint64 = 10_000

	// DefaultStakeRatioBasisPoints is the default token stake allowed per unit of collateral (1.3x).
	DefaultStakeRatioBasisPoints uint64 = 13_000
)
