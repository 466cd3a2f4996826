// Copyright (c) 2025 The VeChainThor developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package ledger

// Seed tags the kind of account being derived.
type Seed string

const (
	SeedValidatorStake Seed = "validator_stake"
	SeedSolStakerStake Seed = "sol_staker_stake"
	SeedVaultAuthority Seed = "token_owner"
	SeedRewardsHolder  Seed = "stake_rewards_holder"
)

// derivationDomain separates ledger keys from any other blake2b use of the same inputs.
var derivationDomain = []byte("stakeledger/derive")

// Derive returns the canonical address of the account of the given kind owned by
// owner inside pool. The result is deterministic and only depends on its inputs.
func Derive(seed Seed, owner, pool Pubkey) Pubkey {
	return Blake2b(derivationDomain, []byte(seed), owner[:], pool[:])
}

// VaultAuthority returns the signing authority of the pool's token vault.
func VaultAuthority(pool Pubkey) Pubkey {
	return Derive(SeedVaultAuthority, pool, pool)
}

// RewardsHolder returns the account that holds the pool's undistributed rewards.
func RewardsHolder(pool Pubkey) Pubkey {
	return Derive(SeedRewardsHolder, pool, pool)
}
