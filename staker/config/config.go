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

// Config is the per-pool singleton. Its three shared fields, TokenAmountDelegated,
// TokenAmountEffective and AccumulatedStakeRewardsPerToken, are only ever changed
// through the checked methods below.
type Config struct {
	Authority      *ledger.Pubkey `rlp:"nil"` // administrative authority, nil disables admin operations
	SlashAuthority *ledger.Pubkey `rlp:"nil"` // nil disables slashing
	Vault          ledger.Pubkey  // token account holding all staked tokens
	Mint           ledger.Pubkey  // mint of the staked token
	Decimals       uint8

	CooldownTimeSeconds        uint64
	MaxDeactivationBasisPoints uint16
	SyncRewardsLamports        uint64 // fee paid to whoever triggers a collateral resync

	TokenAmountDelegated uint64 // sum of every active amount
	TokenAmountEffective uint64 // sum of every effective amount

	AccumulatedStakeRewardsPerToken  *uint256.Int // scaled by ledger.RewardScale, never decreases
	AccumulatedHolderRewardsPerToken *uint256.Int // scaled by ledger.RewardScale, never decreases
	TotalStakeRewards                uint64       // stake rewards distributed to date

	Version uint64 // bumped on every committed mutation
}

// Params are the creation parameters of a pool.
type Params struct {
	Authority                  *ledger.Pubkey
	SlashAuthority             *ledger.Pubkey
	Vault                      ledger.Pubkey
	Mint                       ledger.Pubkey
	Decimals                   uint8
	CooldownTimeSeconds        uint64
	MaxDeactivationBasisPoints uint16
	SyncRewardsLamports        uint64
}

// New returns a pool config with zeroed accumulators.
func New(p Params) (*Config, error) {
	if uint64(p.MaxDeactivationBasisPoints) > ledger.MaxBasisPoints {
		return nil, reverts.ErrInvalidBasisPoints
	}
	return &Config{
		Authority:                        clonePubkey(p.Authority),
		SlashAuthority:                   clonePubkey(p.SlashAuthority),
		Vault:                            p.Vault,
		Mint:                             p.Mint,
		Decimals:                         p.Decimals,
		CooldownTimeSeconds:              p.CooldownTimeSeconds,
		MaxDeactivationBasisPoints:       p.MaxDeactivationBasisPoints,
		SyncRewardsLamports:              p.SyncRewardsLamports,
		AccumulatedStakeRewardsPerToken:  new(uint256.Int),
		AccumulatedHolderRewardsPerToken: new(uint256.Int),
	}, nil
}

// Clone returns a deep copy, so a failed operation never leaks into the original.
func (c *Config) Clone() *Config {
	cpy := *c
	cpy.Authority = clonePubkey(c.Authority)
	cpy.SlashAuthority = clonePubkey(c.SlashAuthority)
	cpy.AccumulatedStakeRewardsPerToken = safemath.U128(c.AccumulatedStakeRewardsPerToken)
	cpy.AccumulatedHolderRewardsPerToken = safemath.U128(c.AccumulatedHolderRewardsPerToken)
	return &cpy
}

// CheckAuthority verifies signer is the configured administrative authority.
func (c *Config) CheckAuthority(signer ledger.Pubkey) error {
	return checkAuthority(c.Authority, signer)
}

// CheckSlashAuthority verifies signer is the configured slash authority.
func (c *Config) CheckSlashAuthority(signer ledger.Pubkey) error {
	return checkAuthority(c.SlashAuthority, signer)
}

func checkAuthority(authority *ledger.Pubkey, signer ledger.Pubkey) error {
	if authority == nil {
		return reverts.ErrAuthorityNotSet
	}
	if signer.IsZero() {
		return reverts.ErrMissingRequiredSignature
	}
	if *authority != signer {
		return reverts.ErrInvalidAuthority
	}
	return nil
}

// AddDelegated increases the pool's delegated total.
func (c *Config) AddDelegated(amount uint64) error {
	total, err := safemath.CheckedAddU64(c.TokenAmountDelegated, amount)
	if err != nil {
		return err
	}
	c.TokenAmountDelegated = total
	return nil
}

// SubDelegated decreases the pool's delegated total; it never goes negative.
func (c *Config) SubDelegated(amount uint64) error {
	total, err := safemath.CheckedSubU64(c.TokenAmountDelegated, amount)
	if err != nil {
		return err
	}
	c.TokenAmountDelegated = total
	return nil
}

// ApplyEffective moves the pool's effective total by a signed delta.
func (c *Config) ApplyEffective(delta Delta) error {
	var (
		total uint64
		err   error
	)
	if delta.Negative {
		total, err = safemath.CheckedSubU64(c.TokenAmountEffective, delta.Amount)
	} else {
		total, err = safemath.CheckedAddU64(c.TokenAmountEffective, delta.Amount)
	}
	if err != nil {
		return err
	}
	c.TokenAmountEffective = total
	return nil
}

func clonePubkey(k *ledger.Pubkey) *ledger.Pubkey {
	if k == nil {
		return nil
	}
	cpy := *k
	return &cpy
}
