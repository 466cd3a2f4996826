// Copyright (c) 2025 The VeChainThor developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package main

import (
	"os"

	"github.com/pkg/errors"
	"gopkg.in/yaml.v3"

	"github.com/vechain/stakeledger/ledger"
	"github.com/vechain/stakeledger/staker"
	"github.com/vechain/stakeledger/staker/config"
)

// poolParams is the yaml form of a pool to create. Keys are base58.
type poolParams struct {
	Pool                       ledger.Pubkey  `yaml:"pool"`
	Authority                  *ledger.Pubkey `yaml:"authority"`
	SlashAuthority             *ledger.Pubkey `yaml:"slash_authority"`
	Vault                      ledger.Pubkey  `yaml:"vault"`
	Mint                       ledger.Pubkey  `yaml:"mint"`
	Decimals                   uint8          `yaml:"decimals"`
	CooldownTimeSeconds        uint64         `yaml:"cooldown_time_seconds"`
	MaxDeactivationBasisPoints uint16         `yaml:"max_deactivation_basis_points"`
	SyncRewardsLamports        uint64         `yaml:"sync_rewards_lamports"`
}

func loadPoolParams(path string) (*poolParams, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, errors.Wrap(err, "read params")
	}
	var p poolParams
	if err := yaml.Unmarshal(data, &p); err != nil {
		return nil, errors.Wrap(err, "decode params")
	}
	if p.Pool.IsZero() {
		return nil, errors.New("params: pool is required")
	}
	return &p, nil
}

func (p *poolParams) configParams() config.Params {
	return config.Params{
		Authority:                  p.Authority,
		SlashAuthority:             p.SlashAuthority,
		Vault:                      p.Vault,
		Mint:                       p.Mint,
		Decimals:                   p.Decimals,
		CooldownTimeSeconds:        p.CooldownTimeSeconds,
		MaxDeactivationBasisPoints: p.MaxDeactivationBasisPoints,
		SyncRewardsLamports:        p.SyncRewardsLamports,
	}
}

type poolView struct {
	Pool                  ledger.Pubkey  `yaml:"pool"`
	Authority             *ledger.Pubkey `yaml:"authority"`
	SlashAuthority        *ledger.Pubkey `yaml:"slash_authority"`
	Vault                 ledger.Pubkey  `yaml:"vault"`
	Mint                  ledger.Pubkey  `yaml:"mint"`
	Cooldown              uint64         `yaml:"cooldown_time_seconds"`
	MaxDeactivation       uint16         `yaml:"max_deactivation_basis_points"`
	SyncRewards           uint64         `yaml:"sync_rewards_lamports"`
	Delegated             uint64         `yaml:"token_amount_delegated"`
	Effective             uint64         `yaml:"token_amount_effective"`
	StakeRewardsPerToken  string         `yaml:"accumulated_stake_rewards_per_token"`
	HolderRewardsPerToken string         `yaml:"accumulated_holder_rewards_per_token"`
	TotalStakeRewards     uint64         `yaml:"total_stake_rewards"`
	Version               uint64         `yaml:"version"`
	Stakes                []stakeView    `yaml:"stakes"`
}

type stakeView struct {
	Key          ledger.Pubkey `yaml:"key"`
	Kind         string        `yaml:"kind"`
	Authority    ledger.Pubkey `yaml:"authority"`
	Validator    ledger.Pubkey `yaml:"validator"`
	Active       uint64        `yaml:"active_amount"`
	Effective    uint64        `yaml:"effective_amount"`
	Deactivating uint64        `yaml:"deactivating_amount,omitempty"`
	Inactive     uint64        `yaml:"inactive_amount,omitempty"`
	Cooldown     uint64        `yaml:"unstake_cooldown,omitempty"`
	Collateral   uint64        `yaml:"collateral"`
	StakeLimit   uint64        `yaml:"stake_limit"`
}

func newPoolView(st *staker.Staker, pool ledger.Pubkey) (*poolView, error) {
	cfg, err := st.Config(pool)
	if err != nil {
		return nil, errors.Wrap(err, "load config")
	}
	keys, stakes, err := st.Stakes(pool)
	if err != nil {
		return nil, errors.Wrap(err, "load stakes")
	}

	view := &poolView{
		Pool:                  pool,
		Authority:             cfg.Authority,
		SlashAuthority:        cfg.SlashAuthority,
		Vault:                 cfg.Vault,
		Mint:                  cfg.Mint,
		Cooldown:              cfg.CooldownTimeSeconds,
		MaxDeactivation:       cfg.MaxDeactivationBasisPoints,
		SyncRewards:           cfg.SyncRewardsLamports,
		Delegated:             cfg.TokenAmountDelegated,
		Effective:             cfg.TokenAmountEffective,
		StakeRewardsPerToken:  cfg.AccumulatedStakeRewardsPerToken.Dec(),
		HolderRewardsPerToken: cfg.AccumulatedHolderRewardsPerToken.Dec(),
		TotalStakeRewards:     cfg.TotalStakeRewards,
		Version:               cfg.Version,
	}
	for _, key := range keys {
		stake := stakes[key]
		kind := "validator"
		if stake.IsSolStaker() {
			kind = "sol-staker"
		}
		d := stake.Delegation
		view.Stakes = append(view.Stakes, stakeView{
			Key:          key,
			Kind:         kind,
			Authority:    d.Authority,
			Validator:    d.Validator,
			Active:       d.ActiveAmount,
			Effective:    d.EffectiveAmount,
			Deactivating: d.DeactivatingAmount,
			Inactive:     d.InactiveAmount,
			Cooldown:     d.UnstakeCooldown,
			Collateral:   stake.Collateral().Effective(),
			StakeLimit:   st.StakeLimit(stake),
		})
	}
	return view, nil
}
