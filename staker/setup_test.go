// Copyright (c) 2025 The VeChainThor developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package staker_test

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/vechain/stakeledger/kv"
	"github.com/vechain/stakeledger/ledger"
	"github.com/vechain/stakeledger/lvldb"
	"github.com/vechain/stakeledger/staker"
	"github.com/vechain/stakeledger/staker/config"
	"github.com/vechain/stakeledger/staker/delegation"
	"github.com/vechain/stakeledger/staker/memhost"
	"github.com/vechain/stakeledger/staker/rewards"
	"github.com/vechain/stakeledger/test/datagen"
)

const (
	cooldownSeconds = 100
	startTime       = 1_700_000_000
)

type fixture struct {
	t       *testing.T
	db      kv.Store
	host    *memhost.Host
	st      *staker.Staker
	pool    ledger.Pubkey
	admin   ledger.Pubkey
	slasher ledger.Pubkey
	vault   ledger.Pubkey
	mint    ledger.Pubkey
	payer   ledger.Pubkey
}

type position struct {
	key       ledger.Pubkey
	vote      ledger.Pubkey
	authority ledger.Pubkey
}

func newFixture(t *testing.T, maxDeactivationBps uint16, syncReward uint64) *fixture {
	db, err := lvldb.NewMem()
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })

	host := memhost.New()
	host.SetNow(startTime)

	st, err := staker.New(db, host.Host(), staker.Options{})
	require.NoError(t, err)

	f := &fixture{
		t:       t,
		db:      db,
		host:    host,
		st:      st,
		pool:    datagen.RandPubkey(),
		admin:   datagen.RandPubkey(),
		slasher: datagen.RandPubkey(),
		vault:   datagen.RandPubkey(),
		mint:    datagen.RandPubkey(),
		payer:   datagen.RandPubkey(),
	}
	require.NoError(t, st.InitializeConfig(f.pool, config.Params{
		Authority:                  &f.admin,
		SlashAuthority:             &f.slasher,
		Vault:                      f.vault,
		Mint:                       f.mint,
		Decimals:                   9,
		CooldownTimeSeconds:        cooldownSeconds,
		MaxDeactivationBasisPoints: maxDeactivationBps,
		SyncRewardsLamports:        syncReward,
	}))
	return f
}

// addValidator creates a validator stake with the given collateral floor and stakes active tokens into it.
func (f *fixture) addValidator(floor, active uint64) position {
	vote, authority := datagen.RandPubkey(), datagen.RandPubkey()
	f.host.SetVoteAccount(vote, staker.VoteAccount{NodePubkey: datagen.RandPubkey(), AuthorizedWithdrawer: authority})

	key, err := f.st.InitializeValidatorStake(f.pool, vote)
	require.NoError(f.t, err)
	if floor > 0 {
		require.NoError(f.t, f.st.SetTotalStakedLamportsMin(key, f.admin, floor))
	}
	p := position{key: key, vote: vote, authority: authority}
	f.stake(p, active)
	return p
}

// addStaker creates a collateral staker stake delegated to validator.
func (f *fixture) addStaker(validator position, collateral, active uint64) (position, ledger.Pubkey) {
	account, withdrawer := datagen.RandPubkey(), datagen.RandPubkey()
	vote := validator.vote
	f.host.SetStakeAccount(account, staker.CollateralAccount{Withdrawer: withdrawer, Voter: &vote, Effective: collateral})

	key, err := f.st.InitializeSolStakerStake(f.pool, account)
	require.NoError(f.t, err)
	p := position{key: key, vote: vote, authority: withdrawer}
	f.stake(p, active)
	return p, account
}

func (f *fixture) stake(p position, amount uint64) {
	if amount == 0 {
		return
	}
	f.host.Fund(p.authority, amount)
	require.NoError(f.t, f.st.StakeTokens(p.key, p.authority, p.authority, f.vault, f.mint, amount))
}

func (f *fixture) distribute(amount uint64) {
	f.host.Fund(f.payer, amount)
	require.NoError(f.t, f.st.DistributeRewards(f.pool, f.payer, amount))
}

func (f *fixture) config() *config.Config {
	cfg, err := f.st.Config(f.pool)
	require.NoError(f.t, err)
	return cfg
}

func (f *fixture) record(key ledger.Pubkey) *delegation.Stake {
	stake, err := f.st.Stake(key)
	require.NoError(f.t, err)
	return stake
}

// checkAggregates asserts the pool totals equal the sums over every stake record.
func (f *fixture) checkAggregates() {
	keys, stakes, err := f.st.Stakes(f.pool)
	require.NoError(f.t, err)

	var active, eff, inactive uint64
	for _, key := range keys {
		d := stakes[key].Delegation
		active += d.ActiveAmount
		eff += d.EffectiveAmount
		inactive += d.InactiveAmount
		require.LessOrEqual(f.t, d.EffectiveAmount, d.ActiveAmount)
		require.LessOrEqual(f.t, d.EffectiveAmount, f.st.StakeLimit(stakes[key]))
	}
	cfg := f.config()
	require.Equal(f.t, cfg.TokenAmountDelegated, active, "delegated total")
	require.Equal(f.t, cfg.TokenAmountEffective, eff, "effective total")
	require.Equal(f.t, cfg.TokenAmountDelegated+inactive, f.host.Balance(f.vault), "vault balance")
}

// checkSolvency asserts every reward still owed, on both streams, is covered by the rewards holder.
func (f *fixture) checkSolvency() {
	keys, stakes, err := f.st.Stakes(f.pool)
	require.NoError(f.t, err)
	cfg := f.config()

	var owed uint64
	for _, key := range keys {
		stake := stakes[key]
		pending, err := rewards.Pending(cfg, stake.Delegation, f.st.StakeLimit(stake))
		require.NoError(f.t, err)
		holder, err := rewards.PendingHolder(cfg, stake.Delegation)
		require.NoError(f.t, err)
		owed += pending + holder
	}
	require.LessOrEqual(f.t, owed, f.host.Balance(ledger.RewardsHolder(f.pool)), "rewards owed exceed the holder balance")
}
