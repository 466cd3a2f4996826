// Copyright (c) 2025 The VeChainThor developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package staker_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vechain/stakeledger/ledger"
	"github.com/vechain/stakeledger/staker"
	"github.com/vechain/stakeledger/staker/config"
	"github.com/vechain/stakeledger/staker/reverts"
	"github.com/vechain/stakeledger/test/datagen"
)

func TestInitializeConfig(t *testing.T) {
	f := newFixture(t, 500, 0)

	cfg := f.config()
	assert.Equal(t, f.vault, cfg.Vault)
	assert.Equal(t, f.mint, cfg.Mint)
	assert.Equal(t, uint64(1), cfg.Version)
	assert.True(t, cfg.AccumulatedStakeRewardsPerToken.IsZero())

	err := f.st.InitializeConfig(f.pool, config.Params{Vault: f.vault, Mint: f.mint})
	assert.ErrorIs(t, err, reverts.ErrAlreadyInitialized)

	other := datagen.RandPubkey()
	assert.ErrorIs(t, f.st.InitializeConfig(other, config.Params{Mint: f.mint}), reverts.ErrIncorrectVault)
	assert.ErrorIs(t, f.st.InitializeConfig(other, config.Params{Vault: f.vault}), reverts.ErrInvalidMint)
	assert.ErrorIs(t, f.st.InitializeConfig(other, config.Params{
		Vault:                      f.vault,
		Mint:                       f.mint,
		MaxDeactivationBasisPoints: 10001,
	}), reverts.ErrInvalidBasisPoints)

	_, err = f.st.Config(other)
	assert.ErrorIs(t, err, reverts.ErrUninitializedAccount)
}

func TestUpdateConfig(t *testing.T) {
	f := newFixture(t, 500, 0)

	assert.ErrorIs(t, f.st.UpdateConfig(f.pool, datagen.RandPubkey(), config.FieldCooldownTimeSeconds, 1), reverts.ErrInvalidAuthority)
	assert.ErrorIs(t, f.st.UpdateConfig(f.pool, ledger.Pubkey{}, config.FieldCooldownTimeSeconds, 1), reverts.ErrMissingRequiredSignature)
	assert.ErrorIs(t, f.st.UpdateConfig(f.pool, f.admin, config.FieldMaxDeactivationBasisPoints, 10001), reverts.ErrInvalidBasisPoints)

	require.NoError(t, f.st.UpdateConfig(f.pool, f.admin, config.FieldSyncRewardsLamports, 42))
	cfg := f.config()
	assert.Equal(t, uint64(42), cfg.SyncRewardsLamports)
	assert.Equal(t, uint64(2), cfg.Version)

	// a no-op update commits nothing
	require.NoError(t, f.st.UpdateConfig(f.pool, f.admin, config.FieldSyncRewardsLamports, 42))
	assert.Equal(t, uint64(2), f.config().Version)

	newAdmin := datagen.RandPubkey()
	require.NoError(t, f.st.SetAuthority(f.pool, f.admin, config.AuthorityConfig, &newAdmin))
	assert.ErrorIs(t, f.st.UpdateConfig(f.pool, f.admin, config.FieldCooldownTimeSeconds, 1), reverts.ErrInvalidAuthority)
	require.NoError(t, f.st.SetAuthority(f.pool, newAdmin, config.AuthorityConfig, nil))
	assert.ErrorIs(t, f.st.UpdateConfig(f.pool, newAdmin, config.FieldCooldownTimeSeconds, 1), reverts.ErrAuthorityNotSet)
}

func TestHarvestRewards(t *testing.T) {
	f := newFixture(t, 500, 0)
	a := f.addValidator(50, 65)
	f.addValidator(50, 65)

	cfg := f.config()
	assert.Equal(t, uint64(130), cfg.TokenAmountDelegated)
	assert.Equal(t, uint64(130), cfg.TokenAmountEffective)

	f.distribute(26)
	cfg = f.config()
	assert.Equal(t, uint64(200_000_000), cfg.AccumulatedStakeRewardsPerToken.Uint64())
	assert.Equal(t, uint64(26), cfg.TotalStakeRewards)

	dest := datagen.RandPubkey()
	paid, err := f.st.HarvestRewards(a.key, a.authority, dest)
	require.NoError(t, err)
	assert.Equal(t, uint64(13), paid)
	assert.Equal(t, uint64(13), f.host.Balance(dest))
	assert.Equal(t, uint64(13), f.host.Balance(ledger.RewardsHolder(f.pool)))
	assert.Equal(t, uint64(200_000_000), f.record(a.key).Delegation.LastSeenStakeRewardsPerToken.Uint64())

	// nothing accrued since, the checkpoint still moves
	paid, err = f.st.HarvestRewards(a.key, a.authority, dest)
	require.NoError(t, err)
	assert.Zero(t, paid)

	_, err = f.st.HarvestRewards(a.key, datagen.RandPubkey(), dest)
	assert.ErrorIs(t, err, reverts.ErrInvalidAuthority)
	f.checkAggregates()
}

func TestHarvestForfeitsExcess(t *testing.T) {
	f := newFixture(t, 500, 0)
	over := f.addValidator(50, 130) // limit 65
	under := f.addValidator(50, 65)

	cfg := f.config()
	assert.Equal(t, uint64(195), cfg.TokenAmountDelegated)
	assert.Equal(t, uint64(130), cfg.TokenAmountEffective)

	// 39 units over 195 delegated tokens
	f.distribute(39)
	assert.Equal(t, uint64(200_000_000), f.config().AccumulatedStakeRewardsPerToken.Uint64())
	f.checkSolvency()

	paid, err := f.st.HarvestRewards(over.key, over.authority, over.authority)
	require.NoError(t, err)
	assert.Equal(t, uint64(13), paid)
	// 13 forfeited over the 65 tokens held by others
	assert.Equal(t, uint64(400_000_000), f.config().AccumulatedStakeRewardsPerToken.Uint64())
	f.checkSolvency()

	paid, err = f.st.HarvestRewards(under.key, under.authority, under.authority)
	require.NoError(t, err)
	assert.Equal(t, uint64(26), paid)
	assert.Zero(t, f.host.Balance(ledger.RewardsHolder(f.pool)))
	f.checkAggregates()
}

func TestForfeitedRewardsAreFunded(t *testing.T) {
	f := newFixture(t, 500, 0)
	bare := f.addValidator(0, 100) // limit 0
	backed := f.addValidator(100, 100)

	f.distribute(100)
	assert.Equal(t, uint64(500_000_000), f.config().AccumulatedStakeRewardsPerToken.Uint64())

	paid, err := f.st.HarvestRewards(bare.key, bare.authority, bare.authority)
	require.NoError(t, err)
	assert.Zero(t, paid)
	assert.Equal(t, uint64(1_000_000_000), f.config().AccumulatedStakeRewardsPerToken.Uint64())
	f.checkSolvency()

	// the fold only hands out what was deposited, so nothing is clamped
	paid, err = f.st.HarvestRewards(backed.key, backed.authority, backed.authority)
	require.NoError(t, err)
	assert.Equal(t, uint64(100), paid)
	assert.Zero(t, f.host.Balance(ledger.RewardsHolder(f.pool)))
	f.checkSolvency()
}

func TestHarvestHolderRewards(t *testing.T) {
	f := newFixture(t, 500, 0)
	a := f.addValidator(0, 30)
	b := f.addValidator(0, 70)

	// holder rewards accrue on every delegated token, effective or not
	f.host.Fund(f.payer, 50)
	require.NoError(t, f.st.DistributeHolderRewards(f.pool, f.payer, 50))
	assert.Equal(t, uint64(500_000_000), f.config().AccumulatedHolderRewardsPerToken.Uint64())

	paid, err := f.st.HarvestHolderRewards(a.key, a.authority, a.authority)
	require.NoError(t, err)
	assert.Equal(t, uint64(15), paid)
	paid, err = f.st.HarvestHolderRewards(b.key, b.authority, b.authority)
	require.NoError(t, err)
	assert.Equal(t, uint64(35), paid)

	assert.ErrorIs(t, f.st.DistributeRewards(f.pool, f.payer, 1), reverts.ErrNoEffectiveStake)
	assert.ErrorIs(t, f.st.DistributeHolderRewards(f.pool, f.payer, 0), reverts.ErrInvalidAmount)
}

func TestStakeTokensChecks(t *testing.T) {
	f := newFixture(t, 500, 0)
	a := f.addValidator(100, 0)
	f.host.Fund(a.authority, 10)

	assert.ErrorIs(t, f.st.StakeTokens(a.key, ledger.Pubkey{}, a.authority, f.vault, f.mint, 10), reverts.ErrMissingRequiredSignature)
	assert.ErrorIs(t, f.st.StakeTokens(a.key, datagen.RandPubkey(), a.authority, f.vault, f.mint, 10), reverts.ErrInvalidAuthority)
	assert.ErrorIs(t, f.st.StakeTokens(a.key, a.authority, a.authority, f.vault, f.mint, 0), reverts.ErrInvalidAmount)
	assert.ErrorIs(t, f.st.StakeTokens(a.key, a.authority, a.authority, datagen.RandPubkey(), f.mint, 10), reverts.ErrIncorrectVault)
	assert.ErrorIs(t, f.st.StakeTokens(a.key, a.authority, a.authority, f.vault, datagen.RandPubkey(), 10), reverts.ErrInvalidMint)
	assert.ErrorIs(t, f.st.StakeTokens(datagen.RandPubkey(), a.authority, a.authority, f.vault, f.mint, 10), reverts.ErrUninitializedAccount)

	require.NoError(t, f.st.StakeTokens(a.key, a.authority, a.authority, f.vault, f.mint, 10))
	d := f.record(a.key).Delegation
	assert.Equal(t, uint64(10), d.ActiveAmount)
	assert.Equal(t, uint64(10), d.EffectiveAmount)
	f.checkAggregates()
}

func TestUnstake(t *testing.T) {
	f := newFixture(t, 500, 0)
	a := f.addValidator(100, 100)
	dest := datagen.RandPubkey()

	assert.ErrorIs(t, f.st.Unstake(a.key, a.authority, dest, 6), reverts.ErrMaximumDeactivationAmountExceeded)
	assert.ErrorIs(t, f.st.Unstake(a.key, a.authority, dest, 0), reverts.ErrInvalidAmount)
	require.NoError(t, f.st.Unstake(a.key, a.authority, dest, 5))

	d := f.record(a.key).Delegation
	assert.Equal(t, uint64(95), d.ActiveAmount)
	assert.Equal(t, uint64(95), d.EffectiveAmount)
	assert.Equal(t, uint64(startTime+cooldownSeconds), d.UnstakeCooldown)
	assert.Equal(t, uint64(5), f.host.Balance(dest))

	// any amount fails until the cooldown elapses
	assert.ErrorIs(t, f.st.Unstake(a.key, a.authority, dest, 1), reverts.ErrActiveUnstakeCooldown)
	assert.ErrorIs(t, f.st.Unstake(a.key, a.authority, dest, 0), reverts.ErrActiveUnstakeCooldown)
	assert.Equal(t, uint64(95), f.record(a.key).Delegation.ActiveAmount)

	f.host.Advance(cooldownSeconds)
	require.NoError(t, f.st.Unstake(a.key, a.authority, dest, 4))
	assert.Equal(t, uint64(91), f.record(a.key).Delegation.ActiveAmount)
	f.checkAggregates()
}

func TestSlash(t *testing.T) {
	f := newFixture(t, 500, 0)
	a := f.addValidator(100, 100)

	_, err := f.st.Slash(a.key, a.authority, 50)
	assert.ErrorIs(t, err, reverts.ErrInvalidAuthority)
	_, err = f.st.Slash(a.key, f.slasher, 0)
	assert.ErrorIs(t, err, reverts.ErrInvalidAmount)

	slashed, err := f.st.Slash(a.key, f.slasher, 50)
	require.NoError(t, err)
	assert.Equal(t, uint64(50), slashed)
	assert.Equal(t, uint64(50), f.config().TokenAmountDelegated)
	assert.Equal(t, uint64(50), f.host.Balance(f.vault))
	f.checkAggregates()

	// clamped to what is left
	slashed, err = f.st.Slash(a.key, f.slasher, 200)
	require.NoError(t, err)
	assert.Equal(t, uint64(50), slashed)
	assert.Zero(t, f.config().TokenAmountDelegated)

	_, err = f.st.Slash(a.key, f.slasher, 1)
	assert.ErrorIs(t, err, reverts.ErrInsufficientStakeAmount)
	f.checkAggregates()

	require.NoError(t, f.st.SetAuthority(f.pool, f.admin, config.AuthoritySlash, nil))
	_, err = f.st.Slash(a.key, f.slasher, 1)
	assert.ErrorIs(t, err, reverts.ErrAuthorityNotSet)
}

func TestSolStaker(t *testing.T) {
	f := newFixture(t, 500, 5)
	v := f.addValidator(0, 65)
	assert.Zero(t, f.record(v.key).Delegation.EffectiveAmount)

	s, account := f.addStaker(v, 50, 65)
	validator := f.record(v.key)
	assert.Equal(t, uint64(50), validator.Validator.TotalStakedLamportsAmount)
	assert.Equal(t, uint64(65), validator.Delegation.EffectiveAmount)
	staker1 := f.record(s.key)
	assert.True(t, staker1.IsSolStaker())
	assert.Equal(t, uint64(50), staker1.Staker.LamportsAmount)
	assert.Equal(t, uint64(65), staker1.Delegation.EffectiveAmount)
	f.checkAggregates()

	f.distribute(26)

	vote := v.vote
	f.host.SetStakeAccount(account, staker.CollateralAccount{Withdrawer: s.authority, Voter: &vote, Effective: 100})
	keeper := datagen.RandPubkey()
	fee, err := f.st.SyncSolStake(s.key, keeper)
	require.NoError(t, err)
	assert.Equal(t, uint64(5), fee)
	assert.Equal(t, uint64(5), f.host.Balance(keeper))
	assert.Equal(t, uint64(8), f.host.Balance(s.authority))
	assert.Equal(t, uint64(13), f.host.Balance(v.authority))
	assert.Equal(t, uint64(100), f.record(v.key).Validator.TotalStakedLamportsAmount)
	assert.Equal(t, uint64(100), f.record(s.key).Staker.LamportsAmount)
	f.checkAggregates()

	_, err = f.st.SyncSolStake(s.key, keeper)
	assert.ErrorIs(t, err, reverts.ErrCollateralInSync)
	_, err = f.st.SyncSolStake(v.key, keeper)
	assert.ErrorIs(t, err, reverts.ErrInvalidAccountData)

	// slashing a staker unbonds its collateral from the validator
	slashed, err := f.st.Slash(s.key, f.slasher, 10)
	require.NoError(t, err)
	assert.Equal(t, uint64(10), slashed)
	validator = f.record(v.key)
	assert.Zero(t, validator.Validator.TotalStakedLamportsAmount)
	assert.Zero(t, validator.Delegation.EffectiveAmount)
	staker1 = f.record(s.key)
	assert.Zero(t, staker1.Staker.LamportsAmount)
	assert.Equal(t, uint64(55), staker1.Delegation.ActiveAmount)
	assert.Zero(t, staker1.Delegation.EffectiveAmount)
	assert.Zero(t, f.config().TokenAmountEffective)
	f.checkAggregates()
}

func TestSyncRedelegatedSolStaker(t *testing.T) {
	f := newFixture(t, 500, 0)
	v := f.addValidator(0, 65)
	s, account := f.addStaker(v, 50, 65)

	// delegated elsewhere, the account no longer backs this validator
	elsewhere := datagen.RandPubkey()
	f.host.SetStakeAccount(account, staker.CollateralAccount{Withdrawer: s.authority, Voter: &elsewhere, Effective: 50})
	_, err := f.st.SyncSolStake(s.key, datagen.RandPubkey())
	require.NoError(t, err)

	assert.Zero(t, f.record(s.key).Staker.LamportsAmount)
	assert.Zero(t, f.record(s.key).Delegation.EffectiveAmount)
	assert.Zero(t, f.record(v.key).Validator.TotalStakedLamportsAmount)
	assert.Zero(t, f.config().TokenAmountEffective)
	f.checkAggregates()
}

func TestInitializeSolStakerStakeErrors(t *testing.T) {
	f := newFixture(t, 500, 0)

	undelegated := datagen.RandPubkey()
	f.host.SetStakeAccount(undelegated, staker.CollateralAccount{Withdrawer: datagen.RandPubkey(), Effective: 10})
	_, err := f.st.InitializeSolStakerStake(f.pool, undelegated)
	assert.ErrorIs(t, err, reverts.ErrInvalidAccountData)

	vote := datagen.RandPubkey()
	orphan := datagen.RandPubkey()
	f.host.SetStakeAccount(orphan, staker.CollateralAccount{Withdrawer: datagen.RandPubkey(), Voter: &vote, Effective: 10})
	_, err = f.st.InitializeSolStakerStake(f.pool, orphan)
	assert.ErrorIs(t, err, reverts.ErrUninitializedAccount)

	v := f.addValidator(0, 0)
	_, err = f.st.InitializeValidatorStake(f.pool, v.vote)
	assert.ErrorIs(t, err, reverts.ErrAlreadyInitialized)
	_, err = f.st.InitializeValidatorStake(datagen.RandPubkey(), v.vote)
	assert.ErrorIs(t, err, reverts.ErrUninitializedAccount)
}

func TestSetStakeAuthority(t *testing.T) {
	f := newFixture(t, 500, 0)
	a := f.addValidator(0, 0)
	next := datagen.RandPubkey()

	assert.ErrorIs(t, f.st.SetStakeAuthority(a.key, a.authority, ledger.Pubkey{}), reverts.ErrInvalidAuthority)
	require.NoError(t, f.st.SetStakeAuthority(a.key, a.authority, next))
	assert.Equal(t, next, f.record(a.key).Delegation.Authority)
	assert.ErrorIs(t, f.st.SetStakeAuthority(a.key, a.authority, a.authority), reverts.ErrInvalidAuthority)
}

func TestSetTotalStakedLamportsMin(t *testing.T) {
	f := newFixture(t, 500, 0)
	a := f.addValidator(0, 100)
	assert.Zero(t, f.record(a.key).Delegation.EffectiveAmount)

	assert.ErrorIs(t, f.st.SetTotalStakedLamportsMin(a.key, a.authority, 10), reverts.ErrInvalidAuthority)
	require.NoError(t, f.st.SetTotalStakedLamportsMin(a.key, f.admin, 40))
	assert.Equal(t, uint64(52), f.record(a.key).Delegation.EffectiveAmount)
	f.checkAggregates()
}

func TestLegacyDeactivation(t *testing.T) {
	f := newFixture(t, 500, 0)
	a := f.addValidator(100, 100)
	dest := datagen.RandPubkey()

	assert.ErrorIs(t, f.st.Deactivate(a.key, a.authority, 6), reverts.ErrMaximumDeactivationAmountExceeded)
	require.NoError(t, f.st.Deactivate(a.key, a.authority, 5))
	assert.Equal(t, uint64(5), f.record(a.key).Delegation.DeactivatingAmount)

	_, err := f.st.Inactivate(a.key)
	assert.ErrorIs(t, err, reverts.ErrActiveDeactivationCooldown)

	f.host.Advance(cooldownSeconds)
	moved, err := f.st.Inactivate(a.key)
	require.NoError(t, err)
	assert.Equal(t, uint64(5), moved)
	d := f.record(a.key).Delegation
	assert.Equal(t, uint64(95), d.ActiveAmount)
	assert.Equal(t, uint64(5), d.InactiveAmount)
	assert.Nil(t, d.DeactivationTimestamp)
	f.checkAggregates()

	_, err = f.st.Inactivate(a.key)
	assert.ErrorIs(t, err, reverts.ErrNoDeactivatingAmount)

	assert.ErrorIs(t, f.st.Withdraw(a.key, a.authority, dest, 6), reverts.ErrInsufficientInactiveAmount)
	require.NoError(t, f.st.Withdraw(a.key, a.authority, dest, 5))
	assert.Equal(t, uint64(5), f.host.Balance(dest))
	f.checkAggregates()

	// a zero request cancels a pending deactivation
	require.NoError(t, f.st.Deactivate(a.key, a.authority, 4))
	require.NoError(t, f.st.Deactivate(a.key, a.authority, 0))
	assert.Zero(t, f.record(a.key).Delegation.DeactivatingAmount)
}

func TestFailedOperationLeavesRecords(t *testing.T) {
	f := newFixture(t, 500, 0)
	a := f.addValidator(100, 100)
	cfg, stake := f.config(), f.record(a.key)

	f.host.FailOn(staker.TransferStakeIn, assert.AnError)
	f.host.Fund(a.authority, 10)
	assert.ErrorIs(t, f.st.StakeTokens(a.key, a.authority, a.authority, f.vault, f.mint, 10), assert.AnError)
	f.host.FailOn(staker.TransferStakeIn, nil)

	assert.ErrorIs(t, f.st.Unstake(a.key, a.authority, a.authority, 50), reverts.ErrMaximumDeactivationAmountExceeded)

	assert.Equal(t, cfg, f.config())
	assert.Equal(t, stake, f.record(a.key))

	// and nothing reached the store either
	fresh, err := staker.New(f.db, f.host.Host(), staker.Options{})
	require.NoError(t, err)
	persisted, err := fresh.Config(f.pool)
	require.NoError(t, err)
	assert.Equal(t, cfg, persisted)
	persistedStake, err := fresh.Stake(a.key)
	require.NoError(t, err)
	assert.Equal(t, stake, persistedStake)
}

func TestStaleConfig(t *testing.T) {
	f := newFixture(t, 500, 0)
	other, err := staker.New(f.db, f.host.Host(), staker.Options{})
	require.NoError(t, err)

	// warm the second instance's cache
	_, err = other.Config(f.pool)
	require.NoError(t, err)

	require.NoError(t, f.st.UpdateConfig(f.pool, f.admin, config.FieldCooldownTimeSeconds, 200))
	assert.ErrorIs(t, other.UpdateConfig(f.pool, f.admin, config.FieldCooldownTimeSeconds, 300), reverts.ErrStaleConfig)

	// the stale entry was dropped, so a retry works
	require.NoError(t, other.UpdateConfig(f.pool, f.admin, config.FieldCooldownTimeSeconds, 300))
	cfg, err := other.Config(f.pool)
	require.NoError(t, err)
	assert.Equal(t, uint64(300), cfg.CooldownTimeSeconds)
	assert.Equal(t, uint64(3), cfg.Version)
}
