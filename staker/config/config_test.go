// Copyright (c) 2025 The VeChainThor developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package config

import (
	"math"
	"testing"

	"github.com/holiman/uint256"
	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vechain/stakeledger/ledger"
	"github.com/vechain/stakeledger/staker/reverts"
	"github.com/vechain/stakeledger/staker/safemath"
)

func newConfig(t *testing.T) *Config {
	authority := ledger.BytesToPubkey([]byte("authority"))
	cfg, err := New(Params{
		Authority:                  &authority,
		Vault:                      ledger.BytesToPubkey([]byte("vault")),
		CooldownTimeSeconds:        100,
		MaxDeactivationBasisPoints: 500,
	})
	require.NoError(t, err)
	return cfg
}

func TestNew(t *testing.T) {
	cfg := newConfig(t)
	assert.True(t, cfg.AccumulatedStakeRewardsPerToken.IsZero())
	assert.True(t, cfg.AccumulatedHolderRewardsPerToken.IsZero())
	assert.Nil(t, cfg.SlashAuthority)

	_, err := New(Params{MaxDeactivationBasisPoints: 10_001})
	assert.ErrorIs(t, err, reverts.ErrInvalidBasisPoints)
}

func TestClone(t *testing.T) {
	cfg := newConfig(t)
	cpy := cfg.Clone()

	cpy.Authority[0] = 0xff
	cpy.AccumulatedStakeRewardsPerToken.SetUint64(7)
	cpy.TokenAmountDelegated = 10

	assert.NotEqual(t, byte(0xff), cfg.Authority[0])
	assert.True(t, cfg.AccumulatedStakeRewardsPerToken.IsZero())
	assert.Equal(t, uint64(0), cfg.TokenAmountDelegated)
}

func TestCheckAuthority(t *testing.T) {
	cfg := newConfig(t)

	assert.NoError(t, cfg.CheckAuthority(*cfg.Authority))
	assert.ErrorIs(t, cfg.CheckAuthority(ledger.BytesToPubkey([]byte("other"))), reverts.ErrInvalidAuthority)
	assert.ErrorIs(t, cfg.CheckAuthority(ledger.Pubkey{}), reverts.ErrMissingRequiredSignature)
	assert.ErrorIs(t, cfg.CheckSlashAuthority(*cfg.Authority), reverts.ErrAuthorityNotSet)
}

func TestDelegatedTotal(t *testing.T) {
	cfg := newConfig(t)

	require.NoError(t, cfg.AddDelegated(100))
	require.NoError(t, cfg.SubDelegated(50))
	assert.Equal(t, uint64(50), cfg.TokenAmountDelegated)

	err := cfg.SubDelegated(51)
	assert.True(t, errors.Is(err, reverts.ErrArithmeticOverflow))
	assert.Equal(t, uint64(50), cfg.TokenAmountDelegated, "failed update must not change the total")

	cfg.TokenAmountDelegated = math.MaxUint64
	assert.True(t, errors.Is(cfg.AddDelegated(1), reverts.ErrArithmeticOverflow))
}

func TestApplyEffective(t *testing.T) {
	cfg := newConfig(t)

	require.NoError(t, cfg.ApplyEffective(NewDelta(0, 65)))
	assert.Equal(t, uint64(65), cfg.TokenAmountEffective)

	require.NoError(t, cfg.ApplyEffective(NewDelta(65, 40)))
	assert.Equal(t, uint64(40), cfg.TokenAmountEffective)

	assert.True(t, NewDelta(3, 3).IsZero())
	err := cfg.ApplyEffective(Delta{Amount: 41, Negative: true})
	assert.True(t, errors.Is(err, reverts.ErrArithmeticOverflow))
	assert.Equal(t, uint64(40), cfg.TokenAmountEffective)
}

func TestDistributeStakeRewards(t *testing.T) {
	cfg := newConfig(t)

	_, err := cfg.DistributeStakeRewards(26)
	assert.ErrorIs(t, err, reverts.ErrNoEffectiveStake)
	_, err = cfg.DistributeStakeRewards(0)
	assert.ErrorIs(t, err, reverts.ErrInvalidAmount)

	cfg.TokenAmountEffective = 130
	cfg.TokenAmountDelegated = 130
	increment, err := cfg.DistributeStakeRewards(26)
	require.NoError(t, err)
	assert.Equal(t, uint64(200_000_000), increment.Uint64())
	assert.Equal(t, uint64(200_000_000), cfg.AccumulatedStakeRewardsPerToken.Uint64())
	assert.Equal(t, uint64(26), cfg.TotalStakeRewards)

	// the rate covers every delegated token, not only the effective ones
	cfg.TokenAmountDelegated = 260
	increment, err = cfg.DistributeStakeRewards(26)
	require.NoError(t, err)
	assert.Equal(t, uint64(100_000_000), increment.Uint64())
	assert.Equal(t, uint64(300_000_000), cfg.AccumulatedStakeRewardsPerToken.Uint64())
}

func TestDistributeHolderRewards(t *testing.T) {
	cfg := newConfig(t)
	_, err := cfg.DistributeHolderRewards(10)
	assert.ErrorIs(t, err, reverts.ErrNoEffectiveStake)

	cfg.TokenAmountDelegated = 1000
	_, err = cfg.DistributeHolderRewards(10)
	require.NoError(t, err)
	assert.Equal(t, uint64(10_000_000), cfg.AccumulatedHolderRewardsPerToken.Uint64())
}

func TestIncreaseStakeRewardsPerToken_Overflow(t *testing.T) {
	cfg := newConfig(t)
	cfg.AccumulatedStakeRewardsPerToken = new(uint256.Int).Set(safemath.MaxU128)

	err := cfg.IncreaseStakeRewardsPerToken(uint256.NewInt(1))
	assert.True(t, errors.Is(err, reverts.ErrArithmeticOverflow))
	assert.Equal(t, safemath.MaxU128, cfg.AccumulatedStakeRewardsPerToken)
}

func TestUpdate(t *testing.T) {
	cfg := newConfig(t)

	require.NoError(t, cfg.Update(FieldCooldownTimeSeconds, 3600))
	require.NoError(t, cfg.Update(FieldMaxDeactivationBasisPoints, 10_000))
	require.NoError(t, cfg.Update(FieldSyncRewardsLamports, 5))
	assert.Equal(t, uint64(3600), cfg.CooldownTimeSeconds)
	assert.Equal(t, uint16(10_000), cfg.MaxDeactivationBasisPoints)
	assert.Equal(t, uint64(5), cfg.SyncRewardsLamports)

	assert.ErrorIs(t, cfg.Update(FieldMaxDeactivationBasisPoints, 10_001), reverts.ErrInvalidBasisPoints)
	assert.ErrorIs(t, cfg.Update(Field(42), 1), reverts.ErrUnknownConfigField)

	f, err := ParseField("sync-rewards-lamports")
	require.NoError(t, err)
	assert.Equal(t, FieldSyncRewardsLamports, f)
	_, err = ParseField("nope")
	assert.ErrorIs(t, err, reverts.ErrUnknownConfigField)
}

func TestSetAuthority(t *testing.T) {
	cfg := newConfig(t)
	slasher := ledger.BytesToPubkey([]byte("slasher"))

	require.NoError(t, cfg.SetAuthority(AuthoritySlash, &slasher))
	assert.NoError(t, cfg.CheckSlashAuthority(slasher))

	require.NoError(t, cfg.SetAuthority(AuthorityConfig, nil))
	assert.ErrorIs(t, cfg.CheckAuthority(slasher), reverts.ErrAuthorityNotSet)
}
