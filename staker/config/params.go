// Copyright (c) 2025 The VeChainThor developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package config

import (
	"math"

	"github.com/vechain/stakeledger/ledger"
	"github.com/vechain/stakeledger/staker/reverts"
)

// Field names an updatable pool parameter.
type Field uint8

const (
	FieldCooldownTimeSeconds Field = iota
	FieldMaxDeactivationBasisPoints
	FieldSyncRewardsLamports
)

func (f Field) String() string {
	switch f {
	case FieldCooldownTimeSeconds:
		return "cooldown-time-seconds"
	case FieldMaxDeactivationBasisPoints:
		return "max-deactivation-basis-points"
	case FieldSyncRewardsLamports:
		return "sync-rewards-lamports"
	default:
		return "unknown"
	}
}

// ParseField converts the String form of a field back to Field.
func ParseField(s string) (Field, error) {
	for _, f := range []Field{FieldCooldownTimeSeconds, FieldMaxDeactivationBasisPoints, FieldSyncRewardsLamports} {
		if f.String() == s {
			return f, nil
		}
	}
	return 0, reverts.ErrUnknownConfigField
}

// Update sets a pool parameter.
func (c *Config) Update(field Field, value uint64) error {
	switch field {
	case FieldCooldownTimeSeconds:
		c.CooldownTimeSeconds = value
	case FieldMaxDeactivationBasisPoints:
		if value > ledger.MaxBasisPoints || value > math.MaxUint16 {
			return reverts.ErrInvalidBasisPoints
		}
		c.MaxDeactivationBasisPoints = uint16(value)
	case FieldSyncRewardsLamports:
		c.SyncRewardsLamports = value
	default:
		return reverts.ErrUnknownConfigField
	}
	return nil
}

// AuthorityType selects which config authority SetAuthority replaces.
type AuthorityType uint8

const (
	AuthorityConfig AuthorityType = iota
	AuthoritySlash
)

// SetAuthority replaces an authority. A nil authority disables it for good.
func (c *Config) SetAuthority(kind AuthorityType, authority *ledger.Pubkey) error {
	switch kind {
	case AuthorityConfig:
		c.Authority = clonePubkey(authority)
	case AuthoritySlash:
		c.SlashAuthority = clonePubkey(authority)
	default:
		return reverts.ErrUnknownConfigField
	}
	return nil
}
