// Copyright (c) 2025 The VeChainThor developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package delegation

import (
	"github.com/pkg/errors"

	"github.com/vechain/stakeledger/ledger"
	"github.com/vechain/stakeledger/staker/stakelimit"
)

type Kind = uint8

const (
	KindUnknown   = Kind(iota) // 0 -> default value
	KindValidator              // delegation of a validator, collateral bonded to it
	KindSolStaker              // delegation of a collateral staker
)

// ValidatorExtra is the validator-only part of a stake record.
type ValidatorExtra struct {
	TotalStakedLamportsAmount    uint64 // collateral bonded to the validator by its stakers
	TotalStakedLamportsAmountMin uint64 // administrative floor override
}

// StakerExtra is the collateral-staker-only part of a stake record.
type StakerExtra struct {
	LamportsAmount  uint64        // the staker's own bonded collateral
	SolStakeAccount ledger.Pubkey // external collateral account backing the position
}

// Stake is a stake record: one Delegation plus exactly one variant part,
// so reward, cooldown and effective logic is written once.
type Stake struct {
	Kind       Kind
	Config     ledger.Pubkey // the pool the record belongs to
	Delegation *Delegation

	Validator *ValidatorExtra `rlp:"nil"`
	Staker    *StakerExtra    `rlp:"nil"`
}

// NewValidatorStake returns an empty validator record.
func NewValidatorStake(pool ledger.Pubkey, d *Delegation) *Stake {
	return &Stake{
		Kind:       KindValidator,
		Config:     pool,
		Delegation: d,
		Validator:  &ValidatorExtra{},
	}
}

// NewSolStakerStake returns a collateral-staker record bonded to no collateral yet.
func NewSolStakerStake(pool ledger.Pubkey, d *Delegation, solStakeAccount ledger.Pubkey) *Stake {
	return &Stake{
		Kind:       KindSolStaker,
		Config:     pool,
		Delegation: d,
		Staker:     &StakerExtra{SolStakeAccount: solStakeAccount},
	}
}

// IsEmpty returns whether the entry can be treated as empty.
func (s *Stake) IsEmpty() bool {
	return s.Kind == KindUnknown
}

func (s *Stake) IsValidator() bool {
	return s.Kind == KindValidator
}

func (s *Stake) IsSolStaker() bool {
	return s.Kind == KindSolStaker
}

// Collateral returns the collateral backing the record.
func (s *Stake) Collateral() stakelimit.Collateral {
	switch {
	case s.Validator != nil:
		return stakelimit.Collateral{
			Amount:    s.Validator.TotalStakedLamportsAmount,
			AmountMin: s.Validator.TotalStakedLamportsAmountMin,
		}
	case s.Staker != nil:
		return stakelimit.Collateral{Amount: s.Staker.LamportsAmount}
	default:
		return stakelimit.Collateral{}
	}
}

// Seed returns the derivation seed and owner key the record address is derived from.
func (s *Stake) Seed() (ledger.Seed, ledger.Pubkey) {
	if s.IsSolStaker() {
		return ledger.SeedSolStakerStake, s.Staker.SolStakeAccount
	}
	return ledger.SeedValidatorStake, s.Delegation.Validator
}

// Address returns the canonical address of the record.
func (s *Stake) Address() ledger.Pubkey {
	seed, owner := s.Seed()
	return ledger.Derive(seed, owner, s.Config)
}

// Validate checks the variant tag against the variant parts and the delegation invariants.
func (s *Stake) Validate() error {
	if s.Delegation == nil {
		return errors.New("stake has no delegation")
	}
	switch s.Kind {
	case KindValidator:
		if s.Validator == nil || s.Staker != nil {
			return errors.New("validator stake with mismatched variant")
		}
	case KindSolStaker:
		if s.Staker == nil || s.Validator != nil {
			return errors.New("sol staker stake with mismatched variant")
		}
	default:
		return errors.Errorf("unknown stake kind %d", s.Kind)
	}
	return s.Delegation.Validate()
}

// Clone returns a deep copy.
func (s *Stake) Clone() *Stake {
	cpy := *s
	if s.Delegation != nil {
		cpy.Delegation = s.Delegation.Clone()
	}
	if s.Validator != nil {
		v := *s.Validator
		cpy.Validator = &v
	}
	if s.Staker != nil {
		st := *s.Staker
		cpy.Staker = &st
	}
	return &cpy
}
