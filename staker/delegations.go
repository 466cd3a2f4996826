// Copyright (c) 2025 The VeChainThor developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package staker

import (
	"github.com/pkg/errors"

	"github.com/vechain/stakeledger/ledger"
	"github.com/vechain/stakeledger/staker/config"
	"github.com/vechain/stakeledger/staker/cooldown"
	"github.com/vechain/stakeledger/staker/delegation"
	"github.com/vechain/stakeledger/staker/effective"
	"github.com/vechain/stakeledger/staker/reverts"
	"github.com/vechain/stakeledger/staker/safemath"
)

func checkStakeAuthority(d *delegation.Delegation, signer ledger.Pubkey) error {
	if signer.IsZero() {
		return reverts.ErrMissingRequiredSignature
	}
	if d.Authority != signer {
		return reverts.ErrInvalidAuthority
	}
	return nil
}

func (s *Staker) syncEffective(cfg *config.Config, stake *delegation.Stake) error {
	_, err := effective.SyncStake(cfg, stake, s.policy)
	return err
}

// InitializeValidatorStake creates the stake record of a validator, controlled by
// the withdraw authority of its vote account.
func (s *Staker) InitializeValidatorStake(pool, vote ledger.Pubkey) (ledger.Pubkey, error) {
	logger.Debug("initializing validator stake", "config", pool, "vote", vote)

	key := s.ValidatorStakeKey(pool, vote)
	err := s.run("initialize_validator_stake", func(sess *session) error {
		cfg, err := sess.Config(pool)
		if err != nil {
			return err
		}
		account, err := s.host.Oracle.VoteAccount(vote)
		if err != nil {
			return errors.Wrap(err, "read vote account")
		}
		d := delegation.New(account.AuthorizedWithdrawer, vote,
			cfg.AccumulatedStakeRewardsPerToken,
			cfg.AccumulatedHolderRewardsPerToken,
		)
		return sess.NewStake(key, delegation.NewValidatorStake(pool, d))
	})
	if err != nil {
		logger.Info("initialize validator stake failed", "vote", vote, "error", err)
		return ledger.Pubkey{}, err
	}

	logger.Info("initialized validator stake", "vote", vote, "stake", key)
	return key, nil
}

// InitializeSolStakerStake creates the stake record of a collateral account and
// bonds its collateral to the validator it is delegated to.
func (s *Staker) InitializeSolStakerStake(pool, stakeAccount ledger.Pubkey) (ledger.Pubkey, error) {
	logger.Debug("initializing sol staker stake", "config", pool, "account", stakeAccount)

	key := s.SolStakerStakeKey(pool, stakeAccount)
	err := s.run("initialize_sol_staker_stake", func(sess *session) error {
		cfg, err := sess.Config(pool)
		if err != nil {
			return err
		}
		account, err := s.host.Oracle.StakeAccount(stakeAccount)
		if err != nil {
			return errors.Wrap(err, "read stake account")
		}
		if account.Voter == nil {
			return reverts.ErrInvalidAccountData
		}
		vote := *account.Voter
		validator, err := sess.ValidatorStake(s.ValidatorStakeKey(pool, vote), pool)
		if err != nil {
			return err
		}

		d := delegation.New(account.Withdrawer, vote,
			cfg.AccumulatedStakeRewardsPerToken,
			cfg.AccumulatedHolderRewardsPerToken,
		)
		stake := delegation.NewSolStakerStake(pool, d, stakeAccount)
		if err := sess.NewStake(key, stake); err != nil {
			return err
		}

		collateral := account.CollateralFor(vote)
		if collateral == 0 {
			return nil
		}
		if _, err := s.harvest(sess, cfg, validator, validator.Delegation.Authority); err != nil {
			return err
		}
		total, err := safemath.CheckedAddU64(validator.Validator.TotalStakedLamportsAmount, collateral)
		if err != nil {
			return err
		}
		validator.Validator.TotalStakedLamportsAmount = total
		stake.Staker.LamportsAmount = collateral
		if err := s.syncEffective(cfg, validator); err != nil {
			return err
		}
		return s.syncEffective(cfg, stake)
	})
	if err != nil {
		logger.Info("initialize sol staker stake failed", "account", stakeAccount, "error", err)
		return ledger.Pubkey{}, err
	}

	logger.Info("initialized sol staker stake", "account", stakeAccount, "stake", key)
	return key, nil
}

// SetStakeAuthority hands control of a stake record to a new authority.
func (s *Staker) SetStakeAuthority(key, signer, authority ledger.Pubkey) error {
	logger.Debug("setting stake authority", "stake", key, "authority", authority)

	err := s.run("set_stake_authority", func(sess *session) error {
		stake, err := sess.Stake(key)
		if err != nil {
			return err
		}
		if err := checkStakeAuthority(stake.Delegation, signer); err != nil {
			return err
		}
		if authority.IsZero() {
			return reverts.ErrInvalidAuthority
		}
		stake.Delegation.Authority = authority
		return nil
	})
	if err != nil {
		logger.Info("set stake authority failed", "stake", key, "error", err)
		return err
	}

	logger.Info("set stake authority", "stake", key)
	return nil
}

// StakeTokens moves amount tokens from source into the pool vault and adds them to the stake.
func (s *Staker) StakeTokens(key, signer, source, vault, mint ledger.Pubkey, amount uint64) error {
	logger.Debug("staking tokens", "stake", key, "source", source, "amount", amount)

	err := s.run("stake_tokens", func(sess *session) error {
		stake, cfg, err := sess.Bundle(key)
		if err != nil {
			return err
		}
		if err := checkStakeAuthority(stake.Delegation, signer); err != nil {
			return err
		}
		if amount == 0 {
			return reverts.ErrInvalidAmount
		}
		if vault != cfg.Vault {
			return reverts.ErrIncorrectVault
		}
		if mint != cfg.Mint {
			return reverts.ErrInvalidMint
		}

		// settle rewards on the old basis first
		if _, err := s.harvest(sess, cfg, stake, stake.Delegation.Authority); err != nil {
			return err
		}
		active, err := safemath.CheckedAddU64(stake.Delegation.ActiveAmount, amount)
		if err != nil {
			return err
		}
		if err := cfg.AddDelegated(amount); err != nil {
			return err
		}
		stake.Delegation.ActiveAmount = active
		if err := s.syncEffective(cfg, stake); err != nil {
			return err
		}

		sess.Transfer(&Transfer{
			Kind:        TransferStakeIn,
			Source:      source,
			Destination: cfg.Vault,
			Authority:   signer,
			Mint:        cfg.Mint,
			Amount:      amount,
			Decimals:    cfg.Decimals,
		})
		return nil
	})
	if err != nil {
		logger.Info("stake tokens failed", "stake", key, "error", err)
		return err
	}

	logger.Info("staked tokens", "stake", key, "amount", amount)
	return nil
}

// Unstake removes amount tokens from the stake and sends them to destination.
// At most max_deactivation_basis_points of the stake can leave per cooldown.
func (s *Staker) Unstake(key, signer, destination ledger.Pubkey, amount uint64) error {
	logger.Debug("unstaking", "stake", key, "destination", destination, "amount", amount)

	err := s.run("unstake", func(sess *session) error {
		now := s.host.Clock.Now()
		stake, cfg, err := sess.Bundle(key)
		if err != nil {
			return err
		}
		if err := checkStakeAuthority(stake.Delegation, signer); err != nil {
			return err
		}
		if err := cooldown.ValidateUnstake(cfg, stake.Delegation, amount, now); err != nil {
			return err
		}

		if _, err := s.harvest(sess, cfg, stake, stake.Delegation.Authority); err != nil {
			return err
		}
		if err := cooldown.ApplyUnstake(cfg, stake.Delegation, amount, now); err != nil {
			return err
		}
		if err := s.syncEffective(cfg, stake); err != nil {
			return err
		}

		sess.Transfer(s.vaultTransfer(cfg, stake.Config, TransferUnstakeOut, destination, amount))
		return nil
	})
	if err != nil {
		logger.Info("unstake failed", "stake", key, "error", err)
		return err
	}

	logger.Info("unstaked", "stake", key, "amount", amount)
	return nil
}

// vaultTransfer moves tokens out of the pool vault, signed by the vault authority.
func (s *Staker) vaultTransfer(cfg *config.Config, pool ledger.Pubkey, kind TransferKind, destination ledger.Pubkey, amount uint64) *Transfer {
	return &Transfer{
		Kind:        kind,
		Source:      cfg.Vault,
		Destination: destination,
		Authority:   ledger.VaultAuthority(pool),
		Mint:        cfg.Mint,
		Amount:      amount,
		Decimals:    cfg.Decimals,
	}
}

// Deactivate marks amount of the stake for deactivation, replacing any pending request.
//
// Deprecated: use Unstake.
func (s *Staker) Deactivate(key, signer ledger.Pubkey, amount uint64) error {
	logger.Debug("deactivating", "stake", key, "amount", amount)

	err := s.run("deactivate", func(sess *session) error {
		now := s.host.Clock.Now()
		stake, cfg, err := sess.Bundle(key)
		if err != nil {
			return err
		}
		if err := checkStakeAuthority(stake.Delegation, signer); err != nil {
			return err
		}
		return cooldown.Deactivate(cfg, stake.Delegation, amount, now)
	})
	if err != nil {
		logger.Info("deactivate failed", "stake", key, "error", err)
		return err
	}

	logger.Info("deactivated", "stake", key, "amount", amount)
	return nil
}

// Inactivate completes a pending deactivation once its cooldown elapsed. Anyone may call it.
//
// Deprecated: use Unstake.
func (s *Staker) Inactivate(key ledger.Pubkey) (uint64, error) {
	logger.Debug("inactivating", "stake", key)

	var moved uint64
	err := s.run("inactivate", func(sess *session) error {
		now := s.host.Clock.Now()
		stake, cfg, err := sess.Bundle(key)
		if err != nil {
			return err
		}
		if _, err := s.harvest(sess, cfg, stake, stake.Delegation.Authority); err != nil {
			return err
		}
		if moved, err = cooldown.Inactivate(cfg, stake.Delegation, now); err != nil {
			return err
		}
		return s.syncEffective(cfg, stake)
	})
	if err != nil {
		logger.Info("inactivate failed", "stake", key, "error", err)
		return 0, err
	}

	logger.Info("inactivated", "stake", key, "amount", moved)
	return moved, nil
}

// Withdraw sends amount of the inactive balance to destination.
//
// Deprecated: use Unstake.
func (s *Staker) Withdraw(key, signer, destination ledger.Pubkey, amount uint64) error {
	logger.Debug("withdrawing", "stake", key, "destination", destination, "amount", amount)

	err := s.run("withdraw", func(sess *session) error {
		stake, cfg, err := sess.Bundle(key)
		if err != nil {
			return err
		}
		if err := checkStakeAuthority(stake.Delegation, signer); err != nil {
			return err
		}
		if err := cooldown.Withdraw(stake.Delegation, amount); err != nil {
			return err
		}
		sess.Transfer(s.vaultTransfer(cfg, stake.Config, TransferUnstakeOut, destination, amount))
		return nil
	})
	if err != nil {
		logger.Info("withdraw failed", "stake", key, "error", err)
		return err
	}

	logger.Info("withdrew", "stake", key, "amount", amount)
	return nil
}
