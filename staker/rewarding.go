// Copyright (c) 2025 The VeChainThor developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package staker

import (
	"github.com/holiman/uint256"
	"github.com/pkg/errors"

	"github.com/vechain/stakeledger/ledger"
	"github.com/vechain/stakeledger/staker/config"
	"github.com/vechain/stakeledger/staker/delegation"
	"github.com/vechain/stakeledger/staker/reverts"
	"github.com/vechain/stakeledger/staker/rewards"
	"github.com/vechain/stakeledger/staker/safemath"
)

// settle harvests the stake rewards of stake and returns the payable amount.
// The caller must pay it before the next settle of the session.
func (s *Staker) settle(sess *session, cfg *config.Config, stake *delegation.Stake) (uint64, error) {
	holder := ledger.RewardsHolder(stake.Config)
	spendable, err := sess.Spendable(s.host.Rewards, holder)
	if err != nil {
		return 0, err
	}
	res, err := rewards.Harvest(cfg, stake.Delegation, s.StakeLimit(stake), spendable)
	if err != nil {
		return 0, err
	}
	sess.stats.rewardsForfeited += res.Forfeited
	if res.Clamped() {
		sess.stats.rewardsClamped += res.Owed - res.Paid
		logger.Warn("rewards clamped to holder balance", "stake", stake.Address(), "owed", res.Owed, "paid", res.Paid)
	}
	return res.Paid, nil
}

func (s *Staker) settleHolder(sess *session, cfg *config.Config, stake *delegation.Stake) (uint64, error) {
	holder := ledger.RewardsHolder(stake.Config)
	spendable, err := sess.Spendable(s.host.Rewards, holder)
	if err != nil {
		return 0, err
	}
	res, err := rewards.HarvestHolder(cfg, stake.Delegation, spendable)
	if err != nil {
		return 0, err
	}
	if res.Clamped() {
		sess.stats.rewardsClamped += res.Owed - res.Paid
		logger.Warn("holder rewards clamped to holder balance", "stake", stake.Address(), "owed", res.Owed, "paid", res.Paid)
	}
	return res.Paid, nil
}

// harvest settles both reward streams of stake and pays them to destination.
// It runs before every change of the active amount, which is the basis of both.
func (s *Staker) harvest(sess *session, cfg *config.Config, stake *delegation.Stake, destination ledger.Pubkey) (uint64, error) {
	holder := ledger.RewardsHolder(stake.Config)
	paid, err := s.settle(sess, cfg, stake)
	if err != nil {
		return 0, err
	}
	sess.Payout(holder, destination, paid)

	holderPaid, err := s.settleHolder(sess, cfg, stake)
	if err != nil {
		return 0, err
	}
	sess.Payout(holder, destination, holderPaid)
	return safemath.CheckedAddU64(paid, holderPaid)
}

// HarvestRewards pays the stake rewards accrued since the last checkpoint to destination.
// Rewards earned by stake above the collateral limit go to the rest of the pool.
func (s *Staker) HarvestRewards(key, signer, destination ledger.Pubkey) (uint64, error) {
	logger.Debug("harvesting rewards", "stake", key, "destination", destination)

	var paid uint64
	err := s.run("harvest_rewards", func(sess *session) error {
		stake, cfg, err := sess.Bundle(key)
		if err != nil {
			return err
		}
		if err := checkStakeAuthority(stake.Delegation, signer); err != nil {
			return err
		}
		if paid, err = s.settle(sess, cfg, stake); err != nil {
			return err
		}
		sess.Payout(ledger.RewardsHolder(stake.Config), destination, paid)
		return nil
	})
	if err != nil {
		logger.Info("harvest rewards failed", "stake", key, "error", err)
		return 0, err
	}

	logger.Info("harvested rewards", "stake", key, "paid", paid)
	return paid, nil
}

// HarvestHolderRewards pays the holder rewards accrued since the last checkpoint to destination.
func (s *Staker) HarvestHolderRewards(key, signer, destination ledger.Pubkey) (uint64, error) {
	logger.Debug("harvesting holder rewards", "stake", key, "destination", destination)

	var paid uint64
	err := s.run("harvest_holder_rewards", func(sess *session) error {
		stake, cfg, err := sess.Bundle(key)
		if err != nil {
			return err
		}
		if err := checkStakeAuthority(stake.Delegation, signer); err != nil {
			return err
		}
		if paid, err = s.settleHolder(sess, cfg, stake); err != nil {
			return err
		}
		sess.Payout(ledger.RewardsHolder(stake.Config), destination, paid)
		return nil
	})
	if err != nil {
		logger.Info("harvest holder rewards failed", "stake", key, "error", err)
		return 0, err
	}

	logger.Info("harvested holder rewards", "stake", key, "paid", paid)
	return paid, nil
}

// DistributeRewards deposits amount into the pool holder and spreads it over the effective stake.
func (s *Staker) DistributeRewards(pool, payer ledger.Pubkey, amount uint64) error {
	return s.distribute("distribute_rewards", pool, payer, amount, (*config.Config).DistributeStakeRewards)
}

// DistributeHolderRewards deposits amount into the pool holder and spreads it over every delegated token.
func (s *Staker) DistributeHolderRewards(pool, payer ledger.Pubkey, amount uint64) error {
	return s.distribute("distribute_holder_rewards", pool, payer, amount, (*config.Config).DistributeHolderRewards)
}

func (s *Staker) distribute(
	op string,
	pool, payer ledger.Pubkey,
	amount uint64,
	apply func(*config.Config, uint64) (*uint256.Int, error),
) error {
	logger.Debug("distributing rewards", "op", op, "config", pool, "amount", amount)

	err := s.run(op, func(sess *session) error {
		if payer.IsZero() {
			return reverts.ErrMissingRequiredSignature
		}
		cfg, err := sess.Config(pool)
		if err != nil {
			return err
		}
		if _, err := apply(cfg, amount); err != nil {
			return err
		}
		holder := ledger.RewardsHolder(pool)
		sess.Transfer(&Transfer{
			Kind:        TransferRewardDeposit,
			Source:      payer,
			Destination: holder,
			Authority:   payer,
			Amount:      amount,
		})
		// the deposit is spendable once executed, not within this session
		return nil
	})
	if err != nil {
		logger.Info("distribute rewards failed", "op", op, "config", pool, "error", err)
		return err
	}

	logger.Info("distributed rewards", "op", op, "config", pool, "amount", amount)
	return nil
}

// SyncSolStake refreshes the collateral of a staker stake from the oracle and
// pays the keeper a fee out of the staker's rewards. Anyone may call it.
func (s *Staker) SyncSolStake(key, keeper ledger.Pubkey) (uint64, error) {
	logger.Debug("syncing sol stake", "stake", key, "keeper", keeper)

	var fee uint64
	err := s.run("sync_sol_stake", func(sess *session) error {
		if keeper.IsZero() {
			return reverts.ErrMissingRequiredSignature
		}
		stake, cfg, err := sess.Bundle(key)
		if err != nil {
			return err
		}
		if !stake.IsSolStaker() {
			return reverts.ErrInvalidAccountData
		}
		validator, err := sess.ValidatorStake(s.ValidatorStakeKey(stake.Config, stake.Delegation.Validator), stake.Config)
		if err != nil {
			return err
		}
		account, err := s.host.Oracle.StakeAccount(stake.Staker.SolStakeAccount)
		if err != nil {
			return errors.Wrap(err, "read stake account")
		}
		current := stake.Staker.LamportsAmount
		collateral := account.CollateralFor(stake.Delegation.Validator)
		if collateral == current {
			return reverts.ErrCollateralInSync
		}

		// both positions settle on the old collateral
		paid, err := s.settle(sess, cfg, stake)
		if err != nil {
			return err
		}
		holder := ledger.RewardsHolder(stake.Config)
		fee = safemath.MinU64(cfg.SyncRewardsLamports, paid)
		sess.Payout(holder, keeper, fee)
		sess.Payout(holder, stake.Delegation.Authority, paid-fee)

		if _, err := s.harvest(sess, cfg, validator, validator.Delegation.Authority); err != nil {
			return err
		}

		total, err := safemath.CheckedSubU64(validator.Validator.TotalStakedLamportsAmount, current)
		if err != nil {
			return err
		}
		if total, err = safemath.CheckedAddU64(total, collateral); err != nil {
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
		logger.Info("sync sol stake failed", "stake", key, "error", err)
		return 0, err
	}

	logger.Info("synced sol stake", "stake", key, "fee", fee)
	return fee, nil
}

// SetTotalStakedLamportsMin overrides the collateral floor of a validator. Only
// the config authority may call it.
func (s *Staker) SetTotalStakedLamportsMin(key, signer ledger.Pubkey, amountMin uint64) error {
	logger.Debug("setting validator collateral floor", "stake", key, "min", amountMin)

	err := s.run("set_total_staked_lamports_min", func(sess *session) error {
		stake, cfg, err := sess.Bundle(key)
		if err != nil {
			return err
		}
		if !stake.IsValidator() {
			return reverts.ErrInvalidAccountData
		}
		if err := cfg.CheckAuthority(signer); err != nil {
			return err
		}
		if _, err := s.harvest(sess, cfg, stake, stake.Delegation.Authority); err != nil {
			return err
		}
		stake.Validator.TotalStakedLamportsAmountMin = amountMin
		return s.syncEffective(cfg, stake)
	})
	if err != nil {
		logger.Info("set validator collateral floor failed", "stake", key, "error", err)
		return err
	}

	logger.Info("set validator collateral floor", "stake", key, "min", amountMin)
	return nil
}
