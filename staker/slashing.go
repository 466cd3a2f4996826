// Copyright (c) 2025 The VeChainThor developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package staker

import (
	"github.com/vechain/stakeledger/ledger"
	"github.com/vechain/stakeledger/staker/slash"
)

// Slash burns up to amount of a stake's active tokens out of the vault and
// returns the amount burned. Only the slash authority may call it. Slashing a
// collateral staker also unbonds its collateral from the validator.
func (s *Staker) Slash(key, signer ledger.Pubkey, amount uint64) (uint64, error) {
	logger.Debug("slashing", "stake", key, "amount", amount)

	var slashed uint64
	err := s.run("slash", func(sess *session) error {
		stake, cfg, err := sess.Bundle(key)
		if err != nil {
			return err
		}
		if err := cfg.CheckSlashAuthority(signer); err != nil {
			return err
		}
		if _, err := s.harvest(sess, cfg, stake, stake.Delegation.Authority); err != nil {
			return err
		}
		if slashed, err = slash.Slash(cfg, stake.Delegation, amount); err != nil {
			return err
		}

		if stake.IsSolStaker() {
			validator, err := sess.ValidatorStake(s.ValidatorStakeKey(stake.Config, stake.Delegation.Validator), stake.Config)
			if err != nil {
				return err
			}
			if _, err := s.harvest(sess, cfg, validator, validator.Delegation.Authority); err != nil {
				return err
			}
			if _, err := slash.Unbond(validator.Validator, stake.Staker); err != nil {
				return err
			}
			if err := s.syncEffective(cfg, validator); err != nil {
				return err
			}
		}
		if err := s.syncEffective(cfg, stake); err != nil {
			return err
		}

		sess.stats.slashed += slashed
		sess.Transfer(s.vaultTransfer(cfg, stake.Config, TransferSlashBurn, ledger.Pubkey{}, slashed))
		return nil
	})
	if err != nil {
		logger.Info("slash failed", "stake", key, "error", err)
		return 0, err
	}

	logger.Info("slashed", "stake", key, "amount", slashed)
	return slashed, nil
}
