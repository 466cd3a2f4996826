// Copyright (c) 2025 The VeChainThor developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package staker

import (
	"sync"
	"time"

	"github.com/pkg/errors"

	"github.com/vechain/stakeledger/kv"
	"github.com/vechain/stakeledger/ledger"
	"github.com/vechain/stakeledger/log"
	"github.com/vechain/stakeledger/staker/config"
	"github.com/vechain/stakeledger/staker/delegation"
	"github.com/vechain/stakeledger/staker/reverts"
	"github.com/vechain/stakeledger/staker/stakelimit"
)

var logger = log.WithContext("pkg", "staker")

func SetLogger(l log.Logger) {
	logger = l
}

// Options tune the engine. Policy is the collateral to stake-limit rule.
type Options struct {
	Policy    stakelimit.Policy
	CacheSize int // decoded records kept in memory
}

// Staker is the accounting engine of every pool stored in one kv store.
// Each operation runs in its own session and commits fully or not at all.
type Staker struct {
	mu     sync.Mutex
	store  *storage
	host   Host
	policy stakelimit.Policy
}

// New create a new instance.
func New(db kv.Store, host Host, opts Options) (*Staker, error) {
	if host.Oracle == nil || host.Executor == nil || host.Rewards == nil || host.Clock == nil {
		return nil, errors.New("incomplete host")
	}
	if opts.Policy.RatioBasisPoints == 0 {
		opts.Policy = stakelimit.Default
	}
	store, err := newStorage(db, opts.CacheSize)
	if err != nil {
		return nil, err
	}
	return &Staker{
		store:  store,
		host:   host,
		policy: opts.Policy,
	}, nil
}

// run executes fn in a fresh session and commits it when fn succeeds.
func (s *Staker) run(op string, fn func(sess *session) error) (err error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	start := time.Now()
	defer func() {
		recordOperation(op, start, err)
		recordCache(s.store.cache)
	}()

	sess := s.store.begin()
	if err := fn(sess); err != nil {
		return err
	}
	changed, err := sess.commit(s.host.Executor)
	if err != nil {
		return err
	}
	recordSession(sess.stats)
	for _, key := range changed {
		recordPool(key, sess.configs[key].cfg)
	}
	return nil
}

//
// Getters - no state change
//

// Config returns a copy of the pool config.
func (s *Staker) Config(key ledger.Pubkey) (*config.Config, error) {
	cfg, err := s.store.GetConfig(key)
	if err != nil {
		return nil, err
	}
	if cfg == nil {
		return nil, reverts.ErrUninitializedAccount
	}
	return cfg, nil
}

// Stake returns a copy of a stake record.
func (s *Staker) Stake(key ledger.Pubkey) (*delegation.Stake, error) {
	stake, err := s.store.GetStake(key)
	if err != nil {
		return nil, err
	}
	if stake == nil {
		return nil, reverts.ErrUninitializedAccount
	}
	return stake, nil
}

// Stakes lists every stake of a pool in key order.
func (s *Staker) Stakes(pool ledger.Pubkey) ([]ledger.Pubkey, map[ledger.Pubkey]*delegation.Stake, error) {
	stakes, keys, err := s.store.StakesOf(pool)
	if err != nil {
		return nil, nil, err
	}
	return keys, stakes, nil
}

// StakeLimit returns the stake limit of a stake record under the engine policy.
func (s *Staker) StakeLimit(stake *delegation.Stake) uint64 {
	return s.policy.StakeLimitOf(stake.Collateral())
}

// ValidatorStakeKey returns the record key of a validator in a pool.
func (s *Staker) ValidatorStakeKey(pool, vote ledger.Pubkey) ledger.Pubkey {
	return ledger.Derive(ledger.SeedValidatorStake, vote, pool)
}

// SolStakerStakeKey returns the record key of a collateral account in a pool.
func (s *Staker) SolStakerStakeKey(pool, stakeAccount ledger.Pubkey) ledger.Pubkey {
	return ledger.Derive(ledger.SeedSolStakerStake, stakeAccount, pool)
}

//
// Setters - pool administration
//

// InitializeConfig creates a pool.
func (s *Staker) InitializeConfig(key ledger.Pubkey, params config.Params) error {
	logger.Debug("initializing config", "config", key, "mint", params.Mint, "vault", params.Vault)

	err := s.run("initialize_config", func(sess *session) error {
		if params.Vault.IsZero() {
			return reverts.ErrIncorrectVault
		}
		if params.Mint.IsZero() {
			return reverts.ErrInvalidMint
		}
		cfg, err := config.New(params)
		if err != nil {
			return err
		}
		return sess.NewConfig(key, cfg)
	})
	if err != nil {
		logger.Info("initialize config failed", "config", key, "error", err)
		return err
	}

	logger.Info("initialized config", "config", key)
	return nil
}

// UpdateConfig sets a pool parameter. Only the config authority may call it.
func (s *Staker) UpdateConfig(key, signer ledger.Pubkey, field config.Field, value uint64) error {
	logger.Debug("updating config", "config", key, "field", field, "value", value)

	err := s.run("update_config", func(sess *session) error {
		cfg, err := sess.Config(key)
		if err != nil {
			return err
		}
		if err := cfg.CheckAuthority(signer); err != nil {
			return err
		}
		return cfg.Update(field, value)
	})
	if err != nil {
		logger.Info("update config failed", "config", key, "field", field, "error", err)
		return err
	}

	logger.Info("updated config", "config", key, "field", field)
	return nil
}

// SetAuthority replaces the config or slash authority. Only the config authority may call it.
func (s *Staker) SetAuthority(key, signer ledger.Pubkey, kind config.AuthorityType, authority *ledger.Pubkey) error {
	logger.Debug("setting authority", "config", key, "type", kind, "authority", authority)

	err := s.run("set_authority", func(sess *session) error {
		cfg, err := sess.Config(key)
		if err != nil {
			return err
		}
		if err := cfg.CheckAuthority(signer); err != nil {
			return err
		}
		return cfg.SetAuthority(kind, authority)
	})
	if err != nil {
		logger.Info("set authority failed", "config", key, "error", err)
		return err
	}

	logger.Info("set authority", "config", key, "type", kind)
	return nil
}
