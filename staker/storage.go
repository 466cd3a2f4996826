// Copyright (c) 2025 The VeChainThor developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package staker

import (
	"bytes"

	"github.com/ethereum/go-ethereum/rlp"
	"github.com/pkg/errors"

	"github.com/vechain/stakeledger/cache"
	"github.com/vechain/stakeledger/kv"
	"github.com/vechain/stakeledger/ledger"
	"github.com/vechain/stakeledger/staker/config"
	"github.com/vechain/stakeledger/staker/delegation"
	"github.com/vechain/stakeledger/staker/reverts"
	"github.com/vechain/stakeledger/staker/safemath"
)

var (
	bucketConfigs = kv.Bucket("cfg/")
	bucketStakes  = kv.Bucket("stk/")
)

// storage persists pool configs and stake records as rlp.
type storage struct {
	db      kv.Store
	configs kv.Store
	stakes  kv.Store
	cache   *cache.LRU // decoded records, only refreshed on commit
}

func newStorage(db kv.Store, cacheSize int) (*storage, error) {
	if cacheSize <= 0 {
		cacheSize = 1024
	}
	c, err := cache.NewLRU(cacheSize)
	if err != nil {
		return nil, errors.Wrap(err, "new record cache")
	}
	return &storage{
		db:      db,
		configs: bucketConfigs.NewStore(db),
		stakes:  bucketStakes.NewStore(db),
		cache:   c,
	}, nil
}

func cacheKey(bucket kv.Bucket, key ledger.Pubkey) string {
	return string(bucket) + string(key[:])
}

// read returns the stored encoding of key, nil if absent.
func read(store kv.Store, key ledger.Pubkey) ([]byte, error) {
	data, err := store.Get(key[:])
	if err != nil {
		if store.IsNotFound(err) {
			return nil, nil
		}
		return nil, errors.Wrap(err, "read record")
	}
	return data, nil
}

// errAbsent keeps absent records out of the cache.
var errAbsent = errors.New("absent")

// GetConfig returns a copy of the stored config, nil if absent.
func (s *storage) GetConfig(key ledger.Pubkey) (*config.Config, error) {
	v, err := s.cache.GetOrLoad(cacheKey(bucketConfigs, key), func(any) (any, error) {
		data, err := read(s.configs, key)
		if err != nil {
			return nil, err
		}
		if data == nil {
			return nil, errAbsent
		}
		var cfg config.Config
		if err := rlp.DecodeBytes(data, &cfg); err != nil {
			return nil, reverts.ErrInvalidAccountData
		}
		return &cfg, nil
	})
	if err != nil {
		if err == errAbsent {
			return nil, nil
		}
		return nil, err
	}
	return v.(*config.Config).Clone(), nil
}

// GetStake returns a copy of the stored stake, nil if absent.
func (s *storage) GetStake(key ledger.Pubkey) (*delegation.Stake, error) {
	v, err := s.cache.GetOrLoad(cacheKey(bucketStakes, key), func(any) (any, error) {
		data, err := read(s.stakes, key)
		if err != nil {
			return nil, err
		}
		if data == nil {
			return nil, errAbsent
		}
		var stake delegation.Stake
		if err := rlp.DecodeBytes(data, &stake); err != nil {
			return nil, reverts.ErrInvalidAccountData
		}
		if err := stake.Validate(); err != nil {
			return nil, reverts.ErrInvalidAccountData
		}
		return &stake, nil
	})
	if err != nil {
		if err == errAbsent {
			return nil, nil
		}
		return nil, err
	}
	return v.(*delegation.Stake).Clone(), nil
}

// StakesOf lists the stakes of a pool in key order.
func (s *storage) StakesOf(pool ledger.Pubkey) (map[ledger.Pubkey]*delegation.Stake, []ledger.Pubkey, error) {
	iter := s.stakes.Iterate(kv.Range{})
	defer iter.Release()

	var (
		stakes = make(map[ledger.Pubkey]*delegation.Stake)
		keys   []ledger.Pubkey
	)
	for iter.Next() {
		var stake delegation.Stake
		if err := rlp.DecodeBytes(iter.Value(), &stake); err != nil {
			return nil, nil, errors.Wrap(err, "decode stake")
		}
		if stake.Config != pool {
			continue
		}
		key := ledger.BytesToPubkey(iter.Key())
		stakes[key] = &stake
		keys = append(keys, key)
	}
	if err := iter.Error(); err != nil {
		return nil, nil, errors.Wrap(err, "iterate stakes")
	}
	return stakes, keys, nil
}

type configEntry struct {
	cfg      *config.Config
	original []byte // nil for a new record
	version  uint64 // version at load
}

type stakeEntry struct {
	stake    *delegation.Stake
	original []byte
}

// session collects the records one operation touches. Nothing reaches the
// store until commit, so a failed operation leaves every record untouched.
type session struct {
	st         *storage
	configs    map[ledger.Pubkey]*configEntry
	stakes     map[ledger.Pubkey]*stakeEntry
	configKeys []ledger.Pubkey
	transfers  []*Transfer
	spendable  map[ledger.Pubkey]uint64
	stats      sessionStats
}

type sessionStats struct {
	rewardsPaid      uint64
	rewardsForfeited uint64
	rewardsClamped   uint64
	slashed          uint64
}

func (s *storage) begin() *session {
	return &session{
		st:        s,
		configs:   make(map[ledger.Pubkey]*configEntry),
		stakes:    make(map[ledger.Pubkey]*stakeEntry),
		spendable: make(map[ledger.Pubkey]uint64),
	}
}

func encode(v any) ([]byte, error) {
	data, err := rlp.EncodeToBytes(v)
	if err != nil {
		return nil, errors.Wrap(err, "encode record")
	}
	return data, nil
}

// Config loads the pool config. It fails with ErrUninitializedAccount if absent.
func (s *session) Config(key ledger.Pubkey) (*config.Config, error) {
	if e, ok := s.configs[key]; ok {
		return e.cfg, nil
	}
	cfg, err := s.st.GetConfig(key)
	if err != nil {
		return nil, err
	}
	if cfg == nil {
		return nil, reverts.ErrUninitializedAccount
	}
	original, err := encode(cfg)
	if err != nil {
		return nil, err
	}
	s.configs[key] = &configEntry{cfg: cfg, original: original, version: cfg.Version}
	s.configKeys = append(s.configKeys, key)
	return cfg, nil
}

// NewConfig adds a pool config. It fails with ErrAlreadyInitialized if present.
func (s *session) NewConfig(key ledger.Pubkey, cfg *config.Config) error {
	existing, err := s.st.GetConfig(key)
	if err != nil {
		return err
	}
	if existing != nil || s.configs[key] != nil {
		return reverts.ErrAlreadyInitialized
	}
	s.configs[key] = &configEntry{cfg: cfg}
	s.configKeys = append(s.configKeys, key)
	return nil
}

// Stake loads a stake record and checks it sits at the key derived from its content.
func (s *session) Stake(key ledger.Pubkey) (*delegation.Stake, error) {
	if e, ok := s.stakes[key]; ok {
		return e.stake, nil
	}
	stake, err := s.st.GetStake(key)
	if err != nil {
		return nil, err
	}
	if stake == nil {
		return nil, reverts.ErrUninitializedAccount
	}
	if stake.Address() != key {
		return nil, reverts.ErrInvalidSeeds
	}
	original, err := encode(stake)
	if err != nil {
		return nil, err
	}
	s.stakes[key] = &stakeEntry{stake: stake, original: original}
	return stake, nil
}

// Bundle loads a stake record together with the config of its pool.
func (s *session) Bundle(key ledger.Pubkey) (*delegation.Stake, *config.Config, error) {
	stake, err := s.Stake(key)
	if err != nil {
		return nil, nil, err
	}
	cfg, err := s.Config(stake.Config)
	if err != nil {
		return nil, nil, err
	}
	return stake, cfg, nil
}

// ValidatorStake loads the validator stake record of a pool.
func (s *session) ValidatorStake(key, pool ledger.Pubkey) (*delegation.Stake, error) {
	stake, err := s.Stake(key)
	if err != nil {
		return nil, err
	}
	if stake.Config != pool {
		return nil, reverts.ErrInvalidSeeds
	}
	if !stake.IsValidator() {
		return nil, reverts.ErrInvalidAccountData
	}
	return stake, nil
}

// NewStake adds a stake record under its derived key.
func (s *session) NewStake(key ledger.Pubkey, stake *delegation.Stake) error {
	if stake.Address() != key {
		return reverts.ErrInvalidSeeds
	}
	existing, err := s.st.GetStake(key)
	if err != nil {
		return err
	}
	if existing != nil || s.stakes[key] != nil {
		return reverts.ErrAlreadyInitialized
	}
	s.stakes[key] = &stakeEntry{stake: stake}
	return nil
}

// Spendable returns what the holder can still pay out in this session.
func (s *session) Spendable(pool RewardPool, holder ledger.Pubkey) (uint64, error) {
	if v, ok := s.spendable[holder]; ok {
		return v, nil
	}
	balance, reserve, err := pool.Lamports(holder)
	if err != nil {
		return 0, errors.Wrap(err, "read rewards holder balance")
	}
	v := safemath.SaturatingSubU64(balance, reserve)
	s.spendable[holder] = v
	return v, nil
}

// Payout queues a reward payment out of the holder.
func (s *session) Payout(holder, destination ledger.Pubkey, amount uint64) {
	if amount == 0 {
		return
	}
	s.spendable[holder] = safemath.SaturatingSubU64(s.spendable[holder], amount)
	s.stats.rewardsPaid += amount
	s.Transfer(&Transfer{
		Kind:        TransferRewardPayout,
		Source:      holder,
		Destination: destination,
		Authority:   holder,
		Amount:      amount,
	})
}

// Transfer queues a transfer executed at commit.
func (s *session) Transfer(t *Transfer) {
	s.transfers = append(s.transfers, t)
}

// commit checks that no config moved since it was loaded, executes the queued
// transfers and writes every changed record in one batch.
func (s *session) commit(executor TransferExecutor) ([]ledger.Pubkey, error) {
	bulk := s.st.db.Bulk()
	configs := bucketConfigs.NewBulk(bulk)
	stakes := bucketStakes.NewBulk(bulk)

	var (
		changed []ledger.Pubkey
		dirty   = make(map[string]any)
	)
	for _, key := range s.configKeys {
		e := s.configs[key]
		if err := s.checkVersion(key, e); err != nil {
			return nil, err
		}
		data, err := encode(e.cfg)
		if err != nil {
			return nil, err
		}
		if e.original != nil && bytes.Equal(data, e.original) {
			continue
		}
		e.cfg.Version++
		if data, err = encode(e.cfg); err != nil {
			return nil, err
		}
		if err := configs.Put(key[:], data); err != nil {
			return nil, errors.Wrap(err, "write config")
		}
		dirty[cacheKey(bucketConfigs, key)] = e.cfg
		changed = append(changed, key)
	}
	for key, e := range s.stakes {
		if err := e.stake.Validate(); err != nil {
			return nil, errors.Wrap(err, "invalid stake state")
		}
		data, err := encode(e.stake)
		if err != nil {
			return nil, err
		}
		if e.original != nil && bytes.Equal(data, e.original) {
			continue
		}
		if err := stakes.Put(key[:], data); err != nil {
			return nil, errors.Wrap(err, "write stake")
		}
		dirty[cacheKey(bucketStakes, key)] = e.stake
	}

	for _, t := range s.transfers {
		if err := executor.Execute(t); err != nil {
			return nil, errors.Wrapf(err, "execute %v transfer", t.Kind)
		}
	}

	if bulk.Len() > 0 {
		if err := bulk.Write(); err != nil {
			return nil, errors.Wrap(err, "commit records")
		}
	}
	for k, v := range dirty {
		switch rec := v.(type) {
		case *config.Config:
			s.st.cache.Add(k, rec.Clone())
		case *delegation.Stake:
			s.st.cache.Add(k, rec.Clone())
		}
	}
	return changed, nil
}

// checkVersion compares the version a config was loaded at with the stored one.
func (s *session) checkVersion(key ledger.Pubkey, e *configEntry) error {
	data, err := read(s.st.configs, key)
	if err != nil {
		return err
	}
	if e.original == nil {
		if data != nil {
			return reverts.ErrAlreadyInitialized
		}
		return nil
	}
	var stored config.Config
	if data == nil || rlp.DecodeBytes(data, &stored) != nil || stored.Version != e.version {
		s.st.cache.Remove(cacheKey(bucketConfigs, key))
		return reverts.ErrStaleConfig
	}
	return nil
}
