// Copyright (c) 2025 The VeChainThor developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package staker

import (
	"time"

	"github.com/vechain/stakeledger/cache"
	"github.com/vechain/stakeledger/ledger"
	"github.com/vechain/stakeledger/metrics"
	"github.com/vechain/stakeledger/staker/config"
)

var (
	metricOperations       = metrics.LazyLoadCounterVec("operations_count", []string{"op", "outcome"})
	metricOperationLatency = metrics.LazyLoadHistogramVec("operation_duration_us", []string{"op"}, metrics.BucketOpMicros)
	metricRewardsPaid      = metrics.LazyLoadCounter("rewards_paid_total")
	metricRewardsForfeited = metrics.LazyLoadCounter("rewards_forfeited_total")
	metricRewardsClamped   = metrics.LazyLoadCounter("rewards_clamped_total")
	metricTokensSlashed    = metrics.LazyLoadCounter("tokens_slashed_total")
	metricPoolTokens       = metrics.LazyLoadGaugeVec("pool_tokens", []string{"pool", "kind"})
	metricCacheLookups     = metrics.LazyLoadCounterVec("record_cache_lookups_total", []string{"result"})
)

func recordOperation(op string, start time.Time, err error) {
	outcome := "ok"
	if err != nil {
		outcome = "failed"
	}
	metricOperations().AddWithLabel(1, map[string]string{"op": op, "outcome": outcome})
	metricOperationLatency().ObserveWithLabels(time.Since(start).Microseconds(), map[string]string{"op": op})
}

func recordSession(stats sessionStats) {
	if stats.rewardsPaid > 0 {
		metricRewardsPaid().Add(metrics.Amount(stats.rewardsPaid))
	}
	if stats.rewardsForfeited > 0 {
		metricRewardsForfeited().Add(metrics.Amount(stats.rewardsForfeited))
	}
	if stats.rewardsClamped > 0 {
		metricRewardsClamped().Add(metrics.Amount(stats.rewardsClamped))
	}
	if stats.slashed > 0 {
		metricTokensSlashed().Add(metrics.Amount(stats.slashed))
	}
}

func recordCache(c *cache.LRU) {
	drainCache(c, metricCacheLookups())
}

// drainCache moves the record cache counts gathered since the last call into meter.
func drainCache(c *cache.LRU, meter metrics.CountVecMeter) {
	hit, miss := c.DrainStats()
	if hit > 0 {
		meter.AddWithLabel(hit, map[string]string{"result": "hit"})
	}
	if miss > 0 {
		meter.AddWithLabel(miss, map[string]string{"result": "miss"})
	}
}

func recordPool(key ledger.Pubkey, cfg *config.Config) {
	pool := key.String()
	metricPoolTokens().SetWithLabel(metrics.Amount(cfg.TokenAmountDelegated), map[string]string{"pool": pool, "kind": "delegated"})
	metricPoolTokens().SetWithLabel(metrics.Amount(cfg.TokenAmountEffective), map[string]string{"pool": pool, "kind": "effective"})
}
