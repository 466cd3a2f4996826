// Copyright (c) 2024 The VeChainThor developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package cache

import "sync/atomic"

// Stats counts lookups answered by the cache and lookups that had to load.
type Stats struct {
	hit, miss atomic.Int64
}

// Hit records a hit.
func (cs *Stats) Hit() { cs.hit.Add(1) }

// Miss records a miss.
func (cs *Stats) Miss() { cs.miss.Add(1) }

// Drain returns the counts gathered since the previous Drain and resets them,
// so they can be added to monotonic counters.
func (cs *Stats) Drain() (hit, miss int64) {
	return cs.hit.Swap(0), cs.miss.Swap(0)
}
