// Copyright (c) 2025 The VeChainThor developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package config

// Delta is a signed change of an aggregate.
type Delta struct {
	Amount   uint64
	Negative bool
}

// NewDelta returns the change that turns from into to.
func NewDelta(from, to uint64) Delta {
	if to >= from {
		return Delta{Amount: to - from}
	}
	return Delta{Amount: from - to, Negative: true}
}

func (d Delta) IsZero() bool {
	return d.Amount == 0
}
