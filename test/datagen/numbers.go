// Copyright (c) 2024 The VeChainThor developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package datagen

import (
	mathrand "math/rand/v2"
)

func RandInt() int {
	return mathrand.Int() //#nosec G404
}

func RandIntN(n int) int {
	return mathrand.N(n) //#nosec G404
}

// RandAmount returns an amount in [1, max].
func RandAmount(max uint64) uint64 {
	return mathrand.Uint64N(max) + 1 //#nosec G404
}

// RandUnixTime returns a unix timestamp within the next year of base.
func RandUnixTime(base uint64) uint64 {
	return base + mathrand.Uint64N(365*24*3600) //#nosec G404
}
