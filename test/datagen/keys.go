// Copyright (c) 2024 The VeChainThor developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package datagen

import (
	"crypto/rand"

	"github.com/vechain/stakeledger/ledger"
)

// RandPubkey returns a random non-zero key.
func RandPubkey() ledger.Pubkey {
	var k ledger.Pubkey
	for k.IsZero() {
		rand.Read(k[:])
	}
	return k
}

// RandPubkeys returns n distinct random keys.
func RandPubkeys(n int) []ledger.Pubkey {
	seen := make(map[ledger.Pubkey]struct{}, n)
	keys := make([]ledger.Pubkey, 0, n)
	for len(keys) < n {
		k := RandPubkey()
		if _, ok := seen[k]; ok {
			continue
		}
		seen[k] = struct{}{}
		keys = append(keys, k)
	}
	return keys
}
