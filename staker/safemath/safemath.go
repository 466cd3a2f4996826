// Copyright (c) 2025 The VeChainThor developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

// Package safemath provides overflow-checked arithmetic for the ledger's
// 64-bit amounts and 128-bit reward accumulators. Every failure is reported as
// reverts.ErrArithmeticOverflow.
package safemath

import (
	"math"

	"github.com/holiman/uint256"
	"github.com/pkg/errors"

	"github.com/vechain/stakeledger/staker/reverts"
)

// MaxU128 is the largest value a 128-bit accumulator may hold.
var MaxU128 = new(uint256.Int).SubUint64(new(uint256.Int).Lsh(uint256.NewInt(1), 128), 1)

func overflow(op string) error {
	return errors.Wrap(reverts.ErrArithmeticOverflow, op)
}

func CheckedAddU64(a, b uint64) (uint64, error) {
	if a > math.MaxUint64-b {
		return 0, overflow("add")
	}
	return a + b, nil
}

func CheckedSubU64(a, b uint64) (uint64, error) {
	if b > a {
		return 0, overflow("sub")
	}
	return a - b, nil
}

func SaturatingSubU64(a, b uint64) uint64 {
	if b > a {
		return 0
	}
	return a - b
}

func MinU64(a, b uint64) uint64 {
	if a < b {
		return a
	}
	return b
}

func MaxU64(a, b uint64) uint64 {
	if a > b {
		return a
	}
	return b
}

// U128 returns a new accumulator value, treating nil as zero.
func U128(v *uint256.Int) *uint256.Int {
	if v == nil {
		return new(uint256.Int)
	}
	return new(uint256.Int).Set(v)
}

func CheckedAddU128(a, b *uint256.Int) (*uint256.Int, error) {
	sum, carry := new(uint256.Int).AddOverflow(U128(a), U128(b))
	if carry || sum.Gt(MaxU128) {
		return nil, overflow("add u128")
	}
	return sum, nil
}

func CheckedSubU128(a, b *uint256.Int) (*uint256.Int, error) {
	diff, borrow := new(uint256.Int).SubOverflow(U128(a), U128(b))
	if borrow {
		return nil, overflow("sub u128")
	}
	return diff, nil
}

// MulDivU128 returns floor(a * b / denominator). The product is computed in 256 bits and
// the quotient must fit 128 bits. A zero denominator yields zero.
func MulDivU128(a, b, denominator *uint256.Int) (*uint256.Int, error) {
	if denominator == nil || denominator.IsZero() {
		return new(uint256.Int), nil
	}
	product, over := new(uint256.Int).MulOverflow(U128(a), U128(b))
	if over {
		return nil, overflow("mul u128")
	}
	quotient := product.Div(product, denominator)
	if quotient.Gt(MaxU128) {
		return nil, overflow("div u128")
	}
	return quotient, nil
}

// MulDivU64 returns floor(a * b / denominator) as a 64-bit amount. A zero denominator yields zero.
func MulDivU64(a, b *uint256.Int, denominator uint64) (uint64, error) {
	quotient, err := MulDivU128(a, b, uint256.NewInt(denominator))
	if err != nil {
		return 0, err
	}
	if !quotient.IsUint64() {
		return 0, overflow("narrow u64")
	}
	return quotient.Uint64(), nil
}
