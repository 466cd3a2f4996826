// Copyright 2017 The go-ethereum Authors
// This file is part of the go-ethereum library.
//
// The go-ethereum library is free software: you can redistribute it and/or modify
// it under the terms of the GNU Lesser General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
//
// The go-ethereum library is distributed in the hope that it will be useful,
// but WITHOUT ANY WARRANTY; without even the implied warranty of
// MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE. See the
// GNU Lesser General Public License for more details.
//
// You should have received a copy of the GNU Lesser General Public License
// along with the go-ethereum library. If not, see <http://www.gnu.org/licenses/>.

package log

import (
	"math/rand/v2"
	"testing"
)

var sink []byte

func BenchmarkPrettyInt64Logfmt(b *testing.B) {
	buf := make([]byte, 100)
	b.ReportAllocs()
	for b.Loop() {
		sink = appendInt64(buf, rand.Int64()) //#nosec G404
	}
}

func BenchmarkPrettyUint64Logfmt(b *testing.B) {
	buf := make([]byte, 100)
	b.ReportAllocs()
	for b.Loop() {
		sink = appendUint64(buf, rand.Uint64(), false) //#nosec G404
	}
}

func TestAppendUint64(t *testing.T) {
	tests := []struct {
		n    uint64
		neg  bool
		want string
	}{
		{0, false, "0"},
		{99999, false, "99999"},
		{100000, false, "100,000"},
		{1234567, true, "-1,234,567"},
		{18446744073709551615, false, "18,446,744,073,709,551,615"},
	}
	for _, tt := range tests {
		if got := string(appendUint64(nil, tt.n, tt.neg)); got != tt.want {
			t.Errorf("appendUint64(%d, %v) = %s, want %s", tt.n, tt.neg, got, tt.want)
		}
	}
}

func TestAppendGrouped(t *testing.T) {
	if got := string(appendGrouped(nil, "-12345678901234567890123")); got != "-12,345,678,901,234,567,890,123" {
		t.Errorf("appendGrouped = %s", got)
	}
}
