// Copyright (c) 2025 The VeChainThor developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package ledger

import (
	"encoding"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/btcsuite/btcd/btcutil/base58"
)

// PubkeyLength is the length of an account key in bytes.
const PubkeyLength = 32

// Pubkey identifies an account: a pool config, a stake record, a collateral
// account, a vault or an authority.
type Pubkey [PubkeyLength]byte

var (
	_ json.Marshaler           = (*Pubkey)(nil)
	_ json.Unmarshaler         = (*Pubkey)(nil)
	_ encoding.TextMarshaler   = (*Pubkey)(nil)
	_ encoding.TextUnmarshaler = (*Pubkey)(nil)
)

// String implements stringer, using the base58 form.
func (k Pubkey) String() string {
	return base58.Encode(k[:])
}

// AbbrevString returns abbrev string presentation.
func (k Pubkey) AbbrevString() string {
	s := k.String()
	if len(s) <= 10 {
		return s
	}
	return fmt.Sprintf("%s…%s", s[:4], s[len(s)-4:])
}

// Bytes returns byte slice form of Pubkey.
func (k Pubkey) Bytes() []byte {
	return k[:]
}

// IsZero returns if Pubkey has all zero bytes.
func (k Pubkey) IsZero() bool {
	return k == Pubkey{}
}

// Equal reports whether k and other are the same key. A nil other never matches.
func (k Pubkey) Equal(other *Pubkey) bool {
	return other != nil && k == *other
}

// MarshalText implements encoding.TextMarshaler.
func (k Pubkey) MarshalText() ([]byte, error) {
	return []byte(k.String()), nil
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (k *Pubkey) UnmarshalText(text []byte) error {
	parsed, err := ParsePubkey(string(text))
	if err != nil {
		return err
	}
	*k = parsed
	return nil
}

// MarshalJSON implements json.Marshaler.
func (k *Pubkey) MarshalJSON() ([]byte, error) {
	if k == nil {
		return json.Marshal(nil)
	}
	return json.Marshal(k.String())
}

// UnmarshalJSON implements json.Unmarshaler.
func (k *Pubkey) UnmarshalJSON(data []byte) error {
	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		return err
	}
	return k.UnmarshalText([]byte(s))
}

// ParsePubkey converts the base58 presentation into Pubkey.
func ParsePubkey(s string) (Pubkey, error) {
	if s == "" {
		return Pubkey{}, errors.New("empty key")
	}
	b := base58.Decode(s)
	if len(b) != PubkeyLength {
		return Pubkey{}, errors.New("invalid length")
	}
	var k Pubkey
	copy(k[:], b)
	return k, nil
}

// MustParsePubkey converts the base58 presentation into Pubkey, panic on error.
func MustParsePubkey(s string) Pubkey {
	k, err := ParsePubkey(s)
	if err != nil {
		panic(err)
	}
	return k
}

// BytesToPubkey converts bytes slice into Pubkey.
// If b is larger than Pubkey length, b will be cropped (from the left).
// If b is smaller than Pubkey length, b will be extended (from the left).
func BytesToPubkey(b []byte) Pubkey {
	var k Pubkey
	if len(b) > PubkeyLength {
		b = b[len(b)-PubkeyLength:]
	}
	copy(k[PubkeyLength-len(b):], b)
	return k
}
