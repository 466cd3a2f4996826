// Copyright (c) 2025 The VeChainThor developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package ledger

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gopkg.in/yaml.v3"
)

func TestPubkey_StringRoundTrip(t *testing.T) {
	k := BytesToPubkey([]byte("validator"))

	parsed, err := ParsePubkey(k.String())
	require.NoError(t, err)
	assert.Equal(t, k, parsed)
	assert.False(t, k.IsZero())
	assert.True(t, Pubkey{}.IsZero())
}

func TestPubkey_Parse_Invalid(t *testing.T) {
	_, err := ParsePubkey("")
	assert.Error(t, err)

	_, err = ParsePubkey("abc")
	assert.EqualError(t, err, "invalid length")

	assert.Panics(t, func() { MustParsePubkey("0OIl") })
}

func TestPubkey_JSON(t *testing.T) {
	k := BytesToPubkey([]byte{1, 2, 3})

	data, err := json.Marshal(&k)
	require.NoError(t, err)
	assert.Equal(t, `"`+k.String()+`"`, string(data))

	var decoded Pubkey
	require.NoError(t, json.Unmarshal(data, &decoded))
	assert.Equal(t, k, decoded)

	var nilKey *Pubkey
	data, err = nilKey.MarshalJSON()
	require.NoError(t, err)
	assert.Equal(t, "null", string(data))
}

func TestPubkey_YAML(t *testing.T) {
	type doc struct {
		Key Pubkey `yaml:"key"`
	}
	in := doc{Key: BytesToPubkey([]byte("yaml"))}

	data, err := yaml.Marshal(&in)
	require.NoError(t, err)

	var out doc
	require.NoError(t, yaml.Unmarshal(data, &out))
	assert.Equal(t, in.Key, out.Key)
}

func TestBytesToPubkey(t *testing.T) {
	k := BytesToPubkey([]byte{0xff})
	assert.Equal(t, byte(0xff), k[PubkeyLength-1])
	assert.Equal(t, byte(0), k[0])

	long := make([]byte, PubkeyLength+4)
	long[4] = 0xaa
	k = BytesToPubkey(long)
	assert.Equal(t, byte(0xaa), k[0])
}

func TestPubkey_Equal(t *testing.T) {
	k := BytesToPubkey([]byte("a"))
	other := k
	assert.True(t, k.Equal(&other))
	assert.False(t, k.Equal(nil))
	different := BytesToPubkey([]byte("b"))
	assert.False(t, k.Equal(&different))
}
