// Copyright (c) 2026 The StakeHouse developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package house

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseBytes32(t *testing.T) {
	b32, err := ParseBytes32("0x0e5751c026e543b2e8ab2eb06099daa1d1e5df47778f7787faab45cdf12fe3a8")
	require.NoError(t, err)
	assert.Equal(t, "0x0e5751c026e543b2e8ab2eb06099daa1d1e5df47778f7787faab45cdf12fe3a8", b32.String())

	_, err = ParseBytes32("0x0e5751c0")
	assert.EqualError(t, err, "invalid length")

	_, err = ParseBytes32("zz0e5751c026e543b2e8ab2eb06099daa1d1e5df47778f7787faab45cdf12fe3a8")
	assert.EqualError(t, err, "invalid prefix")

	// prefixless input must still be valid hex
	_, err = ParseBytes32("zz5751c026e543b2e8ab2eb06099daa1d1e5df47778f7787faab45cdf12fe3a8")
	assert.Error(t, err)
}

func TestBytesToBytes32(t *testing.T) {
	// shorter input is left extended
	assert.Equal(t,
		MustParseBytes32("0x0000000000000000000000000000000000000000000000000000000000000001"),
		BytesToBytes32([]byte{1}))
	assert.True(t, Bytes32{}.IsZero())
}

func TestBytes32JSON(t *testing.T) {
	b32 := MustParseBytes32("0x0e5751c026e543b2e8ab2eb06099daa1d1e5df47778f7787faab45cdf12fe3a8")

	data, err := json.Marshal(&b32)
	require.NoError(t, err)
	assert.Equal(t, `"0x0e5751c026e543b2e8ab2eb06099daa1d1e5df47778f7787faab45cdf12fe3a8"`, string(data))

	data, err = json.Marshal(map[string]any{"topic": b32})
	require.NoError(t, err)
	assert.Equal(t, `{"topic":"0x0e5751c026e543b2e8ab2eb06099daa1d1e5df47778f7787faab45cdf12fe3a8"}`, string(data))

	data, err = json.Marshal(&b32)
	require.NoError(t, err)

	var decoded Bytes32
	require.NoError(t, json.Unmarshal(data, &decoded))
	assert.Equal(t, b32, decoded)
}

func TestBlake2b(t *testing.T) {
	assert.Equal(t,
		MustParseBytes32("0x0e5751c026e543b2e8ab2eb06099daa1d1e5df47778f7787faab45cdf12fe3a8"),
		Blake2b(nil))
	assert.Equal(t,
		MustParseBytes32("0x1f40c321970d6ed1e7b1cecba21510d5a158179bd5f231d5d75892d7ad67e3b2"),
		Blake2b([]byte("stakehouse")))

	// chunked input hashes like the concatenation
	assert.Equal(t,
		Blake2b([]byte("stakehouse")),
		Blake2b([]byte("stake"), []byte("house")))
}

func TestKeccak256(t *testing.T) {
	assert.Equal(t,
		MustParseBytes32("0xc5d2460186f7233c927e7db2dcc703c0e500b653ca82273b7bfad8045d85a470"),
		Keccak256())
	assert.Equal(t,
		Keccak256([]byte("stakehouse")),
		Keccak256([]byte("stake"), []byte("house")))
}
