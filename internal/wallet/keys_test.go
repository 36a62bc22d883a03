package wallet

import (
	"crypto/ed25519"
	"crypto/rand"
	"encoding/hex"
	"encoding/json"
	"testing"

	"github.com/mr-tron/base58"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testKeypair(t *testing.T) ed25519.PrivateKey {
	t.Helper()
	_, priv, err := ed25519.GenerateKey(rand.Reader)
	require.NoError(t, err)
	return priv
}

func TestParsePrivateKey_Base58(t *testing.T) {
	priv := testKeypair(t)

	parsed, err := ParsePrivateKey(base58.Encode(priv))
	require.NoError(t, err)
	assert.Equal(t, KeyEncodingBase58, parsed.Encoding)
	assert.Equal(t, []byte(priv), []byte(parsed.Key))
}

func TestParsePrivateKey_JSONArray(t *testing.T) {
	priv := testKeypair(t)

	// json.Marshal base64-encodes []byte; build the int array form by hand.
	ints := make([]int, len(priv))
	for i, b := range priv {
		ints[i] = int(b)
	}
	arr, err := json.Marshal(ints)
	require.NoError(t, err)

	parsed, err := ParsePrivateKey(string(arr))
	require.NoError(t, err)
	assert.Equal(t, KeyEncodingJSONArray, parsed.Encoding)
	assert.Equal(t, []byte(priv), []byte(parsed.Key))
}

func TestParsePrivateKey_Hex(t *testing.T) {
	priv := testKeypair(t)

	parsed, err := ParsePrivateKey(hex.EncodeToString(priv))
	require.NoError(t, err)
	assert.Equal(t, KeyEncodingHex, parsed.Encoding)
}

func TestParsePrivateKey_SeedExpandsToKeypair(t *testing.T) {
	seed := make([]byte, 32)
	_, err := rand.Read(seed)
	require.NoError(t, err)

	parsed, err := ParsePrivateKey(base58.Encode(seed))
	require.NoError(t, err)
	assert.Len(t, []byte(parsed.Key), 64)

	want := ed25519.NewKeyFromSeed(seed)
	assert.Equal(t, []byte(want), []byte(parsed.Key))
}

func TestParsePrivateKey_CanonicalAcrossEncodings(t *testing.T) {
	priv := testKeypair(t)

	fromB58, err := ParsePrivateKey(base58.Encode(priv))
	require.NoError(t, err)
	fromHex, err := ParsePrivateKey(hex.EncodeToString(priv))
	require.NoError(t, err)

	assert.Equal(t, fromB58.PublicKey(), fromHex.PublicKey())
}

func TestParsePrivateKey_Invalid(t *testing.T) {
	for _, raw := range []string{"", "   ", "not-a-key", "[1,2,3]", "deadbeef"} {
		_, err := ParsePrivateKey(raw)
		assert.ErrorIs(t, err, ErrInvalidKey, "input %q", raw)
	}
}
