// Package wallet holds signing keys and on-chain balance lookups for the
// trading wallet.
package wallet

import (
	"crypto/ed25519"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"filippo.io/edwards25519"
	"github.com/gagliardetto/solana-go"
	"github.com/mr-tron/base58"
)

// ErrInvalidKey is returned when a private key string cannot be parsed in
// any supported encoding.
var ErrInvalidKey = errors.New("invalid private key: expected JSON byte array, base58 or hex")

// KeyEncoding identifies the encoding a private key was parsed from.
type KeyEncoding string

const (
	KeyEncodingJSONArray KeyEncoding = "json_array"
	KeyEncodingBase58    KeyEncoding = "base58"
	KeyEncodingHex       KeyEncoding = "hex"
)

// ParsedKey is the canonical key representation produced by ParsePrivateKey.
// All signing uses go through it; the raw input string is never kept.
type ParsedKey struct {
	Key      solana.PrivateKey
	Encoding KeyEncoding
}

// PublicKey returns the base58 public key for the parsed private key.
func (k *ParsedKey) PublicKey() solana.PublicKey {
	return k.Key.PublicKey()
}

// ParsePrivateKey parses a loosely-typed private key input into a canonical
// keypair. Accepted encodings, tried in order:
//   - JSON array of byte values (Phantom / solana-keygen export)
//   - base58 string
//   - hex string
//
// The decoded secret must be 64 bytes (full keypair) or 32 bytes (seed).
func ParsePrivateKey(raw string) (*ParsedKey, error) {
	s := strings.TrimSpace(raw)
	if s == "" {
		return nil, ErrInvalidKey
	}

	if strings.HasPrefix(s, "[") && strings.HasSuffix(s, "]") {
		var arr []int
		if err := json.Unmarshal([]byte(s), &arr); err == nil {
			secret := make([]byte, len(arr))
			for i, v := range arr {
				if v < 0 || v > 255 {
					return nil, fmt.Errorf("%w: byte value %d out of range", ErrInvalidKey, v)
				}
				secret[i] = byte(v)
			}
			key, err := keyFromSecret(secret)
			if err != nil {
				return nil, err
			}
			return &ParsedKey{Key: key, Encoding: KeyEncodingJSONArray}, nil
		}
	}

	if b, err := base58.Decode(s); err == nil && validSecretLen(len(b)) {
		key, err := keyFromSecret(b)
		if err != nil {
			return nil, err
		}
		return &ParsedKey{Key: key, Encoding: KeyEncodingBase58}, nil
	}

	if b, err := hex.DecodeString(s); err == nil && validSecretLen(len(b)) {
		key, err := keyFromSecret(b)
		if err != nil {
			return nil, err
		}
		return &ParsedKey{Key: key, Encoding: KeyEncodingHex}, nil
	}

	return nil, ErrInvalidKey
}

func validSecretLen(n int) bool {
	return n == 32 || n == 64
}

// keyFromSecret builds a full 64-byte private key from either a keypair or a
// 32-byte seed, then verifies the derived public key is on the ed25519 curve.
func keyFromSecret(secret []byte) (solana.PrivateKey, error) {
	var key solana.PrivateKey
	switch len(secret) {
	case 64:
		key = solana.PrivateKey(secret)
	case 32:
		key = solana.PrivateKey(ed25519.NewKeyFromSeed(secret))
	default:
		return nil, fmt.Errorf("%w: got %d bytes", ErrInvalidKey, len(secret))
	}

	pub := key.PublicKey()
	if _, err := new(edwards25519.Point).SetBytes(pub.Bytes()); err != nil {
		return nil, fmt.Errorf("public key not on curve: %w", err)
	}
	return key, nil
}
