package auth

import (
	"crypto/rand"
	"encoding/hex"
	"fmt"
	"strings"
)

const (
	// AdminTokenPrefix marks a raw admin bootstrap token so it's
	// recognizable in logs and UIs without decoding anything.
	AdminTokenPrefix = "jdg_admin_"

	keySuffixLength = 4

	keyLength = 20
)

var hasher Hasher = NewSHA256Hashing()

// Key is the triple produced when minting a new admin token: the raw value
// handed to the operator once, the hash stored in the catalog, and a masked
// form safe to display afterward.
type Key struct {
	PrefixedRawValue string
	HashedValue      string
	MaskedValue      string
}

func MaskKey(prefix string, value string) (string, error) {
	suffixOffset := len(value) - keySuffixLength

	if suffixOffset < 0 {
		return "", fmt.Errorf("mask value length is less than key suffix length (%d)", keySuffixLength)
	}

	lastFour := value[suffixOffset:]
	stars := strings.Repeat("*", suffixOffset)
	return prefix + stars + lastFour, nil
}

// HashToken reduces a raw "<prefix><hex>" token minted by GenerateKey back
// to the same hash GenerateKey recorded, so a lookup can compare like with
// like. Returns an error if the token doesn't carry prefix or isn't valid
// hex, which is always the case for a forged or truncated token.
func HashToken(prefix, rawToken string) (string, error) {
	hexPart := strings.TrimPrefix(rawToken, prefix)
	if hexPart == rawToken && prefix != "" {
		return "", fmt.Errorf("token missing expected prefix %q", prefix)
	}

	keyBytes, err := hex.DecodeString(hexPart)
	if err != nil {
		return "", fmt.Errorf("token is not valid hex: %w", err)
	}

	return hasher.Hash(keyBytes), nil
}

// GenerateKey mints a new admin token, returning its raw form alongside the
// hash that should be persisted - the raw value is never stored.
func GenerateKey(prefix string) (Key, error) {
	keyBytes := make([]byte, keyLength)

	_, err := rand.Read(keyBytes)
	if err != nil {
		return Key{}, err
	}

	generatedToken := hex.EncodeToString(keyBytes)

	mask, err := MaskKey(prefix, generatedToken)
	if err != nil {
		return Key{}, err
	}

	return Key{
		PrefixedRawValue: prefix + generatedToken,
		HashedValue:      hasher.Hash(keyBytes),
		MaskedValue:      mask,
	}, nil
}
