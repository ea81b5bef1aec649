// Package sigcheck verifies detached protocol signatures: BIP340 Schnorr
// over secp256k1, with the x-only 32-byte key taken from the 33-byte
// compressed sender key and the message hashed with SHA-256.
package sigcheck

import (
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"

	"github.com/decred/dcrd/dcrec/secp256k1/v4/schnorr"
)

// ErrBadKey and ErrBadSignature indicate inputs that are not even decodable;
// a well-formed signature that simply does not verify is not an error.
var (
	ErrBadKey       = errors.New("bad public key")
	ErrBadSignature = errors.New("bad signature encoding")
)

const (
	compressedKeyLen = 33
	signatureLen     = 64
)

// Verify checks sigHex against the canonical signing payload and the
// sender's compressed public key. It returns (false, nil) for a well-formed
// signature that does not match, and an error only when the key or signature
// cannot be decoded.
func Verify(pubKeyHex, sigHex string, payload []byte) (bool, error) {
	keyBytes, err := hex.DecodeString(pubKeyHex)
	if err != nil {
		return false, fmt.Errorf("%w: %v", ErrBadKey, err)
	}
	if len(keyBytes) != compressedKeyLen {
		return false, fmt.Errorf("%w: want %d bytes, got %d", ErrBadKey, compressedKeyLen, len(keyBytes))
	}

	// BIP340 uses only the x coordinate; drop the parity byte.
	pubKey, err := schnorr.ParsePubKey(keyBytes[1:])
	if err != nil {
		return false, fmt.Errorf("%w: %v", ErrBadKey, err)
	}

	sigBytes, err := hex.DecodeString(sigHex)
	if err != nil {
		return false, fmt.Errorf("%w: %v", ErrBadSignature, err)
	}
	if len(sigBytes) != signatureLen {
		return false, fmt.Errorf("%w: want %d bytes, got %d", ErrBadSignature, signatureLen, len(sigBytes))
	}
	sig, err := schnorr.ParseSignature(sigBytes)
	if err != nil {
		return false, fmt.Errorf("%w: %v", ErrBadSignature, err)
	}

	digest := sha256.Sum256(payload)
	return sig.Verify(digest[:], pubKey), nil
}
