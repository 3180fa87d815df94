package auth

import (
	"errors"
	"fmt"

	"github.com/core-coin/go-core/v2/accounts"
	"github.com/core-coin/go-core/v2/crypto"
)

var ErrInvalidSignature = errors.New("invalid signature")

// SignatureRecoverer returns the wallet address that signed a message.
type SignatureRecoverer interface {
	RecoverAddress(message string, signature []byte) (string, error)
}

// CoreRecoverer recovers signers of Core personal messages: an ed448 signature
// with the signer's public key appended, over
// SHA3("\x19Core Signed Message:\n" + len(message) + message).
type CoreRecoverer struct{}

func (CoreRecoverer) RecoverAddress(message string, signature []byte) (string, error) {
	if len(signature) != crypto.ExtendedSignatureLength {
		return "", fmt.Errorf("%w: expected %d bytes, got %d", ErrInvalidSignature, crypto.ExtendedSignatureLength, len(signature))
	}
	pub, err := crypto.SigToPub(accounts.TextHash([]byte(message)), signature)
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrInvalidSignature, err)
	}
	return crypto.PubkeyToAddress(pub).Hex(), nil
}
