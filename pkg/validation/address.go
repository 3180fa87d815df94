package validation

import (
	"encoding/hex"
	"fmt"
	"strings"
)

// addressHexLen is the length of a 22-byte core address in hex, without prefix.
const addressHexLen = 44

// ValidateAddress validates a wallet address format (44 hex characters, optional 0x)
func ValidateAddress(addr string) error {
	if addr == "" {
		return fmt.Errorf("address cannot be empty")
	}

	normalized := strings.TrimPrefix(addr, "0x")
	normalized = strings.TrimPrefix(normalized, "0X")

	if len(normalized) != addressHexLen {
		return fmt.Errorf("invalid address length: expected %d characters (without 0x), got %d", addressHexLen, len(normalized))
	}

	if _, err := hex.DecodeString(normalized); err != nil {
		return fmt.Errorf("invalid hex address: %w", err)
	}

	return nil
}

// NormalizeAddress converts an address to lowercase without 0x prefix
func NormalizeAddress(addr string) string {
	addr = strings.TrimPrefix(addr, "0x")
	addr = strings.TrimPrefix(addr, "0X")
	return strings.ToLower(addr)
}

// ValidateAndNormalizeAddress validates an address and returns its normalized form
func ValidateAndNormalizeAddress(addr string) (string, error) {
	if err := ValidateAddress(addr); err != nil {
		return "", err
	}
	return NormalizeAddress(addr), nil
}

// SameAddress compares two addresses ignoring case and prefix.
func SameAddress(a, b string) bool {
	return NormalizeAddress(a) == NormalizeAddress(b)
}
