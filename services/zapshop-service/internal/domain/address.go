package domain

import (
	"fmt"
	"strings"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/common/hexutil"
)

// ValidateAddress checks that addr is a 0x-prefixed hex account address of
// at most 32 bytes. The short form (leading zeros dropped) is accepted.
func ValidateAddress(addr string) error {
	_, err := decodeAddress(addr)
	return err
}

// CanonicalAddress returns the lowercase, zero-padded 32-byte form of addr.
func CanonicalAddress(addr string) (string, error) {
	b, err := decodeAddress(addr)
	if err != nil {
		return "", err
	}
	return common.BytesToHash(b).Hex(), nil
}

func decodeAddress(addr string) ([]byte, error) {
	addr = strings.TrimSpace(addr)
	if !strings.HasPrefix(addr, "0x") && !strings.HasPrefix(addr, "0X") {
		return nil, fmt.Errorf("address %q must start with 0x", addr)
	}
	digits := addr[2:]
	if len(digits) == 0 || len(digits) > 64 {
		return nil, fmt.Errorf("address %q must have 1 to 64 hex digits", addr)
	}
	if len(digits)%2 == 1 {
		digits = "0" + digits
	}
	b, err := hexutil.Decode("0x" + digits)
	if err != nil {
		return nil, fmt.Errorf("address %q: %w", addr, err)
	}
	return b, nil
}
