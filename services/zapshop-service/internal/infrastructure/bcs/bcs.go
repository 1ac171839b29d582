// Package bcs encodes the fixed-width unsigned integers shop entry functions
// take as arguments. Values are little-endian with no length prefix.
package bcs

import (
	"encoding/binary"
	"fmt"
)

func U8(v uint8) []byte {
	return []byte{v}
}

func U64(v uint64) []byte {
	b := make([]byte, 8)
	binary.LittleEndian.PutUint64(b, v)
	return b
}

// CheckedU8 encodes v as u8, rejecting values that do not fit.
func CheckedU8(name string, v int64) ([]byte, error) {
	if v < 0 || v > 0xff {
		return nil, fmt.Errorf("%s must be between 0 and 255, got %d", name, v)
	}
	return U8(uint8(v)), nil
}

// CheckedU64 encodes v as u64, rejecting negatives.
func CheckedU64(name string, v int64) ([]byte, error) {
	if v < 0 {
		return nil, fmt.Errorf("%s must not be negative, got %d", name, v)
	}
	return U64(uint64(v)), nil
}
