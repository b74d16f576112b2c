// Copyright 2024 ChainSafe Systems (ON)
// SPDX-License-Identifier: LGPL-3.0-only

// Package common holds the small value types shared by the chain sync core
// and its reference collaborators: block hashes and cumulative difficulty.
package common

import (
	"encoding/hex"
	"errors"
)

// HashLength is the size in bytes of a block hash.
const HashLength = 32

// Hash identifies a block header by its content hash.
type Hash [HashLength]byte

// ErrEmptyHash is returned when decoding an empty hex string.
var ErrEmptyHash = errors.New("common: empty hash")

// NewHash copies b into a Hash, left-padding with zeroes if short and
// keeping the trailing HashLength bytes if long.
func NewHash(b []byte) Hash {
	var h Hash
	if len(b) > HashLength {
		b = b[len(b)-HashLength:]
	}
	copy(h[HashLength-len(b):], b)
	return h
}

// HashFromHex decodes a 0x-prefixed or bare hex string into a Hash.
func HashFromHex(s string) (Hash, error) {
	if len(s) > 1 && s[0] == '0' && (s[1] == 'x' || s[1] == 'X') {
		s = s[2:]
	}
	if s == "" {
		return Hash{}, ErrEmptyHash
	}
	b, err := hex.DecodeString(s)
	if err != nil {
		return Hash{}, err
	}
	return NewHash(b), nil
}

// IsEmpty reports whether h is the zero hash.
func (h Hash) IsEmpty() bool {
	return h == Hash{}
}

// String renders the hash as a 0x-prefixed hex string.
func (h Hash) String() string {
	return "0x" + hex.EncodeToString(h[:])
}

// Short renders the first 4 bytes of the hash, for log lines.
func (h Hash) Short() string {
	return "0x" + hex.EncodeToString(h[:4])
}

// MarshalText implements encoding.TextMarshaler, for JSON status output.
func (h Hash) MarshalText() ([]byte, error) {
	return []byte(h.String()), nil
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (h *Hash) UnmarshalText(text []byte) error {
	decoded, err := HashFromHex(string(text))
	if err != nil {
		return err
	}
	*h = decoded
	return nil
}
