// Copyright 2024 ChainSafe Systems (ON)
// SPDX-License-Identifier: LGPL-3.0-only

package common

import (
	"github.com/holiman/uint256"
)

// Difficulty is a monotone, summable measure of accumulated proof-of-work.
// It wraps uint256.Int, the same 256-bit scalar type the rest of the
// ecosystem uses for cumulative difficulty and total terminal difficulty.
type Difficulty struct {
	v uint256.Int
}

// ZeroDifficulty is the difficulty of an empty chain.
func ZeroDifficulty() Difficulty {
	return Difficulty{}
}

// NewDifficulty builds a Difficulty from a uint64 value.
func NewDifficulty(v uint64) Difficulty {
	var d Difficulty
	d.v.SetUint64(v)
	return d
}

// Add returns d + other, without mutating either operand.
func (d Difficulty) Add(other Difficulty) Difficulty {
	var sum Difficulty
	sum.v.Add(&d.v, &other.v)
	return sum
}

// Sub returns d - other, saturating at zero.
func (d Difficulty) Sub(other Difficulty) Difficulty {
	if d.Cmp(other) <= 0 {
		return Difficulty{}
	}
	var diff Difficulty
	diff.v.Sub(&d.v, &other.v)
	return diff
}

// Cmp returns -1, 0 or 1 as d is less than, equal to, or greater than other.
func (d Difficulty) Cmp(other Difficulty) int {
	return d.v.Cmp(&other.v)
}

// GreaterThan reports whether d > other.
func (d Difficulty) GreaterThan(other Difficulty) bool {
	return d.Cmp(other) > 0
}

// LessOrEqual reports whether d <= other.
func (d Difficulty) LessOrEqual(other Difficulty) bool {
	return d.Cmp(other) <= 0
}

// IsZero reports whether d is the zero difficulty.
func (d Difficulty) IsZero() bool {
	return d.v.IsZero()
}

// Uint64 returns the difficulty truncated to a uint64, for logging.
func (d Difficulty) Uint64() uint64 {
	return d.v.Uint64()
}

// String renders the difficulty in base 10.
func (d Difficulty) String() string {
	return d.v.Dec()
}
