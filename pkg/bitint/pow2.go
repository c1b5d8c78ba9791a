// SPDX-License-Identifier: MIT
// Package bitint provides power-of-two helpers for buffer and FFT sizing.
// All operations are constant time, allocation free, and safe to call from
// real-time code.
package bitint

import "math/bits"

// NextPowerOfTwo returns the smallest power of 2 >= size.
// Exact powers of 2 are preserved; zero and negative sizes yield 1.
// The size-1 before Len is what keeps exact powers from doubling.
func NextPowerOfTwo(size int) int {
	if size <= 0 {
		return 1
	}
	return 1 << bits.Len64(uint64(size-1))
}

// IsPowerOfTwo reports whether n is a positive power of 2.
// Powers of 2 have exactly one bit set, so n&(n-1) clears it to zero.
func IsPowerOfTwo(n int) bool {
	return n > 0 && (n&(n-1)) == 0
}
