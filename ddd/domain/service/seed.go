package service

import "math/rand"

// maxSeed is the largest seed the backends accept (unsigned 32-bit range).
const maxSeed = 4294967295

// NormalizeSeed maps "randomize" requests to a concrete seed. Non-positive
// input (the API uses -1 for "pick one for me") is replaced with a random
// positive 32-bit value; positive input passes through unchanged so renders
// stay reproducible.
func NormalizeSeed(seed int64) int64 {
	if seed > 0 {
		return seed
	}
	return rand.Int63n(maxSeed) + 1
}
