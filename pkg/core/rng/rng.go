// Package rng implements the seeded xorshift128 generator that drives every
// random decision of a plot.
//
// A plot is a pure function of its seed: the seed (a token or block hash in
// hex) is expanded into four 32-bit state words, and every call to
// [RNG.Random] advances that single stream. Two generators built from the same
// seed produce identical sequences on every platform, because all state
// arithmetic is done on uint32 with native wraparound.
//
// Seed layout: state word i is parsed from the 8 hex characters at offset
// 5+8i, so a usable seed needs at least [MinSeedLength] characters. The first
// five characters are a free prefix (typically "0x" plus padding, or "oo" for
// hashes minted elsewhere).
//
//	r, err := rng.New("0x00000000000000000000000000000000001")
//	if err != nil {
//	    return err
//	}
//	x := r.Random(297) // float64 in [0, 297)
package rng

import (
	"crypto/rand"
	"crypto/sha256"
	"encoding/hex"
	"strconv"

	"github.com/gre/shattered/pkg/errors"
)

const (
	// seedOffset is the index of the first hex character used for state.
	seedOffset = 5

	// wordLen is the number of hex characters per state word.
	wordLen = 8

	// MinSeedLength is the shortest seed New accepts.
	MinSeedLength = seedOffset + 4*wordLen

	// seedPrefix is prepended by RandomSeed and SeedFromString.
	seedPrefix = "0x000"
)

// twoPow32 scales a uint32 into [0, 1).
const twoPow32 = 4294967296.0

// RNG is a xorshift128 generator. It is not safe for concurrent use; each
// generation run owns its own RNG.
type RNG struct {
	s [4]uint32
}

// New expands seed into a generator. It fails with an INVALID_SEED error when
// the seed is shorter than MinSeedLength, when a state slice is not
// hexadecimal, or when the state would be all zero (xorshift never leaves
// the zero state).
func New(seed string) (*RNG, error) {
	if len(seed) < MinSeedLength {
		return nil, errors.New(errors.ErrCodeInvalidSeed,
			"seed must have at least %d characters, got %d", MinSeedLength, len(seed))
	}
	var r RNG
	for i := range r.s {
		start := seedOffset + i*wordLen
		word := seed[start : start+wordLen]
		v, err := strconv.ParseUint(word, 16, 32)
		if err != nil {
			return nil, errors.Wrap(errors.ErrCodeInvalidSeed, err,
				"seed characters %d-%d are not hexadecimal: %q", start, start+wordLen-1, word)
		}
		r.s[i] = uint32(v)
	}
	if r.s == [4]uint32{} {
		return nil, errors.New(errors.ErrCodeInvalidSeed, "seed expands to an all-zero state")
	}
	return &r, nil
}

// MustNew is like New but panics on an invalid seed. Intended for tests and
// package-level fixtures.
func MustNew(seed string) *RNG {
	r, err := New(seed)
	if err != nil {
		panic(err)
	}
	return r
}

// Random advances the stream and returns a float64 in [0, scale).
func (r *RNG) Random(scale float64) float64 {
	t := r.s[3]
	r.s[3] = r.s[2]
	r.s[2] = r.s[1]
	s := r.s[0]
	r.s[1] = s
	t ^= t << 11
	r.s[0] ^= t ^ (t >> 8) ^ (s >> 19)
	return scale * float64(r.s[0]) / twoPow32
}

// Float returns Random(1).
func (r *RNG) Float() float64 { return r.Random(1) }

// Range returns a float64 in [lo, hi).
func (r *RNG) Range(lo, hi float64) float64 {
	return lo + r.Random(hi-lo)
}

// Intn returns an int in [0, n). It returns 0 for n <= 0 without advancing
// the stream.
func (r *RNG) Intn(n int) int {
	if n <= 0 {
		return 0
	}
	return int(r.Random(float64(n)))
}

// Bool reports true with probability p.
func (r *RNG) Bool(p float64) bool {
	return r.Random(1) < p
}

// Shuffle permutes n elements with a Fisher-Yates pass, calling swap like
// sort.Slice does.
func (r *RNG) Shuffle(n int, swap func(i, j int)) {
	for i := n - 1; i > 0; i-- {
		j := r.Intn(i + 1)
		swap(i, j)
	}
}

// State returns a copy of the four state words, for tracing and tests.
func (r *RNG) State() [4]uint32 { return r.s }

// RandomSeed returns a fresh seed drawn from crypto/rand.
func RandomSeed() string {
	var b [16]byte
	if _, err := rand.Read(b[:]); err != nil {
		// crypto/rand only fails when the OS entropy source is broken.
		panic(err)
	}
	return seedPrefix + hex.EncodeToString(b[:])
}

// SeedFromString derives a valid seed from arbitrary text, so that a phrase
// like "sunday plot" can name a reproducible plot.
func SeedFromString(s string) string {
	sum := sha256.Sum256([]byte(s))
	return seedPrefix + hex.EncodeToString(sum[:16])
}
