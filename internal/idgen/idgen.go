// Package idgen produces random fixed-length numeric identifiers and checks
// them for collisions against a caller-supplied existence predicate.
//
// Identifiers for a given minDigits are drawn uniformly from the half-open
// range [10^minDigits, 10^(minDigits+1)), so every value has exactly
// minDigits+1 decimal digits. Two callers using different digit lengths can
// never produce the same value.
package idgen

import (
	"context"
	"crypto/rand"
	"errors"
	"fmt"
	"io"
	"math/big"
)

// MaxDigits is the largest minDigits accepted by Generate. The upper bound of
// the range, 10^(MaxDigits+1), still fits into an int64.
const MaxDigits = 17

var (
	// ErrInvalidDigits is returned for minDigits outside [1, MaxDigits].
	ErrInvalidDigits = errors.New("invalid identifier length")

	// ErrExhausted is returned when a generator with an attempt cap keeps
	// hitting existing identifiers.
	ErrExhausted = errors.New("identifier space exhausted")
)

// ExistsFunc reports whether id is already in use.
type ExistsFunc func(ctx context.Context, id int64) (bool, error)

// Generator draws identifiers from a random source.
// The zero value is not usable; construct with New.
type Generator struct {
	rnd         io.Reader
	maxAttempts int
}

// Option configures a Generator.
type Option func(*Generator)

// WithReader replaces the random source (crypto/rand by default).
func WithReader(r io.Reader) Option {
	return func(g *Generator) {
		g.rnd = r
	}
}

// WithMaxAttempts caps the number of candidates tried per Generate call.
// Zero or a negative value means no cap.
func WithMaxAttempts(n int) Option {
	return func(g *Generator) {
		g.maxAttempts = n
	}
}

// New returns a Generator backed by crypto/rand.
func New(opts ...Option) *Generator {
	g := &Generator{rnd: rand.Reader}
	for _, o := range opts {
		o(g)
	}
	return g
}

// Range returns the bounds [lo, hi) used for the given digit length.
func Range(minDigits int) (lo, hi int64, err error) {
	if minDigits < 1 || minDigits > MaxDigits {
		return 0, 0, fmt.Errorf("%w: %d", ErrInvalidDigits, minDigits)
	}
	lo = 1
	for i := 0; i < minDigits; i++ {
		lo *= 10
	}
	return lo, lo * 10, nil
}

// Generate returns a random identifier with minDigits+1 digits for which
// exists reports false. It resamples on every collision. Errors returned by
// exists abort generation.
func (g *Generator) Generate(ctx context.Context, minDigits int, exists ExistsFunc) (int64, error) {
	lo, hi, err := Range(minDigits)
	if err != nil {
		return 0, err
	}
	span := big.NewInt(hi - lo)

	for attempt := 1; ; attempt++ {
		if err := ctx.Err(); err != nil {
			return 0, err
		}
		if g.maxAttempts > 0 && attempt > g.maxAttempts {
			return 0, fmt.Errorf("%w after %d attempts", ErrExhausted, g.maxAttempts)
		}

		n, err := rand.Int(g.rnd, span)
		if err != nil {
			return 0, fmt.Errorf("error reading random source: %w", err)
		}
		candidate := lo + n.Int64()

		taken, err := exists(ctx, candidate)
		if err != nil {
			return 0, fmt.Errorf("error checking identifier %d: %w", candidate, err)
		}
		if !taken {
			return candidate, nil
		}
	}
}
