package otp

import (
	"crypto/rand"
	"crypto/subtle"
	"errors"
	"fmt"
	"io"
	"math/big"
	"strings"
	"time"
)

const (
	// DefaultDigits is the length of an issued code.
	DefaultDigits = 6
	// DefaultTTL is the lifetime of an issued code.
	DefaultTTL = 10 * time.Minute

	minDigits = 4
	maxDigits = 10
)

var (
	ErrNoChallenge = errors.New("otp: no outstanding challenge")
	ErrMismatch    = errors.New("otp: code mismatch")
	ErrExpired     = errors.New("otp: challenge expired")
	ErrDigits      = errors.New("otp: invalid digit count")
)

// Challenge is an outstanding code and its absolute expiry. The zero value
// means no challenge.
type Challenge struct {
	Code      string
	ExpiresAt time.Time
}

// Empty reports whether no code is outstanding.
func (c Challenge) Empty() bool {
	return c.Code == ""
}

// Generator produces codes from an entropy source.
type Generator struct {
	rand io.Reader
}

// NewGenerator returns a Generator reading from r, or crypto/rand when r is nil.
func NewGenerator(r io.Reader) *Generator {
	if r == nil {
		r = rand.Reader
	}
	return &Generator{rand: r}
}

// Code returns a uniformly distributed decimal code of the given length.
// Leading zeros are kept.
func (g *Generator) Code(digits int) (string, error) {
	if digits < minDigits || digits > maxDigits {
		return "", ErrDigits
	}

	var b strings.Builder
	b.Grow(digits)

	ten := big.NewInt(10)
	for i := 0; i < digits; i++ {
		n, err := rand.Int(g.rand, ten)
		if err != nil {
			return "", fmt.Errorf("otp: read entropy: %w", err)
		}
		b.WriteByte(byte('0' + n.Int64()))
	}
	return b.String(), nil
}

// Issue returns a fresh challenge expiring ttl after now.
func (g *Generator) Issue(now time.Time, ttl time.Duration, digits int) (Challenge, error) {
	code, err := g.Code(digits)
	if err != nil {
		return Challenge{}, err
	}
	return Challenge{Code: code, ExpiresAt: now.Add(ttl)}, nil
}

// Check validates supplied against c at instant now. An expired challenge is
// rejected even when the code matches.
func Check(c Challenge, supplied string, now time.Time) error {
	if c.Empty() {
		return ErrNoChallenge
	}
	if len(supplied) != len(c.Code) || subtle.ConstantTimeCompare([]byte(supplied), []byte(c.Code)) != 1 {
		return ErrMismatch
	}
	if now.After(c.ExpiresAt) {
		return ErrExpired
	}
	return nil
}
