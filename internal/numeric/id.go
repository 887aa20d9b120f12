package numeric

import (
	"crypto/rand"
	"fmt"
	"math/big"
	"time"

	"github.com/davidting0918/VegaExchange/internal/vegaerr"
)

// MaxIDRetries bounds every collision-retry loop below. Exceeding it fails
// with vegaerr.ErrIDCollisionExhausted, per spec §4.1.
const MaxIDRetries = 16

// Exists checks whether a candidate ID is already taken. Callers back it
// with a repository lookup or an in-memory set.
type Exists func(candidate string) (bool, error)

// MintUserID mints a 6-digit random numeric string, retried on collision.
func MintUserID(exists Exists) (string, error) {
	for i := 0; i < MaxIDRetries; i++ {
		n, err := rand.Int(rand.Reader, big.NewInt(1_000_000))
		if err != nil {
			return "", vegaerr.Wrap(vegaerr.ErrStorage, err)
		}
		candidate := fmt.Sprintf("%06d", n.Int64())
		taken, err := exists(candidate)
		if err != nil {
			return "", err
		}
		if !taken {
			return candidate, nil
		}
	}
	return "", vegaerr.ErrIDCollisionExhausted
}

// MintPoolID mints "0x" followed by 40 random hex characters.
func MintPoolID(exists Exists) (string, error) {
	for i := 0; i < MaxIDRetries; i++ {
		buf := make([]byte, 20) // 20 bytes -> 40 hex chars
		if _, err := rand.Read(buf); err != nil {
			return "", vegaerr.Wrap(vegaerr.ErrStorage, err)
		}
		candidate := fmt.Sprintf("0x%x", buf)
		taken, err := exists(candidate)
		if err != nil {
			return "", err
		}
		if !taken {
			return candidate, nil
		}
	}
	return "", vegaerr.ErrIDCollisionExhausted
}

// MintTimestampID mints a 13-digit millisecond-timestamp ID, used for both
// order ids and trade ids. On collision the candidate is incremented by 1
// until unique, per spec §4.1 — this is a distinct retry strategy from the
// two mint functions above (which re-roll randomly) because the spec
// specifies incrementing, not re-rolling, for this ID shape.
func MintTimestampID(exists Exists, now time.Time) (string, error) {
	candidate := now.UnixMilli()
	for i := 0; i < MaxIDRetries; i++ {
		s := fmt.Sprintf("%d", candidate)
		taken, err := exists(s)
		if err != nil {
			return "", err
		}
		if !taken {
			return s, nil
		}
		candidate++
	}
	return "", vegaerr.ErrIDCollisionExhausted
}
