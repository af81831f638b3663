// =============================
// File: internal/auctionhouse/pda/pda.go
// =============================
package pda

import (
	"crypto/sha256"
	"math"

	"filippo.io/edwards25519"
	"github.com/gagliardetto/solana-go"
	"github.com/pkg/errors"
)

const (
	// MaxSeeds and MaxSeedLength follow the runtime limits for program addresses.
	// The bump byte counts as one of the MaxSeeds seeds.
	MaxSeeds      = 16
	MaxSeedLength = 32

	pdaMarker = "ProgramDerivedAddress"
)

var (
	ErrAddressNotFound       = errors.New("unable to find a viable program address bump seed")
	ErrTooManySeeds          = errors.New("too many seeds")
	ErrMaxSeedLengthExceeded = errors.New("max seed length exceeded")
	ErrOnCurve               = errors.New("derived address lies on the ed25519 curve")
)

// CurvePredicate reports whether the 32 bytes encode a valid ed25519 point.
type CurvePredicate func(b []byte) bool

// IsOnCurve is the default predicate used by the bump search.
func IsOnCurve(b []byte) bool {
	_, err := new(edwards25519.Point).SetBytes(b)
	return err == nil
}

// CreateProgramAddress hashes the seeds together with the program id and rejects
// results that are valid curve points, since those could have a private key.
func CreateProgramAddress(onCurve CurvePredicate, program solana.PublicKey, seeds ...[]byte) (solana.PublicKey, error) {
	if len(seeds) > MaxSeeds {
		return solana.PublicKey{}, ErrTooManySeeds
	}

	h := sha256.New()
	for _, s := range seeds {
		if len(s) > MaxSeedLength {
			return solana.PublicKey{}, ErrMaxSeedLengthExceeded
		}
		if _, err := h.Write(s); err != nil {
			return solana.PublicKey{}, errors.Wrap(err, "failed to hash seed")
		}
	}
	for _, v := range [][]byte{program.Bytes(), []byte(pdaMarker)} {
		if _, err := h.Write(v); err != nil {
			return solana.PublicKey{}, errors.Wrap(err, "failed to hash seed")
		}
	}

	addr := solana.PublicKeyFromBytes(h.Sum(nil))
	if onCurve(addr[:]) {
		return solana.PublicKey{}, ErrOnCurve
	}
	return addr, nil
}

// FindProgramAddress tries bump candidates from 255 down to 0 and returns the
// first address that is off the curve together with its bump.
func FindProgramAddress(onCurve CurvePredicate, program solana.PublicKey, seeds ...[]byte) (solana.PublicKey, uint8, error) {
	if onCurve == nil {
		onCurve = IsOnCurve
	}
	if len(seeds) >= MaxSeeds {
		return solana.PublicKey{}, 0, ErrTooManySeeds
	}

	withBump := make([][]byte, len(seeds)+1)
	copy(withBump, seeds)
	bump := []byte{0}
	withBump[len(seeds)] = bump

	for candidate := math.MaxUint8; candidate >= 0; candidate-- {
		bump[0] = uint8(candidate)
		addr, err := CreateProgramAddress(onCurve, program, withBump...)
		if err == nil {
			return addr, uint8(candidate), nil
		}
		if err != ErrOnCurve {
			return solana.PublicKey{}, 0, err
		}
	}
	return solana.PublicKey{}, 0, ErrAddressNotFound
}
