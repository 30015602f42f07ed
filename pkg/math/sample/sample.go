// Package sample implements rejection sampling of scalars from an entropy
// source.
package sample

import (
	"fmt"
	"io"

	"github.com/cronokirby/saferith"
	"github.com/taurusgroup/recoverable-ecdsa/pkg/math/curve"
)

const maxIterations = 255

var ErrMaxIterations = fmt.Errorf("sample: failed to generate after %d iterations", maxIterations)

func mustReadBits(rand io.Reader, buf []byte) {
	for i := 0; i < maxIterations; i++ {
		if _, err := io.ReadFull(rand, buf); err == nil {
			return
		}
	}
	panic(ErrMaxIterations)
}

// ModN samples an element of ℤₙ.
//
// The candidate is redrawn, not reduced, when it falls outside [0, n), so
// the result is uniform. The number of draws is unbounded but the rejection
// probability per draw is below 1/2 for any n.
func ModN(rand io.Reader, n *saferith.Modulus) *saferith.Nat {
	out := new(saferith.Nat)
	buf := make([]byte, (n.BitLen()+7)/8)
	for {
		mustReadBits(rand, buf)
		out.SetBytes(buf)
		_, _, lt := out.CmpMod(n)
		if lt == 1 {
			return out
		}
	}
}

// Scalar samples a nonzero scalar of the given group, uniformly in [1, n).
//
// This is the nonce generator used for signing: zero candidates are rejected
// and redrawn along with the out-of-range ones, never adjusted.
func Scalar(rand io.Reader, group curve.Curve) curve.Scalar {
	for {
		candidate := ModN(rand, group.Order())
		if candidate.EqZero() == 1 {
			continue
		}
		return group.NewScalar().SetNat(candidate)
	}
}

// ScalarPointPair samples a nonzero scalar x along with the point x⋅G.
func ScalarPointPair(rand io.Reader, group curve.Curve) (curve.Scalar, curve.Point) {
	s := Scalar(rand, group)
	return s, s.ActOnBase()
}
