package ecdsa

import (
	"fmt"
	"io"

	"github.com/cronokirby/saferith"
	"github.com/taurusgroup/recoverable-ecdsa/pkg/math/curve"
	"github.com/taurusgroup/recoverable-ecdsa/pkg/math/sample"
)

// maxSignAttempts bounds the retry loop discarding degenerate nonces.
//
// A single attempt fails with probability ≈ 2/n, so for cryptographic group
// sizes the cap is unreachable; it exists so that Sign has a terminating
// contract even on adversarial toy parameters.
const maxSignAttempts = 255

// ErrMaxAttempts is returned when signing failed to produce a
// non-degenerate signature after maxSignAttempts nonce draws.
var ErrMaxAttempts = fmt.Errorf("ecdsa: failed to sign after %d attempts", maxSignAttempts)

// Sign produces a base form signature of the given hash.
//
// The secret must be a scalar in (0, n); this is a caller obligation and is
// not checked. Nonces are drawn from rand, which must be a cryptographically
// secure source such as crypto/rand.Reader; draws whose ephemeral point or
// signature component degenerates to zero are discarded and retried.
func Sign(rand io.Reader, secret curve.Scalar, hash []byte) (*Signature, error) {
	sig, _, err := sign(rand, secret, hash)
	return sig, err
}

// SignRecoverable produces a recoverable, low-s normalized signature of the
// given hash.
//
// The recovery code records the parity of the ephemeral point's y coordinate
// and the multiple of n folded into r, so that RecoverPublicKey can undo the
// reduction without enumerating candidates.
func SignRecoverable(rand io.Reader, secret curve.Scalar, hash []byte) (*RecoverableSignature, error) {
	sig, v, err := sign(rand, secret, hash)
	if err != nil {
		return nil, err
	}
	rsig := &RecoverableSignature{Signature: *sig, V: v}
	if rsig.Normalize() {
		// n − s verifies against the negated ephemeral point, whose y
		// parity is the opposite one.
		rsig.V ^= 1
	}
	return rsig, nil
}

func sign(rand io.Reader, secret curve.Scalar, hash []byte) (*Signature, uint8, error) {
	group := secret.Curve()
	e := curve.FromHash(group, hash)

	for attempt := 0; attempt < maxSignAttempts; attempt++ {
		k := sample.Scalar(rand, group)
		R := k.ActOnBase()
		if R.IsIdentity() {
			continue
		}
		r := R.XScalar()
		if r.IsZero() {
			continue
		}

		// s = k⁻¹⋅(e + r·d)
		kInv := group.NewScalar().Set(k).Invert()
		s := group.NewScalar().Set(r).Mul(secret).Add(e).Mul(kInv)
		if s.IsZero() {
			continue
		}

		// The recovery code is derived from the ephemeral point before
		// any normalization: bit 0 is the parity of R.y, the upper bits
		// are R.x div n.
		v := uint8(reductionCount(R, group.Order())) << 1
		if !R.HasEvenY() {
			v |= 1
		}
		return &Signature{R: r, S: s}, v, nil
	}
	return nil, 0, ErrMaxAttempts
}

// reductionCount returns how many multiples of n were removed from the
// point's x coordinate when reducing it mod n. At most cofactor-many, since
// x < p < (h+1)·n.
func reductionCount(R curve.Point, n *saferith.Modulus) int {
	j := 0
	x := R.XNat()
	nNat := n.Nat()
	for {
		_, _, lt := x.CmpMod(n)
		if lt == 1 {
			return j
		}
		x.Sub(x, nNat, -1)
		j++
	}
}
