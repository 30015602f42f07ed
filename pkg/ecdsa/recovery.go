package ecdsa

import (
	"errors"

	"github.com/taurusgroup/recoverable-ecdsa/pkg/math/curve"
)

// RecoverPublicKeys returns every public key under which the signature is a
// valid signature of the given hash.
//
// The signed r is the ephemeral x coordinate reduced mod n, so each
// candidate x is r + j·n for j up to the cofactor, and each x admits two
// points differing in the sign of y; candidates whose x does not lie on the
// curve, or whose lifted point falls outside the subgroup generated by the
// base point, are skipped. The result therefore holds at most
// 2·(cofactor+1) points and may be empty when the signature is malformed or
// inconsistent with the hash.
//
// The true signer's key is always among the results, but the algorithm
// cannot tell it apart from the other candidates; the caller disambiguates
// with outside knowledge, typically by comparing against a known key.
func (sig *Signature) RecoverPublicKeys(hash []byte) []curve.Point {
	if sig.R == nil || sig.S == nil || sig.R.IsZero() || sig.S.IsZero() {
		return nil
	}
	group := sig.Group()
	nNat := group.Order().Nat()

	// From s·R = e·G + r·Q: Q = r⁻¹·(s·R − e·G).
	rInv := group.NewScalar().Set(sig.R).Invert()
	minusEG := curve.FromHash(group, hash).ActOnBase().Negate()

	candidates := make([]curve.Point, 0, 2*(group.Cofactor()+1))
	x := curve.MakeNat(sig.R)
	for j := 0; j <= group.Cofactor(); j++ {
		if j > 0 {
			x.Add(x, nNat, -1)
		}
		R, err := group.LiftX(x)
		if err != nil {
			continue
		}
		if !R.InSubgroup() {
			// The lifted point exists but has the wrong order; no
			// ephemeral point produced by signing can reduce to
			// this x.
			continue
		}
		for _, ephemeral := range []curve.Point{R, R.Negate()} {
			Q := rInv.Act(sig.S.Act(ephemeral).Add(minusEG))
			candidates = append(candidates, Q)
		}
	}
	return candidates
}

// RecoverPublicKey reconstructs the unique public key under which the
// signature is valid for the given hash.
//
// The recovery code selects both the multiple of n folded into r and the
// parity of the ephemeral y coordinate, so no enumeration is needed. It only
// works on signatures produced by SignRecoverable (or equivalent: low-s
// normalized, code derived from the actual ephemeral point); feeding it an
// inconsistent code yields a wrong key or an error, never a panic.
func (sig *RecoverableSignature) RecoverPublicKey(hash []byte) (curve.Point, error) {
	if sig.R == nil || sig.S == nil || sig.R.IsZero() || sig.S.IsZero() {
		return nil, errors.New("ecdsa: signature component out of range")
	}
	group := sig.Group()
	if int(sig.V>>1) > group.Cofactor() {
		return nil, errors.New("ecdsa: recovery code exceeds cofactor range")
	}

	// Undo the reduction: x = r + (v >> 1)·n.
	x := curve.MakeNat(sig.R)
	nNat := group.Order().Nat()
	for j := uint8(0); j < sig.V>>1; j++ {
		x.Add(x, nNat, -1)
	}
	R, err := group.LiftX(x)
	if err != nil {
		return nil, err
	}
	// LiftX picks the even root; the code's parity bit says which one was
	// actually used.
	if sig.V&1 == 1 {
		R = R.Negate()
	}

	rInv := group.NewScalar().Set(sig.R).Invert()
	minusEG := curve.FromHash(group, hash).ActOnBase().Negate()
	return rInv.Act(sig.S.Act(R).Add(minusEG)), nil
}
