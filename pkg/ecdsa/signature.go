// Package ecdsa implements ECDSA signing, verification and public key
// recovery over any group implementing the curve interfaces.
//
// The secret key is a scalar d ∈ (0, n) held by the caller; the public key
// is the point d⋅G. Signatures come in two shapes: the base form (r, s), and
// a recoverable form which additionally carries a small recovery code
// pinning the ephemeral point, so that the public key can be reconstructed
// from the signature and message alone.
package ecdsa

import (
	"errors"

	"github.com/fxamacker/cbor/v2"
	"github.com/taurusgroup/recoverable-ecdsa/pkg/math/curve"
)

// Signature is a base form ECDSA signature.
//
// Both components are scalars and therefore already reduced mod n; the
// (0, n) range invariant is re-checked wherever a signature is consumed by
// rejecting zero components.
type Signature struct {
	// R is the x coordinate of the ephemeral point, reduced mod n.
	R curve.Scalar
	// S is the proof scalar k⁻¹(e + r·d).
	S curve.Scalar
}

// RecoverableSignature is a signature carrying the recovery code assigned
// at signing time.
//
// Bit 0 of V is the parity of the ephemeral point's y coordinate, after
// low-s normalization. The remaining bits hold the multiple of n that was
// folded into R when the ephemeral x coordinate was reduced; they are only
// nonzero on curves whose field prime exceeds n, and their meaning depends
// on the curve's cofactor.
//
// Recoverable signatures are always low-s normalized.
type RecoverableSignature struct {
	Signature
	V uint8
}

// Sig is implemented by both signature shapes.
type Sig interface {
	Verify(public curve.Point, hash []byte) bool
	Base() *Signature
}

// EmptySignature returns a Signature with a given group, ready for
// unmarshalling.
func EmptySignature(group curve.Curve) *Signature {
	return &Signature{R: group.NewScalar(), S: group.NewScalar()}
}

// EmptyRecoverableSignature returns a RecoverableSignature with a given
// group, ready for unmarshalling.
func EmptyRecoverableSignature(group curve.Curve) *RecoverableSignature {
	return &RecoverableSignature{Signature: *EmptySignature(group)}
}

// Group returns the elliptic curve group associated with this signature.
func (sig *Signature) Group() curve.Curve {
	return sig.R.Curve()
}

// Base returns the base form of the signature.
func (sig *Signature) Base() *Signature {
	return sig
}

// Base returns the base form of the signature, dropping the recovery code.
func (sig *RecoverableSignature) Base() *Signature {
	return &sig.Signature
}

// Verify reports whether the signature is a valid signature of the given
// hash under the public key.
//
// Malformed signatures make Verify return false; it never panics on a
// signature that came out of unmarshalling, and has no side effects.
func (sig *Signature) Verify(public curve.Point, hash []byte) bool {
	// Scalars are reduced mod n by construction, so the r, s ∈ [1, n-1]
	// range check collapses to rejecting zero: out-of-range encodings are
	// already rejected when a signature is unmarshalled.
	if sig.R == nil || sig.S == nil || sig.R.IsZero() || sig.S.IsZero() {
		return false
	}
	group := public.Curve()

	// R' = s⁻¹⋅(e⋅G + r⋅Q), valid iff R'.x mod n == r.
	e := curve.FromHash(group, hash)
	sInv := group.NewScalar().Set(sig.S).Invert()
	R := sInv.Act(e.ActOnBase().Add(sig.R.Act(public)))
	if R.IsIdentity() {
		return false
	}
	return R.XScalar().Equal(sig.R)
}

// Normalize replaces s by n − s when s > n/2, canonicalizing the signature
// to the low-s form. It reports whether s was replaced.
//
// Normalizing an already normalized signature is a no-op. Note that flipping
// s invalidates the recovery code of a recoverable signature; the signing
// code flips the code's parity bit in the same step.
func (sig *Signature) Normalize() bool {
	if !sig.S.IsOverHalfOrder() {
		return false
	}
	sig.S.Negate()
	return true
}

// IsNormalized reports whether the signature is in low-s form.
func (sig *Signature) IsNormalized() bool {
	return !sig.S.IsOverHalfOrder()
}

type signatureMarshal struct {
	R, S cbor.RawMessage
}

type recoverableSignatureMarshal struct {
	R, S cbor.RawMessage
	V    uint8
}

func marshalScalars(r, s curve.Scalar) (rRaw, sRaw cbor.RawMessage, err error) {
	if rRaw, err = cbor.Marshal(r); err != nil {
		return
	}
	sRaw, err = cbor.Marshal(s)
	return
}

// MarshalBinary implements encoding.BinaryMarshaler.
func (sig *Signature) MarshalBinary() ([]byte, error) {
	r, s, err := marshalScalars(sig.R, sig.S)
	if err != nil {
		return nil, err
	}
	return cbor.Marshal(&signatureMarshal{R: r, S: s})
}

// UnmarshalBinary implements encoding.BinaryUnmarshaler.
//
// The receiver must have been produced by EmptySignature so that the scalars
// decode on the right group. Encodings of values outside (0, n) are
// rejected.
func (sig *Signature) UnmarshalBinary(data []byte) error {
	if sig.R == nil || sig.S == nil {
		return errors.New("ecdsa: use EmptySignature before unmarshalling")
	}
	var raw signatureMarshal
	if err := cbor.Unmarshal(data, &raw); err != nil {
		return err
	}
	return sig.unmarshalScalars(raw.R, raw.S)
}

func (sig *Signature) unmarshalScalars(rRaw, sRaw cbor.RawMessage) error {
	if err := cbor.Unmarshal(rRaw, sig.R); err != nil {
		return err
	}
	if err := cbor.Unmarshal(sRaw, sig.S); err != nil {
		return err
	}
	if sig.R.IsZero() || sig.S.IsZero() {
		return errors.New("ecdsa: signature component out of range")
	}
	return nil
}

// MarshalBinary implements encoding.BinaryMarshaler.
func (sig *RecoverableSignature) MarshalBinary() ([]byte, error) {
	r, s, err := marshalScalars(sig.R, sig.S)
	if err != nil {
		return nil, err
	}
	return cbor.Marshal(&recoverableSignatureMarshal{R: r, S: s, V: sig.V})
}

// UnmarshalBinary implements encoding.BinaryUnmarshaler.
//
// The receiver must have been produced by EmptyRecoverableSignature.
func (sig *RecoverableSignature) UnmarshalBinary(data []byte) error {
	if sig.R == nil || sig.S == nil {
		return errors.New("ecdsa: use EmptyRecoverableSignature before unmarshalling")
	}
	var raw recoverableSignatureMarshal
	if err := cbor.Unmarshal(data, &raw); err != nil {
		return err
	}
	if err := sig.unmarshalScalars(raw.R, raw.S); err != nil {
		return err
	}
	if !sig.IsNormalized() {
		return errors.New("ecdsa: recoverable signature is not low-s normalized")
	}
	sig.V = raw.V
	return nil
}
