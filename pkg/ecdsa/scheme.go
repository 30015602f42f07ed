package ecdsa

import (
	"errors"
	"io"

	"github.com/taurusgroup/recoverable-ecdsa/pkg/math/curve"
)

// Shape selects which signature form a Scheme produces.
type Shape uint8

const (
	// ShapeBase produces plain (r, s) signatures.
	ShapeBase Shape = iota
	// ShapeRecoverable produces low-s normalized signatures carrying a
	// recovery code.
	ShapeRecoverable
)

// Recovery selects which public key recovery algorithm a Scheme uses.
type Recovery uint8

const (
	// RecoverGeneric enumerates all candidate keys; it works for both
	// shapes and any cofactor.
	RecoverGeneric Recovery = iota
	// RecoverFast reconstructs the single key pinned by the recovery
	// code; it requires ShapeRecoverable.
	RecoverFast
)

// Scheme fixes a group, a signature shape and a recovery algorithm at
// construction time.
//
// It bundles the choices a caller would otherwise thread through every
// call; the operations themselves are the package level ones. A Scheme is
// safe for concurrent use as long as its reader is.
type Scheme struct {
	group    curve.Curve
	shape    Shape
	recovery Recovery
	rand     io.Reader
}

// NewScheme returns a Scheme signing over the given group with nonces drawn
// from rand.
//
// RecoverFast is only usable with ShapeRecoverable, since the fast algorithm
// consumes the recovery code; mixing it with ShapeBase is rejected here
// rather than at recovery time.
func NewScheme(group curve.Curve, shape Shape, recovery Recovery, rand io.Reader) (*Scheme, error) {
	if shape > ShapeRecoverable {
		return nil, errors.New("ecdsa: unknown signature shape")
	}
	if recovery > RecoverFast {
		return nil, errors.New("ecdsa: unknown recovery algorithm")
	}
	if recovery == RecoverFast && shape != ShapeRecoverable {
		return nil, errors.New("ecdsa: fast recovery requires the recoverable shape")
	}
	return &Scheme{group: group, shape: shape, recovery: recovery, rand: rand}, nil
}

// Group returns the elliptic curve group the scheme signs over.
func (sch *Scheme) Group() curve.Curve {
	return sch.group
}

// Sign produces a signature of the given hash in the scheme's shape: a
// *Signature under ShapeBase, a *RecoverableSignature under
// ShapeRecoverable. On failure the returned Sig is nil, not a typed nil
// pointer inside the interface.
func (sch *Scheme) Sign(secret curve.Scalar, hash []byte) (Sig, error) {
	if sch.shape == ShapeRecoverable {
		sig, err := SignRecoverable(sch.rand, secret, hash)
		if err != nil {
			return nil, err
		}
		return sig, nil
	}
	sig, err := Sign(sch.rand, secret, hash)
	if err != nil {
		return nil, err
	}
	return sig, nil
}

// Verify reports whether the signature is valid for the given hash under
// the public key.
func (sch *Scheme) Verify(public curve.Point, sig Sig, hash []byte) bool {
	if sig == nil {
		return false
	}
	return sig.Verify(public, hash)
}

// Recover returns the candidate public keys consistent with the signature
// and hash, using the scheme's recovery algorithm.
//
// Under RecoverFast the result always holds exactly one point and the
// signature must be recoverable. Under RecoverGeneric the result holds at
// most 2·(cofactor+1) points, possibly none.
func (sch *Scheme) Recover(sig Sig, hash []byte) ([]curve.Point, error) {
	if sch.recovery == RecoverFast {
		rsig, ok := sig.(*RecoverableSignature)
		if !ok {
			return nil, errors.New("ecdsa: fast recovery needs a recoverable signature")
		}
		public, err := rsig.RecoverPublicKey(hash)
		if err != nil {
			return nil, err
		}
		return []curve.Point{public}, nil
	}
	return sig.Base().RecoverPublicKeys(hash), nil
}
