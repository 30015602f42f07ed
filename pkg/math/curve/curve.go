package curve

import (
	"encoding"

	"github.com/cronokirby/saferith"
)

// Curve represents the domain parameters of an elliptic curve group used for
// signing: a generator of prime order, the scalar field modulo that order,
// and the point operations the protocol consumes.
//
// Implementations must be safe for concurrent use; all state lives in the
// Scalars and Points they hand out.
type Curve interface {
	// NewPoint returns the identity element, ready for unmarshalling.
	NewPoint() Point
	// NewBasePoint returns the generator.
	NewBasePoint() Point
	// NewScalar returns the zero scalar, ready for unmarshalling.
	NewScalar() Scalar
	// Name returns the name of the curve.
	Name() string
	// ScalarBytes returns the byte size of an encoded scalar,
	// i.e. ⌈bitlen(order)/8⌉.
	ScalarBytes() int
	// Order returns the order n of the prime subgroup generated by the
	// base point.
	Order() *saferith.Modulus
	// Cofactor returns the ratio between the number of points on the
	// curve and the subgroup order n. It is 1 for the standard signing
	// curves.
	Cofactor() int
	// LiftX solves the curve equation for the given affine x coordinate
	// and returns the solution with even y. An error is returned when x
	// is not the x coordinate of any point.
	//
	// The implementation may assume the base field prime is ≡ 3 mod 4, so
	// that square roots can be taken by exponentiation.
	LiftX(x *saferith.Nat) (Point, error)
}

// Scalar is an element of the scalar field, i.e. an integer modulo the group
// order n.
//
// Arithmetic methods mutate their receiver and return it, following the
// conventions of math/big.
type Scalar interface {
	encoding.BinaryMarshaler
	encoding.BinaryUnmarshaler
	Curve() Curve
	Add(Scalar) Scalar
	Sub(Scalar) Scalar
	Negate() Scalar
	Mul(Scalar) Scalar
	// Invert replaces the scalar with its multiplicative inverse mod n.
	// The scalar must not be zero.
	Invert() Scalar
	Equal(Scalar) bool
	IsZero() bool
	// IsOverHalfOrder reports whether the scalar is strictly greater than
	// n/2. Signatures whose s component satisfies this are replaced by
	// their low-s equivalent before a recovery code is attached.
	IsOverHalfOrder() bool
	Set(Scalar) Scalar
	// SetNat sets the scalar to x mod n.
	SetNat(*saferith.Nat) Scalar
	// Act returns the result of multiplying the given point by the scalar.
	Act(Point) Point
	// ActOnBase returns the result of multiplying the generator by the
	// scalar.
	ActOnBase() Point
}

// Point is an element of the elliptic curve group, including the point at
// infinity.
type Point interface {
	encoding.BinaryMarshaler
	encoding.BinaryUnmarshaler
	Curve() Curve
	Add(Point) Point
	Sub(Point) Point
	Negate() Point
	Set(Point) Point
	Equal(Point) bool
	IsIdentity() bool
	// XScalar returns the affine x coordinate reduced mod the group
	// order n. The point must not be the identity.
	XScalar() Scalar
	// XNat returns the affine x coordinate as an unreduced integer. The
	// point must not be the identity.
	XNat() *saferith.Nat
	// HasEvenY reports whether the affine y coordinate is even. The
	// point must not be the identity.
	HasEvenY() bool
	// InSubgroup reports whether the order of the point divides the
	// group order n, i.e. whether it lies in the subgroup generated by
	// the base point. Always true for cofactor 1 curves.
	InSubgroup() bool
}

// MakeNat returns the given scalar as a saferith.Nat.
func MakeNat(s Scalar) *saferith.Nat {
	bytes, err := s.MarshalBinary()
	if err != nil {
		panic(err)
	}
	return new(saferith.Nat).SetBytes(bytes)
}

// FromHash converts a hash value to a Scalar.
//
// There is some disagreement about how this should be done.
// [NSA] suggests that this is done in the obvious
// manner, but [SECG] truncates the hash to the bit-length of the curve order
// first. We follow [SECG] because that's what OpenSSL does. Additionally,
// OpenSSL right shifts excess bits from the number if the hash is too large
// and we mirror that too.
//
// The convention is part of the signature contract: signing and
// verification/recovery must map digests to integers the same way, otherwise
// they silently disagree on which message was signed.
//
// Taken from crypto/ecdsa.
func FromHash(group Curve, h []byte) Scalar {
	order := group.Order()
	orderBits := order.BitLen()
	orderBytes := (orderBits + 7) / 8
	if len(h) > orderBytes {
		h = h[:orderBytes]
	}
	s := new(saferith.Nat).SetBytes(h)
	excess := len(h)*8 - orderBits
	if excess > 0 {
		s.Rsh(s, uint(excess), -1)
	}
	return group.NewScalar().SetNat(s)
}
