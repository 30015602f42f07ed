package curve

import (
	"errors"
	"fmt"
	"math/big"

	"github.com/cronokirby/saferith"
)

// Params holds the domain parameters of a short Weierstrass curve
// y² = x³ + ax + b over the prime field F_p, together with a base point
// generating a subgroup of prime order n and cofactor h.
type Params struct {
	Name   string
	P      *big.Int
	A, B   *big.Int
	Gx, Gy *big.Int
	N      *big.Int
	H      int
}

// Weierstrass is a curve group built from explicit domain parameters.
//
// It exists for callers who already hold domain parameters for a curve
// without a dedicated backend, including curves with cofactor > 1. The
// arithmetic is plain affine math/big arithmetic and makes no attempt at
// constant-time behaviour; use a dedicated backend such as Secp256k1 when
// one exists.
type Weierstrass struct {
	name        string
	p, a, b     *big.Int
	gx, gy      *big.Int
	n           *big.Int
	h           int
	order       *saferith.Modulus
	halfN       *big.Int
	scalarBytes int
	fieldBytes  int
}

// NewWeierstrass validates the given domain parameters and returns the
// curve they describe.
//
// LiftX, and therefore public key recovery, additionally requires
// p ≡ 3 mod 4; this is not checked here.
func NewWeierstrass(params Params) (*Weierstrass, error) {
	if params.P == nil || params.A == nil || params.B == nil ||
		params.Gx == nil || params.Gy == nil || params.N == nil {
		return nil, errors.New("curve.NewWeierstrass: missing parameter")
	}
	if params.P.Sign() <= 0 || params.N.Sign() <= 0 {
		return nil, errors.New("curve.NewWeierstrass: p and n must be positive")
	}
	if params.H < 1 {
		return nil, errors.New("curve.NewWeierstrass: cofactor must be at least 1")
	}
	c := &Weierstrass{
		name:        params.Name,
		p:           new(big.Int).Set(params.P),
		a:           new(big.Int).Set(params.A),
		b:           new(big.Int).Set(params.B),
		gx:          new(big.Int).Set(params.Gx),
		gy:          new(big.Int).Set(params.Gy),
		n:           new(big.Int).Set(params.N),
		h:           params.H,
		order:       saferith.ModulusFromBytes(params.N.Bytes()),
		halfN:       new(big.Int).Rsh(params.N, 1),
		scalarBytes: (params.N.BitLen() + 7) / 8,
		fieldBytes:  (params.P.BitLen() + 7) / 8,
	}
	if !c.isOnCurve(c.gx, c.gy) {
		return nil, errors.New("curve.NewWeierstrass: base point is not on the curve")
	}
	if _, _, inf := c.scalarMult(c.n, c.gx, c.gy, false); !inf {
		return nil, errors.New("curve.NewWeierstrass: base point order does not divide n")
	}
	return c, nil
}

func (c *Weierstrass) NewPoint() Point {
	return &weierstrassPoint{c: c, inf: true}
}

func (c *Weierstrass) NewBasePoint() Point {
	return &weierstrassPoint{
		c: c,
		x: new(big.Int).Set(c.gx),
		y: new(big.Int).Set(c.gy),
	}
}

func (c *Weierstrass) NewScalar() Scalar {
	return &weierstrassScalar{c: c, v: new(big.Int)}
}

func (c *Weierstrass) Name() string {
	return c.name
}

func (c *Weierstrass) ScalarBytes() int {
	return c.scalarBytes
}

func (c *Weierstrass) Order() *saferith.Modulus {
	return c.order
}

func (c *Weierstrass) Cofactor() int {
	return c.h
}

func (c *Weierstrass) LiftX(x *saferith.Nat) (Point, error) {
	xInt := x.Big()
	if xInt.Cmp(c.p) >= 0 {
		return nil, errors.New("curve.Weierstrass.LiftX: x is larger than the field prime")
	}
	rhs := c.rhs(xInt)
	y := new(big.Int).ModSqrt(rhs, c.p)
	if y == nil {
		return nil, errors.New("curve.Weierstrass.LiftX: x is not on the curve")
	}
	if y.Bit(0) == 1 {
		y.Sub(c.p, y)
	}
	return &weierstrassPoint{c: c, x: xInt, y: y}, nil
}

// rhs returns x³ + ax + b mod p.
func (c *Weierstrass) rhs(x *big.Int) *big.Int {
	out := new(big.Int).Mul(x, x)
	out.Mod(out, c.p)
	out.Add(out, c.a)
	out.Mul(out, x)
	out.Add(out, c.b)
	out.Mod(out, c.p)
	return out
}

func (c *Weierstrass) isOnCurve(x, y *big.Int) bool {
	lhs := new(big.Int).Mul(y, y)
	lhs.Mod(lhs, c.p)
	return lhs.Cmp(c.rhs(x)) == 0
}

// add returns the affine sum of (x1,y1) and (x2,y2); inf flags mark the
// point at infinity.
func (c *Weierstrass) add(x1, y1 *big.Int, inf1 bool, x2, y2 *big.Int, inf2 bool) (x3, y3 *big.Int, inf3 bool) {
	if inf1 {
		return x2, y2, inf2
	}
	if inf2 {
		return x1, y1, inf1
	}
	var lambda *big.Int
	if x1.Cmp(x2) == 0 {
		sum := new(big.Int).Add(y1, y2)
		sum.Mod(sum, c.p)
		if sum.Sign() == 0 {
			return nil, nil, true
		}
		// Doubling: λ = (3x² + a) / 2y.
		num := new(big.Int).Mul(x1, x1)
		num.Mul(num, big.NewInt(3))
		num.Add(num, c.a)
		den := new(big.Int).Lsh(y1, 1)
		lambda = num.Mul(num, den.ModInverse(den, c.p))
	} else {
		// λ = (y2 - y1) / (x2 - x1).
		num := new(big.Int).Sub(y2, y1)
		den := new(big.Int).Sub(x2, x1)
		den.Mod(den, c.p)
		lambda = num.Mul(num, den.ModInverse(den, c.p))
	}
	lambda.Mod(lambda, c.p)

	x3 = new(big.Int).Mul(lambda, lambda)
	x3.Sub(x3, x1)
	x3.Sub(x3, x2)
	x3.Mod(x3, c.p)
	y3 = new(big.Int).Sub(x1, x3)
	y3.Mul(y3, lambda)
	y3.Sub(y3, y1)
	y3.Mod(y3, c.p)
	return x3, y3, false
}

// scalarMult returns k·(x,y) by double-and-add.
func (c *Weierstrass) scalarMult(k, x, y *big.Int, inf bool) (rx, ry *big.Int, rinf bool) {
	rinf = true
	px, py, pinf := x, y, inf
	for i := 0; i < k.BitLen(); i++ {
		if k.Bit(i) == 1 {
			rx, ry, rinf = c.add(rx, ry, rinf, px, py, pinf)
		}
		px, py, pinf = c.add(px, py, pinf, px, py, pinf)
	}
	return rx, ry, rinf
}

type weierstrassScalar struct {
	c *Weierstrass
	v *big.Int
}

func (c *Weierstrass) castScalar(generic Scalar) *weierstrassScalar {
	out, ok := generic.(*weierstrassScalar)
	if !ok || out.c != c {
		panic(fmt.Sprintf("failed to convert to weierstrassScalar on %s: %v", c.name, generic))
	}
	return out
}

// MarshalBinary implements encoding.BinaryMarshaler.
func (s *weierstrassScalar) MarshalBinary() ([]byte, error) {
	out := make([]byte, s.c.scalarBytes)
	s.v.FillBytes(out)
	return out, nil
}

// UnmarshalBinary implements encoding.BinaryUnmarshaler.
func (s *weierstrassScalar) UnmarshalBinary(data []byte) error {
	if len(data) != s.c.scalarBytes {
		return fmt.Errorf("invalid length for %s scalar: %d", s.c.name, len(data))
	}
	v := new(big.Int).SetBytes(data)
	if v.Cmp(s.c.n) >= 0 {
		return fmt.Errorf("invalid bytes for %s scalar", s.c.name)
	}
	s.v = v
	return nil
}

func (s *weierstrassScalar) Curve() Curve {
	return s.c
}

func (s *weierstrassScalar) Add(that Scalar) Scalar {
	other := s.c.castScalar(that)

	s.v.Add(s.v, other.v)
	s.v.Mod(s.v, s.c.n)
	return s
}

func (s *weierstrassScalar) Sub(that Scalar) Scalar {
	other := s.c.castScalar(that)

	s.v.Sub(s.v, other.v)
	s.v.Mod(s.v, s.c.n)
	return s
}

func (s *weierstrassScalar) Negate() Scalar {
	s.v.Neg(s.v)
	s.v.Mod(s.v, s.c.n)
	return s
}

func (s *weierstrassScalar) Mul(that Scalar) Scalar {
	other := s.c.castScalar(that)

	s.v.Mul(s.v, other.v)
	s.v.Mod(s.v, s.c.n)
	return s
}

func (s *weierstrassScalar) Invert() Scalar {
	s.v.ModInverse(s.v, s.c.n)
	return s
}

func (s *weierstrassScalar) Equal(that Scalar) bool {
	other := s.c.castScalar(that)

	return s.v.Cmp(other.v) == 0
}

func (s *weierstrassScalar) IsZero() bool {
	return s.v.Sign() == 0
}

func (s *weierstrassScalar) IsOverHalfOrder() bool {
	return s.v.Cmp(s.c.halfN) > 0
}

func (s *weierstrassScalar) Set(that Scalar) Scalar {
	other := s.c.castScalar(that)

	s.v.Set(other.v)
	return s
}

func (s *weierstrassScalar) SetNat(x *saferith.Nat) Scalar {
	s.v.Mod(x.Big(), s.c.n)
	return s
}

func (s *weierstrassScalar) Act(that Point) Point {
	other := s.c.castPoint(that)

	x, y, inf := s.c.scalarMult(s.v, other.x, other.y, other.inf)
	return &weierstrassPoint{c: s.c, x: x, y: y, inf: inf}
}

func (s *weierstrassScalar) ActOnBase() Point {
	x, y, inf := s.c.scalarMult(s.v, s.c.gx, s.c.gy, false)
	return &weierstrassPoint{c: s.c, x: x, y: y, inf: inf}
}

type weierstrassPoint struct {
	c    *Weierstrass
	x, y *big.Int
	inf  bool
}

func (c *Weierstrass) castPoint(generic Point) *weierstrassPoint {
	out, ok := generic.(*weierstrassPoint)
	if !ok || out.c != c {
		panic(fmt.Sprintf("failed to convert to weierstrassPoint on %s: %v", c.name, generic))
	}
	return out
}

// MarshalBinary implements encoding.BinaryMarshaler.
//
// The encoding mirrors the compressed form used for secp256k1: 0x02 or 0x03
// depending on the oddness of y, followed by the x coordinate.
func (p *weierstrassPoint) MarshalBinary() ([]byte, error) {
	if p.inf {
		return nil, errors.New("curve.Point.MarshalBinary: tried to marshal identity")
	}
	out := make([]byte, 1+p.c.fieldBytes)
	out[0] = 2 + byte(p.y.Bit(0))
	p.x.FillBytes(out[1:])
	return out, nil
}

// UnmarshalBinary implements encoding.BinaryUnmarshaler.
func (p *weierstrassPoint) UnmarshalBinary(data []byte) error {
	if len(data) != 1+p.c.fieldBytes {
		return fmt.Errorf("invalid length for %s point: %d", p.c.name, len(data))
	}
	if data[0] != 2 && data[0] != 3 {
		return errors.New("curve.Point.UnmarshalBinary: incorrect format")
	}
	x := new(big.Int).SetBytes(data[1:])
	if x.Cmp(p.c.p) >= 0 {
		return errors.New("curve.Point.UnmarshalBinary: x coordinate out of range")
	}
	y := new(big.Int).ModSqrt(p.c.rhs(x), p.c.p)
	if y == nil {
		return errors.New("curve.Point.UnmarshalBinary: x coordinate not on curve")
	}
	if y.Bit(0) != uint(data[0]&1) {
		y.Sub(p.c.p, y)
	}
	p.x, p.y, p.inf = x, y, false
	return nil
}

func (p *weierstrassPoint) Curve() Curve {
	return p.c
}

func (p *weierstrassPoint) Add(that Point) Point {
	other := p.c.castPoint(that)

	x, y, inf := p.c.add(p.x, p.y, p.inf, other.x, other.y, other.inf)
	return &weierstrassPoint{c: p.c, x: x, y: y, inf: inf}
}

func (p *weierstrassPoint) Sub(that Point) Point {
	return p.Add(that.Negate())
}

func (p *weierstrassPoint) Negate() Point {
	if p.inf {
		return &weierstrassPoint{c: p.c, inf: true}
	}
	y := new(big.Int).Sub(p.c.p, p.y)
	y.Mod(y, p.c.p)
	return &weierstrassPoint{c: p.c, x: new(big.Int).Set(p.x), y: y}
}

func (p *weierstrassPoint) Set(that Point) Point {
	other := p.c.castPoint(that)

	p.inf = other.inf
	if !other.inf {
		p.x = new(big.Int).Set(other.x)
		p.y = new(big.Int).Set(other.y)
	}
	return p
}

func (p *weierstrassPoint) Equal(that Point) bool {
	other := p.c.castPoint(that)

	if p.inf || other.inf {
		return p.inf == other.inf
	}
	return p.x.Cmp(other.x) == 0 && p.y.Cmp(other.y) == 0
}

func (p *weierstrassPoint) IsIdentity() bool {
	return p.inf
}

func (p *weierstrassPoint) XScalar() Scalar {
	return &weierstrassScalar{c: p.c, v: new(big.Int).Mod(p.x, p.c.n)}
}

func (p *weierstrassPoint) XNat() *saferith.Nat {
	return new(saferith.Nat).SetBytes(p.x.Bytes())
}

func (p *weierstrassPoint) HasEvenY() bool {
	return p.y.Bit(0) == 0
}

func (p *weierstrassPoint) InSubgroup() bool {
	if p.inf {
		return true
	}
	_, _, inf := p.c.scalarMult(p.c.n, p.x, p.y, false)
	return inf
}
