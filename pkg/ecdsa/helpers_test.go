package ecdsa

import (
	"math/big"
	"testing"

	"github.com/cronokirby/saferith"
	"github.com/stretchr/testify/require"
	"github.com/taurusgroup/recoverable-ecdsa/pkg/math/curve"
)

// tinyGroup is y² = x³ + 2x + 4 over F₁₁: a cyclic group of order 17 with
// cofactor 1 and generator (0, 2). Small enough that every value below can
// be checked by hand.
func tinyGroup(t *testing.T) curve.Curve {
	t.Helper()
	group, err := curve.NewWeierstrass(curve.Params{
		Name: "tiny17",
		P:    big.NewInt(11),
		A:    big.NewInt(2),
		B:    big.NewInt(4),
		Gx:   big.NewInt(0),
		Gy:   big.NewInt(2),
		N:    big.NewInt(17),
		H:    1,
	})
	require.NoError(t, err)
	return group
}

// cofactorGroup is y² = x³ + 4 over F₁₉: 21 points, subgroup of order 7
// generated by (1, 9), cofactor 3. The subgroup's x coordinates are
// {1, 7, 11}, so ephemeral points with x ≥ n occur routinely and exercise
// the upper recovery code bits.
func cofactorGroup(t *testing.T) curve.Curve {
	t.Helper()
	group, err := curve.NewWeierstrass(curve.Params{
		Name: "cofactor3",
		P:    big.NewInt(19),
		A:    big.NewInt(0),
		B:    big.NewInt(4),
		Gx:   big.NewInt(1),
		Gy:   big.NewInt(9),
		N:    big.NewInt(7),
		H:    3,
	})
	require.NoError(t, err)
	return group
}

func scalarFromUint(group curve.Curve, v uint64) curve.Scalar {
	return group.NewScalar().SetNat(new(saferith.Nat).SetUint64(v))
}

// byteQueue replays a fixed sequence of bytes, for forcing nonces.
type byteQueue struct {
	bytes []byte
}

func (q *byteQueue) Read(p []byte) (int, error) {
	for i := range p {
		p[i] = q.bytes[0]
		q.bytes = q.bytes[1:]
	}
	return len(p), nil
}

// repeatReader yields the same byte forever.
type repeatReader struct {
	b byte
}

func (r *repeatReader) Read(p []byte) (int, error) {
	for i := range p {
		p[i] = r.b
	}
	return len(p), nil
}
