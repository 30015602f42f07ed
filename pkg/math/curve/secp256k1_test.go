package curve

import (
	"crypto/rand"
	"testing"

	"github.com/cronokirby/saferith"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func randomSecp256k1Scalar(t *testing.T) Scalar {
	t.Helper()
	group := Secp256k1{}
	buf := make([]byte, group.ScalarBytes())
	_, err := rand.Read(buf)
	require.NoError(t, err)
	return group.NewScalar().SetNat(new(saferith.Nat).SetBytes(buf))
}

func TestSecp256k1ScalarArithmetic(t *testing.T) {
	group := Secp256k1{}

	x := randomSecp256k1Scalar(t)
	minusX := group.NewScalar().Set(x).Negate()
	assert.True(t, group.NewScalar().Set(x).Add(minusX).IsZero(), "x + (-x) should be zero")

	xInv := group.NewScalar().Set(x).Invert()
	one := group.NewScalar().SetNat(new(saferith.Nat).SetUint64(1))
	assert.True(t, group.NewScalar().Set(x).Mul(xInv).Equal(one), "x·x⁻¹ should be one")

	assert.True(t, group.NewScalar().Set(x).Sub(x).IsZero(), "x - x should be zero")
}

func TestSecp256k1PointOps(t *testing.T) {
	group := Secp256k1{}

	x := randomSecp256k1Scalar(t)
	X := x.ActOnBase()
	require.False(t, X.IsIdentity())

	assert.True(t, X.Sub(X).IsIdentity())
	two := group.NewScalar().SetNat(new(saferith.Nat).SetUint64(2))
	assert.True(t, X.Add(X).Equal(group.NewScalar().Set(two).Mul(x).ActOnBase()))
	assert.True(t, X.Negate().Equal(group.NewScalar().Set(x).Negate().ActOnBase()))
}

func TestSecp256k1LiftX(t *testing.T) {
	x := randomSecp256k1Scalar(t)
	X := x.ActOnBase()

	lifted, err := Secp256k1{}.LiftX(X.XNat())
	require.NoError(t, err)
	assert.True(t, lifted.HasEvenY())
	if X.HasEvenY() {
		assert.True(t, lifted.Equal(X))
	} else {
		assert.True(t, lifted.Negate().Equal(X))
	}
}

func TestSecp256k1MarshalRoundTrip(t *testing.T) {
	group := Secp256k1{}

	x := randomSecp256k1Scalar(t)
	X := x.ActOnBase()

	data, err := X.MarshalBinary()
	require.NoError(t, err)
	require.Len(t, data, 33)
	Y := group.NewPoint()
	require.NoError(t, Y.UnmarshalBinary(data))
	assert.True(t, X.Equal(Y))

	sData, err := x.MarshalBinary()
	require.NoError(t, err)
	y := group.NewScalar()
	require.NoError(t, y.UnmarshalBinary(sData))
	assert.True(t, x.Equal(y))

	_, err = group.NewPoint().MarshalBinary()
	assert.Error(t, err, "identity has no encoding")
}
