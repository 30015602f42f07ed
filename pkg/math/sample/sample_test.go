package sample

import (
	"crypto/rand"
	"math/big"
	"testing"

	"github.com/cronokirby/saferith"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/taurusgroup/recoverable-ecdsa/pkg/math/curve"
)

func testGroup(t *testing.T) curve.Curve {
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

// byteQueue replays a fixed sequence of reads.
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

func TestScalarRejectsOutOfRange(t *testing.T) {
	group := testGroup(t)

	// 255 and 17 are ≥ n, 0 is excluded from the nonce range; only the
	// final 3 is acceptable.
	source := &byteQueue{bytes: []byte{255, 17, 0, 3}}
	k := Scalar(source, group)
	expected := group.NewScalar().SetNat(new(saferith.Nat).SetUint64(3))
	assert.True(t, k.Equal(expected))
	assert.Empty(t, source.bytes, "every candidate should consume exactly one byte")
}

func TestScalarRange(t *testing.T) {
	group := testGroup(t)
	for i := 0; i < 500; i++ {
		k := Scalar(rand.Reader, group)
		assert.False(t, k.IsZero())
	}
}

func TestScalarRoughUniformity(t *testing.T) {
	group := testGroup(t)

	// Over 2000 draws from [1, 17), a missing value has probability
	// 16·(15/16)^2000 ≈ 2⁻¹⁸², so this only flags real bias.
	counts := make(map[byte]int)
	for i := 0; i < 2000; i++ {
		k := Scalar(rand.Reader, group)
		data, err := k.MarshalBinary()
		require.NoError(t, err)
		require.Len(t, data, 1)
		counts[data[0]]++
	}
	for v := byte(1); v < 17; v++ {
		assert.Greater(t, counts[v], 0, "value %d never drawn", v)
	}
	assert.Zero(t, counts[0])
}

func TestModNBelowModulus(t *testing.T) {
	n := saferith.ModulusFromBytes([]byte{17})
	for i := 0; i < 100; i++ {
		out := ModN(rand.Reader, n)
		_, _, lt := out.CmpMod(n)
		require.EqualValues(t, 1, lt)
	}
}

func TestScalarPointPair(t *testing.T) {
	group := testGroup(t)
	x, X := ScalarPointPair(rand.Reader, group)
	assert.True(t, x.ActOnBase().Equal(X))
}
