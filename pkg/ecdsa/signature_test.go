package ecdsa

import (
	"crypto/rand"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/sha3"
	"golang.org/x/sync/errgroup"

	"github.com/taurusgroup/recoverable-ecdsa/internal/pool"
	"github.com/taurusgroup/recoverable-ecdsa/pkg/math/curve"
	"github.com/taurusgroup/recoverable-ecdsa/pkg/math/sample"
)

func TestVerifyRejectsTampering(t *testing.T) {
	group := tinyGroup(t)
	secret := scalarFromUint(group, 5)
	public := secret.ActOnBase()
	hash := []byte{0x48}

	sig, err := Sign(&byteQueue{bytes: []byte{3}}, secret, hash)
	require.NoError(t, err)
	require.True(t, sig.Verify(public, hash))

	// Different message.
	assert.False(t, sig.Verify(public, []byte{0x50}))
	// Different key.
	assert.False(t, sig.Verify(scalarFromUint(group, 6).ActOnBase(), hash))

	// Tampered components.
	tampered := &Signature{R: scalarFromUint(group, 9), S: sig.S}
	assert.False(t, tampered.Verify(public, hash))
	tampered = &Signature{R: sig.R, S: scalarFromUint(group, 6)}
	assert.False(t, tampered.Verify(public, hash))
}

func TestVerifyRejectsZeroComponents(t *testing.T) {
	group := tinyGroup(t)
	public := scalarFromUint(group, 5).ActOnBase()
	hash := []byte{0x48}

	sig := &Signature{R: group.NewScalar(), S: scalarFromUint(group, 5)}
	assert.False(t, sig.Verify(public, hash))
	sig = &Signature{R: scalarFromUint(group, 8), S: group.NewScalar()}
	assert.False(t, sig.Verify(public, hash))
	sig = &Signature{}
	assert.False(t, sig.Verify(public, hash))
}

// TestNormalize checks that both s and n − s verify, that Normalize picks
// the low representative, and that it is idempotent.
func TestNormalize(t *testing.T) {
	group := cofactorGroup(t)
	secret := scalarFromUint(group, 2)
	public := secret.ActOnBase()
	hash := []byte{0xA0}

	// k = 4 yields the high s = 5 on this group.
	sig, err := Sign(&byteQueue{bytes: []byte{4}}, secret, hash)
	require.NoError(t, err)
	require.False(t, sig.IsNormalized())
	require.True(t, sig.Verify(public, hash))

	assert.True(t, sig.Normalize())
	assert.True(t, sig.IsNormalized())
	assert.True(t, sig.S.Equal(scalarFromUint(group, 2)))
	assert.True(t, sig.Verify(public, hash), "the low-s form verifies too")

	assert.False(t, sig.Normalize(), "normalizing twice is a no-op")
	assert.True(t, sig.S.Equal(scalarFromUint(group, 2)))
}

func TestSignatureMarshalRoundTrip(t *testing.T) {
	group := curve.Secp256k1{}
	secret, public := sample.ScalarPointPair(rand.Reader, group)
	digest := sha3.Sum256([]byte("marshal me"))

	sig, err := Sign(rand.Reader, secret, digest[:])
	require.NoError(t, err)

	data, err := sig.MarshalBinary()
	require.NoError(t, err)
	decoded := EmptySignature(group)
	require.NoError(t, decoded.UnmarshalBinary(data))
	assert.True(t, decoded.R.Equal(sig.R))
	assert.True(t, decoded.S.Equal(sig.S))
	assert.True(t, decoded.Verify(public, digest[:]))
}

func TestRecoverableSignatureMarshalRoundTrip(t *testing.T) {
	group := curve.Secp256k1{}
	secret, public := sample.ScalarPointPair(rand.Reader, group)
	digest := sha3.Sum256([]byte("marshal me too"))

	rsig, err := SignRecoverable(rand.Reader, secret, digest[:])
	require.NoError(t, err)

	data, err := rsig.MarshalBinary()
	require.NoError(t, err)
	decoded := EmptyRecoverableSignature(group)
	require.NoError(t, decoded.UnmarshalBinary(data))
	assert.True(t, decoded.R.Equal(rsig.R))
	assert.True(t, decoded.S.Equal(rsig.S))
	assert.Equal(t, rsig.V, decoded.V)

	recovered, err := decoded.RecoverPublicKey(digest[:])
	require.NoError(t, err)
	assert.True(t, recovered.Equal(public))
}

func TestUnmarshalRejectsZeroComponents(t *testing.T) {
	group := tinyGroup(t)
	sig := &Signature{R: group.NewScalar(), S: scalarFromUint(group, 5)}
	data, err := sig.MarshalBinary()
	require.NoError(t, err)

	decoded := EmptySignature(group)
	assert.Error(t, decoded.UnmarshalBinary(data))
}

// TestUnmarshalRecoverableRejectsHighS: a recoverable signature whose s is
// above n/2 cannot have come out of SignRecoverable, and its recovery code
// would be interpreted against the wrong nonce.
func TestUnmarshalRecoverableRejectsHighS(t *testing.T) {
	group := tinyGroup(t)
	rsig := &RecoverableSignature{
		Signature: Signature{R: scalarFromUint(group, 8), S: scalarFromUint(group, 16)},
		V:         0,
	}
	data, err := rsig.MarshalBinary()
	require.NoError(t, err)

	decoded := EmptyRecoverableSignature(group)
	assert.Error(t, decoded.UnmarshalBinary(data))
}

func TestUnmarshalRequiresEmptyReceiver(t *testing.T) {
	group := tinyGroup(t)
	sig, err := Sign(&byteQueue{bytes: []byte{3}}, scalarFromUint(group, 5), []byte{0x48})
	require.NoError(t, err)
	data, err := sig.MarshalBinary()
	require.NoError(t, err)

	assert.Error(t, new(Signature).UnmarshalBinary(data))
	assert.Error(t, new(RecoverableSignature).UnmarshalBinary(data))
}

// TestConcurrentSigning shares one nonce source between goroutines through a
// LockedReader and checks that every signature verifies and recovers.
func TestConcurrentSigning(t *testing.T) {
	group := curve.Secp256k1{}
	source := pool.NewLockedReader(rand.Reader)
	secret, public := sample.ScalarPointPair(source, group)

	var g errgroup.Group
	for i := 0; i < 8; i++ {
		i := i
		g.Go(func() error {
			digest := sha3.Sum256([]byte{byte(i)})
			rsig, err := SignRecoverable(source, secret, digest[:])
			if err != nil {
				return err
			}
			if !rsig.Verify(public, digest[:]) {
				return assert.AnError
			}
			recovered, err := rsig.RecoverPublicKey(digest[:])
			if err != nil {
				return err
			}
			if !recovered.Equal(public) {
				return assert.AnError
			}
			return nil
		})
	}
	require.NoError(t, g.Wait())
}
