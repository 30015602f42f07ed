package main

import (
	"crypto/rand"
	"fmt"

	"github.com/taurusgroup/recoverable-ecdsa/internal/hash"
	"github.com/taurusgroup/recoverable-ecdsa/internal/pool"
	"github.com/taurusgroup/recoverable-ecdsa/pkg/ecdsa"
	"github.com/taurusgroup/recoverable-ecdsa/pkg/math/curve"
	"github.com/taurusgroup/recoverable-ecdsa/pkg/math/sample"
)

func main() {
	group := curve.Secp256k1{}

	// A locked reader lets several signers share one entropy source.
	source := pool.NewLockedReader(rand.Reader)
	secret, public := sample.ScalarPointPair(source, group)

	// Hash the message down to a digest before signing.
	h := hash.New()
	if err := h.WriteAny([]byte("hello world")); err != nil {
		panic(err)
	}
	digest := h.Sum()

	sch, err := ecdsa.NewScheme(group, ecdsa.ShapeRecoverable, ecdsa.RecoverFast, source)
	if err != nil {
		panic(err)
	}

	sig, err := sch.Sign(secret, digest)
	if err != nil {
		panic(err)
	}
	fmt.Println("verified:", sch.Verify(public, sig, digest))

	// The recovery code pins the signer's key exactly.
	recovered, err := sch.Recover(sig, digest)
	if err != nil {
		panic(err)
	}
	fmt.Println("recovered signer key:", recovered[0].Equal(public))

	// Without the code, recovery enumerates every consistent key; the
	// signer's is among them.
	candidates := sig.Base().RecoverPublicKeys(digest)
	found := false
	for _, q := range candidates {
		if q.Equal(public) {
			found = true
		}
	}
	fmt.Printf("generic recovery: %d candidates, signer found: %v\n", len(candidates), found)
}
