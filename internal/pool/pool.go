// Package pool provides a guard for sharing a single entropy source between
// concurrent signers.
package pool

import (
	"io"
	"sync"
)

// LockedReader wraps an io.Reader to be safe for concurrent reads.
//
// Signing draws nonce bytes from its reader; when several signers share one
// source, the reads must not interleave. A lock is acquired for every read,
// so be aware of that for performance reasons.
type LockedReader struct {
	reader io.Reader
	m      sync.Mutex
}

// NewLockedReader creates a LockedReader by wrapping an underlying value.
func NewLockedReader(r io.Reader) *LockedReader {
	// Intentionally not initializing m, since the zero value is ok.
	return &LockedReader{reader: r}
}

// Read implements io.Reader for LockedReader.
//
// The behavior is to return the same output as the underlying reader. The
// difference is that it's safe to call this function concurrently.
//
// Naturally, when calling this function concurrently, which value ends up
// getting read is raced, but you won't end up reading the same value twice,
// or otherwise messing up the state of the reader.
func (r *LockedReader) Read(p []byte) (int, error) {
	r.m.Lock()
	defer r.m.Unlock()
	return r.reader.Read(p)
}
