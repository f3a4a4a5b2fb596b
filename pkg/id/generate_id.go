// Package id generates the 32-hex identifiers used by every aggregate
// (application, queue entry, decision, stipulation, review, item, request,
// disbursement).
package id

import (
	"crypto/rand"
	"encoding/hex"
	"io"
)

// NewID32 returns 32 lowercase hex characters, no separators or prefixes.
func NewID32() string {
	b := make([]byte, 16)
	if _, err := io.ReadFull(rand.Reader, b); err != nil {
		// crypto/rand failing means the platform entropy source is broken;
		// nothing sensible can run without it.
		panic(err)
	}
	return hex.EncodeToString(b)
}
