package core

import (
	"crypto/rand"
	"encoding/hex"
)

// newSessionID generates an unguessable session identifier: 32 bytes
// from crypto/rand, hex encoded.
func newSessionID() (string, error) {
	b := make([]byte, 32)
	if _, err := rand.Read(b); err != nil {
		return "", err
	}
	return hex.EncodeToString(b), nil
}
