package namegen

import (
	"crypto/rand"
	"encoding/hex"
	"fmt"
	"path/filepath"
)

const tokenSize = 16 // 128 bits, collisions are a store-level safety net only

// New mints a unique name for an uploaded file: a random hex token with the
// original extension (with its leading dot) appended. It never consults
// existing names; uniqueness relies on entropy width.
func New(originalFilename string) (string, error) {
	buf := make([]byte, tokenSize)
	if _, err := rand.Read(buf); err != nil {
		return "", fmt.Errorf("cannot read random bytes: %w", err)
	}

	return hex.EncodeToString(buf) + filepath.Ext(originalFilename), nil
}
