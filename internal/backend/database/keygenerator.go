package database

import (
	"encoding/hex"

	"github.com/google/uuid"
)

// GenerateID returns a fresh identifier: a random UUID rendered as 32
// lowercase hex characters. Stored file names are derived from it, so it
// must stay filesystem-safe.
func GenerateID() (string, error) {
	id, err := uuid.NewRandom()
	if err != nil {
		return "", err
	}
	return hex.EncodeToString(id[:]), nil
}
