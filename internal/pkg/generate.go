package pkg

import (
	"crypto/rand"
	"fmt"
	"math/big"

	"github.com/google/uuid"
)

const (
	roomIDAlphabet = "ABCDEFGHJKLMNPQRSTUVWXYZ23456789"
	roomIDLength   = 6
)

// GenerateRoomID returns a short human-shareable room code.
func GenerateRoomID() (string, error) {
	code := make([]byte, roomIDLength)

	for i := range code {
		n, err := rand.Int(rand.Reader, big.NewInt(int64(len(roomIDAlphabet))))
		if err != nil {
			return "", fmt.Errorf("failed to generate room id: %w", err)
		}

		code[i] = roomIDAlphabet[n.Int64()]
	}

	return string(code), nil
}

// GenerateParticipantID returns a stable unique participant identity.
func GenerateParticipantID() string {
	return uuid.NewString()
}
