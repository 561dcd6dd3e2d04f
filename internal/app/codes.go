package app

import (
	"context"
	"crypto/rand"
	"fmt"
	"strings"

	"arena-contest-service/internal/domain"
)

const (
	// joinCodeLength is the number of characters in a join code.
	joinCodeLength = 6
	// joinCodeAttempts bounds collision retries; generation fails loudly
	// rather than looping unbounded.
	joinCodeAttempts = 10
)

// joinCodeAlphabet excludes easily-confused characters (0/O, 1/I).
const joinCodeAlphabet = "ABCDEFGHJKLMNPQRSTUVWXYZ23456789"

// generateJoinCode draws a random code from the unambiguous alphabet.
func generateJoinCode() (string, error) {
	buf := make([]byte, joinCodeLength)
	if _, err := rand.Read(buf); err != nil {
		return "", fmt.Errorf("generate join code: %w", err)
	}
	for i, b := range buf {
		buf[i] = joinCodeAlphabet[int(b)%len(joinCodeAlphabet)]
	}
	return string(buf), nil
}

// normalizeJoinCode makes user-typed codes match stored ones.
func normalizeJoinCode(code string) string {
	return strings.ToUpper(strings.TrimSpace(code))
}

// newJoinCode generates a code that no existing contest uses, retrying a
// bounded number of times on collision.
func (s *ContestService) newJoinCode(ctx context.Context) (string, error) {
	for attempt := 0; attempt < joinCodeAttempts; attempt++ {
		code, err := generateJoinCode()
		if err != nil {
			return "", err
		}
		_, err = s.store.GetContestByJoinCode(ctx, code)
		if err == domain.ErrContestNotFound {
			return code, nil
		}
		if err != nil {
			return "", err
		}
	}
	return "", fmt.Errorf("no unique join code after %d attempts", joinCodeAttempts)
}
