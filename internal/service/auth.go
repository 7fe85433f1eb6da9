package service

import (
	"context"
	"crypto/subtle"
	"fmt"

	"github.com/relaydesk/relaydesk/internal/domain"
)

// StaticKeyValidator checks bearer tokens against a fixed list of API keys
// loaded at startup. The principal reported for a matching key is its
// position in the configured list, which keeps raw keys out of logs.
type StaticKeyValidator struct {
	keys []string
}

func NewStaticKeyValidator(keys []string) *StaticKeyValidator {
	return &StaticKeyValidator{keys: keys}
}

// Enabled reports whether any keys are configured. With no keys the
// server runs unauthenticated.
func (v *StaticKeyValidator) Enabled() bool {
	return len(v.keys) > 0
}

func (v *StaticKeyValidator) ValidateAPIKey(ctx context.Context, token string) (string, error) {
	for i, key := range v.keys {
		if subtle.ConstantTimeCompare([]byte(token), []byte(key)) == 1 {
			return fmt.Sprintf("key-%d", i+1), nil
		}
	}
	return "", domain.ErrInvalidAPIKey
}
