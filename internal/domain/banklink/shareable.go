package banklink

import (
	"encoding/base64"
	"fmt"
)

// EncodeShareableID derives the URL-safe shareable id for an account id.
// The encoding is deterministic and reversible (not a hash): the raw
// account id never needs to be stored in client-facing contexts, yet can
// always be recovered for lookups.
func EncodeShareableID(accountID string) (string, error) {
	if accountID == "" {
		return "", ErrEncoding
	}
	return base64.RawURLEncoding.EncodeToString([]byte(accountID)), nil
}

// DecodeShareableID recovers the original account id from a shareable id.
func DecodeShareableID(shareableID string) (string, error) {
	if shareableID == "" {
		return "", ErrEncoding
	}
	decoded, err := base64.RawURLEncoding.DecodeString(shareableID)
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrEncoding, err)
	}
	if len(decoded) == 0 {
		return "", ErrEncoding
	}
	return string(decoded), nil
}
