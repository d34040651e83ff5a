package audit

import (
	"crypto/sha256"
	"encoding/base64"
)

// CalculateFingerprint returns a stable identifier for token that is safe to log.
func CalculateFingerprint(token string) string {
	hash := sha256.Sum256([]byte(token))
	return base64.RawURLEncoding.EncodeToString(hash[:])
}
