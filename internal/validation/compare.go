package validation

import (
	"crypto/sha256"
	"crypto/subtle"
)

// SecureEqual reports whether a and b are byte-for-byte equal.
// Both inputs are hashed to fixed-size digests first, so the comparison takes the
// same time regardless of their lengths or where they first differ.
func SecureEqual(a, b string) bool {
	ha := sha256.Sum256([]byte(a))
	hb := sha256.Sum256([]byte(b))
	digestsMatch := subtle.ConstantTimeCompare(ha[:], hb[:]) == 1
	lengthsMatch := subtle.ConstantTimeEq(int32(len(a)), int32(len(b))) == 1
	return digestsMatch && lengthsMatch
}
