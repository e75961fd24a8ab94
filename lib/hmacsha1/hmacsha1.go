// Package hmacsha1 computes the HMAC-SHA1 signatures used for the NDS
// ARM9 overlay table and per-overlay signatures.
package hmacsha1

import (
	"crypto/hmac"
	"crypto/sha1" //nolint:gosec // required by the NDS overlay-signing format, not used for security here
)

// Size is the length in bytes of an HMAC-SHA1 digest.
const Size = sha1.Size

// Sign returns HMAC-SHA1(key, data).
func Sign(key, data []byte) [Size]byte {
	mac := hmac.New(sha1.New, key)
	mac.Write(data)
	var out [Size]byte
	copy(out[:], mac.Sum(nil))
	return out
}

// Verify reports whether sig is the HMAC-SHA1 of data under key.
func Verify(key, data, sig []byte) bool {
	want := Sign(key, data)
	return hmac.Equal(want[:], sig)
}
