package services

import (
	"crypto/md5" //nolint:gosec // G501: content fingerprint, not a security boundary.
	"encoding/hex"
)

// FingerprintLength is the number of hex characters kept from the digest.
const FingerprintLength = 8

// Fingerprint returns a stable digest of the chunk sequence and the embedding
// model that produced its vectors. Any change to chunk content, chunk order
// or model name changes the result.
func Fingerprint(chunks []string, modelName string) string {
	h := md5.New() //nolint:gosec // G401: see import.
	for _, c := range chunks {
		h.Write([]byte(c))
	}
	h.Write([]byte(modelName))
	return hex.EncodeToString(h.Sum(nil))[:FingerprintLength]
}
