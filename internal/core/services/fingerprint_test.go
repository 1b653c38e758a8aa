package services

import (
	"crypto/md5" //nolint:gosec // test mirrors production digest
	"encoding/hex"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestFingerprint(t *testing.T) {
	t.Run("matches md5 of concatenation", func(t *testing.T) {
		sum := md5.Sum([]byte("ab" + "cd" + "model")) //nolint:gosec // test
		want := hex.EncodeToString(sum[:])[:8]

		assert.Equal(t, want, Fingerprint([]string{"ab", "cd"}, "model"))
	})

	t.Run("deterministic", func(t *testing.T) {
		chunks := []string{"first chunk", "second chunk"}
		assert.Equal(t, Fingerprint(chunks, "m"), Fingerprint(chunks, "m"))
	})

	t.Run("length", func(t *testing.T) {
		assert.Len(t, Fingerprint([]string{"x"}, "m"), FingerprintLength)
		assert.Len(t, Fingerprint(nil, ""), FingerprintLength)
	})

	t.Run("sensitive to order", func(t *testing.T) {
		assert.NotEqual(t,
			Fingerprint([]string{"alpha", "beta"}, "m"),
			Fingerprint([]string{"beta", "alpha"}, "m"))
	})

	t.Run("sensitive to content", func(t *testing.T) {
		assert.NotEqual(t,
			Fingerprint([]string{"alpha"}, "m"),
			Fingerprint([]string{"alphA"}, "m"))
	})

	t.Run("sensitive to model", func(t *testing.T) {
		assert.NotEqual(t,
			Fingerprint([]string{"alpha"}, "all-minilm"),
			Fingerprint([]string{"alpha"}, "nomic-embed-text"))
	})
}
