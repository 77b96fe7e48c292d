package flowkit

import (
	"crypto/rand"
	"regexp"
	"strings"
)

var nonAlphanumeric = regexp.MustCompile(`[^a-z0-9]+`)

// sanitizeID normalizes a Builder name into an identifier-friendly prefix
// for Pipeline.ID, grounded on the teacher's registry.SanitizeFilename.
func sanitizeID(name string) string {
	lowered := strings.ToLower(name)
	sanitized := nonAlphanumeric.ReplaceAllString(lowered, "-")
	sanitized = strings.Trim(sanitized, "-")
	if sanitized == "" {
		return "pipeline"
	}
	return sanitized
}

// randomSuffix generates a short lowercase alphanumeric identifier suffix,
// grounded on the teacher's registry.randomIDSuffix: crypto/rand for
// entropy, a deterministic fallback so id generation never fails outright.
func randomSuffix(length int) string {
	const alphabet = "abcdefghijklmnopqrstuvwxyz0123456789"
	const fallback = "abcdefgh"

	if length <= 0 {
		return ""
	}

	buf := make([]byte, length)
	if _, err := rand.Read(buf); err != nil {
		if length <= len(fallback) {
			return fallback[:length]
		}
		return fallback
	}

	for i := range buf {
		buf[i] = alphabet[int(buf[i])%len(alphabet)]
	}
	return string(buf)
}
