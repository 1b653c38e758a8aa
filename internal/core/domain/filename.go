package domain

import (
	"regexp"
	"strings"
)

// DefaultFilename replaces a filename that sanitizes to nothing.
const DefaultFilename = "document"

var unsafeFilenameChars = regexp.MustCompile(`[^-\p{L}\p{N}_.]`)

// SanitizeFilename makes an uploaded filename safe to use as a single path
// component. Directory parts are dropped, characters other than letters,
// digits, '-', '_' and '.' are removed (in any script) and leading dots are
// stripped so the result is never hidden.
func SanitizeFilename(name string) string {
	if i := strings.LastIndexAny(name, `/\`); i >= 0 {
		name = name[i+1:]
	}
	clean := unsafeFilenameChars.ReplaceAllString(name, "")
	clean = strings.TrimLeft(clean, ".")
	if clean == "" {
		return DefaultFilename
	}
	return clean
}

var userIDPattern = regexp.MustCompile(`^[A-Za-z0-9][-\w.]*$`)

// IsValidUserID reports whether id can be used as a filename prefix and
// cache directory name without escaping the data directory.
func IsValidUserID(id string) bool {
	return len(id) <= 128 && userIDPattern.MatchString(id)
}
