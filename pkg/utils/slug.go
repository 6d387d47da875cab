package utils

import (
	"strings"
	"unicode/utf8"

	"github.com/gosimple/slug"
)

// MaxJobNameLength keeps job names usable as storage bucket names
const MaxJobNameLength = 32

// ReservedJobName is the run request that selects every job
const ReservedJobName = "all"

// NormalizeSlug creates a URL-friendly slug using the gosimple/slug library
// This handles all Unicode characters including Turkish, European, and other languages
func NormalizeSlug(text string) string {
	if text == "" {
		return ""
	}

	// Use gosimple/slug which handles all international characters properly
	return slug.Make(text)
}

// SanitizeJobName converts a requested job name into a bucket-safe slug:
// lowercase, no periods or underscores, no leading or trailing hyphen, at most 32 characters.
// It returns an empty string when nothing usable is left.
func SanitizeJobName(name string) string {
	name = strings.ToLower(strings.TrimSpace(name))
	name = strings.NewReplacer(".", "-", "_", "-").Replace(name)
	name = NormalizeSlug(name)
	name = strings.Trim(name, "-")

	if utf8.RuneCountInString(name) > MaxJobNameLength {
		name = string([]rune(name)[:MaxJobNameLength])
		name = strings.TrimRight(name, "-")
	}
	return name
}

// IsValidJobName reports whether name is already in sanitized form and not reserved
func IsValidJobName(name string) bool {
	return name != "" && name != ReservedJobName && SanitizeJobName(name) == name
}

// BuildPrefix returns the storage prefix owning every artifact a job writes
func BuildPrefix(jobName string) string {
	return strings.ToLower(jobName) + "/"
}
