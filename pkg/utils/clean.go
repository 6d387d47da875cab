package utils

import (
	"regexp"
	"strings"
)

// ansiPattern matches terminal escape sequences (colors, cursor movement)
var ansiPattern = regexp.MustCompile(`\x1b\[[0-9;?]*[ -/]*[@-~]`)

// CleanString normalizes a raw answer typed at a prompt: escape sequences and
// remaining control characters are stripped and surrounding whitespace trimmed.
func CleanString(value string) string {
	value = ansiPattern.ReplaceAllString(value, "")
	value = strings.Map(func(r rune) rune {
		if r == '\t' || r == ' ' {
			return r
		}
		if r < 0x20 || r == 0x7f {
			return -1
		}
		return r
	}, value)
	return strings.TrimSpace(value)
}
