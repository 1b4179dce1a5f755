package util

import (
	"regexp"
	"strings"
)

var firstIntegerRegex = regexp.MustCompile(`\d+`)

// FirstInteger extracts the first embedded run of digits from a string, e.g.
// the internal course number from a journey label like "BAT 64".
func FirstInteger(s string) string {
	return firstIntegerRegex.FindString(s)
}

// TrimLeadingZeros normalises numeric identifiers that vary in zero padding
// between data sources. An all-zero input keeps a single zero.
func TrimLeadingZeros(s string) string {
	trimmed := strings.TrimLeft(strings.TrimSpace(s), "0")
	if trimmed == "" && s != "" {
		return "0"
	}

	return trimmed
}

func ContainsString(s []string, str string) bool {
	for _, v := range s {
		if v == str {
			return true
		}
	}

	return false
}
