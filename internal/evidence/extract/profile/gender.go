package profile

import (
	"regexp"
	"strings"
)

const (
	GenderMale    = "male"
	GenderFemale  = "female"
	GenderUnknown = "unknown"
)

// checkedGender finds a ticked checkbox glyph followed by a gender label.
var checkedGender = regexp.MustCompile(`(?i)(?:☒|☑|✔|✓|\[x\])\s*(female|male)\b`)

// NormalizeGender maps a free-form gender value onto male, female or unknown.
func NormalizeGender(value string) string {
	switch strings.ToLower(strings.TrimSpace(value)) {
	case "male", "m":
		return GenderMale
	case "female", "f":
		return GenderFemale
	default:
		return GenderUnknown
	}
}

// GenderFromCheckboxes returns the gender whose checkbox is ticked in text, or
// "" when none is.
func GenderFromCheckboxes(text string) string {
	m := checkedGender.FindStringSubmatch(text)
	if m == nil {
		return ""
	}
	return strings.ToLower(m[1])
}
