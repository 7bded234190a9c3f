package address

import (
	"regexp"
	"strings"
)

var (
	trailingNumber = regexp.MustCompile(`^(.*?)\s*(\d+[A-Za-z]?)$`)
	leadingNumber  = regexp.MustCompile(`^(\d+[A-Za-z]?)\s+(.+)$`)
	postalCodeRun  = regexp.MustCompile(`\d+(?:[ -]\d+)?`)
)

// Parsed is the detailed outcome of parsing a free-text address.
type Parsed struct {
	Address Address
	// DroppedParts holds the middle comma-separated parts that were ignored
	// because only the first (street) and last (city) parts are interpreted.
	DroppedParts []string
}

// Parse converts a free-text address such as "62 Main Street, 26-923 Springfield"
// into an Address. The country comes from the caller's hint, not from the text.
// Parse never fails; unrecognised text ends up in StreetName or City.
func Parse(raw, countryHint string) Address {
	return ParseDetailed(raw, countryHint).Address
}

// ParseDetailed is Parse that also reports discarded middle parts.
func ParseDetailed(raw, countryHint string) Parsed {
	streetPart, cityPart, dropped := splitParts(raw)
	building, street := splitBuildingNumber(streetPart)
	postal, city := splitPostalCode(cityPart)

	return Parsed{
		Address: Address{
			buildingNumber: building,
			streetName:     street,
			postalCode:     postal,
			city:           city,
			country:        strings.TrimSpace(countryHint),
		},
		DroppedParts: dropped,
	}
}

func splitParts(raw string) (street, city string, dropped []string) {
	if strings.TrimSpace(raw) == "" {
		return "", "", nil
	}
	parts := strings.Split(raw, ",")
	for i := range parts {
		parts[i] = strings.TrimSpace(parts[i])
	}

	switch len(parts) {
	case 1:
		return parts[0], "", nil
	case 2:
		return parts[0], parts[1], nil
	default:
		// Known limitation: only the first and last parts are interpreted.
		return parts[0], parts[len(parts)-1], append([]string(nil), parts[1:len(parts)-1]...)
	}
}

// splitBuildingNumber prefers a trailing number ("Main Street 62") and falls
// back to a leading one ("62 Main Street").
func splitBuildingNumber(part string) (building, street string) {
	if m := trailingNumber.FindStringSubmatch(part); m != nil {
		return m[2], strings.TrimSpace(m[1])
	}
	if m := leadingNumber.FindStringSubmatch(part); m != nil {
		return m[1], strings.TrimSpace(m[2])
	}
	return "", part
}

func splitPostalCode(part string) (postal, city string) {
	loc := postalCodeRun.FindStringIndex(part)
	if loc == nil {
		return "", part
	}
	postal = part[loc[0]:loc[1]]
	rest := part[:loc[0]] + " " + part[loc[1]:]
	return postal, strings.Join(strings.Fields(rest), " ")
}
