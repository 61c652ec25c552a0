// README: Display helpers that shorten provider addresses for chat output.
package maps

import (
	"regexp"
	"strings"
)

// arabicComma separates segments in provider-formatted Arabic addresses.
const arabicComma = "،"

// syrianCities is the fixed city list used when scanning address segments.
var syrianCities = []string{
	"دمشق", "حلب", "اللاذقية", "حمص", "حماة",
	"طرطوس", "دير الزور", "السويداء", "درعا", "الرقة",
}

// streetMarkers flag a segment as street-like.
var streetMarkers = []string{"شارع", "طريق"}

var countrySuffixRe = regexp.MustCompile(`(،?\s*سوريا)$`)

// ShortenAddress extracts a "street, city" abbreviation from a full formatted
// address. It scans comma-separated segments for a street-like token and a
// known city name, and falls back to the first segment when neither is found.
func ShortenAddress(full string) string {
	parts := strings.Split(full, arabicComma)
	if len(parts) == 0 {
		return full
	}

	var street, city string
	for _, p := range parts {
		for _, marker := range streetMarkers {
			if strings.Contains(p, marker) {
				street = strings.TrimSpace(p)
				break
			}
		}
		if street != "" {
			break
		}
	}
	for _, p := range parts {
		for _, name := range syrianCities {
			if strings.Contains(p, name) {
				city = name
				break
			}
		}
		if city != "" {
			break
		}
	}

	switch {
	case street != "" && city != "":
		return street + arabicComma + " " + city
	case street != "":
		return street
	case city != "":
		return city
	default:
		return strings.TrimSpace(parts[0])
	}
}

// StripCountrySuffix removes a trailing country fragment (with optional
// preceding delimiter) from a display string. Purely cosmetic.
func StripCountrySuffix(text string) string {
	if text == "" {
		return ""
	}
	return countrySuffixRe.ReplaceAllString(strings.TrimSpace(text), "")
}
