package bot

import "strings"

// minPhoneDigits is the minimum digit count a phone must keep after
// stripping formatting.
const minPhoneDigits = 9

// NormalizePhone strips every non-digit character and reports whether
// enough digits remain. No country-code or layout rules beyond length.
func NormalizePhone(raw string) (string, bool) {
	var digits strings.Builder
	for _, r := range raw {
		if r >= '0' && r <= '9' {
			digits.WriteRune(r)
		}
	}
	normalized := digits.String()
	return normalized, len(normalized) >= minPhoneDigits
}
