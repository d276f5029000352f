package domain

import "strings"

// NormalizePhone converts a South African mobile number to the
// international 27-prefixed 11-digit form used by the messaging API.
// Accepted inputs are local 10-digit numbers starting with 0, numbers
// already in 27 form, and either with a leading + or separator noise.
// Normalization is idempotent. The second return is false when the
// input does not look like a valid local mobile number.
func NormalizePhone(raw string) (string, bool) {
	var digits strings.Builder
	for _, r := range raw {
		if r >= '0' && r <= '9' {
			digits.WriteRune(r)
		}
	}
	n := digits.String()

	switch {
	case len(n) == 11 && strings.HasPrefix(n, "27"):
		return n, true
	case len(n) == 10 && strings.HasPrefix(n, "0"):
		return "27" + n[1:], true
	case len(n) == 9:
		// Bare subscriber number without trunk prefix.
		return "27" + n, true
	default:
		return "", false
	}
}

// LooksLikePhone reports whether a free-form CRM field value normalizes
// to a valid mobile number. Used when scanning candidate profile fields.
func LooksLikePhone(raw string) bool {
	_, ok := NormalizePhone(raw)
	return ok
}
