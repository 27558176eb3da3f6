package domain

import "strings"

// PhoneKey is a normalized phone identifier: the digits of a phone number
// with any single leading US country code removed. Two phone representations
// refer to the same line iff their PhoneKeys are equal; this is the only
// phone comparison rule in the service.
type PhoneKey string

// NormalizePhone reduces an arbitrary phone string to a PhoneKey.
// All non-digit characters are stripped; if exactly 11 digits remain and the
// first is "1", that leading digit is dropped. No further length validation
// is applied — shorter or longer results pass through unchanged, and an
// input with no digits yields the empty key.
func NormalizePhone(raw string) PhoneKey {
	var b strings.Builder
	for _, r := range raw {
		if r >= '0' && r <= '9' {
			b.WriteRune(r)
		}
	}
	clean := b.String()
	if len(clean) == 11 && clean[0] == '1' {
		clean = clean[1:]
	}
	return PhoneKey(clean)
}

// IsEmpty reports whether the key carries no digits at all.
func (k PhoneKey) IsEmpty() bool { return k == "" }

func (k PhoneKey) String() string { return string(k) }
