package registration

import (
	"regexp"
	"strings"
)

// groupSep is one optional whitespace rune between digit groups. It matches the
// contracts.IsBlank set, so a pasted NBSP or thin space is accepted.
const groupSep = `[\s\v\p{Zs}\x{2028}\x{2029}\x{FEFF}]?`

// Ugandan mobile numbers: +256 7XX XXX XXX
var ugandanMobile = regexp.MustCompile(`^\+256` + groupSep + `7\d{2}` + groupSep + `\d{3}` + groupSep + `\d{3}$`)

// ValidatePhoneNumber reports whether phone is a Ugandan mobile number
// in international form.
func ValidatePhoneNumber(phone string) bool {
	return ugandanMobile.MatchString(phone)
}

// FormatPhoneNumber groups a 12-digit number as "+DDD DDD DDD DDD".
// Anything else, including a partially typed number, is returned unchanged.
func FormatPhoneNumber(phone string) string {
	digits := digitsOnly(phone)
	if len(digits) != 12 {
		return phone
	}

	var b strings.Builder
	b.Grow(16)
	b.WriteByte('+')
	for i := 0; i < 12; i += 3 {
		if i > 0 {
			b.WriteByte(' ')
		}
		b.WriteString(digits[i : i+3])
	}
	return b.String()
}

func digitsOnly(s string) string {
	var b strings.Builder
	for i := 0; i < len(s); i++ {
		if c := s[i]; c >= '0' && c <= '9' {
			b.WriteByte(c)
		}
	}
	return b.String()
}
