package payment

import (
	"math/big"
	"strings"
	"unicode"
)

// NormalizeIBAN removes whitespace and upper-cases the IBAN
func NormalizeIBAN(iban string) string {
	var b strings.Builder
	b.Grow(len(iban))
	for _, r := range iban {
		if unicode.IsSpace(r) {
			continue
		}
		b.WriteRune(unicode.ToUpper(r))
	}
	return b.String()
}

// MaskIBAN keeps the country/check prefix and the last four characters.
// Short values are masked entirely except for the first two characters.
func MaskIBAN(iban string) string {
	n := NormalizeIBAN(iban)
	if n == "" {
		return ""
	}
	if strings.Contains(n, "*") {
		return n
	}
	if len(n) <= 8 {
		if len(n) <= 2 {
			return strings.Repeat("*", len(n))
		}
		return n[:2] + strings.Repeat("*", len(n)-2)
	}
	return n[:4] + strings.Repeat("*", len(n)-8) + n[len(n)-4:]
}

// ValidIBAN checks the ISO 13616 mod-97 checksum of a normalized IBAN
func ValidIBAN(iban string) bool {
	n := NormalizeIBAN(iban)
	if len(n) < 15 || len(n) > 34 {
		return false
	}
	rearranged := n[4:] + n[:4]
	var digits strings.Builder
	for _, r := range rearranged {
		switch {
		case r >= '0' && r <= '9':
			digits.WriteRune(r)
		case r >= 'A' && r <= 'Z':
			digits.WriteString(big.NewInt(int64(r - 'A' + 10)).String())
		default:
			return false
		}
	}
	value, ok := new(big.Int).SetString(digits.String(), 10)
	if !ok {
		return false
	}
	return new(big.Int).Mod(value, big.NewInt(97)).Int64() == 1
}
