package mapping

import (
	"errors"
	"strings"

	"github.com/shopspring/decimal"
)

var (
	errAmountEmpty     = errors.New("amount is required")
	errAmountInvalid   = errors.New("amount is not a number")
	errAmountPositive  = errors.New("amount must be greater than zero")
	errAmountPrecision = errors.New("amount has more than two decimal places")
)

var hundred = decimal.NewFromInt(100)

// ParseAmountMinor parses a major-unit amount such as "1.234,56", "1,234.56",
// "12,5" or "€ 10" into minor units (cents).
func ParseAmountMinor(raw string) (int64, error) {
	s := strings.TrimSpace(raw)
	s = strings.Map(func(r rune) rune {
		switch {
		case r >= '0' && r <= '9', r == '.', r == ',', r == '-':
			return r
		}
		return -1
	}, s)
	if s == "" {
		return 0, errAmountEmpty
	}

	lastDot := strings.LastIndex(s, ".")
	lastComma := strings.LastIndex(s, ",")
	switch {
	case lastDot >= 0 && lastComma >= 0:
		if lastComma > lastDot {
			s = strings.ReplaceAll(s, ".", "")
			s = strings.Replace(s, ",", ".", 1)
		} else {
			s = strings.ReplaceAll(s, ",", "")
		}
	case lastComma >= 0:
		if strings.Count(s, ",") > 1 {
			s = strings.ReplaceAll(s, ",", "")
		} else {
			s = strings.Replace(s, ",", ".", 1)
		}
	case strings.Count(s, ".") > 1:
		s = strings.ReplaceAll(s, ".", "")
	}

	d, err := decimal.NewFromString(s)
	if err != nil {
		return 0, errAmountInvalid
	}
	if !d.IsPositive() {
		return 0, errAmountPositive
	}
	minor := d.Mul(hundred)
	if !minor.Equal(minor.Truncate(0)) {
		return 0, errAmountPrecision
	}
	return minor.IntPart(), nil
}
