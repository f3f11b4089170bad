package extract

import (
	"errors"
	"fmt"
	"strings"

	"github.com/shopspring/decimal"
)

// ErrNoDigits is returned when a string holds nothing that can be read as a number.
var ErrNoDigits = errors.New("no digits in numeric text")

const arabicDecimalMark = '٫'

// toASCIIDigit maps Arabic-Indic and Extended Arabic-Indic digits to their
// ASCII equivalent. Other runes are returned unchanged.
func toASCIIDigit(r rune) rune {
	switch {
	case r >= '٠' && r <= '٩':
		return '0' + (r - '٠')
	case r >= '۰' && r <= '۹':
		return '0' + (r - '۰')
	default:
		return r
	}
}

// Normalize converts a raw numeric string into a decimal.
//
// Separators are disambiguated in a fixed order:
//  1. Arabic decimal mark present: the group after the last mark is the
//     fraction; commas and dots before it are thousands separators.
//  2. Both comma and dot: whichever appears last is the decimal separator.
//  3. Only commas: the last comma is decimal when exactly one or two digits
//     follow it, otherwise every comma is a thousands separator.
//  4. Only dots: a single dot is decimal. Several dots are thousands
//     separators when the last group has three digits.
func Normalize(raw string) (decimal.Decimal, error) {
	s := stripNoise(raw)
	if !strings.ContainsFunc(s, isASCIIDigit) {
		return decimal.Zero, fmt.Errorf("%w: %q", ErrNoDigits, raw)
	}

	canonical := disambiguate(s)
	if strings.HasPrefix(canonical, ".") {
		canonical = "0" + canonical
	}

	d, err := decimal.NewFromString(canonical)
	if err != nil {
		return decimal.Zero, fmt.Errorf("parsing %q: %w", canonical, err)
	}
	return d, nil
}

// stripNoise maps digits to ASCII, drops whitespace (space-grouped
// thousands) and every rune that is not a digit or a separator.
func stripNoise(raw string) string {
	var b strings.Builder
	b.Grow(len(raw))
	for _, r := range raw {
		r = toASCIIDigit(r)
		if isASCIIDigit(r) || r == '.' || r == ',' || r == arabicDecimalMark {
			b.WriteRune(r)
		}
	}
	return strings.TrimRight(b.String(), ".,"+string(arabicDecimalMark))
}

func disambiguate(s string) string {
	hasComma := strings.Contains(s, ",")
	hasDot := strings.Contains(s, ".")

	switch {
	case strings.ContainsRune(s, arabicDecimalMark):
		i := strings.LastIndex(s, string(arabicDecimalMark))
		intPart := removeSeparators(s[:i])
		frac := removeSeparators(s[i+len(string(arabicDecimalMark)):])
		if frac == "" {
			return intPart
		}
		return intPart + "." + frac

	case hasComma && hasDot:
		if strings.LastIndex(s, ",") > strings.LastIndex(s, ".") {
			return splitAt(s, strings.LastIndex(s, ","))
		}
		return splitAt(s, strings.LastIndex(s, "."))

	case hasComma:
		i := strings.LastIndex(s, ",")
		if tail := s[i+1:]; len(tail) >= 1 && len(tail) <= 2 {
			return splitAt(s, i)
		}
		return removeSeparators(s)

	case hasDot:
		if strings.Count(s, ".") == 1 {
			return s
		}
		i := strings.LastIndex(s, ".")
		if len(s[i+1:]) == 3 {
			return removeSeparators(s)
		}
		return splitAt(s, i)
	}

	return s
}

// splitAt treats the byte at i as the decimal separator and drops every
// other separator.
func splitAt(s string, i int) string {
	return removeSeparators(s[:i]) + "." + removeSeparators(s[i+1:])
}

func removeSeparators(s string) string {
	return strings.Map(func(r rune) rune {
		if r == '.' || r == ',' || r == arabicDecimalMark {
			return -1
		}
		return r
	}, s)
}

func isASCIIDigit(r rune) bool {
	return r >= '0' && r <= '9'
}
