package extract

import (
	"regexp"
	"slices"
	"strings"
	"unicode"
	"unicode/utf8"

	"github.com/shopspring/decimal"
)

// numberPatterns are tried from most to least specific. Only the first
// pattern that yields an in-range value is used for a given text.
var numberPatterns = []*regexp.Regexp{
	// US decimal, grouped or not: 1,299.00 or 1299.00
	regexp.MustCompile(`(?:\d{1,3}(?:[,\s]\d{3})+|\d+)\.\d{2}`),
	// Arabic decimal mark: 1234٫56
	regexp.MustCompile(`(?:\d{1,3}(?:[,\s]\d{3})+|\d+)٫\d{1,2}`),
	// European decimal, grouped or not: 1.299,00 or 1299,00
	regexp.MustCompile(`(?:\d{1,3}(?:[.\s]\d{3})+|\d+),\d{2}`),
	// Grouped integer: 1,299 or 1.299 or 1 299
	regexp.MustCompile(`\d{1,3}(?:[,\s.]\d{3})+`),
	// Simple decimal: 12.5 or 12,50
	regexp.MustCompile(`\d+[.,٫]\d{1,2}`),
	// Long digit run
	regexp.MustCompile(`\d{4,}`),
	// Any digit run
	regexp.MustCompile(`\d+`),
}

// Candidate is a numeric substring found in free text.
type Candidate struct {
	Price      decimal.Decimal `json:"price"`
	Text       string          `json:"text"`
	Offset     int             `json:"offset"` // rune offset in the scanned text
	Confidence int             `json:"confidence"`
}

// prepareText maps digits to ASCII and folds every whitespace run, including
// non-breaking spaces, into a single space.
func prepareText(s string) string {
	var b strings.Builder
	b.Grow(len(s))
	space := false
	for _, r := range s {
		if unicode.IsSpace(r) {
			space = true
			continue
		}
		if space && b.Len() > 0 {
			b.WriteByte(' ')
		}
		space = false
		b.WriteRune(toASCIIDigit(r))
	}
	return b.String()
}

// findNumbers returns the non-overlapping matches of re in text that are not
// glued to another digit on either side.
func findNumbers(re *regexp.Regexp, text string) []Candidate {
	var out []Candidate
	pos := 0
	for pos < len(text) {
		loc := re.FindStringIndex(text[pos:])
		if loc == nil {
			break
		}
		start, end := pos+loc[0], pos+loc[1]
		if digitBefore(text, start) || digitAfter(text, end) {
			// Matches always start on an ASCII digit, so one byte is one rune.
			pos = start + 1
			continue
		}
		out = append(out, Candidate{
			Text:   text[start:end],
			Offset: utf8.RuneCountInString(text[:start]),
		})
		pos = end
	}
	return out
}

func digitBefore(text string, i int) bool {
	if i == 0 {
		return false
	}
	r, _ := utf8.DecodeLastRuneInString(text[:i])
	return isASCIIDigit(r)
}

func digitAfter(text string, i int) bool {
	if i >= len(text) {
		return false
	}
	r, _ := utf8.DecodeRuneInString(text[i:])
	return isASCIIDigit(r)
}

// scan returns the in-range candidates of the first pattern that produces
// any. text must already be prepared.
func (p *Pipeline) scan(text string) []Candidate {
	for _, re := range numberPatterns {
		var found []Candidate
		for _, c := range findNumbers(re, text) {
			v, err := Normalize(c.Text)
			if err != nil || !p.inRange(v) {
				continue
			}
			c.Price = v
			found = append(found, c)
		}
		if len(found) > 0 {
			return found
		}
	}
	return nil
}

// ParsePrice reads a single price out of a short node string. When a string
// holds several numbers, the largest one not above the plausibility ceiling
// wins, falling back to the largest in-range value.
func (p *Pipeline) ParsePrice(text string) (Candidate, bool) {
	found := p.scan(prepareText(text))
	if len(found) == 0 {
		return Candidate{}, false
	}

	pool := slices.DeleteFunc(slices.Clone(found), func(c Candidate) bool {
		return c.Price.GreaterThan(plausibleCeiling)
	})
	if len(pool) == 0 {
		pool = found
	}

	best := pool[0]
	for _, c := range pool[1:] {
		if c.Price.GreaterThan(best.Price) {
			best = c
		}
	}
	return best, true
}
