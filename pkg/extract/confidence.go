package extract

import (
	"regexp"
	"strings"
	"unicode/utf8"

	"github.com/shopspring/decimal"
)

const (
	baseConfidence   = 50
	keywordBonus     = 15
	strictBonus      = 20
	decimalsBonus    = 10
	lengthBonus      = 10
	magnitudePenalty = 20

	// contextRadius is the number of runes inspected on each side of a candidate.
	contextRadius = 50
)

var (
	plausibleFloor   = decimal.NewFromInt(1)
	plausibleCeiling = decimal.NewFromInt(100_000)
)

var priceKeywords = []string{
	"price", "cost", "amount", "total",
	"سعر", "تكلفة", "مبلغ", "إجمالي",
	"ريال", "دولار", "جنيه", "درهم", "دينار", "ر.س",
	"$", "€", "£",
}

var (
	strictPricePattern = regexp.MustCompile(`^(?:\d{1,3}(?:[,\s]\d{3})+|\d+)\.\d{2}$`)
	twoDecimalsPattern = regexp.MustCompile(`\.\d{2}$`)
)

// Score rates how likely c is the page's real price, given the prepared text
// it was found in. The result is clamped to [0, 100].
func Score(c Candidate, text []rune) int {
	score := baseConfidence

	window := strings.ToLower(surrounding(text, c.Offset, utf8.RuneCountInString(c.Text)))
	for _, kw := range priceKeywords {
		if strings.Contains(window, kw) {
			score += keywordBonus
		}
	}

	if strictPricePattern.MatchString(c.Text) {
		score += strictBonus
	}
	if twoDecimalsPattern.MatchString(c.Text) {
		score += decimalsBonus
	}
	if n := utf8.RuneCountInString(c.Text); n >= 4 && n <= 10 {
		score += lengthBonus
	}
	if c.Price.LessThan(plausibleFloor) || c.Price.GreaterThan(plausibleCeiling) {
		score -= magnitudePenalty
	}

	return min(max(score, 0), 100)
}

func surrounding(text []rune, offset, length int) string {
	start := max(offset-contextRadius, 0)
	end := min(offset+length+contextRadius, len(text))
	if start >= end {
		return ""
	}
	return string(text[start:end])
}

// ScanText scores every candidate of the most specific matching pattern and
// returns the one with the highest confidence. Ties keep the earliest match.
func (p *Pipeline) ScanText(text string) (Candidate, bool) {
	prepared := prepareText(text)
	found := p.scan(prepared)
	if len(found) == 0 {
		return Candidate{}, false
	}

	runes := []rune(prepared)
	best := -1
	for i := range found {
		found[i].Confidence = Score(found[i], runes)
		if best < 0 || found[i].Confidence > found[best].Confidence {
			best = i
		}
	}
	return found[best], true
}
