package extract

import (
	"fmt"
	"strings"

	"github.com/PuerkitoBio/goquery"
)

// priceAttributes are checked in order for machine-readable prices.
var priceAttributes = []string{
	"data-price",
	"data-amount",
	"data-value",
	"data-cost",
	"content",
	"value",
	"title",
	"aria-label",
	"data-original-price",
	"data-sale-price",
	"data-currency-amount",
}

// priceTokens mark a descendant as price-like when found in its class or in
// one of its attribute names.
var priceTokens = []string{"price", "cost", "amount", "currency", "money", "سعر"}

// collect tries the candidate sources of a single node in order: its price
// attributes, its own text, price-like descendants, then its previous and
// next element siblings.
func (p *Pipeline) collect(node *goquery.Selection) (Candidate, bool) {
	if c, ok := p.fromAttributes(node); ok {
		return c, true
	}
	if c, ok := p.fromText(node); ok {
		return c, true
	}
	if c, ok := p.fromDescendants(node); ok {
		return c, true
	}
	return p.fromSiblings(node)
}

func (p *Pipeline) fromAttributes(node *goquery.Selection) (Candidate, bool) {
	for _, name := range priceAttributes {
		v, ok := node.Attr(name)
		if !ok || strings.TrimSpace(v) == "" {
			continue
		}
		if c, ok := p.ParsePrice(v); ok {
			c.Text = fmt.Sprintf("[%s=%q]", name, v)
			return c, true
		}
	}
	return Candidate{}, false
}

func (p *Pipeline) fromText(node *goquery.Selection) (Candidate, bool) {
	text := node.Text()
	c, ok := p.ParsePrice(text)
	if !ok {
		return Candidate{}, false
	}
	c.Text = excerpt(text, maxMatchedText)
	return c, true
}

func (p *Pipeline) fromDescendants(node *goquery.Selection) (Candidate, bool) {
	var (
		found Candidate
		ok    bool
	)
	node.Find("*").FilterFunction(func(_ int, s *goquery.Selection) bool {
		return isPriceLike(s)
	}).EachWithBreak(func(_ int, s *goquery.Selection) bool {
		if found, ok = p.fromText(s); ok {
			return false
		}
		found, ok = p.fromAttributes(s)
		return !ok
	})
	return found, ok
}

func (p *Pipeline) fromSiblings(node *goquery.Selection) (Candidate, bool) {
	for _, sib := range []*goquery.Selection{node.Prev(), node.Next()} {
		if sib.Length() == 0 {
			continue
		}
		if c, ok := p.fromText(sib); ok {
			return c, true
		}
	}
	return Candidate{}, false
}

func isPriceLike(s *goquery.Selection) bool {
	class := strings.ToLower(s.AttrOr("class", ""))
	for _, tok := range priceTokens {
		if strings.Contains(class, tok) {
			return true
		}
	}
	for _, n := range s.Nodes {
		for _, a := range n.Attr {
			key := strings.ToLower(a.Key)
			for _, tok := range priceTokens {
				if strings.Contains(key, tok) {
					return true
				}
			}
		}
	}
	return false
}

// excerpt collapses whitespace and truncates s to at most n runes.
func excerpt(s string, n int) string {
	s = strings.Join(strings.Fields(s), " ")
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n])
}
