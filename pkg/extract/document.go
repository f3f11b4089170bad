package extract

import (
	"errors"
	"fmt"
	"slices"
	"strings"

	"github.com/PuerkitoBio/goquery"
	"github.com/andybalholm/cascadia"
	"golang.org/x/net/html"
)

// ErrParse is returned when markup cannot be turned into a node tree.
var ErrParse = errors.New("parsing markup")

// Document is a queryable node tree built from raw page markup with
// script, style and noscript content removed.
type Document struct {
	doc *goquery.Document

	// onSelectorError is called when the CSS engine rejects a selector.
	onSelectorError func(selector string, err error)
}

// ParseDocument builds a Document from raw markup.
func ParseDocument(markup string) (*Document, error) {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(markup))
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrParse, err)
	}
	doc.Find("script, style, noscript").Remove()
	return &Document{doc: doc}, nil
}

// BodyText returns the text content of the body, or of the whole document
// when there is no body element.
func (d *Document) BodyText() string {
	body := d.doc.Find("body")
	if body.Length() == 0 {
		return d.doc.Text()
	}
	return body.Text()
}

// Resolve returns every node matched by selector. Each lookup method is
// tried and the results are unioned in order without duplicates:
// CSS engine, id lookup, class lookup, attribute presence scan, tag name.
// An unsupported selector only empties the result of the method that
// rejected it.
func (d *Document) Resolve(selector string) *goquery.Selection {
	selector = strings.TrimSpace(selector)
	if selector == "" {
		return d.doc.FindNodes()
	}

	var nodes []*html.Node
	seen := make(map[*html.Node]struct{})
	add := func(found []*html.Node) {
		for _, n := range found {
			if _, dup := seen[n]; dup {
				continue
			}
			seen[n] = struct{}{}
			nodes = append(nodes, n)
		}
	}

	if m, err := cascadia.Compile(selector); err == nil {
		add(d.doc.FindMatcher(m).Nodes)
	} else if d.onSelectorError != nil {
		d.onSelectorError(selector, err)
	}

	switch {
	case strings.HasPrefix(selector, "#"):
		add(d.byID(selector[1:]))
	case strings.HasPrefix(selector, "."):
		add(d.byClass(selector[1:]))
	}

	if strings.Contains(selector, "[") && strings.Contains(selector, "]") {
		add(d.byAttribute(attributeName(selector)))
	}

	if !strings.ContainsAny(selector, ".#[") {
		add(d.byTag(selector))
	}

	return d.doc.FindNodes(nodes...)
}

func (d *Document) byID(id string) []*html.Node {
	if id == "" {
		return nil
	}
	var found []*html.Node
	d.walk(func(n *html.Node) bool {
		if attr(n, "id") == id {
			found = append(found, n)
			return false
		}
		return true
	})
	return found
}

// byClass matches elements carrying every space-separated class name.
func (d *Document) byClass(names string) []*html.Node {
	want := strings.Fields(names)
	if len(want) == 0 {
		return nil
	}
	var found []*html.Node
	d.walk(func(n *html.Node) bool {
		have := strings.Fields(attr(n, "class"))
		for _, w := range want {
			if !slices.Contains(have, w) {
				return true
			}
		}
		found = append(found, n)
		return true
	})
	return found
}

func (d *Document) byAttribute(name string) []*html.Node {
	if name == "" {
		return nil
	}
	var found []*html.Node
	d.walk(func(n *html.Node) bool {
		for _, a := range n.Attr {
			if strings.EqualFold(a.Key, name) {
				found = append(found, n)
				break
			}
		}
		return true
	})
	return found
}

func (d *Document) byTag(tag string) []*html.Node {
	tag = strings.ToLower(tag)
	if !isTagName(tag) {
		return nil
	}
	var found []*html.Node
	d.walk(func(n *html.Node) bool {
		if n.Data == tag {
			found = append(found, n)
		}
		return true
	})
	return found
}

// walk visits element nodes in document order until fn returns false.
func (d *Document) walk(fn func(*html.Node) bool) {
	var visit func(*html.Node) bool
	visit = func(n *html.Node) bool {
		if n.Type == html.ElementNode && !fn(n) {
			return false
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			if !visit(c) {
				return false
			}
		}
		return true
	}
	for _, root := range d.doc.Nodes {
		if !visit(root) {
			return
		}
	}
}

// attributeName returns the attribute tested by the first bracket group when
// it is a plain presence test such as `[data-price]`. Value comparisons like
// `[class*="price"]` are left to the CSS engine and yield "".
func attributeName(selector string) string {
	open := strings.Index(selector, "[")
	if open < 0 {
		return ""
	}
	inner := selector[open+1:]
	if end := strings.Index(inner, "]"); end >= 0 {
		inner = inner[:end]
	}
	if strings.ContainsAny(inner, "~|^$*=") {
		return ""
	}
	return strings.ToLower(strings.TrimSpace(inner))
}

func attr(n *html.Node, key string) string {
	for _, a := range n.Attr {
		if a.Key == key {
			return a.Val
		}
	}
	return ""
}

func isTagName(s string) bool {
	if s == "" {
		return false
	}
	for _, r := range s {
		if (r < 'a' || r > 'z') && (r < '0' || r > '9') && r != '-' {
			return false
		}
	}
	return true
}
