package extract_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/donaldgifford/buying-list/pkg/extract"
)

const resolveFixture = `<html><body>
<div id="main" class="product card">
  <span class="price sale">19.99</span>
  <span id="123">7.00</span>
  <span class="2col">8.00</span>
  <span data-price="42.00"></span>
  <b>bold</b>
</div>
<script>var price = "10.00";</script>
<style>.price { content: "11.00"; }</style>
<noscript>12.00</noscript>
</body></html>`

func TestDocument_Resolve(t *testing.T) {
	t.Parallel()

	doc, err := extract.ParseDocument(resolveFixture)
	require.NoError(t, err)

	tests := []struct {
		name     string
		selector string
		want     int
	}{
		{name: "css class", selector: ".price", want: 1},
		{name: "css compound", selector: "span.price.sale", want: 1},
		{name: "css id", selector: "#main", want: 1},
		{name: "id not valid css", selector: "#123", want: 1},
		{name: "class not valid css", selector: ".2col", want: 1},
		{name: "class lookup with several names", selector: ".product card", want: 1},
		{name: "attribute presence", selector: "[data-price]", want: 1},
		{name: "attribute value via css", selector: `[class*="price"]`, want: 1},
		{name: "tag", selector: "b", want: 1},
		{name: "tag is case insensitive", selector: "SPAN", want: 4},
		{name: "malformed selector", selector: "[[[", want: 0},
		{name: "no match", selector: ".missing", want: 0},
		{name: "empty", selector: "  ", want: 0},
		{name: "script content is gone", selector: "script", want: 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			assert.Equal(t, tt.want, doc.Resolve(tt.selector).Length())
		})
	}
}

func TestDocument_ResolveDeduplicates(t *testing.T) {
	t.Parallel()

	doc, err := extract.ParseDocument(`<p id="x">1</p><p>2</p>`)
	require.NoError(t, err)

	// Matched by the CSS engine and by the id lookup.
	assert.Equal(t, 1, doc.Resolve("#x").Length())
	// Matched by the CSS engine and by the tag lookup.
	assert.Equal(t, 2, doc.Resolve("p").Length())
}

func TestDocument_BodyText(t *testing.T) {
	t.Parallel()

	doc, err := extract.ParseDocument(resolveFixture)
	require.NoError(t, err)

	text := doc.BodyText()
	assert.Contains(t, text, "19.99")
	assert.NotContains(t, text, "var price")
	assert.NotContains(t, text, "11.00")
	assert.NotContains(t, text, "12.00")
}
