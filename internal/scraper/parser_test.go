// internal/scraper/parser_test.go
package scraper

import (
	"strings"
	"testing"

	"github.com/PuerkitoBio/goquery"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const parserTestHTML = `<html>
<head>
	<meta property="og:title" content="  Vestido camisero  ">
	<meta property="product:price:amount" content="39.95">
</head>
<body>
	<h1 class="title"></h1>
	<span class="price">Desde</span>
	<span class="price">29,99 €</span>
	<div class="color">  Verde
		oliva </div>
</body>
</html>`

func newTestParser(t *testing.T, pageURL string) *HTMLParser {
	t.Helper()
	hp, err := NewHTMLParserFromString(parserTestHTML, pageURL)
	require.NoError(t, err)
	return hp
}

func acceptAll(string) bool { return true }

func TestHTMLParserFirstMatchSelectorOrder(t *testing.T) {
	hp := newTestParser(t, "https://shop.example/p/1")

	// the empty h1 is skipped, og:title is read from its content attribute
	value, selector, ok := hp.FirstMatch([]string{"h1.title", "meta[property='og:title']", "title"}, acceptAll)
	require.True(t, ok)
	assert.Equal(t, "Vestido camisero", value)
	assert.Equal(t, "meta[property='og:title']", selector)

	value, selector, ok = hp.FirstMatch([]string{".color", "meta[property='og:title']"}, acceptAll)
	require.True(t, ok)
	assert.Equal(t, ".color", selector)
	assert.Contains(t, value, "Verde")
}

func TestHTMLParserFirstMatchAccept(t *testing.T) {
	hp := newTestParser(t, "https://shop.example/p/1")

	isPrice := func(v string) bool {
		_, ok := ParsePrice(v)
		return ok
	}

	// every element of a selector is tried before the next selector
	value, selector, ok := hp.FirstMatch([]string{".price", "meta[property='product:price:amount']"}, isPrice)
	require.True(t, ok)
	assert.Equal(t, "29,99 €", value)
	assert.Equal(t, ".price", selector)

	value, _, ok = hp.FirstMatch([]string{".missing", "meta[property='product:price:amount']"}, isPrice)
	require.True(t, ok)
	assert.Equal(t, "39.95", value)

	_, _, ok = hp.FirstMatch([]string{".color"}, isPrice)
	assert.False(t, ok)
}

func TestHTMLParserFirstMatchSkipsBlankSelectors(t *testing.T) {
	hp := newTestParser(t, "")

	_, _, ok := hp.FirstMatch([]string{"", "   "}, acceptAll)
	assert.False(t, ok)

	_, _, ok = hp.FirstMatch(nil, acceptAll)
	assert.False(t, ok)
}

func TestHTMLParserResolveURL(t *testing.T) {
	hp := newTestParser(t, "https://shop.example/es/p/vestido.html")

	testCases := []struct {
		ref      string
		expected string
	}{
		{"/img/1.jpg", "https://shop.example/img/1.jpg"},
		{"img/2.jpg", "https://shop.example/es/p/img/2.jpg"},
		{"//cdn.shop.example/3.jpg", "https://cdn.shop.example/3.jpg"},
		{"  http://other.example/4.jpg ", "http://other.example/4.jpg"},
		{"javascript:void(0)", ""},
		{"mailto:info@shop.example", ""},
		{"ftp://shop.example/5.jpg", ""},
		{"", ""},
	}

	for _, tc := range testCases {
		t.Run(tc.ref, func(t *testing.T) {
			assert.Equal(t, tc.expected, hp.ResolveURL(tc.ref))
		})
	}
}

func TestHTMLParserResolveURLWithoutBase(t *testing.T) {
	hp := newTestParser(t, "")

	assert.Equal(t, "", hp.ResolveURL("/img/1.jpg"))
	assert.Equal(t, "https://cdn.example/1.jpg", hp.ResolveURL("https://cdn.example/1.jpg"))

	// a relative page URL is not a usable base
	hp = newTestParser(t, "/p/1")
	assert.Equal(t, "", hp.ResolveURL("img.jpg"))
}

func TestHTMLParserFromDocument(t *testing.T) {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(parserTestHTML))
	require.NoError(t, err)

	hp := NewHTMLParserFromDocument(doc, "https://shop.example/p/1")
	assert.Same(t, doc, hp.Document())
	assert.Equal(t, "https://shop.example/a.jpg", hp.ResolveURL("/a.jpg"))
}
