package scraper

import (
	"strings"
	"testing"

	"github.com/PuerkitoBio/goquery"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func parseDoc(t *testing.T, html string) *goquery.Document {
	t.Helper()
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(html))
	require.NoError(t, err)
	return doc
}

func TestHeuristicImageSelector(t *testing.T) {
	testCases := []struct {
		name       string
		html       string
		candidates []string
		want       string
	}{
		{
			name:       "candidate selector first",
			html:       `<head><meta property="og:image" content="https://cdn.example/og.jpg"></head><body><img class="main" src="/p/main.jpg"></body>`,
			candidates: []string{"img.main"},
			want:       "https://shop.example/p/main.jpg",
		},
		{
			name: "og image",
			html: `<head><meta property="og:image" content="//cdn.example/og.jpg"></head>`,
			want: "https://cdn.example/og.jpg",
		},
		{
			name: "image_src link",
			html: `<head><link rel="image_src" href="img/link.jpg"></head>`,
			want: "https://shop.example/p/img/link.jpg",
		},
		{
			name: "widest srcset on the page",
			html: `<body>
				<img srcset="/a-300.jpg 300w, /a-600.jpg 600w">
				<img srcset="/b-800.jpg 800w, /b-1600.jpg 1600w">
			</body>`,
			want: "https://shop.example/b-1600.jpg",
		},
		{
			name:       "data uri, svg, logo and sprite skipped",
			html:       `<body><img class="c" src="data:image/png;base64,AAAA"><img class="c" src="/icons/brand.svg"><img class="c" src="/site-logo.png"><img class="c" src="/ui/sprite_2x.png"><img class="c" src="/catalogo/vestido.jpg"></body>`,
			candidates: []string{"img.c"},
			want:       "https://shop.example/catalogo/vestido.jpg",
		},
		{
			name: "nothing usable",
			html: `<body><img src="/logo.svg"></body>`,
			want: "",
		},
	}

	selector := NewHeuristicImageSelector()
	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			got := selector.SelectImage(parseDoc(t, tc.html), "https://shop.example/p/item.html", tc.candidates)
			assert.Equal(t, tc.want, got)
		})
	}
}

func TestWidestCandidate(t *testing.T) {
	ref, width := widestCandidate("a.jpg 1x, b.jpg 2x")
	assert.Equal(t, "b.jpg", ref)
	assert.Equal(t, 2.0, width)

	ref, _ = widestCandidate("only.jpg")
	assert.Equal(t, "only.jpg", ref)

	ref, _ = widestCandidate("")
	assert.Empty(t, ref)
}
