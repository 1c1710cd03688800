// internal/scraper/parser.go
package scraper

import (
	"fmt"
	"io"
	"net/url"
	"strings"

	"github.com/PuerkitoBio/goquery"
)

// HTMLParser wraps a parsed product page and the URL it was loaded from.
type HTMLParser struct {
	document *goquery.Document
	baseURL  *url.URL
}

// NewHTMLParserFromString parses html; pageURL is used to resolve relative
// links and may be empty.
func NewHTMLParserFromString(html, pageURL string) (*HTMLParser, error) {
	return NewHTMLParserFromReader(strings.NewReader(html), pageURL)
}

// NewHTMLParserFromReader parses the document read from r.
func NewHTMLParserFromReader(r io.Reader, pageURL string) (*HTMLParser, error) {
	doc, err := goquery.NewDocumentFromReader(r)
	if err != nil {
		return nil, fmt.Errorf("failed to parse HTML: %w", err)
	}
	return NewHTMLParserFromDocument(doc, pageURL), nil
}

// NewHTMLParserFromDocument wraps an already parsed document.
func NewHTMLParserFromDocument(doc *goquery.Document, pageURL string) *HTMLParser {
	hp := &HTMLParser{document: doc}
	if pageURL != "" {
		if u, err := url.Parse(pageURL); err == nil && u.IsAbs() {
			hp.baseURL = u
		}
	}
	if hp.baseURL == nil && doc.Url != nil {
		hp.baseURL = doc.Url
	}
	return hp
}

// Document returns the underlying goquery document.
func (hp *HTMLParser) Document() *goquery.Document {
	return hp.document
}

// FirstMatch walks selectors in order and returns the first non-empty value
// accepted by accept, together with the selector that produced it. Every
// element matched by a selector is tried before moving to the next one.
func (hp *HTMLParser) FirstMatch(selectors []string, accept func(string) bool) (value, selector string, ok bool) {
	for _, sel := range selectors {
		if strings.TrimSpace(sel) == "" {
			continue
		}
		hp.document.Find(sel).EachWithBreak(func(_ int, s *goquery.Selection) bool {
			v := elementValue(s)
			if v == "" || !accept(v) {
				return true
			}
			value, selector, ok = v, sel, true
			return false
		})
		if ok {
			return value, selector, true
		}
	}
	return "", "", false
}

// elementValue prefers trimmed text and falls back to the content attribute.
func elementValue(s *goquery.Selection) string {
	if text := strings.TrimSpace(s.Text()); text != "" {
		return text
	}
	if content, exists := s.Attr("content"); exists {
		return strings.TrimSpace(content)
	}
	return ""
}

// ResolveURL resolves ref against the page URL. It returns "" for refs that
// do not resolve to an absolute http(s) URL.
func (hp *HTMLParser) ResolveURL(ref string) string {
	ref = strings.TrimSpace(ref)
	if ref == "" {
		return ""
	}
	u, err := url.Parse(ref)
	if err != nil {
		return ""
	}
	if !u.IsAbs() {
		if hp.baseURL == nil {
			return ""
		}
		u = hp.baseURL.ResolveReference(u)
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return ""
	}
	return u.String()
}
