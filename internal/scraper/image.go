package scraper

import (
	"net/url"
	"path"
	"strconv"
	"strings"
	"unicode"

	"github.com/PuerkitoBio/goquery"
)

// ImageSelector picks the primary product image of a page.
type ImageSelector interface {
	// SelectImage returns an absolute image URL, or "" when the page has
	// no usable image. candidates are retailer-specific selectors tried
	// before any heuristic.
	SelectImage(doc *goquery.Document, pageURL string, candidates []string) string
}

// HeuristicImageSelector tries the candidate selectors, then og:image,
// link rel=image_src and finally the widest srcset entry on the page.
type HeuristicImageSelector struct{}

// NewHeuristicImageSelector creates the default ImageSelector.
func NewHeuristicImageSelector() *HeuristicImageSelector {
	return &HeuristicImageSelector{}
}

var imageMetaSelectors = []string{
	"meta[property='og:image']",
	"meta[property='og:image:secure_url']",
	"meta[name='twitter:image']",
	"link[rel='image_src']",
}

// SelectImage implements ImageSelector.
func (h *HeuristicImageSelector) SelectImage(doc *goquery.Document, pageURL string, candidates []string) string {
	hp := NewHTMLParserFromDocument(doc, pageURL)

	for _, sel := range append(append([]string{}, candidates...), imageMetaSelectors...) {
		if strings.TrimSpace(sel) == "" {
			continue
		}
		var found string
		doc.Find(sel).EachWithBreak(func(_ int, s *goquery.Selection) bool {
			found = hp.usableImage(imageRef(s))
			return found == ""
		})
		if found != "" {
			return found
		}
	}

	var best string
	var bestWidth float64
	doc.Find("img[srcset], source[srcset]").Each(func(_ int, s *goquery.Selection) {
		srcset, _ := s.Attr("srcset")
		ref, width := widestCandidate(srcset)
		if width <= bestWidth {
			return
		}
		if resolved := hp.usableImage(ref); resolved != "" {
			best, bestWidth = resolved, width
		}
	})
	return best
}

// imageRef reads the image reference an element carries.
func imageRef(s *goquery.Selection) string {
	if srcset, ok := s.Attr("srcset"); ok {
		if ref, _ := widestCandidate(srcset); ref != "" {
			return ref
		}
	}
	for _, attr := range []string{"content", "href", "data-src", "data-zoom-image", "src"} {
		if v, ok := s.Attr(attr); ok && strings.TrimSpace(v) != "" {
			return v
		}
	}
	if img := s.Find("img").First(); img.Length() > 0 {
		return imageRef(img)
	}
	return ""
}

// widestCandidate returns the srcset entry with the largest descriptor.
// Entries without a descriptor count as 1x.
func widestCandidate(srcset string) (string, float64) {
	var best string
	var bestWidth float64
	for _, entry := range strings.Split(srcset, ",") {
		fields := strings.Fields(entry)
		if len(fields) == 0 {
			continue
		}
		width := 1.0
		if len(fields) > 1 {
			desc := strings.ToLower(fields[1])
			if n, err := strconv.ParseFloat(strings.TrimRight(desc, "wx"), 64); err == nil {
				width = n
			}
		}
		if best == "" || width > bestWidth {
			best, bestWidth = fields[0], width
		}
	}
	return best, bestWidth
}

func (hp *HTMLParser) usableImage(ref string) string {
	ref = strings.TrimSpace(ref)
	if ref == "" || strings.HasPrefix(strings.ToLower(ref), "data:") {
		return ""
	}
	resolved := hp.ResolveURL(ref)
	if resolved == "" {
		return ""
	}
	u, err := url.Parse(resolved)
	if err != nil {
		return ""
	}
	p := strings.ToLower(u.Path)
	if path.Ext(p) == ".svg" {
		return ""
	}
	for _, token := range strings.FieldsFunc(path.Base(p), func(r rune) bool {
		return !unicode.IsLetter(r)
	}) {
		if strings.HasPrefix(token, "logo") || strings.HasPrefix(token, "sprite") {
			return ""
		}
	}
	return resolved
}
