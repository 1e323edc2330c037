// Package extractor pulls the title, description, image and download link
// out of a cartoons.lk page.
package extractor

import (
	"bytes"
	"fmt"
	"io"
	"strings"

	"github.com/PuerkitoBio/goquery"
	"github.com/andybalholm/cascadia"
	"github.com/visper-inc/cartoondl/models"
)

// Fields is what a page yields after every fallback has been applied.
type Fields struct {
	Title       string
	Description string
	Image       string
	Download    string

	// DownloadSource records which button type produced Download:
	// "direct", "watch-online", or "" when nothing matched.
	DownloadSource string
}

// Download sources.
const (
	SourceDirect      = "direct"
	SourceWatchOnline = "watch-online"
)

// Selectors for the upstream markup.
var (
	selOGTitle       = cascadia.MustCompile(`meta[property="og:title"]`)
	selPostTitle     = cascadia.MustCompile(`h1.post-title`)
	selOGDescription = cascadia.MustCompile(`meta[property="og:description"]`)
	selMetaDesc      = cascadia.MustCompile(`meta[name="description"]`)
	selOGImage       = cascadia.MustCompile(`meta[property="og:image"]`)
	selDirectBtn     = cascadia.MustCompile(`button.direct-download-btn`)
	selWatchBtn      = cascadia.MustCompile(`button.watch-online-btn`)
)

// ExtractHTML parses raw HTML and applies the field rules.
func ExtractHTML(rawHTML []byte) (*Fields, error) {
	return Extract(bytes.NewReader(rawHTML))
}

// Extract parses an HTML document from r and applies the field rules.
// Missing fields degrade to their defaults; only an unreadable document
// is an error.
func Extract(r io.Reader) (*Fields, error) {
	doc, err := goquery.NewDocumentFromReader(r)
	if err != nil {
		return nil, fmt.Errorf("extractor: parse html: %w", err)
	}

	f := &Fields{
		Title:       firstNonEmpty(metaContent(doc, selOGTitle), firstText(doc, selPostTitle), models.UnknownTitle),
		Description: firstNonEmpty(metaContent(doc, selOGDescription), metaContent(doc, selMetaDesc)),
		Image:       metaContent(doc, selOGImage),
	}

	if link := lastCallArg(doc, selDirectBtn, directDownloadArg); link != "" {
		f.Download, f.DownloadSource = link, SourceDirect
	} else if link := lastCallArg(doc, selWatchBtn, watchOnlineArg); link != "" {
		f.Download, f.DownloadSource = link, SourceWatchOnline
	} else {
		f.Download = models.NoDownloadLink
	}

	return f, nil
}

// metaContent reads the content attribute of the first matching element.
func metaContent(doc *goquery.Document, sel cascadia.Selector) string {
	content, _ := doc.FindMatcher(sel).First().Attr("content")
	return content
}

func firstText(doc *goquery.Document, sel cascadia.Selector) string {
	return strings.TrimSpace(doc.FindMatcher(sel).First().Text())
}

// lastCallArg scans every matching button's onclick handler. Later matches
// overwrite earlier ones, so the last match in document order wins.
func lastCallArg(doc *goquery.Document, sel cascadia.Selector, arg *CallArg) string {
	var found string
	doc.FindMatcher(sel).Each(func(_ int, s *goquery.Selection) {
		onclick, ok := s.Attr("onclick")
		if !ok || onclick == "" {
			return
		}
		if v, ok := arg.Extract(onclick); ok {
			found = v
		}
	})
	return found
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if v != "" {
			return v
		}
	}
	return ""
}
