package extract

import (
	"regexp"
	"strings"

	"github.com/PuerkitoBio/goquery"
)

var whitespaceRun = regexp.MustCompile(`[ \t]+`)

// ExtractHTML parses an HTML document and returns its readable text, title,
// and preview image. Script, style and other non-content elements are
// removed before text extraction.
func ExtractHTML(html string) (*Result, error) {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(html))
	if err != nil {
		return nil, err
	}

	title := strings.TrimSpace(doc.Find("title").First().Text())
	if title == "" {
		if og, ok := doc.Find(`meta[property="og:title"]`).Attr("content"); ok {
			title = strings.TrimSpace(og)
		}
	}

	preview := ""
	if og, ok := doc.Find(`meta[property="og:image"]`).Attr("content"); ok {
		preview = strings.TrimSpace(og)
	}

	doc.Find("script, style, noscript, iframe, svg, nav, footer").Remove()

	body := doc.Find("body")
	if body.Length() == 0 {
		body = doc.Selection
	}

	var sb strings.Builder
	body.Find("h1, h2, h3, h4, h5, h6, p, li, td, th, pre, blockquote").Each(func(_ int, s *goquery.Selection) {
		text := strings.TrimSpace(s.Text())
		if text == "" {
			return
		}
		sb.WriteString(text)
		sb.WriteString("\n\n")
	})

	text := sb.String()
	if text == "" {
		// Pages without block-level structure still have text nodes.
		text = body.Text()
	}
	text = cleanText(text)

	if text == "" {
		return nil, ErrEmptyResult
	}

	return &Result{
		Text:            text,
		Title:           title,
		PreviewImageURL: preview,
		Metadata:        map[string]string{"content_type": "text/html"},
	}, nil
}

// cleanText collapses whitespace runs and drops blank-only lines beyond one.
func cleanText(text string) string {
	lines := strings.Split(text, "\n")
	var out []string
	blank := 0
	for _, line := range lines {
		line = strings.TrimSpace(whitespaceRun.ReplaceAllString(line, " "))
		if line == "" {
			blank++
			if blank > 1 {
				continue
			}
		} else {
			blank = 0
		}
		out = append(out, line)
	}
	return strings.TrimSpace(strings.Join(out, "\n"))
}
