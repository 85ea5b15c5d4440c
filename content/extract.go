package content

import (
	"regexp"
	"strings"

	"github.com/PuerkitoBio/goquery"
)

const (
	// minContentLength is the threshold below which an extraction step is
	// considered to have missed the main content and the next fallback runs.
	minContentLength = 200

	// TruncationMarker is appended when extracted text is cut at the limit.
	TruncationMarker = "..."
)

// strippedSelector matches elements that never carry readable body text.
const strippedSelector = "script, style, meta, noscript, header, footer, nav"

// containerSelector matches the usual suspects for a page's main content.
const containerSelector = "article, .article, .post, .content, .entry, #article, #content, main, .main-content, [role=\"main\"]"

// paragraphSelector is the mid-level fallback: visible text-bearing elements.
const paragraphSelector = "p, h1, h2, h3, h4, h5, li"

var whitespaceRun = regexp.MustCompile(`\s+`)

// Extract produces a best-effort plain-text rendering of rawHTML's main
// content, capped at maxLen characters plus the truncation marker.
//
// The pipeline stops at the first step that yields at least 200 characters:
// the longest common main-content container, then the concatenation of all
// paragraph, heading, and list texts, then the whole page. Whitespace runs
// are collapsed to single spaces. Unparsable input yields an empty string.
func Extract(rawHTML string, maxLen int) string {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(rawHTML))
	if err != nil {
		return ""
	}

	doc.Find(strippedSelector).Remove()

	var text string
	doc.Find(containerSelector).Each(func(_ int, container *goquery.Selection) {
		if t := strings.TrimSpace(container.Text()); len(t) > len(text) {
			text = t
		}
	})

	if len(text) < minContentLength {
		var parts []string
		doc.Find(paragraphSelector).Each(func(_ int, p *goquery.Selection) {
			if t := strings.TrimSpace(p.Text()); t != "" {
				parts = append(parts, t)
			}
		})
		if len(parts) > 0 {
			text = strings.Join(parts, " ")
		}
	}

	if len(text) < minContentLength {
		text = strings.TrimSpace(doc.Text())
	}

	text = strings.TrimSpace(whitespaceRun.ReplaceAllString(text, " "))
	return truncate(text, maxLen)
}

// truncate cuts text to at most maxLen runes, appending the marker when
// anything was dropped. Rune-based so multi-byte characters never get split.
func truncate(text string, maxLen int) string {
	if maxLen <= 0 {
		return text
	}
	runes := []rune(text)
	if len(runes) <= maxLen {
		return text
	}
	return string(runes[:maxLen]) + TruncationMarker
}
