package fetch

import (
	"fmt"
	"strings"

	"github.com/PuerkitoBio/goquery"
)

// MinContentLength is the minimum extracted text length for a static fetch
// to count as successful. Shorter pages are likely rendered client-side.
const MinContentLength = 200

// ShouldUseBrowser reports whether the extracted text is too short to be a
// server-rendered CV page.
func ShouldUseBrowser(extractedText string) bool {
	return len(strings.TrimSpace(extractedText)) < MinContentLength
}

const noiseSelector = "nav, footer, script, style, noscript, iframe, svg, form, .cookie-banner, .popup, .ad, .ads"

const blockSelector = "p, div, li, tr, section, article, header, h1, h2, h3, h4, h5, h6, dt, dd, blockquote, pre, td, th"

// CVSelectors are tried in order to find the main CV content.
func CVSelectors() []string {
	return []string{
		".resume",
		"#resume",
		".cv",
		"#cv",
		"[itemtype*='schema.org/Person']",
		"main",
		"article",
		".content",
		"#content",
	}
}

// ExtractMainText parses HTML and returns its visible text, one line per
// block element. The first matching content selector scopes the result;
// the body is used otherwise.
func ExtractMainText(html string, contentSelectors []string) (string, error) {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(html))
	if err != nil {
		return "", fmt.Errorf("failed to parse HTML: %w", err)
	}

	doc.Find(noiseSelector).Remove()
	doc.Find("br").ReplaceWithHtml("\n")
	doc.Find(blockSelector).AppendHtml("\n")

	var mainContent *goquery.Selection
	for _, selector := range contentSelectors {
		if selection := doc.Find(selector); selection.Length() > 0 {
			mainContent = selection.First()
			break
		}
	}
	if mainContent == nil {
		mainContent = doc.Find("body")
	}

	return cleanWhitespace(mainContent.Text()), nil
}

// cleanWhitespace trims every line, folds inner runs of spaces and drops
// blank lines.
func cleanWhitespace(text string) string {
	lines := strings.Split(text, "\n")
	cleaned := make([]string, 0, len(lines))
	for _, line := range lines {
		line = strings.Join(strings.Fields(line), " ")
		if line != "" {
			cleaned = append(cleaned, line)
		}
	}
	return strings.Join(cleaned, "\n")
}
