package extractor

import (
	"regexp"
	"strings"

	"github.com/PuerkitoBio/goquery"
	"github.com/RahulJ0hn/Clarifi/internal/errorwrapper"
)

var whitespaceRe = regexp.MustCompile(`\s+`)

// Elements that never carry the content a monitor cares about.
var strippedElements = []string{"script", "style", "nav", "footer", "header", "aside"}

// Ordered candidates for the main content container. The first match wins;
// the body is the final fallback.
var contentSelectors = []string{
	"article",
	"main",
	".content",
	".main-content",
	".post-content",
	".entry-content",
	".article-content",
	`div[role="main"]`,
}

// PageContent is the outcome of full-page extraction.
type PageContent struct {
	Title string
	Text  string
}

// ExtractFullPage strips non-content elements from the markup and returns the
// page title plus the whitespace-collapsed text of the main content area.
func ExtractFullPage(markup string) (PageContent, error) {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(markup))
	if err != nil {
		return PageContent{}, errorwrapper.WrapError(err, "parsing HTML document")
	}

	title := extractTitle(doc)

	for _, el := range strippedElements {
		doc.Find(el).Remove()
	}

	var text string
	for _, selector := range contentSelectors {
		if sel := doc.Find(selector).First(); sel.Length() > 0 {
			text = sel.Text()
			break
		}
	}
	if text == "" {
		text = doc.Find("body").Text()
	}

	return PageContent{
		Title: title,
		Text:  CollapseWhitespace(text),
	}, nil
}

// ExtractTitle resolves a page title from raw markup, falling back from
// <title> through og:title to the first heading.
func ExtractTitle(markup string) string {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(markup))
	if err != nil {
		return "Untitled Page"
	}
	return extractTitle(doc)
}

func extractTitle(doc *goquery.Document) string {
	if title := strings.TrimSpace(doc.Find("title").First().Text()); title != "" {
		return title
	}
	if meta, ok := doc.Find(`meta[property="og:title"]`).First().Attr("content"); ok {
		if title := strings.TrimSpace(meta); title != "" {
			return title
		}
	}
	if h1 := strings.TrimSpace(doc.Find("h1").First().Text()); h1 != "" {
		return h1
	}
	return "Untitled Page"
}

// CollapseWhitespace folds runs of whitespace into single spaces and trims.
func CollapseWhitespace(text string) string {
	return strings.TrimSpace(whitespaceRe.ReplaceAllString(text, " "))
}

var noisePatterns = []*regexp.Regexp{
	regexp.MustCompile(`(?i)cookie|privacy|terms|conditions`),
	regexp.MustCompile(`(?i)newsletter|subscribe|sign up`),
	regexp.MustCompile(`(?i)advertisement|sponsored`),
	regexp.MustCompile(`(?i)©|copyright|all rights reserved`),
}

// NormalizeContent prepares extracted page text for comparison across checks:
// collapses whitespace and drops common boilerplate vocabulary so that cookie
// banners and footer noise do not register as changes.
func NormalizeContent(content string) string {
	content = whitespaceRe.ReplaceAllString(content, " ")
	for _, re := range noisePatterns {
		content = re.ReplaceAllString(content, "")
	}
	return strings.TrimSpace(content)
}
