package extractor

import (
	"strings"

	"github.com/PuerkitoBio/goquery"
	"github.com/RahulJ0hn/Clarifi/internal/errorwrapper"
)

// ExtractBySelector returns the trimmed text of the first element matching the
// CSS selector. A selector that matches nothing is a valid "no value" outcome
// and yields an empty string, not an error.
func ExtractBySelector(markup, selector string) (result string, err error) {
	doc, docErr := goquery.NewDocumentFromReader(strings.NewReader(markup))
	if docErr != nil {
		return "", errorwrapper.WrapError(docErr, "parsing HTML document")
	}

	// goquery panics on malformed selectors; treat those as "no value" too,
	// a misconfigured selector should not fail the whole check cycle.
	defer func() {
		if r := recover(); r != nil {
			result = ""
			err = nil
		}
	}()

	sel := doc.Find(selector).First()
	if sel.Length() == 0 {
		return "", nil
	}
	return strings.TrimSpace(sel.Text()), nil
}
