package extractor

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const samplePage = `<!DOCTYPE html>
<html>
<head><title>Widget Shop</title><script>var x = 1;</script></head>
<body>
	<nav>Home | Products | About</nav>
	<article>
		<h1>Deluxe Widget</h1>
		<p>The deluxe widget costs <span class="price">$49.99</span> today.</p>
	</article>
	<footer>All rights reserved</footer>
</body>
</html>`

func TestExtractFullPage(t *testing.T) {
	page, err := ExtractFullPage(samplePage)
	require.NoError(t, err)

	assert.Equal(t, "Widget Shop", page.Title)
	assert.Contains(t, page.Text, "Deluxe Widget")
	assert.Contains(t, page.Text, "$49.99")
	// nav and footer are stripped before text extraction
	assert.NotContains(t, page.Text, "Home | Products")
	assert.NotContains(t, page.Text, "All rights reserved")
}

func TestExtractFullPage_BodyFallback(t *testing.T) {
	page, err := ExtractFullPage(`<html><head></head><body><p>Just a paragraph.</p></body></html>`)
	require.NoError(t, err)

	assert.Equal(t, "Untitled Page", page.Title)
	assert.Equal(t, "Just a paragraph.", page.Text)
}

func TestExtractFullPage_TitleFallbacks(t *testing.T) {
	page, err := ExtractFullPage(`<html><head><meta property="og:title" content="Shared Title"></head><body></body></html>`)
	require.NoError(t, err)
	assert.Equal(t, "Shared Title", page.Title)

	page, err = ExtractFullPage(`<html><body><main><h1>Heading Title</h1></main></body></html>`)
	require.NoError(t, err)
	assert.Equal(t, "Heading Title", page.Title)
}

func TestExtractBySelector(t *testing.T) {
	value, err := ExtractBySelector(samplePage, ".price")
	require.NoError(t, err)
	assert.Equal(t, "$49.99", value)
}

func TestExtractBySelector_FirstMatchWins(t *testing.T) {
	markup := `<div><span class="v">first</span><span class="v">second</span></div>`
	value, err := ExtractBySelector(markup, ".v")
	require.NoError(t, err)
	assert.Equal(t, "first", value)
}

func TestExtractBySelector_NoMatchIsEmptyValue(t *testing.T) {
	value, err := ExtractBySelector(samplePage, ".does-not-exist")
	require.NoError(t, err)
	assert.Empty(t, value)
}

func TestExtractBySelector_MalformedSelector(t *testing.T) {
	value, err := ExtractBySelector(samplePage, ":::not-a-selector")
	require.NoError(t, err)
	assert.Empty(t, value)
}

func TestExtractTitle(t *testing.T) {
	assert.Equal(t, "Widget Shop", ExtractTitle(samplePage))
	assert.Equal(t, "Untitled Page", ExtractTitle("<html><body></body></html>"))
}

func TestCollapseWhitespace(t *testing.T) {
	assert.Equal(t, "a b c", CollapseWhitespace("  a\n\tb   c  "))
}

func TestNormalizeContent(t *testing.T) {
	input := "Breaking news update.   Accept our cookie policy. Subscribe to the newsletter!"
	normalized := NormalizeContent(input)

	assert.Contains(t, normalized, "Breaking news update.")
	assert.NotContains(t, normalized, "cookie")
	assert.NotContains(t, normalized, "newsletter")
	assert.NotContains(t, normalized, "Subscribe")
}
