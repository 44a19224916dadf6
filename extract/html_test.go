package extract

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const samplePage = `<!DOCTYPE html>
<html>
<head>
  <title>Storage Engines</title>
  <meta property="og:image" content="https://example.com/cover.png">
  <style>body { color: red; }</style>
  <script>console.log("tracking");</script>
</head>
<body>
  <nav><a href="/">Home</a></nav>
  <h1>Storage Engines</h1>
  <p>LSM trees buffer writes in memory.</p>
  <p>B-trees update pages in place.</p>
  <script>moreTracking();</script>
  <footer>Copyright</footer>
</body>
</html>`

func TestExtractHTML(t *testing.T) {
	result, err := ExtractHTML(samplePage)
	require.NoError(t, err)

	assert.Equal(t, "Storage Engines", result.Title)
	assert.Equal(t, "https://example.com/cover.png", result.PreviewImageURL)

	assert.Contains(t, result.Text, "LSM trees buffer writes in memory.")
	assert.Contains(t, result.Text, "B-trees update pages in place.")
	assert.NotContains(t, result.Text, "console.log")
	assert.NotContains(t, result.Text, "color: red")
	assert.NotContains(t, result.Text, "Copyright")
	assert.NotContains(t, result.Text, "Home")
}

func TestExtractHTMLFallsBackToOGTitle(t *testing.T) {
	page := `<html><head><meta property="og:title" content="From OG"></head>
<body><p>content here</p></body></html>`

	result, err := ExtractHTML(page)
	require.NoError(t, err)
	assert.Equal(t, "From OG", result.Title)
}

func TestExtractHTMLEmptyPage(t *testing.T) {
	_, err := ExtractHTML(`<html><head><script>x()</script></head><body></body></html>`)
	assert.ErrorIs(t, err, ErrEmptyResult)
}

func TestCleanTextCollapsesWhitespace(t *testing.T) {
	got := cleanText("line  one\n\n\n\nline   two\n")
	assert.Equal(t, "line one\n\nline two", got)
}
