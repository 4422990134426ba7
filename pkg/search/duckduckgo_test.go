package search

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

const samplePage = `
<div class="result results_links results_links_deep web-result">
  <div class="links_main links_deep result__body">
    <h2 class="result__title">
      <a rel="nofollow" class="result__a" href="//duckduckgo.com/l/?uddg=https%3A%2F%2Fexample.com%2Fweather&amp;rut=abc">Seoul Weather &amp; Forecast</a>
    </h2>
    <a class="result__snippet" href="//duckduckgo.com/l/?uddg=https%3A%2F%2Fexample.com%2Fweather">Current <b>weather</b> in Seoul with hourly forecast.</a>
  </div>
</div>
<div class="result results_links results_links_deep web-result">
  <div class="links_main links_deep result__body">
    <h2 class="result__title">
      <a rel="nofollow" class="result__a" href="https://example.org/climate">Climate of Korea</a>
    </h2>
    <a class="result__snippet" href="https://example.org/climate">Overview of the Korean climate.</a>
  </div>
</div>
`

func TestParseDuckDuckGoHTML(t *testing.T) {
	results := ParseDuckDuckGoHTML(samplePage, 5)

	assert.Len(t, results, 2)
	assert.Equal(t, "Seoul Weather & Forecast", results[0].Title)
	assert.Equal(t, "https://example.com/weather", results[0].URL)
	assert.Equal(t, "Current weather in Seoul with hourly forecast.", results[0].Snippet)
	assert.Equal(t, "Climate of Korea", results[1].Title)
	assert.Equal(t, "https://example.org/climate", results[1].URL)
}

func TestParseDuckDuckGoHTMLMaxResults(t *testing.T) {
	results := ParseDuckDuckGoHTML(samplePage, 1)
	assert.Len(t, results, 1)
}

func TestParseDuckDuckGoHTMLEmptyPage(t *testing.T) {
	results := ParseDuckDuckGoHTML("<html><body>no results</body></html>", 3)
	assert.Empty(t, results)
}

func TestFormatResults(t *testing.T) {
	out := FormatResults([]Result{
		{Title: "One", URL: "https://a.example", Snippet: "first"},
		{Title: "Two", URL: "https://b.example", Snippet: "second"},
	})

	assert.Contains(t, out, "1. One")
	assert.Contains(t, out, "https://a.example")
	assert.Contains(t, out, "2. Two")
	assert.Contains(t, out, "second")
}

func TestFormatResultsEmpty(t *testing.T) {
	assert.Equal(t, "", FormatResults(nil))
}
