package search

import (
	"context"
	"fmt"
	"html"
	"io"
	"net/http"
	"net/url"
	"regexp"
	"strings"
	"time"
)

// Pre-compiled DuckDuckGo HTML parsing patterns.
var (
	ddgTitleRegex   = regexp.MustCompile(`(?s)<a[^>]+class="result__a"[^>]+href="([^"]+)"[^>]*>(.+?)</a>`)
	ddgSnippetRegex = regexp.MustCompile(`(?s)<a[^>]+class="result__snippet"[^>]*>(.+?)</a>`)

	ddgTagRegex        = regexp.MustCompile(`<[^>]*>`)
	ddgWhitespaceRegex = regexp.MustCompile(`\s+`)
)

// DuckDuckGoProvider scrapes the DuckDuckGo HTML endpoint. It needs no API
// key, which makes it the default for local development.
type DuckDuckGoProvider struct {
	BaseURL    string
	MaxResults int
	UserAgent  string
	Client     *http.Client
}

var _ Provider = &DuckDuckGoProvider{}

func NewDuckDuckGoProvider(maxResults int) *DuckDuckGoProvider {
	if maxResults <= 0 {
		maxResults = 3
	}
	return &DuckDuckGoProvider{
		BaseURL:    "https://html.duckduckgo.com/html/",
		MaxResults: maxResults,
		UserAgent:  "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/120.0.0.0 Safari/537.36",
		Client:     &http.Client{Timeout: 15 * time.Second},
	}
}

func (p *DuckDuckGoProvider) Search(ctx context.Context, query string) ([]Result, error) {
	form := url.Values{}
	form.Set("q", query)

	req, err := http.NewRequestWithContext(ctx, "POST", p.BaseURL, strings.NewReader(form.Encode()))
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	req.Header.Set("User-Agent", p.UserAgent)

	resp, err := p.Client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("duckduckgo request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("duckduckgo error: status %d", resp.StatusCode)
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, 2*1024*1024))
	if err != nil {
		return nil, fmt.Errorf("read response: %w", err)
	}

	return ParseDuckDuckGoHTML(string(body), p.MaxResults), nil
}

// ParseDuckDuckGoHTML extracts results from the HTML endpoint's markup.
func ParseDuckDuckGoHTML(page string, maxResults int) []Result {
	titles := ddgTitleRegex.FindAllStringSubmatch(page, -1)
	snippets := ddgSnippetRegex.FindAllStringSubmatch(page, -1)

	var results []Result
	for i, m := range titles {
		if len(results) >= maxResults {
			break
		}
		snippet := ""
		if i < len(snippets) {
			snippet = cleanHTML(snippets[i][1])
		}
		results = append(results, Result{
			Title:   cleanHTML(m[2]),
			URL:     resolveDDGRedirect(m[1]),
			Snippet: snippet,
		})
	}
	return results
}

func cleanHTML(s string) string {
	s = ddgTagRegex.ReplaceAllString(s, "")
	s = html.UnescapeString(s)
	return strings.TrimSpace(ddgWhitespaceRegex.ReplaceAllString(s, " "))
}

// resolveDDGRedirect unwraps //duckduckgo.com/l/?uddg=<encoded> links.
func resolveDDGRedirect(href string) string {
	u, err := url.Parse(href)
	if err != nil {
		return href
	}
	if target := u.Query().Get("uddg"); target != "" {
		if decoded, err := url.QueryUnescape(target); err == nil {
			return decoded
		}
	}
	return href
}
