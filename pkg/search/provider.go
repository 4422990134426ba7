package search

import (
	"context"
	"fmt"
	"strings"
)

// Result is a single web search hit.
type Result struct {
	Title   string `json:"title"`
	URL     string `json:"url"`
	Snippet string `json:"snippet"`
}

// Provider is a web search tool: free-text query in, results out.
type Provider interface {
	Search(ctx context.Context, query string) ([]Result, error)
}

// FormatResults renders results as the plain text block handed to the LLM.
func FormatResults(results []Result) string {
	if len(results) == 0 {
		return ""
	}
	var sb strings.Builder
	for i, r := range results {
		if i > 0 {
			sb.WriteString("\n\n")
		}
		sb.WriteString(fmt.Sprintf("%d. %s\n%s\n%s", i+1, r.Title, r.URL, r.Snippet))
	}
	return sb.String()
}
