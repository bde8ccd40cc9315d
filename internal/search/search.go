// Package search provides the web-search collaborator used by topic
// generation: a Google Custom Search engine behind a small interface, and a
// Researcher that fans a fixed query set out concurrently and shapes the
// results into prompt source material.
package search

import (
	"context"
	"fmt"

	"google.golang.org/api/customsearch/v1"
	"google.golang.org/api/option"
)

// Result is one search hit.
type Result struct {
	Title   string
	Snippet string
	URL     string
}

// Engine is the search collaborator interface. Implementations return up to
// n results for a query.
type Engine interface {
	Search(ctx context.Context, query string, n int) ([]Result, error)
}

// GoogleEngine implements Engine over the Google Custom Search API.
type GoogleEngine struct {
	svc *customsearch.Service
	cx  string
}

// NewGoogleEngine creates a Custom Search engine. cx is the programmable
// search engine ID.
func NewGoogleEngine(ctx context.Context, apiKey, cx string) (*GoogleEngine, error) {
	if apiKey == "" {
		return nil, fmt.Errorf("search API key is required")
	}
	if cx == "" {
		return nil, fmt.Errorf("search engine ID is required")
	}
	svc, err := customsearch.NewService(ctx, option.WithAPIKey(apiKey))
	if err != nil {
		return nil, fmt.Errorf("failed to create customsearch service: %w", err)
	}
	return &GoogleEngine{svc: svc, cx: cx}, nil
}

// Search runs one query and returns up to n results.
func (e *GoogleEngine) Search(ctx context.Context, query string, n int) ([]Result, error) {
	resp, err := e.svc.Cse.List().Context(ctx).Cx(e.cx).Q(query).Num(int64(n)).Do()
	if err != nil {
		return nil, fmt.Errorf("search failed: %w", err)
	}

	results := make([]Result, 0, len(resp.Items))
	for _, item := range resp.Items {
		results = append(results, Result{
			Title:   item.Title,
			Snippet: item.Snippet,
			URL:     item.Link,
		})
	}
	return results, nil
}
