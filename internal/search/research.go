package search

import (
	"context"
	"fmt"
	"strings"

	"golang.org/x/sync/errgroup"
)

// topicQueries is the fixed research query set for topic generation, one
// block of results per query.
var topicQueries = []string{
	"GitHub AI trends 2025",
	"OpenAI latest research 2025",
	"Google DeepMind projects 2025",
	"Hugging Face new releases 2025",
	"Microsoft AI announcements 2025",
	"Meta AI trends 2025",
	"Hacker News top posts AI 2025",
	"arXiv trending AI papers 2025",
	"TechCrunch AI startups 2025",
}

// Enricher optionally replaces a short result snippet with fuller text,
// typically by fetching the result page. Failures must degrade to the
// original snippet.
type Enricher interface {
	Enrich(ctx context.Context, url, snippet string) string
}

// Researcher gathers topic-research source material by running the fixed
// query set against an Engine. Queries run concurrently with a bounded
// worker limit; a failed query contributes a failure line and never aborts
// the others.
type Researcher struct {
	engine          Engine
	enricher        Enricher
	resultsPerQuery int
	concurrency     int
}

// ResearcherOption configures a Researcher.
type ResearcherOption func(*Researcher)

// WithEnricher enables snippet enrichment for fetched results.
func WithEnricher(e Enricher) ResearcherOption {
	return func(r *Researcher) { r.enricher = e }
}

// WithResultsPerQuery overrides the per-query result count (default 3).
func WithResultsPerQuery(n int) ResearcherOption {
	return func(r *Researcher) { r.resultsPerQuery = n }
}

// WithConcurrency overrides the worker limit (default 3).
func WithConcurrency(n int) ResearcherOption {
	return func(r *Researcher) { r.concurrency = n }
}

// NewResearcher creates a Researcher over the given engine.
func NewResearcher(engine Engine, opts ...ResearcherOption) *Researcher {
	r := &Researcher{
		engine:          engine,
		resultsPerQuery: 3,
		concurrency:     3,
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Queries returns the fixed research query set.
func Queries() []string {
	out := make([]string, len(topicQueries))
	copy(out, topicQueries)
	return out
}

// Research runs all queries and returns the combined source material in
// query order. The only error it returns is context cancellation; per-query
// failures are recorded inline and tolerated.
func (r *Researcher) Research(ctx context.Context) (string, error) {
	blocks := make([]string, len(topicQueries))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(r.concurrency)
	for i, query := range topicQueries {
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			blocks[i] = r.queryBlock(gctx, query)
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return "", err
	}

	return strings.Join(blocks, "\n\n"), nil
}

// queryBlock formats one query's results. Engine failures degrade to a
// failure line so the remaining queries still contribute.
func (r *Researcher) queryBlock(ctx context.Context, query string) string {
	var sb strings.Builder
	fmt.Fprintf(&sb, "Search: %s\n", query)

	results, err := r.engine.Search(ctx, query, r.resultsPerQuery)
	if err != nil {
		fmt.Fprintf(&sb, "Search failed for: %s\n", query)
		return sb.String()
	}

	for _, res := range results {
		snippet := res.Snippet
		if r.enricher != nil {
			snippet = r.enricher.Enrich(ctx, res.URL, res.Snippet)
		}
		fmt.Fprintf(&sb, "Title: %s\n", res.Title)
		fmt.Fprintf(&sb, "Body: %s\n", snippet)
		fmt.Fprintf(&sb, "URL: %s\n", res.URL)
	}
	return sb.String()
}
