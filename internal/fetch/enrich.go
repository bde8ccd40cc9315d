package fetch

import (
	"context"
	"log"
	"strings"
	"time"
)

// Enricher substitutes short search snippets with the fetched page's main
// text. Any failure degrades to the original snippet; research must never
// break because one source page is unreachable.
type Enricher struct {
	// MinSnippetLen is the snippet length below which a fetch is attempted.
	MinSnippetLen int
	// MaxTextLen truncates extracted page text to keep prompts bounded.
	MaxTextLen int
	// UseBrowser enables the headless-browser retry for client-rendered pages.
	UseBrowser bool
	// Timeout bounds each page fetch.
	Timeout time.Duration
	// Verbose enables per-page logging.
	Verbose bool
}

// NewEnricher returns an Enricher with defaults tuned for research snippets.
func NewEnricher(useBrowser bool) *Enricher {
	return &Enricher{
		MinSnippetLen: 160,
		MaxTextLen:    2000,
		UseBrowser:    useBrowser,
		Timeout:       15 * time.Second,
	}
}

// Enrich returns fuller text for a search result when the snippet is short,
// or the snippet unchanged when it is long enough or the fetch fails.
func (e *Enricher) Enrich(ctx context.Context, url, snippet string) string {
	if len(strings.TrimSpace(snippet)) >= e.MinSnippetLen {
		return snippet
	}

	result, err := URL(ctx, url, &Options{Timeout: e.Timeout, UserAgent: DefaultUserAgent})
	if err != nil {
		if e.Verbose {
			log.Printf("[FETCH] enrichment fetch failed for %s: %v", url, err)
		}
		return snippet
	}

	text, err := ExtractMainText(result.HTML, DefaultTextSelectors())
	if err != nil {
		return snippet
	}

	if e.UseBrowser && ShouldUseBrowser(text) {
		if html, berr := WithBrowser(ctx, url, e.Timeout, e.Verbose); berr == nil {
			if rendered, xerr := ExtractMainText(html, DefaultTextSelectors()); xerr == nil && len(rendered) > len(text) {
				text = rendered
			}
		}
	}

	text = strings.TrimSpace(text)
	if text == "" {
		return snippet
	}
	if len(text) > e.MaxTextLen {
		text = text[:e.MaxTextLen]
	}
	return text
}
