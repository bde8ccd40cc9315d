package fetch

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestEnrichKeepsLongSnippet(t *testing.T) {
	e := NewEnricher(false)
	snippet := strings.Repeat("long enough snippet. ", 20)

	// No server involved: a long snippet must never trigger a fetch.
	got := e.Enrich(context.Background(), "http://127.0.0.1:1/unreachable", snippet)
	assert.Equal(t, snippet, got)
}

func TestEnrichFetchesShortSnippet(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write([]byte("<html><body><main>full page text with much more detail</main></body></html>"))
	}))
	defer srv.Close()

	e := NewEnricher(false)
	got := e.Enrich(context.Background(), srv.URL, "short")
	assert.Equal(t, "full page text with much more detail", got)
}

func TestEnrichDegradesOnFetchFailure(t *testing.T) {
	e := NewEnricher(false)
	got := e.Enrich(context.Background(), "http://127.0.0.1:1/unreachable", "short")
	assert.Equal(t, "short", got)
}

func TestEnrichTruncatesLongPages(t *testing.T) {
	body := strings.Repeat("x", 5000)
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write([]byte("<html><body><main>" + body + "</main></body></html>"))
	}))
	defer srv.Close()

	e := NewEnricher(false)
	got := e.Enrich(context.Background(), srv.URL, "short")
	assert.Len(t, got, e.MaxTextLen)
}

func TestEnrichEmptyPageFallsBackToSnippet(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write([]byte("<html><body><main>   </main></body></html>"))
	}))
	defer srv.Close()

	e := NewEnricher(false)
	got := e.Enrich(context.Background(), srv.URL, "short")
	assert.Equal(t, "short", got)
}
