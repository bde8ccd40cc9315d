package fetch

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestURL_Success(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Contains(t, r.Header.Get("User-Agent"), "BlogAgent")
		w.Header().Set("Content-Type", "text/html")
		_, _ = w.Write([]byte("<html><body><main>hello</main></body></html>"))
	}))
	defer srv.Close()

	result, err := URL(context.Background(), srv.URL, nil)
	require.NoError(t, err)
	assert.Equal(t, http.StatusOK, result.StatusCode)
	assert.Contains(t, result.HTML, "hello")
	assert.Contains(t, result.ContentType, "text/html")
}

func TestURL_Invalid(t *testing.T) {
	tests := []struct {
		name string
		url  string
	}{
		{"empty", ""},
		{"no scheme", "example.com/page"},
		{"garbage", "::::"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := URL(context.Background(), tt.url, nil)
			require.Error(t, err)
			var ferr *Error
			assert.ErrorAs(t, err, &ferr)
		})
	}
}

func TestURL_NonOKStatus(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusNotFound)
	}))
	defer srv.Close()

	result, err := URL(context.Background(), srv.URL, nil)
	require.Error(t, err)
	require.NotNil(t, result)
	assert.Equal(t, http.StatusNotFound, result.StatusCode)
}

func TestExtractMainText(t *testing.T) {
	tests := []struct {
		name    string
		html    string
		want    string
		notWant string
	}{
		{
			name:    "prefers main element",
			html:    `<html><body><nav>menu</nav><main>the article body</main></body></html>`,
			want:    "the article body",
			notWant: "menu",
		},
		{
			name:    "removes script and footer noise",
			html:    `<html><body><article>content here</article><script>var x=1;</script><footer>legal</footer></body></html>`,
			want:    "content here",
			notWant: "var x=1",
		},
		{
			name: "falls back to body when no selector matches",
			html: `<html><body><div>plain div text</div></body></html>`,
			want: "plain div text",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			text, err := ExtractMainText(tt.html, DefaultTextSelectors())
			require.NoError(t, err)
			assert.Contains(t, text, tt.want)
			if tt.notWant != "" {
				assert.NotContains(t, text, tt.notWant)
			}
		})
	}
}

func TestCleanWhitespace(t *testing.T) {
	in := "  line one  \n\n\n   line two\n   \n"
	assert.Equal(t, "line one\nline two", cleanWhitespace(in))
}

func TestShouldUseBrowser(t *testing.T) {
	assert.True(t, ShouldUseBrowser("tiny"))
	assert.True(t, ShouldUseBrowser("   "))

	long := make([]byte, MinContentLength)
	for i := range long {
		long[i] = 'a'
	}
	assert.False(t, ShouldUseBrowser(string(long)))
}
