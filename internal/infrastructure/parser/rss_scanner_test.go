package parser

import (
	"context"
	"net/http"
	"net/http/httptest"
	"net/url"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"NewsRiskAgent/internal/scanner"
)

const feedXML = `<?xml version="1.0" encoding="UTF-8"?>
<rss version="2.0">
<channel>
  <title>Example Feed</title>
  <item>
    <title>Fuel shortage deepens</title>
    <link>https://example.lk/news/fuel</link>
    <description><![CDATA[<p>Queues <b>stretch</b> for kilometres.</p>]]></description>
    <pubDate>Sat, 08 Nov 2025 06:00:00 +0000</pubDate>
  </item>
  <item>
    <title>Fuel shortage deepens</title>
    <link>https://EXAMPLE.lk/news/fuel/</link>
  </item>
  <item>
    <title></title>
    <link>https://example.lk/news/untitled</link>
  </item>
  <item>
    <title>Archived</title>
    <link>https://example.lk/news/archived</link>
    <pubDate>Mon, 03 Nov 2025 06:00:00 +0000</pubDate>
  </item>
</channel>
</rss>`

func TestRSSScannerScan(t *testing.T) {
	t.Parallel()

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "application/rss+xml")
		_, _ = w.Write([]byte(feedXML))
	}))
	defer server.Close()

	sc := NewRSSScanner(server.Client())
	articles, err := sc.Scan(context.Background(), scanner.Request{
		Day:      time.Date(2025, time.November, 8, 0, 0, 0, 0, time.UTC),
		SiteName: "Example RSS",
		Sections: []scanner.Section{{Name: "top", URL: server.URL + "/rss"}},
	})
	require.NoError(t, err)
	require.Len(t, articles, 1)

	got := articles[0]
	assert.Equal(t, "Fuel shortage deepens", got.Title)
	assert.Equal(t, "https://example.lk/news/fuel", got.URL)
	assert.Equal(t, "Queues stretch for kilometres.", got.Description)
	assert.Equal(t, "Example RSS", got.Source)
	require.NotNil(t, got.PublishedAt)
	assert.True(t, got.PublishedAt.Equal(time.Date(2025, time.November, 8, 6, 0, 0, 0, time.UTC)))
}

func TestRSSScannerRejectsGarbage(t *testing.T) {
	t.Parallel()

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write([]byte("not a feed"))
	}))
	defer server.Close()

	_, err := NewRSSScanner(server.Client()).Scan(context.Background(), scanner.Request{
		SiteName: "broken",
		Sections: []scanner.Section{{Name: "top", URL: server.URL}},
	})
	require.Error(t, err)
}

func TestPlainText(t *testing.T) {
	t.Parallel()

	assert.Equal(t, "plain", plainText(" plain "))
	assert.Equal(t, "a b", plainText("<div>a <i>b</i></div>"))
	assert.Equal(t, "", plainText(""))
}

func mustParseURL(t *testing.T, raw string) *url.URL {
	t.Helper()
	u, err := url.Parse(raw)
	require.NoError(t, err)
	return u
}
