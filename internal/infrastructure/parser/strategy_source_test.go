package parser

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"NewsRiskAgent/internal/config"
	"NewsRiskAgent/internal/domain"
	"NewsRiskAgent/internal/scanner"
)

type fakeScanner struct {
	name     string
	articles []domain.Article
	err      error
	requests []scanner.Request
}

func (f *fakeScanner) Name() string { return f.name }

func (f *fakeScanner) Scan(_ context.Context, req scanner.Request) ([]domain.Article, error) {
	f.requests = append(f.requests, req)
	return f.articles, f.err
}

func TestStrategySourceFetchDaily(t *testing.T) {
	t.Parallel()

	good := &fakeScanner{name: "html", articles: []domain.Article{{Title: "A", URL: "https://a.lk/1"}}}
	bad := &fakeScanner{name: "rss", err: errors.New("feed down")}
	reg := scanner.NewRegistry(good, bad)

	sites := []config.SiteConfig{
		{Name: "Site A", Scanner: "html", Categories: []config.CategoryConfig{{Name: "home", URL: "https://a.lk"}}},
		{Name: "Site B", Scanner: "rss", Categories: []config.CategoryConfig{{Name: "feed", URL: "https://b.lk/rss"}}},
	}
	day := time.Date(2025, time.November, 8, 0, 0, 0, 0, time.UTC)

	articles, err := NewStrategySource(reg, sites, nil).FetchDaily(context.Background(), day)
	require.NoError(t, err)
	require.Len(t, articles, 1)
	assert.Equal(t, "Site A", articles[0].Source)

	require.Len(t, good.requests, 1)
	assert.Equal(t, day, good.requests[0].Day)
	assert.Equal(t, []scanner.Section{{Name: "home", URL: "https://a.lk"}}, good.requests[0].Sections)
}

func TestStrategySourceAllSitesFail(t *testing.T) {
	t.Parallel()

	reg := scanner.NewRegistry(&fakeScanner{name: "rss", err: errors.New("feed down")})
	sites := []config.SiteConfig{
		{Name: "Site B", Scanner: "rss"},
		{Name: "Site C", Scanner: "unknown"},
	}

	_, err := NewStrategySource(reg, sites, nil).FetchDaily(context.Background(), time.Now())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "feed down")
	assert.Contains(t, err.Error(), "not registered")
}
