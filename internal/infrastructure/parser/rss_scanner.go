package parser

import (
	"context"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"
	"github.com/mmcdole/gofeed"

	"NewsRiskAgent/internal/domain"
	"NewsRiskAgent/internal/scanner"
)

// RSSScanner reads RSS/Atom feeds listed as site sections.
type RSSScanner struct {
	client *http.Client
}

// NewRSSScanner wires an HTTP client; a nil client gets a 20s timeout.
func NewRSSScanner(client *http.Client) *RSSScanner {
	if client == nil {
		client = &http.Client{Timeout: 20 * time.Second}
	}
	return &RSSScanner{client: client}
}

// Name identifies the strategy inside the registry.
func (r *RSSScanner) Name() string {
	return "rss"
}

// Scan parses every feed and maps items to articles, skipping items without title or link.
func (r *RSSScanner) Scan(ctx context.Context, req scanner.Request) ([]domain.Article, error) {
	if len(req.Sections) == 0 {
		return nil, fmt.Errorf("no feeds provided for site %s", req.SiteName)
	}

	results := make([]domain.Article, 0)
	seen := map[string]struct{}{}

	for _, section := range req.Sections {
		feed, err := r.fetchFeed(ctx, section.URL)
		if err != nil {
			return nil, fmt.Errorf("feed %s: %w", section.Name, err)
		}

		for _, item := range feed.Items {
			article, ok := itemToArticle(item, req.SiteName)
			if !ok || olderThanDay(article.PublishedAt, req.Day) {
				continue
			}
			key := domain.NormalizeURL(article.URL)
			if _, dup := seen[key]; dup {
				continue
			}
			seen[key] = struct{}{}
			results = append(results, article)
		}
	}

	return results, nil
}

func (r *RSSScanner) fetchFeed(ctx context.Context, feedURL string) (*gofeed.Feed, error) {
	resp, err := get(ctx, r.client, feedURL)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	feed, err := gofeed.NewParser().Parse(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("parse feed: %w", err)
	}
	return feed, nil
}

func itemToArticle(item *gofeed.Item, siteName string) (domain.Article, bool) {
	if item == nil {
		return domain.Article{}, false
	}
	title := strings.TrimSpace(item.Title)
	link := strings.TrimSpace(item.Link)
	if title == "" || link == "" {
		return domain.Article{}, false
	}

	article := domain.Article{
		Title:       title,
		URL:         link,
		Source:      siteName,
		Description: plainText(item.Description),
	}
	switch {
	case item.PublishedParsed != nil:
		published := item.PublishedParsed.UTC()
		article.PublishedAt = &published
	case item.UpdatedParsed != nil:
		updated := item.UpdatedParsed.UTC()
		article.PublishedAt = &updated
	}
	return article, true
}

// plainText strips markup that feeds commonly embed in descriptions.
func plainText(fragment string) string {
	fragment = strings.TrimSpace(fragment)
	if fragment == "" || !strings.Contains(fragment, "<") {
		return fragment
	}
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(fragment))
	if err != nil {
		return fragment
	}
	return strings.Join(strings.Fields(doc.Text()), " ")
}
