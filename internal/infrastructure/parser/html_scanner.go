package parser

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"

	"NewsRiskAgent/internal/domain"
	"NewsRiskAgent/internal/scanner"
)

const (
	userAgent = "NewsRiskAgent/1.0"

	optionHeadlines   = "headlines"
	optionTimestamp   = "timestamp"
	optionDescription = "description"

	defaultHeadlineSelector  = "h2 a, h3 a"
	defaultTimestampSelector = "time"
)

var timestampLayouts = []string{
	time.RFC3339,
	time.RFC1123Z,
	time.RFC1123,
	"2006-01-02 15:04:05",
	"2006-01-02T15:04",
	"2006-01-02",
	"January 2, 2006 3:04 pm",
	"02 Jan 2006",
}

// HTMLScanner pulls headline links out of section pages with CSS selectors taken from site options.
type HTMLScanner struct {
	client *http.Client
}

// NewHTMLScanner wires an HTTP client; a nil client gets a 20s timeout.
func NewHTMLScanner(client *http.Client) *HTMLScanner {
	if client == nil {
		client = &http.Client{Timeout: 20 * time.Second}
	}
	return &HTMLScanner{client: client}
}

// Name identifies the strategy inside the registry.
func (h *HTMLScanner) Name() string {
	return "html"
}

// Scan fetches every section page once and returns headlines not known to be older than req.Day.
func (h *HTMLScanner) Scan(ctx context.Context, req scanner.Request) ([]domain.Article, error) {
	if len(req.Sections) == 0 {
		return nil, fmt.Errorf("no sections provided for site %s", req.SiteName)
	}

	headlines := optionOr(req.Options, optionHeadlines, defaultHeadlineSelector)
	timestamp := optionOr(req.Options, optionTimestamp, defaultTimestampSelector)
	description := req.Options[optionDescription]

	results := make([]domain.Article, 0)
	seen := map[string]struct{}{}

	for _, section := range req.Sections {
		base, err := url.Parse(section.URL)
		if err != nil {
			return nil, fmt.Errorf("section %s: invalid url %s: %w", section.Name, section.URL, err)
		}

		doc, err := h.fetchDocument(ctx, section.URL)
		if err != nil {
			return nil, fmt.Errorf("section %s: %w", section.Name, err)
		}

		doc.Find(headlines).Each(func(_ int, link *goquery.Selection) {
			article, ok := parseHeadline(link, base, req.SiteName, timestamp, description)
			if !ok || olderThanDay(article.PublishedAt, req.Day) {
				return
			}
			key := domain.NormalizeURL(article.URL)
			if _, dup := seen[key]; dup {
				return
			}
			seen[key] = struct{}{}
			results = append(results, article)
		})
	}

	return results, nil
}

func (h *HTMLScanner) fetchDocument(ctx context.Context, pageURL string) (*goquery.Document, error) {
	resp, err := get(ctx, h.client, pageURL)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	doc, err := goquery.NewDocumentFromReader(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("parse document: %w", err)
	}
	return doc, nil
}

func parseHeadline(link *goquery.Selection, base *url.URL, siteName, timestampSel, descriptionSel string) (domain.Article, bool) {
	title := strings.Join(strings.Fields(link.Text()), " ")
	href, _ := link.Attr("href")
	href = strings.TrimSpace(href)
	if title == "" || href == "" || strings.HasPrefix(href, "#") || strings.HasPrefix(href, "javascript:") {
		return domain.Article{}, false
	}

	ref, err := url.Parse(href)
	if err != nil {
		return domain.Article{}, false
	}

	article := domain.Article{
		Title:  title,
		URL:    base.ResolveReference(ref).String(),
		Source: siteName,
	}

	container := link.Parent()
	if ts := container.Find(timestampSel).First(); ts.Length() > 0 {
		raw, ok := ts.Attr("datetime")
		if !ok {
			raw = ts.Text()
		}
		if parsed, ok := parseTimestamp(raw); ok {
			article.PublishedAt = &parsed
		}
	}
	if descriptionSel != "" {
		article.Description = strings.TrimSpace(container.Find(descriptionSel).First().Text())
	}

	return article, true
}

func parseTimestamp(raw string) (time.Time, bool) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return time.Time{}, false
	}
	for _, layout := range timestampLayouts {
		if parsed, err := time.Parse(layout, raw); err == nil {
			return parsed, true
		}
	}
	return time.Time{}, false
}

// olderThanDay reports whether a known publication time falls before the requested day.
// A zero day disables the filter.
func olderThanDay(published *time.Time, day time.Time) bool {
	if published == nil || day.IsZero() {
		return false
	}
	start := time.Date(day.Year(), day.Month(), day.Day(), 0, 0, 0, 0, day.Location())
	return published.Before(start)
}

func optionOr(options map[string]string, key, fallback string) string {
	if v := strings.TrimSpace(options[key]); v != "" {
		return v
	}
	return fallback
}

func get(ctx context.Context, client *http.Client, target string) (*http.Response, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, target, nil)
	if err != nil {
		return nil, fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("User-Agent", userAgent)

	resp, err := client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("request %s: %w", target, err)
	}
	if resp.StatusCode != http.StatusOK {
		resp.Body.Close()
		return nil, fmt.Errorf("%s returned %s", target, resp.Status)
	}
	return resp, nil
}
