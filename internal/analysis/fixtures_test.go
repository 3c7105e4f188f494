package analysis

import (
	"context"
	"errors"
	"strings"
	"sync"

	"NewsRiskAgent/internal/domain"
	"NewsRiskAgent/internal/ports"
)

var (
	protestArticle = domain.Article{
		Title: "Mass Protests Erupt in Colombo Over Rising Inflation",
		URL:   "https://news.example.lk/protests",
		Description: "Thousands took to the streets today as inflation reached 50%, with protesters demanding " +
			"government resignation and economic reforms. Police used tear gas to disperse crowds near the presidential palace.",
		Source: "Ada Derana",
	}
	startupArticle = domain.Article{
		Title: "Tech Startup Raises $10M in Series A Funding",
		URL:   "https://news.example.lk/startup",
		Description: "Local software company SecureTech announced a successful Series A funding round led by " +
			"international investors, marking positive growth in Sri Lanka's technology sector.",
		Source: "Daily Mirror",
	}
	corruptionArticle = domain.Article{
		Title: "Corruption Allegations Surface Against Minister",
		URL:   "https://news.example.lk/minister",
		Description: "Opposition parties have accused a senior government minister of accepting bribes, alleging he " +
			"received kickbacks from a construction contract. The minister denied the allegations, calling them a political attack.",
		Source: "News First",
	}
)

// thresholdPhrases each trigger exactly one distinct category of the default table.
var thresholdPhrases = []string{"coup", "riot", "militant", "recession", "bribery"}

func articleWithPhrases(n int) domain.Article {
	return domain.Article{
		Title:       "Synthetic",
		URL:         "https://news.example.lk/synthetic",
		Description: strings.Join(thresholdPhrases[:n], " and "),
	}
}

type stubBackend struct {
	mu       sync.Mutex
	output   string
	err      error
	block    bool
	panicMsg string
	requests []ports.CompletionRequest
}

var _ ports.CompletionBackend = (*stubBackend)(nil)

func (s *stubBackend) Complete(ctx context.Context, req ports.CompletionRequest) (string, error) {
	s.mu.Lock()
	s.requests = append(s.requests, req)
	s.mu.Unlock()

	if s.panicMsg != "" {
		panic(s.panicMsg)
	}
	if s.block {
		<-ctx.Done()
		return "", ctx.Err()
	}
	return s.output, s.err
}

type stubEntities struct {
	entities []string
	err      error
	calls    int
}

func (s *stubEntities) ExtractEntities(context.Context, domain.Article) ([]string, error) {
	s.calls++
	return s.entities, s.err
}

var errBackendDown = errors.New("backend unavailable")
