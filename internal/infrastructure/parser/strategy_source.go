package parser

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"NewsRiskAgent/internal/config"
	"NewsRiskAgent/internal/domain"
	"NewsRiskAgent/internal/ports"
	"NewsRiskAgent/internal/scanner"
)

// StrategySource implements ArticleSource via registered scanner strategies.
type StrategySource struct {
	registry *scanner.Registry
	sites    []config.SiteConfig
	logger   *slog.Logger
}

var _ ports.ArticleSource = (*StrategySource)(nil)

// NewStrategySource wires scanner registry with config-defined sites.
func NewStrategySource(reg *scanner.Registry, sites []config.SiteConfig, log *slog.Logger) *StrategySource {
	return &StrategySource{
		registry: reg,
		sites:    sites,
		logger:   log,
	}
}

// FetchDaily iterates over configured sites and executes their scanners.
// A failing site is logged and skipped; an error is returned only when every site failed.
func (s *StrategySource) FetchDaily(ctx context.Context, day time.Time) ([]domain.Article, error) {
	if s.registry == nil {
		return nil, fmt.Errorf("scanner registry is not configured")
	}

	s.debug("fetch daily", "sites", len(s.sites), "day", day.Format("2006-01-02"))

	var (
		aggregated []domain.Article
		failures   []error
	)
	for _, site := range s.sites {
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		s.debug("process site", "site", site.Name, "scanner", site.Scanner, "sections", len(site.Categories))
		results, err := s.scanSite(ctx, site, day)
		if err != nil {
			s.warn("site scan failed", "site", site.Name, "error", err)
			failures = append(failures, err)
			continue
		}

		s.debug("site produced articles", "site", site.Name, "count", len(results))
		aggregated = append(aggregated, results...)
	}

	if len(failures) > 0 && len(failures) == len(s.sites) {
		return nil, fmt.Errorf("all sites failed: %w", errors.Join(failures...))
	}

	s.debug("strategy source done", "total_articles", len(aggregated))
	return aggregated, nil
}

func (s *StrategySource) scanSite(ctx context.Context, site config.SiteConfig, day time.Time) ([]domain.Article, error) {
	strategy, err := s.registry.Resolve(site.Scanner)
	if err != nil {
		return nil, fmt.Errorf("site %s: %w", site.Name, err)
	}

	req := scanner.Request{
		Day:      day,
		SiteName: site.Name,
		Options:  site.Options,
		Sections: toSections(site.Categories),
	}

	results, err := strategy.Scan(ctx, req)
	if err != nil {
		return nil, fmt.Errorf("scan site %s: %w", site.Name, err)
	}

	for i := range results {
		if results[i].Source == "" {
			results[i].Source = site.Name
		}
	}
	return results, nil
}

func toSections(cfg []config.CategoryConfig) []scanner.Section {
	sections := make([]scanner.Section, 0, len(cfg))
	for _, cat := range cfg {
		sections = append(sections, scanner.Section{
			Name: cat.Name,
			URL:  cat.URL,
		})
	}
	return sections
}

func (s *StrategySource) debug(msg string, args ...interface{}) {
	if s.logger != nil {
		s.logger.Debug(msg, args...)
	}
}

func (s *StrategySource) warn(msg string, args ...interface{}) {
	if s.logger != nil {
		s.logger.Warn(msg, args...)
	}
}
