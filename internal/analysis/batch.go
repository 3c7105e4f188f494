package analysis

import (
	"context"
	"fmt"

	"golang.org/x/sync/errgroup"

	"NewsRiskAgent/internal/domain"
)

// AnalyzeBatch analyzes articles independently across the configured worker count.
// A failing article is logged and left out; the remaining assessments keep input order.
func (e *Engine) AnalyzeBatch(ctx context.Context, articles []domain.Article) []domain.Assessment {
	results := make([]*domain.Assessment, len(articles))

	var g errgroup.Group
	g.SetLimit(e.workers)

	for i, article := range articles {
		g.Go(func() error {
			e.info("processing article", "index", i+1, "total", len(articles), "url", article.URL)

			assessment, err := e.analyzeIsolated(ctx, article)
			if err != nil {
				batchFailuresTotal.Inc()
				e.logError("failed to analyze article", "title", truncate(article.Title, 30), "url", article.URL, "error", err)
				return nil
			}
			results[i] = &assessment
			return nil
		})
	}
	_ = g.Wait()

	assessments := make([]domain.Assessment, 0, len(articles))
	for _, r := range results {
		if r != nil {
			assessments = append(assessments, *r)
		}
	}
	return assessments
}

func (e *Engine) analyzeIsolated(ctx context.Context, article domain.Article) (assessment domain.Assessment, err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("%w: %v", errAnalysisPanic, r)
		}
	}()
	return e.Analyze(ctx, article)
}

func truncate(s string, n int) string {
	runes := []rune(s)
	if len(runes) <= n {
		return s
	}
	return string(runes[:n])
}
