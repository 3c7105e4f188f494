package analysis

import (
	"context"
	"fmt"
	"log/slog"

	"NewsRiskAgent/internal/domain"
	"NewsRiskAgent/internal/reasoning"
)

const (
	keywordStrategyName = "keyword"

	keywordConfidenceFound = 0.6
	keywordConfidenceEmpty = 0.3

	maxAssessmentCategories = 3
)

// KeywordStrategy scores articles against the indicator table without any external calls.
type KeywordStrategy struct {
	table  domain.IndicatorTable
	scope  string
	logger *slog.Logger
}

var _ Strategy = (*KeywordStrategy)(nil)

// NewKeywordStrategy wires the indicator table and geographic scope.
func NewKeywordStrategy(table domain.IndicatorTable, scope string, logger *slog.Logger) *KeywordStrategy {
	return &KeywordStrategy{table: table, scope: scopeOrDefault(scope), logger: logger}
}

// Name identifies the strategy in logs and metrics.
func (k *KeywordStrategy) Name() string {
	return keywordStrategyName
}

// Score returns the matched categories in table order; the score is their count.
func (k *KeywordStrategy) Score(text string) ([]domain.Category, int) {
	found := k.table.Match(text)
	return found, len(found)
}

// Analyze appends exactly one step to trace and never fails.
func (k *KeywordStrategy) Analyze(_ context.Context, article domain.Article, trace *reasoning.Trace) (domain.Assessment, error) {
	thought := trace.Thought("Using keyword-based risk detection...")

	found, score := k.Score(article.Text())

	action := trace.Act(reasoning.ActionKeywordScan, map[string]any{"keywords_found": score})
	observation := trace.Observe(fmt.Sprintf("Found %d risk categories: %v", len(found), domain.CategoryNames(found)))

	if err := trace.Append(thought, action.String(), observation); err != nil && k.logger != nil {
		k.logger.Warn("keyword step not recorded", "url", article.URL, "error", err)
	}

	level := LevelForScore(score)
	confidence := keywordConfidenceEmpty
	if len(found) > 0 {
		confidence = keywordConfidenceFound
	}

	return domain.Assessment{
		ArticleID:          article.ID(),
		ArticleTitle:       article.Title,
		RiskLevel:          level,
		RiskCategories:     truncateCategories(found, maxAssessmentCategories),
		Reasoning:          fmt.Sprintf("Keyword-based analysis found %d risk indicators", score),
		Confidence:         confidence,
		RecommendedActions: Recommend(level, found),
		KeyEntities:        []string{},
		GeographicScope:    k.scope,
	}, nil
}

// LevelForScore maps a keyword score to a level. The keyword path never yields Critical.
func LevelForScore(score int) domain.Level {
	switch {
	case score >= 5:
		return domain.LevelHigh
	case score >= 3:
		return domain.LevelMedium
	case score >= 1:
		return domain.LevelLow
	default:
		return domain.LevelNone
	}
}

func truncateCategories(categories []domain.Category, limit int) []domain.Category {
	if len(categories) > limit {
		categories = categories[:limit]
	}
	return append([]domain.Category{}, categories...)
}
