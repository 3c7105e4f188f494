// Package analysis turns articles into risk assessments and rolls them up into summaries.
package analysis

import (
	"context"
	"errors"

	"NewsRiskAgent/internal/domain"
	"NewsRiskAgent/internal/reasoning"
)

// DefaultGeographicScope is attached to assessments when configuration leaves it empty.
const DefaultGeographicScope = "Sri Lanka"

// ErrInvalidArticle marks articles that cannot be identified.
var ErrInvalidArticle = errors.New("article has no url")

// Strategy produces an assessment for one article, recording its reasoning into trace.
// The returned assessment carries no reasoning trace; the engine attaches it.
type Strategy interface {
	Name() string
	Analyze(ctx context.Context, article domain.Article, trace *reasoning.Trace) (domain.Assessment, error)
}

func scopeOrDefault(scope string) string {
	if scope == "" {
		return DefaultGeographicScope
	}
	return scope
}
