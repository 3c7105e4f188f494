package ports

import (
	"context"
	"errors"
	"time"

	"NewsRiskAgent/internal/domain"
)

// ArticleSource pulls fresh articles from upstream providers.
type ArticleSource interface {
	FetchDaily(ctx context.Context, day time.Time) ([]domain.Article, error)
}

// ArticleRepository persists fetched articles keyed by URL.
type ArticleRepository interface {
	SaveArticles(ctx context.Context, articles []domain.Article) error
	RecentArticles(ctx context.Context, since time.Time) ([]domain.Article, error)
	Statistics(ctx context.Context) (domain.SourceStats, error)
}

// AssessmentRepository persists assessments for history and deduplication.
type AssessmentRepository interface {
	AlreadyAssessed(ctx context.Context, ids []string) (map[string]bool, error)
	SaveAssessment(ctx context.Context, runID string, assessment domain.Assessment) error
	RecentAssessments(ctx context.Context, since time.Time) ([]domain.Assessment, error)
}

// CompletionRequest is one call to a generative analysis backend.
type CompletionRequest struct {
	SystemInstruction string
	UserInstruction   string
	Temperature       float32
	MaxOutputTokens   int
}

// ErrEmptyCompletion is returned by backends that answered without any text.
var ErrEmptyCompletion = errors.New("backend returned empty completion")

// CompletionBackend turns instructions into plain text; no structured schema is assumed.
type CompletionBackend interface {
	Complete(ctx context.Context, req CompletionRequest) (string, error)
}

// EntityExtractor finds people, organizations and places mentioned in an article.
type EntityExtractor interface {
	ExtractEntities(ctx context.Context, article domain.Article) ([]string, error)
}

// Notifier streams high-priority digests to Telegram or other channels.
type Notifier interface {
	PublishDigest(ctx context.Context, digest string) error
}

// ReportWriter persists the batch report document.
type ReportWriter interface {
	WriteReport(ctx context.Context, report domain.Report) (string, error)
}

// Scheduler controls when pipelines execute.
type Scheduler interface {
	Start(ctx context.Context, job func(time.Time)) error
	Stop(ctx context.Context) error
}
