package usecase

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"

	"NewsRiskAgent/internal/analysis"
	"NewsRiskAgent/internal/domain"
	"NewsRiskAgent/internal/ports"
)

// BatchAnalyzer turns a batch of articles into assessments, skipping the ones it cannot analyze.
type BatchAnalyzer interface {
	AnalyzeBatch(ctx context.Context, articles []domain.Article) []domain.Assessment
}

// PipelineDeps wires all driven adapters into the orchestration pipeline.
type PipelineDeps struct {
	Source      ports.ArticleSource
	Articles    ports.ArticleRepository
	Assessments ports.AssessmentRepository
	Analyzer    BatchAnalyzer
	Reports     ports.ReportWriter
	Notifier    ports.Notifier
	Logger      *slog.Logger
	Now         func() time.Time
}

// Pipeline implements the fetch, store, assess, report and notify workflow.
type Pipeline struct {
	source      ports.ArticleSource
	articles    ports.ArticleRepository
	assessments ports.AssessmentRepository
	analyzer    BatchAnalyzer
	reports     ports.ReportWriter
	notifier    ports.Notifier
	logger      *slog.Logger
	now         func() time.Time
}

// RunResult describes one analysis or report run.
type RunResult struct {
	RunID       string
	Analyzed    int
	Skipped     int
	Summary     domain.Summary
	Assessments []domain.Assessment
	ReportPath  string
}

// NewPipeline constructs the orchestration component.
func NewPipeline(deps PipelineDeps) *Pipeline {
	now := deps.Now
	if now == nil {
		now = time.Now
	}
	return &Pipeline{
		source:      deps.Source,
		articles:    deps.Articles,
		assessments: deps.Assessments,
		analyzer:    deps.Analyzer,
		reports:     deps.Reports,
		notifier:    deps.Notifier,
		logger:      deps.Logger,
		now:         now,
	}
}

// Scrape fetches the day's articles and stores them. It returns what was fetched.
func (p *Pipeline) Scrape(ctx context.Context, day time.Time) ([]domain.Article, error) {
	if p.source == nil {
		return nil, fmt.Errorf("article source is not configured")
	}

	articles, err := p.source.FetchDaily(ctx, day)
	if err != nil {
		return nil, fmt.Errorf("fetch daily: %w", err)
	}
	p.info("articles fetched", "count", len(articles), "day", day.Format("2006-01-02"))

	if p.articles != nil && len(articles) > 0 {
		if err := p.articles.SaveArticles(ctx, articles); err != nil {
			return nil, fmt.Errorf("persist articles: %w", err)
		}
	}
	return articles, nil
}

// ProcessDay scrapes the day and assesses every fetched article not assessed before.
func (p *Pipeline) ProcessDay(ctx context.Context, day time.Time) (RunResult, error) {
	articles, err := p.Scrape(ctx, day)
	if err != nil {
		return RunResult{}, err
	}
	return p.Assess(ctx, articles, false)
}

// AnalyzeStored assesses articles stored since the given time. With force, earlier assessments are redone.
func (p *Pipeline) AnalyzeStored(ctx context.Context, since time.Time, force bool) (RunResult, error) {
	if p.articles == nil {
		return RunResult{}, fmt.Errorf("article repository is not configured")
	}

	articles, err := p.articles.RecentArticles(ctx, since)
	if err != nil {
		return RunResult{}, fmt.Errorf("load recent articles: %w", err)
	}
	p.info("stored articles loaded", "count", len(articles), "since", since.Format(time.RFC3339))
	return p.Assess(ctx, articles, force)
}

// Assess analyzes articles, persists assessments, writes the report and sends the high-priority digest.
func (p *Pipeline) Assess(ctx context.Context, articles []domain.Article, force bool) (RunResult, error) {
	if p.analyzer == nil {
		return RunResult{}, fmt.Errorf("analyzer is not configured")
	}

	result := RunResult{RunID: uuid.NewString()}

	pending, err := p.pending(ctx, articles, force)
	if err != nil {
		return result, err
	}
	result.Skipped = len(articles) - len(pending)

	assessments := p.analyzer.AnalyzeBatch(ctx, pending)
	result.Analyzed = len(assessments)
	result.Assessments = assessments
	p.info("batch analyzed", "run_id", result.RunID, "articles", len(pending),
		"assessed", len(assessments), "skipped", result.Skipped)

	if p.assessments != nil {
		for _, a := range assessments {
			if err := p.assessments.SaveAssessment(ctx, result.RunID, a); err != nil {
				return result, fmt.Errorf("persist assessment %s: %w", a.ArticleID, err)
			}
		}
	}

	result.Summary = analysis.GenerateSummaryReport(assessments, p.now())

	if err := p.writeReport(ctx, &result); err != nil {
		return result, err
	}

	if err := p.notify(ctx, result.Summary, articles); err != nil {
		p.warn("digest not delivered", "run_id", result.RunID, "error", err)
	}
	return result, nil
}

// Report rebuilds the summary from assessments stored since the given time and rewrites the report document.
func (p *Pipeline) Report(ctx context.Context, since time.Time) (RunResult, error) {
	if p.assessments == nil {
		return RunResult{}, fmt.Errorf("assessment repository is not configured")
	}

	assessments, err := p.assessments.RecentAssessments(ctx, since)
	if err != nil {
		return RunResult{}, fmt.Errorf("load recent assessments: %w", err)
	}

	result := RunResult{
		RunID:       uuid.NewString(),
		Analyzed:    len(assessments),
		Assessments: assessments,
		Summary:     analysis.GenerateSummaryReport(assessments, p.now()),
	}
	if err := p.writeReport(ctx, &result); err != nil {
		return result, err
	}
	return result, nil
}

// Statistics reports stored article counts per source.
func (p *Pipeline) Statistics(ctx context.Context) (domain.SourceStats, error) {
	if p.articles == nil {
		return domain.SourceStats{}, fmt.Errorf("article repository is not configured")
	}
	return p.articles.Statistics(ctx)
}

func (p *Pipeline) pending(ctx context.Context, articles []domain.Article, force bool) ([]domain.Article, error) {
	if force || p.assessments == nil || len(articles) == 0 {
		return articles, nil
	}

	ids := make([]string, len(articles))
	for i, art := range articles {
		ids[i] = art.ID()
	}

	done, err := p.assessments.AlreadyAssessed(ctx, ids)
	if err != nil {
		return nil, fmt.Errorf("load assessed: %w", err)
	}

	pending := make([]domain.Article, 0, len(articles))
	for _, art := range articles {
		if !done[art.ID()] {
			pending = append(pending, art)
		}
	}
	return pending, nil
}

func (p *Pipeline) writeReport(ctx context.Context, result *RunResult) error {
	if p.reports == nil {
		return nil
	}
	path, err := p.reports.WriteReport(ctx, domain.Report{
		RunID:               result.RunID,
		Summary:             result.Summary,
		DetailedAssessments: result.Assessments,
	})
	if err != nil {
		return fmt.Errorf("write report: %w", err)
	}
	result.ReportPath = path
	p.info("report written", "run_id", result.RunID, "path", path)
	return nil
}

func (p *Pipeline) notify(ctx context.Context, summary domain.Summary, articles []domain.Article) error {
	if p.notifier == nil || summary.HighPriorityCount == 0 {
		return nil
	}
	return p.notifier.PublishDigest(ctx, buildDigestMessage(summary, articles))
}

func buildDigestMessage(summary domain.Summary, articles []domain.Article) string {
	urls := make(map[string]string, len(articles))
	for _, art := range articles {
		urls[art.ID()] = art.URL
	}

	var b strings.Builder
	fmt.Fprintf(&b, "%d high-priority of %d articles analyzed\n", summary.HighPriorityCount, summary.TotalArticlesAnalyzed)
	for i, a := range summary.HighPriorityArticles {
		fmt.Fprintf(&b, "\n%d. [%s] %s\n", i+1, strings.ToUpper(a.RiskLevel.String()), a.ArticleTitle)
		if len(a.RiskCategories) > 0 {
			fmt.Fprintf(&b, "Categories: %s\n", strings.Join(domain.CategoryNames(a.RiskCategories), ", "))
		}
		if len(a.RecommendedActions) > 0 {
			fmt.Fprintf(&b, "Action: %s\n", a.RecommendedActions[0])
		}
		if u := urls[a.ArticleID]; u != "" {
			b.WriteString(u + "\n")
		}
	}
	if extra := summary.HighPriorityCount - len(summary.HighPriorityArticles); extra > 0 {
		fmt.Fprintf(&b, "\n...and %d more\n", extra)
	}
	return b.String()
}

func (p *Pipeline) info(msg string, args ...any) {
	if p.logger != nil {
		p.logger.Info(msg, args...)
	}
}

func (p *Pipeline) warn(msg string, args ...any) {
	if p.logger != nil {
		p.logger.Warn(msg, args...)
	}
}
