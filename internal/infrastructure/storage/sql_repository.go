package storage

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	sq "github.com/Masterminds/squirrel"
	_ "github.com/lib/pq"
	_ "modernc.org/sqlite"

	"NewsRiskAgent/internal/domain"
	"NewsRiskAgent/internal/ports"
)

const (
	DriverSQLite   = "sqlite"
	DriverPostgres = "postgres"

	timeLayout = "2006-01-02T15:04:05.000000000Z07:00"
)

var schema = []string{
	`CREATE TABLE IF NOT EXISTS articles (
		id           TEXT PRIMARY KEY,
		url          TEXT NOT NULL,
		title        TEXT NOT NULL,
		source       TEXT NOT NULL,
		description  TEXT NOT NULL DEFAULT '',
		published_at TEXT,
		scraped_at   TEXT NOT NULL
	)`,
	`CREATE INDEX IF NOT EXISTS articles_scraped_at_idx ON articles (scraped_at)`,
	`CREATE TABLE IF NOT EXISTS assessments (
		article_id  TEXT PRIMARY KEY,
		run_id      TEXT NOT NULL,
		risk_level  TEXT NOT NULL,
		confidence  DOUBLE PRECISION NOT NULL,
		analyzed_at TEXT NOT NULL,
		payload     TEXT NOT NULL
	)`,
	`CREATE INDEX IF NOT EXISTS assessments_analyzed_at_idx ON assessments (analyzed_at)`,
}

// SQLRepository stores articles and assessments in SQLite or Postgres.
// Times are kept as UTC RFC3339 text so range filters behave the same on both drivers.
type SQLRepository struct {
	db  *sql.DB
	sb  sq.StatementBuilderType
	now func() time.Time
}

var (
	_ ports.ArticleRepository    = (*SQLRepository)(nil)
	_ ports.AssessmentRepository = (*SQLRepository)(nil)
)

// Open connects to the database, creating the schema when missing.
func Open(ctx context.Context, driver, dsn string) (*SQLRepository, error) {
	if driver == "" {
		driver = DriverSQLite
	}
	if driver != DriverSQLite && driver != DriverPostgres {
		return nil, fmt.Errorf("unsupported database driver %q", driver)
	}
	if driver == DriverSQLite {
		if err := ensureParentDir(dsn); err != nil {
			return nil, err
		}
	}

	db, err := sql.Open(driver, dsn)
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", driver, err)
	}
	if driver == DriverSQLite {
		db.SetMaxOpenConns(1)
	}

	repo := NewSQLRepository(db, driver)
	if err := repo.Migrate(ctx); err != nil {
		_ = db.Close()
		return nil, err
	}
	return repo, nil
}

// NewSQLRepository wires an existing sql.DB; driver selects the placeholder format.
func NewSQLRepository(db *sql.DB, driver string) *SQLRepository {
	sb := sq.StatementBuilder.PlaceholderFormat(sq.Question)
	if driver == DriverPostgres {
		sb = sq.StatementBuilder.PlaceholderFormat(sq.Dollar)
	}
	return &SQLRepository{db: db, sb: sb, now: time.Now}
}

// Migrate creates tables and indexes if they do not exist.
func (r *SQLRepository) Migrate(ctx context.Context) error {
	for _, stmt := range schema {
		if _, err := r.db.ExecContext(ctx, stmt); err != nil {
			return fmt.Errorf("migrate: %w", err)
		}
	}
	return nil
}

// Close releases the underlying connection pool.
func (r *SQLRepository) Close() error {
	return r.db.Close()
}

// SaveArticles upserts by normalized URL; a repeated URL keeps the latest copy.
func (r *SQLRepository) SaveArticles(ctx context.Context, articles []domain.Article) error {
	if len(articles) == 0 {
		return nil
	}

	scrapedAt := formatTime(r.now())

	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	for _, a := range articles {
		query, args, err := r.sb.Insert("articles").
			Columns("id", "url", "title", "source", "description", "published_at", "scraped_at").
			Values(a.ID(), a.URL, a.Title, a.Source, a.Description, nullableTime(a.PublishedAt), scrapedAt).
			Suffix(`ON CONFLICT (id) DO UPDATE SET
				url = EXCLUDED.url,
				title = EXCLUDED.title,
				source = EXCLUDED.source,
				description = EXCLUDED.description,
				published_at = EXCLUDED.published_at,
				scraped_at = EXCLUDED.scraped_at`).
			ToSql()
		if err != nil {
			return fmt.Errorf("build article upsert: %w", err)
		}
		if _, err := tx.ExecContext(ctx, query, args...); err != nil {
			return fmt.Errorf("upsert article %s: %w", a.URL, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit: %w", err)
	}
	return nil
}

// RecentArticles lists articles scraped at or after since, newest first.
func (r *SQLRepository) RecentArticles(ctx context.Context, since time.Time) ([]domain.Article, error) {
	query, args, err := r.sb.Select("url", "title", "source", "description", "published_at").
		From("articles").
		Where(sq.GtOrEq{"scraped_at": formatTime(since)}).
		OrderBy("scraped_at DESC", "id").
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("build recent articles: %w", err)
	}

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("query recent articles: %w", err)
	}
	defer rows.Close()

	var result []domain.Article
	for rows.Next() {
		var (
			a         domain.Article
			published sql.NullString
		)
		if err := rows.Scan(&a.URL, &a.Title, &a.Source, &a.Description, &published); err != nil {
			return nil, fmt.Errorf("scan article: %w", err)
		}
		a.PublishedAt = parseNullableTime(published)
		result = append(result, a)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("rows iteration: %w", err)
	}
	return result, nil
}

// Statistics counts stored articles per source with the scrape time range.
func (r *SQLRepository) Statistics(ctx context.Context) (domain.SourceStats, error) {
	stats := domain.SourceStats{BySource: map[string]int{}}

	query, args, err := r.sb.Select("source", "COUNT(*)", "MIN(scraped_at)", "MAX(scraped_at)").
		From("articles").
		GroupBy("source").
		ToSql()
	if err != nil {
		return stats, fmt.Errorf("build statistics: %w", err)
	}

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return stats, fmt.Errorf("query statistics: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var (
			source         string
			count          int
			oldest, newest sql.NullString
		)
		if err := rows.Scan(&source, &count, &oldest, &newest); err != nil {
			return stats, fmt.Errorf("scan statistics: %w", err)
		}
		stats.BySource[source] = count
		stats.Total += count
		if t := parseNullableTime(oldest); t != nil && (stats.Oldest == nil || t.Before(*stats.Oldest)) {
			stats.Oldest = t
		}
		if t := parseNullableTime(newest); t != nil && (stats.Newest == nil || t.After(*stats.Newest)) {
			stats.Newest = t
		}
	}
	if err := rows.Err(); err != nil {
		return stats, fmt.Errorf("rows iteration: %w", err)
	}
	return stats, nil
}

// AlreadyAssessed returns a map with article IDs that already have an assessment.
func (r *SQLRepository) AlreadyAssessed(ctx context.Context, ids []string) (map[string]bool, error) {
	result := make(map[string]bool)
	if len(ids) == 0 {
		return result, nil
	}

	query, args, err := r.sb.Select("article_id").
		From("assessments").
		Where(sq.Eq{"article_id": ids}).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("build assessed lookup: %w", err)
	}

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("query assessed: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, fmt.Errorf("scan id: %w", err)
		}
		result[id] = true
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("rows iteration: %w", err)
	}
	return result, nil
}

// SaveAssessment upserts the assessment snapshot for its article.
func (r *SQLRepository) SaveAssessment(ctx context.Context, runID string, assessment domain.Assessment) error {
	payload, err := json.Marshal(assessment)
	if err != nil {
		return fmt.Errorf("encode assessment: %w", err)
	}

	query, args, err := r.sb.Insert("assessments").
		Columns("article_id", "run_id", "risk_level", "confidence", "analyzed_at", "payload").
		Values(assessment.ArticleID, runID, assessment.RiskLevel.String(), assessment.Confidence,
			formatTime(r.now()), string(payload)).
		Suffix(`ON CONFLICT (article_id) DO UPDATE SET
			run_id = EXCLUDED.run_id,
			risk_level = EXCLUDED.risk_level,
			confidence = EXCLUDED.confidence,
			analyzed_at = EXCLUDED.analyzed_at,
			payload = EXCLUDED.payload`).
		ToSql()
	if err != nil {
		return fmt.Errorf("build assessment upsert: %w", err)
	}

	if _, err := r.db.ExecContext(ctx, query, args...); err != nil {
		return fmt.Errorf("upsert assessment %s: %w", assessment.ArticleID, err)
	}
	return nil
}

// RecentAssessments lists assessments produced at or after since, in analysis order.
func (r *SQLRepository) RecentAssessments(ctx context.Context, since time.Time) ([]domain.Assessment, error) {
	query, args, err := r.sb.Select("payload").
		From("assessments").
		Where(sq.GtOrEq{"analyzed_at": formatTime(since)}).
		OrderBy("analyzed_at", "article_id").
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("build recent assessments: %w", err)
	}

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("query recent assessments: %w", err)
	}
	defer rows.Close()

	var result []domain.Assessment
	for rows.Next() {
		var payload string
		if err := rows.Scan(&payload); err != nil {
			return nil, fmt.Errorf("scan assessment: %w", err)
		}
		var a domain.Assessment
		if err := json.Unmarshal([]byte(payload), &a); err != nil {
			return nil, fmt.Errorf("decode assessment: %w", err)
		}
		result = append(result, a)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("rows iteration: %w", err)
	}
	return result, nil
}

// ensureParentDir creates the directory of a plain SQLite file path.
func ensureParentDir(dsn string) error {
	if dsn == "" || dsn == ":memory:" || strings.HasPrefix(dsn, "file:") {
		return nil
	}
	if err := os.MkdirAll(filepath.Dir(dsn), 0o755); err != nil {
		return fmt.Errorf("create database dir: %w", err)
	}
	return nil
}

func formatTime(t time.Time) string {
	return t.UTC().Format(timeLayout)
}

func nullableTime(t *time.Time) interface{} {
	if t == nil {
		return nil
	}
	return formatTime(*t)
}

func parseNullableTime(v sql.NullString) *time.Time {
	if !v.Valid || v.String == "" {
		return nil
	}
	t, err := time.Parse(timeLayout, v.String)
	if err != nil {
		return nil
	}
	return &t
}
