package domain

import (
	"crypto/sha256"
	"encoding/hex"
	"net/url"
	"strings"
	"time"
)

// Article is a normalized news record supplied by a content source.
type Article struct {
	Title       string     `json:"title"`
	URL         string     `json:"url"`
	Source      string     `json:"source"`
	Description string     `json:"description,omitempty"`
	PublishedAt *time.Time `json:"timestamp,omitempty"`
}

// ID returns the stable identifier derived from the article URL.
func (a Article) ID() string {
	return ArticleID(a.URL)
}

// Text is the title followed by the description, as scanned by analysis strategies.
func (a Article) Text() string {
	return a.Title + " " + a.Description
}

// ArticleID hashes the normalized URL so identity survives restarts and is comparable across processes.
func ArticleID(rawURL string) string {
	sum := sha256.Sum256([]byte(NormalizeURL(rawURL)))
	return hex.EncodeToString(sum[:])
}

// NormalizeURL lower-cases scheme and host, drops the fragment and a trailing slash.
func NormalizeURL(rawURL string) string {
	trimmed := strings.TrimSpace(rawURL)
	parsed, err := url.Parse(trimmed)
	if err != nil || parsed.Host == "" {
		return strings.TrimSuffix(trimmed, "/")
	}

	parsed.Scheme = strings.ToLower(parsed.Scheme)
	parsed.Host = strings.ToLower(parsed.Host)
	parsed.Fragment = ""
	parsed.RawFragment = ""
	parsed.Path = strings.TrimSuffix(parsed.Path, "/")
	parsed.RawPath = ""
	return parsed.String()
}

// SourceStats summarizes stored articles per source.
type SourceStats struct {
	Total    int            `json:"total"`
	BySource map[string]int `json:"by_source"`
	Oldest   *time.Time     `json:"oldest,omitempty"`
	Newest   *time.Time     `json:"newest,omitempty"`
}
