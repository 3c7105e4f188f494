package enrichment

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"time"

	"NewsRiskAgent/internal/domain"
	"NewsRiskAgent/internal/ports"
)

const maxEntities = 10

// Client talks to an external named-entity service.
type Client struct {
	endpoint string
	apiKey   string
	http     *http.Client
}

var _ ports.EntityExtractor = (*Client)(nil)

// NewClient creates a reusable HTTP client.
func NewClient(endpoint, apiKey string) *Client {
	return &Client{
		endpoint: strings.TrimSuffix(endpoint, "/"),
		apiKey:   apiKey,
		http:     &http.Client{Timeout: 15 * time.Second},
	}
}

// ExtractEntities sends title and description and returns the distinct entity names, at most ten.
func (c *Client) ExtractEntities(ctx context.Context, article domain.Article) ([]string, error) {
	payload := map[string]any{
		"title":   article.Title,
		"content": article.Description,
		"url":     article.URL,
	}

	var resp struct {
		Entities []struct {
			Text  string `json:"text"`
			Label string `json:"label"`
		} `json:"entities"`
	}

	if err := c.post(ctx, "/entities", payload, &resp); err != nil {
		return nil, err
	}

	seen := make(map[string]struct{}, len(resp.Entities))
	entities := make([]string, 0, len(resp.Entities))
	for _, e := range resp.Entities {
		name := strings.TrimSpace(e.Text)
		key := strings.ToLower(name)
		if name == "" {
			continue
		}
		if _, ok := seen[key]; ok {
			continue
		}
		seen[key] = struct{}{}
		entities = append(entities, name)
		if len(entities) == maxEntities {
			break
		}
	}
	return entities, nil
}

func (c *Client) post(ctx context.Context, path string, payload any, v any) error {
	body, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("marshal payload: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.endpoint+path, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("new request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	if c.apiKey != "" {
		req.Header.Set("Authorization", "Bearer "+c.apiKey)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("do request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("unexpected status %s", resp.Status)
	}

	if err := json.NewDecoder(resp.Body).Decode(v); err != nil {
		return fmt.Errorf("decode response: %w", err)
	}
	return nil
}
