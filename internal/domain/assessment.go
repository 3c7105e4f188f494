package domain

import (
	"bytes"
	"encoding/json"
	"fmt"
	"time"
)

// StepRecord is the serialized form of one reasoning step.
type StepRecord struct {
	Step        int    `json:"step"`
	Thought     string `json:"thought"`
	Action      string `json:"action"`
	Observation string `json:"observation"`
}

// Assessment is the structured risk verdict for one article. Built once by the engine, read-only afterwards.
type Assessment struct {
	ArticleID          string       `json:"article_id"`
	ArticleTitle       string       `json:"article_title"`
	RiskLevel          Level        `json:"risk_level"`
	RiskCategories     []Category   `json:"risk_categories"`
	Reasoning          string       `json:"reasoning"`
	Confidence         float64      `json:"confidence"`
	RecommendedActions []string     `json:"recommended_actions"`
	KeyEntities        []string     `json:"key_entities"`
	GeographicScope    string       `json:"geographic_scope"`
	ReasoningTrace     []StepRecord `json:"reasoning_trace"`
}

// MarshalJSON keeps list fields as empty arrays rather than null.
func (a Assessment) MarshalJSON() ([]byte, error) {
	type plain Assessment
	out := plain(a)
	if out.RiskCategories == nil {
		out.RiskCategories = []Category{}
	}
	if out.RecommendedActions == nil {
		out.RecommendedActions = []string{}
	}
	if out.KeyEntities == nil {
		out.KeyEntities = []string{}
	}
	if out.ReasoningTrace == nil {
		out.ReasoningTrace = []StepRecord{}
	}

	// Titles and model text stay readable; json.Marshal would escape <, > and &.
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	if err := enc.Encode(out); err != nil {
		return nil, err
	}
	return bytes.TrimSuffix(buf.Bytes(), []byte("\n")), nil
}

func (a Assessment) String() string {
	return fmt.Sprintf("Assessment(risk_level=%s, categories=%v, confidence=%.2f)",
		a.RiskLevel, CategoryNames(a.RiskCategories), a.Confidence)
}

// CategoryCount is a ranked category tally; it serializes as a [name, count] pair.
type CategoryCount struct {
	Category Category
	Count    int
}

func (c CategoryCount) MarshalJSON() ([]byte, error) {
	return json.Marshal([]any{c.Category.String(), c.Count})
}

func (c *CategoryCount) UnmarshalJSON(data []byte) error {
	var pair []json.RawMessage
	if err := json.Unmarshal(data, &pair); err != nil {
		return fmt.Errorf("decode category count: %w", err)
	}
	if len(pair) != 2 {
		return fmt.Errorf("decode category count: want 2 elements, got %d", len(pair))
	}
	if err := json.Unmarshal(pair[0], &c.Category); err != nil {
		return fmt.Errorf("decode category count name: %w", err)
	}
	if err := json.Unmarshal(pair[1], &c.Count); err != nil {
		return fmt.Errorf("decode category count value: %w", err)
	}
	return nil
}

// Distribution counts assessments per level and always carries all five levels.
type Distribution map[Level]int

func (d Distribution) MarshalJSON() ([]byte, error) {
	out := make(map[string]int, len(levelNames))
	for _, l := range Levels() {
		out[l.String()] = d[l]
	}
	return json.Marshal(out)
}

// Summary is the executive roll-up of a batch of assessments. It is derived and owns no state.
type Summary struct {
	Timestamp             time.Time       `json:"timestamp"`
	TotalArticlesAnalyzed int             `json:"total_articles_analyzed"`
	RiskDistribution      Distribution    `json:"risk_distribution"`
	TopRiskCategories     []CategoryCount `json:"top_risk_categories"`
	HighPriorityCount     int             `json:"high_priority_count"`
	HighPriorityArticles  []Assessment    `json:"high_priority_articles"`
	AverageConfidence     float64         `json:"average_confidence"`
}

// Report is the persisted batch document.
type Report struct {
	RunID               string       `json:"run_id,omitempty"`
	Summary             Summary      `json:"summary"`
	DetailedAssessments []Assessment `json:"detailed_assessments"`
}
