package analysis

import (
	"regexp"
	"strconv"
	"strings"

	"NewsRiskAgent/internal/domain"
)

const (
	defaultGenerativeConfidence = 0.75
	maxKeyEntities              = 10
)

var (
	percentExpr     = regexp.MustCompile(`(\d+)%`)
	keyEntitiesExpr = regexp.MustCompile(`(?im)^[\s\-*#>]*key entities\**\s*[:\-]\s*(.+)$`)
)

// Verdict is the structured reading of free-text model output.
type Verdict struct {
	Level      domain.Level
	Categories []domain.Category
	Confidence float64
	Entities   []string
}

// ParseVerdict extracts a verdict from model text by keyword priority. It never fails.
func ParseVerdict(text string) Verdict {
	lowered := strings.ToLower(text)
	return Verdict{
		Level:      parseLevel(lowered),
		Categories: parseCategories(lowered),
		Confidence: parseConfidence(text, lowered),
		Entities:   parseEntities(text),
	}
}

func parseLevel(lowered string) domain.Level {
	switch {
	case strings.Contains(lowered, "critical"):
		return domain.LevelCritical
	case strings.Contains(lowered, "high"):
		return domain.LevelHigh
	case strings.Contains(lowered, "medium"), strings.Contains(lowered, "moderate"):
		return domain.LevelMedium
	case strings.Contains(lowered, "low"):
		return domain.LevelLow
	default:
		return domain.LevelNone
	}
}

// parseCategories returns every mentioned category in enumeration order.
func parseCategories(lowered string) []domain.Category {
	var found []domain.Category
	for _, c := range domain.Categories() {
		if strings.Contains(lowered, strings.ToLower(c.String())) {
			found = append(found, c)
		}
	}
	return found
}

// parseConfidence reads the first percentage in the text, but only when the text mentions confidence.
func parseConfidence(text, lowered string) float64 {
	if !strings.Contains(lowered, "confidence") {
		return defaultGenerativeConfidence
	}

	m := percentExpr.FindStringSubmatch(text)
	if m == nil {
		return defaultGenerativeConfidence
	}

	value, err := strconv.Atoi(m[1])
	if err != nil {
		return defaultGenerativeConfidence
	}
	return min(float64(value)/100, 1)
}

func parseEntities(text string) []string {
	m := keyEntitiesExpr.FindStringSubmatch(text)
	if m == nil {
		return []string{}
	}

	seen := map[string]struct{}{}
	entities := []string{}
	for _, raw := range strings.FieldsFunc(m[1], func(r rune) bool { return r == ',' || r == ';' }) {
		entity := strings.Trim(strings.TrimSpace(raw), `-*."'`)
		entity = strings.TrimSpace(entity)
		if entity == "" || strings.EqualFold(entity, "none") {
			continue
		}
		if _, ok := seen[strings.ToLower(entity)]; ok {
			continue
		}
		seen[strings.ToLower(entity)] = struct{}{}
		entities = append(entities, entity)
		if len(entities) == maxKeyEntities {
			break
		}
	}
	return entities
}
