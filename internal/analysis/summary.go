package analysis

import (
	"sort"
	"time"

	"NewsRiskAgent/internal/domain"
)

const (
	maxTopCategories       = 5
	maxHighPriorityEntries = 5
)

// GenerateSummaryReport rolls assessments up into an executive summary. An empty batch yields zeros.
func GenerateSummaryReport(assessments []domain.Assessment, now time.Time) domain.Summary {
	distribution := make(domain.Distribution, len(domain.Levels()))
	for _, l := range domain.Levels() {
		distribution[l] = 0
	}

	counts := map[domain.Category]int{}
	var order []domain.Category
	highPriority := []domain.Assessment{}
	var confidenceSum float64

	for _, a := range assessments {
		distribution[a.RiskLevel]++
		confidenceSum += a.Confidence

		for _, c := range a.RiskCategories {
			if _, ok := counts[c]; !ok {
				order = append(order, c)
			}
			counts[c]++
		}

		if a.RiskLevel.HighPriority() {
			highPriority = append(highPriority, a)
		}
	}

	ranked := make([]domain.CategoryCount, 0, len(order))
	for _, c := range order {
		ranked = append(ranked, domain.CategoryCount{Category: c, Count: counts[c]})
	}
	sort.SliceStable(ranked, func(i, j int) bool {
		return ranked[i].Count > ranked[j].Count
	})
	if len(ranked) > maxTopCategories {
		ranked = ranked[:maxTopCategories]
	}

	var average float64
	if len(assessments) > 0 {
		average = confidenceSum / float64(len(assessments))
	}

	highPriorityCount := len(highPriority)
	if len(highPriority) > maxHighPriorityEntries {
		highPriority = highPriority[:maxHighPriorityEntries]
	}

	return domain.Summary{
		Timestamp:             now,
		TotalArticlesAnalyzed: len(assessments),
		RiskDistribution:      distribution,
		TopRiskCategories:     ranked,
		HighPriorityCount:     highPriorityCount,
		HighPriorityArticles:  highPriority,
		AverageConfidence:     average,
	}
}
