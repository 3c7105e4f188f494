package analysis

import (
	"slices"

	"NewsRiskAgent/internal/domain"
)

const maxRecommendedActions = 3

var tierActions = map[domain.Level][]string{
	domain.LevelCritical: {
		"ESCALATE: Notify senior analysts immediately",
		"Create detailed intelligence report",
		"Brief relevant stakeholders",
	},
	domain.LevelHigh: {
		"MONITOR: Set up continuous monitoring",
		"INVESTIGATE: Gather additional intelligence",
		"Document for compliance review",
	},
	domain.LevelMedium: {
		"WATCH: Add to monitoring watchlist",
		"Log in risk register",
	},
	domain.LevelLow: {
		"RECORD: Add to intelligence database",
	},
	domain.LevelNone: {
		"No immediate action required",
	},
}

// Category addenda, applied in this order after the tier actions.
var categoryActions = []struct {
	category domain.Category
	action   string
}{
	{domain.CategoryCorruption, "Cross-reference with sanctions databases"},
	{domain.CategoryPoliticalInstability, "Check international response and implications"},
	{domain.CategoryTerrorism, "Coordinate with security liaison on threat posture"},
	{domain.CategoryCyberSecurity, "Check exposure of monitored entities to the incident"},
	{domain.CategorySanctions, "Screen counterparties against updated sanctions lists"},
}

// Recommend returns at most three actions: tier actions first, category addenda after.
func Recommend(level domain.Level, categories []domain.Category) []string {
	actions := append([]string{}, tierActions[level]...)
	for _, extra := range categoryActions {
		if slices.Contains(categories, extra.category) {
			actions = append(actions, extra.action)
		}
	}
	if len(actions) > maxRecommendedActions {
		actions = actions[:maxRecommendedActions]
	}
	return actions
}
