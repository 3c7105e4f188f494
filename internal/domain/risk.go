package domain

import (
	"fmt"
	"strings"
)

// Level is the ordered severity of an assessment. The zero value is LevelNone.
type Level int

const (
	LevelNone Level = iota
	LevelLow
	LevelMedium
	LevelHigh
	LevelCritical
)

var levelNames = [...]string{
	LevelNone:     "None",
	LevelLow:      "Low",
	LevelMedium:   "Medium",
	LevelHigh:     "High",
	LevelCritical: "Critical",
}

// Levels lists every level from least to most severe.
func Levels() []Level {
	return []Level{LevelNone, LevelLow, LevelMedium, LevelHigh, LevelCritical}
}

// String returns the display value.
func (l Level) String() string {
	if l < LevelNone || l > LevelCritical {
		return fmt.Sprintf("Level(%d)", int(l))
	}
	return levelNames[l]
}

// HighPriority reports whether the level triggers triage (High or Critical).
func (l Level) HighPriority() bool {
	return l >= LevelHigh
}

// ParseLevel resolves a display value case-insensitively.
func ParseLevel(value string) (Level, error) {
	for _, l := range Levels() {
		if strings.EqualFold(strings.TrimSpace(value), levelNames[l]) {
			return l, nil
		}
	}
	return LevelNone, fmt.Errorf("unknown risk level %q", value)
}

func (l Level) MarshalText() ([]byte, error) {
	if l < LevelNone || l > LevelCritical {
		return nil, fmt.Errorf("invalid risk level %d", int(l))
	}
	return []byte(levelNames[l]), nil
}

func (l *Level) UnmarshalText(text []byte) error {
	parsed, err := ParseLevel(string(text))
	if err != nil {
		return err
	}
	*l = parsed
	return nil
}

// Category is one of the fixed threat domains an assessment may be tagged with.
type Category int

const (
	CategoryPoliticalInstability Category = iota
	CategoryCivilUnrest
	CategoryTerrorism
	CategoryMilitaryConflict
	CategoryEconomicCrisis
	CategoryFinancialFraud
	CategoryCorruption
	CategorySanctions
	CategoryRegulatoryChanges
	CategoryLegalViolations
	CategoryHumanRights
	CategoryInfrastructureDamage
	CategorySupplyChain
	CategoryCyberSecurity
	CategoryCorporateScandal
	CategoryEnvironmental
	CategorySocialIssues
	CategoryPublicHealth
	CategoryNaturalDisaster
	CategoryUnknown
)

var categoryNames = [...]string{
	CategoryPoliticalInstability: "Political Instability",
	CategoryCivilUnrest:          "Civil Unrest",
	CategoryTerrorism:            "Terrorism",
	CategoryMilitaryConflict:     "Military Conflict",
	CategoryEconomicCrisis:       "Economic Crisis",
	CategoryFinancialFraud:       "Financial Fraud",
	CategoryCorruption:           "Corruption",
	CategorySanctions:            "Sanctions",
	CategoryRegulatoryChanges:    "Regulatory Changes",
	CategoryLegalViolations:      "Legal Violations",
	CategoryHumanRights:          "Human Rights Violations",
	CategoryInfrastructureDamage: "Infrastructure Damage",
	CategorySupplyChain:          "Supply Chain Disruption",
	CategoryCyberSecurity:        "Cyber Security Threat",
	CategoryCorporateScandal:     "Corporate Scandal",
	CategoryEnvironmental:        "Environmental Risk",
	CategorySocialIssues:         "Social Issues",
	CategoryPublicHealth:         "Public Health Crisis",
	CategoryNaturalDisaster:      "Natural Disaster",
	CategoryUnknown:              "Unknown/Other",
}

// Categories lists every category in enumeration order, Unknown last.
func Categories() []Category {
	out := make([]Category, 0, len(categoryNames))
	for c := range categoryNames {
		out = append(out, Category(c))
	}
	return out
}

func (c Category) String() string {
	if c < CategoryPoliticalInstability || c > CategoryUnknown {
		return fmt.Sprintf("Category(%d)", int(c))
	}
	return categoryNames[c]
}

// ParseCategory resolves a display value case-insensitively.
func ParseCategory(value string) (Category, error) {
	for i, name := range categoryNames {
		if strings.EqualFold(strings.TrimSpace(value), name) {
			return Category(i), nil
		}
	}
	return CategoryUnknown, fmt.Errorf("unknown risk category %q", value)
}

func (c Category) MarshalText() ([]byte, error) {
	if c < CategoryPoliticalInstability || c > CategoryUnknown {
		return nil, fmt.Errorf("invalid risk category %d", int(c))
	}
	return []byte(categoryNames[c]), nil
}

func (c *Category) UnmarshalText(text []byte) error {
	parsed, err := ParseCategory(string(text))
	if err != nil {
		return err
	}
	*c = parsed
	return nil
}

// CategoryNames renders categories as display strings.
func CategoryNames(categories []Category) []string {
	names := make([]string, len(categories))
	for i, c := range categories {
		names[i] = c.String()
	}
	return names
}
