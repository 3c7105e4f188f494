package domain

import "strings"

// Indicator binds a category to its trigger phrases.
type Indicator struct {
	Category Category
	Phrases  []string
}

// IndicatorTable is the ordered keyword table used by the keyword strategy.
// Scanning follows table order, which also decides category order in results.
type IndicatorTable struct {
	entries []Indicator
}

// NewIndicatorTable copies entries and lower-cases every phrase.
func NewIndicatorTable(entries []Indicator) IndicatorTable {
	copied := make([]Indicator, 0, len(entries))
	for _, entry := range entries {
		phrases := make([]string, 0, len(entry.Phrases))
		for _, p := range entry.Phrases {
			if p = strings.ToLower(strings.TrimSpace(p)); p != "" {
				phrases = append(phrases, p)
			}
		}
		copied = append(copied, Indicator{Category: entry.Category, Phrases: phrases})
	}
	return IndicatorTable{entries: copied}
}

// Entries returns a copy of the table rows.
func (t IndicatorTable) Entries() []Indicator {
	out := make([]Indicator, len(t.entries))
	for i, entry := range t.entries {
		out[i] = Indicator{Category: entry.Category, Phrases: append([]string(nil), entry.Phrases...)}
	}
	return out
}

// Phrases returns the trigger phrases of a category, or nil.
func (t IndicatorTable) Phrases(c Category) []string {
	for _, entry := range t.entries {
		if entry.Category == c {
			return append([]string(nil), entry.Phrases...)
		}
	}
	return nil
}

// Match returns every category with at least one phrase contained in text, in table order.
func (t IndicatorTable) Match(text string) []Category {
	lowered := strings.ToLower(text)
	var found []Category
	for _, entry := range t.entries {
		for _, phrase := range entry.Phrases {
			if strings.Contains(lowered, phrase) {
				found = append(found, entry.Category)
				break
			}
		}
	}
	return found
}

// defaultIndicators covers the ten categories with keyword signals. The remaining categories are only
// reachable through generative analysis.
var defaultIndicators = NewIndicatorTable([]Indicator{
	{CategoryPoliticalInstability, []string{
		"government collapse", "coup", "regime change", "political crisis",
		"election violence", "parliament dissolved", "cabinet reshuffle",
		"government resignation",
	}},
	{CategoryCivilUnrest, []string{
		"protest", "riot", "strike", "demonstration", "unrest",
		"clashes", "violence", "mob", "agitation", "tear gas",
	}},
	{CategoryTerrorism, []string{
		"terrorist", "bomb", "explosion", "attack", "militant",
		"extremist", "suicide bomber", "ISIS", "Al-Qaeda",
	}},
	{CategoryEconomicCrisis, []string{
		"economic crisis", "inflation", "debt default", "bankruptcy",
		"currency collapse", "recession", "financial crisis", "IMF bailout",
	}},
	{CategoryCorruption, []string{
		"corruption", "bribery", "embezzlement", "fraud", "kickback",
		"money laundering", "misappropriation", "graft",
	}},
	{CategoryHumanRights, []string{
		"human rights", "torture", "arbitrary arrest", "disappearance",
		"unlawful detention", "abuse", "violation",
	}},
	{CategoryCyberSecurity, []string{
		"cyber attack", "data breach", "hacking", "ransomware",
		"phishing", "malware", "cyber threat",
	}},
	{CategoryEnvironmental, []string{
		"pollution", "toxic", "environmental damage", "deforestation",
		"oil spill", "chemical leak", "waste dumping",
	}},
	{CategoryPublicHealth, []string{
		"epidemic", "pandemic", "outbreak", "disease", "health crisis",
		"contamination", "food poisoning",
	}},
	{CategoryNaturalDisaster, []string{
		"flood", "landslide", "cyclone", "earthquake", "tsunami",
		"drought", "wildfire", "natural disaster",
	}},
})

// DefaultIndicators returns the built-in keyword table. The table is shared and never mutated.
func DefaultIndicators() IndicatorTable {
	return defaultIndicators
}
