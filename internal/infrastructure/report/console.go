package report

import (
	"fmt"
	"io"
	"sort"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"NewsRiskAgent/internal/domain"
)

const (
	ruleWidth     = 80
	alertTitleLen = 60
)

// Console renders summaries and store statistics for a terminal. Color is used only when w is a terminal.
type Console struct {
	w       io.Writer
	heading lipgloss.Style
	muted   lipgloss.Style
	levels  map[domain.Level]lipgloss.Style
}

// NewConsole builds a renderer bound to w.
func NewConsole(w io.Writer) *Console {
	r := lipgloss.NewRenderer(w)
	return &Console{
		w:       w,
		heading: r.NewStyle().Bold(true).Foreground(lipgloss.Color("39")),
		muted:   r.NewStyle().Foreground(lipgloss.Color("241")),
		levels: map[domain.Level]lipgloss.Style{
			domain.LevelNone:     r.NewStyle().Foreground(lipgloss.Color("42")),
			domain.LevelLow:      r.NewStyle().Foreground(lipgloss.Color("226")),
			domain.LevelMedium:   r.NewStyle().Foreground(lipgloss.Color("214")),
			domain.LevelHigh:     r.NewStyle().Foreground(lipgloss.Color("196")),
			domain.LevelCritical: r.NewStyle().Bold(true).Foreground(lipgloss.Color("196")),
		},
	}
}

// RenderSummary prints distribution, top categories and high-priority alerts.
func (c *Console) RenderSummary(summary domain.Summary) error {
	var b strings.Builder
	rule := c.muted.Render(strings.Repeat("=", ruleWidth))

	fmt.Fprintf(&b, "\n%s\n%s\n%s\n", rule, c.heading.Render("RISK ANALYSIS SUMMARY"), rule)
	fmt.Fprintf(&b, "\nTotal Articles Analyzed: %d\n", summary.TotalArticlesAnalyzed)
	fmt.Fprintf(&b, "Average Confidence: %.0f%%\n", summary.AverageConfidence*100)

	b.WriteString("\nRisk Distribution:\n")
	for _, level := range domain.Levels() {
		fmt.Fprintf(&b, "   %s: %d\n", c.level(level), summary.RiskDistribution[level])
	}

	b.WriteString("\nTop Risk Categories:\n")
	if len(summary.TopRiskCategories) == 0 {
		fmt.Fprintf(&b, "   %s\n", c.muted.Render("none"))
	}
	for _, cc := range summary.TopRiskCategories {
		fmt.Fprintf(&b, "   %s: %d articles\n", cc.Category, cc.Count)
	}

	fmt.Fprintf(&b, "\nHigh Priority Articles: %d\n", summary.HighPriorityCount)
	if len(summary.HighPriorityArticles) > 0 {
		b.WriteString("\n" + c.heading.Render("HIGH PRIORITY ALERTS") + "\n")
		for i, a := range summary.HighPriorityArticles {
			fmt.Fprintf(&b, "\n   %d. %s\n", i+1, clipTitle(a.ArticleTitle))
			fmt.Fprintf(&b, "      Risk Level: %s\n", c.level(a.RiskLevel))
			cats := domain.CategoryNames(a.RiskCategories)
			if len(cats) > 2 {
				cats = cats[:2]
			}
			fmt.Fprintf(&b, "      Categories: %s\n", strings.Join(cats, ", "))
			if len(a.RecommendedActions) > 0 {
				fmt.Fprintf(&b, "      Actions: %s\n", a.RecommendedActions[0])
			}
		}
	}
	fmt.Fprintf(&b, "\n%s\n", rule)

	_, err := io.WriteString(c.w, b.String())
	return err
}

// RenderStatistics prints stored article counts per source, sorted by source name.
func (c *Console) RenderStatistics(stats domain.SourceStats) error {
	var b strings.Builder
	b.WriteString(c.heading.Render("Overall Statistics") + "\n")
	fmt.Fprintf(&b, "Total Articles: %d\n", stats.Total)

	sources := make([]string, 0, len(stats.BySource))
	for s := range stats.BySource {
		sources = append(sources, s)
	}
	sort.Strings(sources)

	b.WriteString("\nArticles by Source:\n")
	for _, s := range sources {
		fmt.Fprintf(&b, "  %s: %d\n", s, stats.BySource[s])
	}
	if stats.Oldest != nil && stats.Newest != nil {
		fmt.Fprintf(&b, "\nScraped between %s and %s\n",
			stats.Oldest.Format("2006-01-02 15:04"), stats.Newest.Format("2006-01-02 15:04"))
	}

	_, err := io.WriteString(c.w, b.String())
	return err
}

func (c *Console) level(l domain.Level) string {
	return c.levels[l].Render(l.String())
}

func clipTitle(title string) string {
	runes := []rune(title)
	if len(runes) <= alertTitleLen {
		return title
	}
	return string(runes[:alertTitleLen]) + "..."
}
