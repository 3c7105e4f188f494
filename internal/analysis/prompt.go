package analysis

import (
	"fmt"
	"strings"

	"NewsRiskAgent/internal/domain"
)

// BuildSystemPrompt instructs the model to reason in thought, action, observation order
// and lists every category it may report.
func BuildSystemPrompt(categories []domain.Category, scope string) string {
	var list strings.Builder
	for _, c := range categories {
		list.WriteString("- ")
		list.WriteString(c.String())
		list.WriteString("\n")
	}

	return fmt.Sprintf(`You are an expert risk analyst producing risk intelligence.
Your task is to analyze news articles from %s and identify potential risks.

You MUST follow this exact pattern for EVERY analysis:

THOUGHT: Explain your reasoning - why you're examining this article, what risks you're looking for
ACTION: Decide what to do - FLAG_RISK, REQUEST_INFO, ANALYZE_DEEPER, CONCLUDE, or ESCALATE
OBSERVATION: State what you found - specific evidence from the article

Risk Categories to Consider:
%s
When analyzing:
1. Look for specific indicators of each risk type
2. Consider severity and potential impact
3. Identify key entities (people, organizations, locations)
4. Assess confidence level (how certain are you?)
5. Recommend actions (monitor, investigate, escalate)

Be thorough but concise. Focus on actionable intelligence.`, scopeOrDefault(scope), list.String())
}

// BuildAnalysisPrompt formats the per-article instruction. An empty description falls back to the title.
func BuildAnalysisPrompt(article domain.Article) string {
	content := strings.TrimSpace(article.Description)
	if content == "" {
		content = article.Title
	}

	return fmt.Sprintf(`Analyze this news article for risk assessment:

Title: %s
URL: %s
Content: %s

Follow the ReAct pattern:
1. THOUGHT: What risks might this article indicate?
2. ACTION: What should I do with this information?
3. OBSERVATION: What specific evidence supports my assessment?

Provide:
- Risk Level (Critical/High/Medium/Low/None)
- Risk Categories (list all that apply)
- Confidence (0-100%%)
- Key Entities: comma-separated people, orgs, places mentioned
- Recommended Actions (2-3 specific next steps)
`, article.Title, article.URL, content)
}
