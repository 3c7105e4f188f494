// Package reasoning records the bounded thought, action and observation loop behind one assessment.
package reasoning

import (
	"errors"
	"fmt"
	"log/slog"
	"sort"
	"strings"

	"NewsRiskAgent/internal/domain"
)

// DefaultMaxIterations bounds production analyses.
const DefaultMaxIterations = 3

// Action types recorded by the analysis strategies.
const (
	ActionKeywordScan    = "KEYWORD_SCAN"
	ActionAnalyzeWithLLM = "ANALYZE_WITH_LLM"
	ActionPreparePrompt  = "PREPARE_PROMPT"
)

const statusExecuted = "executed"

// ErrIterationLimit is returned when a step would exceed the iteration ceiling.
var ErrIterationLimit = errors.New("reasoning trace iteration limit reached")

// Step is one recorded thought, action and observation.
type Step struct {
	Number      int
	Thought     string
	Action      string
	Observation string
}

// ActionResult describes a recorded action. Recording never performs external effects.
type ActionResult struct {
	ActionType string
	Parameters map[string]any
	Status     string
}

func (r ActionResult) String() string {
	if len(r.Parameters) == 0 {
		return fmt.Sprintf("%s (%s)", r.ActionType, r.Status)
	}

	keys := make([]string, 0, len(r.Parameters))
	for k := range r.Parameters {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	params := make([]string, 0, len(keys))
	for _, k := range keys {
		params = append(params, fmt.Sprintf("%s=%v", k, r.Parameters[k]))
	}
	return fmt.Sprintf("%s %s (%s)", r.ActionType, strings.Join(params, " "), r.Status)
}

// Trace is an append-only step log with a hard iteration ceiling.
// A trace belongs to a single analysis and is not safe for concurrent use.
type Trace struct {
	maxIterations int
	steps         []Step
	logger        *slog.Logger
}

// NewTrace builds an empty trace; a non-positive ceiling falls back to DefaultMaxIterations.
func NewTrace(maxIterations int, logger *slog.Logger) *Trace {
	if maxIterations <= 0 {
		maxIterations = DefaultMaxIterations
	}
	return &Trace{
		maxIterations: maxIterations,
		steps:         make([]Step, 0, maxIterations),
		logger:        logger,
	}
}

// MaxIterations returns the configured ceiling.
func (t *Trace) MaxIterations() int {
	return t.maxIterations
}

// CurrentStep equals the number of recorded steps.
func (t *Trace) CurrentStep() int {
	return len(t.steps)
}

// ShouldContinue reports whether another step may be appended.
func (t *Trace) ShouldContinue() bool {
	return len(t.steps) < t.maxIterations
}

// Thought annotates a thought with the upcoming step number.
func (t *Trace) Thought(text string) string {
	thought := fmt.Sprintf("[Step %d - THOUGHT] %s", len(t.steps)+1, text)
	t.debug("thought", "text", thought)
	return thought
}

// Act records the intent to perform actionType and returns a result tagged executed.
func (t *Trace) Act(actionType string, params map[string]any) ActionResult {
	copied := make(map[string]any, len(params))
	for k, v := range params {
		copied[k] = v
	}
	result := ActionResult{ActionType: actionType, Parameters: copied, Status: statusExecuted}
	t.debug("action", "step", len(t.steps)+1, "action", actionType)
	return result
}

// Observe annotates observed data with the upcoming step number.
func (t *Trace) Observe(data any) string {
	observation := fmt.Sprintf("[Step %d - OBSERVATION] %v", len(t.steps)+1, data)
	t.debug("observation", "text", observation)
	return observation
}

// Append records a complete step. Beyond the ceiling the step is refused and ErrIterationLimit returned.
func (t *Trace) Append(thought, action, observation string) error {
	if !t.ShouldContinue() {
		return fmt.Errorf("append step %d of %d: %w", len(t.steps)+1, t.maxIterations, ErrIterationLimit)
	}
	t.steps = append(t.steps, Step{
		Number:      len(t.steps),
		Thought:     thought,
		Action:      action,
		Observation: observation,
	})
	return nil
}

// Reset clears the trace between independent analyses.
func (t *Trace) Reset() {
	t.steps = t.steps[:0]
}

// Steps returns a copy of the recorded steps.
func (t *Trace) Steps() []Step {
	return append([]Step(nil), t.steps...)
}

// Records converts the steps into their serialized form.
func (t *Trace) Records() []domain.StepRecord {
	records := make([]domain.StepRecord, len(t.steps))
	for i, s := range t.steps {
		records[i] = domain.StepRecord{
			Step:        s.Number,
			Thought:     s.Thought,
			Action:      s.Action,
			Observation: s.Observation,
		}
	}
	return records
}

// Format renders the trace for human-readable reports.
func (t *Trace) Format() string {
	return FormatRecords(t.Records())
}

// FormatRecords renders serialized steps the same way Format does.
func FormatRecords(records []domain.StepRecord) string {
	var b strings.Builder
	b.WriteString("=== Agent Reasoning Trace ===\n")
	for _, r := range records {
		fmt.Fprintf(&b, "\n--- Step %d ---\n", r.Step+1)
		fmt.Fprintf(&b, "Thought: %s\n", r.Thought)
		fmt.Fprintf(&b, "Action: %s\n", r.Action)
		fmt.Fprintf(&b, "Observation: %s\n", r.Observation)
	}
	return b.String()
}

func (t *Trace) debug(msg string, args ...any) {
	if t.logger != nil {
		t.logger.Debug(msg, args...)
	}
}
