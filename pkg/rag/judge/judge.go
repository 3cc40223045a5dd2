package judge

import (
	"context"
	"fmt"
	"log"
	"regexp"
	"strconv"
	"strings"

	"ai-knowledge-be/pkg/llm"
	"ai-knowledge-be/pkg/rag/metrics"
)

// fallbackScore is used when the total cannot be parsed out of the model
// response. It sits at the top of the safety band so parse noise does not
// force a rewrite.
const fallbackScore = 12

const fallbackImprovement = "Make the question more specific about what information is needed."

// Evaluation is the judge's verdict attached to the turn state
type Evaluation struct {
	Score        int
	NeedsRewrite bool
	Improvement  string
	QuestionType QuestionType
}

// Judge scores the answer against a question-type-specific rubric and
// decides whether a rewrite is warranted.
type Judge struct {
	llmProvider llm.LLMProvider
	metrics     *metrics.Service
	logger      *log.Logger
}

// NewJudge creates a new quality judge
func NewJudge(llmProvider llm.LLMProvider, metricsService *metrics.Service, logger *log.Logger) *Judge {
	return &Judge{
		llmProvider: llmProvider,
		metrics:     metricsService,
		logger:      logger,
	}
}

// Evaluate classifies the question, scores the answer 0-20 against the
// matching rubric and compares the total with the current acceptance
// threshold.
func (j *Judge) Evaluate(ctx context.Context, question string, contexts []string, answer string) (Evaluation, error) {
	questionType := ClassifyQuestionType(question)
	rubric := RubricFor(questionType)

	prompt := buildScoringPrompt(question, contexts, answer, rubric)

	response, err := j.llmProvider.Generate(ctx, prompt, llm.WithTemperature(0.0))
	if err != nil {
		return Evaluation{}, fmt.Errorf("quality scoring failed: %w", err)
	}

	score, ok := ParseTotalScore(response)
	if !ok {
		j.logger.Printf("[JUDGE] Score parse failed, falling back to %d", fallbackScore)
		score = fallbackScore
	}

	improvement := parseImprovement(response)
	threshold := j.metrics.Threshold()

	evaluation := Evaluation{
		Score:        score,
		NeedsRewrite: score < threshold,
		Improvement:  improvement,
		QuestionType: questionType,
	}

	j.logger.Printf("[JUDGE] Type=%s Score=%d Threshold=%d NeedsRewrite=%v",
		questionType, score, threshold, evaluation.NeedsRewrite)

	return evaluation, nil
}

func buildScoringPrompt(question string, contexts []string, answer string, rubric Rubric) string {
	var prompt strings.Builder

	prompt.WriteString("<task>\n")
	prompt.WriteString("You are grading the answer below against the rubric. Score each dimension 1-5.\n")
	prompt.WriteString("</task>\n\n")

	prompt.WriteString("<rubric>\n")
	for _, dim := range rubric.Dimensions {
		prompt.WriteString(fmt.Sprintf("- %s: %s\n", dim.Name, dim.Guide))
	}
	prompt.WriteString("</rubric>\n\n")

	prompt.WriteString("<question>\n")
	prompt.WriteString(question)
	prompt.WriteString("\n</question>\n\n")

	if len(contexts) > 0 {
		prompt.WriteString("<context>\n")
		for _, c := range contexts {
			prompt.WriteString(c)
			prompt.WriteString("\n")
		}
		prompt.WriteString("</context>\n\n")
	}

	prompt.WriteString("<answer>\n")
	prompt.WriteString(answer)
	prompt.WriteString("\n</answer>\n\n")

	prompt.WriteString("<output_format>\n")
	prompt.WriteString("For each dimension write \"<name>: <1-5>\".\n")
	prompt.WriteString("Then write exactly one line \"TOTAL: <sum 0-20>\".\n")
	prompt.WriteString("If the total is below 15, add one line \"IMPROVE: <how the question should be sharpened>\".\n")
	prompt.WriteString("</output_format>")

	return prompt.String()
}

var totalPattern = regexp.MustCompile(`(?im)^\s*TOTAL\s*[:=]?\s*(\d{1,2})`)

// ParseTotalScore pulls the stated total out of the free-text grading
// response. Returns false when no usable total is present.
func ParseTotalScore(response string) (int, bool) {
	match := totalPattern.FindStringSubmatch(response)
	if match == nil {
		return 0, false
	}

	score, err := strconv.Atoi(match[1])
	if err != nil || score < 0 || score > 20 {
		return 0, false
	}
	return score, true
}

func parseImprovement(response string) string {
	for _, line := range strings.Split(response, "\n") {
		trimmed := strings.TrimSpace(line)
		upper := strings.ToUpper(trimmed)
		if strings.HasPrefix(upper, "IMPROVE:") || strings.HasPrefix(upper, "IMPROVE =") {
			direction := strings.TrimSpace(trimmed[len("IMPROVE:"):])
			if direction != "" {
				return direction
			}
		}
	}
	return fallbackImprovement
}
