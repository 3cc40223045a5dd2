package classify

import (
	"context"
	"log"
	"strings"

	"ai-knowledge-be/internal/constant"
	"ai-knowledge-be/pkg/llm"
)

// Classifier decides whether a question needs document retrieval or can be
// answered directly from conversation history.
type Classifier struct {
	llmProvider llm.LLMProvider
	logger      *log.Logger
}

// NewClassifier creates a new retrieval classifier
func NewClassifier(llmProvider llm.LLMProvider, logger *log.Logger) *Classifier {
	return &Classifier{
		llmProvider: llmProvider,
		logger:      logger,
	}
}

// Classify returns ClassifyTokenRetrieve or ClassifyTokenDirect.
// Any model output that is not exactly the retrieval token falls back to the
// direct path, which is the cheaper one.
func (c *Classifier) Classify(ctx context.Context, question string) (string, error) {
	prompt := buildPrompt(question)

	response, err := c.llmProvider.Generate(ctx, prompt, llm.WithTemperature(0.0))
	if err != nil {
		return "", err
	}

	token := Normalize(response)
	c.logger.Printf("[CLASSIFY] Question routed to %s (raw: %q)", token, strings.TrimSpace(response))

	return token, nil
}

// Normalize maps raw model output onto the two-token contract.
func Normalize(response string) string {
	token := strings.ToUpper(strings.TrimSpace(response))
	if token == constant.ClassifyTokenRetrieve {
		return constant.ClassifyTokenRetrieve
	}
	return constant.ClassifyTokenDirect
}

func buildPrompt(question string) string {
	var prompt strings.Builder

	prompt.WriteString("<task>\n")
	prompt.WriteString("Decide whether answering the question below requires looking up internal company documents.\n")
	prompt.WriteString("Questions about regulations, procedures, schedules, contacts, or any company-specific fact require lookup.\n")
	prompt.WriteString("Greetings, small talk, and questions about the conversation itself do not.\n")
	prompt.WriteString("</task>\n\n")

	prompt.WriteString("<question>\n")
	prompt.WriteString(question)
	prompt.WriteString("\n</question>\n\n")

	prompt.WriteString("<output_format>\n")
	prompt.WriteString("Respond with EXACTLY one word: RETRIEVE or DIRECT. No punctuation, no explanation.\n")
	prompt.WriteString("</output_format>")

	return prompt.String()
}
