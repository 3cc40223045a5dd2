package rewrite

import (
	"context"
	"fmt"
	"log"
	"regexp"
	"strings"

	"ai-knowledge-be/pkg/llm"
	"ai-knowledge-be/pkg/rag/judge"
)

const maxKeywordHints = 8

// Rewriter revises a question that produced an insufficient answer, using
// the judge's improvement direction and keywords harvested from the
// retrieved context.
type Rewriter struct {
	llmProvider llm.LLMProvider
	logger      *log.Logger
}

// NewRewriter creates a new query rewriter
func NewRewriter(llmProvider llm.LLMProvider, logger *log.Logger) *Rewriter {
	return &Rewriter{
		llmProvider: llmProvider,
		logger:      logger,
	}
}

// Rewrite returns a revised question preserving the original intent. The
// original question is kept unchanged by the caller for logging and
// persistence.
func (r *Rewriter) Rewrite(ctx context.Context, question, improvement string, questionType judge.QuestionType, contexts []string) (string, error) {
	keywords := ExtractKeywords(contexts)
	prompt := buildPrompt(question, improvement, questionType, keywords)

	response, err := r.llmProvider.Generate(ctx, prompt, llm.WithTemperature(0.3))
	if err != nil {
		return "", fmt.Errorf("question rewrite failed: %w", err)
	}

	rewritten := strings.TrimSpace(response)
	if rewritten == "" {
		rewritten = question
	}

	r.logger.Printf("[REWRITE] %q -> %q (keywords: %d)", question, rewritten, len(keywords))

	return rewritten, nil
}

var bracketPattern = regexp.MustCompile(`\[([^\[\]]+)\]`)

// ExtractKeywords harvests the bracketed section/title tokens present in
// formatted context strings as rewriting hints.
func ExtractKeywords(contexts []string) []string {
	seen := make(map[string]bool)
	var keywords []string

	for _, c := range contexts {
		for _, match := range bracketPattern.FindAllStringSubmatch(c, -1) {
			for _, part := range strings.Split(match[1], "|") {
				keyword := strings.TrimSpace(part)
				if keyword == "" || seen[keyword] {
					continue
				}
				seen[keyword] = true
				keywords = append(keywords, keyword)
				if len(keywords) == maxKeywordHints {
					return keywords
				}
			}
		}
	}

	return keywords
}

func buildPrompt(question, improvement string, questionType judge.QuestionType, keywords []string) string {
	var prompt strings.Builder

	prompt.WriteString("<task>\n")
	prompt.WriteString("Restate the question below so a document search can answer it better.\n")
	prompt.WriteString("Preserve the original intent and language. Output ONLY the restated question.\n")
	prompt.WriteString("</task>\n\n")

	prompt.WriteString("<guide>\n")
	prompt.WriteString(guideFor(questionType))
	prompt.WriteString("\n</guide>\n\n")

	prompt.WriteString("<deficiency>\n")
	prompt.WriteString(improvement)
	prompt.WriteString("\n</deficiency>\n\n")

	if len(keywords) > 0 {
		prompt.WriteString("<available_keywords>\n")
		prompt.WriteString(strings.Join(keywords, ", "))
		prompt.WriteString("\n</available_keywords>\n\n")
	}

	prompt.WriteString("<question>\n")
	prompt.WriteString(question)
	prompt.WriteString("\n</question>")

	return prompt.String()
}

func guideFor(questionType judge.QuestionType) string {
	switch questionType {
	case judge.QuestionTypeRegulatory:
		return "Name the specific regulation, limit or condition being asked about. Prefer official terms from the available keywords over colloquial phrasing."
	case judge.QuestionTypeProcedural:
		return "Ask for the concrete steps, forms and responsible parties. Make the start and end of the procedure explicit."
	default:
		return "Make the subject and the expected kind of answer explicit. Replace vague references with concrete terms from the available keywords."
	}
}
