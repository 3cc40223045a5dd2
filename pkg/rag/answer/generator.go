package answer

import (
	"context"
	"fmt"
	"log"
	"strings"

	"ai-knowledge-be/internal/constant"
	"ai-knowledge-be/pkg/llm"
)

// Generator produces the grounded (or direct) answer and appends the
// deduplicated reference block.
type Generator struct {
	llmProvider llm.LLMProvider
	logger      *log.Logger
}

// NewGenerator creates a new answer generator
func NewGenerator(llmProvider llm.LLMProvider, logger *log.Logger) *Generator {
	return &Generator{
		llmProvider: llmProvider,
		logger:      logger,
	}
}

// Generate answers the question. With grounded=true the answer must stay
// inside the supplied contexts; in direct mode only the windowed history is
// available and no grounding constraint is applied.
func (g *Generator) Generate(ctx context.Context, question string, contexts []string, history []llm.Message, grounded bool) (string, error) {
	var promptText string
	if grounded {
		promptText = buildGroundedPrompt(question, contexts)
	} else {
		promptText = buildDirectPrompt(question)
	}

	fullHistory := append(append([]llm.Message{}, history...), llm.Message{Role: "user", Content: promptText})

	response, err := g.llmProvider.Chat(ctx, fullHistory)
	if err != nil {
		return "", fmt.Errorf("answer generation failed: %w", err)
	}

	g.logger.Printf("[GENERATION] Answer generated (grounded=%v, contexts=%d, history=%d)",
		grounded, len(contexts), len(history))

	if block := BuildReferenceBlock(contexts); block != "" {
		response = response + "\n\n" + block
	}

	return response, nil
}

func buildGroundedPrompt(question string, contexts []string) string {
	var prompt strings.Builder

	prompt.WriteString("<reference_material>\n")
	for _, c := range contexts {
		prompt.WriteString(c)
		prompt.WriteString("\n\n")
	}
	prompt.WriteString("</reference_material>\n\n")

	prompt.WriteString("<task>\n")
	prompt.WriteString("Answer the employee's question using ONLY the reference material above.\n")
	prompt.WriteString("Answer in the same language the question is written in.\n")
	prompt.WriteString("If the material does not contain the answer, say so honestly.\n")
	prompt.WriteString("Do not add citation markers; sources are listed separately by the system.\n")
	prompt.WriteString("</task>\n\n")

	prompt.WriteString("<question>\n")
	prompt.WriteString(question)
	prompt.WriteString("\n</question>\n\n")

	prompt.WriteString("Answer:")

	return prompt.String()
}

func buildDirectPrompt(question string) string {
	var prompt strings.Builder

	prompt.WriteString("<task>\n")
	prompt.WriteString("Answer the user's message using the conversation history above.\n")
	prompt.WriteString("Answer in the same language the message is written in.\n")
	prompt.WriteString("</task>\n\n")

	prompt.WriteString("Message: ")
	prompt.WriteString(question)

	return prompt.String()
}

// contextRef is the citation metadata parsed back out of one formatted
// context string: "[section-path | title] (source: file)\ntext"
type contextRef struct {
	Source  string
	Section string
}

func parseContextRef(context string) (contextRef, bool) {
	header, _, found := strings.Cut(context, "\n")
	if !found {
		header = context
	}

	start := strings.Index(header, "[")
	end := strings.Index(header, "]")
	if start != 0 || end < 0 {
		return contextRef{}, false
	}
	section := header[start+1 : end]

	rest := header[end+1:]
	marker := "(source: "
	srcStart := strings.Index(rest, marker)
	srcEnd := strings.LastIndex(rest, ")")
	if srcStart < 0 || srcEnd <= srcStart {
		return contextRef{}, false
	}
	source := strings.TrimSpace(rest[srcStart+len(marker) : srcEnd])

	if source == "" {
		return contextRef{}, false
	}
	return contextRef{Source: source, Section: strings.TrimSpace(section)}, true
}

// BuildReferenceBlock renders the deduplicated citation list: grouped by
// source file in first-seen order, listing each unique section/title pair
// exactly once. Empty contexts and the no-match marker produce no block.
func BuildReferenceBlock(contexts []string) string {
	if len(contexts) == 0 {
		return ""
	}
	if len(contexts) == 1 && contexts[0] == constant.NoRelevantInfoMarker {
		return ""
	}

	var (
		order    []string
		sections = make(map[string][]string)
		seen     = make(map[string]bool)
	)

	for _, c := range contexts {
		ref, ok := parseContextRef(c)
		if !ok {
			continue
		}

		key := ref.Source + "\x00" + ref.Section
		if seen[key] {
			continue
		}
		seen[key] = true

		if _, known := sections[ref.Source]; !known {
			order = append(order, ref.Source)
		}
		sections[ref.Source] = append(sections[ref.Source], ref.Section)
	}

	if len(order) == 0 {
		return ""
	}

	var block strings.Builder
	block.WriteString("References:\n")
	for _, source := range order {
		block.WriteString(fmt.Sprintf("- %s\n", source))
		for _, section := range sections[source] {
			if section == "" {
				continue
			}
			block.WriteString(fmt.Sprintf("  - %s\n", section))
		}
	}

	return strings.TrimRight(block.String(), "\n")
}
