package summary

import (
	"context"
	"fmt"
	"log"
	"strings"

	"ai-knowledge-be/internal/constant"
	"ai-knowledge-be/internal/entity"
	"ai-knowledge-be/internal/repository/specification"
	"ai-knowledge-be/internal/repository/unitofwork"
	"ai-knowledge-be/pkg/llm"

	"github.com/google/uuid"
)

const summaryPairWindow = 10

// QAPair is one completed question/answer exchange.
type QAPair struct {
	Question string
	Answer   string
}

// Summarizer maintains a short rolling summary per chat session.
type Summarizer struct {
	llmProvider llm.LLMProvider
	uowFactory  unitofwork.RepositoryFactory
	logger      *log.Logger
}

// NewSummarizer creates a new session summarizer
func NewSummarizer(llmProvider llm.LLMProvider, uowFactory unitofwork.RepositoryFactory, logger *log.Logger) *Summarizer {
	return &Summarizer{
		llmProvider: llmProvider,
		uowFactory:  uowFactory,
		logger:      logger,
	}
}

// Summarize reloads the session's messages, condenses the recent exchanges
// into a short title-like summary and stores it on the session.
func (s *Summarizer) Summarize(ctx context.Context, sessionId uuid.UUID) error {
	uow := s.uowFactory.NewUnitOfWork(ctx)

	messages, err := uow.ChatMessageRepository().FindAll(ctx,
		specification.ByChatSessionID{ChatSessionID: sessionId},
		specification.ActiveOnly{},
		specification.OrderBy{Field: "created_at", Desc: false},
	)
	if err != nil {
		return fmt.Errorf("failed to load session messages: %w", err)
	}

	pairs := PairQA(messages)
	if len(pairs) == 0 {
		return nil
	}
	if len(pairs) > summaryPairWindow {
		pairs = pairs[len(pairs)-summaryPairWindow:]
	}

	text, err := s.llmProvider.Generate(ctx, buildPrompt(pairs), llm.WithTemperature(0.2))
	if err != nil {
		return fmt.Errorf("summary generation failed: %w", err)
	}
	text = strings.TrimSpace(strings.Trim(strings.TrimSpace(text), `"`))
	if text == "" {
		return nil
	}

	session, err := uow.ChatSessionRepository().FindOne(ctx, specification.ByID{ID: sessionId})
	if err != nil {
		return err
	}
	if session == nil {
		return fmt.Errorf("session %s not found", sessionId)
	}

	session.Summary = text
	if err := uow.ChatSessionRepository().Update(ctx, session); err != nil {
		return fmt.Errorf("failed to store session summary: %w", err)
	}

	s.logger.Printf("[SUMMARY] session %s: %q", sessionId, text)

	return nil
}

// PairQA groups an ordered message list into question/answer pairs. An
// assistant message closes the pending user message; a user message with no
// answer yet is replaced by a later user message.
func PairQA(messages []*entity.ChatMessage) []QAPair {
	var pairs []QAPair
	pending := ""
	hasPending := false

	for _, m := range messages {
		switch m.Role {
		case constant.ChatMessageRoleUser:
			pending = m.Content
			hasPending = true
		case constant.ChatMessageRoleAssistant:
			if hasPending {
				pairs = append(pairs, QAPair{Question: pending, Answer: m.Content})
				hasPending = false
			}
		}
	}

	return pairs
}

func buildPrompt(pairs []QAPair) string {
	var prompt strings.Builder

	prompt.WriteString("<task>\n")
	prompt.WriteString("Summarize the conversation below into one short phrase of about 20 characters.\n")
	prompt.WriteString("Use the same language as the conversation. Output ONLY the phrase.\n")
	prompt.WriteString("</task>\n\n")

	prompt.WriteString("<conversation>\n")
	for _, p := range pairs {
		prompt.WriteString("Q: ")
		prompt.WriteString(p.Question)
		prompt.WriteString("\nA: ")
		prompt.WriteString(p.Answer)
		prompt.WriteString("\n")
	}
	prompt.WriteString("</conversation>")

	return prompt.String()
}
