package history

import (
	"context"

	"ai-knowledge-be/internal/constant"
	"ai-knowledge-be/internal/repository/specification"
	"ai-knowledge-be/internal/repository/unitofwork"
	"ai-knowledge-be/pkg/llm"

	"github.com/google/uuid"
)

// Loader reads recent conversation turns for LLM context.
type Loader struct {
	uowFactory unitofwork.RepositoryFactory
}

// NewLoader creates a new history loader
func NewLoader(uowFactory unitofwork.RepositoryFactory) *Loader {
	return &Loader{uowFactory: uowFactory}
}

// LoadConversationHistory loads the most recent messages of a session in
// chronological order, limited to window question/answer pairs.
func (l *Loader) LoadConversationHistory(ctx context.Context, sessionId uuid.UUID, window int) ([]llm.Message, error) {
	uow := l.uowFactory.NewUnitOfWork(ctx)

	chats, err := uow.ChatMessageRepository().FindAll(ctx,
		specification.ByChatSessionID{ChatSessionID: sessionId},
		specification.ActiveOnly{},
		specification.OrderBy{Field: "created_at", Desc: true},
		specification.Pagination{Limit: window * 2},
	)
	if err != nil {
		return nil, err
	}

	messages := make([]llm.Message, 0, len(chats))
	for i := len(chats) - 1; i >= 0; i-- {
		chat := chats[i]

		role := constant.ChatMessageRoleUser
		if chat.Role == constant.ChatMessageRoleAssistant {
			role = constant.ChatMessageRoleAssistant
		}
		messages = append(messages, llm.Message{
			Role:    role,
			Content: chat.Content,
		})
	}

	return messages, nil
}
