package dto

import (
	"time"

	"github.com/google/uuid"
)

type CreateSessionResponse struct {
	Id uuid.UUID `json:"id"`
}

type GetAllSessionsResponse struct {
	Id        uuid.UUID  `json:"id"`
	Summary   string     `json:"summary"`
	CreatedAt time.Time  `json:"created_at"`
	UpdatedAt *time.Time `json:"updated_at"`
}

type GetChatHistoryResponse struct {
	Id        uuid.UUID `json:"id"`
	Role      string    `json:"role"`
	Content   string    `json:"content"`
	CreatedAt time.Time `json:"created_at"`
}

type AskRequest struct {
	ChatSessionId  uuid.UUID `json:"chat_session_id" validate:"required"`
	Question       string    `json:"question" validate:"required,max=4000"`
	DocumentFilter []string  `json:"document_filter,omitempty" validate:"max=10,dive,required"`
}

type AskResponseChat struct {
	Id        uuid.UUID `json:"id"`
	Content   string    `json:"content"`
	Role      string    `json:"role"`
	CreatedAt time.Time `json:"created_at"`
}

type AskResponse struct {
	ChatSessionId   uuid.UUID        `json:"chat_session_id"`
	SessionSummary  string           `json:"summary"`
	Sent            *AskResponseChat `json:"sent"`
	Reply           *AskResponseChat `json:"reply"`
	UsedRetrieval   bool             `json:"used_retrieval"`
	EvaluationScore int              `json:"evaluation_score"`
	RewriteCount    int              `json:"rewrite_count"`
	Contexts        []string         `json:"contexts,omitempty"`
}

type FeedbackRequest struct {
	ChatMessageId uuid.UUID `json:"chat_message_id" validate:"required"`
	Satisfied     bool      `json:"satisfied"`
}

// FeedbackMessage is the payload carried on the feedback topic. Score is
// the stored evaluation score of the referenced message, resolved
// server-side.
type FeedbackMessage struct {
	ChatMessageId uuid.UUID `json:"chat_message_id"`
	Score         int       `json:"score"`
	Satisfied     bool      `json:"satisfied"`
}
