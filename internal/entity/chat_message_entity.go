package entity

import (
	"time"

	"github.com/google/uuid"
)

type ChatMessage struct {
	Id            uuid.UUID
	Content       string
	Role          string
	ChatSessionId uuid.UUID
	IsActive      bool
	// EvaluationScore is the judge score of the turn that produced an
	// assistant message. Zero for user messages and direct-path answers.
	EvaluationScore int
	CreatedAt       time.Time
	UpdatedAt       *time.Time
	DeletedAt       *time.Time
	IsDeleted       bool
}
