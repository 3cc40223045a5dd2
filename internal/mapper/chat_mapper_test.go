package mapper

import (
	"testing"

	"ai-knowledge-be/internal/entity"
	"ai-knowledge-be/internal/model"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
)

func TestChatMessageToEntityKeepsEvaluationScore(t *testing.T) {
	m := NewChatMapper()

	msg := &model.ChatMessage{
		Id:              uuid.New(),
		Content:         "answer body",
		Role:            "assistant",
		ChatSessionId:   uuid.New(),
		IsActive:        true,
		EvaluationScore: 14,
	}

	e := m.ChatMessageToEntity(msg)

	assert.Equal(t, msg.Id, e.Id)
	assert.Equal(t, "assistant", e.Role)
	assert.Equal(t, 14, e.EvaluationScore)
	assert.False(t, e.IsDeleted)
}

func TestChatMessageToModelKeepsEvaluationScore(t *testing.T) {
	m := NewChatMapper()

	e := &entity.ChatMessage{
		Id:              uuid.New(),
		Content:         "answer body",
		Role:            "assistant",
		ChatSessionId:   uuid.New(),
		IsActive:        true,
		EvaluationScore: 9,
	}

	msg := m.ChatMessageToModel(e)

	assert.Equal(t, e.Id, msg.Id)
	assert.Equal(t, 9, msg.EvaluationScore)
	assert.False(t, msg.DeletedAt.Valid)
}
