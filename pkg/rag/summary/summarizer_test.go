package summary

import (
	"reflect"
	"testing"

	"ai-knowledge-be/internal/constant"
	"ai-knowledge-be/internal/entity"
)

func msg(role, content string) *entity.ChatMessage {
	return &entity.ChatMessage{Role: role, Content: content}
}

func TestPairQA(t *testing.T) {
	tests := []struct {
		name     string
		messages []*entity.ChatMessage
		want     []QAPair
	}{
		{
			name: "simple alternation",
			messages: []*entity.ChatMessage{
				msg(constant.ChatMessageRoleUser, "q1"),
				msg(constant.ChatMessageRoleAssistant, "a1"),
				msg(constant.ChatMessageRoleUser, "q2"),
				msg(constant.ChatMessageRoleAssistant, "a2"),
			},
			want: []QAPair{{Question: "q1", Answer: "a1"}, {Question: "q2", Answer: "a2"}},
		},
		{
			name: "later question replaces unanswered one",
			messages: []*entity.ChatMessage{
				msg(constant.ChatMessageRoleUser, "abandoned"),
				msg(constant.ChatMessageRoleUser, "q1"),
				msg(constant.ChatMessageRoleAssistant, "a1"),
			},
			want: []QAPair{{Question: "q1", Answer: "a1"}},
		},
		{
			name: "assistant with no pending question is dropped",
			messages: []*entity.ChatMessage{
				msg(constant.ChatMessageRoleAssistant, "orphan"),
				msg(constant.ChatMessageRoleUser, "q1"),
				msg(constant.ChatMessageRoleAssistant, "a1"),
			},
			want: []QAPair{{Question: "q1", Answer: "a1"}},
		},
		{
			name: "trailing unanswered question is excluded",
			messages: []*entity.ChatMessage{
				msg(constant.ChatMessageRoleUser, "q1"),
				msg(constant.ChatMessageRoleAssistant, "a1"),
				msg(constant.ChatMessageRoleUser, "pending"),
			},
			want: []QAPair{{Question: "q1", Answer: "a1"}},
		},
		{
			name:     "empty",
			messages: nil,
			want:     nil,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := PairQA(tt.messages)
			if !reflect.DeepEqual(got, tt.want) {
				t.Errorf("PairQA() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestPairQAIsPure(t *testing.T) {
	messages := []*entity.ChatMessage{
		msg(constant.ChatMessageRoleUser, "q1"),
		msg(constant.ChatMessageRoleAssistant, "a1"),
	}

	first := PairQA(messages)
	second := PairQA(messages)
	if !reflect.DeepEqual(first, second) {
		t.Error("PairQA must be deterministic over the same input")
	}
}
