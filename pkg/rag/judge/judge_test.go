package judge

import (
	"context"
	"io"
	"log"
	"testing"

	"ai-knowledge-be/pkg/llm"
	"ai-knowledge-be/pkg/rag/metrics"
)

type fakeLLM struct {
	response string
	err      error
}

func (f *fakeLLM) Chat(ctx context.Context, history []llm.Message, options ...llm.Option) (string, error) {
	return f.response, f.err
}

func (f *fakeLLM) Generate(ctx context.Context, prompt string, options ...llm.Option) (string, error) {
	return f.response, f.err
}

func newTestJudge(response string) *Judge {
	logger := log.New(io.Discard, "", 0)
	return NewJudge(&fakeLLM{response: response}, metrics.NewService(metrics.DefaultConfig(), logger), logger)
}

func TestClassifyQuestionType(t *testing.T) {
	tests := []struct {
		question string
		want     QuestionType
	}{
		{question: "What is the reimbursement limit for overseas travel?", want: QuestionTypeRegulatory},
		{question: "출장비 한도가 어떻게 되나요?", want: QuestionTypeRegulatory},
		{question: "How do I submit a vacation request?", want: QuestionTypeProcedural},
		{question: "연차 신청 방법 알려주세요", want: QuestionTypeProcedural},
		{question: "When is the payroll deadline this month?", want: QuestionTypeSchedule},
		{question: "급여일이 언제인가요?", want: QuestionTypeSchedule},
		{question: "Whose contact should I use for IT issues?", want: QuestionTypeContact},
		{question: "보안 담당자 연락처 알려주세요", want: QuestionTypeContact},
		{question: "Tell me about the company", want: QuestionTypeGeneral},
	}

	for _, tt := range tests {
		t.Run(tt.question, func(t *testing.T) {
			if got := ClassifyQuestionType(tt.question); got != tt.want {
				t.Errorf("ClassifyQuestionType(%q) = %s, want %s", tt.question, got, tt.want)
			}
		})
	}
}

func TestParseTotalScore(t *testing.T) {
	tests := []struct {
		name     string
		response string
		want     int
		wantOk   bool
	}{
		{name: "plain total line", response: "completeness: 4\nTOTAL: 16", want: 16, wantOk: true},
		{name: "lowercase", response: "total: 9", want: 9, wantOk: true},
		{name: "equals separator", response: "TOTAL = 12", want: 12, wantOk: true},
		{name: "leading whitespace", response: "  TOTAL: 20", want: 20, wantOk: true},
		{name: "zero", response: "TOTAL: 0", want: 0, wantOk: true},
		{name: "over range rejected", response: "TOTAL: 25", wantOk: false},
		{name: "no total line", response: "the answer looks fine", wantOk: false},
		{name: "empty", response: "", wantOk: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := ParseTotalScore(tt.response)
			if ok != tt.wantOk {
				t.Fatalf("ok = %v, want %v", ok, tt.wantOk)
			}
			if ok && got != tt.want {
				t.Errorf("score = %d, want %d", got, tt.want)
			}
		})
	}
}

func TestEvaluateBelowThreshold(t *testing.T) {
	j := newTestJudge("completeness: 2\nTOTAL: 8\nIMPROVE: Name the specific policy clause")

	ev, err := j.Evaluate(context.Background(), "What is the travel policy limit?", []string{"ctx"}, "vague answer")
	if err != nil {
		t.Fatalf("Evaluate returned error: %v", err)
	}

	if ev.Score != 8 {
		t.Errorf("Score = %d, want 8", ev.Score)
	}
	if !ev.NeedsRewrite {
		t.Error("NeedsRewrite = false, want true for a score below the default threshold")
	}
	if ev.Improvement != "Name the specific policy clause" {
		t.Errorf("Improvement = %q", ev.Improvement)
	}
	if ev.QuestionType != QuestionTypeRegulatory {
		t.Errorf("QuestionType = %s, want %s", ev.QuestionType, QuestionTypeRegulatory)
	}
}

func TestEvaluateAboveThreshold(t *testing.T) {
	j := newTestJudge("TOTAL: 17")

	ev, err := j.Evaluate(context.Background(), "question", []string{"ctx"}, "solid answer")
	if err != nil {
		t.Fatalf("Evaluate returned error: %v", err)
	}

	if ev.Score != 17 || ev.NeedsRewrite {
		t.Errorf("got score=%d needsRewrite=%v, want 17/false", ev.Score, ev.NeedsRewrite)
	}
}

func TestEvaluateParseFallback(t *testing.T) {
	j := newTestJudge("the grading model rambled and produced no usable total")

	ev, err := j.Evaluate(context.Background(), "question", []string{"ctx"}, "answer")
	if err != nil {
		t.Fatalf("Evaluate returned error: %v", err)
	}

	if ev.Score != fallbackScore {
		t.Errorf("Score = %d, want fallback %d", ev.Score, fallbackScore)
	}
	if ev.NeedsRewrite {
		t.Error("fallback score must not trigger a rewrite at the default threshold")
	}
	if ev.Improvement != fallbackImprovement {
		t.Errorf("Improvement = %q, want fallback direction", ev.Improvement)
	}
}
