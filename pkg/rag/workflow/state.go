package workflow

import (
	"github.com/google/uuid"

	"ai-knowledge-be/pkg/rag/judge"
)

// State identifies a node of the turn pipeline.
type State int

const (
	StateClassify State = iota
	StateRetrieve
	StateGenerate
	StateJudge
	StateRewrite
	StateSummarize
	StateDone
)

func (s State) String() string {
	switch s {
	case StateClassify:
		return "CLASSIFY"
	case StateRetrieve:
		return "RETRIEVE"
	case StateGenerate:
		return "GENERATE"
	case StateJudge:
		return "JUDGE"
	case StateRewrite:
		return "REWRITE"
	case StateSummarize:
		return "SUMMARIZE"
	case StateDone:
		return "DONE"
	}
	return "UNKNOWN"
}

// TurnState carries one question/answer turn through the pipeline. Values
// are never mutated in place; each transition derives a new state so a
// failed step cannot leave a half-updated turn behind.
type TurnState struct {
	SessionId      uuid.UUID
	Question       string
	Rewritten      string
	DepartmentId   *int
	DocumentFilter []string

	Contexts     []string
	Answer       string
	RewriteCount int

	Score        int
	QuestionType judge.QuestionType
	NeedsRewrite bool
	Improvement  string
}

// NewTurnState starts a turn for the given question.
func NewTurnState(sessionId uuid.UUID, question string, departmentId *int, documentFilter []string) TurnState {
	return TurnState{
		SessionId:      sessionId,
		Question:       question,
		DepartmentId:   departmentId,
		DocumentFilter: documentFilter,
	}
}

// EffectiveQuestion is the question the pipeline currently works with, the
// rewritten form when one exists.
func (t TurnState) EffectiveQuestion() string {
	if t.Rewritten != "" {
		return t.Rewritten
	}
	return t.Question
}

// UsedRetrieval reports whether the turn went through document retrieval.
func (t TurnState) UsedRetrieval() bool {
	return len(t.Contexts) > 0
}

// WithContexts derives a state carrying the retrieved contexts.
func (t TurnState) WithContexts(contexts []string) TurnState {
	t.Contexts = contexts
	return t
}

// WithAnswer derives a state carrying the generated answer.
func (t TurnState) WithAnswer(answer string) TurnState {
	t.Answer = answer
	return t
}

// WithEvaluation derives a state carrying the judge's verdict.
func (t TurnState) WithEvaluation(ev judge.Evaluation) TurnState {
	t.Score = ev.Score
	t.QuestionType = ev.QuestionType
	t.NeedsRewrite = ev.NeedsRewrite
	t.Improvement = ev.Improvement
	return t
}

// WithRewrite derives a state for the next retrieval pass with the rewritten
// question. The original question is preserved.
func (t TurnState) WithRewrite(rewritten string) TurnState {
	t.Rewritten = rewritten
	t.RewriteCount++
	t.NeedsRewrite = false
	return t
}
