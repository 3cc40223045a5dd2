package workflow

import (
	"context"
	"errors"
	"io"
	"log"
	"testing"

	"github.com/google/uuid"

	"ai-knowledge-be/internal/constant"
	"ai-knowledge-be/pkg/llm"
	"ai-knowledge-be/pkg/rag/judge"
)

type fakeClassifier struct {
	token string
	err   error
}

func (f *fakeClassifier) Classify(ctx context.Context, question string) (string, error) {
	return f.token, f.err
}

type fakeRetriever struct {
	contexts  [][]string
	questions []string
	calls     int
}

func (f *fakeRetriever) Retrieve(ctx context.Context, question string, departmentId *int, docFilter []string) ([]string, error) {
	f.questions = append(f.questions, question)
	contexts := f.contexts[f.calls]
	if f.calls < len(f.contexts)-1 {
		f.calls++
	}
	return contexts, nil
}

type fakeGenerator struct {
	answers []string
	calls   int
}

func (f *fakeGenerator) Generate(ctx context.Context, question string, contexts []string, history []llm.Message, grounded bool) (string, error) {
	answer := f.answers[f.calls]
	if f.calls < len(f.answers)-1 {
		f.calls++
	}
	return answer, nil
}

type fakeJudge struct {
	evaluations []judge.Evaluation
	calls       int
}

func (f *fakeJudge) Evaluate(ctx context.Context, question string, contexts []string, answer string) (judge.Evaluation, error) {
	ev := f.evaluations[f.calls]
	if f.calls < len(f.evaluations)-1 {
		f.calls++
	}
	return ev, nil
}

type failingJudge struct{ called bool }

func (f *failingJudge) Evaluate(ctx context.Context, question string, contexts []string, answer string) (judge.Evaluation, error) {
	f.called = true
	return judge.Evaluation{}, errors.New("model down")
}

type failingRewriter struct{}

func (f *failingRewriter) Rewrite(ctx context.Context, question, improvement string, questionType judge.QuestionType, contexts []string) (string, error) {
	return "", errors.New("model down")
}

type fakeRewriter struct {
	rewritten string
	calls     int
}

func (f *fakeRewriter) Rewrite(ctx context.Context, question, improvement string, questionType judge.QuestionType, contexts []string) (string, error) {
	f.calls++
	return f.rewritten, nil
}

type fakeSummarizer struct {
	calls int
}

func (f *fakeSummarizer) Summarize(ctx context.Context, sessionId uuid.UUID) error {
	f.calls++
	return nil
}

func newTestOrchestrator(c Classifier, r Retriever, g Generator, j Judge, rw Rewriter, s Summarizer) *Orchestrator {
	return NewOrchestrator(c, r, g, j, rw, s, Config{RewriteLimit: 1}, log.New(io.Discard, "", 0))
}

func TestRunGroundedHappyPath(t *testing.T) {
	retriever := &fakeRetriever{contexts: [][]string{{"[Policy > Travel] (source: policy.pdf)\nThe limit is $100."}}}
	rewriter := &fakeRewriter{}
	summarizer := &fakeSummarizer{}

	o := newTestOrchestrator(
		&fakeClassifier{token: constant.ClassifyTokenRetrieve},
		retriever,
		&fakeGenerator{answers: []string{"The limit is $100 per day."}},
		&fakeJudge{evaluations: []judge.Evaluation{{Score: 16, NeedsRewrite: false}}},
		rewriter,
		summarizer,
	)

	turn, err := o.Run(context.Background(), NewTurnState(uuid.New(), "What is the reimbursement limit?", nil, nil), nil)
	if err != nil {
		t.Fatalf("Run returned error: %v", err)
	}

	if turn.Answer != "The limit is $100 per day." {
		t.Errorf("Answer = %q", turn.Answer)
	}
	if !turn.UsedRetrieval() {
		t.Error("UsedRetrieval() = false, want true")
	}
	if turn.RewriteCount != 0 {
		t.Errorf("RewriteCount = %d, want 0", turn.RewriteCount)
	}
	if turn.Score != 16 {
		t.Errorf("Score = %d, want 16", turn.Score)
	}
	if rewriter.calls != 0 {
		t.Errorf("rewriter called %d times, want 0", rewriter.calls)
	}
	if summarizer.calls != 1 {
		t.Errorf("summarizer called %d times, want 1", summarizer.calls)
	}
}

func TestRunDirectPathSkipsRetrievalAndJudge(t *testing.T) {
	retriever := &fakeRetriever{contexts: [][]string{nil}}
	judgeNode := &failingJudge{}
	summarizer := &fakeSummarizer{}

	o := newTestOrchestrator(
		&fakeClassifier{token: constant.ClassifyTokenDirect},
		retriever,
		&fakeGenerator{answers: []string{"안녕하세요! 무엇을 도와드릴까요?"}},
		judgeNode,
		&fakeRewriter{},
		summarizer,
	)

	turn, err := o.Run(context.Background(), NewTurnState(uuid.New(), "안녕하세요", nil, nil), nil)
	if err != nil {
		t.Fatalf("Run returned error: %v", err)
	}

	if judgeNode.called {
		t.Error("judge must not run on the direct path")
	}
	if len(retriever.questions) != 0 {
		t.Error("retriever must not run on the direct path")
	}
	if turn.UsedRetrieval() {
		t.Error("UsedRetrieval() = true, want false")
	}
	if turn.Score != 0 {
		t.Errorf("Score = %d, want 0 on the direct path", turn.Score)
	}
	if summarizer.calls != 1 {
		t.Errorf("summarizer called %d times, want 1", summarizer.calls)
	}
}

func TestRunBelowThresholdRewritesOnce(t *testing.T) {
	retriever := &fakeRetriever{contexts: [][]string{
		{"[Policy] (source: a.pdf)\nvague"},
		{"[Policy > Travel] (source: a.pdf)\nspecific"},
	}}
	rewriter := &fakeRewriter{rewritten: "What is the daily travel allowance limit?"}
	summarizer := &fakeSummarizer{}

	o := newTestOrchestrator(
		&fakeClassifier{token: constant.ClassifyTokenRetrieve},
		retriever,
		&fakeGenerator{answers: []string{"vague answer", "specific answer"}},
		&fakeJudge{evaluations: []judge.Evaluation{
			{Score: 8, NeedsRewrite: true, Improvement: "be specific"},
			{Score: 17, NeedsRewrite: false},
		}},
		rewriter,
		summarizer,
	)

	turn, err := o.Run(context.Background(), NewTurnState(uuid.New(), "travel money?", nil, nil), nil)
	if err != nil {
		t.Fatalf("Run returned error: %v", err)
	}

	if rewriter.calls != 1 {
		t.Errorf("rewriter called %d times, want exactly 1", rewriter.calls)
	}
	if turn.RewriteCount != 1 {
		t.Errorf("RewriteCount = %d, want 1", turn.RewriteCount)
	}
	if turn.Question != "travel money?" {
		t.Errorf("original question mutated to %q", turn.Question)
	}
	if turn.Rewritten != "What is the daily travel allowance limit?" {
		t.Errorf("Rewritten = %q", turn.Rewritten)
	}
	if len(retriever.questions) != 2 || retriever.questions[1] != turn.Rewritten {
		t.Errorf("second retrieval should use the rewritten question, got %v", retriever.questions)
	}
	if turn.Answer != "specific answer" {
		t.Errorf("Answer = %q, want the regenerated answer", turn.Answer)
	}
	if turn.Score != 17 {
		t.Errorf("Score = %d, want the final evaluation score", turn.Score)
	}
	if summarizer.calls != 1 {
		t.Errorf("summarizer called %d times, want 1", summarizer.calls)
	}
}

func TestRunRewriteLimitStopsLoop(t *testing.T) {
	retriever := &fakeRetriever{contexts: [][]string{
		{"[Policy] (source: a.pdf)\nctx"},
		{"[Policy] (source: a.pdf)\nctx"},
	}}
	rewriter := &fakeRewriter{rewritten: "sharper question"}

	// The judge stays unhappy; the limit must still end the loop.
	o := newTestOrchestrator(
		&fakeClassifier{token: constant.ClassifyTokenRetrieve},
		retriever,
		&fakeGenerator{answers: []string{"answer"}},
		&fakeJudge{evaluations: []judge.Evaluation{
			{Score: 5, NeedsRewrite: true},
			{Score: 6, NeedsRewrite: true},
		}},
		rewriter,
		&fakeSummarizer{},
	)

	turn, err := o.Run(context.Background(), NewTurnState(uuid.New(), "question", nil, nil), nil)
	if err != nil {
		t.Fatalf("Run returned error: %v", err)
	}

	if rewriter.calls != 1 {
		t.Errorf("rewriter called %d times, want 1", rewriter.calls)
	}
	if turn.Score != 6 {
		t.Errorf("Score = %d, want the last evaluation kept", turn.Score)
	}
}

func TestRunClassifierCallFailureFailsTurn(t *testing.T) {
	summarizer := &fakeSummarizer{}

	o := newTestOrchestrator(
		&fakeClassifier{err: errors.New("model down")},
		&fakeRetriever{contexts: [][]string{nil}},
		&fakeGenerator{answers: []string{"unreachable"}},
		&failingJudge{},
		&fakeRewriter{},
		summarizer,
	)

	turn, err := o.Run(context.Background(), NewTurnState(uuid.New(), "question", nil, nil), nil)
	if err == nil {
		t.Fatal("Run must fail when the classification call fails")
	}
	if turn.Answer != "" {
		t.Errorf("Answer = %q, want none on a failed turn", turn.Answer)
	}
	if summarizer.calls != 0 {
		t.Errorf("summarizer called %d times on a failed turn, want 0", summarizer.calls)
	}
}

func TestRunJudgeCallFailureFailsTurn(t *testing.T) {
	summarizer := &fakeSummarizer{}

	o := newTestOrchestrator(
		&fakeClassifier{token: constant.ClassifyTokenRetrieve},
		&fakeRetriever{contexts: [][]string{{"[Policy] (source: a.pdf)\nctx"}}},
		&fakeGenerator{answers: []string{"answer"}},
		&failingJudge{},
		&fakeRewriter{},
		summarizer,
	)

	_, err := o.Run(context.Background(), NewTurnState(uuid.New(), "question", nil, nil), nil)
	if err == nil {
		t.Fatal("Run must fail when the evaluation call fails")
	}
	if summarizer.calls != 0 {
		t.Errorf("summarizer called %d times on a failed turn, want 0", summarizer.calls)
	}
}

func TestRunRewriterCallFailureFailsTurn(t *testing.T) {
	retriever := &fakeRetriever{contexts: [][]string{{"[Policy] (source: a.pdf)\nctx"}}}

	o := newTestOrchestrator(
		&fakeClassifier{token: constant.ClassifyTokenRetrieve},
		retriever,
		&fakeGenerator{answers: []string{"weak answer"}},
		&fakeJudge{evaluations: []judge.Evaluation{{Score: 5, NeedsRewrite: true}}},
		&failingRewriter{},
		&fakeSummarizer{},
	)

	_, err := o.Run(context.Background(), NewTurnState(uuid.New(), "question", nil, nil), nil)
	if err == nil {
		t.Fatal("Run must fail when the rewrite call fails")
	}
	if len(retriever.questions) != 1 {
		t.Errorf("retriever ran %d times, want 1 before the failed rewrite", len(retriever.questions))
	}
}
