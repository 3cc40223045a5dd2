package workflow

import (
	"context"
	"fmt"
	"log"

	"github.com/google/uuid"

	"ai-knowledge-be/internal/constant"
	"ai-knowledge-be/pkg/llm"
	"ai-knowledge-be/pkg/rag/judge"
)

// Classifier decides between the retrieval and the direct path.
type Classifier interface {
	Classify(ctx context.Context, question string) (string, error)
}

// Retriever searches the document corpus for a question.
type Retriever interface {
	Retrieve(ctx context.Context, question string, departmentId *int, docFilter []string) ([]string, error)
}

// Generator produces the answer text.
type Generator interface {
	Generate(ctx context.Context, question string, contexts []string, history []llm.Message, grounded bool) (string, error)
}

// Judge scores a grounded answer.
type Judge interface {
	Evaluate(ctx context.Context, question string, contexts []string, answer string) (judge.Evaluation, error)
}

// Rewriter restates a question whose answer scored below threshold.
type Rewriter interface {
	Rewrite(ctx context.Context, question, improvement string, questionType judge.QuestionType, contexts []string) (string, error)
}

// Summarizer refreshes the session summary after a completed turn.
type Summarizer interface {
	Summarize(ctx context.Context, sessionId uuid.UUID) error
}

// Config bounds the pipeline.
type Config struct {
	RewriteLimit int
}

// Orchestrator drives one turn through the pipeline state machine.
type Orchestrator struct {
	classifier Classifier
	retriever  Retriever
	generator  Generator
	judge      Judge
	rewriter   Rewriter
	summarizer Summarizer
	cfg        Config
	logger     *log.Logger
}

// NewOrchestrator wires the pipeline nodes together
func NewOrchestrator(
	classifier Classifier,
	retriever Retriever,
	generator Generator,
	judgeNode Judge,
	rewriter Rewriter,
	summarizer Summarizer,
	cfg Config,
	logger *log.Logger,
) *Orchestrator {
	return &Orchestrator{
		classifier: classifier,
		retriever:  retriever,
		generator:  generator,
		judge:      judgeNode,
		rewriter:   rewriter,
		summarizer: summarizer,
		cfg:        cfg,
		logger:     logger,
	}
}

// Run executes a full turn and returns the final turn state. The rewrite
// edge fires at most cfg.RewriteLimit times, so the loop always terminates.
// A failed model call at any node fails the whole turn; recovery from
// malformed model OUTPUT happens inside the nodes, not here.
func (o *Orchestrator) Run(ctx context.Context, turn TurnState, history []llm.Message) (TurnState, error) {
	retrievalMode := false
	state := StateClassify

	for state != StateDone {
		o.logger.Printf("[WORKFLOW] session %s state %s", turn.SessionId, state)

		switch state {
		case StateClassify:
			token, err := o.classifier.Classify(ctx, turn.Question)
			if err != nil {
				return turn, fmt.Errorf("classification failed: %w", err)
			}
			retrievalMode = token == constant.ClassifyTokenRetrieve
			if retrievalMode {
				state = StateRetrieve
			} else {
				state = StateGenerate
			}

		case StateRetrieve:
			contexts, err := o.retriever.Retrieve(ctx, turn.EffectiveQuestion(), turn.DepartmentId, turn.DocumentFilter)
			if err != nil {
				return turn, fmt.Errorf("retrieval failed: %w", err)
			}
			turn = turn.WithContexts(contexts)
			state = StateGenerate

		case StateGenerate:
			answer, err := o.generator.Generate(ctx, turn.EffectiveQuestion(), turn.Contexts, history, retrievalMode)
			if err != nil {
				return turn, fmt.Errorf("answer generation failed: %w", err)
			}
			turn = turn.WithAnswer(answer)
			history = append(history,
				llm.Message{Role: constant.ChatMessageRoleUser, Content: turn.EffectiveQuestion()},
				llm.Message{Role: constant.ChatMessageRoleAssistant, Content: answer},
			)
			if retrievalMode {
				state = StateJudge
			} else {
				state = StateSummarize
			}

		case StateJudge:
			ev, err := o.judge.Evaluate(ctx, turn.EffectiveQuestion(), turn.Contexts, turn.Answer)
			if err != nil {
				return turn, fmt.Errorf("evaluation failed: %w", err)
			}
			turn = turn.WithEvaluation(ev)
			if ev.NeedsRewrite && turn.RewriteCount < o.cfg.RewriteLimit {
				state = StateRewrite
			} else {
				state = StateSummarize
			}

		case StateRewrite:
			rewritten, err := o.rewriter.Rewrite(ctx, turn.Question, turn.Improvement, turn.QuestionType, turn.Contexts)
			if err != nil {
				return turn, fmt.Errorf("question rewrite failed: %w", err)
			}
			turn = turn.WithRewrite(rewritten)
			state = StateRetrieve

		case StateSummarize:
			if err := o.summarizer.Summarize(ctx, turn.SessionId); err != nil {
				return turn, fmt.Errorf("session summary failed: %w", err)
			}
			state = StateDone
		}
	}

	return turn, nil
}
