package service

import (
	"context"
	"fmt"
	"log"
	"sync"

	"ai-knowledge-be/internal/constant"
	"ai-knowledge-be/internal/dto"
	"ai-knowledge-be/internal/entity"
	"ai-knowledge-be/internal/repository/specification"
	"ai-knowledge-be/internal/repository/unitofwork"
	"ai-knowledge-be/pkg/events"
	"ai-knowledge-be/pkg/nats"
	"ai-knowledge-be/pkg/rag/history"
	"ai-knowledge-be/pkg/rag/workflow"

	"github.com/google/uuid"
	gocache "github.com/patrickmn/go-cache"
)

// IAssistantService defines the assistant service interface
type IAssistantService interface {
	CreateSession(ctx context.Context, userId uuid.UUID) (*dto.CreateSessionResponse, error)
	GetAllSessions(ctx context.Context, userId uuid.UUID) ([]*dto.GetAllSessionsResponse, error)
	GetChatHistory(ctx context.Context, userId uuid.UUID, sessionId uuid.UUID) ([]*dto.GetChatHistoryResponse, error)
	Ask(ctx context.Context, userId uuid.UUID, departmentId *int, request *dto.AskRequest) (*dto.AskResponse, error)
	Feedback(ctx context.Context, userId uuid.UUID, request *dto.FeedbackRequest) error
	DeleteSession(ctx context.Context, userId uuid.UUID, sessionId uuid.UUID) error
}

type assistantService struct {
	uowFactory    unitofwork.RepositoryFactory
	orchestrator  *workflow.Orchestrator
	historyLoader *history.Loader
	historyWindow int
	feedbackPub   IFeedbackPublisherService
	natsPub       *nats.Publisher
	turnLocks     *gocache.Cache
	logger        *log.Logger
}

// NewAssistantService creates a new assistant service
func NewAssistantService(
	uowFactory unitofwork.RepositoryFactory,
	orchestrator *workflow.Orchestrator,
	historyLoader *history.Loader,
	historyWindow int,
	feedbackPub IFeedbackPublisherService,
	natsPub *nats.Publisher,
	logger *log.Logger,
) IAssistantService {
	return &assistantService{
		uowFactory:    uowFactory,
		orchestrator:  orchestrator,
		historyLoader: historyLoader,
		historyWindow: historyWindow,
		feedbackPub:   feedbackPub,
		natsPub:       natsPub,
		turnLocks:     gocache.New(gocache.NoExpiration, 0),
		logger:        logger,
	}
}

func (s *assistantService) CreateSession(ctx context.Context, userId uuid.UUID) (*dto.CreateSessionResponse, error) {
	uow := s.uowFactory.NewUnitOfWork(ctx)

	session := &entity.ChatSession{UserId: userId}
	if err := uow.ChatSessionRepository().Create(ctx, session); err != nil {
		return nil, err
	}

	return &dto.CreateSessionResponse{Id: session.Id}, nil
}

func (s *assistantService) GetAllSessions(ctx context.Context, userId uuid.UUID) ([]*dto.GetAllSessionsResponse, error) {
	uow := s.uowFactory.NewUnitOfWork(ctx)

	sessions, err := uow.ChatSessionRepository().FindAll(ctx,
		specification.UserOwnedBy{UserID: userId},
		specification.OrderBy{Field: "updated_at", Desc: true},
	)
	if err != nil {
		return nil, err
	}

	res := make([]*dto.GetAllSessionsResponse, 0, len(sessions))
	for _, session := range sessions {
		res = append(res, &dto.GetAllSessionsResponse{
			Id:        session.Id,
			Summary:   session.Summary,
			CreatedAt: session.CreatedAt,
			UpdatedAt: session.UpdatedAt,
		})
	}

	return res, nil
}

func (s *assistantService) GetChatHistory(ctx context.Context, userId uuid.UUID, sessionId uuid.UUID) ([]*dto.GetChatHistoryResponse, error) {
	uow := s.uowFactory.NewUnitOfWork(ctx)

	if _, err := s.verifySession(ctx, uow, userId, sessionId); err != nil {
		return nil, err
	}

	messages, err := uow.ChatMessageRepository().FindAll(ctx,
		specification.ByChatSessionID{ChatSessionID: sessionId},
		specification.ActiveOnly{},
		specification.OrderBy{Field: "created_at", Desc: false},
	)
	if err != nil {
		return nil, err
	}

	res := make([]*dto.GetChatHistoryResponse, 0, len(messages))
	for _, msg := range messages {
		res = append(res, &dto.GetChatHistoryResponse{
			Id:        msg.Id,
			Role:      msg.Role,
			Content:   msg.Content,
			CreatedAt: msg.CreatedAt,
		})
	}

	return res, nil
}

// Ask runs one full question/answer turn. Turns on the same session are
// serialized so history and summary updates never interleave.
func (s *assistantService) Ask(ctx context.Context, userId uuid.UUID, departmentId *int, request *dto.AskRequest) (*dto.AskResponse, error) {
	unlock := s.lockSession(request.ChatSessionId)
	defer unlock()

	uow := s.uowFactory.NewUnitOfWork(ctx)

	if _, err := s.verifySession(ctx, uow, userId, request.ChatSessionId); err != nil {
		return nil, err
	}

	chatHistory, err := s.historyLoader.LoadConversationHistory(ctx, request.ChatSessionId, s.historyWindow)
	if err != nil {
		return nil, fmt.Errorf("failed to load conversation history: %w", err)
	}

	userMsg := &entity.ChatMessage{
		Content:       request.Question,
		Role:          constant.ChatMessageRoleUser,
		ChatSessionId: request.ChatSessionId,
		IsActive:      true,
	}
	if err := uow.ChatMessageRepository().Create(ctx, userMsg); err != nil {
		return nil, fmt.Errorf("failed to persist question: %w", err)
	}

	turn := workflow.NewTurnState(request.ChatSessionId, request.Question, departmentId, request.DocumentFilter)
	turn, err = s.orchestrator.Run(ctx, turn, chatHistory)
	if err != nil {
		return nil, err
	}

	replyMsg := &entity.ChatMessage{
		Content:         turn.Answer,
		Role:            constant.ChatMessageRoleAssistant,
		ChatSessionId:   request.ChatSessionId,
		IsActive:        true,
		EvaluationScore: turn.Score,
	}
	if err := uow.ChatMessageRepository().Create(ctx, replyMsg); err != nil {
		return nil, fmt.Errorf("failed to persist answer: %w", err)
	}

	s.publishTurnCompleted(ctx, userId, request.ChatSessionId, replyMsg.Id, turn)

	session, err := uow.ChatSessionRepository().FindOne(ctx, specification.ByID{ID: request.ChatSessionId})
	if err != nil {
		return nil, err
	}

	summary := ""
	if session != nil {
		summary = session.Summary
	}

	return &dto.AskResponse{
		ChatSessionId:  request.ChatSessionId,
		SessionSummary: summary,
		Sent: &dto.AskResponseChat{
			Id:        userMsg.Id,
			Content:   userMsg.Content,
			Role:      userMsg.Role,
			CreatedAt: userMsg.CreatedAt,
		},
		Reply: &dto.AskResponseChat{
			Id:        replyMsg.Id,
			Content:   replyMsg.Content,
			Role:      replyMsg.Role,
			CreatedAt: replyMsg.CreatedAt,
		},
		UsedRetrieval:   turn.UsedRetrieval(),
		EvaluationScore: turn.Score,
		RewriteCount:    turn.RewriteCount,
		Contexts:        turn.Contexts,
	}, nil
}

// Feedback records the caller's verdict on an answer. The signal feeds the
// adaptive quality threshold asynchronously. The evaluation score comes
// from the stored message, not from the client.
func (s *assistantService) Feedback(ctx context.Context, userId uuid.UUID, request *dto.FeedbackRequest) error {
	uow := s.uowFactory.NewUnitOfWork(ctx)

	msg, err := uow.ChatMessageRepository().FindOne(ctx, specification.ByID{ID: request.ChatMessageId})
	if err != nil {
		return err
	}
	if msg == nil {
		return fmt.Errorf("message not found")
	}
	if _, err := s.verifySession(ctx, uow, userId, msg.ChatSessionId); err != nil {
		return err
	}

	return s.feedbackPub.Publish(ctx, dto.FeedbackMessage{
		ChatMessageId: request.ChatMessageId,
		Score:         msg.EvaluationScore,
		Satisfied:     request.Satisfied,
	})
}

func (s *assistantService) DeleteSession(ctx context.Context, userId uuid.UUID, sessionId uuid.UUID) error {
	uow := s.uowFactory.NewUnitOfWork(ctx)

	session, err := s.verifySession(ctx, uow, userId, sessionId)
	if err != nil {
		return err
	}

	session.IsDeleted = true
	return uow.ChatSessionRepository().Update(ctx, session)
}

func (s *assistantService) verifySession(ctx context.Context, uow unitofwork.UnitOfWork, userId uuid.UUID, sessionId uuid.UUID) (*entity.ChatSession, error) {
	session, err := uow.ChatSessionRepository().FindOne(ctx,
		specification.ByID{ID: sessionId},
		specification.UserOwnedBy{UserID: userId},
	)
	if err != nil {
		return nil, err
	}
	if session == nil {
		return nil, fmt.Errorf("session not found or access denied")
	}
	return session, nil
}

// lockSession serializes turns per session. The lock cache never
// expires entries; a mutex must stay the same object for as long as any
// goroutine might hold or wait on it.
func (s *assistantService) lockSession(sessionId uuid.UUID) func() {
	key := sessionId.String()

	mu := &sync.Mutex{}
	if err := s.turnLocks.Add(key, mu, gocache.NoExpiration); err != nil {
		// Add is atomic, so a lost race means the winner's mutex is there.
		existing, _ := s.turnLocks.Get(key)
		mu = existing.(*sync.Mutex)
	}

	mu.Lock()
	return mu.Unlock
}

func (s *assistantService) publishTurnCompleted(ctx context.Context, userId uuid.UUID, sessionId uuid.UUID, messageId uuid.UUID, turn workflow.TurnState) {
	if s.natsPub == nil {
		return
	}

	event := events.New("ASSISTANT_TURN_COMPLETED", map[string]interface{}{
		"user_id":          userId.String(),
		"chat_session_id":  sessionId.String(),
		"chat_message_id":  messageId.String(),
		"used_retrieval":   turn.UsedRetrieval(),
		"evaluation_score": turn.Score,
		"rewrite_count":    turn.RewriteCount,
	})

	if err := s.natsPub.Publish(ctx, event); err != nil {
		s.logger.Printf("[EVENT] failed to publish turn completion: %v", err)
	}
}
