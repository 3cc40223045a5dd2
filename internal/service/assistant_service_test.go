package service

import (
	"context"
	"io"
	"log"
	"testing"
	"time"

	"ai-knowledge-be/internal/dto"
	"ai-knowledge-be/internal/entity"
	"ai-knowledge-be/internal/repository/contract"
	"ai-knowledge-be/internal/repository/specification"
	"ai-knowledge-be/internal/repository/unitofwork"

	"github.com/google/uuid"
)

type fakeSessionRepo struct {
	session *entity.ChatSession
}

func (r *fakeSessionRepo) Create(ctx context.Context, session *entity.ChatSession) error {
	return nil
}

func (r *fakeSessionRepo) Update(ctx context.Context, session *entity.ChatSession) error {
	return nil
}

func (r *fakeSessionRepo) FindOne(ctx context.Context, specs ...specification.Specification) (*entity.ChatSession, error) {
	return r.session, nil
}

func (r *fakeSessionRepo) FindAll(ctx context.Context, specs ...specification.Specification) ([]*entity.ChatSession, error) {
	return nil, nil
}

func (r *fakeSessionRepo) Count(ctx context.Context, specs ...specification.Specification) (int64, error) {
	return 0, nil
}

type fakeMessageRepo struct {
	message *entity.ChatMessage
}

func (r *fakeMessageRepo) Create(ctx context.Context, message *entity.ChatMessage) error {
	return nil
}

func (r *fakeMessageRepo) FindOne(ctx context.Context, specs ...specification.Specification) (*entity.ChatMessage, error) {
	return r.message, nil
}

func (r *fakeMessageRepo) FindAll(ctx context.Context, specs ...specification.Specification) ([]*entity.ChatMessage, error) {
	return nil, nil
}

func (r *fakeMessageRepo) Count(ctx context.Context, specs ...specification.Specification) (int64, error) {
	return 0, nil
}

type fakeUnitOfWork struct {
	sessions *fakeSessionRepo
	messages *fakeMessageRepo
}

func (u *fakeUnitOfWork) Begin(ctx context.Context) error { return nil }
func (u *fakeUnitOfWork) Commit() error                   { return nil }
func (u *fakeUnitOfWork) Rollback() error                 { return nil }

func (u *fakeUnitOfWork) ChatSessionRepository() contract.ChatSessionRepository {
	return u.sessions
}

func (u *fakeUnitOfWork) ChatMessageRepository() contract.ChatMessageRepository {
	return u.messages
}

func (u *fakeUnitOfWork) DocumentChunkRepository() contract.DocumentChunkRepository {
	return nil
}

type fakeRepositoryFactory struct {
	uow *fakeUnitOfWork
}

func (f *fakeRepositoryFactory) NewUnitOfWork(ctx context.Context) unitofwork.UnitOfWork {
	return f.uow
}

type capturingFeedbackPublisher struct {
	published []dto.FeedbackMessage
}

func (p *capturingFeedbackPublisher) Publish(ctx context.Context, payload dto.FeedbackMessage) error {
	p.published = append(p.published, payload)
	return nil
}

func newTestAssistantService(factory unitofwork.RepositoryFactory, pub IFeedbackPublisherService) *assistantService {
	return NewAssistantService(
		factory, nil, nil, 5, pub, nil,
		log.New(io.Discard, "", 0),
	).(*assistantService)
}

func TestFeedbackUsesStoredEvaluationScore(t *testing.T) {
	userId := uuid.New()
	sessionId := uuid.New()
	messageId := uuid.New()

	uow := &fakeUnitOfWork{
		sessions: &fakeSessionRepo{session: &entity.ChatSession{Id: sessionId, UserId: userId}},
		messages: &fakeMessageRepo{message: &entity.ChatMessage{
			Id:              messageId,
			Role:            "assistant",
			ChatSessionId:   sessionId,
			EvaluationScore: 16,
		}},
	}
	pub := &capturingFeedbackPublisher{}
	svc := newTestAssistantService(&fakeRepositoryFactory{uow: uow}, pub)

	err := svc.Feedback(context.Background(), userId, &dto.FeedbackRequest{
		ChatMessageId: messageId,
		Satisfied:     false,
	})
	if err != nil {
		t.Fatalf("Feedback returned error: %v", err)
	}

	if len(pub.published) != 1 {
		t.Fatalf("published %d messages, want 1", len(pub.published))
	}
	if got := pub.published[0].Score; got != 16 {
		t.Errorf("published Score = %d, want the stored evaluation score 16", got)
	}
	if pub.published[0].Satisfied {
		t.Error("published Satisfied = true, want false")
	}
}

func TestFeedbackUnknownMessage(t *testing.T) {
	uow := &fakeUnitOfWork{
		sessions: &fakeSessionRepo{},
		messages: &fakeMessageRepo{},
	}
	pub := &capturingFeedbackPublisher{}
	svc := newTestAssistantService(&fakeRepositoryFactory{uow: uow}, pub)

	err := svc.Feedback(context.Background(), uuid.New(), &dto.FeedbackRequest{
		ChatMessageId: uuid.New(),
	})
	if err == nil {
		t.Fatal("Feedback must fail for an unknown message")
	}
	if len(pub.published) != 0 {
		t.Errorf("published %d messages, want 0", len(pub.published))
	}
}

func TestLockSessionSerializesSameSession(t *testing.T) {
	svc := newTestAssistantService(&fakeRepositoryFactory{uow: &fakeUnitOfWork{}}, nil)
	sessionId := uuid.New()

	unlock := svc.lockSession(sessionId)

	acquired := make(chan struct{})
	go func() {
		second := svc.lockSession(sessionId)
		close(acquired)
		second()
	}()

	select {
	case <-acquired:
		t.Fatal("second turn acquired the session lock while the first still held it")
	case <-time.After(50 * time.Millisecond):
	}

	unlock()

	select {
	case <-acquired:
	case <-time.After(time.Second):
		t.Fatal("second turn never acquired the lock after release")
	}
}

func TestLockSessionIndependentSessions(t *testing.T) {
	svc := newTestAssistantService(&fakeRepositoryFactory{uow: &fakeUnitOfWork{}}, nil)

	unlock := svc.lockSession(uuid.New())
	defer unlock()

	done := make(chan struct{})
	go func() {
		other := svc.lockSession(uuid.New())
		other()
		close(done)
	}()

	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("a lock on one session must not block another session")
	}
}

func TestLockSessionReusesSameMutex(t *testing.T) {
	svc := newTestAssistantService(&fakeRepositoryFactory{uow: &fakeUnitOfWork{}}, nil)
	sessionId := uuid.New()

	unlock := svc.lockSession(sessionId)
	unlock()

	first, found := svc.turnLocks.Get(sessionId.String())
	if !found {
		t.Fatal("lock missing from cache after first turn")
	}

	unlock = svc.lockSession(sessionId)
	unlock()

	second, _ := svc.turnLocks.Get(sessionId.String())
	if first != second {
		t.Error("later turns must reuse the same mutex object")
	}
}
