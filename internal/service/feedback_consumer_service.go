package service

import (
	"context"
	"encoding/json"
	"log"

	"ai-knowledge-be/internal/dto"
	"ai-knowledge-be/pkg/rag/metrics"

	"github.com/ThreeDotsLabs/watermill/message"
	"github.com/ThreeDotsLabs/watermill/pubsub/gochannel"
)

type IFeedbackConsumerService interface {
	Consume(ctx context.Context) error
}

// feedbackConsumerService drains the feedback topic and feeds each sample
// into the adaptive threshold service.
type feedbackConsumerService struct {
	pubSub         *gochannel.GoChannel
	topicName      string
	metricsService *metrics.Service
	logger         *log.Logger
}

func NewFeedbackConsumerService(
	pubSub *gochannel.GoChannel,
	topicName string,
	metricsService *metrics.Service,
	logger *log.Logger,
) IFeedbackConsumerService {
	return &feedbackConsumerService{
		pubSub:         pubSub,
		topicName:      topicName,
		metricsService: metricsService,
		logger:         logger,
	}
}

func (s *feedbackConsumerService) Consume(ctx context.Context) error {
	messages, err := s.pubSub.Subscribe(ctx, s.topicName)
	if err != nil {
		return err
	}

	go func() {
		for msg := range messages {
			s.processMessage(msg)
		}
	}()

	return nil
}

func (s *feedbackConsumerService) processMessage(msg *message.Message) {
	var payload dto.FeedbackMessage
	if err := json.Unmarshal(msg.Payload, &payload); err != nil {
		s.logger.Printf("[FEEDBACK] failed to unmarshal message: %v", err)
		msg.Ack()
		return
	}

	s.metricsService.Record(payload.Score, payload.Satisfied)
	s.logger.Printf("[FEEDBACK] recorded sample for message %s (score=%d satisfied=%t)",
		payload.ChatMessageId, payload.Score, payload.Satisfied)

	msg.Ack()
}
