package service

import (
	"context"
	"encoding/json"
	"fmt"

	"ai-knowledge-be/internal/dto"

	"github.com/ThreeDotsLabs/watermill"
	"github.com/ThreeDotsLabs/watermill/message"
	"github.com/ThreeDotsLabs/watermill/pubsub/gochannel"
)

type IFeedbackPublisherService interface {
	Publish(ctx context.Context, payload dto.FeedbackMessage) error
}

type feedbackPublisherService struct {
	topicName string
	pubSub    *gochannel.GoChannel
}

func NewFeedbackPublisherService(topicName string, pubSub *gochannel.GoChannel) IFeedbackPublisherService {
	return &feedbackPublisherService{
		topicName: topicName,
		pubSub:    pubSub,
	}
}

func (s *feedbackPublisherService) Publish(ctx context.Context, payload dto.FeedbackMessage) error {
	data, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("failed to marshal feedback payload: %w", err)
	}

	msg := message.NewMessage(watermill.NewUUID(), data)
	msg.SetContext(ctx)

	return s.pubSub.Publish(s.topicName, msg)
}
