package service

import (
	"context"

	"quizdash/internal/domain/entity"
)

// EventPublisher defines the interface for publishing events to a message queue
type EventPublisher interface {
	// PublishMilestoneEvent publishes a streak milestone event for async notification
	PublishMilestoneEvent(ctx context.Context, event *entity.MilestoneEvent) error

	// Close releases any resources held by the publisher
	Close() error
}
