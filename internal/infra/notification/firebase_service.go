package notification

import (
	"context"

	"quizdash/internal/domain/service"
	"quizdash/internal/errors"

	firebase "firebase.google.com/go/v4"
	"firebase.google.com/go/v4/errorutils"
	"firebase.google.com/go/v4/messaging"
)

// ErrRetryable marks send failures that FCM may accept on a later attempt.
var ErrRetryable = errors.New("notification delivery can be retried")

type messagingClient interface {
	Send(ctx context.Context, message *messaging.Message) (string, error)
}

type firebaseService struct {
	client messagingClient
}

// NewFirebaseService creates a new Firebase notification service instance
func NewFirebaseService(ctx context.Context, app *firebase.App) (service.NotificationService, error) {
	client, err := app.Messaging(ctx)
	if err != nil {
		return nil, errors.Wrap(err, "failed to get messaging client")
	}

	return &firebaseService{
		client: client,
	}, nil
}

// SendTopicNotification sends a push notification to every device subscribed to the topic
func (s *firebaseService) SendTopicNotification(ctx context.Context, topic, title, body string, data map[string]string) error {
	if topic == "" {
		return errors.New("topic is required")
	}

	message := &messaging.Message{
		Topic: topic,
		Notification: &messaging.Notification{
			Title: title,
			Body:  body,
		},
		Data: data,
	}

	if _, err := s.client.Send(ctx, message); err != nil {
		if isRetryable(err) {
			return errors.Wrapf(errors.Join(ErrRetryable, err), "failed to send notification to topic %s", topic)
		}

		return errors.Wrapf(err, "failed to send notification to topic %s", topic)
	}

	return nil
}

func isRetryable(err error) bool {
	return errorutils.IsUnavailable(err) ||
		errorutils.IsInternal(err) ||
		messaging.IsQuotaExceeded(err)
}
