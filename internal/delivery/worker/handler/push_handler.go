package handler

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"strconv"
	"strings"

	"quizdash/config"
	deliverycontext "quizdash/internal/delivery/context"
	"quizdash/internal/domain/constants"
	"quizdash/internal/domain/entity"
	"quizdash/internal/domain/service"
	"quizdash/internal/infra/notification"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"
	"go.uber.org/fx"
	"google.golang.org/api/idtoken"
)

// PubSubMessage represents the structure of a Pub/Sub push message
type PubSubMessage struct {
	Message struct {
		Data        string            `json:"data"`
		Attributes  map[string]string `json:"attributes,omitempty"`
		MessageID   string            `json:"messageId"`
		PublishTime string            `json:"publishTime"`
	} `json:"message"`
	Subscription string `json:"subscription"`
}

// tokenValidator validates a Google-signed ID token for an audience.
type tokenValidator func(ctx context.Context, token, audience string) (*idtoken.Payload, error)

// PushHandler turns milestone events into push notifications on the user's topic
type PushHandler struct {
	verifyPushAuth  bool
	validateToken   tokenValidator
	logger          *slog.Logger
	notificationSvc service.NotificationService
}

// PushHandlerParams holds dependencies for the PushHandler
type PushHandlerParams struct {
	fx.In

	Config          *config.Config
	Logger          *slog.Logger
	NotificationSvc service.NotificationService
}

// NewPushHandler creates a new Pub/Sub push handler
func NewPushHandler(params PushHandlerParams) *PushHandler {
	// Google push requests carry an OIDC token outside of local development
	verifyPushAuth := params.Config.PubSub != nil &&
		params.Config.PubSub.Provider == constants.PubSubProviderGoogle &&
		params.Config.Env.Env != constants.EnvDevelop

	return &PushHandler{
		verifyPushAuth:  verifyPushAuth,
		validateToken:   idtoken.Validate,
		logger:          params.Logger,
		notificationSvc: params.NotificationSvc,
	}
}

// HandlePush handles incoming Pub/Sub push messages
func (h *PushHandler) HandlePush(c echo.Context) error {
	ctx := c.Request().Context()

	if h.verifyPushAuth {
		if err := h.verifyPubSubToken(c.Request()); err != nil {
			h.logger.Warn("[Worker] Invalid Pub/Sub token", slog.Any("error", err))

			return c.NoContent(http.StatusUnauthorized)
		}
	}

	var pushMsg PubSubMessage
	if err := c.Bind(&pushMsg); err != nil {
		h.logger.Error("[Worker] Failed to parse push message", slog.Any("error", err))

		return c.NoContent(http.StatusBadRequest)
	}

	data, err := base64.StdEncoding.DecodeString(pushMsg.Message.Data)
	if err != nil {
		h.logger.Error("[Worker] Failed to decode message data", slog.Any("error", err))

		return c.NoContent(http.StatusBadRequest)
	}

	// A malformed event never becomes valid, so it is acknowledged
	var event entity.MilestoneEvent
	if err := json.Unmarshal(data, &event); err != nil || event.UserID == "" {
		h.logger.Error("[Worker] Dropping unparseable milestone event",
			slog.String("message_id", pushMsg.Message.MessageID),
			slog.Any("error", err),
		)

		return c.NoContent(http.StatusOK)
	}

	ctx, reqLogger := deliverycontext.WithRequestScope(ctx, h.logger, pushRequestID(ctx, &pushMsg, &event))

	reqLogger.Info("[Worker] Processing milestone event",
		slog.String("user_id", event.UserID),
		slog.Int("milestone", event.Milestone),
	)

	if err := h.notify(ctx, &event); err != nil {
		retryable := errors.Is(err, notification.ErrRetryable)
		reqLogger.Error("[Worker] Failed to send milestone notification",
			slog.String("user_id", event.UserID),
			slog.Any("error", err),
			slog.Bool("retryable", retryable),
		)
		// 503 asks Pub/Sub to redeliver, 200 drops the message
		if retryable {
			return c.NoContent(http.StatusServiceUnavailable)
		}

		return c.NoContent(http.StatusOK)
	}

	reqLogger.Info("[Worker] Milestone notification sent", slog.String("user_id", event.UserID))

	return c.NoContent(http.StatusOK)
}

// pushRequestID picks the request id from the message attributes, the event, then the context.
func pushRequestID(ctx context.Context, pushMsg *PubSubMessage, event *entity.MilestoneEvent) string {
	if requestID, ok := pushMsg.Message.Attributes["request_id"]; ok && requestID != "" {
		return requestID
	}

	if event.RequestID != "" {
		return event.RequestID
	}

	if requestID := deliverycontext.GetRequestIDFromContext(ctx); requestID != "" {
		return requestID
	}

	return uuid.New().String()
}

func (h *PushHandler) notify(ctx context.Context, event *entity.MilestoneEvent) error {
	title, body, data := milestoneNotificationContent(event)

	return h.notificationSvc.SendTopicNotification(ctx, constants.TopicPrefixUser+event.UserID, title, body, data)
}

// milestoneNotificationContent creates the notification title, body, and data
func milestoneNotificationContent(event *entity.MilestoneEvent) (title, body string, data map[string]string) {
	title = fmt.Sprintf("連續學習 %d 天！", event.Milestone)
	body = fmt.Sprintf("你已經連續 %d 天完成測驗，繼續保持！", event.CurrentStreak)
	if event.DisplayName != "" {
		body = fmt.Sprintf("%s，%s", event.DisplayName, body)
	}

	data = map[string]string{
		"type":            "streak_milestone",
		"user_id":         event.UserID,
		"milestone":       strconv.Itoa(event.Milestone),
		"current_streak":  strconv.Itoa(event.CurrentStreak),
		"previous_streak": strconv.Itoa(event.PreviousStreak),
	}

	return title, body, data
}

// verifyPubSubToken verifies the JWT token from Google Pub/Sub push requests
// Reference: https://cloud.google.com/pubsub/docs/push#authenticating_standard_push_requests
func (h *PushHandler) verifyPubSubToken(req *http.Request) error {
	authHeader := req.Header.Get("Authorization")
	if authHeader == "" {
		return errors.New("missing authorization header")
	}

	const bearerPrefix = "Bearer "
	token, found := strings.CutPrefix(authHeader, bearerPrefix)
	if !found {
		return errors.New("invalid authorization header format")
	}

	// The audience is the URL of this endpoint
	scheme := "https"
	if req.TLS == nil {
		scheme = "http"
	}
	audience := fmt.Sprintf("%s://%s%s", scheme, req.Host, req.URL.Path)

	payload, err := h.validateToken(req.Context(), token, audience)
	if err != nil {
		return errors.Wrap(err, "failed to validate token")
	}

	if payload.Issuer != "accounts.google.com" && payload.Issuer != "https://accounts.google.com" {
		return errors.Errorf("invalid issuer: %s", payload.Issuer)
	}

	if emailVerified, ok := payload.Claims["email_verified"].(bool); ok && !emailVerified {
		return errors.New("email not verified")
	}

	return nil
}
