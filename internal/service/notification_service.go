package service

import (
	"context"
	"strings"

	"go.uber.org/zap"

	"github.com/spec-kit/course-enrollment-service/internal/config"
	"github.com/spec-kit/course-enrollment-service/internal/events"
)

// NotificationService handles emitting notifications for domain events.
type NotificationService struct {
	dispatcher events.Dispatcher
	logger     *zap.Logger
	cfg        config.NotificationConfig
}

// NewNotificationService creates the service.
func NewNotificationService(dispatcher events.Dispatcher, logger *zap.Logger, cfg config.NotificationConfig) *NotificationService {
	return &NotificationService{
		dispatcher: dispatcher,
		logger:     logger,
		cfg:        cfg,
	}
}

// RegisterHandlers subscribes to events.
func (n *NotificationService) RegisterHandlers() {
	if n.dispatcher == nil {
		return
	}
	n.dispatcher.Subscribe(events.EventEnrollmentCreated, n.handleEnrollmentCreated)
	n.dispatcher.Subscribe(events.EventEnrollmentStatusChanged, n.handleStatusChanged)
	n.dispatcher.Subscribe(events.EventEnrollmentProgressUpdated, n.handleProgressUpdated)
	n.dispatcher.Subscribe(events.EventEnrollmentRemoved, n.handleEnrollmentRemoved)
}

func (n *NotificationService) handleEnrollmentCreated(ctx context.Context, event events.Event) error {
	n.logger.Info("EnrollmentCreated", zap.String("enrollment_id", event.EnrollmentID), zap.Any("payload", event.Payload))
	n.sendEmailNotificationStub(ctx, event)
	n.sendWebhookNotificationStub(ctx, event)
	return nil
}

func (n *NotificationService) handleStatusChanged(ctx context.Context, event events.Event) error {
	n.logger.Info("EnrollmentStatusChanged", zap.String("enrollment_id", event.EnrollmentID), zap.Any("payload", event.Payload))
	n.sendWebhookNotificationStub(ctx, event)
	return nil
}

func (n *NotificationService) handleProgressUpdated(_ context.Context, event events.Event) error {
	n.logger.Debug("EnrollmentProgressUpdated", zap.String("enrollment_id", event.EnrollmentID), zap.Any("payload", event.Payload))
	return nil
}

func (n *NotificationService) handleEnrollmentRemoved(ctx context.Context, event events.Event) error {
	n.logger.Info("EnrollmentRemoved", zap.String("enrollment_id", event.EnrollmentID), zap.Any("payload", event.Payload))
	n.sendWebhookNotificationStub(ctx, event)
	return nil
}

func (n *NotificationService) sendEmailNotificationStub(_ context.Context, event events.Event) {
	if strings.TrimSpace(n.cfg.EmailFrom) == "" {
		return
	}
	n.logger.Debug("sendEmailNotificationStub",
		zap.String("from", n.cfg.EmailFrom),
		zap.String("enrollment_id", event.EnrollmentID),
		zap.String("event_type", string(event.Type)))
}

func (n *NotificationService) sendWebhookNotificationStub(_ context.Context, event events.Event) {
	if strings.TrimSpace(n.cfg.WebhookURL) == "" {
		return
	}
	n.logger.Debug("sendWebhookNotificationStub",
		zap.String("url", n.cfg.WebhookURL),
		zap.String("enrollment_id", event.EnrollmentID),
		zap.String("event_type", string(event.Type)))
}
