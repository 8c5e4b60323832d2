package service

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/slack-go/slack"
	"go.uber.org/zap"

	"github.com/spec-kit/sla-service/internal/config"
	"github.com/spec-kit/sla-service/internal/events"
)

// SlackPoster is the slice of the Slack client the service uses.
type SlackPoster interface {
	PostMessageContext(ctx context.Context, channelID string, options ...slack.MsgOption) (string, string, error)
}

// NotificationService turns SLA events into outbound alerts: a Slack
// message when configured, plus the email/webhook stubs.
type NotificationService struct {
	dispatcher events.Dispatcher
	logger     *zap.Logger
	cfg        config.NotificationConfig
	slack      SlackPoster
}

// NewNotificationService creates the service. A Slack client is only built
// when a token is configured.
func NewNotificationService(dispatcher events.Dispatcher, logger *zap.Logger, cfg config.NotificationConfig) *NotificationService {
	n := &NotificationService{
		dispatcher: dispatcher,
		logger:     logger,
		cfg:        cfg,
	}
	if strings.TrimSpace(cfg.SlackToken) != "" {
		n.slack = slack.New(cfg.SlackToken)
	}
	return n
}

// RegisterHandlers subscribes to events.
func (n *NotificationService) RegisterHandlers() {
	if n.dispatcher == nil {
		return
	}
	n.dispatcher.Subscribe(events.EventSLAResponseBreached, n.handleBreach)
	n.dispatcher.Subscribe(events.EventSLAResolutionBreached, n.handleBreach)
	n.dispatcher.Subscribe(events.EventSLAResponseAtRisk, n.handleAtRisk)
	n.dispatcher.Subscribe(events.EventSLAResolutionAtRisk, n.handleAtRisk)
	n.dispatcher.Subscribe(events.EventSLASettingsUpdated, n.handleSettingsUpdated)
}

func (n *NotificationService) handleBreach(ctx context.Context, event events.Event) error {
	n.logger.Warn("sla breached",
		zap.String("event_type", string(event.Type)),
		zap.String("ticket_id", event.TicketID),
		zap.Any("payload", event.Payload))
	n.postSlack(ctx, breachMessage(event))
	n.sendEmailNotificationStub(ctx, event)
	n.sendWebhookNotificationStub(ctx, event)
	return nil
}

func (n *NotificationService) handleAtRisk(ctx context.Context, event events.Event) error {
	n.logger.Info("sla at risk",
		zap.String("event_type", string(event.Type)),
		zap.String("ticket_id", event.TicketID),
		zap.Any("payload", event.Payload))
	n.postSlack(ctx, breachMessage(event))
	return nil
}

func (n *NotificationService) handleSettingsUpdated(ctx context.Context, event events.Event) error {
	n.logger.Info("sla settings updated", zap.Any("payload", event.Payload))
	return nil
}

func (n *NotificationService) postSlack(ctx context.Context, message string) {
	if n.slack == nil || strings.TrimSpace(n.cfg.SlackChannel) == "" {
		return
	}
	if _, _, err := n.slack.PostMessageContext(ctx, n.cfg.SlackChannel, slack.MsgOptionText(message, false)); err != nil {
		n.logger.Error("slack post failed", zap.Error(err))
	}
}

func breachMessage(event events.Event) string {
	payload, ok := event.Payload.(events.SLADeadlinePayload)
	if !ok {
		return fmt.Sprintf("%s: ticket %s", event.Type, event.TicketID)
	}
	var metric, verb string
	switch event.Type {
	case events.EventSLAResponseBreached:
		metric, verb = "Response", "breached"
	case events.EventSLAResolutionBreached:
		metric, verb = "Resolution", "breached"
	case events.EventSLAResponseAtRisk:
		metric, verb = "Response", "at risk"
	case events.EventSLAResolutionAtRisk:
		metric, verb = "Resolution", "at risk"
	default:
		metric, verb = string(event.Type), ""
	}
	return fmt.Sprintf("%s SLA %s: %s (%s priority), due %s",
		metric, verb, payload.TicketKey, payload.Priority,
		payload.ExpectedBy.Format(time.RFC3339))
}

func (n *NotificationService) sendEmailNotificationStub(ctx context.Context, event events.Event) {
	if strings.TrimSpace(n.cfg.EmailFrom) == "" {
		return
	}
	n.logger.Debug("sendEmailNotificationStub",
		zap.String("from", n.cfg.EmailFrom),
		zap.String("ticket_id", event.TicketID),
		zap.String("event_type", string(event.Type)))
}

func (n *NotificationService) sendWebhookNotificationStub(ctx context.Context, event events.Event) {
	if strings.TrimSpace(n.cfg.WebhookURL) == "" {
		return
	}
	n.logger.Debug("sendWebhookNotificationStub",
		zap.String("url", n.cfg.WebhookURL),
		zap.String("ticket_id", event.TicketID),
		zap.String("event_type", string(event.Type)))
}
