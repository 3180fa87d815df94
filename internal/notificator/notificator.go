package notificator

import (
	"context"
	"runtime/debug"

	"github.com/fracta-city/fracta/internal/metrics"
	"github.com/fracta-city/fracta/internal/models"
	"github.com/fracta-city/fracta/pkg/logger"
)

const (
	channelTelegram = "telegram"
	channelEmail    = "email"
)

type chatSender interface {
	SendNotification(ctx context.Context, chatID, message string) error
}

type mailSender interface {
	SendNotification(ctx context.Context, to, subject, message string) error
}

var _ models.NotificationService = (*Notificator)(nil)

// Notificator routes notifications: operator events go to the admin Telegram
// chat, investor events go to the investor's email when one is on file.
type Notificator struct {
	logger      *logger.Logger
	metrics     *metrics.Metrics
	adminChatID string

	telegram chatSender
	email    mailSender
}

// NewNotificator accepts nil channels; a missing channel is skipped.
func NewNotificator(logger *logger.Logger, m *metrics.Metrics, adminChatID string, telNotif *TelegramNotificator, emailNotif *EmailNotificator) *Notificator {
	n := &Notificator{logger: logger, metrics: m, adminChatID: adminChatID}
	if telNotif != nil {
		n.telegram = telNotif
	}
	if emailNotif != nil {
		n.email = emailNotif
	}
	return n
}

// safeCall runs a function with panic recovery (synchronous, no goroutine spawning)
func (n *Notificator) safeCall(fn func() error, channel string) {
	defer func() {
		if r := recover(); r != nil {
			n.metrics.ObserveNotificationFailure(channel)
			n.logger.Error("Function panicked",
				"context", channel,
				"panic", r,
				"stack", string(debug.Stack()))
		}
	}()
	if err := fn(); err != nil {
		n.metrics.ObserveNotificationFailure(channel)
		n.logger.Error("Failed to deliver notification", "channel", channel, "error", err)
	}
}

// SendNotification delivers synchronously; callers run it off the request path.
func (n *Notificator) SendNotification(ctx context.Context, notification *models.Notification) {
	message := notification.String()

	if notification.ToAdmin() {
		if n.telegram == nil || n.adminChatID == "" {
			n.logger.Debug("Admin notification dropped, telegram not configured", "kind", notification.Kind)
			return
		}
		n.safeCall(func() error { return n.telegram.SendNotification(ctx, n.adminChatID, message) }, channelTelegram)
		return
	}

	if notification.Email == nil || *notification.Email == "" {
		n.logger.Debug("No email on file, notification skipped", "kind", notification.Kind, "wallet", notification.Wallet)
		return
	}
	if n.email == nil {
		n.logger.Debug("Email notification dropped, SMTP not configured", "kind", notification.Kind)
		return
	}
	to, subject := *notification.Email, notification.Subject()
	n.safeCall(func() error { return n.email.SendNotification(ctx, to, subject, message) }, channelEmail)
}
