// internal/app/notifier.go
package app

import (
	"context"

	domainTelegram "homework_status_bot/internal/domain/telegram"

	"github.com/sirupsen/logrus"
	"golang.org/x/time/rate"
)

// Notifier relays prepared messages to the single destination chat.
// Delivery is best effort: failures are logged and never returned.
type Notifier struct {
	sender  domainTelegram.Sender
	chatID  string
	limiter *rate.Limiter
	logger  *logrus.Entry
}

func NewNotifier(sender domainTelegram.Sender, chatID string, ratePerSec int, logger *logrus.Entry) *Notifier {
	if ratePerSec <= 0 {
		ratePerSec = 1
	}
	return &Notifier{
		sender:  sender,
		chatID:  chatID,
		limiter: rate.NewLimiter(rate.Limit(ratePerSec), ratePerSec),
		logger:  logger,
	}
}

// Notify sends text and reports whether it was delivered.
func (n *Notifier) Notify(ctx context.Context, text string) bool {
	if err := n.limiter.Wait(ctx); err != nil {
		n.logger.WithError(err).WithField("text", text).Error("Message dropped before sending")
		return false
	}
	if err := n.sender.SendText(n.chatID, text); err != nil {
		n.logger.WithError(err).WithField("chat_id", n.chatID).Error("Failed to send message")
		return false
	}
	n.logger.WithField("chat_id", n.chatID).Infof("Message sent: %s", text)
	return true
}
