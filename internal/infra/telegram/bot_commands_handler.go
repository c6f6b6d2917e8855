// internal/infra/telegram/bot_commands_handler.go
package telegram

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"homework_status_bot/internal/app"

	"github.com/sirupsen/logrus"
	"gopkg.in/telebot.v3"
)

const longPollTimeout = 10 * time.Second

// StatusProvider exposes the poller snapshot to the /status command.
type StatusProvider interface {
	Status() app.Status
}

// RegisterBotCommands wires /start and /status. Both answer only in the configured chat.
func RegisterBotCommands(b *telebot.Bot, chatID string, poller StatusProvider, baseLogger *logrus.Entry) {
	cmdLogger := baseLogger.WithField("handler_group", "commands")

	b.Handle("/start", func(c telebot.Context) error {
		logCtx := cmdLogger.WithField("command", "/start").WithField("chat_id", c.Chat().ID)
		if !isConfiguredChat(c.Chat(), chatID) {
			logCtx.Warn("Ignoring command from foreign chat")
			return nil
		}
		logCtx.Info("Processing /start command")
		return c.Send("Hi! I watch your homework reviews and post here when a status changes. Use /status to see the last poll.")
	})

	b.Handle("/status", func(c telebot.Context) error {
		logCtx := cmdLogger.WithField("command", "/status").WithField("chat_id", c.Chat().ID)
		if !isConfiguredChat(c.Chat(), chatID) {
			logCtx.Warn("Ignoring command from foreign chat")
			return nil
		}
		logCtx.Info("Processing /status command")
		return c.Send(FormatStatus(poller.Status()))
	})
}

// isConfiguredChat matches the chat against TELEGRAM_CHAT_ID, given either as a
// numeric id or as @username for public channels and groups.
func isConfiguredChat(chat *telebot.Chat, chatID string) bool {
	if chat == nil {
		return false
	}
	if strconv.FormatInt(chat.ID, 10) == chatID {
		return true
	}
	return chat.Username != "" && strings.EqualFold("@"+chat.Username, chatID)
}

// FormatStatus renders the poller snapshot as a short plain-text report.
func FormatStatus(s app.Status) string {
	var text strings.Builder
	text.WriteString("Poller status\n\n")
	if s.Cursor > 0 {
		text.WriteString(fmt.Sprintf("Cursor: %s\n", time.Unix(s.Cursor, 0).UTC().Format(time.RFC3339)))
	} else {
		text.WriteString("Cursor: not set\n")
	}
	text.WriteString(fmt.Sprintf("Cycles: %d\n", s.Cycles))
	if s.LastCycleAt.IsZero() {
		text.WriteString("Last cycle: none yet\n")
		return text.String()
	}
	text.WriteString(fmt.Sprintf("Last cycle: %s (%s)\n", s.LastCycleAt.UTC().Format(time.RFC3339), s.LastOutcome))
	text.WriteString(fmt.Sprintf("Notifications sent: %d\n", s.LastSent))
	if s.LastError != "" {
		text.WriteString(fmt.Sprintf("Last error: %s\n", s.LastError))
	}
	return text.String()
}
