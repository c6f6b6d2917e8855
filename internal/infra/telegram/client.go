// internal/infra/telegram/client.go
package telegram

import (
	"fmt"

	"gopkg.in/telebot.v3"
)

// chatRecipient addresses a chat by numeric id or by @channelname.
type chatRecipient string

func (r chatRecipient) Recipient() string { return string(r) }

// TelebotAdapter implements the domain Sender using gopkg.in/telebot.v3.
type TelebotAdapter struct {
	bot *telebot.Bot
}

func NewTelebotAdapter(b *telebot.Bot) *TelebotAdapter {
	return &TelebotAdapter{bot: b}
}

// SendText sends a plain message to a chat (user, group or channel).
func (tba *TelebotAdapter) SendText(chatID string, text string) error {
	options := &telebot.SendOptions{
		ParseMode:             telebot.ModeDefault,
		DisableWebPagePreview: true,
	}
	if _, err := tba.bot.Send(chatRecipient(chatID), text, options); err != nil {
		return fmt.Errorf("telegram send to chat %s: %w", chatID, err)
	}
	return nil
}

// NewBot creates the bot. Without commands it stays offline and never calls getMe,
// so a broken token only surfaces as send errors in the log.
func NewBot(token string, commandsEnabled bool, onError func(error, telebot.Context)) (*telebot.Bot, error) {
	pref := telebot.Settings{
		Token:   token,
		Offline: !commandsEnabled,
		OnError: onError,
	}
	if commandsEnabled {
		pref.Poller = &telebot.LongPoller{Timeout: longPollTimeout}
	}
	bot, err := telebot.NewBot(pref)
	if err != nil {
		return nil, fmt.Errorf("could not create telegram bot: %w", err)
	}
	return bot, nil
}
