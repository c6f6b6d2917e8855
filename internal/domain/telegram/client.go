package telegram

// Sender delivers plain text to a Telegram chat.
// The notifier depends on this instead of the bot library.
type Sender interface {
	SendText(chatID string, text string) error
}
