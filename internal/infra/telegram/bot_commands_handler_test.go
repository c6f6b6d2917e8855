package telegram

import (
	"testing"
	"time"

	"homework_status_bot/internal/app"
	"homework_status_bot/internal/domain/homework"

	"github.com/sirupsen/logrus"
	"github.com/sirupsen/logrus/hooks/test"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gopkg.in/telebot.v3"
)

type staticStatus app.Status

func (s staticStatus) Status() app.Status { return app.Status(s) }

func commandUpdate(text string, chat *telebot.Chat) telebot.Update {
	return telebot.Update{
		ID: 1,
		Message: &telebot.Message{
			ID:     1,
			Text:   text,
			Chat:   chat,
			Sender: &telebot.User{ID: 7},
		},
	}
}

func warnEntries(hook *test.Hook) int {
	n := 0
	for _, e := range hook.AllEntries() {
		if e.Level == logrus.WarnLevel {
			n++
		}
	}
	return n
}

func TestRegisterBotCommands_ChatFilter(t *testing.T) {
	cases := map[string]struct {
		configured string
		chat       *telebot.Chat
		allowed    bool
	}{
		"foreign chat":       {"42", &telebot.Chat{ID: 7, Type: telebot.ChatPrivate}, false},
		"configured id":      {"42", &telebot.Chat{ID: 42, Type: telebot.ChatPrivate}, true},
		"configured name":    {"@homework_channel", &telebot.Chat{ID: -100500, Type: telebot.ChatSuperGroup, Username: "homework_channel"}, true},
		"other public group": {"@homework_channel", &telebot.Chat{ID: -100600, Type: telebot.ChatSuperGroup, Username: "other_group"}, false},
	}

	for name, tc := range cases {
		t.Run(name, func(t *testing.T) {
			api, srv := newBotAPI(t)
			b := newOfflineBot(t, srv.URL)
			l, hook := test.NewNullLogger()
			RegisterBotCommands(b, tc.configured, staticStatus{Cycles: 3}, logrus.NewEntry(l))

			b.ProcessUpdate(commandUpdate("/status", tc.chat))

			sends := api.calls()
			if !tc.allowed {
				assert.Empty(t, sends)
				assert.Equal(t, 1, warnEntries(hook))
				return
			}
			require.Len(t, sends, 1)
			assert.Contains(t, sends[0]["text"], "Cycles: 3")
			assert.Zero(t, warnEntries(hook))
		})
	}
}

func TestRegisterBotCommands_Start(t *testing.T) {
	api, srv := newBotAPI(t)
	b := newOfflineBot(t, srv.URL)
	l, _ := test.NewNullLogger()
	RegisterBotCommands(b, "42", staticStatus{}, logrus.NewEntry(l))

	b.ProcessUpdate(commandUpdate("/start", &telebot.Chat{ID: 42, Type: telebot.ChatPrivate}))

	sends := api.calls()
	require.Len(t, sends, 1)
	assert.Equal(t, "42", sends[0]["chat_id"])
	assert.Contains(t, sends[0]["text"], "/status")
}

func TestFormatStatus_BeforeFirstCycle(t *testing.T) {
	text := FormatStatus(app.Status{Cursor: 1700000000})

	assert.Contains(t, text, "Cursor: 2023-11-14T22:13:20Z")
	assert.Contains(t, text, "Cycles: 0")
	assert.Contains(t, text, "Last cycle: none yet")
	assert.NotContains(t, text, "Last error")
}

func TestFormatStatus_AfterFailedCycle(t *testing.T) {
	text := FormatStatus(app.Status{
		Cursor:      1700000000,
		Cycles:      4,
		LastCycleAt: time.Date(2026, 10, 17, 9, 30, 0, 0, time.UTC),
		LastOutcome: homework.OutcomeFatal,
		LastError:   "API request error: status 503",
	})

	assert.Contains(t, text, "Cycles: 4")
	assert.Contains(t, text, "Last cycle: 2026-10-17T09:30:00Z (FATAL)")
	assert.Contains(t, text, "Notifications sent: 0")
	assert.Contains(t, text, "Last error: API request error: status 503")
}

func TestFormatStatus_NoCursor(t *testing.T) {
	assert.Contains(t, FormatStatus(app.Status{}), "Cursor: not set")
}
