package notifier

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/pfrederiksen/pso2-quests/internal/logger"
	tele "gopkg.in/telebot.v4"
)

const telegramTimeout = 10 * time.Second

// TelegramNotifier posts reminders to a fixed set of Telegram chats
type TelegramNotifier struct {
	bot   *tele.Bot
	chats []int64
}

// NewTelegramNotifier creates a Telegram notifier. apiURL may be empty to use
// the public Bot API endpoint.
func NewTelegramNotifier(token string, chats []int64, apiURL string) (*TelegramNotifier, error) {
	if token == "" {
		return nil, errors.New("bot token is required")
	}
	if len(chats) == 0 {
		return nil, errors.New("at least one chat ID is required")
	}

	bot, err := tele.NewBot(tele.Settings{
		URL:     apiURL,
		Token:   token,
		Client:  &http.Client{Timeout: telegramTimeout},
		Offline: true,
	})
	if err != nil {
		return nil, fmt.Errorf("creating telegram bot: %w", err)
	}

	return &TelegramNotifier{bot: bot, chats: chats}, nil
}

// Notify sends text to every configured chat. Failures for single chats are
// logged; an error is returned only if every chat failed.
func (n *TelegramNotifier) Notify(ctx context.Context, text string) error {
	if text == "" {
		return errors.New("message text is required")
	}

	var failed int
	for _, chat := range n.chats {
		if ctx.Err() != nil {
			return ctx.Err()
		}
		if _, err := n.bot.Send(tele.ChatID(chat), text, tele.NoPreview); err != nil {
			logger.Error("Unable to send telegram message", logger.Fields{"chat_id": chat}, err)
			failed++
		}
	}

	if failed == len(n.chats) {
		return fmt.Errorf("all %d telegram chats failed", failed)
	}
	return nil
}
