package telegram

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"time"

	"veillellm/internal/ports"
)

// Notifier sends messages to a Telegram chat via the bot API. It
// reports success as a boolean so the orchestrator can record a
// delivery failure without failing the run; transport errors are
// logged here.
type Notifier struct {
	botToken string
	chatID   string
	client   *http.Client
	logger   *slog.Logger
}

var _ ports.Notifier = (*Notifier)(nil)

// NewNotifier registers bot token and chat identifier.
func NewNotifier(botToken, chatID string, logger *slog.Logger) *Notifier {
	return &Notifier{
		botToken: botToken,
		chatID:   chatID,
		client:   &http.Client{Timeout: 30 * time.Second},
		logger:   logger,
	}
}

// Send posts a Markdown message to the configured chat.
func (n *Notifier) Send(ctx context.Context, message string) bool {
	if n.botToken == "" || n.chatID == "" {
		n.error("telegram notifier misconfigured, message dropped")
		return false
	}

	endpoint := fmt.Sprintf("https://api.telegram.org/bot%s/sendMessage", n.botToken)
	form := url.Values{}
	form.Set("chat_id", n.chatID)
	form.Set("text", message)
	form.Set("parse_mode", "Markdown")
	form.Set("disable_web_page_preview", "true")

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, strings.NewReader(form.Encode()))
	if err != nil {
		n.error("build telegram request", "error", err)
		return false
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	resp, err := n.client.Do(req)
	if err != nil {
		n.error("send telegram message", "error", err)
		return false
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		n.error("telegram rejected message", "status", resp.Status)
		return false
	}

	return true
}

func (n *Notifier) error(msg string, args ...any) {
	if n.logger != nil {
		n.logger.Error(msg, args...)
	}
}
