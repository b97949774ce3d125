package notify

import (
	"context"
	"fmt"
	"time"

	"github.com/go-resty/resty/v2"
	"github.com/rs/zerolog"
)

const telegramAPI = "https://api.telegram.org"

// Telegram sends messages through the Bot API sendMessage call.
type Telegram struct {
	client *resty.Client
	token  string
	chatID string
	log    zerolog.Logger
}

func NewTelegram(token, chatID string, log zerolog.Logger) *Telegram {
	return NewTelegramWithBase(telegramAPI, token, chatID, log)
}

// NewTelegramWithBase exists for tests pointing at a local server.
func NewTelegramWithBase(baseURL, token, chatID string, log zerolog.Logger) *Telegram {
	client := resty.New().
		SetBaseURL(baseURL).
		SetTimeout(10 * time.Second)
	return &Telegram{client: client, token: token, chatID: chatID, log: log}
}

func (t *Telegram) Notify(ctx context.Context, msg string) error {
	resp, err := t.client.R().
		SetContext(ctx).
		SetBody(map[string]string{
			"chat_id": t.chatID,
			"text":    msg,
		}).
		Post(fmt.Sprintf("/bot%s/sendMessage", t.token))
	if err != nil {
		t.log.Warn().Err(err).Msg("telegram send failed")
		return err
	}
	if resp.IsError() {
		err := fmt.Errorf("telegram status %d", resp.StatusCode())
		t.log.Warn().Err(err).Msg("telegram send failed")
		return err
	}
	return nil
}
