package delivery

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"
)

// Telegram posts reports through the Bot API sendMessage method.
type Telegram struct {
	baseURL    string
	token      string
	chatID     string
	httpClient *http.Client
}

func NewTelegram(baseURL, token, chatID string, timeout time.Duration) (*Telegram, error) {
	if token == "" {
		return nil, errors.New("telegram token is not set")
	}
	if chatID == "" {
		return nil, errors.New("telegram chat id is not set")
	}
	return &Telegram{
		baseURL:    strings.TrimRight(baseURL, "/"),
		token:      token,
		chatID:     chatID,
		httpClient: &http.Client{Timeout: timeout},
	}, nil
}

func (t *Telegram) Name() string { return "telegram" }

type telegramResponse struct {
	OK          bool   `json:"ok"`
	Description string `json:"description"`
}

func (t *Telegram) Deliver(ctx context.Context, text string) error {
	if text == "" {
		return nil
	}

	q := url.Values{}
	q.Set("chat_id", t.chatID)
	q.Set("text", text)
	endpoint := fmt.Sprintf("%s/bot%s/sendMessage?%s", t.baseURL, t.token, q.Encode())

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return fmt.Errorf("creating request: %w", stripURL(err))
	}

	resp, err := t.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("making request: %w", stripURL(err))
	}
	defer resp.Body.Close()

	body, _ := io.ReadAll(io.LimitReader(resp.Body, 64<<10))

	var parsed telegramResponse
	_ = json.Unmarshal(body, &parsed)

	if resp.StatusCode != http.StatusOK || !parsed.OK {
		desc := parsed.Description
		if desc == "" {
			desc = strings.TrimSpace(string(body))
		}
		return fmt.Errorf("telegram error: status %d: %s", resp.StatusCode, desc)
	}
	return nil
}

// stripURL drops the request URL from err. The URL carries the bot token.
func stripURL(err error) error {
	var uerr *url.Error
	if errors.As(err, &uerr) {
		return uerr.Err
	}
	return err
}
