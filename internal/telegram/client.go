package telegram

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"
)

// DefaultBaseURL is the Bot API host.
const DefaultBaseURL = "https://api.telegram.org"

// APIError carries the upstream HTTP status and the raw Bot API response
// body so the relay can pass it through to its caller unmodified.
type APIError struct {
	StatusCode  int
	Description string
	Body        string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("telegram api: status=%d description=%q", e.StatusCode, e.Description)
}

// ChatNotFound reports whether the upstream rejection means the chat id does
// not exist (the bot was never started by that user).
func (e *APIError) ChatNotFound() bool {
	return strings.Contains(strings.ToLower(e.Description), "chat not found")
}

// Client is a minimal Bot API client. One attempt per call, no retries: a
// failed send is reported to the caller and never re-driven from here.
type Client struct {
	token   string
	baseURL string
	httpc   *http.Client
}

// NewClient builds a client for the given bot token. baseURL is overridable
// for tests; pass "" for the real Bot API.
func NewClient(token, baseURL string) *Client {
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}
	return &Client{
		token:   token,
		baseURL: baseURL,
		httpc:   &http.Client{Timeout: 10 * time.Second},
	}
}

// SendMessage posts one sendMessage call and returns the resulting Telegram
// message id. Any non-OK upstream response is returned as *APIError with the
// raw body attached.
func (c *Client) SendMessage(ctx context.Context, chatID int64, text string, keyboard *InlineKeyboardMarkup) (int64, error) {
	reqBody, err := json.Marshal(sendMessageRequest{
		ChatID:      chatID,
		Text:        text,
		ParseMode:   "HTML",
		ReplyMarkup: keyboard,
	})
	if err != nil {
		return 0, fmt.Errorf("marshal sendMessage: %w", err)
	}

	url := fmt.Sprintf("%s/bot%s/sendMessage", c.baseURL, c.token)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(reqBody))
	if err != nil {
		return 0, fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpc.Do(req)
	if err != nil {
		return 0, fmt.Errorf("call telegram: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return 0, fmt.Errorf("read telegram response: %w", err)
	}

	var out sendMessageResponse
	if err := json.Unmarshal(body, &out); err != nil {
		return 0, &APIError{StatusCode: resp.StatusCode, Body: string(body)}
	}
	if resp.StatusCode != http.StatusOK || !out.OK {
		return 0, &APIError{
			StatusCode:  resp.StatusCode,
			Description: out.Description,
			Body:        string(body),
		}
	}
	return out.Result.MessageID, nil
}
