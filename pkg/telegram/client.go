// Package telegram provides a client for the Telegram Bot API, covering the
// single sendMessage call the bot needs, plus the Update wire types the
// webhook receives.
package telegram

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"time"

	"github.com/rotisserie/eris"
	"golang.org/x/time/rate"
)

const defaultBaseURL = "https://api.telegram.org"

// The Bot API allows roughly 30 messages per second across all chats.
const sendRatePerSecond = 30

// Client sends messages through the Bot API.
type Client interface {
	SendMessage(ctx context.Context, chatID int64, text string) error
}

// sendMessageRequest is the request body for POST /bot<token>/sendMessage.
type sendMessageRequest struct {
	ChatID    int64  `json:"chat_id"`
	Text      string `json:"text"`
	ParseMode string `json:"parse_mode"`
}

// apiResponse is the generic Bot API envelope.
type apiResponse struct {
	OK          bool   `json:"ok"`
	Description string `json:"description"`
}

// Option configures the client.
type Option func(*httpClient)

// WithBaseURL overrides the default API base URL.
func WithBaseURL(url string) Option {
	return func(c *httpClient) {
		c.baseURL = url
	}
}

// WithHTTPClient overrides the default http.Client.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *httpClient) {
		c.http = hc
	}
}

type httpClient struct {
	botToken string
	baseURL  string
	http     *http.Client
	limiter  *rate.Limiter
}

// NewClient creates a Telegram Bot API client. Outbound sends are paced by
// an internal limiter sized to the Bot API flood ceiling.
func NewClient(botToken string, opts ...Option) Client {
	c := &httpClient{
		botToken: botToken,
		baseURL:  defaultBaseURL,
		http: &http.Client{
			Timeout: 10 * time.Second,
		},
		limiter: rate.NewLimiter(rate.Limit(sendRatePerSecond), sendRatePerSecond),
	}
	for _, o := range opts {
		o(c)
	}
	return c
}

// SendMessage delivers one HTML-formatted message to a chat. Best effort:
// a failure is reported but never retried.
func (c *httpClient) SendMessage(ctx context.Context, chatID int64, text string) error {
	if err := c.limiter.Wait(ctx); err != nil {
		return eris.Wrap(err, "telegram: wait for send slot")
	}

	body, err := json.Marshal(sendMessageRequest{
		ChatID:    chatID,
		Text:      text,
		ParseMode: "HTML",
	})
	if err != nil {
		return eris.Wrap(err, "telegram: marshal request")
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/bot"+c.botToken+"/sendMessage", bytes.NewReader(body))
	if err != nil {
		return eris.Wrap(err, "telegram: create request")
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.http.Do(req)
	if err != nil {
		return eris.Wrap(err, "telegram: send request")
	}
	defer resp.Body.Close() //nolint:errcheck

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return eris.Wrap(err, "telegram: read response")
	}

	if resp.StatusCode != http.StatusOK {
		return eris.Errorf("telegram: unexpected status %d: %s", resp.StatusCode, string(respBody))
	}

	var result apiResponse
	if err := json.Unmarshal(respBody, &result); err != nil {
		return eris.Wrap(err, "telegram: unmarshal response")
	}
	if !result.OK {
		return eris.Errorf("telegram: api error: %s", result.Description)
	}

	return nil
}
