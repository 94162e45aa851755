package notify

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"go.uber.org/zap"
)

// ChatChannel sends messages through a WhatsApp-style messaging provider's
// HTTP API.
type ChatChannel struct {
	apiURL string
	apiKey string
	from   string
	client *http.Client
	logger *zap.Logger
}

type chatSendRequest struct {
	From string `json:"from"`
	To   string `json:"to"`
	Body string `json:"body"`
}

type chatSendResponse struct {
	MessageID string `json:"message_id"`
	Status    string `json:"status"`
}

func NewChatChannel(apiURL, apiKey, from string, logger *zap.Logger) *ChatChannel {
	apiURL = strings.TrimSpace(apiURL)
	if apiURL == "" {
		return nil
	}
	return &ChatChannel{
		apiURL: strings.TrimRight(apiURL, "/"),
		apiKey: apiKey,
		from:   from,
		client: &http.Client{Timeout: 15 * time.Second},
		logger: logger,
	}
}

func (c *ChatChannel) Send(ctx context.Context, address, _ string, body string) (Delivery, error) {
	if c == nil || c.client == nil {
		return Delivery{}, errors.New("chat channel is not initialized")
	}

	payload := chatSendRequest{From: c.from, To: strings.TrimSpace(address), Body: body}
	b, err := json.Marshal(payload)
	if err != nil {
		return Delivery{}, err
	}

	endpoint := c.apiURL + "/messages"
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, bytes.NewReader(b))
	if err != nil {
		return Delivery{}, err
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+c.apiKey)

	resp, err := c.client.Do(req)
	if err != nil {
		return Delivery{}, err
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		rb, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
		c.logger.Warn("chat send failed",
			zap.Int("status", resp.StatusCode),
			zap.String("body", strings.TrimSpace(string(rb))),
		)
		return Delivery{}, fmt.Errorf("chat send failed: status=%d", resp.StatusCode)
	}

	var out chatSendResponse
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return Delivery{}, err
	}
	return Delivery{ID: out.MessageID, Status: out.Status}, nil
}

var _ Channel = (*ChatChannel)(nil)
