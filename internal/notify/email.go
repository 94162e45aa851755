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

// EmailChannel sends through a transactional email provider's HTTP API.
type EmailChannel struct {
	apiURL string
	apiKey string
	from   string
	client *http.Client
	logger *zap.Logger
}

type emailSendRequest struct {
	From    string `json:"from"`
	To      string `json:"to"`
	Subject string `json:"subject"`
	Text    string `json:"text"`
}

type emailSendResponse struct {
	ID string `json:"id"`
}

func NewEmailChannel(apiURL, apiKey, from string, logger *zap.Logger) *EmailChannel {
	apiURL = strings.TrimSpace(apiURL)
	if apiURL == "" {
		return nil
	}
	return &EmailChannel{
		apiURL: strings.TrimRight(apiURL, "/"),
		apiKey: apiKey,
		from:   from,
		client: &http.Client{Timeout: 15 * time.Second},
		logger: logger,
	}
}

func (c *EmailChannel) Send(ctx context.Context, address, subject, body string) (Delivery, error) {
	if c == nil || c.client == nil {
		return Delivery{}, errors.New("email channel is not initialized")
	}

	payload := emailSendRequest{
		From:    c.from,
		To:      strings.TrimSpace(address),
		Subject: subject,
		Text:    body,
	}
	b, err := json.Marshal(payload)
	if err != nil {
		return Delivery{}, err
	}

	endpoint := c.apiURL + "/emails"
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
		c.logger.Warn("email send failed",
			zap.Int("status", resp.StatusCode),
			zap.String("body", strings.TrimSpace(string(rb))),
		)
		return Delivery{}, fmt.Errorf("email send failed: status=%d", resp.StatusCode)
	}

	var out emailSendResponse
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return Delivery{}, err
	}
	return Delivery{ID: out.ID, Status: "sent"}, nil
}

var _ Channel = (*EmailChannel)(nil)
