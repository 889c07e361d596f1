package linkedin

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/atlasai/outbound/internal/config"
)

const defaultBaseURL = "https://api.linkedin.com/v2"

// Client sends direct messages through the LinkedIn messaging API. The
// recipient is resolved from the lead's profile URL.
type Client struct {
	baseURL     string
	accessToken string
	http        *http.Client
}

func NewClient(cfg config.LinkedIn) *Client {
	return &Client{
		baseURL:     defaultBaseURL,
		accessToken: cfg.AccessToken,
		http:        &http.Client{Timeout: 10 * time.Second},
	}
}

func (c *Client) Name() string { return "linkedin" }

func (c *Client) SendMessage(ctx context.Context, profileURL, subject, body string) (string, error) {
	endpoint := fmt.Sprintf("%s/messages", c.baseURL)

	payload := sendMessageRequest{
		Recipients: []string{profileURL},
		Subject:    subject,
		Body:       messageBody{Text: body},
	}

	jsonBody, err := json.Marshal(payload)
	if err != nil {
		return "", fmt.Errorf("marshal linkedin message: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, bytes.NewBuffer(jsonBody))
	if err != nil {
		return "", err
	}
	req.Header.Set("Authorization", "Bearer "+c.accessToken)
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("X-Restli-Protocol-Version", "2.0.0")

	resp, err := c.http.Do(req)
	if err != nil {
		return "", fmt.Errorf("linkedin request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		respBody, _ := io.ReadAll(resp.Body)
		return "", fmt.Errorf("linkedin send (status %d): %s", resp.StatusCode, string(respBody))
	}

	return resp.Header.Get("X-Restli-Id"), nil
}
