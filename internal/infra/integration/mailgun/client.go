package mailgun

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/atlasai/outbound/internal/config"
)

const defaultBaseURL = "https://api.mailgun.net/v3"

// Client is a minimal Mailgun messages API client. Used as the secondary
// email provider when SendGrid is not configured.
type Client struct {
	baseURL string
	domain  string
	apiKey  string
	from    string
	http    *http.Client
}

func NewClient(cfg config.Mailgun) *Client {
	return &Client{
		baseURL: defaultBaseURL,
		domain:  cfg.Domain,
		apiKey:  cfg.APIKey,
		from:    cfg.From,
		http:    &http.Client{Timeout: 10 * time.Second},
	}
}

func (c *Client) Name() string { return "mailgun" }

func (c *Client) Send(ctx context.Context, to, subject, htmlBody, textBody string) (string, error) {
	endpoint := fmt.Sprintf("%s/%s/messages", c.baseURL, c.domain)

	form := url.Values{}
	form.Set("from", c.from)
	form.Set("to", to)
	form.Set("subject", subject)
	form.Set("text", textBody)
	form.Set("html", htmlBody)

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, strings.NewReader(form.Encode()))
	if err != nil {
		return "", err
	}
	req.SetBasicAuth("api", c.apiKey)
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	resp, err := c.http.Do(req)
	if err != nil {
		return "", fmt.Errorf("mailgun request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		body, _ := io.ReadAll(resp.Body)
		return "", fmt.Errorf("mailgun send (status %d): %s", resp.StatusCode, string(body))
	}

	var response sendMessageResponse
	if err := json.NewDecoder(resp.Body).Decode(&response); err != nil {
		return "", fmt.Errorf("mailgun decode: %w", err)
	}
	return response.ID, nil
}
