package twilio

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

const defaultBaseURL = "https://api.twilio.com/2010-04-01"

// Client sends WhatsApp messages through the Twilio messaging API.
type Client struct {
	baseURL    string
	accountSID string
	authToken  string
	from       string
	http       *http.Client
}

func NewClient(cfg config.Twilio) *Client {
	return &Client{
		baseURL:    defaultBaseURL,
		accountSID: cfg.AccountSID,
		authToken:  cfg.AuthToken,
		from:       cfg.FromNumber,
		http:       &http.Client{Timeout: 10 * time.Second},
	}
}

func (c *Client) Name() string { return "twilio" }

func (c *Client) SendText(ctx context.Context, phone, body string) (string, error) {
	endpoint := fmt.Sprintf("%s/Accounts/%s/Messages.json", c.baseURL, c.accountSID)

	form := url.Values{}
	form.Set("To", "whatsapp:"+phone)
	form.Set("From", "whatsapp:"+c.from)
	form.Set("Body", body)

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, strings.NewReader(form.Encode()))
	if err != nil {
		return "", err
	}
	req.SetBasicAuth(c.accountSID, c.authToken)
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	resp, err := c.http.Do(req)
	if err != nil {
		return "", fmt.Errorf("twilio request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		respBody, _ := io.ReadAll(resp.Body)
		return "", fmt.Errorf("twilio send (status %d): %s", resp.StatusCode, string(respBody))
	}

	var response createMessageResponse
	if err := json.NewDecoder(resp.Body).Decode(&response); err != nil {
		return "", fmt.Errorf("twilio decode: %w", err)
	}
	return response.SID, nil
}
