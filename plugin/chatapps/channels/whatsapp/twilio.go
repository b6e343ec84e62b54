// Package whatsapp implements the WhatsApp channel via the Twilio
// messaging REST API.
package whatsapp

import (
	"context"
	"crypto/hmac"
	"crypto/sha1"
	"encoding/base64"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"sort"
	"strings"
	"time"

	"github.com/pkg/errors"

	"github.com/shijin/IDALSCustomerCareAgent/plugin/chatapps"
	"github.com/shijin/IDALSCustomerCareAgent/plugin/chatapps/channels"
)

const twilioAPIBase = "https://api.twilio.com/2010-04-01"

// Config holds the Twilio credentials for the WhatsApp channel.
type Config struct {
	AccountSID string
	AuthToken  string
	// From is the WhatsApp-enabled sender, e.g. "whatsapp:+14155238886".
	From string
}

// Channel implements channels.ChatChannel for WhatsApp via Twilio.
type Channel struct {
	config     Config
	httpClient *http.Client
}

// NewChannel creates a WhatsApp channel.
func NewChannel(cfg Config) (*Channel, error) {
	if cfg.AccountSID == "" || cfg.AuthToken == "" || cfg.From == "" {
		return nil, errors.New("twilio account sid, auth token, and from number are required")
	}
	return &Channel{
		config: cfg,
		httpClient: &http.Client{
			Timeout: 10 * time.Second,
		},
	}, nil
}

// Name returns the platform name.
func (c *Channel) Name() chatapps.Platform {
	return chatapps.PlatformWhatsApp
}

// ValidateWebhook verifies the X-Twilio-Signature header:
// base64(HMAC-SHA1(auth token, url + sorted form params)).
func (c *Channel) ValidateWebhook(_ context.Context, requestURL string, headers map[string]string, form map[string]string) error {
	signature := headers["X-Twilio-Signature"]
	if signature == "" {
		return errors.New("missing twilio signature")
	}

	keys := make([]string, 0, len(form))
	for k := range form {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	var payload strings.Builder
	payload.WriteString(requestURL)
	for _, k := range keys {
		payload.WriteString(k)
		payload.WriteString(form[k])
	}

	mac := hmac.New(sha1.New, []byte(c.config.AuthToken))
	mac.Write([]byte(payload.String()))
	expected := base64.StdEncoding.EncodeToString(mac.Sum(nil))

	if !hmac.Equal([]byte(expected), []byte(signature)) {
		return errors.New("twilio signature mismatch")
	}
	return nil
}

// ParseMessage parses the Twilio webhook form payload (Body, From).
func (c *Channel) ParseMessage(_ context.Context, payload []byte) (*chatapps.IncomingMessage, error) {
	values, err := url.ParseQuery(string(payload))
	if err != nil {
		return nil, channels.ErrInvalidPayload
	}
	body := values.Get("Body")
	from := values.Get("From")
	if body == "" || from == "" {
		return nil, channels.ErrInvalidPayload
	}
	return &chatapps.IncomingMessage{
		Platform:       chatapps.PlatformWhatsApp,
		PlatformUserID: from,
		PlatformChatID: from,
		Content:        body,
		Timestamp:      time.Now(),
		Metadata: map[string]string{
			"message_sid": values.Get("MessageSid"),
		},
	}, nil
}

// SendMessage sends a WhatsApp message through the Twilio REST API.
func (c *Channel) SendMessage(ctx context.Context, msg *chatapps.OutgoingMessage) error {
	endpoint := fmt.Sprintf("%s/Accounts/%s/Messages.json", twilioAPIBase, c.config.AccountSID)

	form := url.Values{}
	form.Set("From", c.config.From)
	form.Set("To", msg.ChatID)
	form.Set("Body", msg.Content)

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, strings.NewReader(form.Encode()))
	if err != nil {
		return errors.Wrap(err, "failed to build twilio request")
	}
	req.SetBasicAuth(c.config.AccountSID, c.config.AuthToken)
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return errors.Wrap(err, "twilio request failed")
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 300 {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 1024))
		return errors.Errorf("twilio send failed: %d %s", resp.StatusCode, string(body))
	}
	return nil
}

// Close releases resources. The Twilio channel holds no connections.
func (c *Channel) Close() error {
	return nil
}
