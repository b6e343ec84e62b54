package whatsapp

import (
	"context"
	"crypto/hmac"
	"crypto/sha1"
	"encoding/base64"
	"sort"
	"testing"

	"github.com/shijin/IDALSCustomerCareAgent/plugin/chatapps"
	"github.com/shijin/IDALSCustomerCareAgent/plugin/chatapps/channels"
)

func testChannel(t *testing.T) *Channel {
	t.Helper()
	c, err := NewChannel(Config{
		AccountSID: "AC00000000000000000000000000000000",
		AuthToken:  "secret-token",
		From:       "whatsapp:+14155238886",
	})
	if err != nil {
		t.Fatal(err)
	}
	return c
}

func signPayload(authToken, requestURL string, form map[string]string) string {
	keys := make([]string, 0, len(form))
	for k := range form {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	payload := requestURL
	for _, k := range keys {
		payload += k + form[k]
	}
	mac := hmac.New(sha1.New, []byte(authToken))
	mac.Write([]byte(payload))
	return base64.StdEncoding.EncodeToString(mac.Sum(nil))
}

func TestValidateWebhook(t *testing.T) {
	c := testChannel(t)
	requestURL := "https://agent.example.com/webhooks/whatsapp"
	form := map[string]string{
		"Body": "what is the fee",
		"From": "whatsapp:+919999999999",
	}

	t.Run("valid signature", func(t *testing.T) {
		headers := map[string]string{
			"X-Twilio-Signature": signPayload("secret-token", requestURL, form),
		}
		if err := c.ValidateWebhook(context.Background(), requestURL, headers, form); err != nil {
			t.Errorf("unexpected error: %v", err)
		}
	})

	t.Run("wrong token", func(t *testing.T) {
		headers := map[string]string{
			"X-Twilio-Signature": signPayload("other-token", requestURL, form),
		}
		if err := c.ValidateWebhook(context.Background(), requestURL, headers, form); err == nil {
			t.Error("forged signature accepted")
		}
	})

	t.Run("missing header", func(t *testing.T) {
		if err := c.ValidateWebhook(context.Background(), requestURL, map[string]string{}, form); err == nil {
			t.Error("missing signature accepted")
		}
	})

	t.Run("tampered form", func(t *testing.T) {
		headers := map[string]string{
			"X-Twilio-Signature": signPayload("secret-token", requestURL, form),
		}
		tampered := map[string]string{
			"Body": "send me a refund now",
			"From": form["From"],
		}
		if err := c.ValidateWebhook(context.Background(), requestURL, headers, tampered); err == nil {
			t.Error("tampered payload accepted")
		}
	})
}

func TestParseMessage(t *testing.T) {
	c := testChannel(t)

	msg, err := c.ParseMessage(context.Background(), []byte("Body=what+is+the+fee&From=whatsapp%3A%2B919999999999&MessageSid=SM123"))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if msg.Platform != chatapps.PlatformWhatsApp {
		t.Errorf("platform = %q", msg.Platform)
	}
	if msg.Content != "what is the fee" {
		t.Errorf("content = %q", msg.Content)
	}
	if msg.PlatformChatID != "whatsapp:+919999999999" {
		t.Errorf("chat id = %q", msg.PlatformChatID)
	}
	if msg.Metadata["message_sid"] != "SM123" {
		t.Errorf("message sid = %q", msg.Metadata["message_sid"])
	}
}

func TestParseMessageInvalid(t *testing.T) {
	c := testChannel(t)
	for _, payload := range []string{"", "From=whatsapp%3A%2B91", "Body=hello"} {
		if _, err := c.ParseMessage(context.Background(), []byte(payload)); err != channels.ErrInvalidPayload {
			t.Errorf("payload %q: err = %v, want ErrInvalidPayload", payload, err)
		}
	}
}
