// Package telegram implements the Telegram Bot channel.
package telegram

import (
	"context"
	"encoding/json"
	"strconv"
	"time"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/pkg/errors"

	"github.com/shijin/IDALSCustomerCareAgent/plugin/chatapps"
	"github.com/shijin/IDALSCustomerCareAgent/plugin/chatapps/channels"
)

// Config holds configuration for the Telegram channel.
type Config struct {
	BotToken string
}

// Channel implements channels.ChatChannel for the Telegram Bot API.
type Channel struct {
	bot *tgbotapi.BotAPI
}

// NewChannel creates a new Telegram channel.
func NewChannel(cfg Config) (*Channel, error) {
	bot, err := tgbotapi.NewBotAPI(cfg.BotToken)
	if err != nil {
		return nil, errors.Wrap(err, "failed to create Telegram bot")
	}
	return &Channel{bot: bot}, nil
}

// Name returns the platform name.
func (c *Channel) Name() chatapps.Platform {
	return chatapps.PlatformTelegram
}

// ValidateWebhook verifies the incoming webhook request.
// The Telegram Bot API authenticates by the secret webhook path.
func (c *Channel) ValidateWebhook(_ context.Context, _ string, _ map[string]string, _ map[string]string) error {
	return nil
}

// ParseMessage parses the incoming webhook payload into an IncomingMessage.
func (c *Channel) ParseMessage(_ context.Context, payload []byte) (*chatapps.IncomingMessage, error) {
	var update tgbotapi.Update
	if err := json.Unmarshal(payload, &update); err != nil {
		return nil, channels.ErrInvalidPayload
	}

	tgMsg := update.Message
	if tgMsg == nil {
		tgMsg = update.EditedMessage
	}
	if tgMsg == nil || tgMsg.From == nil {
		return nil, channels.ErrInvalidPayload
	}

	return &chatapps.IncomingMessage{
		Platform:       chatapps.PlatformTelegram,
		PlatformUserID: strconv.FormatInt(tgMsg.From.ID, 10),
		PlatformChatID: strconv.FormatInt(tgMsg.Chat.ID, 10),
		Content:        tgMsg.Text,
		Timestamp:      time.Now(),
		Metadata: map[string]string{
			"update_id": strconv.Itoa(update.UpdateID),
			"username":  tgMsg.From.UserName,
		},
	}, nil
}

// SendMessage sends a message to a Telegram chat.
func (c *Channel) SendMessage(_ context.Context, msg *chatapps.OutgoingMessage) error {
	chatID, err := strconv.ParseInt(msg.ChatID, 10, 64)
	if err != nil {
		return errors.Wrapf(err, "invalid telegram chat id %q", msg.ChatID)
	}

	out := tgbotapi.NewMessage(chatID, msg.Content)
	out.ParseMode = tgbotapi.ModeMarkdown
	if _, err := c.bot.Send(out); err != nil {
		return errors.Wrap(err, "failed to send telegram message")
	}
	return nil
}

// Close stops the bot's update polling if running.
func (c *Channel) Close() error {
	c.bot.StopReceivingUpdates()
	return nil
}
