// Package chatapps provides chat platform integration for the
// customer care agent. Supported platforms: WhatsApp (Twilio),
// Telegram.
package chatapps

import "time"

// Platform represents a supported chat platform.
type Platform string

const (
	PlatformWhatsApp Platform = "whatsapp"
	PlatformTelegram Platform = "telegram"
)

// IncomingMessage is one user message received from a platform.
type IncomingMessage struct {
	Platform       Platform
	PlatformUserID string
	PlatformChatID string
	Content        string
	Timestamp      time.Time
	Metadata       map[string]string
}

// OutgoingMessage is one agent reply to deliver to a platform.
type OutgoingMessage struct {
	Platform Platform
	ChatID   string
	Content  string
}
