// Package channels provides the ChatChannel interface implemented by
// each chat platform integration.
package channels

import (
	"context"
	"sync"

	"github.com/pkg/errors"

	"github.com/shijin/IDALSCustomerCareAgent/plugin/chatapps"
)

// ErrInvalidPayload is returned when a webhook payload cannot be
// parsed into a message.
var ErrInvalidPayload = errors.New("invalid webhook payload")

// ChatChannel defines the interface for all chat platform integrations.
type ChatChannel interface {
	// Name returns the platform name.
	Name() chatapps.Platform

	// ValidateWebhook verifies the incoming webhook request signature.
	ValidateWebhook(ctx context.Context, requestURL string, headers map[string]string, form map[string]string) error

	// ParseMessage parses the incoming webhook payload into an IncomingMessage.
	ParseMessage(ctx context.Context, payload []byte) (*chatapps.IncomingMessage, error)

	// SendMessage sends a single message to the chat platform.
	SendMessage(ctx context.Context, msg *chatapps.OutgoingMessage) error

	// Close releases any open connections.
	Close() error
}

// ChannelRouter holds the registered chat channels.
// Concurrent-safe for Register and GetChannel operations.
type ChannelRouter struct {
	mu       sync.RWMutex
	registry map[chatapps.Platform]ChatChannel
}

// NewChannelRouter creates a new channel router.
func NewChannelRouter() *ChannelRouter {
	return &ChannelRouter{
		registry: make(map[chatapps.Platform]ChatChannel),
	}
}

// Register registers a chat channel for a platform.
func (r *ChannelRouter) Register(channel ChatChannel) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.registry[channel.Name()] = channel
}

// GetChannel returns the channel for a platform.
func (r *ChannelRouter) GetChannel(platform chatapps.Platform) (ChatChannel, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	channel, ok := r.registry[platform]
	return channel, ok
}

// Close closes all registered channels.
func (r *ChannelRouter) Close() error {
	r.mu.Lock()
	defer r.mu.Unlock()
	var firstErr error
	for _, channel := range r.registry {
		if err := channel.Close(); err != nil && firstErr == nil {
			firstErr = err
		}
	}
	return firstErr
}
