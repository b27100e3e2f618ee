// Package slack posts incident triage notifications to a channel using
// Block Kit.
package slack

import (
	"context"
	"fmt"
	"log/slog"

	goslack "github.com/slack-go/slack"
)

// Client is a thin wrapper around the slack-go SDK.
type Client struct {
	api     *goslack.Client
	channel string
	logger  *slog.Logger
}

// NewClient creates a Slack API client posting to channel.
func NewClient(token, channel string) *Client {
	return &Client{
		api:     goslack.New(token),
		channel: channel,
		logger:  slog.Default().With("component", "slack-client"),
	}
}

// NewClientWithAPIURL creates a Slack API client that targets a custom API URL.
// Useful for testing with a mock server.
func NewClientWithAPIURL(token, channel, apiURL string) *Client {
	return &Client{
		api:     goslack.New(token, goslack.OptionAPIURL(apiURL)),
		channel: channel,
		logger:  slog.Default().With("component", "slack-client"),
	}
}

// Channel returns the configured channel name.
func (c *Client) Channel() string {
	return c.channel
}

// Post sends a built incident message to the configured channel.
func (c *Client) Post(ctx context.Context, msg *Message) error {
	opts := []goslack.MsgOption{
		goslack.MsgOptionText(msg.Fallback, false),
		goslack.MsgOptionBlocks(msg.Blocks...),
	}
	if msg.Color != "" {
		opts = append(opts, goslack.MsgOptionAttachments(goslack.Attachment{
			Color:    msg.Color,
			Fallback: msg.Fallback,
		}))
	}

	_, _, err := c.api.PostMessageContext(ctx, c.channel, opts...)
	if err != nil {
		return fmt.Errorf("chat.postMessage failed: %w", err)
	}
	c.logger.Info("Posted incident notification", "channel", c.channel)
	return nil
}
