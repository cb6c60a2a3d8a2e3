// ABOUTME: Bot CRUD and toggle endpoints
// ABOUTME: Toggle requests carry an idempotency key so a retry cannot double-flip

package api

import (
	"context"
	"fmt"
	"net/http"

	"github.com/google/uuid"
)

// ListBots returns the caller's bots.
func (c *Client) ListBots(ctx context.Context) ([]Bot, error) {
	var bots []Bot
	if err := c.do(ctx, http.MethodGet, "/api/bots", nil, &bots); err != nil {
		return nil, fmt.Errorf("listing bots: %w", err)
	}
	return bots, nil
}

// CreateBot creates a new bot with platform and engine credentials.
func (c *Client) CreateBot(ctx context.Context, req CreateBotRequest) (*Bot, error) {
	var bot Bot
	if err := c.do(ctx, http.MethodPost, "/api/bots", req, &bot); err != nil {
		return nil, fmt.Errorf("creating bot: %w", err)
	}
	return &bot, nil
}

// toggleRequest is the JSON body for POST /api/bots/{id}/toggle.
type toggleRequest struct {
	IdempotencyKey string `json:"idempotency_key"`
}

// ToggleBot flips the bot's active state.
func (c *Client) ToggleBot(ctx context.Context, id int64) error {
	body := toggleRequest{IdempotencyKey: uuid.NewString()}
	if err := c.do(ctx, http.MethodPost, fmt.Sprintf("/api/bots/%d/toggle", id), body, nil); err != nil {
		return fmt.Errorf("toggling bot %d: %w", id, err)
	}
	return nil
}

// GetBotConfig retrieves the bot's configuration document.
func (c *Client) GetBotConfig(ctx context.Context, id int64) (*BotConfig, error) {
	var cfg BotConfig
	if err := c.do(ctx, http.MethodGet, fmt.Sprintf("/api/bots/%d/config", id), nil, &cfg); err != nil {
		return nil, fmt.Errorf("fetching config for bot %d: %w", id, err)
	}
	return &cfg, nil
}

// PutBotConfig replaces the bot's configuration document.
func (c *Client) PutBotConfig(ctx context.Context, id int64, cfg BotConfig) error {
	if err := c.do(ctx, http.MethodPut, fmt.Sprintf("/api/bots/%d/config", id), cfg, nil); err != nil {
		return fmt.Errorf("updating config for bot %d: %w", id, err)
	}
	return nil
}

// DeleteBot removes a bot.
func (c *Client) DeleteBot(ctx context.Context, id int64) error {
	if err := c.do(ctx, http.MethodDelete, fmt.Sprintf("/api/bots/%d", id), nil, nil); err != nil {
		return fmt.Errorf("deleting bot %d: %w", id, err)
	}
	return nil
}

// ListEngines returns the AI engines available for bot configuration.
func (c *Client) ListEngines(ctx context.Context) ([]Engine, error) {
	var engines []Engine
	if err := c.do(ctx, http.MethodGet, "/api/engines", nil, &engines); err != nil {
		return nil, fmt.Errorf("listing engines: %w", err)
	}
	return engines, nil
}
