// ABOUTME: Admin and dashboard read endpoints
// ABOUTME: Users, system stats, system logs, and the message feed

package api

import (
	"context"
	"fmt"
	"net/http"
)

// ListUsers returns all accounts. Admin only; the backend enforces the role.
func (c *Client) ListUsers(ctx context.Context) ([]User, error) {
	var users []User
	if err := c.do(ctx, http.MethodGet, "/api/users", nil, &users); err != nil {
		return nil, fmt.Errorf("listing users: %w", err)
	}
	return users, nil
}

// GetSystemStats returns platform-wide statistics. Admin only.
func (c *Client) GetSystemStats(ctx context.Context) (*SystemStats, error) {
	var stats SystemStats
	if err := c.do(ctx, http.MethodGet, "/api/admin/system-stats", nil, &stats); err != nil {
		return nil, fmt.Errorf("fetching system stats: %w", err)
	}
	return &stats, nil
}

// ListLogs returns recent system log entries. Admin only.
func (c *Client) ListLogs(ctx context.Context) ([]LogEntry, error) {
	var logs []LogEntry
	if err := c.do(ctx, http.MethodGet, "/api/logs", nil, &logs); err != nil {
		return nil, fmt.Errorf("listing logs: %w", err)
	}
	return logs, nil
}

// ListMessages returns the dashboard message feed for the caller's bots.
func (c *Client) ListMessages(ctx context.Context) ([]Message, error) {
	var messages []Message
	if err := c.do(ctx, http.MethodGet, "/api/messages", nil, &messages); err != nil {
		return nil, fmt.Errorf("listing messages: %w", err)
	}
	return messages, nil
}
