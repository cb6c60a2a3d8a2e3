// ABOUTME: Data types exchanged with the Botino backend REST API
// ABOUTME: Bots, users, engines, stats, logs, and dashboard messages

package api

// Platform names accepted by the backend for bot creation.
const (
	PlatformDiscord  = "discord"
	PlatformTelegram = "telegram"
	PlatformSlack    = "slack"
	PlatformTwitch   = "twitch"
)

// Bot status values.
const (
	BotStatusActive   = "active"
	BotStatusInactive = "inactive"
)

// Bot is a managed chat bot as reported by the backend.
type Bot struct {
	ID        int64  `json:"id"`
	Name      string `json:"name"`
	Platform  string `json:"platform"`
	Status    string `json:"status"`
	CreatedAt string `json:"created_at,omitempty"`
}

// CreateBotRequest creates a new bot. Settings carries platform and
// AI-provider credentials; the backend owns their interpretation.
type CreateBotRequest struct {
	Name     string         `json:"name"`
	Platform string         `json:"platform"`
	Settings map[string]any `json:"settings,omitempty"`
}

// BotConfig is the configuration document for a single bot.
type BotConfig struct {
	Settings map[string]any `json:"settings"`
}

// Engine is an available AI engine for bot configuration.
type Engine struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

// LoginUser is the user object inside a successful login response.
type LoginUser struct {
	ID                 string `json:"id"`
	Username           string `json:"username"`
	Role               string `json:"role,omitempty"`
	SubscriptionStatus string `json:"subscription_status,omitempty"`
}

// User is an account row from the admin users listing.
type User struct {
	ID                 string `json:"id"`
	Username           string `json:"username"`
	Role               string `json:"role"`
	SubscriptionStatus string `json:"subscription_status,omitempty"`
	CreatedAt          string `json:"created_at,omitempty"`
}

// SystemStats is the admin system statistics document.
type SystemStats struct {
	TotalUsers    int64 `json:"total_users"`
	TotalBots     int64 `json:"total_bots"`
	ActiveBots    int64 `json:"active_bots"`
	MessagesToday int64 `json:"messages_today"`
}

// LogEntry is one row of the admin system log.
type LogEntry struct {
	ID        string `json:"id"`
	Level     string `json:"level"`
	Message   string `json:"message"`
	Timestamp string `json:"timestamp"`
}

// Message is one row of the dashboard message feed.
type Message struct {
	ID        string `json:"id"`
	BotID     int64  `json:"bot_id"`
	Platform  string `json:"platform"`
	Sender    string `json:"sender"`
	Content   string `json:"content"`
	Timestamp string `json:"timestamp"`
}
