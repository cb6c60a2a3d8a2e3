// ABOUTME: Identity record for the authenticated user and its JSON persistence form
// ABOUTME: Role is trusted from the backend; the demo heuristic lives in demo.go only

package session

import (
	"strings"

	"github.com/botino/botino/internal/api"
)

// Role values the backend assigns to accounts.
const (
	RoleUser  = "user"
	RoleAdmin = "admin"
)

// Identity is the authenticated user's profile held client-side after login.
// It is persisted verbatim as JSON under the localstate identity key, so a
// restart restores the session without a logged-out flash.
type Identity struct {
	ID                 string `json:"id"`
	Username           string `json:"username"`
	Email              string `json:"email"`
	DisplayName        string `json:"name"`
	Role               string `json:"role"`
	SubscriptionStatus string `json:"subscription_status,omitempty"`
}

// IsAdmin reports whether this identity carries the admin role.
func (i Identity) IsAdmin() bool {
	return i.Role == RoleAdmin
}

// identityFromLogin derives an Identity from a successful login response.
// The role comes from the backend; an account with no role field is a
// plain user.
func identityFromLogin(user *api.LoginUser) Identity {
	role := user.Role
	if role != RoleAdmin {
		role = RoleUser
	}
	return Identity{
		ID:                 user.ID,
		Username:           user.Username,
		Email:              user.Username,
		DisplayName:        displayName(user.Username),
		Role:               role,
		SubscriptionStatus: user.SubscriptionStatus,
	}
}

// displayName derives a short name from an email-style username.
func displayName(username string) string {
	if at := strings.Index(username, "@"); at > 0 {
		return username[:at]
	}
	return username
}
