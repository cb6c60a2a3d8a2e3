// ABOUTME: Demo-mode identity construction for offline development
// ABOUTME: The "admin in the email means admin" heuristic is confined to this file

package session

import (
	"context"
	"fmt"
	"strings"

	"github.com/google/uuid"
)

// UseDemoIdentity installs a synthetic identity without contacting any
// backend. Only available in offline mode; a production session must never
// infer a role from the identifier string, so the substring heuristic below
// is unreachable when a real backend is configured.
func (s *Store) UseDemoIdentity(ctx context.Context, email string) error {
	if !s.offline {
		return ErrNotOffline
	}

	role := RoleUser
	if strings.Contains(email, "admin") {
		role = RoleAdmin
	}

	identity := Identity{
		ID:          uuid.NewString(),
		Username:    email,
		Email:       email,
		DisplayName: displayName(email),
		Role:        role,
	}

	if err := s.adopt(ctx, identity); err != nil {
		return fmt.Errorf("installing demo identity: %w", err)
	}

	s.notifier.Success("Demo session", "Signed in locally as "+identity.DisplayName+".")
	return nil
}
