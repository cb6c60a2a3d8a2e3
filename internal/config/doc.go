// ABOUTME: Package documentation for botino client configuration
// ABOUTME: Describes the YAML format, environment expansion, and override order

// Package config loads the botino client configuration.
//
// # Overview
//
// Configuration lives in a YAML file, by default at
// $XDG_CONFIG_HOME/botino/config.yaml. ${VAR_NAME} patterns in the raw
// file are expanded from the environment before parsing, so secrets and
// host-specific values can stay out of the file itself.
//
// # Format
//
//	api:
//	  base_url: https://api.botino.example
//	  timeout: 30s
//	offline: false
//	state:
//	  path: /home/user/.config/botino/state.db
//	logging:
//	  level: info
//	  format: text
//
// # Override order
//
// File values are applied first, then defaults for anything unset, then
// environment overrides win:
//
//   - BOTINO_API_URL     overrides api.base_url
//   - BOTINO_STATE_PATH  overrides state.path
//   - BOTINO_OFFLINE     overrides offline ("true" or "1")
//
// # Offline mode
//
// When offline is set, the client never contacts the backend for session
// calls: bootstrap skips the CSRF liveness check and login/signup become
// local no-ops. Intended for UI development against no backend.
package config
