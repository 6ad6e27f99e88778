// Package config provides 12-factor configuration management for the hub.
//
// Configuration is loaded from environment variables with sensible defaults.
// Resolve expands home-relative paths and locates external binaries, and
// CheckDependencies reports the ones that are missing so startup can fail
// with an install hint instead of a half-working server.
//
// Configuration Sections:
//   - Server: control-plane port, bind host, connection bound
//   - Sessions: session port range, readiness polling, paste limit
//   - Paths: browsing root, install directory, CLI state directory
//   - Binaries: tmux, ttyd and claude locations
//   - Bridge: web terminal font size
//   - Logging: Log level and output format
//   - RateLimit: Per-IP rate limiting configuration
//
// Example Usage:
//
//	cfg := config.LoadOrDefault()
//	cfg.Resolve()
//	if missing := cfg.CheckDependencies(); len(missing) > 0 {
//	    log.Fatal(config.FormatMissing(missing))
//	}
//
// Environment Variables:
//   - CLAUDE_REMOTE_HUB_PORT, HOST, MAX_CONNECTIONS
//   - SESSION_BASE_PORT, SESSION_PORT_RANGE, READY_TIMEOUT, READY_INTERVAL, MAX_PASTE_BYTES
//   - CLAUDE_DEV_ROOT, CLAUDE_REMOTE_HUB_DIR, CLAUDE_STATE_DIR
//   - TMUX_BIN, TTYD_BIN, CLAUDE_BIN, CLAUDE_FONT_SIZE
//   - LOG_LEVEL, LOG_DEV
//   - RATE_LIMIT_RPS, RATE_LIMIT_BURST, RATE_LIMIT_ENABLED
package config
