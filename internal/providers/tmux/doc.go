// Package tmux supervises the multiplexer targets that hold agent sessions.
//
// Every managed target is named with the "claude-" prefix; anything else on
// the tmux server is ignored. The session port is stored on the target as
// the @hub_port user option, so the port table can be rebuilt from tmux
// alone after a restart.
//
// Features:
//   - Idempotent create with mouse mode enabled
//   - Exact-match liveness checks and kills
//   - Listing with activity, window count and attach state
//   - Input relays: named keys, bracketed text paste, scrollback paging
package tmux
