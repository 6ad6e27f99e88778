// Package main is the entry point for Claude Remote Hub.
//
// The hub is an HTTP control plane that keeps "claude" CLI sessions alive
// inside tmux and exposes each one in the browser through its own ttyd
// bridge. It holds no session table of its own: every request re-derives
// state from tmux and the operating system.
//
// Configuration:
//   - Environment variables (see internal/infrastructure/config)
//   - CLI flags (override env vars)
//
// Usage:
//
//	# Run in the foreground
//	./server start
//
//	# Development mode (colored logs, debug level)
//	./server -dev
//
//	# Stop a running hub, or inspect it
//	./server stop
//	./server status
//
// Signals:
//   - SIGINT, SIGTERM: Graceful shutdown (bridges stop, tmux sessions stay)
package main
