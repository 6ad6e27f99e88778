// Package capture finds CLI processes started outside the hub and forks
// them into managed sessions.
//
// Discovery excludes every process that descends from a pane of a managed
// target, and every CLI process whose ancestor is itself a candidate (tool
// subprocesses of a running CLI). Capture re-runs discovery inside the
// request and fails closed when the pid is no longer a candidate, so it
// never forks against a reused pid. The source process is left untouched:
// the new session resumes the same conversation in fork mode.
package capture
