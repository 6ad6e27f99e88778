// Package session is the orchestration core: it derives the live session
// list from the operating system and starts, stops and relays input to
// sessions.
//
// Nothing is cached between calls. Every read asks the multiplexer and the
// OS probe again, so the package holds no session table that could go stale
// after a crash, a manual tmux kill or a restart of the control plane.
//
// A session is a multiplexer target named "claude-<name>" plus a web
// terminal bridge listening on the session's port:
//
//	running   target present, port bound
//	degraded  target present, port not bound (bridge died)
//	starting  returned by Start when the bridge is not ready in time
//
// Session ports come from the ports package. The port in use is recorded on
// the target itself, so a port moved by collision probing survives restarts.
package session
