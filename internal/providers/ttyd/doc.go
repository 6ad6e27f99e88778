// Package ttyd supervises the web terminal bridges that expose a
// multiplexer target on a TCP port.
//
// Bridges are spawned detached so they survive a control-plane restart.
// Liveness is judged by whether the session port is bound, and stopping a
// bridge signals only ttyd processes listening on that port.
package ttyd
