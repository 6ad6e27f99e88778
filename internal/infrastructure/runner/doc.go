// Package runner abstracts external command execution.
//
// Every interaction with the multiplexer, the bridge, and the platform
// introspection tools goes through a Runner so that components can be tested
// with recorded fakes instead of real binaries.
//
// Two execution shapes exist:
//   - Run / RunInput: short-lived commands whose output is captured
//   - Spawn: long-lived supervised processes detached into their own session
package runner
