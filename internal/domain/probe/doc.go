// Package probe answers questions about the operating system: is a port
// bound, which processes run a given binary, and where a process is working.
//
// One backend per platform is selected once by New:
//   - linux: process table and working directories from procfs
//   - darwin and other unix: ps for the process table, lsof for working directories
//
// Port checks are a chain of strategies tried in order (an OS tool, a second
// OS tool, a raw socket bind test); the first strategy that answers wins and
// each strategy sits behind a circuit breaker so a missing tool is skipped
// cheaply. Nothing is cached: every call is a fresh OS round-trip.
package probe
