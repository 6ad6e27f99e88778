// Package ports maps session names to bridge ports.
//
// The home port of a name is a pure function of the name: the md5 digest read
// as a big-endian integer, reduced modulo the range size, offset by the base
// port. The same name yields the same port across control-plane restarts, so
// sessions are rediscovered without any stored table.
//
// Distinct names may share a home port. Assign resolves that by linear probing
// against a reverse port->name table that the caller derives from live
// multiplexer targets at allocation time; nothing is remembered in process.
package ports
