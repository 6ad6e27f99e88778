// Package utils holds the input validators applied at the HTTP boundary.
//
// Every value that ends up in an external command line (session names,
// key names, pids) is checked against a strict pattern or whitelist here
// before it reaches a supervisor.
package utils
