// Package http implements the hub's HTTP control plane.
//
// Handlers are stateless: every request re-validates its input and
// re-reads session state from the operating system through the domain
// services. Errors are mapped to status codes with errors.Is and answered
// as {"success": false, "error": "..."}.
package http
