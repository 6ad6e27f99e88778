// Package folders lists directories under a single browsing root.
//
// Every requested path is resolved through symlinks and must stay inside
// the root; anything that escapes it is rejected with ErrPathTraversal
// rather than silently clamped.
package folders
