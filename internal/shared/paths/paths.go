package paths

import (
	"os"
	"path/filepath"
	"strings"
)

// File names inside the installation directory
const (
	LogFile      = "hub.log"
	ErrorLogFile = "hub-error.log"
	CertFile     = "hub.crt"
	KeyFile      = "hub.key"
	IndexFile    = "ttyd-index.html"
	IconFile     = "icon_chub.png"
)

// Install is the layout of one installation directory.
type Install struct {
	Root string
}

// NewInstall returns the layout rooted at root.
func NewInstall(root string) Install {
	return Install{Root: root}
}

// Log returns the stdout log path
func (i Install) Log() string { return filepath.Join(i.Root, LogFile) }

// ErrorLog returns the error log path
func (i Install) ErrorLog() string { return filepath.Join(i.Root, ErrorLogFile) }

// Cert returns the TLS certificate path
func (i Install) Cert() string { return filepath.Join(i.Root, CertFile) }

// Key returns the TLS private key path
func (i Install) Key() string { return filepath.Join(i.Root, KeyFile) }

// Index returns the custom bridge page path
func (i Install) Index() string { return filepath.Join(i.Root, IndexFile) }

// Icon returns the icon path
func (i Install) Icon() string { return filepath.Join(i.Root, IconFile) }

// HasTLS reports whether both the certificate and key are present.
func (i Install) HasTLS() bool {
	return Exists(i.Cert()) && Exists(i.Key())
}

// Optional returns path if it exists, empty otherwise.
func Optional(path string) string {
	if Exists(path) {
		return path
	}
	return ""
}

// Exists reports whether path names an existing regular file.
func Exists(path string) bool {
	info, err := os.Stat(path)
	return err == nil && info.Mode().IsRegular()
}

// Expand replaces a leading ~ with the user's home directory.
func Expand(path string) string {
	if path != "~" && !strings.HasPrefix(path, "~/") {
		return path
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return path
	}
	return filepath.Join(home, strings.TrimPrefix(path, "~"))
}
