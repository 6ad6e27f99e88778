package config

import (
	"fmt"
	"os/exec"
	"runtime"
	"strings"
)

// Missing describes a required binary that could not be found.
type Missing struct {
	Name string
	Path string
	Hint string
}

var installHints = map[string]map[string]string{
	"tmux": {
		"darwin": "brew install tmux",
		"linux":  "sudo apt install tmux  # or: sudo dnf install tmux / sudo pacman -S tmux",
	},
	"ttyd": {
		"darwin": "brew install ttyd",
		"linux":  "sudo snap install ttyd --classic  # or build from source: https://github.com/tsl0922/ttyd",
	},
}

// InstallHint returns the platform-specific install instruction for name.
func InstallHint(name, goos string) string {
	platform := "linux"
	if goos == "darwin" {
		platform = "darwin"
	}
	if hint, ok := installHints[name][platform]; ok {
		return hint
	}
	return fmt.Sprintf("Install %s and ensure it is on your PATH", name)
}

// CheckDependencies reports the required binaries that are not executable.
// Call it after Resolve.
func (c *Config) CheckDependencies() []Missing {
	var missing []Missing
	for _, dep := range []struct{ name, path string }{
		{"tmux", c.Binaries.Tmux},
		{"ttyd", c.Binaries.Ttyd},
	} {
		if _, err := exec.LookPath(dep.path); err != nil {
			missing = append(missing, Missing{
				Name: dep.name,
				Path: dep.path,
				Hint: InstallHint(dep.name, runtime.GOOS),
			})
		}
	}
	return missing
}

// FormatMissing renders a startup diagnostic for missing binaries.
func FormatMissing(missing []Missing) string {
	var sb strings.Builder
	sb.WriteString("missing required dependencies:\n")
	for _, m := range missing {
		fmt.Fprintf(&sb, "  %s (looked for %q)\n    install: %s\n", m.Name, m.Path, m.Hint)
	}
	return sb.String()
}
