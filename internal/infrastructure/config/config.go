package config

import (
	"fmt"
	"os"
	"os/exec"
	"time"

	"github.com/kelseyhightower/envconfig"

	"github.com/GriffinCanCode/remotehub/internal/shared/paths"
)

// Config holds all application configuration.
type Config struct {
	Server    ServerConfig
	Sessions  SessionConfig
	Paths     PathConfig
	Binaries  BinaryConfig
	Bridge    BridgeConfig
	Logging   LogConfig
	RateLimit RateLimitConfig
}

// ServerConfig holds HTTP server configuration.
type ServerConfig struct {
	Port           int    `envconfig:"CLAUDE_REMOTE_HUB_PORT" default:"7680"`
	Host           string `envconfig:"HOST" default:"0.0.0.0"`
	MaxConnections int    `envconfig:"MAX_CONNECTIONS" default:"64"`
}

// SessionConfig holds session port and readiness configuration.
type SessionConfig struct {
	BasePort      int           `envconfig:"SESSION_BASE_PORT" default:"7700"`
	PortRange     int           `envconfig:"SESSION_PORT_RANGE" default:"99"`
	ReadyTimeout  time.Duration `envconfig:"READY_TIMEOUT" default:"3s"`
	ReadyInterval time.Duration `envconfig:"READY_INTERVAL" default:"200ms"`
	MaxPasteBytes int           `envconfig:"MAX_PASTE_BYTES" default:"10000"`
}

// PathConfig holds filesystem locations. A leading ~ is expanded by Resolve.
type PathConfig struct {
	DevRoot    string `envconfig:"CLAUDE_DEV_ROOT" default:"~/Projects"`
	InstallDir string `envconfig:"CLAUDE_REMOTE_HUB_DIR" default:"~/.claude-remote-hub"`
	StateDir   string `envconfig:"CLAUDE_STATE_DIR" default:"~/.claude"`
}

// BinaryConfig holds external binary paths. Empty values are looked up on
// PATH by Resolve.
type BinaryConfig struct {
	Tmux   string `envconfig:"TMUX_BIN"`
	Ttyd   string `envconfig:"TTYD_BIN"`
	Claude string `envconfig:"CLAUDE_BIN"`
}

// BridgeConfig holds web terminal settings.
type BridgeConfig struct {
	FontSize int `envconfig:"CLAUDE_FONT_SIZE" default:"11"`
}

// LogConfig holds logging configuration.
type LogConfig struct {
	Level       string `envconfig:"LOG_LEVEL" default:"info"`
	Development bool   `envconfig:"LOG_DEV" default:"false"`
}

// RateLimitConfig holds rate limiting configuration.
type RateLimitConfig struct {
	RequestsPerSecond int  `envconfig:"RATE_LIMIT_RPS" default:"20"`
	Burst             int  `envconfig:"RATE_LIMIT_BURST" default:"40"`
	Enabled           bool `envconfig:"RATE_LIMIT_ENABLED" default:"true"`
}

// Load loads configuration from environment variables.
func Load() (*Config, error) {
	var cfg Config
	if err := envconfig.Process("", &cfg); err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// LoadOrDefault loads configuration from environment or returns default.
func LoadOrDefault() *Config {
	cfg, err := Load()
	if err != nil {
		return Default()
	}
	return cfg
}

// Default returns default configuration.
func Default() *Config {
	return &Config{
		Server: ServerConfig{
			Port:           7680,
			Host:           "0.0.0.0",
			MaxConnections: 64,
		},
		Sessions: SessionConfig{
			BasePort:      7700,
			PortRange:     99,
			ReadyTimeout:  3 * time.Second,
			ReadyInterval: 200 * time.Millisecond,
			MaxPasteBytes: 10000,
		},
		Paths: PathConfig{
			DevRoot:    "~/Projects",
			InstallDir: "~/.claude-remote-hub",
			StateDir:   "~/.claude",
		},
		Bridge: BridgeConfig{
			FontSize: 11,
		},
		Logging: LogConfig{
			Level:       "info",
			Development: false,
		},
		RateLimit: RateLimitConfig{
			RequestsPerSecond: 20,
			Burst:             40,
			Enabled:           true,
		},
	}
}

// Validate checks value ranges that envconfig cannot express.
func (c *Config) Validate() error {
	if c.Server.Port <= 0 || c.Server.Port > 65535 {
		return fmt.Errorf("invalid control-plane port %d", c.Server.Port)
	}
	if c.Sessions.PortRange <= 0 || c.Sessions.BasePort <= 0 || c.Sessions.BasePort+c.Sessions.PortRange-1 > 65535 {
		return fmt.Errorf("invalid session port range %d+%d", c.Sessions.BasePort, c.Sessions.PortRange)
	}
	lo, hi := c.Sessions.BasePort, c.Sessions.BasePort+c.Sessions.PortRange-1
	if c.Server.Port >= lo && c.Server.Port <= hi {
		return fmt.Errorf("control-plane port %d overlaps the session range %d-%d", c.Server.Port, lo, hi)
	}
	if c.Server.MaxConnections <= 0 {
		return fmt.Errorf("MAX_CONNECTIONS must be positive, got %d", c.Server.MaxConnections)
	}
	return nil
}

// Resolve expands ~ in paths, falls back to the home directory when the
// browsing root does not exist, and looks up unset binaries on PATH.
func (c *Config) Resolve() {
	c.Paths.DevRoot = paths.Expand(c.Paths.DevRoot)
	c.Paths.InstallDir = paths.Expand(c.Paths.InstallDir)
	c.Paths.StateDir = paths.Expand(c.Paths.StateDir)

	if info, err := os.Stat(c.Paths.DevRoot); err != nil || !info.IsDir() {
		if home, err := os.UserHomeDir(); err == nil {
			c.Paths.DevRoot = home
		}
	}

	c.Binaries.Tmux = findBin(c.Binaries.Tmux, "tmux")
	c.Binaries.Ttyd = findBin(c.Binaries.Ttyd, "ttyd")
	c.Binaries.Claude = findBin(c.Binaries.Claude, "claude")
}

// Install returns the installation directory layout.
func (c *Config) Install() paths.Install {
	return paths.NewInstall(c.Paths.InstallDir)
}

// findBin returns configured when set, else the PATH location of name,
// else name itself.
func findBin(configured, name string) string {
	if configured != "" {
		return paths.Expand(configured)
	}
	if p, err := exec.LookPath(name); err == nil {
		return p
	}
	return name
}
