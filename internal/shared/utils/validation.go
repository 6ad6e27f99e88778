package utils

import (
	"errors"
	"fmt"
	"regexp"
	"strconv"
	"strings"
	"unicode/utf8"
)

// Size limits
const (
	MaxSessionNameLength = 64
	DefaultMaxPasteBytes = 10000
)

// ErrTooLarge marks input rejected for size alone.
var ErrTooLarge = errors.New("input too large")

// SessionNamePattern allows alphanumerics, hyphens and underscores, starting
// with an alphanumeric. Dots and colons are excluded since tmux rewrites them.
var SessionNamePattern = regexp.MustCompile(`^[A-Za-z0-9][A-Za-z0-9_-]*$`)

var invalidNameChars = regexp.MustCompile(`[^A-Za-z0-9_-]+`)

// AllowedKeys is the whitelist of named keys that can be relayed.
var AllowedKeys = map[string]bool{
	"Escape": true, "Tab": true, "BTab": true, "Enter": true, "Space": true,
	"Up": true, "Down": true, "Left": true, "Right": true,
	"C-c": true, "C-v": true, "C-z": true, "C-d": true, "C-l": true,
	"C-a": true, "C-e": true, "C-r": true, "C-w": true, "C-u": true,
	"C-k": true, "C-b": true, "C-f": true, "C-n": true, "C-p": true,
}

// ValidateString validates a string field with length and content checks
func ValidateString(value, fieldName string, minLen, maxLen int, required bool) error {
	if required && value == "" {
		return fmt.Errorf("%s is required", fieldName)
	}
	if value == "" {
		return nil
	}

	length := utf8.RuneCountInString(value)
	if length < minLen {
		return fmt.Errorf("%s must be at least %d characters", fieldName, minLen)
	}
	if length > maxLen {
		return fmt.Errorf("%s must not exceed %d characters", fieldName, maxLen)
	}
	if strings.Contains(value, "\x00") {
		return fmt.Errorf("%s contains invalid characters", fieldName)
	}
	return nil
}

// ValidateSessionName validates a session name
func ValidateSessionName(name string) error {
	if err := ValidateString(name, "name", 1, MaxSessionNameLength, true); err != nil {
		return err
	}
	if !SessionNamePattern.MatchString(name) {
		return fmt.Errorf("name contains invalid characters (only alphanumeric, hyphens, and underscores allowed)")
	}
	return nil
}

// SanitizeSessionName turns an arbitrary label (a directory name, say) into a
// valid session name. It returns fallback when nothing usable remains.
func SanitizeSessionName(label, fallback string) string {
	name := invalidNameChars.ReplaceAllString(label, "-")
	name = strings.Trim(name, "-_")
	if len(name) > MaxSessionNameLength-4 {
		name = strings.TrimRight(name[:MaxSessionNameLength-4], "-_")
	}
	if name == "" {
		return fallback
	}
	return name
}

// ValidateKey checks a key name against the relay whitelist
func ValidateKey(key string) error {
	if key == "" {
		return fmt.Errorf("key is required")
	}
	if !AllowedKeys[key] {
		return fmt.Errorf("key %q is not allowed", key)
	}
	return nil
}

// ValidatePaste checks a text paste is non-empty and at most maxBytes long
func ValidatePaste(text string, maxBytes int) error {
	if text == "" {
		return fmt.Errorf("text is required")
	}
	if maxBytes <= 0 {
		maxBytes = DefaultMaxPasteBytes
	}
	if len(text) > maxBytes {
		return fmt.Errorf("%w: text is %d bytes, limit is %d", ErrTooLarge, len(text), maxBytes)
	}
	return nil
}

// ParseScrollDirection accepts "up" or "down" and reports whether it is up
func ParseScrollDirection(direction string) (bool, error) {
	switch direction {
	case "up":
		return true, nil
	case "down":
		return false, nil
	default:
		return false, fmt.Errorf("direction must be up or down, got %q", direction)
	}
}

// ParsePID parses a positive process id
func ParsePID(value string) (int, error) {
	pid, err := strconv.Atoi(strings.TrimSpace(value))
	if err != nil || pid <= 0 {
		return 0, fmt.Errorf("pid must be a positive integer, got %q", value)
	}
	return pid, nil
}
