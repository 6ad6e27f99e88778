package utils

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestValidateSessionName(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		wantErr bool
	}{
		{"simple", "alpha", false},
		{"hyphens and underscores", "my-project_2", false},
		{"leading digit", "2fast", false},
		{"empty", "", true},
		{"leading hyphen", "-alpha", true},
		{"dot", "a.b", true},
		{"colon", "a:b", true},
		{"space", "my project", true},
		{"shell metachar", "a;rm", true},
		{"too long", strings.Repeat("a", 65), true},
		{"max length", strings.Repeat("a", 64), false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidateSessionName(tt.input)
			if tt.wantErr {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestSanitizeSessionName(t *testing.T) {
	assert.Equal(t, "my-project", SanitizeSessionName("my project", "session"))
	assert.Equal(t, "api-v2", SanitizeSessionName("api.v2", "session"))
	assert.Equal(t, "session", SanitizeSessionName("...", "session"))
	assert.Equal(t, "session", SanitizeSessionName("", "session"))

	long := SanitizeSessionName(strings.Repeat("x", 100), "session")
	assert.Len(t, long, MaxSessionNameLength-4)
	assert.NoError(t, ValidateSessionName(long+"-12"))
}

func TestValidateKey(t *testing.T) {
	for key := range AllowedKeys {
		assert.NoError(t, ValidateKey(key), key)
	}
	assert.Error(t, ValidateKey(""))
	assert.Error(t, ValidateKey("F1"))
	assert.Error(t, ValidateKey("C-c; rm -rf"))
	assert.Error(t, ValidateKey("enter"))
}

func TestValidatePaste(t *testing.T) {
	assert.NoError(t, ValidatePaste("ls -la", 0))
	assert.NoError(t, ValidatePaste(strings.Repeat("a", 10000), 10000))
	assert.Error(t, ValidatePaste("", 10000))

	err := ValidatePaste(strings.Repeat("a", 10001), 10000)
	assert.ErrorIs(t, err, ErrTooLarge)
}

func TestParseScrollDirection(t *testing.T) {
	up, err := ParseScrollDirection("up")
	assert.NoError(t, err)
	assert.True(t, up)

	up, err = ParseScrollDirection("down")
	assert.NoError(t, err)
	assert.False(t, up)

	_, err = ParseScrollDirection("sideways")
	assert.Error(t, err)
}

func TestParsePID(t *testing.T) {
	pid, err := ParsePID("4242")
	assert.NoError(t, err)
	assert.Equal(t, 4242, pid)

	for _, bad := range []string{"", "0", "-1", "abc", "12x"} {
		_, err := ParsePID(bad)
		assert.Error(t, err, bad)
	}
}
