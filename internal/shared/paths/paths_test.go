package paths

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestInstallLayout(t *testing.T) {
	i := NewInstall("/opt/hub")
	assert.Equal(t, "/opt/hub/hub.log", i.Log())
	assert.Equal(t, "/opt/hub/hub-error.log", i.ErrorLog())
	assert.Equal(t, "/opt/hub/hub.crt", i.Cert())
	assert.Equal(t, "/opt/hub/hub.key", i.Key())
	assert.Equal(t, "/opt/hub/ttyd-index.html", i.Index())
	assert.Equal(t, "/opt/hub/icon_chub.png", i.Icon())
}

func TestHasTLS(t *testing.T) {
	dir := t.TempDir()
	i := NewInstall(dir)
	assert.False(t, i.HasTLS())

	require.NoError(t, os.WriteFile(i.Cert(), []byte("cert"), 0o600))
	assert.False(t, i.HasTLS())
	assert.Equal(t, i.Cert(), Optional(i.Cert()))
	assert.Empty(t, Optional(i.Key()))

	require.NoError(t, os.WriteFile(i.Key(), []byte("key"), 0o600))
	assert.True(t, i.HasTLS())
}

func TestExistsRejectsDirectories(t *testing.T) {
	dir := t.TempDir()
	assert.False(t, Exists(dir))
	assert.False(t, Exists(filepath.Join(dir, "missing")))
}

func TestExpand(t *testing.T) {
	home, err := os.UserHomeDir()
	require.NoError(t, err)

	assert.Equal(t, home, Expand("~"))
	assert.Equal(t, filepath.Join(home, "Projects"), Expand("~/Projects"))
	assert.Equal(t, "/abs/path", Expand("/abs/path"))
	assert.Equal(t, "~user/x", Expand("~user/x"))
}
