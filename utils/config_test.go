package utils

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewConfig(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yml")
	require.NoError(t, os.WriteFile(path, []byte(`
server:
  port: "9000"
sqlite:
  filename: "catalog"
storage:
  annotations_dir: "/tmp/annotations"
  images_dir: "/tmp/images"
`), 0o644))

	config, err := NewConfig(path)
	require.NoError(t, err)
	assert.Equal(t, "9000", config.Server.Port)
	assert.Equal(t, "catalog", config.Sqlite.Filename)
	assert.Equal(t, "/tmp/annotations", config.Storage.AnnotationsDir)
	assert.Equal(t, "/tmp/images", config.Storage.ImagesDir)
}

func TestNewConfigMissingFile(t *testing.T) {
	_, err := NewConfig("/does/not/exist.yml")
	assert.Error(t, err)
}

func TestValidateConfigPath(t *testing.T) {
	assert.Error(t, ValidateConfigPath(t.TempDir()))

	path := filepath.Join(t.TempDir(), "config.yml")
	require.NoError(t, os.WriteFile(path, []byte("server:\n  port: \"1\"\n"), 0o644))
	assert.NoError(t, ValidateConfigPath(path))
}
