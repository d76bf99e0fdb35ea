package main

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadConfigFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yml")
	content := `
is_production: true
log_level: warn
log_file: logs/librarydesk.log
server:
    host: 127.0.0.1
    port: "8080"
    read_timeout: 5s
store:
    filepath: data/library.json
trail:
    enable: true
    bucket_name: circulation.events
`
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))

	config, err := LoadConfigFile(path)
	require.NoError(t, err)
	assert.True(t, config.IsProduction)
	assert.Equal(t, "127.0.0.1", config.Server.Host)
	assert.Equal(t, "8080", config.Server.Port)
	assert.Equal(t, 5*time.Second, config.Server.ReadTimeout)
	assert.Equal(t, "data/library.json", config.Store.FilePath)
	assert.True(t, config.Trail.Enable)
	assert.Equal(t, "circulation.events", config.Trail.BucketName)
}

func TestLoadConfigFile_Missing(t *testing.T) {
	_, err := LoadConfigFile(filepath.Join(t.TempDir(), "absent.yml"))
	assert.Error(t, err)
}

func TestLoadConfigEnvs(t *testing.T) {
	t.Setenv("LDK_SERVER_HOST", "0.0.0.0")
	t.Setenv("LDK_STORE_FILE_PATH", "/tmp/library.json")
	t.Setenv("LDK_TRAIL_ENABLE", "true")

	config := &Config{}
	require.NoError(t, LoadConfigEnvs("LDK", config))
	assert.Equal(t, "0.0.0.0", config.Server.Host)
	assert.Equal(t, "/tmp/library.json", config.Store.FilePath)
	assert.True(t, config.Trail.Enable)
}

func TestInitConfig_Defaults(t *testing.T) {
	config := &Config{
		Server: ServerConfig{Host: "127.0.0.1", Port: "8080"},
		Trail:  TrailConfig{Enable: true},
	}
	require.NoError(t, InitConfig(config, "abc123", "v1.0.0", "2023-07-02"))

	assert.Equal(t, "abc123", config.GitCommit)
	assert.Equal(t, "v1.0.0", config.GitTag)
	assert.Equal(t, "library.json", config.Store.FilePath)
	assert.Equal(t, "circulation.trail.db", config.Trail.FilePath)
	assert.Equal(t, "circulation.events", config.Trail.BucketName)
	assert.Equal(t, 5*time.Second, config.Trail.Timeout)
}

func TestInitConfig_MissingServerAddress(t *testing.T) {
	err := InitConfig(&Config{}, "", "", "")
	assert.Error(t, err)
}
