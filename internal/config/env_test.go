package config

import (
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadEnvDefaults(t *testing.T) {
	env, err := LoadEnv()
	require.NoError(t, err)

	base := BaseEnvFromEnv(env)
	assert.Equal(t, "local", base.Env)
	assert.Equal(t, "8080", base.HTTPPort)
	assert.Equal(t, slog.LevelDebug, base.SlogLevel())

	st := StorageEnvFromEnv(env)
	assert.Equal(t, "local", st.Type)
	assert.Equal(t, ".ngc-tracker/exports", st.BaseDir)
}

func TestLoadEnvOverrides(t *testing.T) {
	t.Setenv("TRACKER_ENV", "prod")
	t.Setenv("TRACKER_HTTP_PORT", "9090")
	t.Setenv("TRACKER_LOG_LEVEL", "warn")
	t.Setenv("TRACKER_STORAGE_TYPE", "s3")
	t.Setenv("TRACKER_S3_BUCKET", "ngc-archives")

	env, err := LoadEnv()
	require.NoError(t, err)

	base := BaseEnvFromEnv(env)
	assert.Equal(t, "prod", base.Env)
	assert.Equal(t, "9090", base.HTTPPort)
	assert.Equal(t, slog.LevelWarn, base.SlogLevel())

	st := StorageEnvFromEnv(env)
	assert.Equal(t, "s3", st.Type)
	assert.Equal(t, "ngc-archives", st.S3Bucket)
}

func TestSlogLevelFallsBackToDebug(t *testing.T) {
	base := &BaseEnv{LogLevel: "nonsense"}
	assert.Equal(t, slog.LevelDebug, base.SlogLevel())

	var nilEnv *BaseEnv
	assert.Equal(t, slog.LevelDebug, nilEnv.SlogLevel())
}
