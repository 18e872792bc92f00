package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadDefaults(t *testing.T) {
	for _, k := range []string{"PORT", "PROJECTS_DIR", "MAX_UPLOAD_MB", "ANALYSIS_ENGINE_URL",
		"ANALYSIS_ENGINE_TIMEOUT", "REDIS_URL", "CORS_ALLOWED_ORIGINS", "STATS_SCHEDULE",
		"SHUTDOWN_TIMEOUT", "LOG_LEVEL", "LOG_FORMAT", "APP_ENV", "APP_VERSION"} {
		t.Setenv(k, "")
	}

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, "8080", cfg.Server.Port)
	assert.Equal(t, []string{"*"}, cfg.Server.CORSAllowedOrigins)
	assert.Equal(t, 10*time.Second, cfg.Server.ShutdownTimeout)
	assert.Equal(t, "data/projects", cfg.Projects.Dir)
	assert.Equal(t, int64(512<<20), cfg.Projects.MaxUploadBytes())
	assert.Empty(t, cfg.Analysis.EngineURL)
	assert.Zero(t, cfg.Analysis.EngineTimeout)
	assert.Equal(t, "@every 1m", cfg.Analysis.StatsSchedule)
	assert.Equal(t, "json", cfg.App.LogFormat)
}

func TestLoadOverrides(t *testing.T) {
	t.Setenv("PORT", "9000")
	t.Setenv("CORS_ALLOWED_ORIGINS", "http://a.test, http://b.test,")
	t.Setenv("ANALYSIS_ENGINE_TIMEOUT", "90s")
	t.Setenv("MAX_UPLOAD_MB", "not-a-number")
	t.Setenv("LOG_FORMAT", "console")

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, "9000", cfg.Server.Port)
	assert.Equal(t, []string{"http://a.test", "http://b.test"}, cfg.Server.CORSAllowedOrigins)
	assert.Equal(t, 90*time.Second, cfg.Analysis.EngineTimeout)
	assert.Equal(t, 512, cfg.Projects.MaxUploadMB)
	assert.Equal(t, "console", cfg.App.LogFormat)
}

func TestValidate(t *testing.T) {
	t.Setenv("LOG_FORMAT", "xml")
	_, err := Load()
	assert.Error(t, err)

	t.Setenv("LOG_FORMAT", "json")
	t.Setenv("STATS_SCHEDULE", "every now and then")
	_, err = Load()
	assert.Error(t, err)
}

func TestValidateUploadLimit(t *testing.T) {
	t.Setenv("LOG_FORMAT", "json")
	t.Setenv("STATS_SCHEDULE", "")

	t.Setenv("MAX_UPLOAD_MB", "9223372036854775807")
	_, err := Load()
	assert.ErrorContains(t, err, "MAX_UPLOAD_MB must not exceed")

	t.Setenv("MAX_UPLOAD_MB", "65536")
	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, int64(64<<30), cfg.Projects.MaxUploadBytes())
}

func TestMaxUploadBytesNeverOverflows(t *testing.T) {
	p := ProjectsConfig{MaxUploadMB: 1 << 62}
	assert.Equal(t, int64(MaxUploadMBLimit)<<20, p.MaxUploadBytes())
	assert.Positive(t, p.MaxUploadBytes())
}
