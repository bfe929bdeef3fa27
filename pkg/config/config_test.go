package config

import (
	"testing"
	"time"

	"github.com/spf13/viper"
	"github.com/stretchr/testify/assert"
)

func TestFromViperDefaults(t *testing.T) {
	v := viper.New()
	setDefaults(v)

	cfg := fromViper(v)

	assert.Equal(t, EnvDevelopment, cfg.Env)
	assert.Equal(t, 8080, cfg.Port)
	assert.Equal(t, "/api/v1", cfg.APIPrefix)
	assert.Equal(t, "studypath", cfg.Database.Name)
	assert.Equal(t, 24*time.Hour, cfg.JWT.Expiration)
	assert.Equal(t, "gemini-1.5-flash", cfg.GenAI.DefaultModel)
	assert.Equal(t, 30*time.Second, cfg.GenAI.Timeout)
	assert.Equal(t, 1024, cfg.GenAI.MaxOutputTokens)
	assert.Equal(t, 30*time.Minute, cfg.Imports.DraftTTL)
	assert.True(t, cfg.Metrics.Enabled)
	assert.Nil(t, cfg.CORS.AllowedOrigins)
}

func TestFromViperOverrides(t *testing.T) {
	v := viper.New()
	setDefaults(v)
	v.Set("GENAI_ENDPOINT", "http://localhost:9999/")
	v.Set("GENAI_TIMEOUT", "not-a-duration")
	v.Set("ALLOWED_ORIGINS", "http://a.test, ,http://b.test")
	v.Set("IMPORT_DRAFT_TTL", "5m")

	cfg := fromViper(v)

	assert.Equal(t, "http://localhost:9999", cfg.GenAI.Endpoint)
	assert.Equal(t, 30*time.Second, cfg.GenAI.Timeout)
	assert.Equal(t, []string{"http://a.test", "http://b.test"}, cfg.CORS.AllowedOrigins)
	assert.Equal(t, 5*time.Minute, cfg.Imports.DraftTTL)
}
