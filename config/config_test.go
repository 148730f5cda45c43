package config

import (
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
)

func TestGetEnvFallback(t *testing.T) {
	t.Setenv("SAAS_TEST_EMPTY", "")
	assert.Equal(t, "fallback", getEnv("SAAS_TEST_EMPTY", "fallback"))
	assert.Equal(t, "fallback", getEnv("SAAS_TEST_UNSET_KEY", "fallback"))

	t.Setenv("SAAS_TEST_SET", "value")
	assert.Equal(t, "value", getEnv("SAAS_TEST_SET", "fallback"))
}

func TestGetEnvFloat(t *testing.T) {
	t.Setenv("SAAS_TEST_RATE", "2.5")
	assert.Equal(t, 2.5, getEnvFloat("SAAS_TEST_RATE", 1))

	t.Setenv("SAAS_TEST_RATE", "nope")
	assert.Equal(t, 1.0, getEnvFloat("SAAS_TEST_RATE", 1))

	t.Setenv("SAAS_TEST_RATE", "-3")
	assert.Equal(t, 1.0, getEnvFloat("SAAS_TEST_RATE", 1))
}

func TestNewLoggerLevel(t *testing.T) {
	logger := NewLogger("debug", "json")
	assert.Equal(t, zerolog.DebugLevel, logger.GetLevel())

	logger = NewLogger("bogus", "console")
	assert.Equal(t, zerolog.InfoLevel, logger.GetLevel())
}

func TestIsProduction(t *testing.T) {
	APP_ENV = "Production"
	assert.True(t, IsProduction())
	APP_ENV = "development"
	assert.False(t, IsProduction())
}
