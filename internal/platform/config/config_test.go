package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFromEnvDefaults(t *testing.T) {
	cfg, err := FromEnv()
	require.NoError(t, err)

	assert.Equal(t, ":8080", cfg.Server.Addr)
	assert.Equal(t, "json", cfg.Log.Format)
	assert.Equal(t, 30*time.Second, cfg.Extraction.OCRTimeout)
	assert.Equal(t, 4, cfg.Batch.Concurrency)
	assert.Equal(t, "onboard.decisions", cfg.Kafka.Topic)
	assert.Empty(t, cfg.Kafka.Brokers)
	assert.False(t, cfg.AuthEnabled())
}

func TestFromEnvOverrides(t *testing.T) {
	t.Setenv("ONBOARD_ADDR", ":9090")
	t.Setenv("ONBOARD_JWT_SIGNING_KEY", "secret")
	t.Setenv("ONBOARD_KAFKA_BROKERS", "k1:9092,k2:9092")
	t.Setenv("ONBOARD_TESSERACT_PATH", "/usr/bin/tesseract")
	t.Setenv("ONBOARD_BATCH_RATE", "2.5")
	t.Setenv("ONBOARD_REDIS_DECISION_TTL", "1h")

	cfg, err := FromEnv()
	require.NoError(t, err)

	assert.Equal(t, ":9090", cfg.Server.Addr)
	assert.True(t, cfg.AuthEnabled())
	assert.Equal(t, []string{"k1:9092", "k2:9092"}, cfg.Kafka.Brokers)
	assert.Equal(t, "/usr/bin/tesseract", cfg.Extraction.TesseractPath)
	assert.InDelta(t, 2.5, cfg.Batch.Rate, 1e-9)
	assert.Equal(t, time.Hour, cfg.Redis.DecisionTTL)
}

func TestFromEnvRejectsInvalidValues(t *testing.T) {
	t.Run("unparseable duration", func(t *testing.T) {
		t.Setenv("ONBOARD_OCR_TIMEOUT", "soon")
		_, err := FromEnv()
		assert.ErrorContains(t, err, "parse env")
	})

	t.Run("bad log format and concurrency", func(t *testing.T) {
		t.Setenv("ONBOARD_LOG_FORMAT", "xml")
		t.Setenv("ONBOARD_BATCH_CONCURRENCY", "0")
		_, err := FromEnv()
		require.Error(t, err)
		assert.ErrorContains(t, err, "ONBOARD_LOG_FORMAT")
		assert.ErrorContains(t, err, "ONBOARD_BATCH_CONCURRENCY")
	})
}
