package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestParseEnv(t *testing.T) {
	t.Setenv("MONGO_URI", "mongodb://localhost:27017")
	t.Setenv("ADMIN_COLLECTION_KEYSTRING_FOR_AES_WHICH_HAS_TO_BE_32_BYTES", "a")
	t.Setenv("ADMIN_IV_STRING_16_BYTES", "b")
	t.Setenv("SECRETS_KEYSTRING", "c")
	t.Setenv("SECRETS_IV_STRING", "d")
	t.Setenv("SESSION_TTL", "30m")

	c := &Config{}
	c.LoadDefaults()
	parseEnv(c)

	assert.Equal(t, "mongodb://localhost:27017", c.MongoURI)
	assert.Equal(t, "a", c.SecretsKey)
	assert.Equal(t, "b", c.SecretsIV)
	assert.Equal(t, "c", c.AdminTokensKey)
	assert.Equal(t, "d", c.AdminTokensIV)
	assert.Equal(t, 30*time.Minute, c.SessionTTL)
	// unset variables keep defaults
	assert.Equal(t, ":3000", c.TokenAPIAddr)
}

func TestParseEnv_BadDurationPanics(t *testing.T) {
	t.Setenv("HEALTHCHECK_INTERVAL", "often")

	assert.Panics(t, func() { parseEnv(&Config{}) })
}
