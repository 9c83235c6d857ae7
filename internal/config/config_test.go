package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestLoad_Defaults(t *testing.T) {
	for _, k := range []string{"PORT", "LOG_LEVEL", "LOG_FORMAT", "CLIENT_ORIGIN", "JWT_SECRET",
		"JWT_EXPIRES_HOURS", "SERVER_PASSWORD_HASH", "REQUIRE_TOKEN", "STRICT_FLEET",
		"SEND_QUEUE", "MSG_RATE", "MSG_BURST"} {
		t.Setenv(k, "")
	}
	c := Load()
	assert.Equal(t, ":5000", c.Addr())
	assert.Equal(t, "info", c.LogLevel)
	assert.Equal(t, "json", c.LogFormat)
	assert.Equal(t, "*", c.ClientOrigin)
	assert.Equal(t, 12*time.Hour, c.JWTTTL)
	assert.False(t, c.RequireToken)
	assert.False(t, c.StrictFleet)
	assert.Equal(t, 64, c.SendQueue)
	assert.Equal(t, 20.0, c.MsgRate)
	assert.Equal(t, 40, c.MsgBurst)
}

func TestLoad_Overrides(t *testing.T) {
	t.Setenv("PORT", "8080")
	t.Setenv("LOG_FORMAT", "Console")
	t.Setenv("DB_PATH", "")
	t.Setenv("JWT_EXPIRES_HOURS", "2")
	t.Setenv("REQUIRE_TOKEN", "true")
	t.Setenv("STRICT_FLEET", "1")
	t.Setenv("SEND_QUEUE", "-3")
	t.Setenv("MSG_RATE", "2.5")

	c := Load()
	assert.Equal(t, ":8080", c.Addr())
	assert.Equal(t, "console", c.LogFormat)
	assert.Empty(t, c.DBPath, "explicitly empty DB_PATH selects the memory store")
	assert.Equal(t, 2*time.Hour, c.JWTTTL)
	assert.True(t, c.RequireToken)
	assert.True(t, c.StrictFleet)
	assert.Equal(t, 64, c.SendQueue, "non-positive values fall back")
	assert.Equal(t, 2.5, c.MsgRate)
}
