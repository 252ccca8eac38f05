package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefault(t *testing.T) {
	c := Default()

	assert.Equal(t, "8080", c.ApiPort)
	assert.Equal(t, "sqlite3", c.Database)
	assert.Equal(t, 24*60, c.Security.AccessTokenTTLMinutes)
	assert.Equal(t, 30, c.Security.RefreshCodeMaxValid)
	assert.Equal(t, "EUR", c.Payments.DefaultCurrency)
	assert.Equal(t, int64(1000), c.Fantasy.Budget)
	assert.Equal(t, 11, c.Fantasy.SquadSize)
	assert.Equal(t, "notifications", c.Amqp.Exchange)
	assert.Equal(t, "@every 10m", c.Jobs.ExpireSubscriptionsSchedule)
	assert.True(t, c.Metrics.Enabled)
}

func TestGetReadsFileAndEnv(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.json")
	body := `{
		"env": "prod",
		"api_port": "9000",
		"payments": {"default_currency": "gbp"},
		"fantasy": {"squad_size": 0}
	}`
	require.NoError(t, os.WriteFile(path, []byte(body), 0o600))

	t.Setenv("FANHUB_SECURITY_JWT_SECRET", "from-env")
	t.Setenv("FANHUB_API_PORT", "9100")

	c, err := Get(path)
	require.NoError(t, err)

	assert.Equal(t, "prod", c.Env)
	assert.Equal(t, "9100", c.ApiPort, "env overrides the file")
	assert.Equal(t, "from-env", c.Security.JwtSecret)
	assert.Equal(t, "GBP", c.Payments.DefaultCurrency)
	assert.Equal(t, 11, c.Fantasy.SquadSize, "zero values fall back to defaults")
}

func TestGetMissingFile(t *testing.T) {
	_, err := Get(filepath.Join(t.TempDir(), "nope.json"))
	assert.Error(t, err)
}
