package config_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/oggyb/matchbox/internal/config"
)

func TestNew_Defaults(t *testing.T) {
	t.Setenv("DB_DRIVER", "")
	t.Setenv("DB_DSN", "")
	t.Setenv("PORT", "")
	t.Setenv("CORS_ORIGINS", "")

	cfg := config.New()

	assert.Equal(t, "mysql", cfg.DB.Driver)
	assert.Contains(t, cfg.DB.DSN, "@tcp(localhost:3306)/matchbox")
	assert.Equal(t, "3001", cfg.HTTP.Port)
	assert.Equal(t, []string{"http://localhost:3000", "http://127.0.0.1:3000"}, cfg.HTTP.CORSOrigins)
	assert.Equal(t, "RUB", cfg.Payment.Currency)
	assert.Equal(t, "local", cfg.Events.Backend)
	assert.Equal(t, 64, cfg.Events.Buffer)
}

func TestNew_PostgresDSN(t *testing.T) {
	t.Setenv("DB_DRIVER", "postgres")
	t.Setenv("DB_DSN", "")
	t.Setenv("DB_HOST", "db")
	t.Setenv("DB_PORT", "")

	cfg := config.New()

	assert.Contains(t, cfg.DB.DSN, "host=db port=5432")
}

func TestNew_Overrides(t *testing.T) {
	t.Setenv("CORS_ORIGINS", " https://a.example , ,https://b.example")
	t.Setenv("YOOMONEY_API_URL", "http://gateway.local/v3/")
	t.Setenv("YOOMONEY_TIMEOUT", "3s")
	t.Setenv("REDIS_DB", "not-a-number")
	t.Setenv("EVENTS_BUFFER", "256")

	cfg := config.New()

	assert.Equal(t, []string{"https://a.example", "https://b.example"}, cfg.HTTP.CORSOrigins)
	assert.Equal(t, "http://gateway.local/v3", cfg.Payment.APIURL)
	assert.Equal(t, 3*time.Second, cfg.Payment.Timeout)
	assert.Equal(t, 0, cfg.Redis.DB)
	assert.Equal(t, 256, cfg.Events.Buffer)
}
