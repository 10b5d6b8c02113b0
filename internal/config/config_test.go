package config_test

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/lucasmqar/vercflow-sub003/internal/config"
)

func TestLoadDefaults(t *testing.T) {
	cfg, err := config.Load("")
	require.NoError(t, err)

	require.Equal(t, "0.0.0.0", cfg.Server.Host)
	require.Equal(t, 8080, cfg.Server.Port)
	require.Equal(t, "vercflow.db", cfg.Database.Path)
	require.False(t, cfg.Notifier.Enabled)
	require.False(t, cfg.Escalation.Enabled)
	require.Equal(t, 48*time.Hour, cfg.Escalation.MaxAge)
	require.Equal(t, "system", cfg.Escalation.ActorID)
}

func TestLoadFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	content := `
server:
  port: 9090
database:
  path: /tmp/test.db
escalation:
  enabled: true
  schedule: "0 * * * *"
  max_age: 12h
  reason: overdue
notifier:
  enabled: true
  brokers:
    - localhost:9092
  topic: transitions
`
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))

	cfg, err := config.Load(path)
	require.NoError(t, err)

	require.Equal(t, 9090, cfg.Server.Port)
	require.Equal(t, "/tmp/test.db", cfg.Database.Path)
	require.True(t, cfg.Escalation.Enabled)
	require.Equal(t, "0 * * * *", cfg.Escalation.Schedule)
	require.Equal(t, 12*time.Hour, cfg.Escalation.MaxAge)
	require.Equal(t, "overdue", cfg.Escalation.Reason)
	require.Equal(t, []string{"localhost:9092"}, cfg.Notifier.Brokers)
	require.Equal(t, "transitions", cfg.Notifier.Topic)
}

func TestLoadMissingFile(t *testing.T) {
	_, err := config.Load("/does/not/exist.yaml")
	require.Error(t, err)
}

func TestValidation(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	content := `
notifier:
  enabled: true
`
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))

	_, err := config.Load(path)
	require.ErrorContains(t, err, "no brokers")
}
