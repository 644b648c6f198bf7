package logger

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNew_JSON(t *testing.T) {
	var buf bytes.Buffer
	l := New(&buf, "json", zerolog.InfoLevel)

	l.Debug().Msg("hidden")
	l.Info().Str("number", "SV-0001").Msg("voucher posted")

	var rec map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &rec))
	assert.Equal(t, "voucher posted", rec["message"])
	assert.Equal(t, "SV-0001", rec["number"])
	assert.Equal(t, "info", rec["level"])
}

func TestNew_Console(t *testing.T) {
	var buf bytes.Buffer
	l := New(&buf, "console", zerolog.WarnLevel)
	l.Info().Msg("hidden")
	l.Warn().Msg("rejected")

	assert.Contains(t, buf.String(), "rejected")
	assert.NotContains(t, buf.String(), "hidden")
}

func TestSetup_File(t *testing.T) {
	saved := log.Logger
	savedLevel := zerolog.GlobalLevel()
	t.Cleanup(func() {
		log.Logger = saved
		zerolog.SetGlobalLevel(savedLevel)
	})

	path := filepath.Join(t.TempDir(), "khata.log")
	closer, err := Setup(Config{Level: "debug", Format: "json", Output: path})
	require.NoError(t, err)

	l := WithComponent("ledger")
	l.Debug().Msg("hello")
	require.NoError(t, closer.Close())

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(data), `"component":"ledger"`)
	assert.Contains(t, string(data), `"message":"hello"`)
}

func TestSetup_BadLevel(t *testing.T) {
	_, err := Setup(Config{Level: "loud"})
	assert.Error(t, err)
}

func TestDefaultConfig(t *testing.T) {
	cfg := DefaultConfig()
	assert.Equal(t, "warn", cfg.Level)
	assert.Equal(t, "stderr", cfg.Output)
}
