package logger

import (
	"bytes"
	"encoding/json"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseLevel(t *testing.T) {
	assert.Equal(t, zerolog.DebugLevel, parseLevel("DEBUG"))
	assert.Equal(t, zerolog.WarnLevel, parseLevel(" warn "))
	assert.Equal(t, zerolog.InfoLevel, parseLevel(""))
	assert.Equal(t, zerolog.InfoLevel, parseLevel("verbose"))
}

func TestNew_JSONComServicoEComponente(t *testing.T) {
	var buf bytes.Buffer
	l := New(Config{Env: "production", Level: "info", Service: "materias-primas-api", Output: &buf})

	l.Debug().Msg("não aparece")
	c := l.Component("http")
	c.Info().Int("status", 200).Msg("ok")

	var entry map[string]any
	require.NoError(t, json.Unmarshal(bytes.TrimSpace(buf.Bytes()), &entry))
	assert.Equal(t, "materias-primas-api", entry["service"])
	assert.Equal(t, "http", entry["component"])
	assert.Equal(t, "ok", entry["message"])
}
