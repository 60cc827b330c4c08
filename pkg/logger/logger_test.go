package logger_test

import (
	"bytes"
	"encoding/json"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/nfse-api/pkg/logger"
)

func TestNew_ProduccionEmiteJSONConTimestamp(t *testing.T) {
	var buf bytes.Buffer
	l := logger.NewWithWriter(logger.Config{Env: "production", Level: "info"}, &buf)

	l.Info().Str("evento", "EmpresaCadastrada").Msg("webhook recibido")

	var line map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &line))
	assert.Equal(t, "webhook recibido", line["message"])
	assert.Equal(t, "EmpresaCadastrada", line["evento"])
	assert.Contains(t, line, "time")
}

func TestNew_RespetaNivel(t *testing.T) {
	var buf bytes.Buffer
	l := logger.NewWithWriter(logger.Config{Env: "production", Level: "warn"}, &buf)

	l.Info().Msg("descartado")
	assert.Empty(t, buf.String())

	l.Warn().Msg("visible")
	assert.Contains(t, buf.String(), "visible")
}

func TestComponent_AgregaCampo(t *testing.T) {
	var buf bytes.Buffer
	l := logger.NewWithWriter(logger.Config{Env: "production"}, &buf)

	c := l.Component("webhook")
	c.Info().Msg("x")
	assert.Contains(t, buf.String(), `"component":"webhook"`)
}

func TestParseLevel(t *testing.T) {
	assert.Equal(t, zerolog.DebugLevel, logger.ParseLevel("debug"))
	assert.Equal(t, zerolog.InfoLevel, logger.ParseLevel("desconocido"))
}
