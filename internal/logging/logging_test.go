package logging_test

import (
	"bytes"
	"encoding/json"
	"testing"

	"github.com/jrsteele09/go-session-gateway/internal/logging"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/require"
)

func TestNew(t *testing.T) {
	t.Run("JSON outside DEV", func(t *testing.T) {
		var buf bytes.Buffer
		logger, err := logging.New(&buf, "warn", "PROD")
		require.NoError(t, err)
		require.Equal(t, zerolog.WarnLevel, logger.GetLevel())

		logger.Info().Msg("dropped")
		logger.Warn().Str("op", "sign_in").Msg("kept")

		var line map[string]any
		require.NoError(t, json.Unmarshal(buf.Bytes(), &line))
		require.Equal(t, "kept", line["message"])
		require.Equal(t, "sign_in", line["op"])
	})

	t.Run("Console in DEV", func(t *testing.T) {
		var buf bytes.Buffer
		logger, err := logging.New(&buf, "", "DEV")
		require.NoError(t, err)
		require.Equal(t, zerolog.InfoLevel, logger.GetLevel())
		logger.Info().Msg("hello")
		require.Contains(t, buf.String(), "hello")
		require.False(t, json.Valid(buf.Bytes()))
	})

	t.Run("Invalid level", func(t *testing.T) {
		_, err := logging.New(nil, "loud", "DEV")
		require.Error(t, err)
	})
}
