package logging

import (
	"bytes"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/require"
)

func TestSetup(t *testing.T) {
	t.Cleanup(func() { SetGlobalLogger(zerolog.Nop()) })

	t.Run("json output honours level", func(t *testing.T) {
		var buf bytes.Buffer
		require.NoError(t, Setup("warn", "json", &buf))

		Info().Msg("hidden")
		Warn().Str("field", "a").Msg("shown")

		require.NotContains(t, buf.String(), "hidden")
		require.Contains(t, buf.String(), `"message":"shown"`)
		require.Contains(t, buf.String(), `"field":"a"`)
	})

	t.Run("auto on a buffer is json", func(t *testing.T) {
		var buf bytes.Buffer
		require.NoError(t, Setup("", "auto", &buf))
		Info().Msg("x")
		require.Contains(t, buf.String(), `"level":"info"`)
	})

	t.Run("console output", func(t *testing.T) {
		var buf bytes.Buffer
		require.NoError(t, Setup("debug", "console", &buf))
		Debug().Msg("pretty")
		require.Contains(t, buf.String(), "pretty")
		require.NotContains(t, buf.String(), `"message"`)
	})

	t.Run("rejects unknown values", func(t *testing.T) {
		require.Error(t, Setup("loud", "json", &bytes.Buffer{}))
		require.Error(t, Setup("info", "xml", &bytes.Buffer{}))
	})
}
